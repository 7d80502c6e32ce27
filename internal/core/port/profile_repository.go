package port

import (
	"context"

	"github.com/atelierhq/crm-access/internal/core/domain"
)

// ProfileRepository handles user profile persistence. Profiles are
// soft-deleted; reads only ever return active rows.
type ProfileRepository interface {
	Create(ctx context.Context, profile domain.UserProfile) error
	GetActiveByUser(ctx context.Context, userID string) (*domain.UserProfile, error)
	UpdateRole(ctx context.Context, userID string, role domain.Role) error
}
