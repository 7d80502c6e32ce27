package port

import (
	"context"
	"time"

	"github.com/atelierhq/crm-access/internal/core/domain"
)

// GrantRepository persists per-user custom permission grants. Revocation is a
// soft delete; expiry is enforced at read time against the supplied instant.
type GrantRepository interface {
	Create(ctx context.Context, grant domain.UserPermission) error
	ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]domain.UserPermission, error)
	Deactivate(ctx context.Context, userID, permissionID string) (int64, error)
}
