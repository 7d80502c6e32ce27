package port

import (
	"context"

	"github.com/atelierhq/crm-access/internal/core/domain"
)

// AuditTrail records access attempts and administrative actions. Methods
// return nothing: a trail write must never become the reason a user-facing
// operation fails, so implementations absorb their own errors.
type AuditTrail interface {
	RecordAccessAttempt(ctx context.Context, attempt domain.AccessAttempt)
	RecordSecurityEvent(ctx context.Context, event domain.SecurityEvent)
	RecordAdminAction(ctx context.Context, userID, action string, metadata map[string]any)
}
