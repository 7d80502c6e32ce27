package port

import (
	"context"

	"github.com/atelierhq/crm-access/internal/core/domain"
)

// AuditLogFilter narrows audit log listings.
type AuditLogFilter struct {
	UserID string
	Action string
	Limit  int
	Offset int
}

// SecurityEventFilter narrows security event listings.
type SecurityEventFilter struct {
	Severity domain.Severity
	Limit    int
	Offset   int
}

// AccessAttemptFilter narrows access attempt listings.
type AccessAttemptFilter struct {
	UserID string
	Limit  int
	Offset int
}

// AuditRepository persists the append-only audit trail. There is no update or
// delete path; listings return the most recent rows first.
type AuditRepository interface {
	InsertAccessAttempt(ctx context.Context, attempt domain.AccessAttempt) error
	InsertSecurityEvent(ctx context.Context, event domain.SecurityEvent) error
	InsertAuditLog(ctx context.Context, log domain.AuditLog) error
	ListAuditLogs(ctx context.Context, filter AuditLogFilter) ([]domain.AuditLog, error)
	ListSecurityEvents(ctx context.Context, filter SecurityEventFilter) ([]domain.SecurityEvent, error)
	ListAccessAttempts(ctx context.Context, filter AccessAttemptFilter) ([]domain.AccessAttempt, error)
}
