package usecase

import (
	"context"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/core/port"
)

const (
	defaultAuditPageSize = 100
	maxAuditPageSize     = 1000
)

// ListAuditLogsInput captures filters for listing audit logs.
type ListAuditLogsInput struct {
	UserID string
	Action string
	Limit  int
	Offset int
}

// ListSecurityEventsInput captures filters for listing security events.
type ListSecurityEventsInput struct {
	Severity string
	Limit    int
	Offset   int
}

// ListAccessAttemptsInput captures filters for listing access attempts.
type ListAccessAttemptsInput struct {
	UserID string
	Limit  int
	Offset int
}

// AuditService owns the append-only audit trail. The Record methods implement
// port.AuditTrail: they return nothing and absorb their own failures, so a
// broken trail write can never fail the operation that triggered it.
type AuditService struct {
	audit  port.AuditRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewAuditService constructs an AuditService.
func NewAuditService(audit port.AuditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{audit: audit, logger: logger, now: time.Now}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *AuditService) WithClock(now func() time.Time) *AuditService {
	if now != nil {
		s.now = now
	}
	return s
}

// RecordAccessAttempt appends a permission check outcome to the trail.
func (s *AuditService) RecordAccessAttempt(ctx context.Context, attempt domain.AccessAttempt) {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = s.now().UTC()
	}
	if attempt.ResourceType == "" {
		attempt.ResourceType = domain.ResourceTypeGlobal
	}

	if err := s.audit.InsertAccessAttempt(ctx, attempt); err != nil {
		s.logger.Error("access attempt write failed",
			zap.String("user_id", attempt.UserID),
			zap.String("permission", attempt.PermissionRequired),
			zap.Error(err),
		)
	}
}

// RecordSecurityEvent appends a security event to the trail.
func (s *AuditService) RecordSecurityEvent(ctx context.Context, event domain.SecurityEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now().UTC()
	}
	if event.Severity == "" {
		event.Severity = domain.SeverityLow
	}

	if err := s.audit.InsertSecurityEvent(ctx, event); err != nil {
		s.logger.Error("security event write failed",
			zap.String("user_id", event.UserID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
	}
}

// RecordAdminAction appends an administrative action to the audit log.
func (s *AuditService) RecordAdminAction(ctx context.Context, userID, action string, metadata map[string]any) {
	log := domain.AuditLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Metadata:  metadata,
		CreatedAt: s.now().UTC(),
	}

	if err := s.audit.InsertAuditLog(ctx, log); err != nil {
		s.logger.Error("audit log write failed",
			zap.String("user_id", userID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// ListAuditLogs returns audit log entries, most recent first.
func (s *AuditService) ListAuditLogs(ctx context.Context, input ListAuditLogsInput) ([]domain.AuditLog, error) {
	limit, offset := clampPage(input.Limit, input.Offset)
	return s.audit.ListAuditLogs(ctx, port.AuditLogFilter{
		UserID: strings.TrimSpace(input.UserID),
		Action: strings.TrimSpace(input.Action),
		Limit:  limit,
		Offset: offset,
	})
}

// ListSecurityEvents returns security events, most recent first.
func (s *AuditService) ListSecurityEvents(ctx context.Context, input ListSecurityEventsInput) ([]domain.SecurityEvent, error) {
	limit, offset := clampPage(input.Limit, input.Offset)
	return s.audit.ListSecurityEvents(ctx, port.SecurityEventFilter{
		Severity: domain.Severity(strings.TrimSpace(input.Severity)),
		Limit:    limit,
		Offset:   offset,
	})
}

// ListAccessAttempts returns access attempts, most recent first.
func (s *AuditService) ListAccessAttempts(ctx context.Context, input ListAccessAttemptsInput) ([]domain.AccessAttempt, error) {
	limit, offset := clampPage(input.Limit, input.Offset)
	return s.audit.ListAccessAttempts(ctx, port.AccessAttemptFilter{
		UserID: strings.TrimSpace(input.UserID),
		Limit:  limit,
		Offset: offset,
	})
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultAuditPageSize
	}
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

var _ port.AuditTrail = (*AuditService)(nil)
