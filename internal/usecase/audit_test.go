package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/core/port"
)

type auditRepoMock struct {
	attempts  []domain.AccessAttempt
	events    []domain.SecurityEvent
	logs      []domain.AuditLog
	insertErr error

	lastLogFilter     port.AuditLogFilter
	lastEventFilter   port.SecurityEventFilter
	lastAttemptFilter port.AccessAttemptFilter
}

func (m *auditRepoMock) InsertAccessAttempt(_ context.Context, attempt domain.AccessAttempt) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *auditRepoMock) InsertSecurityEvent(_ context.Context, event domain.SecurityEvent) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.events = append(m.events, event)
	return nil
}

func (m *auditRepoMock) InsertAuditLog(_ context.Context, log domain.AuditLog) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.logs = append(m.logs, log)
	return nil
}

func (m *auditRepoMock) ListAuditLogs(_ context.Context, filter port.AuditLogFilter) ([]domain.AuditLog, error) {
	m.lastLogFilter = filter
	return m.logs, nil
}

func (m *auditRepoMock) ListSecurityEvents(_ context.Context, filter port.SecurityEventFilter) ([]domain.SecurityEvent, error) {
	m.lastEventFilter = filter
	return m.events, nil
}

func (m *auditRepoMock) ListAccessAttempts(_ context.Context, filter port.AccessAttemptFilter) ([]domain.AccessAttempt, error) {
	m.lastAttemptFilter = filter
	return m.attempts, nil
}

func TestRecordAccessAttempt_FillsDefaults(t *testing.T) {
	repo := &auditRepoMock{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewAuditService(repo, nil).WithClock(func() time.Time { return now })

	svc.RecordAccessAttempt(context.Background(), domain.AccessAttempt{
		UserID:             "user-1",
		PermissionRequired: "orders.view",
		AccessGranted:      true,
	})

	if len(repo.attempts) != 1 {
		t.Fatalf("expected one attempt, got %d", len(repo.attempts))
	}
	attempt := repo.attempts[0]
	if attempt.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !attempt.CreatedAt.Equal(now) {
		t.Fatalf("expected clock timestamp, got %v", attempt.CreatedAt)
	}
	if attempt.ResourceType != domain.ResourceTypeGlobal {
		t.Fatalf("expected global resource type default, got %q", attempt.ResourceType)
	}
}

func TestRecordAccessAttempt_SwallowsWriteFailure(t *testing.T) {
	repo := &auditRepoMock{insertErr: errors.New("disk full")}
	svc := NewAuditService(repo, nil)

	// Must not panic and must not surface the error anywhere.
	svc.RecordAccessAttempt(context.Background(), domain.AccessAttempt{UserID: "user-1"})
	svc.RecordSecurityEvent(context.Background(), domain.SecurityEvent{UserID: "user-1"})
	svc.RecordAdminAction(context.Background(), "user-1", "create_user", nil)
}

func TestRecordSecurityEvent_DefaultSeverity(t *testing.T) {
	repo := &auditRepoMock{}
	svc := NewAuditService(repo, nil)

	svc.RecordSecurityEvent(context.Background(), domain.SecurityEvent{
		UserID:    "user-1",
		EventType: domain.EventTeamCreated,
	})

	if len(repo.events) != 1 {
		t.Fatalf("expected one event, got %d", len(repo.events))
	}
	if repo.events[0].Severity != domain.SeverityLow {
		t.Fatalf("expected low severity default, got %q", repo.events[0].Severity)
	}
}

func TestListAuditLogs_ClampsPagination(t *testing.T) {
	repo := &auditRepoMock{}
	svc := NewAuditService(repo, nil)

	if _, err := svc.ListAuditLogs(context.Background(), ListAuditLogsInput{Limit: 0, Offset: -5}); err != nil {
		t.Fatalf("ListAuditLogs returned error: %v", err)
	}
	if repo.lastLogFilter.Limit != defaultAuditPageSize || repo.lastLogFilter.Offset != 0 {
		t.Fatalf("expected defaults applied, got %+v", repo.lastLogFilter)
	}

	if _, err := svc.ListAuditLogs(context.Background(), ListAuditLogsInput{Limit: 10000}); err != nil {
		t.Fatalf("ListAuditLogs returned error: %v", err)
	}
	if repo.lastLogFilter.Limit != maxAuditPageSize {
		t.Fatalf("expected limit capped at %d, got %d", maxAuditPageSize, repo.lastLogFilter.Limit)
	}
}

func TestListSecurityEvents_PassesSeverity(t *testing.T) {
	repo := &auditRepoMock{}
	svc := NewAuditService(repo, nil)

	if _, err := svc.ListSecurityEvents(context.Background(), ListSecurityEventsInput{Severity: " high ", Limit: 10}); err != nil {
		t.Fatalf("ListSecurityEvents returned error: %v", err)
	}
	if repo.lastEventFilter.Severity != domain.SeverityHigh {
		t.Fatalf("expected trimmed severity, got %q", repo.lastEventFilter.Severity)
	}
}
