package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/core/port"
)

// AuditRepository implements port.AuditRepository over PostgreSQL. All three
// tables are append-only; this type deliberately exposes no update or delete
// operations.
type AuditRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAuditRepository constructs an audit repository backed by any executor
// that satisfies pgExecutor.
func NewAuditRepository(exec pgExecutor) *AuditRepository {
	return &AuditRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func marshalMetadata(metadata map[string]any) (any, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	bytes, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return bytes, nil
}

// InsertAccessAttempt appends a permission check record.
func (r *AuditRepository) InsertAccessAttempt(ctx context.Context, attempt domain.AccessAttempt) error {
	stmt, args, err := r.builder.Insert("crm.access_attempts").
		Columns("id", "user_id", "resource_type", "resource_id", "permission_required", "access_granted", "created_at").
		Values(
			attempt.ID,
			attempt.UserID,
			attempt.ResourceType,
			attempt.ResourceID,
			attempt.PermissionRequired,
			attempt.AccessGranted,
			attempt.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert access attempt sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert access attempt: %w", err)
	}

	return nil
}

// InsertSecurityEvent appends a security event record.
func (r *AuditRepository) InsertSecurityEvent(ctx context.Context, event domain.SecurityEvent) error {
	metadata, err := marshalMetadata(event.Metadata)
	if err != nil {
		return err
	}

	stmt, args, err := r.builder.Insert("crm.security_events").
		Columns("id", "user_id", "event_type", "severity", "description", "metadata", "created_at").
		Values(
			event.ID,
			event.UserID,
			event.EventType,
			string(event.Severity),
			event.Description,
			metadata,
			event.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert security event sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert security event: %w", err)
	}

	return nil
}

// InsertAuditLog appends an administrative action record.
func (r *AuditRepository) InsertAuditLog(ctx context.Context, log domain.AuditLog) error {
	metadata, err := marshalMetadata(log.Metadata)
	if err != nil {
		return err
	}

	stmt, args, err := r.builder.Insert("crm.audit_logs").
		Columns("id", "user_id", "action", "metadata", "created_at").
		Values(log.ID, log.UserID, log.Action, metadata, log.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert audit log sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}

	return nil
}

// ListAuditLogs returns audit logs most recent first.
func (r *AuditRepository) ListAuditLogs(ctx context.Context, filter port.AuditLogFilter) ([]domain.AuditLog, error) {
	query := r.builder.Select("id", "user_id", "action", "metadata", "created_at").
		From("crm.audit_logs").
		OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.Action != "" {
		query = query.Where(squirrel.Eq{"action": filter.Action})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list audit logs sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var (
			log      domain.AuditLog
			metadata []byte
		)
		if err := rows.Scan(&log.ID, &log.UserID, &log.Action, &metadata, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &log.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit log metadata: %w", err)
			}
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}

	return logs, nil
}

// ListSecurityEvents returns security events most recent first.
func (r *AuditRepository) ListSecurityEvents(ctx context.Context, filter port.SecurityEventFilter) ([]domain.SecurityEvent, error) {
	query := r.builder.Select("id", "user_id", "event_type", "severity", "description", "metadata", "created_at").
		From("crm.security_events").
		OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	if filter.Severity != "" {
		query = query.Where(squirrel.Eq{"severity": string(filter.Severity)})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list security events sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query security events: %w", err)
	}
	defer rows.Close()

	var events []domain.SecurityEvent
	for rows.Next() {
		var (
			event    domain.SecurityEvent
			severity string
			metadata []byte
		)
		if err := rows.Scan(&event.ID, &event.UserID, &event.EventType, &severity, &event.Description, &metadata, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan security event: %w", err)
		}
		event.Severity = domain.Severity(severity)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal security event metadata: %w", err)
			}
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate security events: %w", err)
	}

	return events, nil
}

// ListAccessAttempts returns access attempts most recent first.
func (r *AuditRepository) ListAccessAttempts(ctx context.Context, filter port.AccessAttemptFilter) ([]domain.AccessAttempt, error) {
	query := r.builder.Select("id", "user_id", "resource_type", "resource_id", "permission_required", "access_granted", "created_at").
		From("crm.access_attempts").
		OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list access attempts sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query access attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.AccessAttempt
	for rows.Next() {
		var attempt domain.AccessAttempt
		if err := rows.Scan(
			&attempt.ID,
			&attempt.UserID,
			&attempt.ResourceType,
			&attempt.ResourceID,
			&attempt.PermissionRequired,
			&attempt.AccessGranted,
			&attempt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan access attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access attempts: %w", err)
	}

	return attempts, nil
}

var _ port.AuditRepository = (*AuditRepository)(nil)
