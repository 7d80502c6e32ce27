package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/core/port"
)

// GrantRepository implements port.GrantRepository over PostgreSQL.
type GrantRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewGrantRepository constructs a grant repository backed by any executor that
// satisfies pgExecutor.
func NewGrantRepository(exec pgExecutor) *GrantRepository {
	return &GrantRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new custom grant row.
func (r *GrantRepository) Create(ctx context.Context, grant domain.UserPermission) error {
	stmt, args, err := r.builder.Insert("crm.user_permissions").
		Columns(
			"id",
			"user_id",
			"permission_id",
			"reason",
			"expires_at",
			"granted_by",
			"is_active",
			"created_at",
		).
		Values(
			grant.ID,
			grant.UserID,
			grant.PermissionID,
			grant.Reason,
			grant.ExpiresAt,
			grant.GrantedBy,
			grant.IsActive,
			grant.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert grant sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert grant: %w", err)
	}

	return nil
}

// ListActiveByUser returns the user's active, non-expired grants joined with
// their catalog entries. Expiry is enforced here so a stale is_active flag on
// an expired grant never leaks into the effective set.
func (r *GrantRepository) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]domain.UserPermission, error) {
	stmt, args, err := r.builder.
		Select(
			"g.id",
			"g.user_id",
			"g.permission_id",
			"g.reason",
			"g.expires_at",
			"g.granted_by",
			"g.is_active",
			"g.created_at",
			"p.id",
			"p.name",
			"p.category",
			"p.description",
			"p.is_active",
		).
		From("crm.user_permissions g").
		Join("crm.permissions p ON p.id = g.permission_id").
		Where(squirrel.Eq{"g.user_id": userID, "g.is_active": true, "p.is_active": true}).
		Where(squirrel.Or{
			squirrel.Eq{"g.expires_at": nil},
			squirrel.Gt{"g.expires_at": now},
		}).
		OrderBy("g.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build grants by user sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query grants: %w", err)
	}
	defer rows.Close()

	var grants []domain.UserPermission
	for rows.Next() {
		var (
			grant     domain.UserPermission
			reason    sql.NullString
			expiresAt sql.NullTime
		)
		if err := rows.Scan(
			&grant.ID,
			&grant.UserID,
			&grant.PermissionID,
			&reason,
			&expiresAt,
			&grant.GrantedBy,
			&grant.IsActive,
			&grant.CreatedAt,
			&grant.Permission.ID,
			&grant.Permission.Name,
			&grant.Permission.Category,
			&grant.Permission.Description,
			&grant.Permission.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}

		if reason.Valid {
			grant.Reason = &reason.String
		}
		if expiresAt.Valid {
			ts := expiresAt.Time
			grant.ExpiresAt = &ts
		}

		grants = append(grants, grant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}

	return grants, nil
}

// Deactivate soft-deletes all active grants matching the user and permission,
// returning how many rows were flipped. Zero rows is not an error: revocation
// is idempotent.
func (r *GrantRepository) Deactivate(ctx context.Context, userID, permissionID string) (int64, error) {
	stmt, args, err := r.builder.Update("crm.user_permissions").
		Set("is_active", false).
		Set("revoked_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID, "permission_id": permissionID, "is_active": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build deactivate grant sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("deactivate grant: %w", err)
	}

	return tag.RowsAffected(), nil
}

var _ port.GrantRepository = (*GrantRepository)(nil)
