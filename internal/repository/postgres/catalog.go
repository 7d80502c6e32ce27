package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/core/port"
	"github.com/atelierhq/crm-access/internal/repository"
)

// CatalogRepository implements port.CatalogRepository over PostgreSQL. All
// queries filter on active catalog entries and active bindings.
type CatalogRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCatalogRepository constructs a catalog repository backed by any executor
// that satisfies pgExecutor.
func NewCatalogRepository(exec pgExecutor) *CatalogRepository {
	return &CatalogRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const permissionColumns = "p.id, p.name, p.category, p.description, p.is_active"

// GetByName retrieves an active permission by its unique name.
func (r *CatalogRepository) GetByName(ctx context.Context, name string) (*domain.Permission, error) {
	stmt, args, err := r.builder.Select("id", "name", "category", "description", "is_active").
		From("crm.permissions").
		Where(squirrel.Eq{"name": name, "is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select permission sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var permission domain.Permission
	if err := row.Scan(
		&permission.ID,
		&permission.Name,
		&permission.Category,
		&permission.Description,
		&permission.IsActive,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan permission: %w", err)
	}

	return &permission, nil
}

// ListByRole returns the default permission set for a role.
func (r *CatalogRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.Permission, error) {
	stmt, args, err := r.builder.Select(permissionColumns).
		From("crm.permissions p").
		Join("crm.role_permissions rp ON rp.permission_id = p.id").
		Where(squirrel.Eq{"rp.role": string(role), "rp.is_active": true, "p.is_active": true}).
		OrderBy("p.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permissions by role sql: %w", err)
	}

	return r.queryPermissions(ctx, stmt, args)
}

// ListByDepartment returns the permissions bound to a department.
func (r *CatalogRepository) ListByDepartment(ctx context.Context, departmentID string) ([]domain.Permission, error) {
	stmt, args, err := r.builder.Select(permissionColumns).
		From("crm.permissions p").
		Join("crm.department_permissions dp ON dp.permission_id = p.id").
		Join("crm.departments d ON d.id = dp.department_id").
		Where(squirrel.Eq{
			"dp.department_id": departmentID,
			"dp.is_active":     true,
			"d.is_active":      true,
			"p.is_active":      true,
		}).
		OrderBy("p.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permissions by department sql: %w", err)
	}

	return r.queryPermissions(ctx, stmt, args)
}

// ListByTeams returns the distinct permissions bound to any of the teams.
func (r *CatalogRepository) ListByTeams(ctx context.Context, teamIDs []string) ([]domain.Permission, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}

	stmt, args, err := r.builder.Select("DISTINCT " + permissionColumns).
		From("crm.permissions p").
		Join("crm.team_permissions tp ON tp.permission_id = p.id").
		Where(squirrel.Eq{"tp.team_id": teamIDs, "tp.is_active": true, "p.is_active": true}).
		OrderBy("p.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permissions by teams sql: %w", err)
	}

	return r.queryPermissions(ctx, stmt, args)
}

func (r *CatalogRepository) queryPermissions(ctx context.Context, stmt string, args []any) ([]domain.Permission, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	defer rows.Close()

	var permissions []domain.Permission
	for rows.Next() {
		var permission domain.Permission
		if err := rows.Scan(
			&permission.ID,
			&permission.Name,
			&permission.Category,
			&permission.Description,
			&permission.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		permissions = append(permissions, permission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return permissions, nil
}

var _ port.CatalogRepository = (*CatalogRepository)(nil)
