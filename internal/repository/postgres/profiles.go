package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/core/port"
	"github.com/atelierhq/crm-access/internal/repository"
)

// ProfileRepository implements port.ProfileRepository over PostgreSQL.
type ProfileRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProfileRepository constructs a profile repository backed by any executor
// that satisfies pgExecutor.
func NewProfileRepository(exec pgExecutor) *ProfileRepository {
	return &ProfileRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new profile row.
func (r *ProfileRepository) Create(ctx context.Context, profile domain.UserProfile) error {
	stmt, args, err := r.builder.Insert("crm.user_profiles").
		Columns(
			"user_id",
			"role",
			"department_id",
			"manager_id",
			"employee_id",
			"hire_date",
			"is_active",
			"created_at",
			"updated_at",
		).
		Values(
			profile.UserID,
			string(profile.Role),
			profile.DepartmentID,
			profile.ManagerID,
			profile.EmployeeID,
			profile.HireDate,
			profile.IsActive,
			profile.CreatedAt,
			profile.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert profile sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	return nil
}

// GetActiveByUser retrieves the active profile for a user.
func (r *ProfileRepository) GetActiveByUser(ctx context.Context, userID string) (*domain.UserProfile, error) {
	stmt, args, err := r.builder.
		Select(
			"user_id",
			"role",
			"department_id",
			"manager_id",
			"employee_id",
			"hire_date",
			"is_active",
			"created_at",
			"updated_at",
		).
		From("crm.user_profiles").
		Where(squirrel.Eq{"user_id": userID, "is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select profile sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		profile      domain.UserProfile
		role         string
		departmentID sql.NullString
		managerID    sql.NullString
		employeeID   sql.NullString
		hireDate     sql.NullTime
	)

	if err := row.Scan(
		&profile.UserID,
		&role,
		&departmentID,
		&managerID,
		&employeeID,
		&hireDate,
		&profile.IsActive,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	profile.Role = domain.Role(role)
	if departmentID.Valid {
		profile.DepartmentID = &departmentID.String
	}
	if managerID.Valid {
		profile.ManagerID = &managerID.String
	}
	if employeeID.Valid {
		profile.EmployeeID = &employeeID.String
	}
	if hireDate.Valid {
		hd := hireDate.Time
		profile.HireDate = &hd
	}

	return &profile, nil
}

// UpdateRole changes the role on the active profile. Returns
// repository.ErrNotFound when the user has no active profile.
func (r *ProfileRepository) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	stmt, args, err := r.builder.Update("crm.user_profiles").
		Set("role", string(role)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID, "is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update role sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.ProfileRepository = (*ProfileRepository)(nil)
