package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/repository"
)

func TestProfileRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewProfileRepository(mock)

	now := time.Now().UTC()
	departmentID := "dept-1"
	profile := domain.UserProfile{
		UserID:       "user-1",
		Role:         domain.RoleSalesAssociate,
		DepartmentID: &departmentID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(`INSERT INTO crm\.user_profiles`).
		WithArgs(
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
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), profile); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProfileRepository_GetActiveByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewProfileRepository(mock)

	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"user_id", "role", "department_id", "manager_id", "employee_id", "hire_date", "is_active", "created_at", "updated_at",
	}).AddRow(
		"user-1", "store_manager", "dept-1", nil, nil, nil, true, now, now,
	)

	mock.ExpectQuery(`SELECT user_id, role, department_id, manager_id, employee_id, hire_date, is_active, created_at, updated_at FROM crm\.user_profiles`).
		WithArgs(true, "user-1").
		WillReturnRows(rows)

	profile, err := repo.GetActiveByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetActiveByUser returned error: %v", err)
	}

	if profile.Role != domain.RoleStoreManager {
		t.Fatalf("expected role %q, got %q", domain.RoleStoreManager, profile.Role)
	}
	if profile.DepartmentID == nil || *profile.DepartmentID != "dept-1" {
		t.Fatalf("expected department dept-1, got %v", profile.DepartmentID)
	}
	if profile.ManagerID != nil {
		t.Fatalf("expected nil manager, got %v", *profile.ManagerID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProfileRepository_GetActiveByUser_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewProfileRepository(mock)

	mock.ExpectQuery(`SELECT user_id, role, department_id, manager_id, employee_id, hire_date, is_active, created_at, updated_at FROM crm\.user_profiles`).
		WithArgs(true, "missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"user_id", "role", "department_id", "manager_id", "employee_id", "hire_date", "is_active", "created_at", "updated_at",
		}))

	_, err = repo.GetActiveByUser(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProfileRepository_UpdateRole_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewProfileRepository(mock)

	mock.ExpectExec(`UPDATE crm\.user_profiles`).
		WithArgs("appraiser", true, "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateRole(context.Background(), "missing", domain.RoleAppraiser)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
