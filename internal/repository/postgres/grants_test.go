package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/atelierhq/crm-access/internal/core/domain"
)

func TestGrantRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewGrantRepository(mock)

	now := time.Now().UTC()
	reason := "holiday coverage"
	expiresAt := now.Add(72 * time.Hour)
	grant := domain.UserPermission{
		ID:           "grant-1",
		UserID:       "user-1",
		PermissionID: "perm-1",
		Reason:       &reason,
		ExpiresAt:    &expiresAt,
		GrantedBy:    "manager-1",
		IsActive:     true,
		CreatedAt:    now,
	}

	mock.ExpectExec(`INSERT INTO crm\.user_permissions`).
		WithArgs(
			grant.ID,
			grant.UserID,
			grant.PermissionID,
			grant.Reason,
			grant.ExpiresAt,
			grant.GrantedBy,
			grant.IsActive,
			grant.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), grant); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGrantRepository_ListActiveByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewGrantRepository(mock)

	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "permission_id", "reason", "expires_at", "granted_by", "is_active", "created_at",
		"id", "name", "category", "description", "is_active",
	}).AddRow(
		"grant-1", "user-1", "perm-1", "trade show", nil, "manager-1", true, now,
		"perm-1", "inventory.view", "inventory", nil, true,
	)

	mock.ExpectQuery(`SELECT .+ FROM crm\.user_permissions g JOIN crm\.permissions p`).
		WithArgs(true, "user-1", true, now).
		WillReturnRows(rows)

	grants, err := repo.ListActiveByUser(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("ListActiveByUser returned error: %v", err)
	}

	if len(grants) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(grants))
	}
	if grants[0].Permission.Name != "inventory.view" {
		t.Fatalf("expected joined permission inventory.view, got %q", grants[0].Permission.Name)
	}
	if grants[0].Reason == nil || *grants[0].Reason != "trade show" {
		t.Fatalf("expected reason to survive the scan, got %v", grants[0].Reason)
	}
	if grants[0].ExpiresAt != nil {
		t.Fatalf("expected nil expiry, got %v", grants[0].ExpiresAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGrantRepository_Deactivate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewGrantRepository(mock)

	mock.ExpectExec(`UPDATE crm\.user_permissions`).
		WithArgs(false, true, "perm-1", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	affected, err := repo.Deactivate(context.Background(), "user-1", "perm-1")
	if err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected 2 rows affected, got %d", affected)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGrantRepository_Deactivate_NoRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewGrantRepository(mock)

	mock.ExpectExec(`UPDATE crm\.user_permissions`).
		WithArgs(false, true, "perm-1", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	affected, err := repo.Deactivate(context.Background(), "user-1", "perm-1")
	if err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows affected, got %d", affected)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
