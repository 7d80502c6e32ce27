package domain

import (
	"testing"
	"time"
)

func TestUserPermissionExpired(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{name: "no expiry", expiresAt: nil, want: false},
		{name: "future expiry", expiresAt: &future, want: false},
		{name: "past expiry", expiresAt: &past, want: true},
		{name: "expires exactly now", expiresAt: &now, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			grant := UserPermission{ExpiresAt: tc.expiresAt}
			if got := grant.Expired(now); got != tc.want {
				t.Fatalf("Expired(%v) = %v, want %v", tc.expiresAt, got, tc.want)
			}
		})
	}
}

func TestUserPermissionsHas(t *testing.T) {
	var nilState *UserPermissions
	if nilState.Has("inventory.view") {
		t.Fatal("nil state should never grant a permission")
	}

	state := &UserPermissions{
		Effective: []Permission{
			{ID: "perm-1", Name: "inventory.view"},
			{ID: "perm-2", Name: "sales.create"},
		},
	}

	if !state.Has("sales.create") {
		t.Fatal("expected sales.create to be present")
	}

	if state.Has("finance.reports") {
		t.Fatal("did not expect finance.reports to be present")
	}
}
