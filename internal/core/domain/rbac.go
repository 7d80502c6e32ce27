package domain

import "time"

// Permission is a named capability from the catalog.
type Permission struct {
	ID          string
	Name        string
	Category    string
	Description *string
	IsActive    bool
}

// RolePermission binds a role to a catalog permission.
type RolePermission struct {
	Role         Role
	PermissionID string
	IsActive     bool
}

// UserProfile holds a user's assigned role and organizational placement.
// Profiles are soft-deleted: deactivation flips IsActive, rows are never
// removed.
type UserProfile struct {
	UserID       string
	Role         Role
	DepartmentID *string
	ManagerID    *string
	EmployeeID   *string
	HireDate     *time.Time
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPermission is a per-user custom grant, optionally time-limited. An
// expired grant counts as inactive regardless of the IsActive flag; read
// paths enforce expiry.
type UserPermission struct {
	ID           string
	UserID       string
	PermissionID string
	Permission   Permission
	Reason       *string
	ExpiresAt    *time.Time
	GrantedBy    string
	IsActive     bool
	CreatedAt    time.Time
}

// Expired reports whether the grant's expiry has passed at the given instant.
func (p UserPermission) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}

// Department is an organizational grouping contributing permissions to its
// members.
type Department struct {
	ID       string
	Name     string
	IsActive bool
}

// DepartmentPermission binds a department to a catalog permission.
type DepartmentPermission struct {
	DepartmentID string
	PermissionID string
	IsActive     bool
}

// Team is a secondary grouping with the same permission contribution pattern
// as Department.
type Team struct {
	ID           string
	Name         string
	DepartmentID *string
	TeamLeadID   *string
	IsActive     bool
	CreatedAt    time.Time
}

// TeamMember places a user on a team.
type TeamMember struct {
	TeamID   string
	UserID   string
	Role     string
	IsActive bool
}

// TeamPermission binds a team to a catalog permission.
type TeamPermission struct {
	TeamID       string
	PermissionID string
	IsActive     bool
}

// Account is the minimal identity record owned by the identity provider. The
// engine only creates one during user provisioning and deletes it when the
// follow-up profile insert fails.
type Account struct {
	ID        string
	Email     string
	IsActive  bool
	CreatedAt time.Time
}

// UserPermissions is the resolved permission state for a single user at a
// point in time. Effective is the de-duplicated union of all sources.
type UserPermissions struct {
	Role                  Role
	RolePermissions       []Permission
	CustomPermissions     []UserPermission
	DepartmentPermissions []Permission
	TeamPermissions       []Permission
	Effective             []Permission
}

// Has reports whether the effective set contains a permission by name.
func (u *UserPermissions) Has(name string) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Effective {
		if p.Name == name {
			return true
		}
	}
	return false
}
