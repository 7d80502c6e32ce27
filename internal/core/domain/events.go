package domain

import "time"

// UserCreatedEvent represents the payload for crm.access.user.created messages.
type UserCreatedEvent struct {
	EventID   string
	UserID    string
	Email     *string
	Role      Role
	CreatedBy string
	CreatedAt time.Time
	Metadata  map[string]any
}

// RoleChangedEvent represents the payload for crm.access.user.role.changed messages.
type RoleChangedEvent struct {
	EventID      string
	UserID       string
	PreviousRole Role
	NewRole      Role
	ChangedBy    string
	ChangedAt    time.Time
	ExpiresAt    *time.Time
	Reason       *string
	Metadata     map[string]any
}

// PermissionGrantedEvent represents the payload for crm.access.permission.granted messages.
type PermissionGrantedEvent struct {
	EventID        string
	UserID         string
	PermissionID   string
	PermissionName string
	GrantedBy      string
	GrantedAt      time.Time
	ExpiresAt      *time.Time
	Reason         *string
	Metadata       map[string]any
}

// PermissionRevokedEvent represents the payload for crm.access.permission.revoked messages.
type PermissionRevokedEvent struct {
	EventID        string
	UserID         string
	PermissionID   string
	PermissionName string
	RevokedBy      string
	RevokedAt      time.Time
	Metadata       map[string]any
}

// TeamCreatedEvent represents the payload for crm.access.team.created messages.
type TeamCreatedEvent struct {
	EventID   string
	TeamID    string
	Name      string
	CreatedBy string
	MemberIDs []string
	CreatedAt time.Time
	Metadata  map[string]any
}
