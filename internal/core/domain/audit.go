package domain

import "time"

// Severity classifies security events.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Security event types emitted by administrative mutations.
const (
	EventUserCreated       = "user_created"
	EventRoleChanged       = "role_changed"
	EventPermissionGranted = "permission_granted"
	EventPermissionRevoked = "permission_revoked"
	EventTeamCreated       = "team_created"
)

// ResourceTypeGlobal is used when a permission check is not scoped to a
// particular resource.
const ResourceTypeGlobal = "global"

// AuditLog is an append-only record of an administrative action. No update or
// delete path exists for these rows.
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Metadata  map[string]any
	CreatedAt time.Time
}

// SecurityEvent is an append-only record of a sensitive administrative
// action.
type SecurityEvent struct {
	ID          string
	UserID      string
	EventType   string
	Severity    Severity
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}

// AccessAttempt is an append-only record of a single permission check and its
// outcome. Every check writes exactly one of these regardless of the result.
type AccessAttempt struct {
	ID                 string
	UserID             string
	ResourceType       string
	ResourceID         *string
	PermissionRequired string
	AccessGranted      bool
	CreatedAt          time.Time
}
