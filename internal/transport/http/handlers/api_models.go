package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/crm-access/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// PermissionPayload describes a catalog permission in API responses.
type PermissionPayload struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description *string `json:"description,omitempty"`
}

// CustomGrantPayload describes an active custom grant in API responses.
type CustomGrantPayload struct {
	ID         string            `json:"id"`
	Permission PermissionPayload `json:"permission"`
	Reason     *string           `json:"reason,omitempty"`
	ExpiresAt  *time.Time        `json:"expires_at,omitempty"`
	GrantedBy  string            `json:"granted_by"`
	CreatedAt  time.Time         `json:"created_at"`
}

// UserPermissionsResponse is the resolved permission state for one user.
type UserPermissionsResponse struct {
	UserID                string               `json:"user_id"`
	Role                  string               `json:"role"`
	RoleDisplayName       string               `json:"role_display_name"`
	RolePermissions       []PermissionPayload  `json:"role_permissions"`
	CustomPermissions     []CustomGrantPayload `json:"custom_permissions"`
	DepartmentPermissions []PermissionPayload  `json:"department_permissions"`
	TeamPermissions       []PermissionPayload  `json:"team_permissions"`
	Effective             []PermissionPayload  `json:"effective"`
}

// AccessCheckRequest asks whether a user holds a permission.
type AccessCheckRequest struct {
	UserID       string  `json:"user_id" binding:"required"`
	Permission   string  `json:"permission" binding:"required"`
	ResourceType string  `json:"resource_type"`
	ResourceID   *string `json:"resource_id"`
}

// AccessCheckResponse is the outcome of a permission check.
type AccessCheckResponse struct {
	UserID       string `json:"user_id"`
	Permission   string `json:"permission"`
	ResourceType string `json:"resource_type"`
	Granted      bool   `json:"granted"`
}

// UserRoleResponse describes a user's role with its presentation metadata.
type UserRoleResponse struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Level       int    `json:"level"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

// CanManageResponse is the outcome of a hierarchy comparison.
type CanManageResponse struct {
	ManagerID    string `json:"manager_id"`
	TargetUserID string `json:"target_user_id"`
	CanManage    bool   `json:"can_manage"`
}

// CreateUserRequest provisions a new user.
type CreateUserRequest struct {
	Email        string     `json:"email" binding:"required"`
	Role         string     `json:"role" binding:"required"`
	DepartmentID *string    `json:"department_id"`
	ManagerID    *string    `json:"manager_id"`
	EmployeeID   *string    `json:"employee_id"`
	HireDate     *time.Time `json:"hire_date"`
}

// UserProfileResponse describes a provisioned profile.
type UserProfileResponse struct {
	UserID       string     `json:"user_id"`
	Role         string     `json:"role"`
	DepartmentID *string    `json:"department_id,omitempty"`
	ManagerID    *string    `json:"manager_id,omitempty"`
	EmployeeID   *string    `json:"employee_id,omitempty"`
	HireDate     *time.Time `json:"hire_date,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
}

// UpdateRoleRequest changes a user's role.
type UpdateRoleRequest struct {
	Role      string     `json:"role" binding:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
	Reason    *string    `json:"reason"`
}

// GrantPermissionRequest grants a custom permission.
type GrantPermissionRequest struct {
	UserID     string     `json:"user_id" binding:"required"`
	Permission string     `json:"permission" binding:"required"`
	Reason     *string    `json:"reason"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

// RevokePermissionRequest revokes a custom permission.
type RevokePermissionRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	Permission string `json:"permission" binding:"required"`
}

// CreateTeamRequest creates a team with optional initial members.
type CreateTeamRequest struct {
	Name         string   `json:"name" binding:"required"`
	DepartmentID *string  `json:"department_id"`
	TeamLeadID   *string  `json:"team_lead_id"`
	MemberIDs    []string `json:"member_ids"`
}

// CreateTeamResponse reports the created team and the members actually added.
type CreateTeamResponse struct {
	TeamID         string    `json:"team_id"`
	Name           string    `json:"name"`
	DepartmentID   *string   `json:"department_id,omitempty"`
	TeamLeadID     *string   `json:"team_lead_id,omitempty"`
	AddedMemberIDs []string  `json:"added_member_ids"`
	CreatedAt      time.Time `json:"created_at"`
}

// AuditLogPayload describes an administrative action record.
type AuditLogPayload struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Action    string         `json:"action"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// SecurityEventPayload describes a security event record.
type SecurityEventPayload struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	EventType   string         `json:"event_type"`
	Severity    string         `json:"severity"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AccessAttemptPayload describes a recorded permission check.
type AccessAttemptPayload struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	ResourceType       string    `json:"resource_type"`
	ResourceID         *string   `json:"resource_id,omitempty"`
	PermissionRequired string    `json:"permission_required"`
	AccessGranted      bool      `json:"access_granted"`
	CreatedAt          time.Time `json:"created_at"`
}

// RolePayload describes one role in the catalog listing.
type RolePayload struct {
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Level       int    `json:"level"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func newPermissionPayload(permission domain.Permission) PermissionPayload {
	return PermissionPayload{
		ID:          permission.ID,
		Name:        permission.Name,
		Category:    permission.Category,
		Description: permission.Description,
	}
}

func newPermissionPayloads(permissions []domain.Permission) []PermissionPayload {
	payloads := make([]PermissionPayload, 0, len(permissions))
	for _, permission := range permissions {
		payloads = append(payloads, newPermissionPayload(permission))
	}
	return payloads
}

func newUserPermissionsResponse(userID string, state *domain.UserPermissions) UserPermissionsResponse {
	response := UserPermissionsResponse{
		UserID:                userID,
		Role:                  string(state.Role),
		RoleDisplayName:       state.Role.DisplayName(),
		RolePermissions:       newPermissionPayloads(state.RolePermissions),
		DepartmentPermissions: newPermissionPayloads(state.DepartmentPermissions),
		TeamPermissions:       newPermissionPayloads(state.TeamPermissions),
		Effective:             newPermissionPayloads(state.Effective),
	}

	response.CustomPermissions = make([]CustomGrantPayload, 0, len(state.CustomPermissions))
	for _, grant := range state.CustomPermissions {
		response.CustomPermissions = append(response.CustomPermissions, CustomGrantPayload{
			ID:         grant.ID,
			Permission: newPermissionPayload(grant.Permission),
			Reason:     grant.Reason,
			ExpiresAt:  grant.ExpiresAt,
			GrantedBy:  grant.GrantedBy,
			CreatedAt:  grant.CreatedAt,
		})
	}

	return response
}

func newUserProfileResponse(profile domain.UserProfile) UserProfileResponse {
	return UserProfileResponse{
		UserID:       profile.UserID,
		Role:         string(profile.Role),
		DepartmentID: profile.DepartmentID,
		ManagerID:    profile.ManagerID,
		EmployeeID:   profile.EmployeeID,
		HireDate:     profile.HireDate,
		IsActive:     profile.IsActive,
		CreatedAt:    profile.CreatedAt,
	}
}
