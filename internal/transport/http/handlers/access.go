package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/usecase"
)

// AccessHandler serves permission resolution and check endpoints.
type AccessHandler struct {
	access *usecase.AccessService
}

// NewAccessHandler builds an access handler.
func NewAccessHandler(access *usecase.AccessService) *AccessHandler {
	return &AccessHandler{access: access}
}

// RegisterRoutes mounts the read-side endpoints on the group.
func (h *AccessHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/access/check", h.Check)
	r.GET("/users/:id/permissions", h.UserPermissions)
	r.GET("/users/:id/role", h.UserRole)
	r.GET("/users/:id/can-manage/:targetId", h.CanManage)
	r.GET("/roles", h.Roles)
}

// Check answers a single permission check. The response is always 200 with a
// granted boolean: a denial is an answer, not an error.
func (h *AccessHandler) Check(c *gin.Context) {
	var req AccessCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid access check payload"))
		return
	}

	resourceType := strings.TrimSpace(req.ResourceType)
	if resourceType == "" {
		resourceType = domain.ResourceTypeGlobal
	}

	granted := h.access.HasPermission(
		c.Request.Context(),
		strings.TrimSpace(req.UserID),
		strings.TrimSpace(req.Permission),
		resourceType,
		req.ResourceID,
	)

	c.JSON(http.StatusOK, AccessCheckResponse{
		UserID:       strings.TrimSpace(req.UserID),
		Permission:   strings.TrimSpace(req.Permission),
		ResourceType: resourceType,
		Granted:      granted,
	})
}

// UserPermissions returns the full resolved permission state for a user.
func (h *AccessHandler) UserPermissions(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user id is required"))
		return
	}

	state, err := h.access.GetUserPermissions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to resolve permissions"))
		return
	}
	if state == nil {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "user has no active profile"))
		return
	}

	c.JSON(http.StatusOK, newUserPermissionsResponse(userID, state))
}

// UserRole returns the user's role with presentation metadata.
func (h *AccessHandler) UserRole(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user id is required"))
		return
	}

	role, ok := h.access.GetUserRole(c.Request.Context(), userID)
	if !ok {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "user has no active profile"))
		return
	}

	c.JSON(http.StatusOK, UserRoleResponse{
		UserID:      userID,
		Role:        string(role),
		DisplayName: role.DisplayName(),
		Description: role.Description(),
		Level:       role.Level(),
		Color:       role.Color(),
		Icon:        role.Icon(),
	})
}

// CanManage reports whether one user outranks another.
func (h *AccessHandler) CanManage(c *gin.Context) {
	managerID := strings.TrimSpace(c.Param("id"))
	targetID := strings.TrimSpace(c.Param("targetId"))
	if managerID == "" || targetID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "both user ids are required"))
		return
	}

	c.JSON(http.StatusOK, CanManageResponse{
		ManagerID:    managerID,
		TargetUserID: targetID,
		CanManage:    h.access.CanManageUser(c.Request.Context(), managerID, targetID),
	})
}

// Roles lists the role catalog ordered by descending authority.
func (h *AccessHandler) Roles(c *gin.Context) {
	roles := domain.Roles()
	payloads := make([]RolePayload, 0, len(roles))
	for _, role := range roles {
		payloads = append(payloads, RolePayload{
			Role:        string(role),
			DisplayName: role.DisplayName(),
			Description: role.Description(),
			Level:       role.Level(),
			Color:       role.Color(),
			Icon:        role.Icon(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"roles": payloads})
}
