package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/transport/http/middleware"
	"github.com/atelierhq/crm-access/internal/usecase"
)

// AdminHandler serves administrative mutation endpoints.
type AdminHandler struct {
	admin *usecase.AdminService
}

// NewAdminHandler builds an admin handler.
func NewAdminHandler(admin *usecase.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// RegisterRoutes mounts the mutation endpoints on the group. Callers are
// expected to guard the group with the actor middleware.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/users", h.CreateUser)
	r.PUT("/users/:id/role", h.UpdateRole)
	r.POST("/permissions/grant", h.GrantPermission)
	r.POST("/permissions/revoke", h.RevokePermission)
	r.POST("/teams", h.CreateTeam)
}

func (h *AdminHandler) actor(c *gin.Context) (string, bool) {
	actorID := middleware.GetActorID(c)
	if actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "acting user is not identified"))
		return "", false
	}
	return actorID, true
}

// CreateUser provisions an account and an active profile.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	profile, err := h.admin.CreateUser(c.Request.Context(), actorID, usecase.CreateUserInput{
		Email:        strings.TrimSpace(req.Email),
		Role:         domain.Role(strings.TrimSpace(req.Role)),
		DepartmentID: req.DepartmentID,
		ManagerID:    req.ManagerID,
		EmployeeID:   req.EmployeeID,
		HireDate:     req.HireDate,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: usecase.ErrInvalidRole, Status: http.StatusBadRequest, Message: "invalid role"},
		}, http.StatusInternalServerError, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, newUserProfileResponse(*profile))
}

// UpdateRole changes the target user's role.
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user id is required"))
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	err := h.admin.UpdateUserRole(c.Request.Context(), actorID, usecase.UpdateUserRoleInput{
		UserID:    userID,
		Role:      domain.Role(strings.TrimSpace(req.Role)),
		ExpiresAt: req.ExpiresAt,
		Reason:    req.Reason,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: usecase.ErrInvalidRole, Status: http.StatusBadRequest, Message: "invalid role"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to update role")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "role updated"})
}

// GrantPermission grants a custom permission to a user.
func (h *AdminHandler) GrantPermission(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req GrantPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid grant payload"))
		return
	}

	err := h.admin.GrantPermission(c.Request.Context(), actorID, usecase.GrantPermissionInput{
		UserID:         strings.TrimSpace(req.UserID),
		PermissionName: strings.TrimSpace(req.Permission),
		Reason:         req.Reason,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: usecase.ErrPermissionNotFound, Status: http.StatusNotFound, Message: "permission not found"},
		}, http.StatusInternalServerError, "failed to grant permission")
		return
	}

	c.JSON(http.StatusCreated, MessageResponse{Message: "permission granted"})
}

// RevokePermission revokes a custom permission. Revoking a grant that does not
// exist succeeds.
func (h *AdminHandler) RevokePermission(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req RevokePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid revoke payload"))
		return
	}

	err := h.admin.RevokePermission(c.Request.Context(), actorID, usecase.RevokePermissionInput{
		UserID:         strings.TrimSpace(req.UserID),
		PermissionName: strings.TrimSpace(req.Permission),
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: usecase.ErrPermissionNotFound, Status: http.StatusNotFound, Message: "permission not found"},
		}, http.StatusInternalServerError, "failed to revoke permission")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "permission revoked"})
}

// CreateTeam creates a team and adds the requested members best-effort.
func (h *AdminHandler) CreateTeam(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid team payload"))
		return
	}

	result, err := h.admin.CreateTeam(c.Request.Context(), actorID, usecase.CreateTeamInput{
		Name:         strings.TrimSpace(req.Name),
		DepartmentID: req.DepartmentID,
		TeamLeadID:   req.TeamLeadID,
		MemberIDs:    req.MemberIDs,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
		}, http.StatusInternalServerError, "failed to create team")
		return
	}

	c.JSON(http.StatusCreated, CreateTeamResponse{
		TeamID:         result.Team.ID,
		Name:           result.Team.Name,
		DepartmentID:   result.Team.DepartmentID,
		TeamLeadID:     result.Team.TeamLeadID,
		AddedMemberIDs: result.AddedMemberIDs,
		CreatedAt:      result.Team.CreatedAt,
	})
}
