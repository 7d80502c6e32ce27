package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/usecase"
)

// AuditHandler serves the audit trail listing endpoints.
type AuditHandler struct {
	audit *usecase.AuditService
}

// NewAuditHandler builds an audit handler.
func NewAuditHandler(audit *usecase.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// RegisterRoutes mounts the audit endpoints on the group.
func (h *AuditHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/logs", h.Logs)
	r.GET("/security-events", h.SecurityEvents)
	r.GET("/access-attempts", h.AccessAttempts)
}

func queryInt(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return value
}

// Logs lists administrative actions, most recent first.
func (h *AuditHandler) Logs(c *gin.Context) {
	logs, err := h.audit.ListAuditLogs(c.Request.Context(), usecase.ListAuditLogsInput{
		UserID: strings.TrimSpace(c.Query("user_id")),
		Action: strings.TrimSpace(c.Query("action")),
		Limit:  queryInt(c, "limit"),
		Offset: queryInt(c, "offset"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list audit logs"))
		return
	}

	payloads := make([]AuditLogPayload, 0, len(logs))
	for _, log := range logs {
		payloads = append(payloads, AuditLogPayload{
			ID:        log.ID,
			UserID:    log.UserID,
			Action:    log.Action,
			Metadata:  log.Metadata,
			CreatedAt: log.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"logs": payloads})
}

// SecurityEvents lists security events, most recent first.
func (h *AuditHandler) SecurityEvents(c *gin.Context) {
	events, err := h.audit.ListSecurityEvents(c.Request.Context(), usecase.ListSecurityEventsInput{
		Severity: strings.TrimSpace(c.Query("severity")),
		Limit:    queryInt(c, "limit"),
		Offset:   queryInt(c, "offset"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list security events"))
		return
	}

	payloads := make([]SecurityEventPayload, 0, len(events))
	for _, event := range events {
		payloads = append(payloads, newSecurityEventPayload(event))
	}

	c.JSON(http.StatusOK, gin.H{"events": payloads})
}

// AccessAttempts lists recorded permission checks, most recent first.
func (h *AuditHandler) AccessAttempts(c *gin.Context) {
	attempts, err := h.audit.ListAccessAttempts(c.Request.Context(), usecase.ListAccessAttemptsInput{
		UserID: strings.TrimSpace(c.Query("user_id")),
		Limit:  queryInt(c, "limit"),
		Offset: queryInt(c, "offset"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list access attempts"))
		return
	}

	payloads := make([]AccessAttemptPayload, 0, len(attempts))
	for _, attempt := range attempts {
		payloads = append(payloads, AccessAttemptPayload{
			ID:                 attempt.ID,
			UserID:             attempt.UserID,
			ResourceType:       attempt.ResourceType,
			ResourceID:         attempt.ResourceID,
			PermissionRequired: attempt.PermissionRequired,
			AccessGranted:      attempt.AccessGranted,
			CreatedAt:          attempt.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"attempts": payloads})
}

func newSecurityEventPayload(event domain.SecurityEvent) SecurityEventPayload {
	return SecurityEventPayload{
		ID:          event.ID,
		UserID:      event.UserID,
		EventType:   event.EventType,
		Severity:    string(event.Severity),
		Description: event.Description,
		Metadata:    event.Metadata,
		CreatedAt:   event.CreatedAt,
	}
}
