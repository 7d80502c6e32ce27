package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments and deployments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserCreated logs crm.access.user.created events.
func (p *StubPublisher) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"role":       string(event.Role),
		"created_by": event.CreatedBy,
		"created_at": event.CreatedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent(topicUserCreated, event.UserID, event.CreatedAt, payload)
	return nil
}

// PublishRoleChanged logs crm.access.user.role.changed events.
func (p *StubPublisher) PublishRoleChanged(_ context.Context, event domain.RoleChangedEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"previous_role": string(event.PreviousRole),
		"new_role":      string(event.NewRole),
		"changed_by":    event.ChangedBy,
		"changed_at":    event.ChangedAt,
		"expires_at":    event.ExpiresAt,
		"reason":        event.Reason,
		"metadata":      event.Metadata,
	}
	p.logEvent(topicRoleChanged, event.UserID, event.ChangedAt, payload)
	return nil
}

// PublishPermissionGranted logs crm.access.permission.granted events.
func (p *StubPublisher) PublishPermissionGranted(_ context.Context, event domain.PermissionGrantedEvent) error {
	payload := map[string]any{
		"user_id":         event.UserID,
		"permission_id":   event.PermissionID,
		"permission_name": event.PermissionName,
		"granted_by":      event.GrantedBy,
		"granted_at":      event.GrantedAt,
		"expires_at":      event.ExpiresAt,
		"reason":          event.Reason,
		"metadata":        event.Metadata,
	}
	p.logEvent(topicPermissionGranted, event.UserID, event.GrantedAt, payload)
	return nil
}

// PublishPermissionRevoked logs crm.access.permission.revoked events.
func (p *StubPublisher) PublishPermissionRevoked(_ context.Context, event domain.PermissionRevokedEvent) error {
	payload := map[string]any{
		"user_id":         event.UserID,
		"permission_id":   event.PermissionID,
		"permission_name": event.PermissionName,
		"revoked_by":      event.RevokedBy,
		"revoked_at":      event.RevokedAt,
		"metadata":        event.Metadata,
	}
	p.logEvent(topicPermissionRevoked, event.UserID, event.RevokedAt, payload)
	return nil
}

// PublishTeamCreated logs crm.access.team.created events.
func (p *StubPublisher) PublishTeamCreated(_ context.Context, event domain.TeamCreatedEvent) error {
	payload := map[string]any{
		"team_id":    event.TeamID,
		"name":       event.Name,
		"created_by": event.CreatedBy,
		"member_ids": event.MemberIDs,
		"created_at": event.CreatedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent(topicTeamCreated, event.CreatedBy, event.CreatedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
