package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/core/port"
	"github.com/atelierhq/crm-access/internal/infra/config"
)

const schemaVersion = "1.0"

// Topic suffixes; the producer prepends the configured prefix (crm.access by
// default).
const (
	topicUserCreated       = "user.created"
	topicRoleChanged       = "user.role.changed"
	topicPermissionGranted = "permission.granted"
	topicPermissionRevoked = "permission.revoked"
	topicTeamCreated       = "team.created"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserCreated publishes crm.access.user.created events.
func (p *EventPublisher) PublishUserCreated(ctx context.Context, event domain.UserCreatedEvent) error {
	payload := struct {
		UserID    string         `json:"user_id"`
		Email     *string        `json:"email,omitempty"`
		Role      string         `json:"role"`
		CreatedBy string         `json:"created_by"`
		CreatedAt time.Time      `json:"created_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		UserID:    event.UserID,
		Email:     event.Email,
		Role:      string(event.Role),
		CreatedBy: event.CreatedBy,
		CreatedAt: event.CreatedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicUserCreated, event.UserID, event.CreatedAt, payload)
}

// PublishRoleChanged publishes crm.access.user.role.changed events.
func (p *EventPublisher) PublishRoleChanged(ctx context.Context, event domain.RoleChangedEvent) error {
	payload := struct {
		UserID       string         `json:"user_id"`
		PreviousRole string         `json:"previous_role"`
		NewRole      string         `json:"new_role"`
		ChangedBy    string         `json:"changed_by"`
		ChangedAt    time.Time      `json:"changed_at"`
		ExpiresAt    *time.Time     `json:"expires_at,omitempty"`
		Reason       *string        `json:"reason,omitempty"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		UserID:       event.UserID,
		PreviousRole: string(event.PreviousRole),
		NewRole:      string(event.NewRole),
		ChangedBy:    event.ChangedBy,
		ChangedAt:    event.ChangedAt.UTC(),
		ExpiresAt:    event.ExpiresAt,
		Reason:       event.Reason,
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicRoleChanged, event.UserID, event.ChangedAt, payload)
}

// PublishPermissionGranted publishes crm.access.permission.granted events.
func (p *EventPublisher) PublishPermissionGranted(ctx context.Context, event domain.PermissionGrantedEvent) error {
	payload := struct {
		UserID         string         `json:"user_id"`
		PermissionID   string         `json:"permission_id"`
		PermissionName string         `json:"permission_name"`
		GrantedBy      string         `json:"granted_by"`
		GrantedAt      time.Time      `json:"granted_at"`
		ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
		Reason         *string        `json:"reason,omitempty"`
		Metadata       map[string]any `json:"metadata,omitempty"`
	}{
		UserID:         event.UserID,
		PermissionID:   event.PermissionID,
		PermissionName: event.PermissionName,
		GrantedBy:      event.GrantedBy,
		GrantedAt:      event.GrantedAt.UTC(),
		ExpiresAt:      event.ExpiresAt,
		Reason:         event.Reason,
		Metadata:       event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicPermissionGranted, event.UserID, event.GrantedAt, payload)
}

// PublishPermissionRevoked publishes crm.access.permission.revoked events.
func (p *EventPublisher) PublishPermissionRevoked(ctx context.Context, event domain.PermissionRevokedEvent) error {
	payload := struct {
		UserID         string         `json:"user_id"`
		PermissionID   string         `json:"permission_id"`
		PermissionName string         `json:"permission_name"`
		RevokedBy      string         `json:"revoked_by"`
		RevokedAt      time.Time      `json:"revoked_at"`
		Metadata       map[string]any `json:"metadata,omitempty"`
	}{
		UserID:         event.UserID,
		PermissionID:   event.PermissionID,
		PermissionName: event.PermissionName,
		RevokedBy:      event.RevokedBy,
		RevokedAt:      event.RevokedAt.UTC(),
		Metadata:       event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicPermissionRevoked, event.UserID, event.RevokedAt, payload)
}

// PublishTeamCreated publishes crm.access.team.created events.
func (p *EventPublisher) PublishTeamCreated(ctx context.Context, event domain.TeamCreatedEvent) error {
	payload := struct {
		TeamID    string         `json:"team_id"`
		Name      string         `json:"name"`
		CreatedBy string         `json:"created_by"`
		MemberIDs []string       `json:"member_ids,omitempty"`
		CreatedAt time.Time      `json:"created_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		TeamID:    event.TeamID,
		Name:      event.Name,
		CreatedBy: event.CreatedBy,
		MemberIDs: event.MemberIDs,
		CreatedAt: event.CreatedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicTeamCreated, event.CreatedBy, event.CreatedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
