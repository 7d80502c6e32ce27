package port

import (
	"context"

	"github.com/atelierhq/crm-access/internal/core/domain"
)

// EventPublisher publishes administrative events to the message bus.
type EventPublisher interface {
	PublishUserCreated(ctx context.Context, event domain.UserCreatedEvent) error
	PublishRoleChanged(ctx context.Context, event domain.RoleChangedEvent) error
	PublishPermissionGranted(ctx context.Context, event domain.PermissionGrantedEvent) error
	PublishPermissionRevoked(ctx context.Context, event domain.PermissionRevokedEvent) error
	PublishTeamCreated(ctx context.Context, event domain.TeamCreatedEvent) error
}
