package port

import (
	"context"

	"github.com/atelierhq/crm-access/internal/core/domain"
)

// OrgRepository handles departments, teams, and team membership.
type OrgRepository interface {
	CreateTeam(ctx context.Context, team domain.Team) error
	AddTeamMember(ctx context.Context, member domain.TeamMember) error
	ListTeamIDsByUser(ctx context.Context, userID string) ([]string, error)
}
