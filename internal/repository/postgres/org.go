package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/core/port"
)

// OrgRepository implements port.OrgRepository over PostgreSQL.
type OrgRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewOrgRepository constructs an org repository backed by any executor that
// satisfies pgExecutor.
func NewOrgRepository(exec pgExecutor) *OrgRepository {
	return &OrgRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateTeam inserts a new team row.
func (r *OrgRepository) CreateTeam(ctx context.Context, team domain.Team) error {
	stmt, args, err := r.builder.Insert("crm.teams").
		Columns("id", "name", "department_id", "team_lead_id", "is_active", "created_at").
		Values(team.ID, team.Name, team.DepartmentID, team.TeamLeadID, team.IsActive, team.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert team sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert team: %w", err)
	}

	return nil
}

// AddTeamMember inserts a team membership row.
func (r *OrgRepository) AddTeamMember(ctx context.Context, member domain.TeamMember) error {
	stmt, args, err := r.builder.Insert("crm.team_members").
		Columns("team_id", "user_id", "role", "is_active").
		Values(member.TeamID, member.UserID, member.Role, member.IsActive).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert team member sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert team member: %w", err)
	}

	return nil
}

// ListTeamIDsByUser returns the ids of active teams the user actively belongs
// to.
func (r *OrgRepository) ListTeamIDsByUser(ctx context.Context, userID string) ([]string, error) {
	stmt, args, err := r.builder.Select("tm.team_id").
		From("crm.team_members tm").
		Join("crm.teams t ON t.id = tm.team_id").
		Where(squirrel.Eq{"tm.user_id": userID, "tm.is_active": true, "t.is_active": true}).
		OrderBy("tm.team_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build team ids by user sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query team ids: %w", err)
	}
	defer rows.Close()

	var teamIDs []string
	for rows.Next() {
		var teamID string
		if err := rows.Scan(&teamID); err != nil {
			return nil, fmt.Errorf("scan team id: %w", err)
		}
		teamIDs = append(teamIDs, teamID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team ids: %w", err)
	}

	return teamIDs, nil
}

var _ port.OrgRepository = (*OrgRepository)(nil)
