package usecase

import (
	"context"
	"time"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/repository"
)

// Stateful in-memory mocks shared by the service tests.

type profileRepoMock struct {
	profiles  map[string]domain.UserProfile
	createErr error
	getErr    error
	updateErr error
	created   []domain.UserProfile
}

func (m *profileRepoMock) Create(_ context.Context, profile domain.UserProfile) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.profiles == nil {
		m.profiles = make(map[string]domain.UserProfile)
	}
	m.profiles[profile.UserID] = profile
	m.created = append(m.created, profile)
	return nil
}

func (m *profileRepoMock) GetActiveByUser(_ context.Context, userID string) (*domain.UserProfile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	profile, ok := m.profiles[userID]
	if !ok || !profile.IsActive {
		return nil, repository.ErrNotFound
	}
	return &profile, nil
}

func (m *profileRepoMock) UpdateRole(_ context.Context, userID string, role domain.Role) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	profile, ok := m.profiles[userID]
	if !ok || !profile.IsActive {
		return repository.ErrNotFound
	}
	profile.Role = role
	m.profiles[userID] = profile
	return nil
}

type catalogRepoMock struct {
	byName        map[string]domain.Permission
	byRole        map[domain.Role][]domain.Permission
	byDepartment  map[string][]domain.Permission
	byTeam        map[string][]domain.Permission
	roleErr       error
	departmentErr error
	teamsErr      error
}

func (m *catalogRepoMock) GetByName(_ context.Context, name string) (*domain.Permission, error) {
	if perm, ok := m.byName[name]; ok {
		return &perm, nil
	}
	return nil, repository.ErrNotFound
}

func (m *catalogRepoMock) ListByRole(_ context.Context, role domain.Role) ([]domain.Permission, error) {
	if m.roleErr != nil {
		return nil, m.roleErr
	}
	return m.byRole[role], nil
}

func (m *catalogRepoMock) ListByDepartment(_ context.Context, departmentID string) ([]domain.Permission, error) {
	if m.departmentErr != nil {
		return nil, m.departmentErr
	}
	return m.byDepartment[departmentID], nil
}

func (m *catalogRepoMock) ListByTeams(_ context.Context, teamIDs []string) ([]domain.Permission, error) {
	if m.teamsErr != nil {
		return nil, m.teamsErr
	}
	var result []domain.Permission
	seen := make(map[string]struct{})
	for _, teamID := range teamIDs {
		for _, perm := range m.byTeam[teamID] {
			if _, ok := seen[perm.ID]; ok {
				continue
			}
			seen[perm.ID] = struct{}{}
			result = append(result, perm)
		}
	}
	return result, nil
}

type grantRepoMock struct {
	grants    []domain.UserPermission
	createErr error
	listErr   error
	deactErr  error
}

func (m *grantRepoMock) Create(_ context.Context, grant domain.UserPermission) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.grants = append(m.grants, grant)
	return nil
}

func (m *grantRepoMock) ListActiveByUser(_ context.Context, userID string, now time.Time) ([]domain.UserPermission, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []domain.UserPermission
	for _, grant := range m.grants {
		if grant.UserID != userID || !grant.IsActive || grant.Expired(now) {
			continue
		}
		result = append(result, grant)
	}
	return result, nil
}

func (m *grantRepoMock) Deactivate(_ context.Context, userID, permissionID string) (int64, error) {
	if m.deactErr != nil {
		return 0, m.deactErr
	}
	var affected int64
	for i, grant := range m.grants {
		if grant.UserID == userID && grant.PermissionID == permissionID && grant.IsActive {
			m.grants[i].IsActive = false
			affected++
		}
	}
	return affected, nil
}

type orgRepoMock struct {
	teams         []domain.Team
	members       []domain.TeamMember
	teamsByUser   map[string][]string
	createErr     error
	addMemberErr  map[string]error
	listTeamsErr  error
}

func (m *orgRepoMock) CreateTeam(_ context.Context, team domain.Team) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.teams = append(m.teams, team)
	return nil
}

func (m *orgRepoMock) AddTeamMember(_ context.Context, member domain.TeamMember) error {
	if err := m.addMemberErr[member.UserID]; err != nil {
		return err
	}
	m.members = append(m.members, member)
	return nil
}

func (m *orgRepoMock) ListTeamIDsByUser(_ context.Context, userID string) ([]string, error) {
	if m.listTeamsErr != nil {
		return nil, m.listTeamsErr
	}
	return m.teamsByUser[userID], nil
}

type identityMock struct {
	nextID    string
	createErr error
	deleteErr error
	created   []string
	deleted   []string
}

func (m *identityMock) CreateAccount(_ context.Context, _ string) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	id := m.nextID
	if id == "" {
		id = "account-1"
	}
	m.created = append(m.created, id)
	return id, nil
}

func (m *identityMock) DeleteAccount(_ context.Context, accountID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, accountID)
	return nil
}

type trailMock struct {
	attempts []domain.AccessAttempt
	events   []domain.SecurityEvent
	actions  []domain.AuditLog
}

func (m *trailMock) RecordAccessAttempt(_ context.Context, attempt domain.AccessAttempt) {
	m.attempts = append(m.attempts, attempt)
}

func (m *trailMock) RecordSecurityEvent(_ context.Context, event domain.SecurityEvent) {
	m.events = append(m.events, event)
}

func (m *trailMock) RecordAdminAction(_ context.Context, userID, action string, metadata map[string]any) {
	m.actions = append(m.actions, domain.AuditLog{UserID: userID, Action: action, Metadata: metadata})
}

type publisherMock struct {
	userCreated        []domain.UserCreatedEvent
	roleChanged        []domain.RoleChangedEvent
	permissionGranted  []domain.PermissionGrantedEvent
	permissionRevoked  []domain.PermissionRevokedEvent
	teamCreated        []domain.TeamCreatedEvent
	publishErr         error
}

func (m *publisherMock) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.userCreated = append(m.userCreated, event)
	return nil
}

func (m *publisherMock) PublishRoleChanged(_ context.Context, event domain.RoleChangedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.roleChanged = append(m.roleChanged, event)
	return nil
}

func (m *publisherMock) PublishPermissionGranted(_ context.Context, event domain.PermissionGrantedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.permissionGranted = append(m.permissionGranted, event)
	return nil
}

func (m *publisherMock) PublishPermissionRevoked(_ context.Context, event domain.PermissionRevokedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.permissionRevoked = append(m.permissionRevoked, event)
	return nil
}

func (m *publisherMock) PublishTeamCreated(_ context.Context, event domain.TeamCreatedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.teamCreated = append(m.teamCreated, event)
	return nil
}

type authorizerMock struct {
	allowed map[string]bool
	calls   []string
}

func (m *authorizerMock) HasPermission(_ context.Context, userID, permissionName, _ string, _ *string) bool {
	m.calls = append(m.calls, userID+":"+permissionName)
	return m.allowed[permissionName]
}
