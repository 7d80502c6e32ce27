package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atelierhq/crm-access/internal/core/domain"
	"github.com/atelierhq/crm-access/internal/core/port"
	"github.com/atelierhq/crm-access/internal/repository"
)

// Permissions required to perform administrative mutations.
const (
	PermissionManageUsers       = "manage_users"
	PermissionManagePermissions = "manage_permissions"
	PermissionManageTeams       = "manage_teams"
)

var (
	// ErrPermissionDenied indicates the actor lacks required permissions.
	ErrPermissionDenied = errors.New("insufficient permissions")
	// ErrUserNotFound is returned when the target user has no active profile.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRole indicates the role is outside the closed enumeration.
	ErrInvalidRole = errors.New("invalid role")
	// ErrPermissionNotFound indicates the named permission has no active catalog entry.
	ErrPermissionNotFound = errors.New("permission not found")
)

// Authorizer answers permission checks for acting administrators. Satisfied by
// AccessService.
type Authorizer interface {
	HasPermission(ctx context.Context, userID, permissionName, resourceType string, resourceID *string) bool
}

// CreateUserInput captures the payload for provisioning a user.
type CreateUserInput struct {
	Email        string
	Role         domain.Role
	DepartmentID *string
	ManagerID    *string
	EmployeeID   *string
	HireDate     *time.Time
}

// UpdateUserRoleInput captures a role change. ExpiresAt and Reason are carried
// into the security event metadata only; the profile row itself is not
// time-limited.
type UpdateUserRoleInput struct {
	UserID    string
	Role      domain.Role
	ExpiresAt *time.Time
	Reason    *string
}

// GrantPermissionInput captures a custom permission grant.
type GrantPermissionInput struct {
	UserID         string
	PermissionName string
	Reason         *string
	ExpiresAt      *time.Time
}

// RevokePermissionInput captures a custom permission revocation.
type RevokePermissionInput struct {
	UserID         string
	PermissionName string
}

// CreateTeamInput captures a team creation request.
type CreateTeamInput struct {
	Name         string
	DepartmentID *string
	TeamLeadID   *string
	MemberIDs    []string
}

// CreateTeamResult returns the created team and the members actually added.
type CreateTeamResult struct {
	Team           domain.Team
	AddedMemberIDs []string
}

// AdminService performs administrative mutations: user provisioning, role
// changes, custom grants, and team creation. Every mutation records a security
// event and an audit log entry, and publishes a bus event; those side effects
// are best-effort and never fail the mutation.
type AdminService struct {
	identity   port.IdentityProvider
	profiles   port.ProfileRepository
	catalog    port.CatalogRepository
	grants     port.GrantRepository
	org        port.OrgRepository
	trail      port.AuditTrail
	publisher  port.EventPublisher
	authorizer Authorizer
	logger     *zap.Logger
	now        func() time.Time
}

// NewAdminService constructs an AdminService.
func NewAdminService(
	identity port.IdentityProvider,
	profiles port.ProfileRepository,
	catalog port.CatalogRepository,
	grants port.GrantRepository,
	org port.OrgRepository,
	trail port.AuditTrail,
	publisher port.EventPublisher,
	logger *zap.Logger,
) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		identity:  identity,
		profiles:  profiles,
		catalog:   catalog,
		grants:    grants,
		org:       org,
		trail:     trail,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithAuthorizer enables actor permission checks on every mutation.
func (s *AdminService) WithAuthorizer(authorizer Authorizer) *AdminService {
	s.authorizer = authorizer
	return s
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *AdminService) WithClock(now func() time.Time) *AdminService {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *AdminService) authorize(ctx context.Context, actorID, permission string) error {
	if s.authorizer == nil {
		return nil
	}
	if !s.authorizer.HasPermission(ctx, actorID, permission, domain.ResourceTypeGlobal, nil) {
		return ErrPermissionDenied
	}
	return nil
}

// CreateUser provisions an identity record and a profile bound to it. The two
// writes are kept consistent by compensation: when the profile insert fails,
// the freshly created account is deleted so no orphaned identity remains.
func (s *AdminService) CreateUser(ctx context.Context, actorID string, input CreateUserInput) (*domain.UserProfile, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, fmt.Errorf("actor id is required")
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	if !input.Role.Valid() {
		return nil, fmt.Errorf("role %q: %w", input.Role, ErrInvalidRole)
	}

	if err := s.authorize(ctx, actorID, PermissionManageUsers); err != nil {
		return nil, err
	}

	accountID, err := s.identity.CreateAccount(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	now := s.now().UTC()
	profile := domain.UserProfile{
		UserID:       accountID,
		Role:         input.Role,
		DepartmentID: input.DepartmentID,
		ManagerID:    input.ManagerID,
		EmployeeID:   input.EmployeeID,
		HireDate:     input.HireDate,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if delErr := s.identity.DeleteAccount(ctx, accountID); delErr != nil {
			s.logger.Error("compensating account delete failed, orphaned identity remains",
				zap.String("account_id", accountID),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	metadata := map[string]any{
		"role":       string(input.Role),
		"created_by": actorID,
	}
	s.trail.RecordSecurityEvent(ctx, domain.SecurityEvent{
		ID:          uuid.NewString(),
		UserID:      accountID,
		EventType:   domain.EventUserCreated,
		Severity:    domain.SeverityHigh,
		Description: fmt.Sprintf("user created with role %s", input.Role),
		Metadata:    metadata,
		CreatedAt:   now,
	})
	s.trail.RecordAdminAction(ctx, actorID, domain.EventUserCreated, map[string]any{
		"target_user_id": accountID,
		"role":           string(input.Role),
	})

	emailCopy := email
	if err := s.publisher.PublishUserCreated(ctx, domain.UserCreatedEvent{
		EventID:   uuid.NewString(),
		UserID:    accountID,
		Email:     &emailCopy,
		Role:      input.Role,
		CreatedBy: actorID,
		CreatedAt: now,
	}); err != nil {
		s.logger.Warn("publish user created event failed", zap.String("user_id", accountID), zap.Error(err))
	}

	return &profile, nil
}

// UpdateUserRole changes the role on the target's active profile.
func (s *AdminService) UpdateUserRole(ctx context.Context, actorID string, input UpdateUserRoleInput) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return fmt.Errorf("actor id is required")
	}

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	if !input.Role.Valid() {
		return fmt.Errorf("role %q: %w", input.Role, ErrInvalidRole)
	}

	if err := s.authorize(ctx, actorID, PermissionManageUsers); err != nil {
		return err
	}

	profile, err := s.profiles.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load profile: %w", err)
	}

	if err := s.profiles.UpdateRole(ctx, userID, input.Role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update role: %w", err)
	}

	now := s.now().UTC()
	metadata := map[string]any{
		"previous_role": string(profile.Role),
		"new_role":      string(input.Role),
		"changed_by":    actorID,
	}
	if input.ExpiresAt != nil {
		metadata["expires_at"] = input.ExpiresAt.UTC()
	}
	if input.Reason != nil {
		metadata["reason"] = *input.Reason
	}

	s.trail.RecordSecurityEvent(ctx, domain.SecurityEvent{
		ID:          uuid.NewString(),
		UserID:      userID,
		EventType:   domain.EventRoleChanged,
		Severity:    domain.SeverityHigh,
		Description: fmt.Sprintf("role changed from %s to %s", profile.Role, input.Role),
		Metadata:    metadata,
		CreatedAt:   now,
	})
	s.trail.RecordAdminAction(ctx, actorID, domain.EventRoleChanged, map[string]any{
		"target_user_id": userID,
		"new_role":       string(input.Role),
	})

	if err := s.publisher.PublishRoleChanged(ctx, domain.RoleChangedEvent{
		EventID:      uuid.NewString(),
		UserID:       userID,
		PreviousRole: profile.Role,
		NewRole:      input.Role,
		ChangedBy:    actorID,
		ChangedAt:    now,
		ExpiresAt:    input.ExpiresAt,
		Reason:       input.Reason,
	}); err != nil {
		s.logger.Warn("publish role changed event failed", zap.String("user_id", userID), zap.Error(err))
	}

	return nil
}

// GrantPermission inserts an active custom grant for the named catalog
// permission.
func (s *AdminService) GrantPermission(ctx context.Context, actorID string, input GrantPermissionInput) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return fmt.Errorf("actor id is required")
	}

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	permissionName := strings.TrimSpace(input.PermissionName)
	if permissionName == "" {
		return fmt.Errorf("permission name is required")
	}

	if err := s.authorize(ctx, actorID, PermissionManagePermissions); err != nil {
		return err
	}

	permission, err := s.catalog.GetByName(ctx, permissionName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("permission %q: %w", permissionName, ErrPermissionNotFound)
		}
		return fmt.Errorf("lookup permission: %w", err)
	}

	now := s.now().UTC()
	grant := domain.UserPermission{
		ID:           uuid.NewString(),
		UserID:       userID,
		PermissionID: permission.ID,
		Permission:   *permission,
		Reason:       input.Reason,
		ExpiresAt:    input.ExpiresAt,
		GrantedBy:    actorID,
		IsActive:     true,
		CreatedAt:    now,
	}

	if err := s.grants.Create(ctx, grant); err != nil {
		return fmt.Errorf("create grant: %w", err)
	}

	metadata := map[string]any{
		"permission": permission.Name,
		"granted_by": actorID,
	}
	if input.ExpiresAt != nil {
		metadata["expires_at"] = input.ExpiresAt.UTC()
	}
	if input.Reason != nil {
		metadata["reason"] = *input.Reason
	}

	s.trail.RecordSecurityEvent(ctx, domain.SecurityEvent{
		ID:          uuid.NewString(),
		UserID:      userID,
		EventType:   domain.EventPermissionGranted,
		Severity:    domain.SeverityMedium,
		Description: fmt.Sprintf("permission %s granted", permission.Name),
		Metadata:    metadata,
		CreatedAt:   now,
	})
	s.trail.RecordAdminAction(ctx, actorID, domain.EventPermissionGranted, map[string]any{
		"target_user_id": userID,
		"permission":     permission.Name,
	})

	if err := s.publisher.PublishPermissionGranted(ctx, domain.PermissionGrantedEvent{
		EventID:        uuid.NewString(),
		UserID:         userID,
		PermissionID:   permission.ID,
		PermissionName: permission.Name,
		GrantedBy:      actorID,
		GrantedAt:      now,
		ExpiresAt:      input.ExpiresAt,
		Reason:         input.Reason,
	}); err != nil {
		s.logger.Warn("publish permission granted event failed", zap.String("user_id", userID), zap.Error(err))
	}

	return nil
}

// RevokePermission deactivates the matching active grant. Revoking a grant
// that is already inactive, or was never made, succeeds without error and
// changes nothing.
func (s *AdminService) RevokePermission(ctx context.Context, actorID string, input RevokePermissionInput) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return fmt.Errorf("actor id is required")
	}

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	permissionName := strings.TrimSpace(input.PermissionName)
	if permissionName == "" {
		return fmt.Errorf("permission name is required")
	}

	if err := s.authorize(ctx, actorID, PermissionManagePermissions); err != nil {
		return err
	}

	permission, err := s.catalog.GetByName(ctx, permissionName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("permission %q: %w", permissionName, ErrPermissionNotFound)
		}
		return fmt.Errorf("lookup permission: %w", err)
	}

	revoked, err := s.grants.Deactivate(ctx, userID, permission.ID)
	if err != nil {
		return fmt.Errorf("deactivate grant: %w", err)
	}

	now := s.now().UTC()
	s.trail.RecordSecurityEvent(ctx, domain.SecurityEvent{
		ID:          uuid.NewString(),
		UserID:      userID,
		EventType:   domain.EventPermissionRevoked,
		Severity:    domain.SeverityMedium,
		Description: fmt.Sprintf("permission %s revoked", permission.Name),
		Metadata: map[string]any{
			"permission":     permission.Name,
			"revoked_by":     actorID,
			"grants_revoked": revoked,
		},
		CreatedAt: now,
	})
	s.trail.RecordAdminAction(ctx, actorID, domain.EventPermissionRevoked, map[string]any{
		"target_user_id": userID,
		"permission":     permission.Name,
	})

	if err := s.publisher.PublishPermissionRevoked(ctx, domain.PermissionRevokedEvent{
		EventID:        uuid.NewString(),
		UserID:         userID,
		PermissionID:   permission.ID,
		PermissionName: permission.Name,
		RevokedBy:      actorID,
		RevokedAt:      now,
	}); err != nil {
		s.logger.Warn("publish permission revoked event failed", zap.String("user_id", userID), zap.Error(err))
	}

	return nil
}

// CreateTeam creates the team row and then adds the requested members
// best-effort: a failed member insert is logged and skipped, the team itself
// still exists. This partial success is intentional.
func (s *AdminService) CreateTeam(ctx context.Context, actorID string, input CreateTeamInput) (*CreateTeamResult, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, fmt.Errorf("actor id is required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("team name is required")
	}

	if err := s.authorize(ctx, actorID, PermissionManageTeams); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	team := domain.Team{
		ID:           uuid.NewString(),
		Name:         name,
		DepartmentID: input.DepartmentID,
		TeamLeadID:   input.TeamLeadID,
		IsActive:     true,
		CreatedAt:    now,
	}

	if err := s.org.CreateTeam(ctx, team); err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}

	result := &CreateTeamResult{Team: team}
	seen := make(map[string]struct{}, len(input.MemberIDs))
	for _, memberID := range input.MemberIDs {
		trimmed := strings.TrimSpace(memberID)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		member := domain.TeamMember{
			TeamID:   team.ID,
			UserID:   trimmed,
			Role:     "member",
			IsActive: true,
		}
		if err := s.org.AddTeamMember(ctx, member); err != nil {
			s.logger.Warn("team member insert failed, continuing without member",
				zap.String("team_id", team.ID),
				zap.String("user_id", trimmed),
				zap.Error(err),
			)
			continue
		}
		result.AddedMemberIDs = append(result.AddedMemberIDs, trimmed)
	}

	s.trail.RecordSecurityEvent(ctx, domain.SecurityEvent{
		ID:          uuid.NewString(),
		UserID:      actorID,
		EventType:   domain.EventTeamCreated,
		Severity:    domain.SeverityLow,
		Description: fmt.Sprintf("team %s created", team.Name),
		Metadata: map[string]any{
			"team_id": team.ID,
			"members": len(result.AddedMemberIDs),
		},
		CreatedAt: now,
	})
	s.trail.RecordAdminAction(ctx, actorID, domain.EventTeamCreated, map[string]any{
		"team_id": team.ID,
		"name":    team.Name,
	})

	if err := s.publisher.PublishTeamCreated(ctx, domain.TeamCreatedEvent{
		EventID:   uuid.NewString(),
		TeamID:    team.ID,
		Name:      team.Name,
		CreatedBy: actorID,
		MemberIDs: result.AddedMemberIDs,
		CreatedAt: now,
	}); err != nil {
		s.logger.Warn("publish team created event failed", zap.String("team_id", team.ID), zap.Error(err))
	}

	return result, nil
}
