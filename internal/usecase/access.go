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
	"github.com/atelierhq/crm-access/internal/infra/telemetry"
	"github.com/atelierhq/crm-access/internal/repository"
)

// AccessService resolves effective permissions and answers point-in-time
// permission checks. It is stateless per call: every check re-reads the store,
// so a committed grant or role change is visible on the next check with no
// caching delay.
type AccessService struct {
	profiles port.ProfileRepository
	catalog  port.CatalogRepository
	grants   port.GrantRepository
	org      port.OrgRepository
	trail    port.AuditTrail
	metrics  *telemetry.AccessMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccessService constructs an AccessService.
func NewAccessService(
	profiles port.ProfileRepository,
	catalog port.CatalogRepository,
	grants port.GrantRepository,
	org port.OrgRepository,
	trail port.AuditTrail,
	logger *zap.Logger,
) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{
		profiles: profiles,
		catalog:  catalog,
		grants:   grants,
		org:      org,
		trail:    trail,
		logger:   logger,
		now:      time.Now,
	}
}

// WithMetrics attaches Prometheus decision collectors.
func (s *AccessService) WithMetrics(metrics *telemetry.AccessMetrics) *AccessService {
	s.metrics = metrics
	return s
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *AccessService) WithClock(now func() time.Time) *AccessService {
	if now != nil {
		s.now = now
	}
	return s
}

// GetUserPermissions computes the full permission state for a user. It
// returns (nil, nil) when the user has no active profile: that is the
// "no access" terminal case, not an error. Failures reading the profile,
// role permissions, or custom grants abort the call; failures in the
// department and team enrichment degrade to empty contributions.
func (s *AccessService) GetUserPermissions(ctx context.Context, userID string) (*domain.UserPermissions, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	profile, err := s.profiles.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	rolePermissions, err := s.catalog.ListByRole(ctx, profile.Role)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}

	customGrants, err := s.grants.ListActiveByUser(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list custom grants: %w", err)
	}

	var departmentPermissions []domain.Permission
	if profile.DepartmentID != nil && *profile.DepartmentID != "" {
		departmentPermissions, err = s.catalog.ListByDepartment(ctx, *profile.DepartmentID)
		if err != nil {
			s.logger.Warn("department permission lookup failed, contribution degraded to empty",
				zap.String("user_id", userID),
				zap.String("department_id", *profile.DepartmentID),
				zap.Error(err),
			)
			departmentPermissions = nil
		}
	}

	var teamPermissions []domain.Permission
	if teamIDs, err := s.org.ListTeamIDsByUser(ctx, userID); err != nil {
		s.logger.Warn("team membership lookup failed, contribution degraded to empty",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	} else if len(teamIDs) > 0 {
		teamPermissions, err = s.catalog.ListByTeams(ctx, teamIDs)
		if err != nil {
			s.logger.Warn("team permission lookup failed, contribution degraded to empty",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			teamPermissions = nil
		}
	}

	result := &domain.UserPermissions{
		Role:                  profile.Role,
		RolePermissions:       rolePermissions,
		CustomPermissions:     customGrants,
		DepartmentPermissions: departmentPermissions,
		TeamPermissions:       teamPermissions,
	}

	seen := make(map[string]struct{}, len(rolePermissions)+len(customGrants))
	appendUnique := func(perms []domain.Permission) {
		for _, p := range perms {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			result.Effective = append(result.Effective, p)
		}
	}

	appendUnique(rolePermissions)
	for _, grant := range customGrants {
		if _, ok := seen[grant.PermissionID]; ok {
			continue
		}
		seen[grant.PermissionID] = struct{}{}
		result.Effective = append(result.Effective, grant.Permission)
	}
	appendUnique(departmentPermissions)
	appendUnique(teamPermissions)

	return result, nil
}

// HasPermission reports whether the user holds the named permission. It fails
// closed: any backend error resolves to false rather than an error. Every call
// records exactly one access attempt, and a trail failure can neither change
// the returned boolean nor surface to the caller.
func (s *AccessService) HasPermission(ctx context.Context, userID, permissionName, resourceType string, resourceID *string) bool {
	if resourceType == "" {
		resourceType = domain.ResourceTypeGlobal
	}

	granted := false
	permissions, err := s.GetUserPermissions(ctx, userID)
	switch {
	case err != nil:
		s.logger.Error("permission resolution failed, denying access",
			zap.String("user_id", userID),
			zap.String("permission", permissionName),
			zap.Error(err),
		)
		s.metrics.ObserveFailure()
	case permissions != nil:
		granted = permissions.Has(permissionName)
	}

	s.trail.RecordAccessAttempt(ctx, domain.AccessAttempt{
		ID:                 uuid.NewString(),
		UserID:             userID,
		ResourceType:       resourceType,
		ResourceID:         resourceID,
		PermissionRequired: permissionName,
		AccessGranted:      granted,
		CreatedAt:          s.now().UTC(),
	})
	s.metrics.ObserveDecision(granted)

	return granted
}

// GetUserRole returns the user's role, or false when the user has no active
// profile.
func (s *AccessService) GetUserRole(ctx context.Context, userID string) (domain.Role, bool) {
	profile, err := s.profiles.GetActiveByUser(ctx, strings.TrimSpace(userID))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("role lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return "", false
	}
	return profile.Role, true
}

// CanManageUser reports whether the manager sits at an equal or higher
// hierarchy level than the target. Any failed role lookup denies.
func (s *AccessService) CanManageUser(ctx context.Context, managerID, targetUserID string) bool {
	managerRole, ok := s.GetUserRole(ctx, managerID)
	if !ok {
		return false
	}
	targetRole, ok := s.GetUserRole(ctx, targetUserID)
	if !ok {
		return false
	}
	return managerRole.CanManage(targetRole)
}
