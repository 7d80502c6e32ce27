package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atelierhq/crm-access/internal/core/domain"
)

func newAdminFixture() (*AdminService, *identityMock, *profileRepoMock, *catalogRepoMock, *grantRepoMock, *orgRepoMock, *trailMock, *publisherMock) {
	identity := &identityMock{nextID: "account-1"}
	profiles := &profileRepoMock{}
	catalog := &catalogRepoMock{byName: map[string]domain.Permission{
		"inventory.adjust": perm("p1", "inventory.adjust"),
	}}
	grants := &grantRepoMock{}
	org := &orgRepoMock{}
	trail := &trailMock{}
	publisher := &publisherMock{}

	svc := NewAdminService(identity, profiles, catalog, grants, org, trail, publisher, nil)
	return svc, identity, profiles, catalog, grants, org, trail, publisher
}

func TestCreateUser(t *testing.T) {
	svc, identity, profiles, _, _, _, trail, publisher := newAdminFixture()

	profile, err := svc.CreateUser(context.Background(), "admin-1", CreateUserInput{
		Email: "goldsmith@atelier.example",
		Role:  domain.RoleGoldsmith,
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if profile.UserID != "account-1" {
		t.Fatalf("expected profile bound to new account, got %q", profile.UserID)
	}
	if !profile.IsActive {
		t.Fatalf("new profile must be active")
	}
	if len(identity.created) != 1 {
		t.Fatalf("expected one account created, got %d", len(identity.created))
	}
	if len(profiles.created) != 1 {
		t.Fatalf("expected one profile created, got %d", len(profiles.created))
	}

	if len(trail.events) != 1 || trail.events[0].EventType != domain.EventUserCreated {
		t.Fatalf("expected user_created security event, got %+v", trail.events)
	}
	if trail.events[0].Severity != domain.SeverityHigh {
		t.Fatalf("expected high severity, got %q", trail.events[0].Severity)
	}
	if len(trail.actions) != 1 {
		t.Fatalf("expected one admin action, got %d", len(trail.actions))
	}
	if len(publisher.userCreated) != 1 {
		t.Fatalf("expected user created event published, got %d", len(publisher.userCreated))
	}
}

func TestCreateUser_InvalidRole(t *testing.T) {
	svc, identity, _, _, _, _, _, _ := newAdminFixture()

	_, err := svc.CreateUser(context.Background(), "admin-1", CreateUserInput{
		Email: "x@atelier.example",
		Role:  domain.Role("warlord"),
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if len(identity.created) != 0 {
		t.Fatalf("no account may be created for an invalid role")
	}
}

func TestCreateUser_ProfileFailureCompensates(t *testing.T) {
	svc, identity, profiles, _, _, _, trail, publisher := newAdminFixture()
	profiles.createErr = errors.New("unique violation")

	_, err := svc.CreateUser(context.Background(), "admin-1", CreateUserInput{
		Email: "dup@atelier.example",
		Role:  domain.RoleViewer,
	})
	if err == nil {
		t.Fatalf("expected error when profile insert fails")
	}

	if len(identity.deleted) != 1 || identity.deleted[0] != "account-1" {
		t.Fatalf("expected compensating account delete, got %v", identity.deleted)
	}
	if len(trail.events) != 0 {
		t.Fatalf("failed creation must not record a security event")
	}
	if len(publisher.userCreated) != 0 {
		t.Fatalf("failed creation must not publish an event")
	}
}

func TestCreateUser_AuthorizerDenies(t *testing.T) {
	svc, identity, _, _, _, _, _, _ := newAdminFixture()
	svc.WithAuthorizer(&authorizerMock{allowed: map[string]bool{}})

	_, err := svc.CreateUser(context.Background(), "intruder", CreateUserInput{
		Email: "x@atelier.example",
		Role:  domain.RoleViewer,
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(identity.created) != 0 {
		t.Fatalf("denied actor must not create accounts")
	}
}

func TestCreateUser_PublishFailureIsBestEffort(t *testing.T) {
	svc, _, profiles, _, _, _, _, publisher := newAdminFixture()
	publisher.publishErr = errors.New("broker down")

	if _, err := svc.CreateUser(context.Background(), "admin-1", CreateUserInput{
		Email: "x@atelier.example",
		Role:  domain.RoleViewer,
	}); err != nil {
		t.Fatalf("publish failure must not fail the mutation: %v", err)
	}
	if len(profiles.created) != 1 {
		t.Fatalf("profile must still be created")
	}
}

func TestUpdateUserRole(t *testing.T) {
	svc, _, profiles, _, _, _, trail, publisher := newAdminFixture()
	profiles.profiles = map[string]domain.UserProfile{
		"user-1": activeProfile("user-1", domain.RoleSalesAssociate),
	}

	reason := "promotion"
	expiresAt := time.Now().Add(30 * 24 * time.Hour).UTC()
	err := svc.UpdateUserRole(context.Background(), "admin-1", UpdateUserRoleInput{
		UserID:    "user-1",
		Role:      domain.RoleSeniorSalesAssociate,
		ExpiresAt: &expiresAt,
		Reason:    &reason,
	})
	if err != nil {
		t.Fatalf("UpdateUserRole returned error: %v", err)
	}

	if profiles.profiles["user-1"].Role != domain.RoleSeniorSalesAssociate {
		t.Fatalf("role not persisted, got %q", profiles.profiles["user-1"].Role)
	}

	if len(trail.events) != 1 {
		t.Fatalf("expected one security event, got %d", len(trail.events))
	}
	event := trail.events[0]
	if event.EventType != domain.EventRoleChanged {
		t.Fatalf("expected role_changed event, got %q", event.EventType)
	}
	if event.Metadata["previous_role"] != "sales_associate" {
		t.Fatalf("expected previous role in metadata, got %v", event.Metadata)
	}
	if event.Metadata["reason"] != "promotion" {
		t.Fatalf("expected reason in metadata, got %v", event.Metadata)
	}
	if _, ok := event.Metadata["expires_at"]; !ok {
		t.Fatalf("expected expires_at in metadata, got %v", event.Metadata)
	}

	if len(publisher.roleChanged) != 1 {
		t.Fatalf("expected role changed event published")
	}
	if publisher.roleChanged[0].PreviousRole != domain.RoleSalesAssociate {
		t.Fatalf("expected previous role on event, got %q", publisher.roleChanged[0].PreviousRole)
	}
}

func TestUpdateUserRole_UserNotFound(t *testing.T) {
	svc, _, _, _, _, _, trail, _ := newAdminFixture()

	err := svc.UpdateUserRole(context.Background(), "admin-1", UpdateUserRoleInput{
		UserID: "ghost",
		Role:   domain.RoleViewer,
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(trail.events) != 0 {
		t.Fatalf("failed change must not record an event")
	}
}

func TestGrantPermission(t *testing.T) {
	svc, _, _, _, grants, _, trail, publisher := newAdminFixture()

	reason := "holiday coverage"
	err := svc.GrantPermission(context.Background(), "manager-1", GrantPermissionInput{
		UserID:         "user-1",
		PermissionName: "inventory.adjust",
		Reason:         &reason,
	})
	if err != nil {
		t.Fatalf("GrantPermission returned error: %v", err)
	}

	if len(grants.grants) != 1 {
		t.Fatalf("expected one grant, got %d", len(grants.grants))
	}
	grant := grants.grants[0]
	if grant.PermissionID != "p1" || !grant.IsActive || grant.GrantedBy != "manager-1" {
		t.Fatalf("grant misrecorded: %+v", grant)
	}

	if len(trail.events) != 1 || trail.events[0].EventType != domain.EventPermissionGranted {
		t.Fatalf("expected permission_granted event, got %+v", trail.events)
	}
	if trail.events[0].Severity != domain.SeverityMedium {
		t.Fatalf("expected medium severity, got %q", trail.events[0].Severity)
	}
	if len(publisher.permissionGranted) != 1 {
		t.Fatalf("expected permission granted event published")
	}
}

func TestGrantPermission_UnknownPermission(t *testing.T) {
	svc, _, _, _, grants, _, _, _ := newAdminFixture()

	err := svc.GrantPermission(context.Background(), "manager-1", GrantPermissionInput{
		UserID:         "user-1",
		PermissionName: "warp.drive",
	})
	if !errors.Is(err, ErrPermissionNotFound) {
		t.Fatalf("expected ErrPermissionNotFound, got %v", err)
	}
	if len(grants.grants) != 0 {
		t.Fatalf("no grant may be created for an unknown permission")
	}
}

func TestRevokePermission_Idempotent(t *testing.T) {
	svc, _, _, _, grants, _, trail, publisher := newAdminFixture()
	grants.grants = []domain.UserPermission{
		{ID: "g1", UserID: "user-1", PermissionID: "p1", IsActive: true},
	}

	input := RevokePermissionInput{UserID: "user-1", PermissionName: "inventory.adjust"}

	if err := svc.RevokePermission(context.Background(), "manager-1", input); err != nil {
		t.Fatalf("RevokePermission returned error: %v", err)
	}
	if grants.grants[0].IsActive {
		t.Fatalf("grant must be deactivated")
	}

	// Second revoke matches nothing and still succeeds.
	if err := svc.RevokePermission(context.Background(), "manager-1", input); err != nil {
		t.Fatalf("repeat revoke must succeed: %v", err)
	}

	if len(trail.events) != 2 {
		t.Fatalf("both revokes must record events, got %d", len(trail.events))
	}
	if trail.events[0].Metadata["grants_revoked"] != int64(1) {
		t.Fatalf("expected first revoke to report 1 grant, got %v", trail.events[0].Metadata["grants_revoked"])
	}
	if trail.events[1].Metadata["grants_revoked"] != int64(0) {
		t.Fatalf("expected second revoke to report 0 grants, got %v", trail.events[1].Metadata["grants_revoked"])
	}
	if len(publisher.permissionRevoked) != 2 {
		t.Fatalf("expected both revokes published, got %d", len(publisher.permissionRevoked))
	}
}

func TestCreateTeam(t *testing.T) {
	svc, _, _, _, _, org, trail, publisher := newAdminFixture()

	result, err := svc.CreateTeam(context.Background(), "admin-1", CreateTeamInput{
		Name:      "Bench Crew",
		MemberIDs: []string{"user-1", "user-2", "user-1", " "},
	})
	if err != nil {
		t.Fatalf("CreateTeam returned error: %v", err)
	}

	if len(org.teams) != 1 || org.teams[0].Name != "Bench Crew" {
		t.Fatalf("team misrecorded: %+v", org.teams)
	}
	if len(result.AddedMemberIDs) != 2 {
		t.Fatalf("expected duplicates and blanks dropped, got %v", result.AddedMemberIDs)
	}

	if len(trail.events) != 1 || trail.events[0].EventType != domain.EventTeamCreated {
		t.Fatalf("expected team_created event, got %+v", trail.events)
	}
	if trail.events[0].Severity != domain.SeverityLow {
		t.Fatalf("expected low severity, got %q", trail.events[0].Severity)
	}
	if len(publisher.teamCreated) != 1 {
		t.Fatalf("expected team created event published")
	}
}

func TestCreateTeam_PartialMemberFailure(t *testing.T) {
	svc, _, _, _, _, org, _, _ := newAdminFixture()
	org.addMemberErr = map[string]error{"user-2": errors.New("foreign key violation")}

	result, err := svc.CreateTeam(context.Background(), "admin-1", CreateTeamInput{
		Name:      "Appraisal",
		MemberIDs: []string{"user-1", "user-2", "user-3"},
	})
	if err != nil {
		t.Fatalf("member failure must not fail team creation: %v", err)
	}

	if len(result.AddedMemberIDs) != 2 {
		t.Fatalf("expected 2 members added around the failure, got %v", result.AddedMemberIDs)
	}
	for _, id := range result.AddedMemberIDs {
		if id == "user-2" {
			t.Fatalf("failed member must not be reported as added")
		}
	}
}

func TestCreateTeam_CreateFailure(t *testing.T) {
	svc, _, _, _, _, org, trail, _ := newAdminFixture()
	org.createErr = errors.New("disk full")

	if _, err := svc.CreateTeam(context.Background(), "admin-1", CreateTeamInput{Name: "Doomed"}); err == nil {
		t.Fatalf("expected error when team insert fails")
	}
	if len(org.members) != 0 {
		t.Fatalf("no members may be added when the team insert fails")
	}
	if len(trail.events) != 0 {
		t.Fatalf("failed creation must not record an event")
	}
}
