package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"banshare/internal/models"
)

func pendingInvite(expiresIn time.Duration) *models.Invite {
	return &models.Invite{
		ID:        1,
		GroupID:   1,
		ServerID:  200,
		Status:    models.InvitePending,
		ExpiresAt: time.Now().Add(expiresIn),
	}
}

func TestCheckAcceptHappyPath(t *testing.T) {
	group := &models.Group{ID: 1, MemberLimit: 30}
	err := checkAccept(group, pendingInvite(time.Hour), 3, false, time.Now())
	assert.NoError(t, err)
}

func TestCheckAcceptRejectsNonPending(t *testing.T) {
	group := &models.Group{ID: 1, MemberLimit: 30}

	for _, status := range []models.InviteStatus{
		models.InviteAccepted, models.InviteCancelled, models.InviteExpired,
	} {
		invite := pendingInvite(time.Hour)
		invite.Status = status
		err := checkAccept(group, invite, 0, false, time.Now())
		assert.ErrorIs(t, err, ErrInviteNotPending, "status %s", status)
	}
}

func TestCheckAcceptRejectsExpired(t *testing.T) {
	group := &models.Group{ID: 1, MemberLimit: 30}
	err := checkAccept(group, pendingInvite(-time.Minute), 0, false, time.Now())
	assert.ErrorIs(t, err, ErrInviteExpired)
}

func TestCheckAcceptRejectsExistingMembership(t *testing.T) {
	group := &models.Group{ID: 1, MemberLimit: 30}
	err := checkAccept(group, pendingInvite(time.Hour), 0, true, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestCheckAcceptEnforcesCapacity(t *testing.T) {
	// Group at capacity 2: the third accept fails, nothing earlier does.
	group := &models.Group{ID: 1, MemberLimit: 2}

	assert.NoError(t, checkAccept(group, pendingInvite(time.Hour), 0, false, time.Now()))
	assert.NoError(t, checkAccept(group, pendingInvite(time.Hour), 1, false, time.Now()))
	assert.ErrorIs(t, checkAccept(group, pendingInvite(time.Hour), 2, false, time.Now()), ErrCapacityExceeded)
}

func TestInviteExpiryIsReadTimePredicate(t *testing.T) {
	invite := pendingInvite(models.InviteTTL)

	assert.True(t, invite.Actionable(time.Now()))
	assert.False(t, invite.Expired(time.Now()))

	// Nothing mutates the row; the same invite is dead when read after
	// its horizon.
	later := time.Now().Add(models.InviteTTL + time.Minute)
	assert.True(t, invite.Expired(later))
	assert.False(t, invite.Actionable(later))
	assert.Equal(t, models.InvitePending, invite.Status)
}

func TestInviteServerRejectsDuplicatePending(t *testing.T) {
	group := &models.Group{ID: 1, OwnerServerID: 10, OwnerUserID: 1, Name: "shared"}
	invites := newFakeInviteStore(pendingInvite(time.Hour))
	withStores(t, nil, &fakeMemberStore{}, invites, nil, nil)

	_, err := InviteServer(newMockPlatform(), group, 200, 1)
	assert.ErrorIs(t, err, ErrDuplicatePending)
	assert.Equal(t, 0, invites.creates)
}

func TestInviteServerExpiresStaleAndReissues(t *testing.T) {
	group := &models.Group{ID: 1, OwnerServerID: 10, OwnerUserID: 1, Name: "shared"}
	stale := pendingInvite(-time.Hour)
	invites := newFakeInviteStore(stale)
	withStores(t, nil, &fakeMemberStore{}, invites, nil, nil)

	fresh, err := InviteServer(newMockPlatform(), group, 200, 1)
	assert.NoError(t, err)
	assert.Equal(t, models.InviteExpired, stale.Status)
	assert.Equal(t, 1, invites.creates)
	assert.Equal(t, models.InvitePending, fresh.Status)
}

func TestInviteServerRejectsEnrolledServer(t *testing.T) {
	group := &models.Group{ID: 1, OwnerServerID: 10, OwnerUserID: 1, Name: "shared"}
	members := &fakeMemberStore{members: []*models.Member{
		{GroupID: 2, ServerID: 200, Enabled: true},
	}}
	invites := newFakeInviteStore()
	withStores(t, nil, members, invites, nil, nil)

	_, err := InviteServer(newMockPlatform(), group, 200, 1)
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.Equal(t, 0, invites.creates)
}

func TestInviteServerWithoutStorage(t *testing.T) {
	withStores(t, nil, nil, nil, nil, nil)
	group := &models.Group{ID: 1, OwnerServerID: 10, OwnerUserID: 1}

	_, err := InviteServer(newMockPlatform(), group, 200, 1)
	assert.ErrorIs(t, err, ErrStorageDisabled)
}
