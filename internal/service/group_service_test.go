package service

import (
	"context"
	"testing"

	"banshare/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCreateGroupRejectsSecondGroupForServer(t *testing.T) {
	groups := newFakeGroupStore(&models.Group{OwnerServerID: 10, OwnerUserID: 1, Name: "first"})
	withStores(t, groups, nil, nil, nil, nil)
	pf := newMockPlatform()

	_, err := CreateGroup(context.Background(), pf, 10, 1, "second", "")
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, 0, groups.creates)
}

func TestCreateGroupAppliesConfigDefaults(t *testing.T) {
	groups := newFakeGroupStore()
	withStores(t, groups, nil, nil, nil, nil)
	pf := newMockPlatform()
	pf.owner = 42

	group, err := CreateGroup(context.Background(), pf, 10, 1, "shared", "cross-server bans")
	assert.NoError(t, err)
	assert.Equal(t, 1, groups.creates)
	assert.Equal(t, int64(42), group.OwnerUserID)
	assert.Equal(t, 30, group.MemberLimit)
	assert.Equal(t, models.LeaveRetain, group.LeavePolicy)
}

func TestCreateGroupWithoutStorage(t *testing.T) {
	withStores(t, nil, nil, nil, nil, nil)
	pf := newMockPlatform()

	_, err := CreateGroup(context.Background(), pf, 10, 1, "shared", "")
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestUpdateSettingsWithoutStorage(t *testing.T) {
	withStores(t, nil, nil, nil, nil, nil)
	group := &models.Group{ID: 1, OwnerUserID: 1}

	err := UpdateSettings(newMockPlatform(), group, 1)
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestDeleteGroupRecordsBeforeCascade(t *testing.T) {
	group := &models.Group{OwnerServerID: 10, OwnerUserID: 1, Name: "doomed"}
	groups := newFakeGroupStore(group)
	audits := &fakeAuditStore{}
	withStores(t, groups, nil, nil, nil, audits)

	err := DeleteGroup(newMockPlatform(), group, 1)
	assert.NoError(t, err)
	assert.Empty(t, groups.groups)
	if assert.Len(t, audits.entries, 1) {
		assert.Equal(t, models.ActionGroupDelete, audits.entries[0].Action)
	}
}

func TestDeleteGroupOwnerOnly(t *testing.T) {
	group := &models.Group{OwnerServerID: 10, OwnerUserID: 1, Name: "kept"}
	groups := newFakeGroupStore(group)
	withStores(t, groups, nil, nil, nil, nil)

	err := DeleteGroup(newMockPlatform(), group, 2)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Len(t, groups.groups, 1)
}

func TestApplySetting(t *testing.T) {
	cases := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(t *testing.T, g *models.Group)
	}{
		{"logging on", "logging", "yes", false, func(t *testing.T, g *models.Group) {
			assert.True(t, g.LogsEnabled)
		}},
		{"logging off", "logging", "0", false, func(t *testing.T, g *models.Group) {
			assert.False(t, g.LogsEnabled)
		}},
		{"notify on", "notify", "true", false, func(t *testing.T, g *models.Group) {
			assert.True(t, g.NotifyOnBan)
		}},
		{"analytics on", "analytics", "on", false, func(t *testing.T, g *models.Group) {
			assert.True(t, g.Analytics)
		}},
		{"member limit", "member_limit", "25", false, func(t *testing.T, g *models.Group) {
			assert.Equal(t, 25, g.MemberLimit)
		}},
		{"member limit junk", "member_limit", "lots", true, nil},
		{"member limit negative", "member_limit", "-1", true, nil},
		{"leave policy", "leave_policy", "lift", false, func(t *testing.T, g *models.Group) {
			assert.Equal(t, models.LeaveLift, g.LeavePolicy)
		}},
		{"leave policy junk", "leave_policy", "explode", true, nil},
		{"unknown key", "color", "red", true, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			group := &models.Group{LogsEnabled: true}
			err := ApplySetting(group, tc.key, tc.value)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			tc.check(t, group)
		})
	}
}
