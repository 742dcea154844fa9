package service

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banshare/internal/models"
)

func TestNotifyCascadeStopsAtFirstMemberChannel(t *testing.T) {
	pf := newMockPlatform()
	pf.notifyErr[notifyKey(10, "ch-10")] = errors.New("channel gone")

	group := &models.Group{ID: 1, OwnerServerID: 100, Name: "Alpha"}
	members := []*models.Member{
		{ServerID: 10, NotifyChannelID: "ch-10", Enabled: true},
		{ServerID: 20, NotifyChannelID: "ch-20", Enabled: true},
		{ServerID: 30, NotifyChannelID: "ch-30", Enabled: true},
	}

	delivered := notifyCascade(context.Background(), pf, group, members, "moderation-log", 10, "msg")

	assert.True(t, delivered)
	// At-most-one-of-many: the third channel is never tried once the
	// second succeeds.
	require.Equal(t, []string{notifyKey(10, "ch-10"), notifyKey(20, "ch-20")}, pf.notifyCalls)
}

func TestNotifyCascadeSkipsMembersWithoutChannel(t *testing.T) {
	pf := newMockPlatform()
	pf.channel = "555"

	group := &models.Group{ID: 1, OwnerServerID: 100}
	members := []*models.Member{
		{ServerID: 10, Enabled: true},
		{ServerID: 20, Enabled: true},
	}

	delivered := notifyCascade(context.Background(), pf, group, members, "moderation-log", 10, "msg")

	assert.True(t, delivered)
	// No member channel configured, so the first attempt is the
	// owning server's well-known channel.
	require.Equal(t, []string{notifyKey(100, "555")}, pf.notifyCalls)
}

func TestNotifyCascadeAdminFallback(t *testing.T) {
	pf := newMockPlatform()
	pf.channelErr = errors.New("no such channel")
	pf.owner = 7
	pf.notifyErr[notifyKey(100, "7")] = errors.New("owner has DMs closed")
	pf.admins = []int64{71, 72, 73}
	pf.notifyErr[notifyKey(100, "71")] = errors.New("dm closed")

	group := &models.Group{ID: 1, OwnerServerID: 100}
	members := []*models.Member{
		{ServerID: 10, NotifyChannelID: "ch-10", Enabled: true},
	}
	pf.notifyErr[notifyKey(10, "ch-10")] = errors.New("send failed")

	delivered := notifyCascade(context.Background(), pf, group, members, "moderation-log", 10, "msg")

	assert.True(t, delivered)
	// member channel, owner DM, then two admin DMs with the second
	// succeeding; the third admin is never contacted
	require.Equal(t, []string{
		notifyKey(10, "ch-10"),
		notifyKey(100, "7"),
		notifyKey(100, "71"),
		notifyKey(100, "72"),
	}, pf.notifyCalls)
}

func TestNotifyCascadeAdminLimitBounded(t *testing.T) {
	pf := newMockPlatform()
	pf.channelErr = errors.New("no such channel")
	pf.ownerErr = errors.New("owner unresolvable")
	for i := int64(0); i < 20; i++ {
		pf.admins = append(pf.admins, 1000+i)
		pf.notifyErr[notifyKey(100, strconv.FormatInt(1000+i, 10))] = errors.New("dm closed")
	}

	group := &models.Group{ID: 1, OwnerServerID: 100}

	delivered := notifyCascade(context.Background(), pf, group, nil, "moderation-log", 10, "msg")

	assert.False(t, delivered)
	assert.Len(t, pf.notifyCalls, 10, "admin DM attempts must be bounded")
}

func TestNotifyCascadeAllFallbacksExhausted(t *testing.T) {
	pf := newMockPlatform()
	pf.channelErr = errors.New("no such channel")
	pf.ownerErr = errors.New("owner unresolvable")
	pf.adminsErr = errors.New("admin list unavailable")

	group := &models.Group{ID: 1, OwnerServerID: 100}

	delivered := notifyCascade(context.Background(), pf, group, nil, "moderation-log", 10, "msg")

	assert.False(t, delivered)
	assert.Empty(t, pf.notifyCalls)
}

func TestFormatAuditMessageEscapesMarkup(t *testing.T) {
	group := &models.Group{ID: 1, Name: "<b>loud</b> group"}
	entry := &models.AuditEntry{
		GroupID: 1,
		Action:  models.ActionBanCreate,
		ActorID: 7,
		Detail: map[string]interface{}{
			"user":   int64(999),
			"reason": `<a href="https://evil.example">spam</a>`,
		},
	}

	msg := formatAuditMessage(group, entry)
	assert.Contains(t, msg, "&lt;b&gt;loud&lt;/b&gt; group")
	assert.Contains(t, msg, "&lt;a href=&#34;https://evil.example&#34;&gt;spam&lt;/a&gt;")
	assert.NotContains(t, msg, "<b>loud")
	assert.Contains(t, msg, "user: 999")
}
