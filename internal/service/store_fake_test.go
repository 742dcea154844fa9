package service

import (
	"testing"
	"time"

	"banshare/internal/config"
	"banshare/internal/evidence"
	"banshare/internal/models"
)

var pngSample = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x01}

// newTestEvidenceStore registers a throwaway evidence store and restores
// the previous registration when the test finishes.
func newTestEvidenceStore(t *testing.T) (*evidence.Store, error) {
	t.Helper()
	store, err := evidence.NewStore(t.TempDir(), 1<<20)
	if err != nil {
		return nil, err
	}
	prev := evidenceStore
	SetEvidenceStore(store)
	t.Cleanup(func() { evidenceStore = prev })
	return store, nil
}

// In-memory stand-ins for the database repositories so the
// repository-coupled halves of the services run in tests.

type fakeGroupStore struct {
	groups  map[uint]*models.Group
	nextID  uint
	creates int
}

func newFakeGroupStore(seed ...*models.Group) *fakeGroupStore {
	f := &fakeGroupStore{groups: make(map[uint]*models.Group)}
	for _, g := range seed {
		if g.ID == 0 {
			f.nextID++
			g.ID = f.nextID
		}
		f.groups[g.ID] = g
	}
	return f
}

func (f *fakeGroupStore) GetByID(groupID uint) (*models.Group, error) {
	return f.groups[groupID], nil
}

func (f *fakeGroupStore) GetByOwnerServer(serverID int64) (*models.Group, error) {
	for _, g := range f.groups {
		if g.OwnerServerID == serverID {
			return g, nil
		}
	}
	return nil, nil
}

func (f *fakeGroupStore) Create(group *models.Group) error {
	f.nextID++
	group.ID = f.nextID
	f.groups[group.ID] = group
	f.creates++
	return nil
}

func (f *fakeGroupStore) Save(group *models.Group) error {
	f.groups[group.ID] = group
	return nil
}

func (f *fakeGroupStore) DeleteCascade(groupID uint) error {
	delete(f.groups, groupID)
	return nil
}

type fakeMemberStore struct {
	members []*models.Member
}

func (f *fakeMemberStore) Get(groupID uint, serverID int64) (*models.Member, error) {
	for _, m := range f.members {
		if m.GroupID == groupID && m.ServerID == serverID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMemberStore) GetEnabled(groupID uint) ([]*models.Member, error) {
	var out []*models.Member
	for _, m := range f.members {
		if m.GroupID == groupID && m.Enabled {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemberStore) GetEnabledByServer(serverID int64) (*models.Member, error) {
	for _, m := range f.members {
		if m.ServerID == serverID && m.Enabled {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMemberStore) Save(member *models.Member) error {
	for i, m := range f.members {
		if m.GroupID == member.GroupID && m.ServerID == member.ServerID {
			f.members[i] = member
			return nil
		}
	}
	f.members = append(f.members, member)
	return nil
}

func (f *fakeMemberStore) Disable(groupID uint, serverID int64) error {
	for _, m := range f.members {
		if m.GroupID == groupID && m.ServerID == serverID {
			m.Enabled = false
		}
	}
	return nil
}

type fakeInviteStore struct {
	invites map[uint]*models.Invite
	nextID  uint
	creates int
}

func newFakeInviteStore(seed ...*models.Invite) *fakeInviteStore {
	f := &fakeInviteStore{invites: make(map[uint]*models.Invite)}
	for _, inv := range seed {
		if inv.ID == 0 {
			f.nextID++
			inv.ID = f.nextID
		}
		f.invites[inv.ID] = inv
	}
	return f
}

func (f *fakeInviteStore) Create(invite *models.Invite) error {
	f.nextID++
	invite.ID = f.nextID
	f.invites[invite.ID] = invite
	f.creates++
	return nil
}

func (f *fakeInviteStore) GetPending(groupID uint, serverID int64) (*models.Invite, error) {
	for _, inv := range f.invites {
		if inv.GroupID == groupID && inv.ServerID == serverID && inv.Status == models.InvitePending {
			return inv, nil
		}
	}
	return nil, nil
}

func (f *fakeInviteStore) SetStatus(inviteID uint, status models.InviteStatus) error {
	if inv, ok := f.invites[inviteID]; ok {
		inv.Status = status
		now := time.Now()
		inv.RespondedAt = &now
	}
	return nil
}

type fakeBanStore struct {
	bans    map[uint]*models.Ban
	nextID  uint
	creates int
	saves   int
}

func newFakeBanStore(seed ...*models.Ban) *fakeBanStore {
	f := &fakeBanStore{bans: make(map[uint]*models.Ban)}
	for _, b := range seed {
		if b.ID == 0 {
			f.nextID++
			b.ID = f.nextID
		}
		f.bans[b.ID] = b
	}
	return f
}

func (f *fakeBanStore) Create(ban *models.Ban) error {
	f.nextID++
	ban.ID = f.nextID
	f.bans[ban.ID] = ban
	f.creates++
	return nil
}

func (f *fakeBanStore) Save(ban *models.Ban) error {
	f.bans[ban.ID] = ban
	f.saves++
	return nil
}

func (f *fakeBanStore) GetActive(groupID uint, userID int64) (*models.Ban, error) {
	for _, b := range f.bans {
		if b.GroupID == groupID && b.TargetUserID == userID && b.Active {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBanStore) ListActiveByGroup(groupID uint) ([]*models.Ban, error) {
	var out []*models.Ban
	for _, b := range f.bans {
		if b.GroupID == groupID && b.Active {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeAuditStore struct {
	entries []*models.AuditEntry
}

func (f *fakeAuditStore) Create(entry *models.AuditEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditStore) ListByGroup(groupID uint, limit int) ([]*models.AuditEntry, error) {
	var out []*models.AuditEntry
	for _, e := range f.entries {
		if e.GroupID == groupID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// withStores swaps the package-level repositories for the given fakes
// (nil keeps a slot unbound, as when the database is disabled) and
// restores everything when the test finishes.
func withStores(t *testing.T, groups *fakeGroupStore, members *fakeMemberStore, invites *fakeInviteStore, bans *fakeBanStore, audits *fakeAuditStore) {
	t.Helper()

	prevGroups, prevMembers := groupRepository, memberRepository
	prevInvites, prevBans, prevAudits := inviteRepository, banRepository, auditRepository
	prevCache, prevConfig := groupCache, globalConfig

	groupRepository, memberRepository, inviteRepository, banRepository, auditRepository = nil, nil, nil, nil, nil
	if groups != nil {
		groupRepository = groups
	}
	if members != nil {
		memberRepository = members
	}
	if invites != nil {
		inviteRepository = invites
	}
	if bans != nil {
		banRepository = bans
	}
	if audits != nil {
		auditRepository = audits
	}
	groupCache = models.NewGroupCache()
	globalConfig = &config.Config{Group: config.GroupConfig{MemberLimit: 30, LeavePolicy: "retain"}}

	t.Cleanup(func() {
		groupRepository, memberRepository = prevGroups, prevMembers
		inviteRepository, banRepository, auditRepository = prevInvites, prevBans, prevAudits
		groupCache, globalConfig = prevCache, prevConfig
	})
}
