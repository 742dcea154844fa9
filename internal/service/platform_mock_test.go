package service

import (
	"context"
	"fmt"
	"sync"
)

// mockPlatform scripts per-server outcomes for the remote-procedure
// boundary and records every call it receives.
type mockPlatform struct {
	mu sync.Mutex

	applyErr  map[int64]error
	removeErr map[int64]error
	notifyErr map[string]error

	channel    string
	channelErr error
	owner      int64
	ownerErr   error
	admins     []int64
	adminsErr  error

	applyCalls  []int64
	removeCalls []int64
	notifyCalls []string
}

func newMockPlatform() *mockPlatform {
	return &mockPlatform{
		applyErr:  make(map[int64]error),
		removeErr: make(map[int64]error),
		notifyErr: make(map[string]error),
	}
}

func notifyKey(serverID int64, target string) string {
	return fmt.Sprintf("%d/%s", serverID, target)
}

func (m *mockPlatform) ApplyBan(ctx context.Context, serverID, userID int64, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyCalls = append(m.applyCalls, serverID)
	return m.applyErr[serverID]
}

func (m *mockPlatform) RemoveBan(ctx context.Context, serverID, userID int64, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeCalls = append(m.removeCalls, serverID)
	return m.removeErr[serverID]
}

func (m *mockPlatform) Notify(ctx context.Context, serverID int64, target string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := notifyKey(serverID, target)
	m.notifyCalls = append(m.notifyCalls, key)
	return m.notifyErr[key]
}

func (m *mockPlatform) LookupChannel(ctx context.Context, serverID int64, name string) (string, error) {
	if m.channelErr != nil {
		return "", m.channelErr
	}
	return m.channel, nil
}

func (m *mockPlatform) ServerOwner(ctx context.Context, serverID int64) (int64, error) {
	if m.ownerErr != nil {
		return 0, m.ownerErr
	}
	return m.owner, nil
}

func (m *mockPlatform) ServerAdmins(ctx context.Context, serverID int64) ([]int64, error) {
	if m.adminsErr != nil {
		return nil, m.adminsErr
	}
	return m.admins, nil
}
