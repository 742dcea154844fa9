// Package platform defines the remote-procedure boundary to the chat
// platform: per-server ban/unban primitives and message delivery. The
// core records every call's outcome as data; a platform failure is
// never fatal to the operation that triggered it.
package platform

import (
	"context"
	"errors"
)

var (
	// ErrNoPermission indicates the platform rejected the call for
	// lack of rights on the target server
	ErrNoPermission = errors.New("no permission on target server")
	// ErrAlreadyApplied indicates the action was already in effect
	ErrAlreadyApplied = errors.New("action already applied")
)

// Platform is the set of remote procedures the chat platform provides
type Platform interface {
	// ApplyBan bans the user on the given server
	ApplyBan(ctx context.Context, serverID, userID int64, reason string) error
	// RemoveBan lifts the user's ban on the given server
	RemoveBan(ctx context.Context, serverID, userID int64, reason string) error
	// Notify delivers a message to a channel or user on the server
	Notify(ctx context.Context, serverID int64, target string, message string) error
	// LookupChannel resolves a well-known channel name on the server
	LookupChannel(ctx context.Context, serverID int64, name string) (string, error)
	// ServerOwner returns the server owner's user id
	ServerOwner(ctx context.Context, serverID int64) (int64, error)
	// ServerAdmins returns administrator user ids ordered by role precedence
	ServerAdmins(ctx context.Context, serverID int64) ([]int64, error)
}
