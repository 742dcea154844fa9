package service

import "errors"

// Validation errors are surfaced to the caller synchronously and never
// retried. Remote-call failures are recorded as run entries instead and
// never cross this boundary as errors.
var (
	ErrStorageDisabled  = errors.New("storage is disabled")
	ErrAlreadyExists    = errors.New("group already exists for this server")
	ErrGroupNotFound    = errors.New("group not found")
	ErrNotOwner         = errors.New("only the group owner may do this")
	ErrDuplicatePending = errors.New("a pending invite already exists for this server")
	ErrAlreadyMember    = errors.New("server is already a member of a group")
	ErrCapacityExceeded = errors.New("group has reached its member limit")
	ErrInviteNotPending = errors.New("invite is no longer pending")
	ErrInviteExpired    = errors.New("invite has expired")
	ErrNotMember        = errors.New("server is not an enabled member of this group")
	ErrDuplicateGrant   = errors.New("moderator grant already exists")
	ErrGrantNotFound    = errors.New("moderator grant not found")
	ErrEmptyReason      = errors.New("ban reason is required")
	ErrNoTargets        = errors.New("at least one target server is required")
	ErrAlreadyBanned    = errors.New("user already has an active ban in this group")
	ErrBanNotActive     = errors.New("ban is not active")
	ErrEvidenceLimit    = errors.New("evidence limit reached")
)
