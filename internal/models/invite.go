package models

import "time"

// InviteStatus is the invite state machine.
// pending -> accepted | cancelled | expired; terminal states are final.
type InviteStatus string

const (
	InvitePending   InviteStatus = "pending"
	InviteAccepted  InviteStatus = "accepted"
	InviteExpired   InviteStatus = "expired"
	InviteCancelled InviteStatus = "cancelled"
)

// InviteTTL is the fixed validity horizon of an invite from issuance
const InviteTTL = 48 * time.Hour

// Invite is a pending offer for a server to join a group
type Invite struct {
	ID          uint         `gorm:"primaryKey;autoIncrement"`
	GroupID     uint         `gorm:"index:idx_invite_group_server;not null"`
	ServerID    int64        `gorm:"index:idx_invite_group_server;not null"`
	InvitedBy   int64        `gorm:"not null"`
	Status      InviteStatus `gorm:"size:16;default:'pending';index"`
	ExpiresAt   time.Time    `gorm:"not null"`
	RespondedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired is a read-time predicate; there is no background sweep
func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Actionable reports whether the invite can still be accepted or cancelled
func (i *Invite) Actionable(now time.Time) bool {
	return i.Status == InvitePending && !i.Expired(now)
}
