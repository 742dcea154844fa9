package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditAction is the closed vocabulary of auditable state transitions
type AuditAction string

const (
	ActionGroupCreate    AuditAction = "group.create"
	ActionGroupDelete    AuditAction = "group.delete"
	ActionSettingUpdate  AuditAction = "setting.update"
	ActionInviteCreate   AuditAction = "invite.create"
	ActionInviteAccept   AuditAction = "invite.accept"
	ActionInviteCancel   AuditAction = "invite.cancel"
	ActionMemberRemove   AuditAction = "member.remove"
	ActionModeratorAdd   AuditAction = "moderator.add"
	ActionModeratorDel   AuditAction = "moderator.remove"
	ActionBanCreate      AuditAction = "ban.create"
	ActionBanEdit        AuditAction = "ban.edit"
	ActionBanRevoke      AuditAction = "ban.revoke"
	ActionEvidenceAccess AuditAction = "evidence.access"
)

// Failed derives the failure variant of an action tag
func (a AuditAction) Failed() AuditAction {
	return a + ".failed"
}

// AuditEntry is append-only. It is never mutated after creation except
// by the owning group's cascading delete.
type AuditEntry struct {
	ID        uint              `gorm:"primaryKey;autoIncrement"`
	GroupID   uint              `gorm:"index;not null"`
	Action    AuditAction       `gorm:"size:32;not null"`
	ActorID   int64             `gorm:"not null"`
	Detail    datatypes.JSONMap `gorm:"type:json"`
	CreatedAt time.Time
}
