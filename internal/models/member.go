package models

import "time"

// Member links one server to one group. Members are never hard-deleted;
// Enabled acts as a tombstone so historical audit and ban associations
// stay intact after a server leaves.
type Member struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	GroupID         uint   `gorm:"uniqueIndex:idx_member_group_server;not null"`
	ServerID        int64  `gorm:"uniqueIndex:idx_member_group_server;index;not null"`
	AddedBy         int64  `gorm:"not null"`
	NotifyChannelID string `gorm:"size:64;default:''"`
	SyncedOnJoin    bool   `gorm:"default:false"`
	Enabled         bool   `gorm:"default:true;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
