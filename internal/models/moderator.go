package models

import "time"

// ModeratorKind scopes a grant to an individual user or to a role
type ModeratorKind string

const (
	ModeratorUser ModeratorKind = "user"
	ModeratorRole ModeratorKind = "role"
)

// ModeratorGrant authorizes a user or role to act on behalf of a group.
// The (group, kind, subject) tuple is unique; granting an existing tuple
// is rejected, not upserted.
type ModeratorGrant struct {
	ID        uint          `gorm:"primaryKey;autoIncrement"`
	GroupID   uint          `gorm:"uniqueIndex:idx_grant_tuple;not null"`
	Kind      ModeratorKind `gorm:"size:8;uniqueIndex:idx_grant_tuple;not null"`
	SubjectID int64         `gorm:"uniqueIndex:idx_grant_tuple;not null"`
	GrantedBy int64         `gorm:"not null"`
	CreatedAt time.Time
}
