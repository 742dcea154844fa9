package models

import (
	"sync"
	"time"
)

// LeavePolicy describes what happens to enforcement when a member leaves
type LeavePolicy string

const (
	LeaveRetain  LeavePolicy = "retain"
	LeaveLift    LeavePolicy = "lift"
	LeaveArchive LeavePolicy = "archive"
)

// Group is a named set of servers sharing one moderation ban list.
// A server may own at most one group.
type Group struct {
	ID            uint        `gorm:"primaryKey;autoIncrement"`
	OwnerServerID int64       `gorm:"uniqueIndex;not null"`
	OwnerUserID   int64       `gorm:"not null"`
	Name          string      `gorm:"size:128;not null"`
	Description   string      `gorm:"type:text"`
	CreatedBy     int64       `gorm:"not null"`
	MemberLimit   int         `gorm:"default:30"`
	LogsEnabled   bool        `gorm:"default:true"`
	NotifyOnBan   bool        `gorm:"default:true"`
	Analytics     bool        `gorm:"default:false"`
	LeavePolicy   LeavePolicy `gorm:"size:16;default:'retain'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsOwner reports whether the actor is the owning server's owner.
// Settings and moderator management are restricted to them.
func (g *Group) IsOwner(actorID int64) bool {
	return actorID == g.OwnerUserID
}

// GroupCache keeps group records in memory in front of the repository
type GroupCache struct {
	groups  map[uint]*Group
	byOwner map[int64]*Group
	mu      sync.RWMutex
}

func NewGroupCache() *GroupCache {
	return &GroupCache{
		groups:  make(map[uint]*Group),
		byOwner: make(map[int64]*Group),
	}
}

func (c *GroupCache) Get(groupID uint) *Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.groups[groupID]
}

func (c *GroupCache) GetByOwnerServer(serverID int64) *Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byOwner[serverID]
}

func (c *GroupCache) Put(group *Group) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups[group.ID] = group
	c.byOwner[group.OwnerServerID] = group
}

func (c *GroupCache) Remove(groupID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.groups[groupID]; ok {
		delete(c.byOwner, g.OwnerServerID)
		delete(c.groups, groupID)
	}
}
