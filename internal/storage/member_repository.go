package storage

import (
	"time"

	"banshare/internal/models"

	"gorm.io/gorm"
)

// MemberRepository handles database operations for Member
type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// MigrateTable ensures the Member table exists
func (r *MemberRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.Member{})
}

// Create inserts a new Member
func (r *MemberRepository) Create(member *models.Member) error {
	return r.db.Create(member).Error
}

// Save persists changes to an existing Member
func (r *MemberRepository) Save(member *models.Member) error {
	return r.db.Save(member).Error
}

// Get retrieves the membership row for a (group, server) pair,
// enabled or not
func (r *MemberRepository) Get(groupID uint, serverID int64) (*models.Member, error) {
	var member models.Member
	result := r.db.Where("group_id = ? AND server_id = ?", groupID, serverID).First(&member)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &member, nil
}

// GetEnabled returns all enabled members of a group
func (r *MemberRepository) GetEnabled(groupID uint) ([]*models.Member, error) {
	var members []*models.Member
	result := r.db.Where("group_id = ? AND enabled = ?", groupID, true).Find(&members)
	return members, result.Error
}

// CountEnabled returns the number of enabled members in a group
func (r *MemberRepository) CountEnabled(groupID uint) (int64, error) {
	var count int64
	result := r.db.Model(&models.Member{}).
		Where("group_id = ? AND enabled = ?", groupID, true).Count(&count)
	return count, result.Error
}

// GetEnabledByServer returns the server's enabled membership in any group.
// A server may be an enabled member of at most one group.
func (r *MemberRepository) GetEnabledByServer(serverID int64) (*models.Member, error) {
	var member models.Member
	result := r.db.Where("server_id = ? AND enabled = ?", serverID, true).First(&member)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &member, nil
}

// Disable soft-deletes the membership; the row is kept for audit history
func (r *MemberRepository) Disable(groupID uint, serverID int64) error {
	result := r.db.Model(&models.Member{}).
		Where("group_id = ? AND server_id = ? AND enabled = ?", groupID, serverID, true).
		Updates(map[string]interface{}{"enabled": false, "updated_at": time.Now()})
	return result.Error
}
