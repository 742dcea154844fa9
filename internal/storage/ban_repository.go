package storage

import (
	"banshare/internal/models"

	"gorm.io/gorm"
)

// BanRepository handles database operations for Ban
type BanRepository struct {
	db *gorm.DB
}

// NewBanRepository creates a new BanRepository
func NewBanRepository(db *gorm.DB) *BanRepository {
	return &BanRepository{db: db}
}

// MigrateTable ensures the Ban table exists
func (r *BanRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.Ban{})
}

// Create inserts a new Ban
func (r *BanRepository) Create(ban *models.Ban) error {
	return r.db.Create(ban).Error
}

// Save persists changes to an existing Ban
func (r *BanRepository) Save(ban *models.Ban) error {
	return r.db.Save(ban).Error
}

// GetByID retrieves a ban by its identifier
func (r *BanRepository) GetByID(banID uint) (*models.Ban, error) {
	var ban models.Ban
	result := r.db.First(&ban, banID)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ban, nil
}

// GetActive returns the active ban for a user within a group, if any
func (r *BanRepository) GetActive(groupID uint, userID int64) (*models.Ban, error) {
	var ban models.Ban
	result := r.db.Where("group_id = ? AND target_user_id = ? AND active = ?", groupID, userID, true).First(&ban)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ban, nil
}

// ListActiveByGroup returns all active bans in a group
func (r *BanRepository) ListActiveByGroup(groupID uint) ([]*models.Ban, error) {
	var bans []*models.Ban
	result := r.db.Where("group_id = ? AND active = ?", groupID, true).Find(&bans)
	return bans, result.Error
}

// ListByGroup returns every ban in a group, revoked ones included
func (r *BanRepository) ListByGroup(groupID uint) ([]*models.Ban, error) {
	var bans []*models.Ban
	result := r.db.Where("group_id = ?", groupID).Find(&bans)
	return bans, result.Error
}
