package storage

import (
	"banshare/internal/models"

	"gorm.io/gorm"
)

// ModeratorRepository handles database operations for ModeratorGrant
type ModeratorRepository struct {
	db *gorm.DB
}

// NewModeratorRepository creates a new ModeratorRepository
func NewModeratorRepository(db *gorm.DB) *ModeratorRepository {
	return &ModeratorRepository{db: db}
}

// MigrateTable ensures the ModeratorGrant table exists
func (r *ModeratorRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.ModeratorGrant{})
}

// Create inserts a new ModeratorGrant
func (r *ModeratorRepository) Create(grant *models.ModeratorGrant) error {
	return r.db.Create(grant).Error
}

// Get retrieves a grant by its unique (group, kind, subject) tuple
func (r *ModeratorRepository) Get(groupID uint, kind models.ModeratorKind, subjectID int64) (*models.ModeratorGrant, error) {
	var grant models.ModeratorGrant
	result := r.db.Where("group_id = ? AND kind = ? AND subject_id = ?", groupID, kind, subjectID).First(&grant)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &grant, nil
}

// ListByGroup returns all grants scoped to a group
func (r *ModeratorRepository) ListByGroup(groupID uint) ([]*models.ModeratorGrant, error) {
	var grants []*models.ModeratorGrant
	result := r.db.Where("group_id = ?", groupID).Find(&grants)
	return grants, result.Error
}

// Delete removes a grant by its tuple
func (r *ModeratorRepository) Delete(groupID uint, kind models.ModeratorKind, subjectID int64) error {
	result := r.db.Where("group_id = ? AND kind = ? AND subject_id = ?", groupID, kind, subjectID).
		Delete(&models.ModeratorGrant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
