package storage

import (
	"log"

	"banshare/internal/models"

	"gorm.io/gorm"
)

// GroupRepository handles database operations for Group
type GroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// MigrateTable ensures the Group table exists
func (r *GroupRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.Group{})
}

// Create inserts a new Group
func (r *GroupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

// Save persists changes to an existing Group
func (r *GroupRepository) Save(group *models.Group) error {
	return r.db.Save(group).Error
}

// GetByID retrieves a group by its identifier
func (r *GroupRepository) GetByID(groupID uint) (*models.Group, error) {
	var group models.Group
	result := r.db.First(&group, groupID)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &group, nil
}

// GetByOwnerServer retrieves the group owned by the given server, if any
func (r *GroupRepository) GetByOwnerServer(serverID int64) (*models.Group, error) {
	var group models.Group
	result := r.db.Where("owner_server_id = ?", serverID).First(&group)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &group, nil
}

// GetAll retrieves every group
func (r *GroupRepository) GetAll() ([]*models.Group, error) {
	var groups []*models.Group
	result := r.db.Find(&groups)
	if result.Error != nil {
		return nil, result.Error
	}
	return groups, nil
}

// DeleteCascade removes a group and every dependent record in one
// transaction so a partial cascade can never be observed.
func (r *GroupRepository) DeleteCascade(groupID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.Member{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.Ban{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.ModeratorGrant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.Invite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.AuditEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, groupID).Error
	})
}

// InitializeGroups loads all groups from the database into the cache
func InitializeGroups(cache *models.GroupCache) error {
	if DB == nil {
		log.Printf("Database is not enabled, skipping group initialization")
		return nil
	}

	repo := NewGroupRepository(DB)
	groups, err := repo.GetAll()
	if err != nil {
		return err
	}

	for _, group := range groups {
		cache.Put(group)
	}

	log.Printf("Loaded %d groups from database into cache", len(groups))
	return nil
}
