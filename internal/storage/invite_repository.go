package storage

import (
	"time"

	"banshare/internal/models"

	"gorm.io/gorm"
)

// InviteRepository handles database operations for Invite
type InviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(db *gorm.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

// MigrateTable ensures the Invite table exists
func (r *InviteRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.Invite{})
}

// Create inserts a new Invite
func (r *InviteRepository) Create(invite *models.Invite) error {
	return r.db.Create(invite).Error
}

// GetByID retrieves an invite by its identifier
func (r *InviteRepository) GetByID(inviteID uint) (*models.Invite, error) {
	var invite models.Invite
	result := r.db.First(&invite, inviteID)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &invite, nil
}

// GetPending returns the pending invite for a (group, server) pair, if any
func (r *InviteRepository) GetPending(groupID uint, serverID int64) (*models.Invite, error) {
	var invite models.Invite
	result := r.db.Where("group_id = ? AND server_id = ? AND status = ?",
		groupID, serverID, models.InvitePending).First(&invite)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &invite, nil
}

// ListPendingByServer returns all pending invites targeting a server
func (r *InviteRepository) ListPendingByServer(serverID int64) ([]*models.Invite, error) {
	var invites []*models.Invite
	result := r.db.Where("server_id = ? AND status = ?", serverID, models.InvitePending).Find(&invites)
	return invites, result.Error
}

// SetStatus moves an invite into a terminal state and stamps the response time
func (r *InviteRepository) SetStatus(inviteID uint, status models.InviteStatus) error {
	now := time.Now()
	result := r.db.Model(&models.Invite{}).Where("id = ?", inviteID).
		Updates(map[string]interface{}{"status": status, "responded_at": &now, "updated_at": now})
	return result.Error
}
