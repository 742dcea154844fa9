package storage

import (
	"banshare/internal/models"

	"gorm.io/gorm"
)

// AuditRepository handles database operations for AuditEntry
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// MigrateTable ensures the AuditEntry table exists
func (r *AuditRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.AuditEntry{})
}

// Create appends a new AuditEntry
func (r *AuditRepository) Create(entry *models.AuditEntry) error {
	return r.db.Create(entry).Error
}

// ListByGroup returns a group's audit entries, newest first
func (r *AuditRepository) ListByGroup(groupID uint, limit int) ([]*models.AuditEntry, error) {
	var entries []*models.AuditEntry
	q := r.db.Where("group_id = ?", groupID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	result := q.Find(&entries)
	return entries, result.Error
}
