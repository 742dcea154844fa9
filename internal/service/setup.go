package service

import (
	"banshare/internal/config"
	"banshare/internal/evidence"
	"banshare/internal/logger"
	"banshare/internal/models"
	"banshare/internal/platform"
	"banshare/internal/storage"
)

// The store interfaces cover exactly the queries the services issue
// outside a transaction. InitRepositories binds them to the database
// repositories; when the database is disabled they stay nil and every
// mutating operation reports ErrStorageDisabled instead of running.

type groupStore interface {
	GetByID(groupID uint) (*models.Group, error)
	GetByOwnerServer(serverID int64) (*models.Group, error)
	Create(group *models.Group) error
	Save(group *models.Group) error
	DeleteCascade(groupID uint) error
}

type memberStore interface {
	Get(groupID uint, serverID int64) (*models.Member, error)
	GetEnabled(groupID uint) ([]*models.Member, error)
	GetEnabledByServer(serverID int64) (*models.Member, error)
	Save(member *models.Member) error
	Disable(groupID uint, serverID int64) error
}

type inviteStore interface {
	Create(invite *models.Invite) error
	GetPending(groupID uint, serverID int64) (*models.Invite, error)
	SetStatus(inviteID uint, status models.InviteStatus) error
}

type moderatorStore interface {
	Get(groupID uint, kind models.ModeratorKind, subjectID int64) (*models.ModeratorGrant, error)
	ListByGroup(groupID uint) ([]*models.ModeratorGrant, error)
	Create(grant *models.ModeratorGrant) error
	Delete(groupID uint, kind models.ModeratorKind, subjectID int64) error
}

type banStore interface {
	Create(ban *models.Ban) error
	Save(ban *models.Ban) error
	GetActive(groupID uint, userID int64) (*models.Ban, error)
	ListActiveByGroup(groupID uint) ([]*models.Ban, error)
}

type auditStore interface {
	Create(entry *models.AuditEntry) error
	ListByGroup(groupID uint, limit int) ([]*models.AuditEntry, error)
}

var (
	groupCache          = models.NewGroupCache()
	groupRepository     groupStore
	memberRepository    memberStore
	inviteRepository    inviteStore
	moderatorRepository moderatorStore
	banRepository       banStore
	auditRepository     auditStore
	globalConfig        *config.Config
	defaultPlatform     platform.Platform
	evidenceStore       *evidence.Store
)

// SetPlatform registers the platform client the command layer resolves
// through Platform()
func SetPlatform(pf platform.Platform) {
	defaultPlatform = pf
}

// Platform returns the registered platform client
func Platform() platform.Platform {
	return defaultPlatform
}

// SetEvidenceStore registers the file store evidence references resolve
// through
func SetEvidenceStore(store *evidence.Store) {
	evidenceStore = store
}

// EvidenceStore returns the registered evidence store
func EvidenceStore() *evidence.Store {
	return evidenceStore
}

// Initialize initializes the service with configuration
func Initialize(cfg *config.Config) {
	globalConfig = cfg
}

// InitRepositories initializes the repositories if database is enabled
func InitRepositories() {
	if storage.DB == nil {
		logger.Warningf("Database is not enabled, repositories not initialized")
		return
	}

	groups := storage.NewGroupRepository(storage.DB)
	if err := groups.MigrateTable(); err != nil {
		logger.Warningf("Error migrating Group table: %v", err)
	}
	groupRepository = groups
	// Load existing groups from the database
	if err := storage.InitializeGroups(groupCache); err != nil {
		logger.Warningf("Error loading groups from database: %v", err)
	}

	members := storage.NewMemberRepository(storage.DB)
	if err := members.MigrateTable(); err != nil {
		logger.Warningf("Error migrating Member table: %v", err)
	}
	memberRepository = members

	invites := storage.NewInviteRepository(storage.DB)
	if err := invites.MigrateTable(); err != nil {
		logger.Warningf("Error migrating Invite table: %v", err)
	}
	inviteRepository = invites

	moderators := storage.NewModeratorRepository(storage.DB)
	if err := moderators.MigrateTable(); err != nil {
		logger.Warningf("Error migrating ModeratorGrant table: %v", err)
	}
	moderatorRepository = moderators

	bans := storage.NewBanRepository(storage.DB)
	if err := bans.MigrateTable(); err != nil {
		logger.Warningf("Error migrating Ban table: %v", err)
	}
	banRepository = bans

	audits := storage.NewAuditRepository(storage.DB)
	if err := audits.MigrateTable(); err != nil {
		logger.Warningf("Error migrating AuditEntry table: %v", err)
	}
	auditRepository = audits
}
