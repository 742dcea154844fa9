package models

import (
	"time"

	"gorm.io/datatypes"
)

// RunResult is the per-target outcome of one propagation attempt
type RunResult string

const (
	RunSuccess        RunResult = "success"
	RunFailed         RunResult = "failed"
	RunSkipped        RunResult = "skipped"
	RunNoPermission   RunResult = "no_permission"
	RunAlreadyApplied RunResult = "already_applied"
)

// RunEntry records the outcome of one remote call against one target server.
// Entries are ordered by attempt order and never reordered after persistence.
type RunEntry struct {
	ServerID  int64      `json:"server_id"`
	RunID     string     `json:"run_id"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
	Result    RunResult  `json:"result"`
	Error     string     `json:"error,omitempty"`
	Retries   int        `json:"retries"`
}

// EvidenceKind tags the type of an evidence entry
type EvidenceKind string

const (
	EvidenceImage EvidenceKind = "image"
	EvidenceLink  EvidenceKind = "link"
	EvidenceText  EvidenceKind = "text"
)

// EvidenceStorageFile marks an entry stored as an external file reference
const EvidenceStorageFile = "file"

// EvidenceStorageLink marks an entry that is only a URL, with no stored file
const EvidenceStorageLink = "link"

// MaxEvidenceEntries bounds the evidence list on a ban
const MaxEvidenceEntries = 5

// EvidenceEntry is a validated, safely-referenced upload attached to a ban
type EvidenceEntry struct {
	ID      string       `json:"id"`
	Kind    EvidenceKind `json:"kind"`
	Storage string       `json:"storage"`
	Ref     string       `json:"ref"`
	Note    string       `json:"note,omitempty"`
	Size    int64        `json:"size"`
}

// NewLinkEvidence builds an evidence entry referencing an external URL
func NewLinkEvidence(id, url, note string) EvidenceEntry {
	return EvidenceEntry{ID: id, Kind: EvidenceLink, Storage: EvidenceStorageLink, Ref: url, Note: note}
}

// Ban is the canonical moderation record. Revoking flips Active; the row
// is never deleted. Expiry is recorded but not enforced.
type Ban struct {
	ID                 uint   `gorm:"primaryKey;autoIncrement"`
	GroupID            uint   `gorm:"index:idx_ban_group_user;not null"`
	TargetUserID       int64  `gorm:"index:idx_ban_group_user;not null"`
	IssuedBy           int64  `gorm:"not null"`
	IssuerServerID     int64  `gorm:"not null"`
	Reason             string `gorm:"type:text;not null"`
	PublicReason       string `gorm:"type:text"`
	ReasonPrivate      bool   `gorm:"default:false"`
	ExpiresAt          *time.Time
	Active             bool                               `gorm:"default:true;index"`
	Evidence           datatypes.JSONSlice[EvidenceEntry] `gorm:"type:json"`
	InvolvedModerators datatypes.JSONSlice[int64]         `gorm:"type:json"`
	LastRun            datatypes.JSONSlice[RunEntry]      `gorm:"type:json"`
	RunHistory         datatypes.JSONSlice[RunEntry]      `gorm:"type:json"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ReasonFor returns the reason the viewer is allowed to see. A private
// reason is only disclosed to moderators on the issuing server.
func (b *Ban) ReasonFor(viewerServerID int64) string {
	if b.ReasonPrivate && viewerServerID != b.IssuerServerID {
		return b.DisplayReason()
	}
	return b.Reason
}

// DisplayReason returns the user-facing reason, defaulting to the
// internal one when unset.
func (b *Ban) DisplayReason() string {
	if b.PublicReason != "" {
		return b.PublicReason
	}
	return b.Reason
}

// SummarizeRun counts per-target outcomes for partial-success reporting
func SummarizeRun(entries []RunEntry) (succeeded, failed int) {
	for _, e := range entries {
		switch e.Result {
		case RunSuccess, RunAlreadyApplied:
			succeeded++
		default:
			failed++
		}
	}
	return succeeded, failed
}
