package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"banshare/internal/logger"
	"banshare/internal/models"
	"banshare/internal/platform"
	"banshare/internal/util"

	"golang.org/x/sync/errgroup"
)

// remoteOp is one platform call against one target server
type remoteOp func(ctx context.Context, serverID int64) error

// propagate dispatches op against every target concurrently, bounded by
// workerLimit, each call under its own timeout. No call's failure
// aborts the others. The returned slice holds exactly one entry per
// requested target, in the caller's target order.
func propagate(ctx context.Context, targets []int64, runID string, workerLimit int, callTimeout time.Duration, op remoteOp) []models.RunEntry {
	if workerLimit <= 0 {
		workerLimit = 4
	}
	if callTimeout <= 0 {
		callTimeout = 15 * time.Second
	}

	entries := make([]models.RunEntry, len(targets))

	var g errgroup.Group
	g.SetLimit(workerLimit)
	for i, serverID := range targets {
		g.Go(func() error {
			entries[i] = attemptOne(ctx, serverID, runID, callTimeout, op)
			return nil
		})
	}
	g.Wait()

	return entries
}

// attemptOne performs a single remote call and records its outcome.
// The initial attempt carries retry counter 0; the core never retries
// automatically.
func attemptOne(ctx context.Context, serverID int64, runID string, callTimeout time.Duration, op remoteOp) models.RunEntry {
	entry := models.RunEntry{ServerID: serverID, RunID: runID}

	if ctx.Err() != nil {
		entry.Result = models.RunSkipped
		entry.Error = ctx.Err().Error()
		return entry
	}

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	err := op(callCtx, serverID)
	now := time.Now()
	entry.AppliedAt = &now

	switch {
	case err == nil:
		entry.Result = models.RunSuccess
	case errors.Is(err, platform.ErrNoPermission):
		entry.Result = models.RunNoPermission
		entry.Error = err.Error()
	case errors.Is(err, platform.ErrAlreadyApplied):
		entry.Result = models.RunAlreadyApplied
		entry.Error = err.Error()
	default:
		entry.Result = models.RunFailed
		entry.Error = err.Error()
	}
	return entry
}

func propagationLimits() (int, time.Duration) {
	if globalConfig == nil {
		return 4, 15 * time.Second
	}
	return globalConfig.Propagation.WorkerLimit,
		time.Duration(globalConfig.Propagation.CallTimeout) * time.Second
}

// CreateBan creates the canonical ban record and applies it to every
// server in the target set. Propagation is apply-everywhere-reachable:
// the record is persisted exactly once with the aggregated run list no
// matter how many remote calls failed.
func CreateBan(ctx context.Context, pf platform.Platform, group *models.Group, targetUserID, issuerID, issuerServerID int64, reason string, targets []int64) (*models.Ban, error) {
	if reason == "" {
		return nil, ErrEmptyReason
	}
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	if banRepository == nil {
		return nil, ErrStorageDisabled
	}

	// Duplicate check is by (group, user) only, regardless of which
	// servers were targeted originally; widening a ban requires a
	// revoke first.
	existing, err := banRepository.GetActive(group.ID, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("error checking existing bans: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyBanned
	}

	runID := util.NewID()
	limit, timeout := propagationLimits()
	entries := propagate(ctx, targets, runID, limit, timeout, func(callCtx context.Context, serverID int64) error {
		return pf.ApplyBan(callCtx, serverID, targetUserID, reason)
	})

	ban := &models.Ban{
		GroupID:        group.ID,
		TargetUserID:   targetUserID,
		IssuedBy:       issuerID,
		IssuerServerID: issuerServerID,
		Reason:         reason,
		Active:         true,
		LastRun:        entries,
		RunHistory:     entries,
	}
	if err := banRepository.Create(ban); err != nil {
		// Persistence failure on the primary record is fatal
		Record(pf, group, models.ActionBanCreate.Failed(), issuerID, map[string]interface{}{
			"user":  targetUserID,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("error persisting ban: %w", err)
	}

	succeeded, failed := models.SummarizeRun(entries)
	logger.Infof("Ban %d created for user %d in group %d: %d applied, %d failed",
		ban.ID, targetUserID, group.ID, succeeded, failed)

	Record(pf, group, models.ActionBanCreate, issuerID, map[string]interface{}{
		"ban":       ban.ID,
		"user":      targetUserID,
		"reason":    util.Truncate(reason, 200),
		"succeeded": succeeded,
		"failed":    failed,
	})

	return ban, nil
}

// RevokeBan lifts a ban across the group's currently enrolled member
// set, which may differ from the originally targeted set. Active is
// flipped regardless of per-target outcomes; the record is never
// deleted.
func RevokeBan(ctx context.Context, pf platform.Platform, group *models.Group, ban *models.Ban, actorID int64) ([]models.RunEntry, error) {
	if !ban.Active {
		return nil, ErrBanNotActive
	}
	if banRepository == nil || memberRepository == nil {
		return nil, ErrStorageDisabled
	}

	members, err := memberRepository.GetEnabled(group.ID)
	if err != nil {
		return nil, fmt.Errorf("error resolving current members: %w", err)
	}
	targets := make([]int64, 0, len(members))
	for _, m := range members {
		targets = append(targets, m.ServerID)
	}

	runID := util.NewID()
	limit, timeout := propagationLimits()
	entries := propagate(ctx, targets, runID, limit, timeout, func(callCtx context.Context, serverID int64) error {
		return pf.RemoveBan(callCtx, serverID, ban.TargetUserID, ban.DisplayReason())
	})

	ban.Active = false
	ban.LastRun = entries
	ban.RunHistory = append(ban.RunHistory, entries...)
	if err := banRepository.Save(ban); err != nil {
		return nil, fmt.Errorf("error persisting revoked ban: %w", err)
	}

	succeeded, failed := models.SummarizeRun(entries)
	logger.Infof("Ban %d revoked by %d: %d lifted, %d failed", ban.ID, actorID, succeeded, failed)

	Record(pf, group, models.ActionBanRevoke, actorID, map[string]interface{}{
		"ban":       ban.ID,
		"user":      ban.TargetUserID,
		"succeeded": succeeded,
		"failed":    failed,
	})

	return entries, nil
}

// BanEdit carries the editable fields of a ban. Nil pointers leave the
// field untouched.
type BanEdit struct {
	Reason             *string
	PublicReason       *string
	ReasonPrivate      *bool
	ExpiresAt          *time.Time
	InvolvedModerators []int64
}

// EditBan updates a ban's descriptive fields. Editing never re-triggers
// propagation; only CreateBan and RevokeBan touch the remote platform.
func EditBan(pf platform.Platform, group *models.Group, ban *models.Ban, actorID int64, edit BanEdit) error {
	if edit.Reason != nil {
		if *edit.Reason == "" {
			return ErrEmptyReason
		}
		ban.Reason = *edit.Reason
	}
	if edit.PublicReason != nil {
		ban.PublicReason = *edit.PublicReason
	}
	if edit.ReasonPrivate != nil {
		ban.ReasonPrivate = *edit.ReasonPrivate
	}
	if edit.ExpiresAt != nil {
		ban.ExpiresAt = edit.ExpiresAt
	}
	if edit.InvolvedModerators != nil {
		ban.InvolvedModerators = edit.InvolvedModerators
	}

	if banRepository == nil {
		return ErrStorageDisabled
	}
	if err := banRepository.Save(ban); err != nil {
		return fmt.Errorf("error saving ban: %w", err)
	}

	Record(pf, group, models.ActionBanEdit, actorID, map[string]interface{}{
		"ban": ban.ID,
	})

	return nil
}

// AddEvidence attaches a validated evidence entry to a ban. The list
// is bounded; a sixth entry is rejected.
func AddEvidence(pf platform.Platform, group *models.Group, ban *models.Ban, actorID int64, entry models.EvidenceEntry) error {
	if len(ban.Evidence) >= models.MaxEvidenceEntries {
		return ErrEvidenceLimit
	}
	if banRepository == nil {
		return ErrStorageDisabled
	}

	ban.Evidence = append(ban.Evidence, entry)
	if err := banRepository.Save(ban); err != nil {
		return fmt.Errorf("error saving ban evidence: %w", err)
	}

	Record(pf, group, models.ActionBanEdit, actorID, map[string]interface{}{
		"ban":      ban.ID,
		"evidence": entry.ID,
	})

	return nil
}

// AddLinkEvidence attaches a URL reference as evidence. Nothing is
// stored locally for links.
func AddLinkEvidence(pf platform.Platform, group *models.Group, ban *models.Ban, actorID int64, url, note string) error {
	return AddEvidence(pf, group, ban, actorID, models.NewLinkEvidence(util.NewID(), url, note))
}

// ResolveEvidence returns the location of a ban's evidence entry and
// records the access. Link evidence resolves to its URL; file evidence
// resolves through the registered store's traversal-safe path mapping.
func ResolveEvidence(pf platform.Platform, group *models.Group, ban *models.Ban, actorID int64, evidenceID string) (string, error) {
	for _, e := range ban.Evidence {
		if e.ID != evidenceID {
			continue
		}

		var location string
		if e.Kind == models.EvidenceLink {
			location = e.Ref
		} else {
			if evidenceStore == nil {
				return "", fmt.Errorf("no evidence store configured")
			}
			path, err := evidenceStore.Resolve(e.Ref)
			if err != nil {
				return "", err
			}
			location = path
		}

		Record(pf, group, models.ActionEvidenceAccess, actorID, map[string]interface{}{
			"ban":      ban.ID,
			"evidence": e.ID,
		})
		return location, nil
	}
	return "", fmt.Errorf("evidence %s not found on ban %d", evidenceID, ban.ID)
}

// ApplyToServer runs the per-target apply primitive for one server and
// appends the outcome to the ban's run history. Used by sync-on-join
// and corrective re-targeting.
func ApplyToServer(ctx context.Context, pf platform.Platform, ban *models.Ban, serverID int64) models.RunEntry {
	_, timeout := propagationLimits()
	entry := attemptOne(ctx, serverID, util.NewID(), timeout, func(callCtx context.Context, sid int64) error {
		return pf.ApplyBan(callCtx, sid, ban.TargetUserID, ban.DisplayReason())
	})

	ban.RunHistory = append(ban.RunHistory, entry)
	if banRepository != nil {
		if err := banRepository.Save(ban); err != nil {
			logger.Warningf("Error persisting run entry for ban %d: %v", ban.ID, err)
		}
	}
	return entry
}
