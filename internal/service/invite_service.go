package service

import (
	"context"
	"fmt"
	"time"

	"banshare/internal/logger"
	"banshare/internal/models"
	"banshare/internal/platform"
	"banshare/internal/storage"

	"gorm.io/gorm"
)

// InviteServer issues an invite for a server to join a group. At most
// one pending, unexpired invite may exist per (group, server) pair.
func InviteServer(pf platform.Platform, group *models.Group, targetServerID, actorID int64) (*models.Invite, error) {
	if memberRepository == nil || inviteRepository == nil {
		return nil, ErrStorageDisabled
	}

	membership, err := memberRepository.GetEnabledByServer(targetServerID)
	if err != nil {
		return nil, fmt.Errorf("error checking membership: %w", err)
	}
	if membership != nil {
		return nil, ErrAlreadyMember
	}

	pending, err := inviteRepository.GetPending(group.ID, targetServerID)
	if err != nil {
		return nil, fmt.Errorf("error checking pending invites: %w", err)
	}
	if pending != nil {
		if !pending.Expired(time.Now()) {
			return nil, ErrDuplicatePending
		}
		// Expiry is a read-time predicate; flip the stale invite lazily
		if err := inviteRepository.SetStatus(pending.ID, models.InviteExpired); err != nil {
			logger.Warningf("Error expiring stale invite %d: %v", pending.ID, err)
		}
	}

	invite := &models.Invite{
		GroupID:   group.ID,
		ServerID:  targetServerID,
		InvitedBy: actorID,
		Status:    models.InvitePending,
		ExpiresAt: time.Now().Add(models.InviteTTL),
	}
	if err := inviteRepository.Create(invite); err != nil {
		return nil, fmt.Errorf("error creating invite: %w", err)
	}

	Record(pf, group, models.ActionInviteCreate, actorID, map[string]interface{}{
		"server":     targetServerID,
		"expires_at": invite.ExpiresAt.Unix(),
	})

	return invite, nil
}

// checkAccept re-validates an invite at acceptance time. Each violation
// carries its own user-attributable error.
func checkAccept(group *models.Group, invite *models.Invite, enabledCount int64, alreadyMember bool, now time.Time) error {
	if invite.Status != models.InvitePending {
		return ErrInviteNotPending
	}
	if invite.Expired(now) {
		return ErrInviteExpired
	}
	if alreadyMember {
		return ErrAlreadyMember
	}
	if group.MemberLimit > 0 && enabledCount >= int64(group.MemberLimit) {
		return ErrCapacityExceeded
	}
	return nil
}

// AcceptInvite enrolls the invited server as a group member. All
// preconditions are re-validated inside the same transaction that
// creates the member, closing the race with a concurrent accept. With
// syncExisting set, every active ban in the group is back-applied to
// the new member.
func AcceptInvite(ctx context.Context, pf platform.Platform, group *models.Group, invite *models.Invite, actorID int64, syncExisting bool) (*models.Member, error) {
	if storage.DB == nil {
		return nil, ErrStorageDisabled
	}

	var member *models.Member

	err := storage.Transaction(func(tx *gorm.DB) error {
		invites := storage.NewInviteRepository(tx)
		members := storage.NewMemberRepository(tx)

		current, err := invites.GetByID(invite.ID)
		if err != nil {
			return fmt.Errorf("error re-reading invite: %w", err)
		}
		if current == nil {
			return ErrInviteNotPending
		}

		existing, err := members.GetEnabledByServer(invite.ServerID)
		if err != nil {
			return fmt.Errorf("error checking membership: %w", err)
		}
		count, err := members.CountEnabled(group.ID)
		if err != nil {
			return fmt.Errorf("error counting members: %w", err)
		}

		now := time.Now()
		if err := checkAccept(group, current, count, existing != nil, now); err != nil {
			if err == ErrInviteExpired {
				if serr := invites.SetStatus(current.ID, models.InviteExpired); serr != nil {
					logger.Warningf("Error expiring invite %d: %v", current.ID, serr)
				}
			}
			return err
		}

		// (group, server) pairs are unique; a server that left earlier
		// is re-enabled rather than re-inserted
		prior, err := members.Get(group.ID, invite.ServerID)
		if err != nil {
			return fmt.Errorf("error checking prior membership: %w", err)
		}
		if prior != nil {
			prior.Enabled = true
			prior.AddedBy = actorID
			prior.SyncedOnJoin = syncExisting
			if err := members.Save(prior); err != nil {
				return fmt.Errorf("error re-enabling member: %w", err)
			}
			member = prior
		} else {
			member = &models.Member{
				GroupID:      group.ID,
				ServerID:     invite.ServerID,
				AddedBy:      actorID,
				SyncedOnJoin: syncExisting,
				Enabled:      true,
			}
			if err := members.Create(member); err != nil {
				return fmt.Errorf("error creating member: %w", err)
			}
		}

		return invites.SetStatus(current.ID, models.InviteAccepted)
	})
	if err != nil {
		return nil, err
	}
	invite.Status = models.InviteAccepted

	Record(pf, group, models.ActionInviteAccept, actorID, map[string]interface{}{
		"server": invite.ServerID,
		"synced": syncExisting,
	})

	if syncExisting {
		syncMemberBans(ctx, pf, group, member)
	}

	return member, nil
}

// syncMemberBans back-applies every active ban in the group to a newly
// joined server, reusing the per-target apply primitive. This fan-out
// is not part of ban creation; outcomes land in each ban's run history.
func syncMemberBans(ctx context.Context, pf platform.Platform, group *models.Group, member *models.Member) {
	if banRepository == nil {
		return
	}
	bans, err := banRepository.ListActiveByGroup(group.ID)
	if err != nil {
		logger.Warningf("Error listing active bans for sync: %v", err)
		return
	}

	applied := 0
	for _, ban := range bans {
		entry := ApplyToServer(ctx, pf, ban, member.ServerID)
		if entry.Result == models.RunSuccess || entry.Result == models.RunAlreadyApplied {
			applied++
		}
	}
	logger.Infof("Synced %d/%d active bans to server %d joining group %d",
		applied, len(bans), member.ServerID, group.ID)
}

// CancelInvite moves a pending invite to cancelled
func CancelInvite(pf platform.Platform, group *models.Group, invite *models.Invite, actorID int64) error {
	if !invite.Actionable(time.Now()) {
		return ErrInviteNotPending
	}
	if inviteRepository == nil {
		return ErrStorageDisabled
	}

	if err := inviteRepository.SetStatus(invite.ID, models.InviteCancelled); err != nil {
		return fmt.Errorf("error cancelling invite: %w", err)
	}

	Record(pf, group, models.ActionInviteCancel, actorID, map[string]interface{}{
		"server": invite.ServerID,
	})

	return nil
}

// RemoveMember soft-disables a membership, preserving its audit and
// ban associations. With leave policy "lift", the departing server's
// enforcement is removed best-effort.
func RemoveMember(ctx context.Context, pf platform.Platform, group *models.Group, serverID, actorID int64) error {
	if memberRepository == nil {
		return ErrStorageDisabled
	}

	member, err := memberRepository.Get(group.ID, serverID)
	if err != nil {
		return fmt.Errorf("error fetching member: %w", err)
	}
	if member == nil || !member.Enabled {
		return ErrNotMember
	}

	if err := memberRepository.Disable(group.ID, serverID); err != nil {
		return fmt.Errorf("error disabling member: %w", err)
	}

	if group.LeavePolicy == models.LeaveLift {
		liftServerBans(ctx, pf, group, serverID)
	}

	Record(pf, group, models.ActionMemberRemove, actorID, map[string]interface{}{
		"server": serverID,
		"policy": string(group.LeavePolicy),
	})

	return nil
}

// SetNotifyChannel configures (or clears) the channel a member server
// receives audit notifications on
func SetNotifyChannel(pf platform.Platform, group *models.Group, serverID, actorID int64, channelID string) error {
	if memberRepository == nil {
		return ErrStorageDisabled
	}

	member, err := memberRepository.Get(group.ID, serverID)
	if err != nil {
		return fmt.Errorf("error fetching member: %w", err)
	}
	if member == nil || !member.Enabled {
		return ErrNotMember
	}

	member.NotifyChannelID = channelID
	if err := memberRepository.Save(member); err != nil {
		return fmt.Errorf("error saving member: %w", err)
	}

	Record(pf, group, models.ActionSettingUpdate, actorID, map[string]interface{}{
		"server":         serverID,
		"notify_channel": channelID,
	})

	return nil
}

// liftServerBans removes the group's active bans from a departing
// server. Failures are logged only; the departure itself already
// happened.
func liftServerBans(ctx context.Context, pf platform.Platform, group *models.Group, serverID int64) {
	if banRepository == nil {
		return
	}
	bans, err := banRepository.ListActiveByGroup(group.ID)
	if err != nil {
		logger.Warningf("Error listing active bans to lift: %v", err)
		return
	}
	for _, ban := range bans {
		if err := pf.RemoveBan(ctx, serverID, ban.TargetUserID, ban.DisplayReason()); err != nil {
			logger.Warningf("Error lifting ban %d on departing server %d: %v", ban.ID, serverID, err)
		}
	}
}
