package service

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"banshare/internal/crash"
	"banshare/internal/logger"
	"banshare/internal/models"
	"banshare/internal/platform"
	"banshare/internal/util"
)

// Record durably appends an audit entry and kicks off the best-effort
// notification fan-out. Audit persistence failure is swallowed (logged
// locally only) so it can never abort the triggering operation; the
// fan-out runs detached and the caller never blocks on it.
func Record(pf platform.Platform, group *models.Group, action models.AuditAction, actorID int64, detail map[string]interface{}) {
	entry := &models.AuditEntry{
		GroupID: group.ID,
		Action:  action,
		ActorID: actorID,
		Detail:  detail,
	}

	if auditRepository != nil {
		if err := auditRepository.Create(entry); err != nil {
			logger.Warningf("Error persisting audit entry %s for group %d: %v", action, group.ID, err)
		}
	}

	if !group.LogsEnabled {
		return
	}
	if strings.HasPrefix(string(action), "ban.") && !group.NotifyOnBan {
		return
	}

	var members []*models.Member
	if memberRepository != nil {
		var err error
		members, err = memberRepository.GetEnabled(group.ID)
		if err != nil {
			logger.Warningf("Error resolving members for notification: %v", err)
			members = nil
		}
	}

	message := formatAuditMessage(group, entry)
	fallbackChannel, adminLimit := notificationSettings()

	crash.SafeGoroutine("audit-notify", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if !notifyCascade(ctx, pf, group, members, fallbackChannel, adminLimit, message) {
			logger.Warningf("Audit notification undelivered: group=%d action=%s", group.ID, action)
		}
	})
}

func notificationSettings() (string, int) {
	if globalConfig == nil {
		return "moderation-log", 10
	}
	limit := globalConfig.Notification.AdminDMLimit
	if limit <= 0 {
		limit = 10
	}
	return globalConfig.Notification.FallbackChannel, limit
}

// notifyCascade walks the delivery fallback chain and stops at the
// first success:
//  1. each enabled member's configured channel (at most one of many)
//  2. the owning server's well-known channel
//  3. a direct message to the owning server's owner
//  4. direct messages to admins by role precedence, bounded
//
// Returning false means the event is visible only in the local log.
func notifyCascade(ctx context.Context, pf platform.Platform, group *models.Group, members []*models.Member, fallbackChannel string, adminLimit int, message string) bool {
	for _, m := range members {
		if m.NotifyChannelID == "" {
			continue
		}
		if err := pf.Notify(ctx, m.ServerID, m.NotifyChannelID, message); err != nil {
			logger.Debugf("Member channel delivery failed for server %d: %v", m.ServerID, err)
			continue
		}
		return true
	}

	if channel, err := pf.LookupChannel(ctx, group.OwnerServerID, fallbackChannel); err == nil {
		if err := pf.Notify(ctx, group.OwnerServerID, channel, message); err == nil {
			return true
		}
	}

	if owner, err := pf.ServerOwner(ctx, group.OwnerServerID); err == nil {
		if err := pf.Notify(ctx, group.OwnerServerID, strconv.FormatInt(owner, 10), message); err == nil {
			return true
		}
	}

	admins, err := pf.ServerAdmins(ctx, group.OwnerServerID)
	if err != nil {
		return false
	}
	for i, admin := range admins {
		if i >= adminLimit {
			break
		}
		if err := pf.Notify(ctx, group.OwnerServerID, strconv.FormatInt(admin, 10), message); err == nil {
			return true
		}
	}

	return false
}

// formatAuditMessage renders a human-facing notification line. The
// message is sent with HTML parse mode, so names and detail values
// coming from users must be escaped.
func formatAuditMessage(group *models.Group, entry *models.AuditEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b> in group <i>%s</i> by %d at %s",
		html.EscapeString(string(entry.Action)), html.EscapeString(group.Name),
		entry.ActorID, util.FormatTime(time.Now()))
	if len(entry.Detail) > 0 {
		for _, key := range []string{"user", "server", "reason", "succeeded", "failed"} {
			if v, ok := entry.Detail[key]; ok {
				fmt.Fprintf(&b, "\n%s: %s", key, html.EscapeString(fmt.Sprintf("%v", v)))
			}
		}
	}
	return b.String()
}

// AuditTrail returns a group's most recent audit entries
func AuditTrail(group *models.Group, limit int) ([]*models.AuditEntry, error) {
	if auditRepository == nil {
		return nil, nil
	}
	return auditRepository.ListByGroup(group.ID, limit)
}
