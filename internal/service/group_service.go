package service

import (
	"context"
	"fmt"
	"strconv"

	"banshare/internal/logger"
	"banshare/internal/models"
	"banshare/internal/platform"
	"banshare/internal/util"
)

// GetGroup gets a group from cache or database
func GetGroup(groupID uint) (*models.Group, error) {
	if group := groupCache.Get(groupID); group != nil {
		return group, nil
	}

	if groupRepository != nil {
		group, err := groupRepository.GetByID(groupID)
		if err != nil {
			return nil, fmt.Errorf("error fetching group: %w", err)
		}
		if group != nil {
			groupCache.Put(group)
			return group, nil
		}
	}

	return nil, ErrGroupNotFound
}

// GetGroupByOwnerServer gets the group owned by a server, if any
func GetGroupByOwnerServer(serverID int64) (*models.Group, error) {
	if group := groupCache.GetByOwnerServer(serverID); group != nil {
		return group, nil
	}

	if groupRepository != nil {
		group, err := groupRepository.GetByOwnerServer(serverID)
		if err != nil {
			return nil, fmt.Errorf("error fetching group: %w", err)
		}
		if group != nil {
			groupCache.Put(group)
			return group, nil
		}
	}

	return nil, ErrGroupNotFound
}

// CreateGroup creates a new sharing group owned by a server. A server
// may own at most one group.
func CreateGroup(ctx context.Context, pf platform.Platform, ownerServerID, actorID int64, name, description string) (*models.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("group name is required")
	}
	if groupRepository == nil {
		return nil, ErrStorageDisabled
	}

	existing, err := groupRepository.GetByOwnerServer(ownerServerID)
	if err != nil {
		return nil, fmt.Errorf("error checking existing group: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	// Capture the owning server's owner for authorization checks
	ownerUserID, err := pf.ServerOwner(ctx, ownerServerID)
	if err != nil {
		logger.Warningf("Could not resolve owner of server %d: %v", ownerServerID, err)
		ownerUserID = actorID
	}

	group := &models.Group{
		OwnerServerID: ownerServerID,
		OwnerUserID:   ownerUserID,
		Name:          name,
		Description:   description,
		CreatedBy:     actorID,
		MemberLimit:   globalConfig.Group.MemberLimit,
		LogsEnabled:   globalConfig.Group.LoggingEnabled,
		NotifyOnBan:   globalConfig.Group.NotifyOnBan,
		Analytics:     globalConfig.Group.Analytics,
		LeavePolicy:   models.LeavePolicy(globalConfig.Group.LeavePolicy),
	}

	if err := groupRepository.Create(group); err != nil {
		return nil, fmt.Errorf("error creating group: %w", err)
	}

	groupCache.Put(group)
	logger.Infof("Created group %d (%s) owned by server %d", group.ID, group.Name, ownerServerID)

	Record(pf, group, models.ActionGroupCreate, actorID, map[string]interface{}{
		"name": group.Name,
	})

	return group, nil
}

// UpdateSettings persists setting changes on a group. Owner only,
// regardless of moderator status.
func UpdateSettings(pf platform.Platform, group *models.Group, actorID int64) error {
	if !group.IsOwner(actorID) {
		return ErrNotOwner
	}
	if groupRepository == nil {
		return ErrStorageDisabled
	}

	if err := groupRepository.Save(group); err != nil {
		return fmt.Errorf("error saving group settings: %w", err)
	}
	groupCache.Put(group)

	Record(pf, group, models.ActionSettingUpdate, actorID, map[string]interface{}{
		"member_limit": group.MemberLimit,
		"logs_enabled": group.LogsEnabled,
		"leave_policy": string(group.LeavePolicy),
	})

	return nil
}

// DeleteGroup removes a group and all dependent records in one
// transaction. Owner only.
func DeleteGroup(pf platform.Platform, group *models.Group, actorID int64) error {
	if !group.IsOwner(actorID) {
		return ErrNotOwner
	}
	if groupRepository == nil {
		return ErrStorageDisabled
	}

	// Recorded before the cascade so the members still get the
	// notification; the persisted entry itself goes down with the
	// group's audit trail.
	Record(pf, group, models.ActionGroupDelete, actorID, map[string]interface{}{
		"name": group.Name,
	})

	if err := groupRepository.DeleteCascade(group.ID); err != nil {
		return fmt.Errorf("error deleting group: %w", err)
	}

	groupCache.Remove(group.ID)
	logger.Infof("Group %d (%s) deleted by %d", group.ID, group.Name, actorID)
	return nil
}

// ApplySetting mutates one group setting from its command-argument
// string form, without persisting. Boolean settings accept the usual
// spellings (1, true, yes, on). UpdateSettings persists the result.
func ApplySetting(group *models.Group, key, value string) error {
	switch key {
	case "logging":
		group.LogsEnabled = util.ToBool(value)
	case "notify":
		group.NotifyOnBan = util.ToBool(value)
	case "analytics":
		group.Analytics = util.ToBool(value)
	case "leave_policy":
		policy := models.LeavePolicy(value)
		switch policy {
		case models.LeaveRetain, models.LeaveLift, models.LeaveArchive:
			group.LeavePolicy = policy
		default:
			return fmt.Errorf("unknown leave policy: %s", value)
		}
	case "member_limit":
		limit, err := strconv.Atoi(value)
		if err != nil || limit < 0 {
			return fmt.Errorf("invalid member limit: %s", value)
		}
		group.MemberLimit = limit
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
	return nil
}
