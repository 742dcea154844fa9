package service

import (
	"fmt"

	"banshare/internal/models"
	"banshare/internal/platform"
)

// IsAuthorized resolves whether an actor may act on behalf of a group:
// the owning server's owner, a direct user grant, or any of the actor's
// roles matching a role grant.
func IsAuthorized(group *models.Group, actorID int64, roleIDs []int64) (bool, error) {
	if group.IsOwner(actorID) {
		return true, nil
	}

	if moderatorRepository == nil {
		return false, nil
	}
	grants, err := moderatorRepository.ListByGroup(group.ID)
	if err != nil {
		return false, fmt.Errorf("error listing moderator grants: %w", err)
	}

	return grantsAuthorize(grants, actorID, roleIDs), nil
}

// grantsAuthorize checks an actor against a group's grant set
func grantsAuthorize(grants []*models.ModeratorGrant, actorID int64, roleIDs []int64) bool {
	roles := make(map[int64]struct{}, len(roleIDs))
	for _, r := range roleIDs {
		roles[r] = struct{}{}
	}

	for _, g := range grants {
		switch g.Kind {
		case models.ModeratorUser:
			if g.SubjectID == actorID {
				return true
			}
		case models.ModeratorRole:
			if _, ok := roles[g.SubjectID]; ok {
				return true
			}
		}
	}
	return false
}

// AddModerator grants a user or role moderator rights on a group.
// Owner only; a moderator may never manage other moderators. Granting
// an existing tuple is rejected, not upserted.
func AddModerator(pf platform.Platform, group *models.Group, actorID int64, kind models.ModeratorKind, subjectID int64) (*models.ModeratorGrant, error) {
	if !group.IsOwner(actorID) {
		return nil, ErrNotOwner
	}
	if moderatorRepository == nil {
		return nil, ErrStorageDisabled
	}

	existing, err := moderatorRepository.Get(group.ID, kind, subjectID)
	if err != nil {
		return nil, fmt.Errorf("error checking moderator grant: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateGrant
	}

	grant := &models.ModeratorGrant{
		GroupID:   group.ID,
		Kind:      kind,
		SubjectID: subjectID,
		GrantedBy: actorID,
	}
	if err := moderatorRepository.Create(grant); err != nil {
		return nil, fmt.Errorf("error creating moderator grant: %w", err)
	}

	Record(pf, group, models.ActionModeratorAdd, actorID, map[string]interface{}{
		"kind":    string(kind),
		"subject": subjectID,
	})

	return grant, nil
}

// RemoveModerator revokes a grant. Owner only.
func RemoveModerator(pf platform.Platform, group *models.Group, actorID int64, kind models.ModeratorKind, subjectID int64) error {
	if !group.IsOwner(actorID) {
		return ErrNotOwner
	}
	if moderatorRepository == nil {
		return ErrStorageDisabled
	}

	if err := moderatorRepository.Delete(group.ID, kind, subjectID); err != nil {
		return ErrGrantNotFound
	}

	Record(pf, group, models.ActionModeratorDel, actorID, map[string]interface{}{
		"kind":    string(kind),
		"subject": subjectID,
	})

	return nil
}
