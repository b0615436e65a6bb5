package service

import (
	"mixbot/config"
	"mixbot/models"
)

// tierService implements the TierService interface
type tierService struct {
	tiers      []models.RoleTier // ascending by MinPoints
	cumulative bool
}

// NewTierService creates a new tier service from the configured tier table
func NewTierService(cfg *config.Config) TierService {
	return &tierService{
		tiers:      cfg.TierRoles,
		cumulative: cfg.TierCumulative,
	}
}

// TargetRoles returns the tier roles a player with the given points should
// hold. Under the cumulative policy a player holds every tier whose
// threshold is met; otherwise only the highest met tier.
func (s *tierService) TargetRoles(points int) []string {
	var target []string
	for _, tier := range s.tiers {
		if points >= tier.MinPoints {
			target = append(target, tier.RoleID)
		}
	}

	if !s.cumulative && len(target) > 1 {
		return target[len(target)-1:]
	}
	return target
}

// SyncTierRoles computes the role changes needed to reconcile the reported
// current roles with the target set. Roles outside the tier table are left
// alone, and protected roles are never requested for removal. The caller
// applies the changes; this service never touches the platform.
func (s *tierService) SyncTierRoles(points int, currentRoleIDs []string, protectedRoleIDs []string) *models.TierSync {
	target := make(map[string]bool)
	for _, roleID := range s.TargetRoles(points) {
		target[roleID] = true
	}

	protected := make(map[string]bool)
	for _, roleID := range protectedRoleIDs {
		protected[roleID] = true
	}

	current := make(map[string]bool)
	for _, roleID := range currentRoleIDs {
		current[roleID] = true
	}

	sync := &models.TierSync{}
	for _, tier := range s.tiers {
		held := current[tier.RoleID]
		wanted := target[tier.RoleID]
		switch {
		case wanted && !held:
			sync.ToAdd = append(sync.ToAdd, tier.RoleID)
		case !wanted && held && !protected[tier.RoleID]:
			sync.ToRemove = append(sync.ToRemove, tier.RoleID)
		}
	}

	return sync
}
