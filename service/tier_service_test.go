package service

import (
	"testing"

	"mixbot/config"
	"mixbot/models"

	"github.com/stretchr/testify/assert"
)

func newTierService(cumulative bool) TierService {
	return NewTierService(&config.Config{
		TierRoles: []models.RoleTier{
			{MinPoints: 50, RoleID: "role50"},
			{MinPoints: 100, RoleID: "role100"},
			{MinPoints: 150, RoleID: "role150"},
		},
		TierCumulative: cumulative,
	})
}

func TestTierService_TargetRoles_Cumulative(t *testing.T) {
	svc := newTierService(true)

	assert.Empty(t, svc.TargetRoles(0))
	assert.Equal(t, []string{"role50"}, svc.TargetRoles(50))
	assert.Equal(t, []string{"role50", "role100"}, svc.TargetRoles(120))
	assert.Equal(t, []string{"role50", "role100", "role150"}, svc.TargetRoles(150))
}

func TestTierService_TargetRoles_HighestOnly(t *testing.T) {
	svc := newTierService(false)

	assert.Empty(t, svc.TargetRoles(49))
	assert.Equal(t, []string{"role100"}, svc.TargetRoles(120))
	assert.Equal(t, []string{"role150"}, svc.TargetRoles(999))
}

func TestTierService_SyncTierRoles_AddsMissingTiers(t *testing.T) {
	svc := newTierService(true)

	sync := svc.SyncTierRoles(120, []string{"role50"}, nil)

	assert.Equal(t, []string{"role100"}, sync.ToAdd)
	assert.Empty(t, sync.ToRemove)
}

func TestTierService_SyncTierRoles_RemovesStaleTiers(t *testing.T) {
	svc := newTierService(true)

	sync := svc.SyncTierRoles(60, []string{"role50", "role100", "role150"}, nil)

	assert.Empty(t, sync.ToAdd)
	assert.Equal(t, []string{"role100", "role150"}, sync.ToRemove)
}

func TestTierService_SyncTierRoles_IgnoresForeignRoles(t *testing.T) {
	svc := newTierService(true)

	sync := svc.SyncTierRoles(60, []string{"role50", "moderator", "dj"}, nil)

	assert.Empty(t, sync.ToAdd)
	assert.Empty(t, sync.ToRemove)
}

func TestTierService_SyncTierRoles_ProtectedNeverRemoved(t *testing.T) {
	svc := newTierService(true)

	sync := svc.SyncTierRoles(0, []string{"role50", "role100"}, []string{"role100"})

	assert.Empty(t, sync.ToAdd)
	assert.Equal(t, []string{"role50"}, sync.ToRemove)
}

func TestTierService_SyncTierRoles_AlreadyInSync(t *testing.T) {
	svc := newTierService(true)

	sync := svc.SyncTierRoles(120, []string{"role50", "role100"}, nil)

	assert.Empty(t, sync.ToAdd)
	assert.Empty(t, sync.ToRemove)
}

func TestTierService_SyncTierRoles_HighestOnlyDemotesLowerTiers(t *testing.T) {
	svc := newTierService(false)

	sync := svc.SyncTierRoles(120, []string{"role50"}, nil)

	assert.Equal(t, []string{"role100"}, sync.ToAdd)
	assert.Equal(t, []string{"role50"}, sync.ToRemove)
}
