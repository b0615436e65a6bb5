package models

// RoleTier maps a point threshold to the Discord role marking that
// milestone. Tier tables are configuration data, ordered ascending by
// MinPoints, and are not persisted.
type RoleTier struct {
	MinPoints int
	RoleID    string
}

// TierSync is the reconciliation result for one player: roles the gateway
// should grant and roles it should take away. The synchronizer never applies
// changes itself.
type TierSync struct {
	ToAdd    []string
	ToRemove []string
}
