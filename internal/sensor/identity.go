package sensor

import "fmt"

// idPrefix namespaces every identifier this integration emits. The host's
// persisted registry maps identifiers back to physical entities, so the
// grammar below must stay stable across restarts and firmware updates.
const idPrefix = "byd"

// GlobalID identifies a system-wide scalar metric.
func GlobalID(serial, key string) string {
	return fmt.Sprintf("%s_%s_%s", idPrefix, serial, key)
}

// TowerID identifies a per-tower scalar metric. Tower numbering is
// 1-based and unpadded; adding towers appends new IDs without renumbering
// existing ones.
func TowerID(serial, key string, towerIndex int) string {
	return fmt.Sprintf("%s_%s_%s_%d", idPrefix, serial, key, towerIndex+1)
}

// CellID identifies one cell voltage or temperature metric. cellLabel is
// the zero-padded display label, not the raw cell index: the identifier
// therefore depends on the reset-counter and module display options.
// Changing those options renames cell metrics; that is a documented
// limitation, not something to silently compensate for.
func CellID(serial string, category Category, towerIndex, moduleNo int, cellLabel string) string {
	return fmt.Sprintf("%s_%s_%s_%d_%d_%s", idPrefix, serial, category, towerIndex+1, moduleNo, cellLabel)
}

// ModuleID identifies a module aggregate metric.
func ModuleID(serial string, towerIndex, moduleIndex int) string {
	return fmt.Sprintf("%s_%s_tower%d_module%d", idPrefix, serial, towerIndex+1, moduleIndex+1)
}
