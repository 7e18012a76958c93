package battery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotValid(t *testing.T) {
	tests := []struct {
		name     string
		snapshot *Snapshot
		want     bool
	}{
		{"nil snapshot", nil, false},
		{"nil towers", &Snapshot{Globals: map[string]any{}}, false},
		{"empty towers", &Snapshot{Globals: map[string]any{}, Towers: []Tower{}}, true},
		{"empty helper", Empty(), true},
		{
			"populated",
			&Snapshot{
				Globals: map[string]any{"soc": 85.0},
				Towers:  []Tower{{CellVoltages: []float64{3300}}},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snapshot.Valid())
		})
	}
}

func TestGlobalInt(t *testing.T) {
	s := &Snapshot{
		Globals: map[string]any{
			"as_int":     16,
			"as_int64":   int64(8),
			"as_float":   float64(32),
			"as_string":  "16",
			"soc":        85.5,
			"error_text": "ok",
		},
		Towers: []Tower{},
	}

	for key, want := range map[string]int{"as_int": 16, "as_int64": 8, "as_float": 32} {
		got, ok := s.GlobalInt(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	_, ok := s.GlobalInt("as_string")
	assert.False(t, ok)
	_, ok = s.GlobalInt("missing")
	assert.False(t, ok)
}

func TestModuleCounts(t *testing.T) {
	s := &Snapshot{
		Globals: map[string]any{
			KeyModuleCellCount:     16,
			KeyModuleCellTempCount: 8,
		},
		Towers: []Tower{},
	}

	assert.Equal(t, 16, s.ModuleCellCount())
	assert.Equal(t, 8, s.ModuleCellTempCount())

	// Absent or nonsense counts collapse to zero; the projector treats
	// zero as "no module partitioning".
	assert.Equal(t, 0, Empty().ModuleCellCount())

	s.Globals[KeyModuleCellCount] = -4
	assert.Equal(t, 0, s.ModuleCellCount())
}

func TestTowerAttr(t *testing.T) {
	tower := &Tower{Attrs: map[string]any{"soh": 98}}

	v, ok := tower.Attr("soh")
	assert.True(t, ok)
	assert.Equal(t, 98, v)

	_, ok = tower.Attr("missing")
	assert.False(t, ok)

	var nilTower *Tower
	_, ok = nilTower.Attr("soh")
	assert.False(t, ok)
}
