package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMagazineFire(t *testing.T) {
	m := Magazine{Count: 2, Length: 5}
	for i := 1; i <= 10; i++ {
		assert.True(t, m.Fire(), "shot %d", i)
		assert.Equal(t, i, m.Used)
	}
	assert.False(t, m.Fire())
	assert.Equal(t, 10, m.Used)
	assert.Zero(t, m.Remaining())
}

func TestMagazineEmpty(t *testing.T) {
	tests := []struct {
		name string
		mag  Magazine
	}{
		{"no_loads", Magazine{Count: 0, Length: 30}},
		{"zero_length", Magazine{Count: 3, Length: 0}},
		{"overdrawn", Magazine{Count: 1, Length: 1, Used: 5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			used := tc.mag.Used
			assert.False(t, tc.mag.Fire())
			assert.Equal(t, used, tc.mag.Used)
		})
	}
}

func TestTransformMatrixDefaults(t *testing.T) {
	var zero Transform
	assert.Equal(t, IdentityTransform().Matrix(), zero.Matrix())
}

func TestHealthApplyDamage(t *testing.T) {
	h := Health{Current: 2, Max: 3}
	assert.True(t, h.ApplyDamage(5))
	assert.Equal(t, 0, h.Current)
	assert.False(t, h.Alive())
	assert.False(t, h.ApplyDamage(1), "already down")
	assert.False(t, (&Health{Current: 1}).ApplyDamage(0))
}
