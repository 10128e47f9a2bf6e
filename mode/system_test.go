package mode

import (
	"testing"

	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
	"github.com/milk9111/arena/mapload"
	"github.com/milk9111/arena/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func playing(t *testing.T) *state.Machine {
	t.Helper()
	m := state.NewMachine(zaptest.NewLogger(t))
	for _, s := range []state.State{
		state.MenuLoading, state.MenuSelect, state.MenuConfigure, state.ArenaLoading, state.ArenaPlaying,
	} {
		require.NoError(t, m.Transition(s))
	}
	return m
}

// armedPlayer creates a player carrying a weapon and one enemy.
func armedPlayer(t *testing.T, w *ecs.World, rounds int) (weapon, enemy ecs.Entity) {
	t.Helper()
	player := w.CreateEntity()
	require.NoError(t, ecs.Add(w, player, component.PlayerTagComponent, component.PlayerTag{}))
	weapon = w.CreateEntity()
	require.NoError(t, ecs.Add(w, weapon, component.WeaponComponent, component.Weapon{Name: "Pistol", Holder: uint64(player)}))
	require.NoError(t, ecs.Add(w, weapon, component.MagazineComponent, component.Magazine{Length: rounds, Count: 1}))
	require.NoError(t, ecs.SetParent(w, weapon, player))
	enemy = w.CreateEntity()
	require.NoError(t, ecs.Add(w, enemy, component.EnemyTagComponent, component.EnemyTag{}))
	require.NoError(t, ecs.Add(w, enemy, component.HealthComponent, component.Health{Current: 2, Max: 2}))
	return weapon, enemy
}

func TestObserve(t *testing.T) {
	w := ecs.NewWorld()
	assert.Equal(t, Snapshot{}, Observe(w))

	_, enemy := armedPlayer(t, w, 6)
	assert.Equal(t, Snapshot{PlayerAlive: true, EnemiesAlive: 1, AmmoLeft: 6}, Observe(w))

	require.NoError(t, ecs.Add(w, enemy, component.HealthComponent, component.Health{Max: 2}))
	assert.Equal(t, Snapshot{PlayerAlive: true, EnemiesKilled: 1, AmmoLeft: 6}, Observe(w))
}

func TestSystemEndsRound(t *testing.T) {
	rules, err := Builtin("one_enemy")
	require.NoError(t, err)
	machine := playing(t)
	w := ecs.NewWorld()
	weapon, enemy := armedPlayer(t, w, 5)

	sys := NewSystem(rules, machine, 60, zaptest.NewLogger(t))
	sched := ecs.NewScheduler(mapload.NewWeaponSystem(), sys)

	sched.Update(w)
	assert.Equal(t, state.ArenaPlaying, machine.Current())

	for i := 0; i < 2 && machine.Current() == state.ArenaPlaying; i++ {
		require.NoError(t, mapload.RequestFireAt(w, weapon, enemy))
		sched.Update(w)
	}
	assert.Equal(t, state.ArenaOver, machine.Current())
	assert.Equal(t, Verdict{Over: true, Reason: "enemy down"}, sys.Verdict())
	assert.Equal(t, 2, sys.shots)

	// nothing runs outside Arena(Playing)
	sched.Update(w)
	assert.Equal(t, 3, sys.ticks)
}

func TestSystemResetsOnNewRound(t *testing.T) {
	rules, err := Builtin("survival")
	require.NoError(t, err)
	machine := playing(t)
	w := ecs.NewWorld()
	armedPlayer(t, w, 1)
	sys := NewSystem(rules, machine, 1, nil)

	for i := 0; i < 50; i++ {
		sys.Update(w)
	}
	assert.Equal(t, 50, sys.ticks)

	require.NoError(t, machine.Transition(state.ArenaOver))
	for _, s := range []state.State{state.MenuSelect, state.MenuConfigure, state.ArenaLoading, state.ArenaPlaying} {
		require.NoError(t, machine.Transition(s))
	}
	assert.Equal(t, 0, sys.ticks)
	assert.Equal(t, Verdict{}, sys.Verdict())
}

func TestSystemScriptErrorLoggedOnce(t *testing.T) {
	rules, err := Compile("bad", []byte(`over := 10 / (elapsed_ticks - 1) > 0`))
	require.NoError(t, err)
	core, logs := observer.New(zap.ErrorLevel)
	machine := playing(t)
	sys := NewSystem(rules, machine, 60, zap.New(core))
	w := ecs.NewWorld()

	sys.Update(w)
	sys.Update(w)
	assert.Equal(t, 1, logs.FilterMessage("mode rules failed").Len())
	assert.Equal(t, state.ArenaPlaying, machine.Current())
}
