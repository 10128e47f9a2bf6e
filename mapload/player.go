package mapload

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/arena/config"
	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
	"github.com/milk9111/arena/state"
	"go.uber.org/zap"
)

const (
	// PlayerSpawnNode is the reserved node name marking the player start.
	PlayerSpawnNode = "PlayerSpawn"
	PlayerName      = "Player"
	// EnemySpawnPrefix marks nodes where an enemy starts. Any suffix is
	// allowed so a map can hold several.
	EnemySpawnPrefix = "EnemySpawn"
	EnemyHealth      = 3

	ReporterPlayer = "player"
	ReporterWeapon = "weapon"
)

// PlayerSpawnSystem spawns the player at the map's PlayerSpawn node.
type PlayerSpawnSystem struct {
	tracker *state.Tracker
	log     *zap.Logger
}

func NewPlayerSpawnSystem(tracker *state.Tracker, log *zap.Logger) *PlayerSpawnSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlayerSpawnSystem{tracker: tracker, log: log}
}

func (s *PlayerSpawnSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	s.report(s.spawn(w))
}

func (s *PlayerSpawnSystem) spawn(w *ecs.World) state.Progress {
	if _, ok := w.First(component.PlayerTagComponent.Kind()); ok {
		return resolved
	}
	for _, e := range w.Query(component.MapObjectComponent.Kind(), component.NameComponent.Kind()) {
		name, _ := ecs.Get(w, e, component.NameComponent)
		if name.Value != PlayerSpawnNode {
			continue
		}
		t, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			t = component.IdentityTransform()
		}
		player := w.CreateEntity()
		_ = ecs.Add(w, player, component.NameComponent, component.Name{Value: PlayerName})
		_ = ecs.Add(w, player, component.PlayerTagComponent, component.PlayerTag{})
		_ = ecs.Add(w, player, component.TransformComponent, t)
		s.log.Debug("player spawned", zap.Stringer("entity", player), zap.Stringer("at", vec3(t.Translation)))
		return resolved
	}
	return pending
}

func (s *PlayerSpawnSystem) report(p state.Progress) {
	if s.tracker != nil {
		s.tracker.Report(ReporterPlayer, p)
	}
}

// WeaponSpawnSystem arms the player with a weapon and a full magazine.
type WeaponSpawnSystem struct {
	cfg     config.WeaponConfig
	tracker *state.Tracker
	log     *zap.Logger
}

func NewWeaponSpawnSystem(cfg config.WeaponConfig, tracker *state.Tracker, log *zap.Logger) *WeaponSpawnSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &WeaponSpawnSystem{cfg: cfg, tracker: tracker, log: log}
}

func (s *WeaponSpawnSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	p := pending
	if player, ok := w.First(component.PlayerTagComponent.Kind()); ok {
		if _, armed := WeaponOf(w, player); armed {
			p = resolved
		} else if s.arm(w, player) {
			p = resolved
		}
	}
	if s.tracker != nil {
		s.tracker.Report(ReporterWeapon, p)
	}
}

func (s *WeaponSpawnSystem) arm(w *ecs.World, player ecs.Entity) bool {
	weapon := w.CreateEntity()
	_ = ecs.Add(w, weapon, component.NameComponent, component.Name{Value: s.cfg.Name})
	_ = ecs.Add(w, weapon, component.WeaponComponent, component.Weapon{Name: s.cfg.Name, Holder: uint64(player)})
	_ = ecs.Add(w, weapon, component.MagazineComponent, component.Magazine{
		Length: s.cfg.MagazineLength,
		Count:  s.cfg.MagazineCount,
	})
	if err := ecs.SetParent(w, weapon, player); err != nil {
		s.log.Error("attach weapon", zap.Error(err))
		w.DestroyEntity(weapon)
		return false
	}
	s.log.Debug("weapon spawned", zap.String("weapon", s.cfg.Name), zap.Stringer("holder", player))
	return true
}

// WeaponOf returns the first weapon carried by holder.
func WeaponOf(w *ecs.World, holder ecs.Entity) (ecs.Entity, bool) {
	for _, c := range ecs.ChildrenOf(w, holder) {
		if ecs.Has(w, c, component.WeaponComponent) {
			return c, true
		}
	}
	return 0, false
}

// EnemySpawnSystem places one enemy on every EnemySpawn node of the map.
// Maps without such nodes simply have no enemies.
type EnemySpawnSystem struct {
	log *zap.Logger
}

func NewEnemySpawnSystem(log *zap.Logger) *EnemySpawnSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &EnemySpawnSystem{log: log}
}

func (s *EnemySpawnSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	if _, ok := w.First(component.MapRootComponent.Kind()); !ok {
		return
	}
	if _, ok := w.First(component.EnemyTagComponent.Kind()); ok {
		return
	}
	for _, e := range w.Query(component.MapObjectComponent.Kind(), component.NameComponent.Kind()) {
		name, _ := ecs.Get(w, e, component.NameComponent)
		if !strings.HasPrefix(name.Value, EnemySpawnPrefix) {
			continue
		}
		t, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			t = component.IdentityTransform()
		}
		enemy := w.CreateEntity()
		_ = ecs.Add(w, enemy, component.NameComponent, component.Name{Value: "Enemy(" + name.Value + ")"})
		_ = ecs.Add(w, enemy, component.EnemyTagComponent, component.EnemyTag{})
		_ = ecs.Add(w, enemy, component.HealthComponent, component.Health{Current: EnemyHealth, Max: EnemyHealth})
		_ = ecs.Add(w, enemy, component.TransformComponent, t)
		s.log.Debug("enemy spawned", zap.String("spawn", name.Value), zap.Stringer("at", vec3(t.Translation)))
	}
}

// CleanupPlayer despawns every player along with what it carries, and the
// enemies it was fighting.
func CleanupPlayer(w *ecs.World) int {
	removed := 0
	for _, p := range w.Query(component.PlayerTagComponent.Kind()) {
		removed += ecs.DespawnRecursive(w, p)
	}
	for _, e := range w.Query(component.EnemyTagComponent.Kind()) {
		removed += ecs.DespawnRecursive(w, e)
	}
	return removed
}

// vec3 formats a translation for debug logs.
type vec3 mgl32.Vec3

func (v vec3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v[0], v[1], v[2])
}
