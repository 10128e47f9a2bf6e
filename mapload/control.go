package mapload

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
)

// PlayerSpeed is in world units per second.
const PlayerSpeed = 6.0

// ControlSystem turns the player's Input into movement and fire requests.
// Shots land on the nearest living enemy.
type ControlSystem struct {
	tickRate int
}

func NewControlSystem(tickRate int) *ControlSystem {
	if tickRate <= 0 {
		tickRate = 60
	}
	return &ControlSystem{tickRate: tickRate}
}

func (s *ControlSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	for _, player := range w.Query(component.PlayerTagComponent.Kind(), component.InputComponent.Kind()) {
		in, _ := ecs.Get(w, player, component.InputComponent)
		t, ok := ecs.Get(w, player, component.TransformComponent)
		if !ok {
			t = component.IdentityTransform()
		}

		move := mgl32.Vec3{float32(in.MoveX), 0, float32(in.MoveZ)}
		if l := move.Len(); l > 1 {
			move = move.Mul(1 / l)
		}
		if move.Len() > 0 {
			t.Translation = t.Translation.Add(move.Mul(float32(PlayerSpeed / float64(s.tickRate))))
			_ = ecs.Add(w, player, component.TransformComponent, t)
		}

		if !in.Fire {
			continue
		}
		in.Fire = false
		_ = ecs.Add(w, player, component.InputComponent, in)
		weapon, armed := WeaponOf(w, player)
		if !armed {
			continue
		}
		target, _ := NearestEnemy(w, t.Translation)
		_ = RequestFireAt(w, weapon, target)
	}
}

// NearestEnemy returns the closest living enemy to pos.
func NearestEnemy(w *ecs.World, pos mgl32.Vec3) (ecs.Entity, bool) {
	var (
		best  ecs.Entity
		found bool
		dist  = float32(math.MaxFloat32)
	)
	for _, e := range w.Query(component.EnemyTagComponent.Kind(), component.TransformComponent.Kind()) {
		if h, ok := ecs.Get(w, e, component.HealthComponent); ok && !h.Alive() {
			continue
		}
		t, _ := ecs.Get(w, e, component.TransformComponent)
		if d := t.Translation.Sub(pos).Len(); d < dist {
			best, dist, found = e, d, true
		}
	}
	return best, found
}
