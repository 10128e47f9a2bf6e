package mapload

import (
	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
)

// ShotFired is the payload of ecs.EventShotFired and ecs.EventDryFire.
type ShotFired struct {
	Weapon    ecs.Entity
	Remaining int
}

// WeaponSystem consumes FireRequest entities and fires the targeted
// weapon's magazine.
type WeaponSystem struct{}

func NewWeaponSystem() *WeaponSystem { return &WeaponSystem{} }

func (s *WeaponSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.FireRequestComponent, func(e ecs.Entity, req component.FireRequest) {
		w.DestroyEntity(e)

		weapon := ecs.Entity(req.Weapon)
		mag, ok := ecs.Get(w, weapon, component.MagazineComponent)
		if !ok {
			return
		}
		evt := ecs.EventDryFire
		if mag.Fire() {
			evt = ecs.EventShotFired
			_ = ecs.Add(w, weapon, component.MagazineComponent, mag)
			hit(w, ecs.Entity(req.Target))
		}
		w.Events().Push(ecs.Event{Type: evt, Data: ShotFired{Weapon: weapon, Remaining: mag.Remaining()}})
	})
}

func hit(w *ecs.World, target ecs.Entity) {
	if target == 0 {
		return
	}
	h, ok := ecs.Get(w, target, component.HealthComponent)
	if !ok || !h.ApplyDamage(1) {
		return
	}
	_ = ecs.Add(w, target, component.HealthComponent, h)
}

// RequestFire queues a shot for weapon.
func RequestFire(w *ecs.World, weapon ecs.Entity) error {
	return RequestFireAt(w, weapon, 0)
}

// RequestFireAt queues a shot for weapon that lands on target.
func RequestFireAt(w *ecs.World, weapon, target ecs.Entity) error {
	e := w.CreateEntity()
	return ecs.Add(w, e, component.FireRequestComponent, component.FireRequest{
		Weapon: uint64(weapon),
		Target: uint64(target),
	})
}
