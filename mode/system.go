package mode

import (
	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
	"github.com/milk9111/arena/mapload"
	"github.com/milk9111/arena/state"
	"go.uber.org/zap"
)

// System evaluates the active rules every tick of Arena(Playing) and ends
// the round when they say so.
type System struct {
	rules    *Rules
	machine  *state.Machine
	tickRate int
	log      *zap.Logger

	shots   int
	ticks   int
	verdict Verdict
	failed  bool
}

func NewSystem(rules *Rules, machine *state.Machine, tickRate int, log *zap.Logger) *System {
	if log == nil {
		log = zap.NewNop()
	}
	s := &System{rules: rules, machine: machine, tickRate: tickRate, log: log}
	if machine != nil {
		machine.OnEnter(state.ArenaPlaying, func(_, _ state.State) { s.Reset() })
	}
	return s
}

// SetRules swaps the rules for the next round.
func (s *System) SetRules(r *Rules) {
	s.rules = r
	s.Reset()
}

func (s *System) Rules() *Rules { return s.rules }

// Verdict is the outcome of the last evaluation.
func (s *System) Verdict() Verdict { return s.verdict }

func (s *System) Reset() {
	s.shots = 0
	s.ticks = 0
	s.verdict = Verdict{}
	s.failed = false
}

func (s *System) Update(w *ecs.World) {
	if w == nil || s.rules == nil || s.machine == nil || s.failed {
		return
	}
	if s.machine.Current() != state.ArenaPlaying {
		return
	}
	for _, evt := range w.Events().Peek() {
		if evt.Type == ecs.EventShotFired {
			s.shots++
		}
	}
	s.ticks++

	snap := Observe(w)
	snap.ShotsFired = s.shots
	snap.ElapsedTicks = s.ticks
	snap.TickRate = s.tickRate

	v, err := s.rules.Evaluate(snap)
	if err != nil {
		// A broken script would otherwise log every tick.
		s.failed = true
		s.log.Error("mode rules failed", zap.String("mode", s.rules.Name()), zap.Error(err))
		return
	}
	s.verdict = v
	if !v.Over {
		return
	}
	s.log.Info("round over",
		zap.String("mode", s.rules.Name()),
		zap.String("reason", v.Reason),
		zap.Int("shots", s.shots),
		zap.Int("ticks", s.ticks),
	)
	if err := s.machine.Transition(state.ArenaOver); err != nil {
		s.log.Error("end round", zap.Error(err))
	}
}

// Observe reads the world-derived part of a snapshot.
func Observe(w *ecs.World) Snapshot {
	var snap Snapshot
	if player, ok := w.First(component.PlayerTagComponent.Kind()); ok {
		h, hasHealth := ecs.Get(w, player, component.HealthComponent)
		snap.PlayerAlive = !hasHealth || h.Alive()
		if weapon, armed := mapload.WeaponOf(w, player); armed {
			if mag, ok := ecs.Get(w, weapon, component.MagazineComponent); ok {
				snap.AmmoLeft = mag.Remaining()
			}
		}
	}
	ecs.ForEach(w, component.EnemyTagComponent, func(e ecs.Entity, _ component.EnemyTag) {
		h, ok := ecs.Get(w, e, component.HealthComponent)
		if !ok || h.Alive() {
			snap.EnemiesAlive++
			return
		}
		snap.EnemiesKilled++
	})
	return snap
}
