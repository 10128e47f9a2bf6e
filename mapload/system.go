package mapload

import (
	"fmt"

	"github.com/milk9111/arena/catalog"
	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/state"
	"go.uber.org/zap"
)

// ReporterMap is the progress reporter name of the map load.
const ReporterMap = "map"

// MapSystem owns the active map record. Each tick it walks the record and
// reports its progress.
type MapSystem struct {
	scenes  Scenes
	walker  *Walker
	tracker *state.Tracker
	log     *zap.Logger

	active   *MapData
	reported bool
}

func NewMapSystem(scenes Scenes, walker *Walker, tracker *state.Tracker, log *zap.Logger) *MapSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &MapSystem{scenes: scenes, walker: walker, tracker: tracker, log: log}
}

// Active returns the current map record, or nil.
func (s *MapSystem) Active() *MapData {
	return s.active
}

// Load starts loading sel. A map that is already active, loaded or not, is
// cleaned up first and replaced.
func (s *MapSystem) Load(w *ecs.World, sel catalog.MapSelection) (*MapData, error) {
	s.Unload(w)
	m, err := Spawn(w, sel, s.scenes, s.log)
	if err != nil {
		return nil, fmt.Errorf("mapload: load %s: %w", sel.Name, err)
	}
	s.active = m
	s.reported = false
	if s.tracker != nil {
		s.tracker.Register(ReporterMap)
	}
	return m, nil
}

// Unload cleans up the active map, if any.
func (s *MapSystem) Unload(w *ecs.World) {
	if s.active == nil {
		return
	}
	Cleanup(w, s.active, s.scenes, s.log)
	s.active = nil
}

func (s *MapSystem) Update(w *ecs.World) {
	if w == nil || s.active == nil {
		return
	}
	wasLoaded := s.active.Loaded
	p, err := s.walker.Walk(w, s.active)
	if err != nil {
		if !s.reported {
			s.reported = true
			if s.tracker != nil {
				s.tracker.Fail(ReporterMap, err)
			}
			w.Events().Push(ecs.Event{Type: ecs.EventLoadFailed, Data: err})
		}
		return
	}
	if s.tracker != nil {
		s.tracker.Report(ReporterMap, p)
	}
	if !wasLoaded && s.active.Loaded {
		w.Events().Push(ecs.Event{Type: ecs.EventMapLoaded, Data: s.active.Name})
	}
}
