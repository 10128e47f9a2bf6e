package ecs

// entityStore tracks entity generations and free ids. Index 0 is reserved so
// the zero Entity is never alive.
type entityStore struct {
	gen   []generation
	alive []bool
	free  []entityID
	count int
}

func (s *entityStore) create() Entity {
	if len(s.gen) == 0 {
		s.gen = append(s.gen, 0)
		s.alive = append(s.alive, false)
	}
	var id entityID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		id = entityID(len(s.gen))
		s.gen = append(s.gen, 0)
		s.alive = append(s.alive, false)
	}
	s.alive[id] = true
	s.count++
	return makeEntity(id, s.gen[id])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	id := e.id()
	s.alive[id] = false
	s.gen[id]++
	s.free = append(s.free, id)
	s.count--
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	id := e.id()
	if id == 0 || int(id) >= len(s.gen) {
		return false
	}
	return s.alive[id] && s.gen[id] == e.generation()
}

func (s *entityStore) list() []Entity {
	out := make([]Entity, 0, s.count)
	for id := 1; id < len(s.gen); id++ {
		if s.alive[id] {
			out = append(out, makeEntity(entityID(id), s.gen[id]))
		}
	}
	return out
}
