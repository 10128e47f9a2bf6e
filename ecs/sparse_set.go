package ecs

// sparseSet stores one component kind keyed by entity index. Values are kept
// as `any`; the generic helpers in generics.go restore the static type.
type sparseSet struct {
	dense  []Entity
	values []any
	sparse []int
}

func (s *sparseSet) has(e Entity) bool {
	idx, ok := s.index(e)
	return ok && s.dense[idx] == e
}

func (s *sparseSet) index(e Entity) (int, bool) {
	id := int(e.id())
	if s == nil || id <= 0 || id >= len(s.sparse) {
		return 0, false
	}
	idx := s.sparse[id]
	if idx < 0 || idx >= len(s.dense) {
		return 0, false
	}
	return idx, true
}

func (s *sparseSet) get(e Entity) (any, bool) {
	idx, ok := s.index(e)
	if !ok || s.dense[idx] != e {
		return nil, false
	}
	return s.values[idx], true
}

// set inserts or overwrites. A stale generation occupying the slot is
// replaced.
func (s *sparseSet) set(e Entity, v any) {
	id := int(e.id())
	for id >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if idx, ok := s.index(e); ok {
		s.dense[idx] = e
		s.values[idx] = v
		return
	}
	s.dense = append(s.dense, e)
	s.values = append(s.values, v)
	s.sparse[id] = len(s.dense) - 1
}

func (s *sparseSet) remove(e Entity) bool {
	idx, ok := s.index(e)
	if !ok || s.dense[idx] != e {
		return false
	}
	last := len(s.dense) - 1
	moved := s.dense[last]

	s.dense[idx] = moved
	s.values[idx] = s.values[last]
	s.sparse[int(moved.id())] = idx

	s.dense = s.dense[:last]
	s.values[last] = nil
	s.values = s.values[:last]
	s.sparse[int(e.id())] = -1
	return true
}

func (s *sparseSet) len() int {
	if s == nil {
		return 0
	}
	return len(s.dense)
}
