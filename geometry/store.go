package geometry

// MeshHandle identifies a mesh inside a Store.
type MeshHandle uint32

// Store owns loaded meshes. Handles are never reused.
type Store struct {
	next   MeshHandle
	meshes map[MeshHandle]*Mesh
}

func NewStore() *Store {
	return &Store{meshes: make(map[MeshHandle]*Mesh)}
}

func (s *Store) Add(m *Mesh) MeshHandle {
	if s.meshes == nil {
		s.meshes = make(map[MeshHandle]*Mesh)
	}
	s.next++
	s.meshes[s.next] = m
	return s.next
}

func (s *Store) Get(h MeshHandle) (*Mesh, bool) {
	if s == nil {
		return nil, false
	}
	m, ok := s.meshes[h]
	return m, ok
}

func (s *Store) Remove(h MeshHandle) {
	if s == nil {
		return
	}
	delete(s.meshes, h)
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.meshes)
}
