package component

// Magazine counts rounds: Count loads of Length rounds each, Used fired.
type Magazine struct {
	Length int
	Count  int
	Used   int
}

// Fire consumes one round. It returns false, leaving the magazine untouched,
// once every loaded round has been used.
func (m *Magazine) Fire() bool {
	if m.Count*m.Length <= m.Used {
		return false
	}
	m.Used++
	return true
}

// Remaining is the number of rounds left across all loads.
func (m Magazine) Remaining() int {
	if left := m.Count*m.Length - m.Used; left > 0 {
		return left
	}
	return 0
}

var MagazineComponent = NewComponent[Magazine]()

// Weapon is attached to a weapon entity parented to its carrier.
type Weapon struct {
	Name   string
	Holder uint64 // ecs.Entity of the carrier
}

var WeaponComponent = NewComponent[Weapon]()

// FireRequest is a one-shot request asking a weapon to fire.
type FireRequest struct {
	Weapon uint64 // ecs.Entity
	Target uint64 // ecs.Entity hit by the shot, 0 for none
}

var FireRequestComponent = NewComponent[FireRequest]()
