package component

// Health is carried by anything that can be shot.
type Health struct {
	Current int
	Max     int
}

func (h Health) Alive() bool { return h.Current > 0 }

// ApplyDamage lowers Current, never below zero. It returns false when there
// was nothing left to take.
func (h *Health) ApplyDamage(amount int) bool {
	if !h.Alive() || amount <= 0 {
		return false
	}
	h.Current = max(h.Current-amount, 0)
	return true
}

var HealthComponent = NewComponent[Health]()
