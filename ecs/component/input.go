package component

// Input stores per-frame input state for an entity.
type Input struct {
	MoveX float64
	MoveZ float64
	Fire  bool
}

var InputComponent = NewComponent[Input]()
