package mapload

import "errors"

var (
	// ErrDuplicateRoot means a second parentless entity showed up for a load
	// that already has a root. The load is abandoned.
	ErrDuplicateRoot = errors.New("mapload: duplicate map root")
	// ErrLoadStalled means a load stayed unresolved for longer than the
	// configured tick budget.
	ErrLoadStalled = errors.New("mapload: load stalled")
	ErrNoActiveMap = errors.New("mapload: no active map")
)
