package scene

import "errors"

var (
	// ErrNotReady means the asset or instance is still loading; poll again
	// next tick.
	ErrNotReady = errors.New("scene: asset not ready")
	// ErrLoadFailed means the asset will never load.
	ErrLoadFailed = errors.New("scene: asset failed to load")

	ErrUnknownHandle   = errors.New("scene: unknown handle")
	ErrUnknownInstance = errors.New("scene: unknown instance")
	ErrNoScene         = errors.New("scene: document has no such scene")
	// ErrNodeGraph means the nodes of a scene do not form disjoint trees.
	ErrNodeGraph = errors.New("scene: node graph is not a tree")
)
