package component

import (
	"github.com/milk9111/arena/extras"
	"github.com/milk9111/arena/geometry"
)

// SceneInstance records which scene instantiation produced an entity.
type SceneInstance struct {
	ID uint64
}

var SceneInstanceComponent = NewComponent[SceneInstance]()

// MeshRef points a drawable node at its mesh asset.
type MeshRef struct {
	Handle geometry.MeshHandle
}

var MeshRefComponent = NewComponent[MeshRef]()

// NodeExtras is the metadata blob the content pipeline attached to a node.
type NodeExtras struct {
	Extras extras.Extras
}

var NodeExtrasComponent = NewComponent[NodeExtras]()
