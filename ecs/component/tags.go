package component

// MapRoot marks the single top-level entity of a loaded map.
type MapRoot struct{}

var MapRootComponent = NewComponent[MapRoot]()

// MapObject marks every entity instantiated from the map scene, so later
// walker passes skip it.
type MapObject struct{}

var MapObjectComponent = NewComponent[MapObject]()

// MapSkyBox marks the sky box spawned alongside a map.
type MapSkyBox struct{}

var MapSkyBoxComponent = NewComponent[MapSkyBox]()

// PhysicsSynthesized marks a mesh node whose metadata has been applied.
type PhysicsSynthesized struct{}

var PhysicsSynthesizedComponent = NewComponent[PhysicsSynthesized]()

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type EnemyTag struct{}

var EnemyTagComponent = NewComponent[EnemyTag]()
