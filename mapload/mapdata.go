package mapload

import (
	"fmt"
	"image/color"

	"github.com/milk9111/arena/catalog"
	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
	"github.com/milk9111/arena/extras"
	"github.com/milk9111/arena/scene"
	"go.uber.org/zap"
)

// SkyBoxName is the display name of the sky box entity.
const SkyBoxName = "Arena Map SkyBox"

// Scenes is the scene service a map load drives. *scene.Spawner implements
// it.
type Scenes interface {
	Load(path string) scene.Handle
	Unload(h scene.Handle)
	Spawn(h scene.Handle) scene.InstanceID
	InstanceEntities(id scene.InstanceID) ([]ecs.Entity, error)
	Despawn(id scene.InstanceID)
}

// MapData is the record of one map load, from request to cleanup.
type MapData struct {
	Name     string
	Path     string
	Scene    scene.Handle
	Instance scene.InstanceID
	// Loaded flips to true once, on the first pass that resolves the whole
	// graph.
	Loaded bool
	// Roots are the map roots this record owns; cleanup starts from them.
	Roots  []ecs.Entity
	SkyBox ecs.Entity
	// Ticks counts walker passes that ended unresolved.
	Ticks int
	// Err is the load failure, if any. It is sticky.
	Err error
}

// RootName is the display name given to the map root.
func (m *MapData) RootName() string {
	return fmt.Sprintf("Arena Map(%s)", m.Name)
}

// Spawn requests the scene of sel and spawns the sky box the map describes.
func Spawn(w *ecs.World, sel catalog.MapSelection, scenes Scenes, log *zap.Logger) (*MapData, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if sel.Meta.Map.Gltf == nil {
		return nil, fmt.Errorf("mapload: map %q has no scene", sel.Name)
	}
	path := sel.ScenePath()
	log.Debug("spawning map",
		zap.String("name", sel.Name),
		zap.String("path", sel.Path),
		zap.String("scene", path),
	)

	h := scenes.Load(path)
	m := &MapData{
		Name:     sel.Name,
		Path:     path,
		Scene:    h,
		Instance: scenes.Spawn(h),
	}

	sky, err := spawnSkyBox(w, sel.Meta, log)
	if err != nil {
		return nil, fmt.Errorf("mapload: spawn sky box: %w", err)
	}
	m.SkyBox = sky
	return m, nil
}

func spawnSkyBox(w *ecs.World, meta catalog.Meta, log *zap.Logger) (ecs.Entity, error) {
	light := component.AmbientLight{
		Color:      color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Brightness: meta.AmbientLight.Brightness,
	}
	if meta.AmbientLight.Color != "" {
		c, err := extras.ParseColor(meta.AmbientLight.Color)
		if err != nil {
			log.Warn("bad ambient light colour", zap.String("map", meta.Name),
				zap.String("value", meta.AmbientLight.Color), zap.Error(err))
		} else {
			light.Color = c
		}
	}

	e := w.CreateEntity()
	if err := ecs.Add(w, e, component.NameComponent, component.Name{Value: SkyBoxName}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.MapSkyBoxComponent, component.MapSkyBox{}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.SkyComponent, component.Sky{
		Preset:    meta.Sky.Preset,
		Size:      meta.Sky.Size,
		Latitude:  meta.Sky.Latitude,
		Longitude: meta.Sky.Longitude,
		DayLength: meta.Sky.DayLength,
		Distance:  meta.Sky.Distance,
		Active:    meta.Sky.Active,
	}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.AmbientLightComponent, light); err != nil {
		return 0, err
	}
	return e, nil
}

// Cleanup tears a map down: every owned root and the sky box are despawned
// with their descendants, instance entities that never got attached to a
// root go too, and the scene is released.
func Cleanup(w *ecs.World, m *MapData, scenes Scenes, log *zap.Logger) int {
	if m == nil {
		return 0
	}
	if log == nil {
		log = zap.NewNop()
	}

	removed := 0
	for _, root := range m.Roots {
		removed += ecs.DespawnRecursive(w, root)
	}
	m.Roots = nil
	if m.SkyBox.Valid() {
		removed += ecs.DespawnRecursive(w, m.SkyBox)
		m.SkyBox = 0
	}
	if ents, err := scenes.InstanceEntities(m.Instance); err == nil {
		for _, e := range ents {
			if w.IsAlive(e) {
				removed += ecs.DespawnRecursive(w, e)
			}
		}
	}
	scenes.Despawn(m.Instance)
	scenes.Unload(m.Scene)

	log.Debug("map cleaned up", zap.String("name", m.Name), zap.Int("entities", removed))
	return removed
}
