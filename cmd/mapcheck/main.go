// Command mapcheck runs the map loading pipeline headless against one map
// package and prints what it produced.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/milk9111/arena/catalog"
	"github.com/milk9111/arena/config"
	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
	"github.com/milk9111/arena/logging"
	"github.com/milk9111/arena/mapload"
	"github.com/milk9111/arena/physics"
	"github.com/milk9111/arena/scene"
	"github.com/milk9111/arena/scene/scenetest"
	"github.com/milk9111/arena/state"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

func main() {
	configPath := flag.String("config", config.Path("config/arena.toml"), "path to the TOML config")
	demo := flag.String("demo", "", "write a demo map package into this directory, then check it")
	maxTicks := flag.Int("max-ticks", -1, "stall budget in ticks (default from config)")
	flag.Parse()

	dir := flag.Arg(0)
	if *demo != "" {
		dir = *demo
	}
	if dir == "" {
		fmt.Fprintln(os.Stderr, "usage: mapcheck [-config path] [-max-ticks n] <map package dir>")
		fmt.Fprintln(os.Stderr, "       mapcheck -demo <dir>")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *maxTicks >= 0 {
		cfg.Loading.MaxTicks = *maxTicks
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// decode goroutines log too
	var warnings atomic.Int64
	log = log.WithOptions(zap.Hooks(func(e zapcore.Entry) error {
		if e.Level == zapcore.WarnLevel {
			warnings.Add(1)
		}
		return nil
	}))
	defer func() { _ = log.Sync() }()

	if *demo != "" {
		if err := writeDemo(dir); err != nil {
			log.Fatal("write demo", zap.Error(err))
		}
		log.Info("demo map written", zap.String("dir", dir))
	}

	sel, err := catalog.LoadPackage(dir)
	if err != nil {
		log.Fatal("load map package", zap.Error(err))
	}

	w := ecs.NewWorld()
	if err := check(w, cfg, sel, log, os.Stdout); err != nil {
		log.Error("map failed to load", zap.String("map", sel.Name), zap.Error(err))
		os.Exit(1)
	}
	fmt.Printf("warnings: %d\n", warnings.Load())
}

func check(w *ecs.World, cfg *config.Config, sel catalog.MapSelection, log *zap.Logger, out io.Writer) error {
	tracker := state.NewTracker()
	assets := scene.NewAssetServer("", log)
	spawner := scene.NewSpawner(assets, log)
	synth := mapload.NewSynthesizer(assets.Meshes(), cfg.Physics.Density, log)
	walker := mapload.NewWalker(spawner, synth, cfg.Loading.MaxTicks, log)
	maps := mapload.NewMapSystem(spawner, walker, tracker, log)
	phys := physics.NewSystem(cfg.Physics, cfg.Game.TickRate, log)
	sched := ecs.NewScheduler(spawner, maps, phys)

	m, err := maps.Load(w, sel)
	if err != nil {
		return err
	}
	// Without a budget a broken map would spin forever.
	limit := cfg.Loading.MaxTicks + 2
	if cfg.Loading.MaxTicks == 0 {
		limit = 1000
	}
	ticks := 0
	for ; ticks < limit && !m.Loaded && m.Err == nil; ticks++ {
		assets.Wait()
		sched.Update(w)
	}
	if m.Err != nil {
		return m.Err
	}
	if !m.Loaded {
		return fmt.Errorf("map not loaded after %d ticks", ticks)
	}

	fmt.Fprintf(out, "map %q loaded from %s in %d ticks\n", m.Name, m.Path, ticks)
	for _, root := range m.Roots {
		printTree(out, w, root, 0)
	}
	fmt.Fprintln(out)
	for _, e := range mapload.PhysicsEntities(w) {
		col, _ := ecs.Get(w, e, component.ColliderComponent)
		body := "none"
		if rb, ok := ecs.Get(w, e, component.RigidBodyComponent); ok {
			body = rb.Kind.String()
		}
		fmt.Fprintf(out, "collider %-24s %-7s body=%-9s tris=%-4d shapes=%d\n",
			label(w, e), col.Kind, body, len(col.Shape.Triangles), len(phys.Shapes(e)))
	}
	fmt.Fprintf(out, "physics bodies: %d\n", phys.Len())
	return nil
}

func printTree(out io.Writer, w *ecs.World, e ecs.Entity, depth int) {
	var tags []string
	if ecs.Has(w, e, component.MapRootComponent) {
		tags = append(tags, "root")
	}
	if ecs.Has(w, e, component.NodeExtrasComponent) {
		tags = append(tags, "extras")
	}
	if ecs.Has(w, e, component.MeshRefComponent) {
		tags = append(tags, "mesh")
	}
	if ecs.Has(w, e, component.PhysicsSynthesizedComponent) {
		tags = append(tags, "physics")
	}
	suffix := ""
	if len(tags) > 0 {
		suffix = " [" + strings.Join(tags, " ") + "]"
	}
	fmt.Fprintf(out, "%s%s%s\n", strings.Repeat("  ", depth), label(w, e), suffix)
	for _, c := range ecs.ChildrenOf(w, e) {
		printTree(out, w, c, depth+1)
	}
}

func label(w *ecs.World, e ecs.Entity) string {
	if name, ok := ecs.Get(w, e, component.NameComponent); ok {
		return name.Value
	}
	return e.String()
}

func writeDemo(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b := scenetest.Arena()
	enemy := b.Node(mapload.EnemySpawnPrefix, -1, nil)
	b.Translate(enemy, 6, 1, -4)
	b.Roots(enemy)
	if err := b.SaveGLB(filepath.Join(dir, "map.glb")); err != nil {
		return err
	}

	meta := catalog.Meta{
		Name: filepath.Base(dir),
		Map:  catalog.MapSpec{Gltf: &catalog.GltfSpec{Path: "map.glb"}},
		AmbientLight: catalog.AmbientLightSpec{
			Color:      "#fff4e0",
			Brightness: 0.4,
		},
		Sky: catalog.SkySpec{Preset: "red_sunset", Size: 1000, DayLength: 600, Distance: 500, Active: true},
	}
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, catalog.MetaFile), data, 0o644)
}
