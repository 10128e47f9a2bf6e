package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/arena/catalog"
	"github.com/milk9111/arena/config"
	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
	"github.com/milk9111/arena/mapload"
	"github.com/milk9111/arena/mode"
	"github.com/milk9111/arena/physics"
	"github.com/milk9111/arena/scene"
	"github.com/milk9111/arena/state"
	"go.uber.org/zap"
)

const reporterCatalog = "catalog"

type Game struct {
	cfg *config.Config
	log *zap.Logger

	world   *ecs.World
	machine *state.Machine
	tracker *state.Tracker
	sched   *ecs.Scheduler

	spawner *scene.Spawner
	maps    *mapload.MapSystem
	physics *physics.System
	rules   *mode.System

	catalog *catalog.Catalog
	watcher *catalog.Watcher

	cursor   int
	modes    []string
	modeIdx  int
	selected catalog.MapSelection
	lastErr  error
	skipped  bool
	frames   int
}

func NewGame(cfg *config.Config, log *zap.Logger) (*Game, error) {
	rules, err := mode.Resolve(cfg.Game.DefaultMode)
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	machine := state.NewMachine(log)
	tracker := state.NewTracker()

	assets := scene.NewAssetServer("", log)
	spawner := scene.NewSpawner(assets, log)
	synth := mapload.NewSynthesizer(assets.Meshes(), cfg.Physics.Density, log)
	walker := mapload.NewWalker(spawner, synth, cfg.Loading.MaxTicks, log)
	maps := mapload.NewMapSystem(spawner, walker, tracker, log)
	phys := physics.NewSystem(cfg.Physics, cfg.Game.TickRate, log)
	modeSys := mode.NewSystem(rules, machine, cfg.Game.TickRate, log)

	g := &Game{
		cfg:     cfg,
		log:     log,
		world:   world,
		machine: machine,
		tracker: tracker,
		spawner: spawner,
		maps:    maps,
		physics: phys,
		rules:   modeSys,
		modes:   mode.Names(),
	}
	g.modeIdx = slices.Index(g.modes, cfg.Game.DefaultMode)
	if g.modeIdx < 0 {
		g.modes = append(g.modes, cfg.Game.DefaultMode)
		g.modeIdx = len(g.modes) - 1
	}

	g.sched = ecs.NewScheduler(
		NewInputSystem(),
		spawner,
		maps,
		mapload.NewPlayerSpawnSystem(tracker, log),
		mapload.NewWeaponSpawnSystem(cfg.Weapon, tracker, log),
		mapload.NewEnemySpawnSystem(log),
		mapload.NewControlSystem(cfg.Game.TickRate),
		mapload.NewWeaponSystem(),
		phys,
		modeSys,
	)

	machine.OnEnter(state.MenuLoading, func(_, _ state.State) { g.loadCatalog() })
	machine.OnEnter(state.MenuSelect, func(from, _ state.State) {
		if from.InArena() {
			g.teardownArena()
		}
	})
	machine.OnEnter(state.ArenaLoading, func(_, _ state.State) { g.loadArena() })

	if w, err := catalog.NewWatcher(cfg.Game.CatalogDir); err != nil {
		log.Warn("map catalog not watched", zap.String("dir", cfg.Game.CatalogDir), zap.Error(err))
	} else {
		g.watcher = w
	}

	if err := machine.Transition(state.MenuLoading); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	g.spawner.Assets().Wait()
}

func (g *Game) loadCatalog() {
	g.tracker.Reset()
	g.tracker.Register(reporterCatalog)
	cat, err := catalog.Load(g.cfg.Game.CatalogDir, g.log)
	if err != nil {
		g.tracker.Fail(reporterCatalog, err)
		return
	}
	g.catalog = cat
	g.cursor = 0
	g.tracker.Report(reporterCatalog, state.Progress{Done: 1, Total: 1})
}

func (g *Game) loadArena() {
	g.tracker.Reset()
	for _, name := range []string{mapload.ReporterMap, mapload.ReporterPlayer, mapload.ReporterWeapon} {
		g.tracker.Register(name)
	}
	g.lastErr = nil
	if _, err := g.maps.Load(g.world, g.selected); err != nil {
		g.tracker.Fail(mapload.ReporterMap, err)
	}
}

func (g *Game) teardownArena() {
	removed := mapload.CleanupPlayer(g.world)
	g.maps.Unload(g.world)
	g.physics.Reset()
	g.log.Debug("arena torn down", zap.Int("entities", removed), zap.Int("remaining", len(g.world.Entities())))
}

func (g *Game) Update() error {
	g.frames++

	switch cur := g.machine.Current(); {
	case cur == state.MenuSelect:
		g.pollCatalog()
		g.updateSelect(readMenuKeys())
	case cur == state.MenuConfigure:
		g.updateConfigure(readMenuKeys())
	case cur.InArena():
		g.sched.Update(g.world)
		if cur == state.ArenaOver && readMenuKeys().confirm {
			if err := g.machine.Transition(state.MenuSelect); err != nil {
				return err
			}
		}
	}

	if _, err := g.machine.Evaluate(g.tracker); err != nil {
		var failed *state.LoadFailedError
		if errors.As(err, &failed) && failed.State == state.ArenaLoading {
			g.lastErr = err
			return nil
		}
		return err
	}
	return nil
}

// pollCatalog reloads the catalog when a map descriptor changed on disk.
func (g *Game) pollCatalog() {
	if g.watcher == nil {
		return
	}
	changed := false
drain:
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				break drain
			}
			g.log.Debug("map descriptor changed", zap.String("path", path))
			changed = true
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn("catalog watcher", zap.Error(err))
			}
		default:
			break drain
		}
	}
	if !changed {
		return
	}
	cat, err := catalog.Load(g.cfg.Game.CatalogDir, g.log)
	if err != nil {
		g.log.Warn("reload catalog", zap.Error(err))
		return
	}
	g.catalog = cat
	g.cursor = min(g.cursor, max(cat.Len()-1, 0))
	g.log.Info("catalog reloaded", zap.Int("maps", cat.Len()))
}

func (g *Game) updateSelect(k menuKeys) {
	names := g.catalog.Names()
	if g.cfg.Game.SkipMenu && !g.skipped {
		g.skipped = true
		sel, err := g.catalog.Get(g.cfg.Game.DefaultMap)
		if err != nil {
			g.log.Warn("default map unavailable", zap.Error(err))
			return
		}
		g.startArena(sel)
		return
	}
	if len(names) == 0 {
		return
	}
	switch {
	case k.up:
		g.cursor = (g.cursor + len(names) - 1) % len(names)
	case k.down:
		g.cursor = (g.cursor + 1) % len(names)
	case k.confirm:
		sel, err := g.catalog.Get(names[g.cursor])
		if err != nil {
			g.log.Warn("select map", zap.Error(err))
			return
		}
		g.selected = sel
		if err := g.machine.Transition(state.MenuConfigure); err != nil {
			g.log.Error("configure", zap.Error(err))
		}
	}
}

func (g *Game) updateConfigure(k menuKeys) {
	switch {
	case k.left:
		g.modeIdx = (g.modeIdx + len(g.modes) - 1) % len(g.modes)
	case k.right:
		g.modeIdx = (g.modeIdx + 1) % len(g.modes)
	case k.back:
		if err := g.machine.Transition(state.MenuSelect); err != nil {
			g.log.Error("back to select", zap.Error(err))
		}
	case k.confirm:
		rules, err := mode.Resolve(g.modes[g.modeIdx])
		if err != nil {
			g.log.Error("load mode", zap.String("mode", g.modes[g.modeIdx]), zap.Error(err))
			return
		}
		g.rules.SetRules(rules)
		if err := g.machine.Transition(state.ArenaLoading); err != nil {
			g.log.Error("start arena", zap.Error(err))
		}
	}
}

func (g *Game) startArena(sel catalog.MapSelection) {
	g.selected = sel
	for _, s := range []state.State{state.MenuConfigure, state.ArenaLoading} {
		if err := g.machine.Transition(s); err != nil {
			g.log.Error("start arena", zap.Error(err))
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	cur := g.machine.Current()
	switch {
	case cur == state.MenuSelect:
		g.drawSelect(screen)
	case cur == state.MenuConfigure:
		g.drawConfigure(screen)
	case cur.InArena():
		g.drawArena(screen)
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s    FPS: %.2f", cur, ebiten.ActualFPS()), 8, g.cfg.Game.ScreenHeight-20)
}

func (g *Game) drawSelect(screen *ebiten.Image) {
	var b strings.Builder
	b.WriteString("Select a map (up/down, enter)\n\n")
	for i, name := range g.catalog.Names() {
		marker := "  "
		if i == g.cursor {
			marker = "> "
		}
		b.WriteString(marker + name + "\n")
	}
	if g.catalog.Len() == 0 {
		fmt.Fprintf(&b, "no maps in %s\n", g.catalog.Dir())
	}
	if g.lastErr != nil {
		fmt.Fprintf(&b, "\nlast load failed: %v\n", g.lastErr)
	}
	ebitenutil.DebugPrintAt(screen, b.String(), 16, 16)
}

func (g *Game) drawConfigure(screen *ebiten.Image) {
	text := fmt.Sprintf("Map: %s\nMode: < %s >\n\nenter to start, escape to go back",
		g.selected.Name, g.modes[g.modeIdx])
	ebitenutil.DebugPrintAt(screen, text, 16, 16)
}

func (g *Game) drawArena(screen *ebiten.Image) {
	zoom := g.cfg.Physics.Scale
	cam := physics.Camera{Zoom: zoom}
	if player, ok := g.world.First(component.PlayerTagComponent.Kind()); ok {
		t, _ := ecs.Get(g.world, player, component.TransformComponent)
		cam.X = float64(t.Translation.X()) - float64(g.cfg.Game.ScreenWidth)/2/zoom
		cam.Y = float64(t.Translation.Z()) - float64(g.cfg.Game.ScreenHeight)/2/zoom
	}
	g.physics.DrawDebug(g.world, screen, cam)
	g.physics.DrawStats(screen, 8, 8)

	if cur := g.machine.Current(); cur == state.ArenaLoading {
		ebitenutil.DebugPrintAt(screen, "Loading "+g.selected.Name+" "+g.tracker.Total().String(), 8, 48)
		return
	}
	snap := mode.Observe(g.world)
	status := fmt.Sprintf("%s  ammo %d  enemies %d", g.rules.Rules().Name(), snap.AmmoLeft, snap.EnemiesAlive)
	if v := g.rules.Verdict(); v.Over {
		status += fmt.Sprintf("\nRound over: %s (enter for menu)", v.Reason)
	}
	ebitenutil.DebugPrintAt(screen, status, 8, 48)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Game.ScreenWidth, g.cfg.Game.ScreenHeight
}
