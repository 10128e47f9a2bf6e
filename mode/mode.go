// Package mode runs the game-mode rule scripts that decide when a round in
// the arena is over.
package mode

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

//go:embed scripts/*.tengo
var scriptsFS embed.FS

var ErrUnknownMode = errors.New("mode: unknown mode")

// Snapshot is what a rule script gets to look at each tick.
type Snapshot struct {
	PlayerAlive   bool
	EnemiesAlive  int
	EnemiesKilled int
	ShotsFired    int
	AmmoLeft      int
	ElapsedTicks  int
	TickRate      int
}

// Verdict is the outcome of one evaluation.
type Verdict struct {
	Over   bool
	Reason string
}

// Rules is a compiled mode script.
type Rules struct {
	name     string
	compiled *tengo.Compiled
}

// Names lists the built-in modes.
func Names() []string {
	entries, _ := scriptsFS.ReadDir("scripts")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".tengo"))
	}
	slices.Sort(names)
	return names
}

// Builtin compiles one of the embedded modes.
func Builtin(name string) (*Rules, error) {
	src, err := scriptsFS.ReadFile(path.Join("scripts", name+".tengo"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	return Compile(name, src)
}

// Load compiles a mode script from disk. The mode is named after the file.
func Load(filename string) (*Rules, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("mode: load %s: %w", filename, err)
	}
	name := strings.TrimSuffix(path.Base(strings.ReplaceAll(filename, "\\", "/")), ".tengo")
	return Compile(name, src)
}

// Resolve returns the built-in mode called name, or loads name as a file
// when it ends in .tengo.
func Resolve(name string) (*Rules, error) {
	if strings.HasSuffix(name, ".tengo") {
		return Load(name)
	}
	return Builtin(name)
}

func Compile(name string, src []byte) (*Rules, error) {
	script := tengo.NewScript(src)
	_ = script.Add("player_alive", true)
	_ = script.Add("enemies_alive", 0)
	_ = script.Add("enemies_killed", 0)
	_ = script.Add("shots_fired", 0)
	_ = script.Add("ammo_left", 0)
	_ = script.Add("elapsed_ticks", 0)
	_ = script.Add("tick_rate", 60)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("mode: compile %s: %w", name, err)
	}
	// Globals declared by the script only exist once it has run.
	if err := compiled.Run(); err != nil {
		return nil, fmt.Errorf("mode: %s: run: %w", name, err)
	}
	if !compiled.IsDefined("over") {
		return nil, fmt.Errorf("mode: %s: script never sets over", name)
	}
	return &Rules{name: name, compiled: compiled}, nil
}

func (r *Rules) Name() string {
	return r.name
}

// Evaluate runs the script against s.
func (r *Rules) Evaluate(s Snapshot) (Verdict, error) {
	vars := []struct {
		name  string
		value any
	}{
		{"player_alive", s.PlayerAlive},
		{"enemies_alive", s.EnemiesAlive},
		{"enemies_killed", s.EnemiesKilled},
		{"shots_fired", s.ShotsFired},
		{"ammo_left", s.AmmoLeft},
		{"elapsed_ticks", s.ElapsedTicks},
		{"tick_rate", s.TickRate},
	}
	for _, v := range vars {
		if err := r.compiled.Set(v.name, v.value); err != nil {
			return Verdict{}, fmt.Errorf("mode: %s: set %s: %w", r.name, v.name, err)
		}
	}
	if err := r.compiled.Run(); err != nil {
		return Verdict{}, fmt.Errorf("mode: %s: run: %w", r.name, err)
	}
	v := Verdict{Over: r.compiled.Get("over").Bool()}
	if r.compiled.IsDefined("reason") {
		v.Reason = r.compiled.Get("reason").String()
	}
	return v, nil
}
