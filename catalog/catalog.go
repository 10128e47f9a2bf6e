// Package catalog discovers map packages on disk. Each package is a
// directory holding a map.yaml next to its scene file.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// MetaFile is the name of the descriptor inside every map package.
const MetaFile = "map.yaml"

var (
	ErrNoMap       = errors.New("catalog: no such map")
	ErrInvalidMeta = errors.New("catalog: invalid map descriptor")
)

type GltfSpec struct {
	Path  string `yaml:"path"`
	Scene int    `yaml:"scene"`
}

type MapSpec struct {
	Gltf *GltfSpec `yaml:"gltf"`
}

type AmbientLightSpec struct {
	Color      string  `yaml:"color"`
	Brightness float64 `yaml:"brightness"`
}

type SkySpec struct {
	Preset    string  `yaml:"preset"`
	Size      float64 `yaml:"size"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	DayLength float64 `yaml:"day_length"`
	Distance  float64 `yaml:"distance"`
	Active    bool    `yaml:"active"`
}

// Meta is the decoded map.yaml.
type Meta struct {
	Name         string           `yaml:"name"`
	Map          MapSpec          `yaml:"map"`
	AmbientLight AmbientLightSpec `yaml:"ambient_light"`
	Sky          SkySpec          `yaml:"sky"`
}

// SkyPresets lists the accepted sky.preset values.
var SkyPresets = []string{
	"blood_sky", "alien_day", "stellar_dawn", "red_sunset", "blue_dusk", "purple_dusk",
}

func (m *Meta) validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidMeta)
	}
	if m.Map.Gltf == nil || m.Map.Gltf.Path == "" {
		return fmt.Errorf("%w: missing map.gltf.path", ErrInvalidMeta)
	}
	if m.Map.Gltf.Scene < 0 {
		return fmt.Errorf("%w: negative scene index %d", ErrInvalidMeta, m.Map.Gltf.Scene)
	}
	if m.Sky.Preset != "" && !slices.Contains(SkyPresets, m.Sky.Preset) {
		return fmt.Errorf("%w: unknown sky preset %q", ErrInvalidMeta, m.Sky.Preset)
	}
	return nil
}

// MapSelection is one playable map: its name, the package directory and
// the descriptor.
type MapSelection struct {
	Name string
	Path string
	Meta Meta
}

// ScenePath is the asset path of the map scene, "<dir>/<file>#Scene<N>".
func (s MapSelection) ScenePath() string {
	file := filepath.ToSlash(filepath.Join(s.Path, s.Meta.Map.Gltf.Path))
	return fmt.Sprintf("%s#Scene%d", file, s.Meta.Map.Gltf.Scene)
}

type Catalog struct {
	dir  string
	maps map[string]MapSelection
}

// Load scans dir for map packages. Broken packages are logged and skipped.
func Load(dir string, log *zap.Logger) (*Catalog, error) {
	if log == nil {
		log = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", dir, err)
	}

	c := &Catalog{dir: dir, maps: make(map[string]MapSelection)}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		pkg := filepath.Join(dir, entry.Name())
		sel, err := LoadPackage(pkg)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			log.Warn("skipping map package", zap.String("path", pkg), zap.Error(err))
			continue
		}
		if prev, dup := c.maps[sel.Name]; dup {
			log.Warn("duplicate map name", zap.String("name", sel.Name),
				zap.String("path", pkg), zap.String("kept", prev.Path))
			continue
		}
		c.maps[sel.Name] = sel
	}
	log.Debug("catalog loaded", zap.String("dir", dir), zap.Int("maps", len(c.maps)))
	return c, nil
}

// LoadPackage reads one map package directory.
func LoadPackage(dir string) (MapSelection, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetaFile))
	if err != nil {
		return MapSelection{}, fmt.Errorf("catalog: load %s: %w", dir, err)
	}
	var meta Meta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return MapSelection{}, fmt.Errorf("catalog: unmarshal %s: %w", dir, err)
	}
	if err := meta.validate(); err != nil {
		return MapSelection{}, fmt.Errorf("catalog: %s: %w", dir, err)
	}
	return MapSelection{Name: meta.Name, Path: dir, Meta: meta}, nil
}

func (c *Catalog) Dir() string { return c.dir }

func (c *Catalog) Len() int { return len(c.maps) }

func (c *Catalog) Get(name string) (MapSelection, error) {
	sel, ok := c.maps[name]
	if !ok {
		return MapSelection{}, fmt.Errorf("%w: %q", ErrNoMap, name)
	}
	return sel, nil
}

// Names lists the map names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.maps))
	for n := range c.maps {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
