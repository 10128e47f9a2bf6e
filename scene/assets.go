package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/milk9111/arena/geometry"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// Handle identifies a scene asset requested from an AssetServer.
type Handle uint32

// LoadState is the lifecycle of a requested asset.
type LoadState int

const (
	NotLoaded LoadState = iota
	Loading
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "Loading"
	case Loaded:
		return "Loaded"
	case Failed:
		return "Failed"
	default:
		return "NotLoaded"
	}
}

type asset struct {
	path  string
	state LoadState
	scene *Scene
	err   error
}

type result struct {
	handle Handle
	out    *decoded
	err    error
}

// AssetServer loads glTF scenes off the tick thread. Finished loads are only
// published to callers by Poll, so everything a system observes changes
// between ticks, never during one.
type AssetServer struct {
	root   string
	log    *zap.Logger
	meshes *geometry.Store

	next   Handle
	assets map[Handle]*asset
	byPath map[string]Handle

	mu      sync.Mutex
	pending []result
	wg      sync.WaitGroup
}

func NewAssetServer(root string, log *zap.Logger) *AssetServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssetServer{
		root:   root,
		log:    log.Named("assets"),
		meshes: geometry.NewStore(),
		assets: make(map[Handle]*asset),
		byPath: make(map[string]Handle),
	}
}

// Meshes is the store every decoded primitive lands in.
func (s *AssetServer) Meshes() *geometry.Store {
	return s.meshes
}

// Load requests path ("dir/file.glb#Scene0") and returns immediately.
// Requesting the same path twice returns the same handle.
func (s *AssetServer) Load(path string) Handle {
	if h, ok := s.byPath[path]; ok {
		return h
	}
	h := s.reserve(path)

	file, idx, err := SplitLabel(path)
	if err != nil {
		s.mu.Lock()
		s.pending = append(s.pending, result{handle: h, err: err})
		s.mu.Unlock()
		return h
	}
	full := file
	if s.root != "" && !filepath.IsAbs(file) {
		full = filepath.Join(s.root, file)
	}

	s.log.Debug("loading scene", zap.String("path", path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		out, err := s.read(full, idx)
		s.mu.Lock()
		s.pending = append(s.pending, result{handle: h, out: out, err: err})
		s.mu.Unlock()
	}()
	return h
}

// LoadDocument registers an already parsed document under name. The asset is
// decoded synchronously but, like Load, only becomes visible after Poll.
func (s *AssetServer) LoadDocument(name string, doc *gltf.Document, sceneIdx int) Handle {
	if h, ok := s.byPath[name]; ok {
		return h
	}
	h := s.reserve(name)
	out, err := decodeDocument(doc, sceneIdx, s.log)
	s.mu.Lock()
	s.pending = append(s.pending, result{handle: h, out: out, err: err})
	s.mu.Unlock()
	return h
}

func (s *AssetServer) reserve(path string) Handle {
	s.next++
	h := s.next
	s.assets[h] = &asset{path: path, state: Loading}
	s.byPath[path] = h
	return h
}

func (s *AssetServer) read(path string, idx int) (*decoded, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return decodeDocument(doc, idx, s.log)
}

// Poll publishes loads that finished since the previous call. It must be
// called from the tick thread.
func (s *AssetServer) Poll() int {
	s.mu.Lock()
	done := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, r := range done {
		s.finish(r.handle, r.out, r.err)
	}
	return len(done)
}

// Wait blocks until every outstanding load finished, then polls.
func (s *AssetServer) Wait() {
	s.wg.Wait()
	s.Poll()
}

func (s *AssetServer) finish(h Handle, out *decoded, err error) {
	a, ok := s.assets[h]
	if !ok {
		// unloaded while in flight
		return
	}
	if err != nil {
		a.state = Failed
		a.err = fmt.Errorf("%w: %s: %w", ErrLoadFailed, a.path, err)
		s.log.Error("scene load failed", zap.String("path", a.path), zap.Error(err))
		return
	}
	sc := out.scene
	sc.Meshes = make([]geometry.MeshHandle, len(out.meshes))
	for i, m := range out.meshes {
		sc.Meshes[i] = s.meshes.Add(m)
	}
	a.scene = sc
	a.state = Loaded
	s.log.Debug("scene loaded",
		zap.String("path", a.path),
		zap.Int("nodes", len(sc.Nodes)),
		zap.Int("meshes", len(sc.Meshes)),
	)
}

func (s *AssetServer) State(h Handle) LoadState {
	a, ok := s.assets[h]
	if !ok {
		return NotLoaded
	}
	return a.state
}

func (s *AssetServer) Err(h Handle) error {
	a, ok := s.assets[h]
	if !ok {
		return ErrUnknownHandle
	}
	return a.err
}

// Scene returns the decoded scene, ErrNotReady while loading or the load
// error once failed.
func (s *AssetServer) Scene(h Handle) (*Scene, error) {
	a, ok := s.assets[h]
	if !ok {
		return nil, ErrUnknownHandle
	}
	switch a.state {
	case Loaded:
		return a.scene, nil
	case Failed:
		return nil, a.err
	default:
		return nil, ErrNotReady
	}
}

// Unload forgets h and frees its meshes. A load still in flight is dropped
// when it lands.
func (s *AssetServer) Unload(h Handle) {
	a, ok := s.assets[h]
	if !ok {
		return
	}
	if a.scene != nil {
		for _, m := range a.scene.Meshes {
			s.meshes.Remove(m)
		}
	}
	delete(s.assets, h)
	if s.byPath[a.path] == h {
		delete(s.byPath, a.path)
	}
}

// IsTransient reports whether err only means "try again later".
func IsTransient(err error) bool {
	return errors.Is(err, ErrNotReady)
}
