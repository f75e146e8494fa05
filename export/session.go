package export

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gorustyt/meshexport/common/logger"
	"github.com/gorustyt/meshexport/config"
	"github.com/gorustyt/meshexport/geometry"
	"github.com/gorustyt/meshexport/objio"
	"github.com/gorustyt/meshexport/pointcache"
	"github.com/gorustyt/meshexport/weld"
)

const ManifestName = "session.manifest.pb"

type objectTrack struct {
	cache   *pointcache.File
	mddPath string
	lastObj string
	frames  int
}

// Session exports every matching object after each frame. Each object gets
// a welded OBJ per frame and one point cache, keyed by object name, that
// grows by a frame every call and is rewritten in full. A Session lives from
// enabling frame export to disabling it.
type Session struct {
	cfg config.ExportConfig
	log *zap.Logger

	mu      sync.Mutex
	objects map[string]*objectTrack
	closed  bool
}

func NewSession(cfg config.ExportConfig, log *zap.Logger) (*Session, error) {
	if err := (&config.Config{Export: cfg}).Validate(); err != nil {
		return nil, err
	}
	if err := mkdir(cfg.Dir); err != nil {
		return nil, err
	}
	return &Session{cfg: cfg, log: logger.OrNop(log), objects: map[string]*objectTrack{}}, nil
}

// ExportFrame exports the accepted objects for one frame. A failing object
// does not stop the others; all failures are returned together.
func (s *Session) ExportFrame(objects []geometry.Displayable, frame int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	var errs error
	for _, d := range objects {
		if d == nil || !accepted(&s.cfg, d) {
			continue
		}
		if err := s.exportObject(d, frame); err != nil {
			s.log.Error("frame export failed", zap.String("object", d.Name()), zap.Int("frame", frame), zap.Error(err))
			errs = multierr.Append(errs, errors.Wrapf(err, "object %s", d.Name()))
		}
	}
	return errs
}

func (s *Session) exportObject(d geometry.Displayable, frame int) error {
	src, ok := geometry.AsMesh(d)
	if !ok {
		s.log.Warn("render object has no mesh", zap.String("object", d.Name()), zap.Stringer("kind", d.Kind()))
		return nil
	}
	name := d.Name()
	mesh := src.Clone()
	if _, err := weld.RemoveDuplicates(mesh, weld.WithWorkers(s.cfg.WorkerCount()), weld.WithLogger(s.log)); err != nil {
		return err
	}

	objPath, err := objio.Save(framePath(&s.cfg, name, frame), mesh)
	if err != nil {
		return err
	}
	s.log.Info("mesh exported", zap.String("object", name), zap.String("path", objPath))

	track, ok := s.objects[name]
	if !ok {
		track = &objectTrack{
			cache:   pointcache.New(mesh.VertCount(), s.cfg.PointCacheCapacity, s.cfg.FPS),
			mddPath: cachePath(&s.cfg, name),
		}
		s.objects[name] = track
	}
	if err := track.cache.AddVertices(mesh.Vertices); err != nil {
		return err
	}
	if err := track.cache.Export(track.mddPath); err != nil {
		return err
	}
	track.lastObj = objPath
	track.frames++
	return nil
}

// Names lists the objects seen so far, sorted.
func (s *Session) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close writes the session manifest and releases the point caches. Closing
// twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	m := &Manifest{Objects: make(map[string]ManifestEntry, len(s.objects))}
	for name, track := range s.objects {
		m.Objects[name] = ManifestEntry{
			Frames:  track.frames,
			Points:  track.cache.Points(),
			MDDPath: track.mddPath,
			LastOBJ: track.lastObj,
		}
	}
	s.objects = nil
	return m.Write(filepath.Join(s.cfg.Dir, ManifestName))
}
