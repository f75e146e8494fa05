package export

import (
	"sync"

	"go.uber.org/zap"

	"github.com/gorustyt/meshexport/common/logger"
	"github.com/gorustyt/meshexport/config"
	"github.com/gorustyt/meshexport/geometry"
)

// Source lists what is currently displayed, typically the render object
// manager of the running engine.
type Source interface {
	Displayables() []geometry.Displayable
}

// FrameExporter backs the "export every frame" switch. Turning it on opens
// a Session, turning it off closes it; frames completed meanwhile are
// exported.
type FrameExporter struct {
	cfg config.ExportConfig
	log *zap.Logger

	mu      sync.Mutex
	session *Session
}

func NewFrameExporter(cfg config.ExportConfig, log *zap.Logger) *FrameExporter {
	return &FrameExporter{cfg: cfg, log: logger.OrNop(log)}
}

func (f *FrameExporter) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session != nil
}

func (f *FrameExporter) SetEnabled(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case on && f.session == nil:
		s, err := NewSession(f.cfg, f.log)
		if err != nil {
			return err
		}
		f.session = s
		f.log.Info("frame export enabled", zap.String("dir", f.cfg.Dir))
	case !on && f.session != nil:
		err := f.session.Close()
		f.session = nil
		f.log.Info("frame export disabled")
		return err
	}
	return nil
}

// OnFrameComplete exports src's displayables when enabled. Toggling waits
// for a running export to finish.
func (f *FrameExporter) OnFrameComplete(src Source, frame int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return nil
	}
	return f.session.ExportFrame(src.Displayables(), frame)
}
