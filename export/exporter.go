// Package export writes editor meshes to disk: a single selected object on
// demand, or every matching object after each frame through a Session.
package export

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gorustyt/meshexport/common/logger"
	"github.com/gorustyt/meshexport/config"
	"github.com/gorustyt/meshexport/geometry"
	"github.com/gorustyt/meshexport/objio"
)

var (
	ErrNotMesh       = errors.New("displayable has no triangle mesh")
	ErrSessionClosed = errors.New("export session closed")
)

type Exporter struct {
	cfg config.ExportConfig
	log *zap.Logger
}

func NewExporter(cfg config.ExportConfig, log *zap.Logger) *Exporter {
	return &Exporter{cfg: cfg, log: logger.OrNop(log)}
}

// ExportSelected saves the mesh of d as is, without welding, and returns the
// written path.
func (e *Exporter) ExportSelected(d geometry.Displayable, frame int) (string, error) {
	mesh, ok := geometry.AsMesh(d)
	if !ok {
		e.log.Warn("current entry was not a render object, no mesh was exported")
		return "", ErrNotMesh
	}
	p, err := objio.Save(selectedPath(&e.cfg, frame), mesh)
	if err != nil {
		e.log.Error("mesh export failed", zap.String("object", d.Name()), zap.Error(err))
		return "", errors.Wrapf(err, "export %s", d.Name())
	}
	e.log.Info("mesh exported", zap.String("object", d.Name()), zap.String("path", p))
	return p, nil
}
