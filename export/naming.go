package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gorustyt/meshexport/config"
	"github.com/gorustyt/meshexport/geometry"
	"github.com/gorustyt/meshexport/pointcache"
)

// selectedPath is <dir>/<prefix><frame>, the name used for on-demand exports.
func selectedPath(cfg *config.ExportConfig, frame int) string {
	return filepath.Join(cfg.Dir, fmt.Sprintf("%s%0*d", cfg.FilePrefix, cfg.FrameDigits, frame))
}

// framePath is <dir>/<prefix><name>_<frame>, one file per object per frame.
func framePath(cfg *config.ExportConfig, name string, frame int) string {
	return filepath.Join(cfg.Dir, fmt.Sprintf("%s%s_%0*d", cfg.FilePrefix, sanitize(name), cfg.FrameDigits, frame))
}

func cachePath(cfg *config.ExportConfig, name string) string {
	return filepath.Join(cfg.Dir, sanitize(name)+pointcache.Ext)
}

// sanitize keeps object names from escaping the export directory. Unsafe
// bytes and '%' itself are percent-escaped, so distinct names never share a
// file. The empty name becomes a lone "%", which no escaped name produces.
func sanitize(name string) string {
	if name == "" {
		return "%"
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		switch c := name[i]; c {
		case '/', '\\', ':', '%', 0:
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// accepted reports whether d is exported every frame. Owner filters match the
// owning component's name, name filters match the displayable's own name.
// With both filters empty everything is accepted.
func accepted(cfg *config.ExportConfig, d geometry.Displayable) bool {
	if len(cfg.OwnerFilter) == 0 && len(cfg.NameFilter) == 0 {
		return true
	}
	return containsAny(geometry.OwnerName(d), cfg.OwnerFilter) || containsAny(d.Name(), cfg.NameFilter)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
