package config

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultExportDir          = "export"
	DefaultFilePrefix         = "radiummesh_"
	DefaultFrameDigits        = 6
	DefaultPointCacheCapacity = 100
)

// The per-frame session exports objects owned by a skinning component (owner
// name contains an owner filter) and implicit skinning results, marching
// cubes and SDF previews (object name contains a name filter).
var (
	DefaultOwnerFilter = []string{"AC_"}
	DefaultNameFilter  = []string{"ImplicitSkinning", "MarchingCubes", "SDF_"}
)

type Config struct {
	Export ExportConfig `yaml:"export"`
	Log    LogConfig    `yaml:"log"`
}

type ExportConfig struct {
	Dir                string   `yaml:"dir"`
	FilePrefix         string   `yaml:"file_prefix"`
	FrameDigits        int      `yaml:"frame_digits"`
	PointCacheCapacity int      `yaml:"point_cache_capacity"`
	FPS                float64  `yaml:"fps"`
	OwnerFilter        []string `yaml:"owner_filter"`
	NameFilter         []string `yaml:"name_filter"`
	Workers            int      `yaml:"workers"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Console    bool   `yaml:"console"`
}

func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Dir:                DefaultExportDir,
			FilePrefix:         DefaultFilePrefix,
			FrameDigits:        DefaultFrameDigits,
			PointCacheCapacity: DefaultPointCacheCapacity,
			OwnerFilter:        append([]string(nil), DefaultOwnerFilter...),
			NameFilter:         append([]string(nil), DefaultNameFilter...),
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Console:    true,
		},
	}
}

// Load reads a YAML file on top of Default. Keys absent from the file keep
// their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	e := &cfg.Export
	if e.Dir == "" {
		return errors.New("export.dir must not be empty")
	}
	if e.FrameDigits < 1 || e.FrameDigits > 12 {
		return errors.Errorf("export.frame_digits out of range: %d", e.FrameDigits)
	}
	if e.PointCacheCapacity < 0 {
		return errors.Errorf("export.point_cache_capacity must not be negative: %d", e.PointCacheCapacity)
	}
	if e.FPS < 0 {
		return errors.Errorf("export.fps must not be negative: %v", e.FPS)
	}
	return nil
}

// WorkerCount resolves Workers, falling back to the number of CPUs.
func (e *ExportConfig) WorkerCount() int {
	if e.Workers <= 0 {
		return runtime.NumCPU()
	}
	return e.Workers
}
