package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/logrusorgru/aurora"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/gorustyt/meshexport/common"
	"github.com/gorustyt/meshexport/common/logger"
	"github.com/gorustyt/meshexport/config"
	"github.com/gorustyt/meshexport/export"
	"github.com/gorustyt/meshexport/geometry"
	"github.com/gorustyt/meshexport/objio"
	"github.com/gorustyt/meshexport/pointcache"
	"github.com/gorustyt/meshexport/weld"
)

type cli struct {
	app    *kingpin.Application
	out    io.Writer
	errOut io.Writer
	au     aurora.Aurora

	configPath *string
	exportDir  *string
	logLevel   *string
	logFile    *string

	weldCmd     *kingpin.CmdClause
	weldIn      *string
	weldOut     *string
	weldWorkers *int

	framesCmd   *kingpin.CmdClause
	framesName  *string
	framesFiles *[]string
	framesFirst *int

	mddCmd  *kingpin.CmdClause
	mddFile *string

	manifestCmd  *kingpin.CmdClause
	manifestFile *string
}

func newCLI(out, errOut io.Writer, au aurora.Aurora) *cli {
	c := &cli{out: out, errOut: errOut, au: au}
	c.app = kingpin.New("meshexport", "Weld and export triangle meshes as OBJ and MDD point caches.")
	c.app.UsageWriter(errOut)
	c.app.ErrorWriter(errOut)
	c.configPath = c.app.Flag("config", "YAML configuration file.").Short('c').String()
	c.exportDir = c.app.Flag("export-dir", "Directory receiving exported files.").String()
	c.logLevel = c.app.Flag("log-level", "Log level.").String()
	c.logFile = c.app.Flag("log-file", "Rotated log file.").String()

	c.weldCmd = c.app.Command("weld", "Merge exactly coincident vertices of an OBJ mesh.")
	c.weldIn = c.weldCmd.Arg("in", "Input OBJ.").Required().ExistingFile()
	c.weldOut = c.weldCmd.Arg("out", "Output OBJ.").Required().String()
	c.weldWorkers = c.weldCmd.Flag("workers", "Goroutines for the parallel steps (0: one per CPU).").Int()

	c.framesCmd = c.app.Command("frames", "Export a sequence of OBJ frames of one object as welded OBJs and an MDD cache.")
	c.framesName = c.framesCmd.Arg("name", "Object name.").Required().String()
	c.framesFiles = c.framesCmd.Arg("frames", "OBJ file per frame, in order.").Required().ExistingFiles()
	c.framesFirst = c.framesCmd.Flag("first", "Number of the first frame.").Default("1").Int()

	c.mddCmd = c.app.Command("mdd-info", "Describe an MDD point cache.")
	c.mddFile = c.mddCmd.Arg("file", "MDD file.").Required().ExistingFile()

	c.manifestCmd = c.app.Command("manifest", "Print a frame export session manifest.")
	c.manifestFile = c.manifestCmd.Arg("file", "Manifest file.").Required().ExistingFile()
	return c
}

func main() {
	os.Exit(newCLI(os.Stdout, os.Stderr, aurora.NewAurora(true)).run(os.Args[1:]))
}

// run executes one command and returns the process exit code. The logger is
// flushed before returning on every path.
func (c *cli) run(args []string) int {
	cmd, err := c.app.Parse(args)
	if err != nil {
		fmt.Fprintln(c.errOut, c.au.Red("error:"), err)
		return 2
	}
	cfg, err := c.loadConfig()
	if err != nil {
		fmt.Fprintln(c.errOut, c.au.Red("config:"), err)
		return 2
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(c.errOut, c.au.Red("logger:"), err)
		return 2
	}
	defer log.Sync()

	switch cmd {
	case c.weldCmd.FullCommand():
		err = c.runWeld(cfg, log)
	case c.framesCmd.FullCommand():
		err = c.runFrames(cfg, log)
	case c.mddCmd.FullCommand():
		err = c.runMDDInfo()
	case c.manifestCmd.FullCommand():
		err = c.runManifest()
	}
	if err != nil {
		log.Error("command failed", zap.String("command", cmd), zap.Error(err))
		fmt.Fprintln(c.errOut, c.au.Red("error:"), err)
		return 1
	}
	return 0
}

func (c *cli) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *c.configPath != "" {
		var err error
		if cfg, err = config.Load(*c.configPath); err != nil {
			return nil, err
		}
	}
	if *c.exportDir != "" {
		cfg.Export.Dir = *c.exportDir
	}
	if *c.logLevel != "" {
		cfg.Log.Level = *c.logLevel
	}
	if *c.logFile != "" {
		cfg.Log.File = *c.logFile
	}
	return cfg, cfg.Validate()
}

func (c *cli) runWeld(cfg *config.Config, log *zap.Logger) error {
	m, err := objio.Load(*c.weldIn)
	if err != nil {
		return err
	}
	before := m.VertCount()
	workers := *c.weldWorkers
	if workers == 0 {
		workers = cfg.Export.Workers
	}
	if _, err = weld.RemoveDuplicates(m, weld.WithWorkers(workers), weld.WithLogger(log)); err != nil {
		return err
	}
	p, err := objio.Save(*c.weldOut, m)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s %s: %d -> %d vertices, %d triangles\n",
		c.au.Green("welded"), p, before, m.VertCount(), m.TriCount())
	return nil
}

func (c *cli) runFrames(cfg *config.Config, log *zap.Logger) error {
	exportCfg := cfg.Export
	exportCfg.OwnerFilter, exportCfg.NameFilter = nil, nil
	s, err := export.NewSession(exportCfg, log)
	if err != nil {
		return err
	}
	for i, f := range *c.framesFiles {
		m, err := objio.Load(f)
		if err != nil {
			s.Close()
			return err
		}
		frame := *c.framesFirst + i
		if err := s.ExportFrame([]geometry.Displayable{geometry.NewMeshObject(*c.framesName, m)}, frame); err != nil {
			s.Close()
			return err
		}
		fmt.Fprintf(c.out, "%s frame %d from %s\n", c.au.Green("exported"), frame, f)
	}
	if err := s.Close(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s %s\n", c.au.Cyan("session"), exportCfg.Dir)
	return nil
}

// bounds is the axis aligned box of vs; vs must not be empty.
func bounds(vs []common.Vec3) (lo, hi common.Vec3) {
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		for k := 0; k < 3; k++ {
			if v[k] < lo[k] {
				lo[k] = v[k]
			}
			if v[k] > hi[k] {
				hi[k] = v[k]
			}
		}
	}
	return lo, hi
}

func (c *cli) runMDDInfo() error {
	f, err := pointcache.Load(*c.mddFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s: %d points, %d frames\n", c.au.Cyan(*c.mddFile), f.Points(), f.FrameCount())
	for i := 0; i < f.FrameCount(); i++ {
		if f.Points() == 0 {
			fmt.Fprintf(c.out, "  frame %d t=%g\n", i, f.Time(i))
			continue
		}
		lo, hi := bounds(f.Vertices(i))
		fmt.Fprintf(c.out, "  frame %d t=%g bounds %v %v\n", i, f.Time(i), lo, hi)
	}
	return nil
}

func (c *cli) runManifest() error {
	m, err := export.ReadManifest(*c.manifestFile)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(m.Objects))
	for name := range m.Objects {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e := m.Objects[name]
		fmt.Fprintf(c.out, "%s: %d frames, %d points, %s (last %s)\n", c.au.Cyan(name), e.Frames, e.Points, e.MDDPath, e.LastOBJ)
	}
	return nil
}
