// Package pointcache stores vertex animation as MDD point cache files.
//
// Layout, big-endian:
//
//	int32   frame count
//	int32   point count
//	float32 time, one per frame
//	float32 x, y, z per point, one block per frame
package pointcache

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/gorustyt/meshexport/common"
	"github.com/gorustyt/meshexport/common/rw"
)

const Ext = ".mdd"

var (
	ErrPointCount = errors.New("point count mismatch")
	ErrCorrupt    = errors.New("corrupt point cache")
)

type File struct {
	points int
	fps    float64
	times  []float32
	frames [][]float32
}

// New creates an empty cache for meshes of the given point count. capacity
// only preallocates. With fps > 0 frame i is stamped i/fps seconds,
// otherwise it is stamped with its index.
func New(points, capacity int, fps float64) *File {
	if capacity < 0 {
		capacity = 0
	}
	return &File{
		points: points,
		fps:    fps,
		times:  make([]float32, 0, capacity),
		frames: make([][]float32, 0, capacity),
	}
}

func (f *File) Points() int     { return f.points }
func (f *File) FrameCount() int { return len(f.frames) }
func (f *File) Time(i int) float32 {
	return f.times[i]
}

// Frame returns the interleaved positions of frame i. The slice is shared.
func (f *File) Frame(i int) []float32 {
	return f.frames[i]
}

// Vertices returns frame i as positions.
func (f *File) Vertices(i int) []common.Vec3 {
	return common.UnflattenVec3(f.frames[i])
}

// AddFrame appends a copy of xyz, which must hold 3*Points values.
func (f *File) AddFrame(xyz []float32) error {
	if len(xyz) != 3*f.points {
		return errors.Wrapf(ErrPointCount, "frame has %d values, want %d", len(xyz), 3*f.points)
	}
	t := float32(len(f.frames))
	if f.fps > 0 {
		t = float32(float64(len(f.frames)) / f.fps)
	}
	f.times = append(f.times, t)
	f.frames = append(f.frames, append([]float32(nil), xyz...))
	return nil
}

func (f *File) AddVertices(verts []common.Vec3) error {
	if len(verts) != f.points {
		return errors.Wrapf(ErrPointCount, "frame has %d points, want %d", len(verts), f.points)
	}
	return f.AddFrame(common.FlattenVec3(verts))
}

func (f *File) Encode() []byte {
	w := rw.NewBinWriter(binary.BigEndian)
	w.WriteInt32(len(f.frames))
	w.WriteInt32(f.points)
	w.WriteFloat32s(f.times)
	for _, frame := range f.frames {
		w.WriteFloat32s(frame)
	}
	return w.GetWriteBytes()
}

func Decode(data []byte) (*File, error) {
	r := rw.NewBinReader(data, binary.BigEndian)
	frameCount := int(r.ReadInt32())
	points := int(r.ReadInt32())
	if err := r.Err(); err != nil {
		return nil, errors.Wrap(ErrCorrupt, err.Error())
	}
	if frameCount < 0 || points < 0 {
		return nil, errors.Wrapf(ErrCorrupt, "negative header %d frames %d points", frameCount, points)
	}
	// checked before allocating so a bad header cannot request huge buffers
	if !payloadMatches(r.Size(), frameCount, points) {
		return nil, errors.Wrapf(ErrCorrupt, "%d bytes of payload for %d frames of %d points", r.Size(), frameCount, points)
	}
	f := &File{points: points, times: make([]float32, frameCount), frames: make([][]float32, frameCount)}
	r.ReadFloat32s(f.times)
	for i := range f.frames {
		f.frames[i] = make([]float32, 3*points)
		r.ReadFloat32s(f.frames[i])
	}
	if err := r.Err(); err != nil {
		return nil, errors.Wrap(ErrCorrupt, err.Error())
	}
	return f, nil
}

// payloadMatches reports whether size bytes hold exactly frames times plus
// frames blocks of points positions, without overflowing on large headers.
func payloadMatches(size, frames, points int) bool {
	if size%4 != 0 {
		return false
	}
	words := size / 4
	if frames == 0 {
		return words == 0
	}
	if words%frames != 0 {
		return false
	}
	perFrame := words / frames
	return (perFrame-1)%3 == 0 && (perFrame-1)/3 == points
}

// Export writes the whole cache to p, replacing any previous file. The data
// goes to a temporary file first so readers never see a partial cache.
func (f *File) Export(p string) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %s", p)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(p)+".tmp*")
	if err != nil {
		return errors.Wrapf(err, "create temp for %s", p)
	}
	if _, err = tmp.Write(f.Encode()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "write %s", p)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "close %s", p)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), p), "rename to %s", p)
}

func Load(p string) (*File, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", p)
	}
	f, err := Decode(data)
	return f, errors.Wrapf(err, "load %s", p)
}
