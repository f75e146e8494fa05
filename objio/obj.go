// Package objio reads and writes triangle meshes as Wavefront OBJ.
package objio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/gorustyt/meshexport/common"
	"github.com/gorustyt/meshexport/geometry"
)

const Ext = ".obj"

// maxFaceCorners bounds the polygon size accepted by the loader.
const maxFaceCorners = 32

type meshLoaderObj struct {
	verts   []common.Vec3
	normals []common.Vec3
	tris    []geometry.Triangle
	// normal index per vertex, -1 when unset
	vertNormal []int
	line       int
}

func Load(p string) (*geometry.TriangleMesh, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", p)
	}
	defer f.Close()
	m, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", p)
	}
	return m, nil
}

// Read parses v, vn and f statements. Polygons are fan triangulated.
// Normals are kept when every vertex received exactly one through the face
// statements; otherwise they are recomputed from the geometry.
func Read(r io.Reader) (*geometry.TriangleMesh, error) {
	l := &meshLoaderObj{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		l.line++
		row := strings.TrimSpace(scanner.Text())
		if row == "" || strings.HasPrefix(row, "#") {
			continue
		}
		if err := l.parseRow(strings.Fields(row)); err != nil {
			return nil, errors.Wrapf(err, "line %d", l.line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan obj")
	}
	return l.mesh(), nil
}

func (l *meshLoaderObj) parseRow(ss []string) error {
	switch ss[0] {
	case "v":
		v, err := parseVec3(ss[1:])
		if err != nil {
			return err
		}
		l.verts = append(l.verts, v)
		l.vertNormal = append(l.vertNormal, -1)
	case "vn":
		n, err := parseVec3(ss[1:])
		if err != nil {
			return err
		}
		l.normals = append(l.normals, n)
	case "f":
		return l.parseFace(ss[1:])
	}
	return nil
}

func parseVec3(ss []string) (res common.Vec3, err error) {
	if len(ss) < 3 {
		return res, errors.Errorf("expected 3 components, got %d", len(ss))
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(ss[i], 32)
		if err != nil {
			return res, errors.Wrapf(err, "component %d", i)
		}
		res[i] = float32(f)
	}
	return res, nil
}

// resolveIndex turns a 1-based or negative relative OBJ index into a
// 0-based one.
func resolveIndex(s string, count int) (int, error) {
	vi, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "index %q", s)
	}
	if vi < 0 {
		vi += count
	} else {
		vi--
	}
	if vi < 0 || vi >= count {
		return 0, errors.Errorf("index %s out of range [1, %d]", s, count)
	}
	return vi, nil
}

func (l *meshLoaderObj) parseFace(ss []string) error {
	if len(ss) < 3 {
		return errors.Errorf("face with %d corners", len(ss))
	}
	if len(ss) > maxFaceCorners {
		return errors.Errorf("face with %d corners exceeds %d", len(ss), maxFaceCorners)
	}
	data := make([]uint32, 0, len(ss))
	for _, corner := range ss {
		parts := strings.Split(corner, "/")
		vi, err := resolveIndex(parts[0], len(l.verts))
		if err != nil {
			return err
		}
		if len(parts) == 3 && parts[2] != "" {
			ni, err := resolveIndex(parts[2], len(l.normals))
			if err != nil {
				return err
			}
			switch l.vertNormal[vi] {
			case -1:
				l.vertNormal[vi] = ni
			case ni:
			default:
				// a vertex with several normals cannot be kept per vertex
				l.vertNormal[vi] = -2
			}
		}
		data = append(data, uint32(vi))
	}
	for i := 2; i < len(data); i++ {
		l.tris = append(l.tris, geometry.Triangle{data[0], data[i-1], data[i]})
	}
	return nil
}

func (l *meshLoaderObj) mesh() *geometry.TriangleMesh {
	m := &geometry.TriangleMesh{Vertices: l.verts, Triangles: l.tris}
	if m.Vertices == nil {
		m.Vertices = []common.Vec3{}
	}
	normals := make([]common.Vec3, len(l.verts))
	for i, ni := range l.vertNormal {
		if ni < 0 {
			m.ComputeNormals()
			return m
		}
		normals[i] = l.normals[ni]
	}
	m.Normals = normals
	return m
}

// Write emits the mesh with one normal per vertex, faces as v//vn.
func Write(w io.Writer, m *geometry.TriangleMesh) error {
	if err := m.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d vertices, %d triangles\n", m.VertCount(), m.TriCount())
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]))
	}
	for _, n := range m.Normals {
		fmt.Fprintf(bw, "vn %s %s %s\n", formatFloat(n[0]), formatFloat(n[1]), formatFloat(n[2]))
	}
	for _, t := range m.Triangles {
		a, b, c := t[0]+1, t[1]+1, t[2]+1
		fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}
	return errors.Wrap(bw.Flush(), "write obj")
}

// formatFloat prints the shortest text that parses back to the same float32.
func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// Save writes the mesh to p, adding the .obj extension when missing and
// creating parent directories. It returns the path actually written.
func Save(p string, m *geometry.TriangleMesh) (string, error) {
	if !strings.EqualFold(filepath.Ext(p), Ext) {
		p += Ext
	}
	if err := m.Validate(); err != nil {
		return p, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return p, errors.Wrapf(err, "create directory for %s", p)
	}
	f, err := os.Create(p)
	if err != nil {
		return p, errors.Wrapf(err, "create %s", p)
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return p, errors.Wrapf(err, "save %s", p)
	}
	return p, errors.Wrapf(f.Close(), "close %s", p)
}
