package objio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/meshexport/common"
	"github.com/gorustyt/meshexport/geometry"
)

const cubeFace = `# quad with per-vertex normals
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
vt 0 0
o ignored
f 1/1/1 2/1/1 3/1/1 4/1/1
`

func TestReadQuad(t *testing.T) {
	m, err := Read(strings.NewReader(cubeFace))
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, 4, m.VertCount())
	assert.Equal(t, []geometry.Triangle{{0, 1, 2}, {0, 2, 3}}, m.Triangles)
	for _, n := range m.Normals {
		assert.Equal(t, common.Vec3{0, 0, 1}, n)
	}
}

func TestReadRelativeIndicesAndComputedNormals(t *testing.T) {
	src := "v 0 0 0\nv 0 1 0\nv 1 0 0\nf -3 -1 -2\n"
	m, err := Read(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []geometry.Triangle{{0, 2, 1}}, m.Triangles)
	// winding 0,2,1 faces +z
	assert.Equal(t, common.Vec3{0, 0, 1}, m.Normals[0])
}

func TestReadErrors(t *testing.T) {
	for name, src := range map[string]string{
		"vertex out of range": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n",
		"normal out of range": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//1 2//1 3//1\n",
		"short vertex":        "v 0 0\n",
		"bad float":           "v 0 x 0\n",
		"degenerate face":     "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad index":           "v 0 0 0\nf a b c\n",
	} {
		_, err := Read(strings.NewReader(src))
		assert.Error(t, err, name)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	m := &geometry.TriangleMesh{
		Vertices:  []common.Vec3{{0.1, -2.5, 3}, {1e-7, 0, 0}, {0, 1, 1.0 / 3}},
		Triangles: []geometry.Triangle{{0, 1, 2}},
	}
	m.ComputeNormals()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m))
	assert.Contains(t, buf.String(), "f 1//1 2//2 3//3")

	back, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Vertices, back.Vertices)
	assert.Equal(t, m.Normals, back.Normals)
	assert.Equal(t, m.Triangles, back.Triangles)
}

func TestWriteRejectsMalformed(t *testing.T) {
	m := &geometry.TriangleMesh{Vertices: []common.Vec3{{}}, Normals: []common.Vec3{{}}, Triangles: []geometry.Triangle{{0, 0, 1}}}
	err := Write(&bytes.Buffer{}, m)
	assert.True(t, errors.Is(err, geometry.ErrMalformedMesh))
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	m, err := Read(strings.NewReader(cubeFace))
	require.NoError(t, err)

	p, err := Save(filepath.Join(dir, "nested", "radiummesh_000003"), m)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "radiummesh_000003.obj"), p)

	p2, err := Save(filepath.Join(dir, "mesh.001_000004"), m)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mesh.001_000004.obj"), p2)

	p3, err := Save(filepath.Join(dir, "keep.OBJ"), m)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "keep.OBJ"), p3)

	back, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, m, back)

	_, err = Load(filepath.Join(dir, "missing.obj"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
