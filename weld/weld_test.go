package weld

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/meshexport/common"
	"github.com/gorustyt/meshexport/geometry"
)

func meshOf(verts []common.Vec3, tris []geometry.Triangle) *geometry.TriangleMesh {
	normals := make([]common.Vec3, len(verts))
	for i := range normals {
		normals[i] = common.Vec3{0, 0, float32(i)}
	}
	return &geometry.TriangleMesh{Vertices: verts, Normals: normals, Triangles: tris}
}

func TestScenario(t *testing.T) {
	m := meshOf(
		[]common.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 0}, {2, 0, 0}},
		[]geometry.Triangle{{0, 1, 2}, {1, 2, 3}},
	)

	has, dup := FindDuplicates(m)
	assert.True(t, has)
	assert.Equal(t, []int{0, 1, 0, 3}, dup)

	remap, err := RemoveDuplicates(m)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0, 2}, remap)
	assert.Equal(t, []common.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}, m.Vertices)
	// normals follow their representative
	assert.Equal(t, []common.Vec3{{0, 0, 0}, {0, 0, 1}, {0, 0, 3}}, m.Normals)
	assert.Equal(t, []geometry.Triangle{{0, 1, 0}, {1, 0, 2}}, m.Triangles)
}

func TestRepresentativeIsLowestIndex(t *testing.T) {
	p := common.Vec3{3, 2, 1}
	q := common.Vec3{-1, 5, 0}
	m := meshOf([]common.Vec3{q, p, p, q, p, {7, 7, 7}, q}, nil)

	has, dup := FindDuplicates(m)
	assert.True(t, has)
	assert.Equal(t, []int{0, 1, 1, 0, 1, 5, 0}, dup)
}

func TestNoDuplicatesIsNoop(t *testing.T) {
	verts := []common.Vec3{{2, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	tris := []geometry.Triangle{{0, 1, 2}, {3, 2, 1}}
	m := meshOf(append([]common.Vec3(nil), verts...), append([]geometry.Triangle(nil), tris...))
	normals := append([]common.Vec3(nil), m.Normals...)

	has, dup := FindDuplicates(m)
	assert.False(t, has)
	assert.Equal(t, common.Identity(4), dup)

	remap, err := RemoveDuplicates(m)
	require.NoError(t, err)
	assert.Equal(t, common.Identity(4), remap)
	assert.Equal(t, verts, m.Vertices)
	assert.Equal(t, normals, m.Normals)
	assert.Equal(t, tris, m.Triangles)
}

func TestEmptyMesh(t *testing.T) {
	m := &geometry.TriangleMesh{}
	has, dup := FindDuplicates(m)
	assert.False(t, has)
	assert.NotNil(t, dup)
	assert.Empty(t, dup)

	remap, err := RemoveDuplicates(m)
	require.NoError(t, err)
	assert.Empty(t, remap)
	assert.Empty(t, m.Vertices)
}

func TestNilMesh(t *testing.T) {
	assert.NotPanics(t, func() {
		has, dup := FindDuplicates(nil)
		assert.False(t, has)
		assert.NotNil(t, dup)
		assert.Empty(t, dup)
	})
	_, err := RemoveDuplicates(nil)
	assert.True(t, errors.Is(err, geometry.ErrMalformedMesh))
}

func TestExactEquality(t *testing.T) {
	nan := float32(math.NaN())
	negZero := float32(math.Copysign(0, -1))
	m := meshOf([]common.Vec3{
		{0, 0, 0},
		{negZero, 0, 0},
		{1, 0, 0},
		{math.Nextafter32(1, 2), 0, 0},
		{nan, 0, 0},
		{nan, 0, 0},
	}, nil)

	_, dup := FindDuplicates(m)
	// -0 == +0, neighbouring floats differ, NaN equals nothing
	assert.Equal(t, []int{0, 0, 2, 3, 4, 5}, dup)
}

func TestRejectsMalformed(t *testing.T) {
	verts := []common.Vec3{{0, 0, 0}, {0, 0, 0}, {1, 0, 0}}

	m := meshOf(append([]common.Vec3(nil), verts...), []geometry.Triangle{{0, 1, 3}})
	_, err := RemoveDuplicates(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, geometry.ErrMalformedMesh))
	assert.Equal(t, verts, m.Vertices, "mesh must be untouched")
	assert.Equal(t, []geometry.Triangle{{0, 1, 3}}, m.Triangles)

	m = meshOf(append([]common.Vec3(nil), verts...), nil)
	m.Normals = m.Normals[:1]
	_, err = RemoveDuplicates(m)
	assert.True(t, errors.Is(err, geometry.ErrMalformedMesh))
	assert.Len(t, m.Vertices, 3)

	_, err = RemoveDuplicates(nil)
	assert.Error(t, err)
}

// randomMesh draws positions from a small lattice so that duplicates are
// common, and returns the set of distinct positions.
func randomMesh(rng *rand.Rand, nv, nt int) (*geometry.TriangleMesh, map[common.Vec3]struct{}) {
	verts := make([]common.Vec3, nv)
	distinct := map[common.Vec3]struct{}{}
	for i := range verts {
		verts[i] = common.Vec3{float32(rng.Intn(8)), float32(rng.Intn(8)), float32(rng.Intn(8)) * 0.25}
		distinct[verts[i]] = struct{}{}
	}
	tris := make([]geometry.Triangle, nt)
	for i := range tris {
		tris[i] = geometry.Triangle{uint32(rng.Intn(nv)), uint32(rng.Intn(nv)), uint32(rng.Intn(nv))}
	}
	return meshOf(verts, tris), distinct
}

func checkWeldProperties(t *testing.T, m *geometry.TriangleMesh, distinct map[common.Vec3]struct{}, opts ...Option) {
	t.Helper()
	orig := m.Clone()

	_, dup := FindDuplicates(m, opts...)
	for i, r := range dup {
		require.LessOrEqual(t, r, i)
		require.Equal(t, orig.Vertices[i], orig.Vertices[r])
		require.Equal(t, r, dup[r], "representative must map to itself")
	}

	remap, err := RemoveDuplicates(m, opts...)
	require.NoError(t, err)

	require.Len(t, m.Vertices, len(distinct))
	require.Len(t, m.Normals, len(distinct))
	require.Len(t, remap, orig.VertCount())
	for i, r := range remap {
		require.Equal(t, orig.Vertices[i], m.Vertices[r])
		require.Equal(t, orig.Normals[dup[i]], m.Normals[r])
	}
	for i, tri := range m.Triangles {
		for j, v := range tri {
			require.Less(t, int(v), m.VertCount())
			require.Equal(t, orig.Vertices[orig.Triangles[i][j]], m.Vertices[v])
		}
	}

	// second pass finds nothing and changes nothing
	welded := m.Clone()
	has, dup2 := FindDuplicates(m, opts...)
	assert.False(t, has)
	assert.Equal(t, common.Identity(m.VertCount()), dup2)
	remap2, err := RemoveDuplicates(m, opts...)
	require.NoError(t, err)
	assert.Equal(t, common.Identity(m.VertCount()), remap2)
	assert.Equal(t, welded, m)
}

func TestRandomMeshes(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, nv := range []int{1, 2, 17, 300} {
		m, distinct := randomMesh(rng, nv, nv*2)
		checkWeldProperties(t, m, distinct)
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	m, distinct := randomMesh(rng, 5*minChunk+13, 3*minChunk)
	serial := m.Clone()

	remapSerial, err := RemoveDuplicates(serial, WithWorkers(1))
	require.NoError(t, err)

	checkWeldProperties(t, m.Clone(), distinct, WithWorkers(4))

	remapParallel, err := RemoveDuplicates(m, WithWorkers(4))
	require.NoError(t, err)
	assert.Equal(t, remapSerial, remapParallel)
	assert.Equal(t, serial, m)
}

func TestParallelForCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, minChunk, 3*minChunk + 1} {
		hits := make([]int, n)
		parallelFor(n, 3, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				hits[i]++
			}
		})
		for i, h := range hits {
			require.Equal(t, 1, h, "n=%d i=%d", n, i)
		}
	}
}
