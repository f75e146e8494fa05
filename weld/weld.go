// Package weld merges vertices whose positions are exactly equal.
//
// Equality is bitwise float comparison on x, y and z with no tolerance, so
// welding never moves a vertex. Two vertices at -0 and +0 compare equal; a
// NaN component never equals anything, so such vertices are left alone.
package weld

import (
	"slices"

	"go.uber.org/zap"

	"github.com/gorustyt/meshexport/common"
	"github.com/gorustyt/meshexport/geometry"
)

type indexedPos struct {
	pos common.Vec3
	idx int
}

// FindDuplicates maps every vertex to its representative, the lowest
// indexed vertex sharing its exact position. hasDuplicates reports whether
// any vertex is not its own representative. The mesh is not modified; a nil
// mesh is treated as empty.
func FindDuplicates(mesh *geometry.TriangleMesh, opts ...Option) (hasDuplicates bool, duplicates []int) {
	if mesh == nil {
		return false, []int{}
	}
	o := buildOptions(opts)
	return findDuplicates(mesh.Vertices, o)
}

func findDuplicates(verts []common.Vec3, o *options) (bool, []int) {
	n := len(verts)
	duplicates := make([]int, n)
	if n == 0 {
		return false, duplicates
	}

	sorted := make([]indexedPos, n)
	parallelFor(n, o.workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			sorted[i] = indexedPos{pos: verts[i], idx: i}
		}
	})

	// Ties on position fall back to the index, so each run of equal
	// positions starts with its lowest index.
	slices.SortFunc(sorted, func(a, b indexedPos) int {
		if c := common.VcompareLex(a.pos, b.pos); c != 0 {
			return c
		}
		return a.idx - b.idx
	})

	hasDuplicates := false
	duplicates[sorted[0].idx] = sorted[0].idx
	for i := 1; i < n; i++ {
		cur, prev := sorted[i], sorted[i-1]
		if common.VexactEqual(cur.pos, prev.pos) {
			duplicates[cur.idx] = duplicates[prev.idx]
			hasDuplicates = true
		} else {
			duplicates[cur.idx] = cur.idx
		}
	}
	return hasDuplicates, duplicates
}

// RemoveDuplicates welds the mesh in place: only representative vertices
// (and their normals) are kept, in original order, and triangles are
// rewritten to reference them. The returned table maps every original vertex
// index to its index in the welded mesh, for remapping any other per-vertex
// data the caller holds.
//
// A malformed mesh is rejected before anything is modified.
func RemoveDuplicates(mesh *geometry.TriangleMesh, opts ...Option) (remap []int, err error) {
	if err = mesh.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	n := len(mesh.Vertices)
	hasDuplicates, duplicates := findDuplicates(mesh.Vertices, o)

	slots := make([]int, n)
	uniqueVerts := make([]common.Vec3, 0, n)
	uniqueNormals := make([]common.Vec3, 0, n)
	for i := 0; i < n; i++ {
		if duplicates[i] != i {
			continue
		}
		slots[i] = len(uniqueVerts)
		uniqueVerts = append(uniqueVerts, mesh.Vertices[i])
		uniqueNormals = append(uniqueNormals, mesh.Normals[i])
	}

	// Representatives always precede their duplicates, so every slot read
	// below was written above.
	tris := mesh.Triangles
	parallelFor(len(tris), o.workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j, v := range tris[i] {
				tris[i][j] = uint32(slots[duplicates[v]])
			}
		}
	})

	remap = make([]int, n)
	parallelFor(n, o.workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			remap[i] = slots[duplicates[i]]
		}
	})

	mesh.Vertices = uniqueVerts
	mesh.Normals = uniqueNormals

	o.log.Debug("welded mesh",
		zap.Bool("duplicates", hasDuplicates),
		zap.Int("verts_before", n),
		zap.Int("verts_after", len(uniqueVerts)),
		zap.Int("tris", len(tris)))
	return remap, nil
}
