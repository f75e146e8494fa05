package geometry

import (
	"github.com/pkg/errors"

	"github.com/gorustyt/meshexport/common"
)

var ErrMalformedMesh = errors.New("malformed mesh")

type Triangle [3]uint32

// TriangleMesh is an indexed triangle soup. Normals is parallel to Vertices.
type TriangleMesh struct {
	Vertices  []common.Vec3
	Normals   []common.Vec3
	Triangles []Triangle
}

func (m *TriangleMesh) VertCount() int { return len(m.Vertices) }
func (m *TriangleMesh) TriCount() int  { return len(m.Triangles) }

// Validate checks that normals match vertices one to one and that every
// triangle references an existing vertex.
func (m *TriangleMesh) Validate() error {
	if m == nil {
		return errors.Wrap(ErrMalformedMesh, "nil mesh")
	}
	if len(m.Normals) != len(m.Vertices) {
		return errors.Wrapf(ErrMalformedMesh, "%d normals for %d vertices", len(m.Normals), len(m.Vertices))
	}
	n := uint32(len(m.Vertices))
	for i, tri := range m.Triangles {
		for j, v := range tri {
			if v >= n {
				return errors.Wrapf(ErrMalformedMesh, "triangle %d corner %d references vertex %d of %d", i, j, v, n)
			}
		}
	}
	return nil
}

// Clone returns a deep copy, so an exported copy can be rewritten while the
// source stays in use.
func (m *TriangleMesh) Clone() *TriangleMesh {
	return &TriangleMesh{
		Vertices:  append([]common.Vec3(nil), m.Vertices...),
		Normals:   append([]common.Vec3(nil), m.Normals...),
		Triangles: append([]Triangle(nil), m.Triangles...),
	}
}

// ComputeNormals replaces Normals with area weighted vertex normals.
// Vertices not referenced by any triangle get a zero normal.
func (m *TriangleMesh) ComputeNormals() {
	normals := make([]common.Vec3, len(m.Vertices))
	for _, tri := range m.Triangles {
		v0 := m.Vertices[tri[0]]
		e0 := common.Vsub(m.Vertices[tri[1]], v0)
		e1 := common.Vsub(m.Vertices[tri[2]], v0)
		// unnormalized, so larger faces weigh more
		n := common.Vcross(e0, e1)
		for _, v := range tri {
			normals[v] = normals[v].Add(n)
		}
	}
	for i := range normals {
		normals[i] = common.Vnormalize(normals[i])
	}
	m.Normals = normals
}
