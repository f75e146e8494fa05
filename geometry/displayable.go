package geometry

// Kind tags what a displayable draws. Export code switches on it once per
// object instead of probing concrete types.
type Kind int

const (
	KindNone Kind = iota
	KindMesh
	KindLines
	KindPoints
	KindUI
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMesh:
		return "mesh"
	case KindLines:
		return "lines"
	case KindPoints:
		return "points"
	case KindUI:
		return "ui"
	}
	return "unknown"
}

type Displayable interface {
	Name() string
	Kind() Kind
}

// MeshProvider is implemented by displayables of KindMesh.
type MeshProvider interface {
	TriangleMesh() *TriangleMesh
}

// Owned is implemented by displayables attached to a named component.
type Owned interface {
	OwnerName() string
}

// AsMesh resolves the mesh of d. It reports false for nil displayables,
// kinds other than KindMesh, and meshes that are not provided.
func AsMesh(d Displayable) (*TriangleMesh, bool) {
	if d == nil {
		return nil, false
	}
	switch d.Kind() {
	case KindMesh:
		p, ok := d.(MeshProvider)
		if !ok {
			return nil, false
		}
		m := p.TriangleMesh()
		return m, m != nil
	default:
		return nil, false
	}
}

func OwnerName(d Displayable) string {
	if o, ok := d.(Owned); ok {
		return o.OwnerName()
	}
	return ""
}

// Object is a plain Displayable, handy for callers that already hold the
// geometry and for tests.
type Object struct {
	ObjName  string
	Owner    string
	ObjKind  Kind
	Geometry *TriangleMesh
}

// A nil *Object behaves as an unnamed KindNone displayable.

func (o *Object) Name() string {
	if o == nil {
		return ""
	}
	return o.ObjName
}

func (o *Object) Kind() Kind {
	if o == nil {
		return KindNone
	}
	return o.ObjKind
}

func (o *Object) OwnerName() string {
	if o == nil {
		return ""
	}
	return o.Owner
}

func (o *Object) TriangleMesh() *TriangleMesh {
	if o == nil {
		return nil
	}
	return o.Geometry
}

// NewMeshObject wraps m as a KindMesh displayable.
func NewMeshObject(name string, m *TriangleMesh) *Object {
	return &Object{ObjName: name, ObjKind: KindMesh, Geometry: m}
}
