package export

import (
	"os"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gorustyt/meshexport/common/message"
)

// Manifest summarises a closed Session. It is stored as a protobuf encoded
// google.protobuf.Struct so other tools can read it without our types.
type Manifest struct {
	Objects map[string]ManifestEntry
}

type ManifestEntry struct {
	Frames  int
	Points  int
	MDDPath string
	LastOBJ string
}

func (m *Manifest) toStruct() (*structpb.Struct, error) {
	objects := make(map[string]interface{}, len(m.Objects))
	for name, e := range m.Objects {
		objects[name] = map[string]interface{}{
			"frames":   e.Frames,
			"points":   e.Points,
			"mdd":      e.MDDPath,
			"last_obj": e.LastOBJ,
		}
	}
	return structpb.NewStruct(map[string]interface{}{"objects": objects})
}

func manifestFromStruct(st *structpb.Struct) (*Manifest, error) {
	m := &Manifest{Objects: map[string]ManifestEntry{}}
	objects := st.GetFields()["objects"].GetStructValue()
	if objects == nil {
		return nil, errors.New("manifest has no objects field")
	}
	for name, v := range objects.GetFields() {
		f := v.GetStructValue().GetFields()
		m.Objects[name] = ManifestEntry{
			Frames:  int(f["frames"].GetNumberValue()),
			Points:  int(f["points"].GetNumberValue()),
			MDDPath: f["mdd"].GetStringValue(),
			LastOBJ: f["last_obj"].GetStringValue(),
		}
	}
	return m, nil
}

func (m *Manifest) Write(p string) error {
	st, err := m.toStruct()
	if err != nil {
		return errors.Wrap(err, "build manifest")
	}
	data, err := message.Encode(st)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(p, data, 0o644), "write manifest %s", p)
}

func ReadManifest(p string) (*Manifest, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, errors.Wrapf(err, "read manifest %s", p)
	}
	st := &structpb.Struct{}
	if err := message.Decode(data, st); err != nil {
		return nil, errors.Wrapf(err, "manifest %s", p)
	}
	return manifestFromStruct(st)
}

func mkdir(dir string) error {
	return errors.Wrapf(os.MkdirAll(dir, 0o755), "create export directory %s", dir)
}
