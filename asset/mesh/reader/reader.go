package reader

import (
	"fmt"

	"github.com/giuliom95/baker2/asset"
	"github.com/giuliom95/baker2/asset/mesh"
	"github.com/giuliom95/baker2/log"
	"github.com/giuliom95/baker2/types"
)

// The Reader interface is implemented by all mesh readers.
type Reader interface {
	// Read a triangle mesh from a resource.
	Read(*asset.Resource) (*mesh.Mesh, error)
}

// Read mesh from a local file or http(s) URL. The reader is selected based on
// the file extension.
func ReadMesh(filename string) (*mesh.Mesh, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var reader Reader
	switch res.Ext() {
	case ".obj":
		reader = newWavefrontReader()
	case ".gltf", ".glb":
		reader = newGltfReader()
	default:
		return nil, fmt.Errorf("readMesh: unsupported file format %q", res.Ext())
	}
	return reader.Read(res)
}

// Synthesize normals and insert placeholder uvs for corners that did not
// reference them so that all corner indices are valid.
func fixupAttributes(logger log.Logger, m *mesh.Mesh, missingNormals, missingUVs bool) {
	if missingNormals {
		if m.HasNormals() {
			logger.Warningf("mesh %q defines normals for some faces only; regenerating vertex normals", m.Name)
		} else {
			logger.Infof("mesh %q does not define normals; generating vertex normals", m.Name)
		}
		mesh.GenerateVertexNormals(m)
	}

	if missingUVs {
		placeholder := int32(len(m.UVs))
		m.UVsGenerated = placeholder == 0
		m.UVs = append(m.UVs, types.Vec2{})
		for index := range m.Corners {
			if m.Corners[index].UV < 0 {
				m.Corners[index].UV = placeholder
			}
		}
	}
}
