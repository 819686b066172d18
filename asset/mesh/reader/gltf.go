package reader

import (
	"fmt"
	"strings"
	"time"

	"github.com/giuliom95/baker2/asset"
	"github.com/giuliom95/baker2/asset/mesh"
	"github.com/giuliom95/baker2/log"
	"github.com/giuliom95/baker2/types"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

type gltfMeshReader struct {
	logger log.Logger

	mesh *mesh.Mesh

	missingNormals bool
	missingUVs     bool
}

// Create a new glTF mesh reader.
func newGltfReader() *gltfMeshReader {
	return &gltfMeshReader{
		logger: log.New("gltf reader"),
	}
}

// Read all triangle primitives of a .gltf or .glb document and merge them into
// a single mesh. Node transforms are not applied.
func (r *gltfMeshReader) Read(meshRes *asset.Resource) (*mesh.Mesh, error) {
	r.logger.Noticef(`parsing mesh from "%s"`, meshRes.Path())
	start := time.Now()

	doc, err := r.open(meshRes)
	if err != nil {
		return nil, fmt.Errorf("gltf reader: could not open %q: %w", meshRes.Path(), err)
	}

	r.mesh = mesh.New(strings.TrimSuffix(meshRes.Name(), meshRes.Ext()))
	for mi, gm := range doc.Meshes {
		if mi == 0 && gm.Name != "" {
			r.mesh.Name = gm.Name
		}
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				r.logger.Warningf("skipping mesh %d primitive %d: unsupported primitive mode %d", mi, pi, prim.Mode)
				continue
			}
			if err = r.readPrimitive(doc, prim); err != nil {
				return nil, fmt.Errorf("gltf reader: mesh %d primitive %d: %w", mi, pi, err)
			}
		}
	}

	if r.mesh.NumTriangles() == 0 {
		return nil, fmt.Errorf("gltf reader: %q contains no triangle primitives", meshRes.Path())
	}

	fixupAttributes(r.logger, r.mesh, r.missingNormals, r.missingUVs)

	r.logger.Noticef(
		"parsed mesh %q in %d ms (%d positions, %d normals, %d uvs, %d triangles)",
		r.mesh.Name, time.Since(start).Nanoseconds()/1e6,
		len(r.mesh.Positions), len(r.mesh.Normals), len(r.mesh.UVs), r.mesh.NumTriangles(),
	)
	return r.mesh, nil
}

// Local files are opened by path so that external buffers can be resolved.
// Remote and in-memory resources are decoded from the stream and must embed
// their buffers.
func (r *gltfMeshReader) open(res *asset.Resource) (*gltf.Document, error) {
	if localPath, ok := res.LocalPath(); ok {
		return gltf.Open(localPath)
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(res).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *gltfMeshReader) readPrimitive(doc *gltf.Document, prim *gltf.Primitive) error {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("normals: %w", err)
		}
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("uvs: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for index := range indices {
			indices[index] = uint32(index)
		}
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(indices))
	}

	posOffset := int32(len(r.mesh.Positions))
	normalOffset := int32(len(r.mesh.Normals))
	uvOffset := int32(len(r.mesh.UVs))

	for _, p := range positions {
		r.mesh.Positions = append(r.mesh.Positions, types.Vec3(p))
	}
	for _, n := range normals {
		r.mesh.Normals = append(r.mesh.Normals, types.Vec3(n))
	}
	for _, uv := range uvs {
		r.mesh.UVs = append(r.mesh.UVs, types.Vec2(uv))
	}

	hasNormals := len(normals) == len(positions)
	hasUVs := len(uvs) == len(positions)
	if !hasNormals {
		r.missingNormals = true
	}
	if !hasUVs {
		r.missingUVs = true
	}

	var corners [3]mesh.Corner
	for index, vi := range indices {
		if int(vi) >= len(positions) {
			return fmt.Errorf("vertex index %d out of range [0, %d)", vi, len(positions))
		}

		c := mesh.Corner{Position: posOffset + int32(vi), Normal: -1, UV: -1}
		if hasNormals {
			c.Normal = normalOffset + int32(vi)
		}
		if hasUVs {
			c.UV = uvOffset + int32(vi)
		}

		corners[index%3] = c
		if index%3 == 2 {
			r.mesh.AddTriangle(corners[0], corners[1], corners[2])
		}
	}

	return nil
}
