package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/giuliom95/baker2/types"
)

// ErrCorruptMesh is returned when a mesh references attributes that do not exist.
var ErrCorruptMesh = errors.New("mesh: corrupt mesh")

// A Corner selects the position, normal and uv of one triangle vertex. Each
// attribute is indexed independently so that a single position may be shared
// by corners with different normals or uvs (e.g. along uv seams).
type Corner struct {
	Position int32
	Normal   int32
	UV       int32
}

// A triangle mesh stored as a struct of attribute arrays. Every three
// consecutive entries in Corners define a triangle.
type Mesh struct {
	Name string

	Positions []types.Vec3
	Normals   []types.Vec3
	UVs       []types.Vec2

	Corners []Corner

	// Set when the normals were synthesized from the geometry.
	NormalsGenerated bool

	// Set when the source did not define uv coordinates and a single
	// placeholder uv was inserted to keep corner indices valid.
	UVsGenerated bool

	bbox            [2]types.Vec3
	bboxNeedsUpdate bool
}

// Create a new empty mesh.
func New(name string) *Mesh {
	return &Mesh{
		Name:            name,
		Positions:       make([]types.Vec3, 0),
		Normals:         make([]types.Vec3, 0),
		UVs:             make([]types.Vec2, 0),
		Corners:         make([]Corner, 0),
		bboxNeedsUpdate: true,
	}
}

// Get the number of triangles in the mesh.
func (m *Mesh) NumTriangles() int {
	return len(m.Corners) / 3
}

// Returns true if the mesh defines uv coordinates.
func (m *Mesh) HasUVs() bool {
	return len(m.UVs) != 0 && !m.UVsGenerated
}

// Returns true if the mesh defines normals.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) != 0
}

// Append a triangle to the mesh.
func (m *Mesh) AddTriangle(c0, c1, c2 Corner) {
	m.Corners = append(m.Corners, c0, c1, c2)
	m.bboxNeedsUpdate = true
}

// Mark the bbox of this mesh as dirty.
func (m *Mesh) MarkBBoxDirty() {
	m.bboxNeedsUpdate = true
}

// Get mesh bounding box.
func (m *Mesh) BBox() [2]types.Vec3 {
	if m.bboxNeedsUpdate || m.bbox == [2]types.Vec3{} {
		m.bbox = [2]types.Vec3{
			{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
			{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
		}

		for _, c := range m.Corners {
			if c.Position < 0 || int(c.Position) >= len(m.Positions) {
				continue
			}
			m.bbox[0] = types.MinVec3(m.bbox[0], m.Positions[c.Position])
			m.bbox[1] = types.MaxVec3(m.bbox[1], m.Positions[c.Position])
		}

		m.bboxNeedsUpdate = false
	}

	return m.bbox
}

// Verify that the corner list describes whole triangles and that every corner
// references existing attributes. Returned errors wrap ErrCorruptMesh.
func (m *Mesh) Validate() error {
	if len(m.Corners)%3 != 0 {
		return fmt.Errorf("%w: %q has %d corners which is not a multiple of 3", ErrCorruptMesh, m.Name, len(m.Corners))
	}

	for index, c := range m.Corners {
		if err := m.checkCorner(c); err != nil {
			return fmt.Errorf("%w: %q triangle %d: %s", ErrCorruptMesh, m.Name, index/3, err.Error())
		}
	}

	return nil
}

func (m *Mesh) checkCorner(c Corner) error {
	if c.Position < 0 || int(c.Position) >= len(m.Positions) {
		return fmt.Errorf("position index %d out of range [0, %d)", c.Position, len(m.Positions))
	}
	if c.Normal < 0 || int(c.Normal) >= len(m.Normals) {
		return fmt.Errorf("normal index %d out of range [0, %d)", c.Normal, len(m.Normals))
	}
	if c.UV < 0 || int(c.UV) >= len(m.UVs) {
		return fmt.Errorf("uv index %d out of range [0, %d)", c.UV, len(m.UVs))
	}
	return nil
}
