package mesh

import (
	"fmt"

	"github.com/giuliom95/baker2/types"
)

// A read-only copy of the attributes of a single mesh triangle.
type Triangle struct {
	P  [3]types.Vec3
	N  [3]types.Vec3
	UV [3]types.Vec2
}

// Materialize the triangle with index ti. An error wrapping ErrCorruptMesh is
// returned if ti or any attribute index referenced by its corners is out of range.
func (m *Mesh) Triangle(ti int) (Triangle, error) {
	var tri Triangle
	if ti < 0 || ti >= m.NumTriangles() {
		return tri, fmt.Errorf("%w: %q triangle index %d out of range [0, %d)", ErrCorruptMesh, m.Name, ti, m.NumTriangles())
	}

	for vi := 0; vi < 3; vi++ {
		c := m.Corners[3*ti+vi]
		if err := m.checkCorner(c); err != nil {
			return tri, fmt.Errorf("%w: %q triangle %d: %s", ErrCorruptMesh, m.Name, ti, err.Error())
		}
		tri.P[vi] = m.Positions[c.Position]
		tri.N[vi] = m.Normals[c.Normal]
		tri.UV[vi] = m.UVs[c.UV]
	}

	return tri, nil
}

// Get the triangle's axis-aligned bounding box.
func (t Triangle) BBox() [2]types.Vec3 {
	return [2]types.Vec3{
		types.MinVec3(t.P[0], types.MinVec3(t.P[1], t.P[2])),
		types.MaxVec3(t.P[0], types.MaxVec3(t.P[1], t.P[2])),
	}
}

// Get the triangle centroid.
func (t Triangle) Center() types.Vec3 {
	return t.P[0].Add(t.P[1]).Add(t.P[2]).Mul(1.0 / 3.0)
}

// Interpolate the corner normals using the barycentric weights of corners 1
// and 2; the weight of corner 0 is 1-u-v. The result is not normalized.
func (t Triangle) InterpolateNormal(u, v float32) types.Vec3 {
	return types.Barycentric3(t.N[0], t.N[1], t.N[2], 1-u-v, u, v)
}
