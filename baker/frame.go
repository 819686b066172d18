package baker

import (
	"github.com/chewxy/math32"
	"github.com/giuliom95/baker2/asset/mesh"
	"github.com/giuliom95/baker2/types"
)

const (
	// Offset applied to the sample uv along U to find the tangent direction.
	tangentProbeOffset float32 = 0.01

	// UV triangles with a smaller absolute area are considered degenerate.
	minUVArea float32 = 1e-12
)

// An orthonormal (tangent, bitangent, normal) frame at a point on a low-poly
// triangle.
type TangentFrame struct {
	Tangent   types.Vec3
	Bitangent types.Vec3
	Normal    types.Vec3

	// Transpose of the basis whose columns are (tangent, bitangent, normal).
	worldToTangent types.Mat3
}

// Build the tangent frame for the point pos with texture coordinate uv and
// surface normal on tri. The tangent follows the direction in which U grows
// across the triangle. The second return value is false when the uv mapping
// or the geometry is degenerate at this point.
func NewTangentFrame(tri mesh.Triangle, uv types.Vec2, pos, normal types.Vec3) (TangentFrame, bool) {
	var frame TangentFrame

	area := types.SignedArea(tri.UV[0], tri.UV[1], tri.UV[2])
	if !(math32.Abs(area) >= minUVArea) {
		return frame, false
	}

	n := normal.Normalize()
	if n == (types.Vec3{}) {
		return frame, false
	}

	// Reweight the original corners for a point slightly further along U
	probe := types.Vec2{uv[0] + tangentProbeOffset, uv[1]}
	w0 := types.SignedArea(probe, tri.UV[1], tri.UV[2]) / area
	w1 := types.SignedArea(tri.UV[0], probe, tri.UV[2]) / area
	w2 := types.SignedArea(tri.UV[0], tri.UV[1], probe) / area
	probePos := types.Barycentric3(tri.P[0], tri.P[1], tri.P[2], w0, w1, w2)

	rawTangent := probePos.Sub(pos)
	bitangent := n.Cross(rawTangent).Normalize()
	if bitangent == (types.Vec3{}) {
		return frame, false
	}
	tangent := bitangent.Cross(n)

	if !tangent.IsFinite() || !bitangent.IsFinite() || !n.IsFinite() {
		return frame, false
	}

	frame.Tangent = tangent
	frame.Bitangent = bitangent
	frame.Normal = n
	frame.worldToTangent = types.Mat3FromColumns(tangent, bitangent, n).Transpose()
	return frame, true
}

// Express a world-space vector in this frame.
func (f *TangentFrame) ToTangent(v types.Vec3) types.Vec3 {
	return f.worldToTangent.Mul3x1(v)
}
