package baker

import (
	"github.com/giuliom95/baker2/accel"
	"github.com/giuliom95/baker2/asset/mesh"
	"github.com/giuliom95/baker2/types"
)

type rayOutcome uint8

const (
	// A hit facing the low-poly shell was found.
	rayAccepted rayOutcome = iota

	// Neither the forward nor the backward cast hit anything.
	rayMissed

	// A hit was found but the accepted cast faces away from the shell.
	rayBackFacing
)

// Resolves high-poly normals for low-poly sample points.
type rayCaster struct {
	accel *accel.Accel

	// Corner normals of each high-poly triangle indexed by primitive id.
	normals [][3]types.Vec3

	// Segment length in units of the cast direction.
	depth float32
}

func newRayCaster(a *accel.Accel, high *mesh.Mesh, depth float32) (*rayCaster, error) {
	normals := make([][3]types.Vec3, high.NumTriangles())
	for ti := range normals {
		tri, err := high.Triangle(ti)
		if err != nil {
			return nil, err
		}
		normals[ti] = tri.N
	}

	return &rayCaster{
		accel:   a,
		normals: normals,
		depth:   depth,
	}, nil
}

// Cast a segment of length depth*|dir| from origin and return the
// interpolated normal of the nearest high-poly triangle, or false on a miss.
func (rc *rayCaster) cast(origin, dir types.Vec3) (types.Vec3, bool) {
	hit := rc.accel.NearestHit(origin, dir, 0, rc.depth)
	if !hit.Hit {
		return types.Vec3{}, false
	}

	n := &rc.normals[hit.Primitive]
	return types.Barycentric3(n[0], n[1], n[2], 1-hit.U-hit.V, hit.U, hit.V), true
}

// Find the high-poly normal for a sample and express it in the sample's
// tangent frame. The forward cast along dir is tried first; if it misses or
// hits a surface facing away from the shell the cast is repeated along -dir.
func (rc *rayCaster) castAndResolve(origin, dir types.Vec3, frame *TangentFrame) (types.Vec3, rayOutcome) {
	normal, hit := rc.cast(origin, dir)
	anyHit := hit

	var tangentNormal types.Vec3
	wrongWay := true
	if hit {
		tangentNormal = frame.ToTangent(normal)
		wrongWay = tangentNormal[2] < 0
	}

	if wrongWay || !hit {
		normal, hit = rc.cast(origin, dir.Mul(-1))
		anyHit = anyHit || hit
		if hit {
			tangentNormal = frame.ToTangent(normal)
			wrongWay = tangentNormal[2] < 0
		}
	}

	switch {
	case hit && !wrongWay:
		return tangentNormal, rayAccepted
	case anyHit:
		return types.Vec3{}, rayBackFacing
	}
	return types.Vec3{}, rayMissed
}
