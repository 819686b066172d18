package accel

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/giuliom95/baker2/asset/compiler/bvh"
	"github.com/giuliom95/baker2/asset/mesh"
	"github.com/giuliom95/baker2/log"
	"github.com/giuliom95/baker2/types"
)

const (
	// The builder creates leafs once a node holds this many triangles.
	minLeafTriangles = 4

	// Rays whose direction is (almost) parallel to a triangle plane miss it.
	parallelEpsilon float32 = 1e-20

	// Far slab distances are scaled by this factor to compensate for
	// float32 rounding when a segment grazes a node bbox.
	slabTolerance float32 = 1 + 4e-7
)

// The result of a nearest hit query. U and V are the barycentric weights of
// the hit triangle's second and third corner; the first corner's weight is
// 1-U-V.
type Hit struct {
	Hit       bool
	Primitive int
	U, V      float32
	T         float32
}

// Accel answers nearest-hit segment queries against the triangles of a mesh.
// It is immutable after Build and safe for concurrent use.
type Accel struct {
	nodes []bvh.Node

	// Triangles stored in leaf order.
	tris []triangle

	numTriangles int
	stats        bvh.Stats
	buildTime    time.Duration
}

type triangle struct {
	v0, e1, e2 types.Vec3
	id         int
}

// A triangle reference with a cached bbox used while building the BVH.
type primRef struct {
	bbox   [2]types.Vec3
	center types.Vec3
	id     int
}

func (p *primRef) BBox() [2]types.Vec3 {
	return p.bbox
}

func (p *primRef) Center() types.Vec3 {
	return p.center
}

// Build an acceleration structure over all triangles of m. Triangles keep
// their mesh index as primitive id.
func Build(m *mesh.Mesh) (*Accel, error) {
	logger := log.New("accel")
	start := time.Now()

	numTris := m.NumTriangles()
	refs := make([]primRef, numTris)
	workList := make([]bvh.BoundedVolume, numTris)
	geometry := make([]triangle, numTris)
	for ti := 0; ti < numTris; ti++ {
		tri, err := m.Triangle(ti)
		if err != nil {
			return nil, fmt.Errorf("accel: %w", err)
		}

		refs[ti] = primRef{bbox: tri.BBox(), center: tri.Center(), id: ti}
		workList[ti] = &refs[ti]
		geometry[ti] = triangle{
			v0: tri.P[0],
			e1: tri.P[1].Sub(tri.P[0]),
			e2: tri.P[2].Sub(tri.P[0]),
			id: ti,
		}
	}

	a := &Accel{
		tris:         make([]triangle, 0, numTris),
		numTriangles: numTris,
	}
	a.nodes, a.stats = bvh.Build(workList, minLeafTriangles, func(leaf *bvh.Node, items []bvh.BoundedVolume) {
		leaf.SetPrimitives(uint32(len(a.tris)), uint32(len(items)))
		for _, item := range items {
			a.tris = append(a.tris, geometry[item.(*primRef).id])
		}
	}, bvh.SurfaceAreaHeuristic)
	a.buildTime = time.Since(start)

	logger.Infof(
		"built acceleration structure for %q in %d ms (%d triangles, %d nodes, %d leafs, depth %d)",
		m.Name, a.buildTime.Nanoseconds()/1e6, numTris, a.stats.Nodes, a.stats.Leafs, a.stats.MaxDepth,
	)
	return a, nil
}

// Get the number of indexed triangles.
func (a *Accel) NumTriangles() int {
	return a.numTriangles
}

// Get the BVH build stats.
func (a *Accel) Stats() bvh.Stats {
	return a.stats
}

// Get the time spent building the structure.
func (a *Accel) BuildTime() time.Duration {
	return a.buildTime
}

// Find the nearest triangle intersected by the segment origin + t*dir with
// tNear <= t <= tFar. The direction does not need to be normalized; t is
// expressed in units of its length. When several triangles are hit at the
// same t the one with the lowest primitive id is reported.
func (a *Accel) NearestHit(origin, dir types.Vec3, tNear, tFar float32) Hit {
	hit := Hit{Primitive: -1, T: tFar}
	if len(a.nodes) == 0 {
		return hit
	}

	invDir := types.Vec3{1 / dir[0], 1 / dir[1], 1 / dir[2]}

	var stackBuf [64]uint32
	stack := append(stackBuf[:0], 0)
	for len(stack) > 0 {
		node := &a.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if !intersectBox(node, origin, invDir, tNear, hit.T) {
			continue
		}

		if !node.IsLeaf() {
			left, right := node.Children()
			stack = append(stack, right, left)
			continue
		}

		offset, count := node.Primitives()
		for index := offset; index < offset+count; index++ {
			tri := &a.tris[index]
			t, u, v, ok := intersectTriangle(tri, origin, dir)
			if !ok || t < tNear || t > hit.T {
				continue
			}
			if hit.Hit && t == hit.T && tri.id > hit.Primitive {
				continue
			}
			hit = Hit{Hit: true, Primitive: tri.id, U: u, V: v, T: t}
		}
	}

	if !hit.Hit {
		return Hit{Primitive: -1}
	}
	return hit
}

// Slab test against the node bbox. The interval is closed so that triangles
// lying exactly at tMax are still visited.
func intersectBox(node *bvh.Node, origin, invDir types.Vec3, tMin, tMax float32) bool {
	for axis := 0; axis < 3; axis++ {
		t0 := (node.Min[axis] - origin[axis]) * invDir[axis]
		t1 := (node.Max[axis] - origin[axis]) * invDir[axis]

		// 0 * Inf when the origin lies on a slab plane of a zero direction axis
		if math32.IsNaN(t0) || math32.IsNaN(t1) {
			if origin[axis] < node.Min[axis] || origin[axis] > node.Max[axis] {
				return false
			}
			continue
		}

		if t0 > t1 {
			t0, t1 = t1, t0
		}
		t1 += math32.Abs(t1) * (slabTolerance - 1)
		tMin = math32.Max(tMin, t0)
		tMax = math32.Min(tMax, t1)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// Moller-Trumbore ray/triangle intersection. Returns the ray parameter and
// the barycentric weights of the second and third triangle corner.
func intersectTriangle(tri *triangle, origin, dir types.Vec3) (t, u, v float32, ok bool) {
	h := dir.Cross(tri.e2)
	det := tri.e1.Dot(h)
	if math32.Abs(det) < parallelEpsilon {
		return 0, 0, 0, false
	}

	f := 1 / det
	s := origin.Sub(tri.v0)
	u = f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	q := s.Cross(tri.e1)
	v = f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = f * tri.e2.Dot(q)
	return t, u, v, true
}
