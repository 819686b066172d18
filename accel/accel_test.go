package accel

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/giuliom95/baker2/asset/mesh"
	"github.com/giuliom95/baker2/types"
)

// Build a mesh with one triangle per entry of tris. All corners share a
// single normal and uv.
func triangleMesh(tris [][3]types.Vec3) *mesh.Mesh {
	m := mesh.New("test")
	m.Normals = []types.Vec3{{0, 0, 1}}
	m.UVs = []types.Vec2{{0, 0}}
	for _, tri := range tris {
		base := int32(len(m.Positions))
		m.Positions = append(m.Positions, tri[0], tri[1], tri[2])
		m.AddTriangle(
			mesh.Corner{Position: base},
			mesh.Corner{Position: base + 1},
			mesh.Corner{Position: base + 2},
		)
	}
	return m
}

// A right triangle in the XY plane at height z, offset along X.
func unitTriangle(xOffset, z float32) [3]types.Vec3 {
	return [3]types.Vec3{{xOffset, 0, z}, {xOffset + 1, 0, z}, {xOffset, 1, z}}
}

func buildAccel(t *testing.T, m *mesh.Mesh) *Accel {
	t.Helper()
	a, err := Build(m)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestNearestHitSingleTriangle(t *testing.T) {
	a := buildAccel(t, triangleMesh([][3]types.Vec3{unitTriangle(0, 0)}))

	type spec struct {
		origin, dir types.Vec3
		tFar        float32
		expHit      bool
		expT        float32
	}
	specs := []spec{
		// Hit halfway along an unnormalized direction
		{types.Vec3{0.25, 0.25, 1}, types.Vec3{0, 0, -2}, 1, true, 0.5},
		// Segment too short
		{types.Vec3{0.25, 0.25, 1}, types.Vec3{0, 0, -2}, 0.4, false, 0},
		// Triangle behind the origin
		{types.Vec3{0.25, 0.25, 1}, types.Vec3{0, 0, 2}, 1, false, 0},
		// Origin on the triangle plane; tNear is inclusive
		{types.Vec3{0.25, 0.25, 0}, types.Vec3{0, 0, 1}, 1, true, 0},
		// Outside the triangle
		{types.Vec3{0.75, 0.75, 1}, types.Vec3{0, 0, -1}, 2, false, 0},
		// Parallel to the triangle plane
		{types.Vec3{-1, 0.25, 0}, types.Vec3{1, 0, 0}, 10, false, 0},
	}

	for idx, s := range specs {
		hit := a.NearestHit(s.origin, s.dir, 0, s.tFar)
		if hit.Hit != s.expHit {
			t.Fatalf("[spec %d] expected hit to be %t; got %t", idx, s.expHit, hit.Hit)
		}
		if !s.expHit {
			if hit.Primitive != -1 {
				t.Fatalf("[spec %d] expected primitive -1 for a miss; got %d", idx, hit.Primitive)
			}
			continue
		}
		if math32.Abs(hit.T-s.expT) > 1e-6 || hit.Primitive != 0 {
			t.Fatalf("[spec %d] expected hit with primitive 0 at t=%f; got %+v", idx, s.expT, hit)
		}
	}

	hit := a.NearestHit(types.Vec3{0.25, 0.25, 1}, types.Vec3{0, 0, -2}, 0, 1)
	if math32.Abs(hit.U-0.25) > 1e-6 || math32.Abs(hit.V-0.25) > 1e-6 {
		t.Fatalf("expected barycentrics (0.25, 0.25); got (%f, %f)", hit.U, hit.V)
	}
}

func TestNearestHitPicksClosest(t *testing.T) {
	a := buildAccel(t, triangleMesh([][3]types.Vec3{
		unitTriangle(0, -1),
		unitTriangle(0, 0.5),
		unitTriangle(0, 0),
	}))

	hit := a.NearestHit(types.Vec3{0.2, 0.2, 1}, types.Vec3{0, 0, -4}, 0, 1)
	if !hit.Hit || hit.Primitive != 1 || math32.Abs(hit.T-0.125) > 1e-6 {
		t.Fatalf("expected primitive 1 at t=0.125; got %+v", hit)
	}
}

func TestNearestHitTieBreak(t *testing.T) {
	a := buildAccel(t, triangleMesh([][3]types.Vec3{
		unitTriangle(10, 0),
		unitTriangle(20, 0),
		unitTriangle(0, 0),
		unitTriangle(30, 0),
		unitTriangle(40, 0),
		unitTriangle(0, 0),
	}))

	hit := a.NearestHit(types.Vec3{0.2, 0.2, 1}, types.Vec3{0, 0, -1}, 0, 2)
	if !hit.Hit || hit.Primitive != 2 {
		t.Fatalf("expected coincident triangles to resolve to the lowest primitive id 2; got %+v", hit)
	}
}

func TestNearestHitMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	tris := make([][3]types.Vec3, 0, 600)
	for idx := 0; idx < cap(tris); idx++ {
		p0 := types.Vec3{rng.Float32() * 10, rng.Float32() * 10, rng.Float32() * 10}
		tris = append(tris, [3]types.Vec3{
			p0,
			p0.Add(types.Vec3{rng.Float32(), rng.Float32(), rng.Float32()}),
			p0.Add(types.Vec3{rng.Float32(), rng.Float32(), rng.Float32()}),
		})
	}
	m := triangleMesh(tris)
	a := buildAccel(t, m)

	if a.NumTriangles() != len(tris) || a.Stats().PartitionedItems != len(tris) {
		t.Fatalf("expected all %d triangles to be indexed; got %d", len(tris), a.Stats().PartitionedItems)
	}

	var hits int
	for ray := 0; ray < 2000; ray++ {
		origin := types.Vec3{rng.Float32() * 10, rng.Float32() * 10, rng.Float32() * 10}
		dir := types.Vec3{rng.Float32()*8 - 4, rng.Float32()*8 - 4, rng.Float32()*8 - 4}

		exp := Hit{Primitive: -1, T: 1}
		for ti, tri := range tris {
			geom := triangle{v0: tri[0], e1: tri[1].Sub(tri[0]), e2: tri[2].Sub(tri[0]), id: ti}
			tHit, u, v, ok := intersectTriangle(&geom, origin, dir)
			if !ok || tHit < 0 || tHit > exp.T || (exp.Hit && tHit == exp.T) {
				continue
			}
			exp = Hit{Hit: true, Primitive: ti, U: u, V: v, T: tHit}
		}
		if !exp.Hit {
			exp = Hit{Primitive: -1}
		} else {
			hits++
		}

		got := a.NearestHit(origin, dir, 0, 1)
		if got != exp {
			t.Fatalf("[ray %d] expected %+v; got %+v", ray, exp, got)
		}
	}

	if hits == 0 {
		t.Fatal("expected at least one ray to hit the mesh")
	}
}

func TestBuildRejectsCorruptMesh(t *testing.T) {
	m := triangleMesh([][3]types.Vec3{unitTriangle(0, 0)})
	m.Corners[1].Position = 7

	if _, err := Build(m); err == nil {
		t.Fatal("expected build to fail for out of range position index")
	}
}

func TestEmptyMesh(t *testing.T) {
	a := buildAccel(t, mesh.New("empty"))
	if hit := a.NearestHit(types.Vec3{}, types.Vec3{0, 0, 1}, 0, 1); hit.Hit {
		t.Fatalf("expected empty mesh to never be hit; got %+v", hit)
	}
}
