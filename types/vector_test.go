package types

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 0, 4}.Normalize()
	if l := n.Len(); math32.Abs(l-1) > 1e-6 {
		t.Fatalf("expected normalized vector to have unit length; got %f", l)
	}

	expVal := Vec3{}
	if v := (Vec3{}).Normalize(); v != expVal {
		t.Fatalf("expected zero vector to normalize to %v; got %v", expVal, v)
	}
}

func TestVec3Cross(t *testing.T) {
	type spec struct {
		a, b, exp Vec3
	}
	specs := []spec{
		{Vec3{1, 0, 0}, Vec3{0, 1, 0}, Vec3{0, 0, 1}},
		{Vec3{0, 1, 0}, Vec3{0, 0, 1}, Vec3{1, 0, 0}},
		{Vec3{0, 0, 1}, Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		{Vec3{1, 0, 0}, Vec3{1, 0, 0}, Vec3{}},
	}

	for idx, s := range specs {
		if got := s.a.Cross(s.b); got != s.exp {
			t.Fatalf("[spec %d] expected cross product to be %v; got %v", idx, s.exp, got)
		}
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Fatal("expected vector to be finite")
	}
	if (Vec3{math32.NaN(), 0, 0}).IsFinite() {
		t.Fatal("expected vector with a NaN component not to be finite")
	}
	if (Vec3{0, math32.Inf(-1), 0}).IsFinite() {
		t.Fatal("expected vector with an infinite component not to be finite")
	}
}

func TestSignedArea(t *testing.T) {
	a, b, c := Vec2{0, 0}, Vec2{1, 0}, Vec2{0, 1}
	if area := SignedArea(a, b, c); area != 0.5 {
		t.Fatalf("expected ccw area to be 0.5; got %f", area)
	}
	if area := SignedArea(a, c, b); area != -0.5 {
		t.Fatalf("expected cw area to be -0.5; got %f", area)
	}
	if area := SignedArea(a, b, Vec2{2, 0}); area != 0 {
		t.Fatalf("expected collinear area to be 0; got %f", area)
	}
}

func TestMat2Inverse(t *testing.T) {
	m := Mat2{2, 0, 0, 4}
	inv, ok := m.Inv()
	if !ok {
		t.Fatal("expected matrix to be invertible")
	}
	expVal := Vec2{0.5, 0.25}
	if got := inv.Mul2x1(Vec2{1, 1}); got != expVal {
		t.Fatalf("expected %v; got %v", expVal, got)
	}

	if _, ok = (Mat2{1, 2, 2, 4}).Inv(); ok {
		t.Fatal("expected singular matrix inversion to fail")
	}
}

func TestMat3Transpose(t *testing.T) {
	m := Mat3FromColumns(Vec3{1, 2, 3}, Vec3{4, 5, 6}, Vec3{7, 8, 9})
	if col := m.Col(1); col != (Vec3{4, 5, 6}) {
		t.Fatalf("expected column 1 to be {4 5 6}; got %v", col)
	}

	// Rows of the transpose are the columns of the original matrix
	expVal := Vec3{1*1 + 2*1 + 3*1, 4 + 5 + 6, 7 + 8 + 9}
	if got := m.Transpose().Mul3x1(Vec3{1, 1, 1}); got != expVal {
		t.Fatalf("expected %v; got %v", expVal, got)
	}
}
