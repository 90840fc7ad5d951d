package math

import (
	gomath "math"
	"testing"
)

func almostEqual(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-5
}

func TestVec3AddSub(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	sum := a.Add(b)
	if sum != (Vec3{5, 7, 9}) {
		t.Errorf("expected {5 7 9}, got %v", sum)
	}

	diff := b.Sub(a)
	if diff != (Vec3{3, 3, 3}) {
		t.Errorf("expected {3 3 3}, got %v", diff)
	}
}

func TestVec3DotCross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}

	if d := x.Dot(y); d != 0 {
		t.Errorf("expected orthogonal dot 0, got %f", d)
	}

	z := x.Cross(y)
	if z != (Vec3{0, 0, 1}) {
		t.Errorf("expected x cross y = z, got %v", z)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	n := v.Normalize()
	if !almostEqual(n.Length(), 1) {
		t.Errorf("expected unit length, got %f", n.Length())
	}

	// Zero vector must not produce NaN.
	zero := Vec3{}.Normalize()
	if zero != (Vec3{}) {
		t.Errorf("expected zero vector, got %v", zero)
	}
}

func TestVec3Mix(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{2, 4, 6}

	mid := a.Mix(b, 0.5)
	if mid != (Vec3{1, 2, 3}) {
		t.Errorf("expected midpoint {1 2 3}, got %v", mid)
	}
	if a.Mix(b, 0) != a {
		t.Error("expected t=0 to return the first vector")
	}
	if a.Mix(b, 1) != b {
		t.Error("expected t=1 to return the second vector")
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, 3}
	b := Vec3{2, 4, 3}

	if a.Min(b) != (Vec3{1, 4, 3}) {
		t.Errorf("unexpected min: %v", a.Min(b))
	}
	if a.Max(b) != (Vec3{2, 5, 3}) {
		t.Errorf("unexpected max: %v", a.Max(b))
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Error("expected finite vector")
	}

	nan := float32(gomath.NaN())
	if (Vec3{nan, 0, 0}).IsFinite() {
		t.Error("expected NaN vector to be non-finite")
	}

	inf := float32(gomath.Inf(1))
	if (Vec3{0, inf, 0}).IsFinite() {
		t.Error("expected Inf vector to be non-finite")
	}
}

func TestVec3Component(t *testing.T) {
	v := Vec3{7, 8, 9}
	for axis, want := range []float32{7, 8, 9} {
		if got := v.Component(axis); got != want {
			t.Errorf("component %d: expected %f, got %f", axis, want, got)
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-1, 0, 1) != 0 {
		t.Error("expected clamp below range to return lo")
	}
	if Clamp(2, 0, 1) != 1 {
		t.Error("expected clamp above range to return hi")
	}
	if Clamp(0.5, 0, 1) != 0.5 {
		t.Error("expected in-range value to pass through")
	}
}
