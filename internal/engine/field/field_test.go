package field

import (
	"testing"

	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/mesh"
	"github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"
)

func TestBuildAndLookup(t *testing.T) {
	m := mesh.NewUVSphere(math.Vec3{}, 0.5, 10, 14)
	var f NearestSurface

	if !f.Build(m, 32, 0.1) {
		t.Fatal("expected build to succeed")
	}
	if !f.Valid() {
		t.Fatal("expected a valid field")
	}
	if f.Resolution() != 32 {
		t.Errorf("expected resolution 32, got %d", f.Resolution())
	}

	// A point near the sphere maps to a stored surface point close to the
	// sphere shell; one voxel of quantization error is expected.
	p := math.Vec3{X: 0.4}
	cp, n, ok := f.Lookup(p)
	if !ok {
		t.Fatal("expected an in-grid lookup to succeed")
	}
	tol := 2 * f.VoxelSize()
	d := cp.Distance(math.Vec3{})
	if d < 0.5-tol || d > 0.5+tol {
		t.Errorf("stored closest point %v at radius %f, want ~0.5", cp, d)
	}
	if n.Length() < 0.9 {
		t.Errorf("expected a unit-ish normal, got %v", n)
	}

	// Outside the grid.
	if _, _, ok := f.Lookup(math.Vec3{X: 50}); ok {
		t.Error("expected out-of-grid lookup to fail")
	}
}

func TestBuildRejectsUnusableMeshes(t *testing.T) {
	var f NearestSurface

	if f.Build(nil, 32, 0.1) {
		t.Error("expected build on nil mesh to fail")
	}
	if f.Build(mesh.New(nil, nil), 32, 0.1) {
		t.Error("expected build on empty mesh to fail")
	}
	if f.Valid() {
		t.Error("expected field to stay invalid after failed builds")
	}
	if _, _, ok := f.Lookup(math.Vec3{}); ok {
		t.Error("expected lookup on unbuilt field to fail")
	}
}

func TestResolutionClamped(t *testing.T) {
	m := mesh.NewPlane(0, 1)
	var f NearestSurface

	if !f.Build(m, 2, 0) {
		t.Fatal("expected build to succeed")
	}
	if f.Resolution() != 16 {
		t.Errorf("expected resolution clamped to 16, got %d", f.Resolution())
	}
}
