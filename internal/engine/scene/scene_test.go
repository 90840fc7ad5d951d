package scene

import (
	gomath "math"
	"testing"

	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/mesh"
	"github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"
)

func newPlaneScene() *Scene {
	s := New()
	s.SetMesh(mesh.NewPlane(0, 1))
	return s
}

// spawnAt drops a vertical ray onto the plane at (x, z).
func spawnAt(t *testing.T, s *Scene, x, z float32) int {
	t.Helper()
	idx := s.SpawnCurveAt(math.Vec3{X: x, Y: 1, Z: z}, math.Vec3{Y: -1})
	if idx < 0 {
		t.Fatalf("spawn at (%f, %f) missed the mesh", x, z)
	}
	return idx
}

func TestSpawnCurveAt(t *testing.T) {
	s := newPlaneScene()

	idx := spawnAt(t, s, 0.2, 0.3)
	if s.Guides().Count() != 1 {
		t.Fatalf("expected 1 curve, got %d", s.Guides().Count())
	}
	if !s.Guides().IsSelected(idx) || s.Guides().ActiveCurve() != idx {
		t.Error("expected spawned curve selected and active")
	}

	c := s.Guides().Curve(idx)
	root := c.Points[0]
	if gomath.Abs(float64(root.X-0.2)) > 1e-4 || gomath.Abs(float64(root.Z-0.3)) > 1e-4 {
		t.Errorf("root not under the ray: %v", root)
	}
	if gomath.Abs(float64(root.Y)) > 1e-5 {
		t.Errorf("root not on the surface: %v", root)
	}

	// Ray pointing away from the mesh misses.
	if got := s.SpawnCurveAt(math.Vec3{Y: 1}, math.Vec3{Y: 1}); got != -1 {
		t.Errorf("expected miss to return -1, got %d", got)
	}
	if s.Guides().Count() != 1 {
		t.Errorf("miss must not add a curve, have %d", s.Guides().Count())
	}
}

func TestSpawnWithoutMesh(t *testing.T) {
	s := New()
	if got := s.SpawnCurveAt(math.Vec3{Y: 1}, math.Vec3{Y: -1}); got != -1 {
		t.Errorf("expected -1 with no mesh, got %d", got)
	}
}

func TestSimulateNoOp(t *testing.T) {
	s := newPlaneScene()
	s.Settings().Gravity = 9.8
	idx := spawnAt(t, s, 0.2, 0.2)
	c := s.Guides().Curve(idx)

	before := make([]math.Vec3, len(c.Points))
	copy(before, c.Points)

	s.Simulate(0)
	s.Simulate(-1)
	s.Settings().EnableSimulation = false
	s.Simulate(1.0 / 60.0)

	for i := range c.Points {
		if c.Points[i] != before[i] {
			t.Fatalf("vertex %d moved without an enabled positive-dt tick", i)
		}
	}
}

func TestSimulateAppliesGravity(t *testing.T) {
	s := newPlaneScene()
	s.Settings().Gravity = 9.8
	s.Settings().EnableMeshCollision = false
	idx := spawnAt(t, s, 0.2, 0.2)
	c := s.Guides().Curve(idx)
	tipBefore := c.Points[len(c.Points)-1]

	s.Simulate(s.sched.FixedDt)

	tip := c.Points[len(c.Points)-1]
	if tip.Y >= tipBefore.Y {
		t.Errorf("expected gravity to pull the tip down, %v -> %v", tipBefore, tip)
	}
	if !tip.IsFinite() {
		t.Error("tip is non-finite after one tick")
	}
}

func TestSchedulerSubstepCap(t *testing.T) {
	s := newPlaneScene()
	spawnAt(t, s, 0.2, 0.2)
	s.SetSchedulerParams(SchedulerParams{
		FixedDt:     1.0 / 120.0,
		MaxFrameDt:  1.0 / 15.0,
		MaxSubsteps: 2,
	})

	// A stalled frame is clamped to MaxFrameDt, then at most MaxSubsteps
	// substeps run; the rest stays in the accumulator.
	s.Simulate(10)

	want := 1.0/15.0 - 2.0/120.0
	if gomath.Abs(float64(s.accumulator)-want) > 1e-4 {
		t.Errorf("accumulator after capped frame: got %f, want %f", s.accumulator, want)
	}
}

func TestAccumulatorCarriesRemainder(t *testing.T) {
	s := newPlaneScene()
	spawnAt(t, s, 0.2, 0.2)

	dt := s.sched.FixedDt * 1.5
	s.Simulate(dt)

	want := float64(s.sched.FixedDt) * 0.5
	if gomath.Abs(float64(s.accumulator)-want) > 1e-5 {
		t.Errorf("accumulator remainder: got %f, want %f", s.accumulator, want)
	}
}

func TestSetSchedulerParamsRejectsInvalid(t *testing.T) {
	s := New()
	before := s.sched
	s.SetSchedulerParams(SchedulerParams{FixedDt: 0, MaxFrameDt: 1, MaxSubsteps: 8})
	s.SetSchedulerParams(SchedulerParams{FixedDt: 0.01, MaxFrameDt: 0, MaxSubsteps: 8})
	s.SetSchedulerParams(SchedulerParams{FixedDt: 0.01, MaxFrameDt: 1, MaxSubsteps: 0})
	if s.sched != before {
		t.Error("invalid scheduler params must be rejected")
	}
}

func TestGravityOverride(t *testing.T) {
	s := newPlaneScene()
	s.Settings().Gravity = 0
	a := spawnAt(t, s, 0.1, 0.1)
	b := spawnAt(t, s, 0.3, 0.3) // active after exclusive select

	if g := s.EffectiveGravityForCurve(a); g != 0 {
		t.Errorf("no override held, want settings gravity 0, got %f", g)
	}

	s.SetGravityOverride(true, 9.81)
	if g := s.EffectiveGravityForCurve(b); g != 9.81 {
		t.Errorf("active curve should get override, got %f", g)
	}
	if g := s.EffectiveGravityForCurve(a); g != 0 {
		t.Errorf("inactive curve should keep settings gravity, got %f", g)
	}

	// With no active curve, every curve gets the override.
	s.Guides().DeselectAll()
	if g := s.EffectiveGravityForCurve(a); g != 9.81 {
		t.Errorf("override with no active curve should apply to all, got %f", g)
	}

	s.SetGravityOverride(false, 0)
	if g := s.EffectiveGravityForCurve(a); g != 0 {
		t.Errorf("released override should restore settings gravity, got %f", g)
	}
}

func TestDragSession(t *testing.T) {
	s := newPlaneScene()
	idx := spawnAt(t, s, 0.2, 0.2)
	c := s.Guides().Curve(idx)

	// Roots cannot be dragged.
	s.BeginDrag(idx, 0)
	if s.IsDragging() {
		t.Fatal("dragging the root must be rejected")
	}

	s.BeginDrag(idx, 5)
	if !s.IsDragging() {
		t.Fatal("expected drag session active")
	}
	if ci, vi := s.DragTarget(); ci != idx || vi != 5 {
		t.Fatalf("drag target (%d, %d), want (%d, 5)", ci, vi, idx)
	}

	target := math.Vec3{X: 0.5, Y: 0.2, Z: 0.2}
	before := c.Points[5]
	s.UpdateDrag(target)

	want := before.Mix(target, s.Settings().DragLerp)
	if c.Points[5].Distance(want) > 1e-6 {
		t.Errorf("dragged vertex at %v, want lerped %v", c.Points[5], want)
	}
	if c.PrevPoints[5] != c.Points[5] {
		t.Error("drag must leave the vertex with zero velocity")
	}

	s.EndDrag()
	if s.IsDragging() {
		t.Error("expected drag session ended")
	}
	if ci, vi := s.DragTarget(); ci != -1 || vi != -1 {
		t.Errorf("drag target after end: (%d, %d)", ci, vi)
	}
}

func TestDeleteSelectedEndsDrag(t *testing.T) {
	s := newPlaneScene()
	spawnAt(t, s, 0.1, 0.1)
	b := spawnAt(t, s, 0.3, 0.3)
	s.Guides().SelectCurve(0, false)
	s.Guides().SelectCurve(b, true)

	s.BeginDrag(b, 3)
	s.DeleteSelectedCurves()

	if s.Guides().Count() != 0 {
		t.Errorf("expected all selected curves removed, have %d", s.Guides().Count())
	}
	if s.IsDragging() {
		t.Error("drag on a deleted curve must end")
	}
}

func TestSetMeshClearsCurves(t *testing.T) {
	s := newPlaneScene()
	spawnAt(t, s, 0.2, 0.2)
	s.BeginDrag(0, 2)

	s.SetMesh(mesh.NewPlane(0.5, 2))

	if s.Guides().Count() != 0 {
		t.Errorf("expected curves cleared on mesh replace, have %d", s.Guides().Count())
	}
	if s.IsDragging() {
		t.Error("expected drag ended on mesh replace")
	}
}

func TestResetSettingsToDefaults(t *testing.T) {
	s := newPlaneScene()
	s.Settings().Gravity = 42
	s.Settings().SolverIterations = 3
	spawnAt(t, s, 0.2, 0.2)

	s.ResetSettingsToDefaults()

	if s.Settings().Gravity != 0 || s.Settings().SolverIterations != 24 {
		t.Error("expected settings restored to defaults")
	}
	if s.Guides().Count() != 1 {
		t.Error("reset must not touch curves")
	}
}
