// Package scene owns the simulation state: the scalp mesh, the guide set,
// the settings, interaction state, and the fixed-timestep scheduler that
// drives the solver. Everything runs on one thread; edits apply between
// frames, the solver runs within them.
package scene

import (
	"sort"

	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/guides"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/mesh"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/physics"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/raycast"
	"github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"
)

// SchedulerParams control the fixed-timestep accumulator.
type SchedulerParams struct {
	FixedDt     float32 // seconds per solver substep
	MaxFrameDt  float32 // clamp for stalled frames
	MaxSubsteps int     // hard cap per frame, prevents spiral-of-death
}

// DefaultSchedulerParams returns the standard 120 Hz substep configuration.
func DefaultSchedulerParams() SchedulerParams {
	return SchedulerParams{
		FixedDt:     1.0 / 120.0,
		MaxFrameDt:  1.0 / 15.0,
		MaxSubsteps: 8,
	}
}

// Scene is the exclusive owner of the curve list and settings. The solver
// and edit operations mutate them in alternating phases of the same thread.
type Scene struct {
	mesh   *mesh.TriMesh
	index  raycast.Context
	guides *guides.Set
	solver *physics.Solver

	settings guides.Settings
	sched    SchedulerParams

	accumulator float32

	// Interaction state, read by the solver to stabilize dragging.
	dragCurve int
	dragVert  int
	dragging  bool

	gravityOverrideHeld  bool
	gravityOverrideValue float32
}

// New creates an empty scene with default settings.
func New() *Scene {
	return &Scene{
		guides:               guides.NewSet(),
		solver:               physics.NewSolver(),
		settings:             guides.DefaultSettings(),
		sched:                DefaultSchedulerParams(),
		dragCurve:            -1,
		dragVert:             -1,
		gravityOverrideValue: 9.81,
	}
}

// SetMesh replaces the scalp mesh. Existing curves are cleared: their
// bindings reference the old triangle list.
func (s *Scene) SetMesh(m *mesh.TriMesh) {
	s.mesh = m
	s.guides.Clear()
	s.EndDrag()
}

// Mesh returns the current scalp mesh, or nil.
func (s *Scene) Mesh() *mesh.TriMesh {
	return s.mesh
}

// Guides returns the curve set.
func (s *Scene) Guides() *guides.Set {
	return s.guides
}

// Settings returns the mutable simulation settings.
func (s *Scene) Settings() *guides.Settings {
	return &s.settings
}

// SetSchedulerParams overrides the scheduler configuration. Non-positive
// parameters are rejected.
func (s *Scene) SetSchedulerParams(p SchedulerParams) {
	if p.FixedDt > 0 && p.MaxSubsteps > 0 && p.MaxFrameDt > 0 {
		s.sched = p
	}
}

// Index returns the surface query context bound to this scene's mesh cache.
func (s *Scene) Index() *raycast.Context {
	return &s.index
}

// ResetSettingsToDefaults restores simulation settings, keeping mesh and
// curves.
func (s *Scene) ResetSettingsToDefaults() {
	s.settings = guides.DefaultSettings()
}

// Simulate advances the simulation by one rendered frame's wall-clock dt.
// The accumulator converts variable frame time into fixed solver substeps so
// solver stability depends on substep size, not frame rate. Non-positive dt
// leaves every curve untouched.
func (s *Scene) Simulate(dt float32) {
	if !s.settings.EnableSimulation || dt <= 0 || s.mesh == nil {
		return
	}

	s.accumulator += math.Clamp(dt, 0, s.sched.MaxFrameDt)

	steps := 0
	for s.accumulator >= s.sched.FixedDt && steps < s.sched.MaxSubsteps {
		w := physics.World{
			Mesh:       s.mesh,
			Index:      &s.index,
			Guides:     s.guides,
			Settings:   &s.settings,
			DragCurve:  -1,
			DragVert:   -1,
			GravityFor: s.EffectiveGravityForCurve,
		}
		if s.dragging {
			w.DragCurve = s.dragCurve
			w.DragVert = s.dragVert
		}
		s.solver.Step(&w, s.sched.FixedDt)
		s.accumulator -= s.sched.FixedDt
		steps++
	}
}

// SpawnCurveAt casts the ray against the mesh and roots a new curve at the
// hit, selecting it exclusively. Returns the curve index, or -1 on a miss.
func (s *Scene) SpawnCurveAt(origin, dir math.Vec3) int {
	if s.mesh == nil {
		return -1
	}
	hit, ok := s.index.Mesh(s.mesh, origin, dir)
	if !ok {
		return -1
	}
	idx := s.guides.AddCurveOnMesh(s.mesh, hit.TriIndex, hit.Bary, hit.Position, hit.Normal, s.settings)
	if idx >= 0 {
		s.guides.SelectCurve(idx, false)
	}
	return idx
}

// SetGravityOverride holds or releases the temporary gravity override.
func (s *Scene) SetGravityOverride(held bool, value float32) {
	s.gravityOverrideHeld = held
	if held {
		s.gravityOverrideValue = value
	}
}

// EffectiveGravityForCurve returns the gravity magnitude for a curve. While
// the override is held, the active curve gets the override value; with no
// active curve, every curve does.
func (s *Scene) EffectiveGravityForCurve(curveIdx int) float32 {
	if !s.gravityOverrideHeld {
		return s.settings.Gravity
	}
	active := s.guides.ActiveCurve()
	if active >= 0 {
		if curveIdx == active {
			return s.gravityOverrideValue
		}
		return s.settings.Gravity
	}
	return s.gravityOverrideValue
}

// BeginDrag starts a drag session on the given control vertex. The vertex
// must have been picked already (see guides.Set.PickControlPoint).
func (s *Scene) BeginDrag(curveIdx, vertIdx int) {
	if curveIdx < 0 || curveIdx >= s.guides.Count() {
		return
	}
	c := s.guides.Curve(curveIdx)
	if vertIdx <= 0 || vertIdx >= len(c.Points) {
		return
	}
	// Keep the dragged curve active without disturbing multi-selection.
	s.guides.SelectCurve(curveIdx, true)
	s.dragCurve = curveIdx
	s.dragVert = vertIdx
	s.dragging = true
}

// UpdateDrag moves the held vertex toward worldPos, smoothed by DragLerp to
// avoid injecting energy into the solver.
func (s *Scene) UpdateDrag(worldPos math.Vec3) {
	if !s.dragging || s.dragCurve >= s.guides.Count() {
		return
	}
	a := math.Clamp(s.settings.DragLerp, 0.05, 1)
	c := s.guides.Curve(s.dragCurve)
	if s.dragVert >= len(c.Points) {
		return
	}
	p := c.Points[s.dragVert].Mix(worldPos, a)
	s.guides.MoveControlPoint(s.dragCurve, s.dragVert, p)
}

// EndDrag finishes the drag session.
func (s *Scene) EndDrag() {
	s.dragging = false
	s.dragCurve = -1
	s.dragVert = -1
}

// IsDragging reports whether a drag session is active.
func (s *Scene) IsDragging() bool {
	return s.dragging
}

// DragTarget returns the held curve and vertex, or (-1, -1).
func (s *Scene) DragTarget() (curveIdx, vertIdx int) {
	if !s.dragging {
		return -1, -1
	}
	return s.dragCurve, s.dragVert
}

// DeleteSelectedCurves removes every selected curve, ending any drag on one
// of them first.
func (s *Scene) DeleteSelectedCurves() {
	sel := s.guides.SelectedCurves()
	if len(sel) == 0 {
		return
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sel)))

	if s.dragging {
		for _, idx := range sel {
			if idx == s.dragCurve {
				s.EndDrag()
				break
			}
		}
	}

	s.guides.RemoveCurves(sel)
}
