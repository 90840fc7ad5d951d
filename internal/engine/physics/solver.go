// Package physics implements the guide simulation step: Verlet integration
// with iterative position-based constraint relaxation for stretch, bend,
// mesh collision, and curve-curve collision.
package physics

import (
	"go.uber.org/zap"

	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/guides"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/mesh"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/raycast"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/logger"
	"github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"
)

// maxReasonableSpeed is the velocity ceiling in m/s used by the degeneracy
// guard. With a 1/120 s substep this allows about 4 cm of travel per step.
const maxReasonableSpeed = 50.0

// Runaway diagnostic bounds: speeds or positions past these are logged but
// never altered.
const (
	warnSpeed    = 10.0 // m/s
	warnDistance = 5.0  // m from origin
)

// World is the per-step view of the scene the solver operates on. The scene
// assembles one each substep; the solver holds no hidden global state.
type World struct {
	Mesh     *mesh.TriMesh
	Index    *raycast.Context
	Guides   *guides.Set
	Settings *guides.Settings

	// DragCurve/DragVert identify the vertex currently held by the pointer,
	// or -1. While dragging, that vertex is pinned at zero relative velocity
	// so constraints cannot fight the pointer.
	DragCurve int
	DragVert  int

	// GravityFor returns the gravity magnitude for a curve, letting the
	// scene apply a held override to the active curve. Nil means use
	// Settings.Gravity for every curve.
	GravityFor func(curve int) float32
}

// Solver runs the constraint step. It carries only diagnostic rate limiters
// between substeps.
type Solver struct {
	runawayWarn *logger.Limiter
}

// NewSolver returns a ready solver.
func NewSolver() *Solver {
	return &Solver{
		// One warning per second at the default 120 Hz substep rate.
		runawayWarn: logger.NewLimiter(120),
	}
}

// Step advances every selected curve by one fixed substep, then runs the
// curve-curve collision pass. Unselected curves are frozen. dt must be the
// scheduler's fixed substep; non-positive dt is a no-op.
func (s *Solver) Step(w *World, dt float32) {
	if dt <= 0 || w.Mesh == nil || w.Guides == nil || w.Settings == nil {
		return
	}

	// Roots resync before any integration so they carry zero velocity into
	// this step. Required for determinism: no curve may see a stale root.
	w.Guides.UpdatePinnedRootsFromMesh(w.Mesh)

	bvh := w.Index.Index(w.Mesh)

	// Collect curves that went non-finite; removal happens after the loop so
	// indices stay stable.
	var corrupted []int

	for ci := 0; ci < w.Guides.Count(); ci++ {
		if !w.Guides.IsSelected(ci) {
			continue
		}
		c := w.Guides.Curve(ci)
		if len(c.Points) < 2 {
			continue
		}

		if s.stepCurve(w, bvh, ci, c, dt) {
			corrupted = append(corrupted, ci)
		}
	}

	for i := len(corrupted) - 1; i >= 0; i-- {
		logger.Warn("removing corrupted curve", zap.Int("curve", corrupted[i]))
		w.Guides.RemoveCurve(corrupted[i])
	}

	applyCurveCurveCollision(w)
}

// stepCurve advances one curve. Returns true when the curve's positions are
// non-finite and it must be dropped.
func (s *Solver) stepCurve(w *World, bvh bvhIndex, ci int, c *guides.Curve, dt float32) bool {
	gs := w.Settings

	gravityMag := gs.Gravity
	if w.GravityFor != nil {
		gravityMag = w.GravityFor(ci)
	}
	gravity := math.Vec3{Y: -maxf(0, gravityMag)}

	// Shadow array invariant: PrevPoints always matches Points in length.
	if len(c.PrevPoints) != len(c.Points) {
		c.PrevPoints = make([]math.Vec3, len(c.Points))
		copy(c.PrevPoints, c.Points)
	}

	// Kill obviously corrupted velocities before they integrate into drift.
	maxDisp := maxReasonableSpeed * dt
	for i := range c.Points {
		dp := c.Points[i].Sub(c.PrevPoints[i])
		if !dp.IsFinite() || dp.Length() > maxDisp {
			c.PrevPoints[i] = c.Points[i]
		}
	}

	// A non-finite position cannot be recovered locally: drop the curve.
	for i := range c.Points {
		if !c.Points[i].IsFinite() {
			logger.Error("curve vertex has non-finite position",
				zap.Int("curve", ci), zap.Int("vertex", i))
			return true
		}
	}

	damping := math.Clamp(gs.Damping, 0, 1)
	pinnedDrag := -1
	if w.DragCurve == ci && w.DragVert >= 0 && w.DragVert < len(c.Points) {
		pinnedDrag = w.DragVert
		// Held vertex carries zero relative velocity through the step.
		c.PrevPoints[pinnedDrag] = c.Points[pinnedDrag]
	}

	integrateVerlet(c, dt, gravity, pinnedDrag, damping)

	iters := clampInt(gs.SolverIterations, 1, 64)
	rest := c.SegmentRestLen
	if rest <= 0 {
		steps := len(c.Points)
		if steps < 2 {
			steps = 2
		}
		rest = gs.DefaultLength / float32(steps-1)
		c.SegmentRestLen = rest
	}
	bendStiffness := math.Clamp(gs.Stiffness, 0, 1)

	for it := 0; it < iters; it++ {
		solveStretch(c, rest, pinnedDrag)
		if bendStiffness > 0 {
			solveBend(c, rest, bendStiffness, pinnedDrag)
		}
		if gs.EnableMeshCollision {
			solveMeshCollision(w.Mesh, bvh, c, gs)
		}
	}

	s.checkRunaway(ci, c, dt)
	return false
}

// integrateVerlet applies damped Verlet integration to every non-pinned
// point. The root (index 0) is always pinned; pinnedDrag optionally pins a
// second vertex.
func integrateVerlet(c *guides.Curve, dt float32, acc math.Vec3, pinnedDrag int, damping float32) {
	dt2 := dt * dt
	for i := 1; i < len(c.Points); i++ {
		if i == pinnedDrag {
			continue
		}
		x := c.Points[i]
		v := x.Sub(c.PrevPoints[i]).Scale(damping)
		c.PrevPoints[i] = x
		c.Points[i] = x.Add(v).Add(acc.Scale(dt2))
	}
}

// solveDistance applies one PBD distance constraint between p0 and p1 with
// inverse masses w0/w1. Corrections are deliberately unclamped: stretch must
// be eliminated for hair; stability comes from substeps, damping, and
// collision velocity zeroing.
func solveDistance(p0, p1 *math.Vec3, restLen, w0, w1, stiffness float32) {
	d := p1.Sub(*p0)
	length := d.Length()
	if length < 1e-8 {
		return
	}
	wsum := w0 + w1
	if wsum <= 0 {
		return
	}
	n := d.Scale(1 / length)
	corr := n.Scale((length - restLen) / wsum * math.Clamp(stiffness, 0, 1))
	*p0 = p0.Add(corr.Scale(w0))
	*p1 = p1.Sub(corr.Scale(w1))
}

// solveStretch runs the adjacent-pair distance constraints at full strength.
func solveStretch(c *guides.Curve, rest float32, pinnedDrag int) {
	for i := 0; i+1 < len(c.Points); i++ {
		w0 := float32(1)
		if i == 0 || i == pinnedDrag {
			w0 = 0
		}
		w1 := float32(1)
		if i+1 == pinnedDrag {
			w1 = 0
		}
		if w0+w1 <= 0 {
			continue
		}
		solveDistance(&c.Points[i], &c.Points[i+1], rest, w0, w1, 1)
	}
}

// solveBend runs second-neighbor distance constraints at twice the rest
// length, scaled by stiffness. This resists sharp kinks without allowing
// stretch.
func solveBend(c *guides.Curve, rest, stiffness float32, pinnedDrag int) {
	for i := 0; i+2 < len(c.Points); i++ {
		w0 := float32(1)
		if i == 0 || i == pinnedDrag {
			w0 = 0
		}
		w2 := float32(1)
		if i+2 == pinnedDrag {
			w2 = 0
		}
		if w0+w2 <= 0 {
			continue
		}
		solveDistance(&c.Points[i], &c.Points[i+2], rest*2, w0, w2, stiffness)
	}
}

// checkRunaway logs a rate-limited warning when a curve moves implausibly
// fast or far. Diagnostics only; state is never altered here.
func (s *Solver) checkRunaway(ci int, c *guides.Curve, dt float32) {
	var maxVel, maxDist float32
	for i := range c.Points {
		vel := c.Points[i].Sub(c.PrevPoints[i]).Length() / dt
		if vel > maxVel {
			maxVel = vel
		}
		dist := c.Points[i].Length()
		if dist > maxDist {
			maxDist = dist
		}
	}
	if maxVel > warnSpeed || maxDist > warnDistance {
		s.runawayWarn.Warn("curve approaching instability",
			zap.Int("curve", ci),
			zap.Float32("maxSpeed", maxVel),
			zap.Float32("maxDistance", maxDist))
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
