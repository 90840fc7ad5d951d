// Package guides manages the editable hair guide curves: root binding to the
// scalp mesh, selection state, picking, and resampling. The physics solver
// mutates curve point buffers in place through this package's accessors.
package guides

import (
	"go.uber.org/zap"

	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/mesh"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/logger"
	"github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"
)

// Settings are the named simulation parameters, one instance per scene.
// User-editable at any time; the solver reads but never mutates them.
type Settings struct {
	DefaultLength        float32 // meters
	DefaultSteps         int     // control points per new curve
	EnableSimulation     bool
	EnableMeshCollision  bool
	EnableCurveCollision bool
	CollisionThickness   float32 // meters
	CollisionFriction    float32 // 0 = slide freely, 1 = fully sticky
	SolverIterations     int
	Gravity              float32 // m/s^2, world units are meters
	Damping              float32 // Verlet velocity damping [0..1]
	Stiffness            float32 // bend stiffness [0..1]
	DragLerp             float32 // mouse drag smoothing [0..1], higher = snappier
}

// DefaultSettings returns the tool's standard simulation parameters.
func DefaultSettings() Settings {
	return Settings{
		DefaultLength:        0.3,
		DefaultSteps:         12,
		EnableSimulation:     true,
		EnableMeshCollision:  true,
		EnableCurveCollision: false,
		CollisionThickness:   0.002,
		CollisionFriction:    1.0,
		SolverIterations:     24,
		Gravity:              0.0,
		Damping:              0.9,
		Stiffness:            0.1,
		DragLerp:             0.35,
	}
}

// RootBinding pins a curve's first point to a mesh triangle via barycentric
// coordinates. TriIndex -1 means unbound.
type RootBinding struct {
	TriIndex int
	Bary     math.Vec3
}

// Bound reports whether the root is attached to a triangle.
func (r RootBinding) Bound() bool {
	return r.TriIndex >= 0
}

// Curve is one hair guide: an ordered polyline of control points plus the
// previous-position shadow array used for Verlet velocity.
type Curve struct {
	Root           RootBinding
	Points         []math.Vec3
	PrevPoints     []math.Vec3
	SegmentRestLen float32
}

// Set owns all guide curves and their selection state.
type Set struct {
	curves   []Curve
	selected []bool
	active   int
}

// NewSet returns an empty guide set.
func NewSet() *Set {
	return &Set{active: -1}
}

// Clear removes all curves and selection.
func (s *Set) Clear() {
	s.curves = s.curves[:0]
	s.selected = s.selected[:0]
	s.active = -1
}

// Count returns the number of curves.
func (s *Set) Count() int {
	return len(s.curves)
}

// Curve returns a pointer to curve idx for in-place mutation.
func (s *Set) Curve(idx int) *Curve {
	return &s.curves[idx]
}

// sanitizeBary clamps barycentrics to [0,1] and renormalizes them to sum to
// 1, substituting the first vertex for non-finite or collapsed input.
func sanitizeBary(b math.Vec3) math.Vec3 {
	if !b.IsFinite() {
		return math.Vec3{X: 1}
	}
	b = b.Clamp01()
	sum := b.X + b.Y + b.Z
	if sum <= 1e-8 {
		return math.Vec3{X: 1}
	}
	return b.Scale(1 / sum)
}

// AddCurveOnMesh creates a curve rooted at the given surface pick: steps
// points laid out evenly along the hit normal from the bound surface point,
// with exactly zero initial velocity. Returns the new curve index, or -1 if
// the hit data is unusable.
func (s *Set) AddCurveOnMesh(m *mesh.TriMesh, triIndex int, bary, hitPos, hitNormal math.Vec3, settings Settings) int {
	var c Curve

	// An invalid triangle index still spawns the curve, just unpinned; it
	// must never be dereferenced during physics.
	if m != nil && m.ValidTriangle(triIndex) {
		c.Root.TriIndex = triIndex
		c.Root.Bary = sanitizeBary(bary)
	} else {
		c.Root.TriIndex = -1
		c.Root.Bary = math.Vec3{X: 1}
		triCount := 0
		if m != nil {
			triCount = m.TriangleCount()
		}
		logger.Warn("curve spawned with invalid triangle index, root unpinned",
			zap.Int("triIndex", triIndex), zap.Int("meshTris", triCount))
	}

	if !hitPos.IsFinite() || !hitNormal.IsFinite() {
		logger.Error("rejecting curve: non-finite hit position or normal")
		return -1
	}

	dir := hitNormal.Normalize()
	if dir.LengthSq() < 0.5 || !dir.IsFinite() {
		logger.Warn("degenerate hit normal, growing curve along +Y")
		dir = math.Vec3{Y: 1}
	}

	steps := clampInt(settings.DefaultSteps, 2, 256)
	length := maxf(0.001, settings.DefaultLength)
	c.SegmentRestLen = length / float32(steps-1)

	// Grow from the bound surface point, not the raw hit position, so the
	// root matches what UpdatePinnedRootsFromMesh will produce next tick.
	rootPos := hitPos
	if c.Root.Bound() {
		a, b, cc := m.Triangle(c.Root.TriIndex)
		rootPos = a.Scale(c.Root.Bary.X).Add(b.Scale(c.Root.Bary.Y)).Add(cc.Scale(c.Root.Bary.Z))
	}

	c.Points = make([]math.Vec3, steps)
	c.PrevPoints = make([]math.Vec3, steps)
	for i := 0; i < steps; i++ {
		t := float32(i) / float32(steps-1)
		p := rootPos.Add(dir.Scale(length * t))
		c.Points[i] = p
		c.PrevPoints[i] = p
	}

	s.curves = append(s.curves, c)
	s.selected = append(s.selected, false)
	return len(s.curves) - 1
}

// UpdatePinnedRootsFromMesh re-derives every bound curve's root point from
// the current triangle geometry. Roots whose binding no longer resolves are
// unpinned rather than dereferenced.
func (s *Set) UpdatePinnedRootsFromMesh(m *mesh.TriMesh) {
	if m == nil || len(m.Positions) == 0 || len(m.Indices) == 0 {
		return
	}

	for ci := range s.curves {
		c := &s.curves[ci]
		if !c.Root.Bound() {
			continue
		}
		if !m.ValidTriangle(c.Root.TriIndex) {
			stale := c.Root.TriIndex
			c.Root.TriIndex = -1
			logger.Warn("curve root binding no longer resolves, unpinning",
				zap.Int("curve", ci), zap.Int("triIndex", stale), zap.Int("meshTris", m.TriangleCount()))
			continue
		}

		c.Root.Bary = sanitizeBary(c.Root.Bary)
		a, b, cc := m.Triangle(c.Root.TriIndex)
		p := a.Scale(c.Root.Bary.X).Add(b.Scale(c.Root.Bary.Y)).Add(cc.Scale(c.Root.Bary.Z))
		if !p.IsFinite() {
			c.Root.TriIndex = -1
			logger.Warn("root evaluation produced non-finite position, unpinning", zap.Int("curve", ci))
			continue
		}

		if len(c.Points) > 0 {
			c.Points[0] = p
			c.PrevPoints[0] = p
		}
	}
}

// MoveControlPoint sets a non-root vertex to worldPos with zero local
// velocity. The solver propagates the change through constraints; moving
// only the grabbed vertex avoids large instantaneous corrections.
func (s *Set) MoveControlPoint(curveIdx, vertIdx int, worldPos math.Vec3) {
	if curveIdx < 0 || curveIdx >= len(s.curves) {
		return
	}
	c := &s.curves[curveIdx]
	if vertIdx <= 0 || vertIdx >= len(c.Points) {
		return
	}
	if !worldPos.IsFinite() {
		logger.Error("ignoring non-finite control point position",
			zap.Int("curve", curveIdx), zap.Int("vert", vertIdx))
		return
	}

	c.Points[vertIdx] = worldPos
	c.PrevPoints[vertIdx] = worldPos
}

// RemoveCurve deletes curve curveIdx, keeping selection indices consistent.
func (s *Set) RemoveCurve(curveIdx int) {
	if curveIdx < 0 || curveIdx >= len(s.curves) {
		return
	}
	s.curves = append(s.curves[:curveIdx], s.curves[curveIdx+1:]...)
	s.selected = append(s.selected[:curveIdx], s.selected[curveIdx+1:]...)

	if s.active == curveIdx {
		s.active = -1
		for i, sel := range s.selected {
			if sel {
				s.active = i
				break
			}
		}
	} else if s.active > curveIdx {
		s.active--
	}
}

// RemoveCurves deletes the given curves. Indices must be in descending order
// so earlier removals do not shift later ones.
func (s *Set) RemoveCurves(descending []int) {
	for _, idx := range descending {
		s.RemoveCurve(idx)
	}
}

// IsSelected reports whether curve curveIdx is selected.
func (s *Set) IsSelected(curveIdx int) bool {
	if curveIdx < 0 || curveIdx >= len(s.selected) {
		return false
	}
	return s.selected[curveIdx]
}

// ActiveCurve returns the most recently selected curve, or -1.
func (s *Set) ActiveCurve() int {
	return s.active
}

// DeselectAll clears the selection.
func (s *Set) DeselectAll() {
	for i := range s.selected {
		s.selected[i] = false
	}
	s.active = -1
}

// SelectCurve selects curveIdx and makes it active. Non-additive selection
// replaces the current selection.
func (s *Set) SelectCurve(curveIdx int, additive bool) {
	if curveIdx < 0 || curveIdx >= len(s.curves) {
		return
	}
	if !additive {
		s.DeselectAll()
	}
	s.selected[curveIdx] = true
	s.active = curveIdx
}

// ToggleSelected flips curve curveIdx's selection state.
func (s *Set) ToggleSelected(curveIdx int) {
	if curveIdx < 0 || curveIdx >= len(s.curves) {
		return
	}
	s.selected[curveIdx] = !s.selected[curveIdx]
	if s.selected[curveIdx] {
		s.active = curveIdx
	} else if s.active == curveIdx {
		s.active = -1
		for i, sel := range s.selected {
			if sel {
				s.active = i
				break
			}
		}
	}
}

// SelectedCurves returns the indices of all selected curves in order.
func (s *Set) SelectedCurves() []int {
	out := make([]int, 0, len(s.selected))
	for i, sel := range s.selected {
		if sel {
			out = append(out, i)
		}
	}
	return out
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
