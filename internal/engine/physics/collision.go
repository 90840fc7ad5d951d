package physics

import (
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/guides"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/mesh"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/raycast"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/spatial"
	"github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"
)

type bvhIndex = *spatial.BVH

// insideMeshRayParity classifies p as inside/outside by casting a +X ray and
// counting crossings (odd-even rule). Approximate, but works well for closed
// head meshes; open meshes degrade gracefully to "outside" most of the time.
func insideMeshRayParity(m *mesh.TriMesh, bvh bvhIndex, p math.Vec3) bool {
	ro := p.Add(math.Vec3{X: 1e-5})
	rd := math.Vec3{X: 1}

	count := 0
	bvh.Raycast(ro, rd, func(tri int) {
		a, b, c := m.Triangle(tri)
		if t, _, ok := raycast.RayTriangle(ro, rd, a, b, c); ok && t > 1e-6 {
			count++
		}
	})

	return count%2 == 1
}

// solveMeshCollision pushes every penetrating non-root point out to the
// collision thickness and rewrites its implied velocity: the normal
// component is zeroed and the tangential component scaled by (1 - friction).
func solveMeshCollision(m *mesh.TriMesh, bvh bvhIndex, c *guides.Curve, gs *guides.Settings) {
	thickness := maxf(1e-6, gs.CollisionThickness)
	friction := math.Clamp(gs.CollisionFriction, 0, 1)

	for i := 1; i < len(c.Points); i++ {
		_, cp, n, ok := bvh.NearestTriangle(c.Points[i], thickness*2)
		if !ok {
			continue
		}
		d := c.Points[i].Sub(cp)
		dist := d.Length()
		if dist >= thickness {
			continue
		}

		inside := insideMeshRayParity(m, bvh, c.Points[i])
		var pushDir math.Vec3
		if dist >= 1e-8 {
			if inside {
				pushDir = d.Scale(-1 / dist)
			} else {
				pushDir = d.Scale(1 / dist)
			}
		} else {
			// Degenerate contact: push along the triangle normal for both
			// parity cases.
			pushDir = n
		}
		c.Points[i] = c.Points[i].Add(pushDir.Scale(thickness - dist))

		nrm := pushDir.Normalize()
		v := c.Points[i].Sub(c.PrevPoints[i])
		vN := nrm.Scale(v.Dot(nrm))
		vT := v.Sub(vN)
		// friction=0 keeps tangential velocity (slide), friction=1 is sticky.
		c.PrevPoints[i] = c.Points[i].Sub(vT.Scale(1 - friction))
	}
}

// applyCurveCurveCollision separates vertices of different selected curves
// that are within the collision radius, pushing each apart by half the
// penetration. Symmetric and mass-agnostic; roots never move.
func applyCurveCurveCollision(w *World) {
	gs := w.Settings
	if !gs.EnableCurveCollision || w.Guides.Count() < 2 {
		return
	}

	r := maxf(1e-5, gs.CollisionThickness)
	r2 := r * r

	for a := 0; a < w.Guides.Count(); a++ {
		if !w.Guides.IsSelected(a) {
			continue
		}
		for b := a + 1; b < w.Guides.Count(); b++ {
			if !w.Guides.IsSelected(b) {
				continue
			}
			ca := w.Guides.Curve(a)
			cb := w.Guides.Curve(b)
			for ia := 1; ia < len(ca.Points); ia++ {
				for ib := 1; ib < len(cb.Points); ib++ {
					d := cb.Points[ib].Sub(ca.Points[ia])
					d2 := d.LengthSq()
					if d2 < 1e-12 || d2 > r2 {
						continue
					}
					dist := d.Length()
					n := d.Scale(1 / dist)
					pen := r - dist
					ca.Points[ia] = ca.Points[ia].Sub(n.Scale(0.5 * pen))
					cb.Points[ib] = cb.Points[ib].Add(n.Scale(0.5 * pen))
				}
			}
		}
	}
}
