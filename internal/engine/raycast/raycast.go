// Package raycast answers exact surface queries against a triangle mesh:
// nearest forward ray intersection and closest surface point. Queries run
// through a Context that owns the spatial index, keyed by mesh version.
package raycast

import (
	"github.com/chewxy/math32"

	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/mesh"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/spatial"
	"github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"
)

// Hit describes a surface query result.
type Hit struct {
	T        float32
	TriIndex int
	Bary     math.Vec3
	Position math.Vec3
	Normal   math.Vec3
}

// Context caches one BVH per mesh version. The scene owns a Context and
// hands it to the solver; there is no package-global state.
type Context struct {
	bvh     spatial.BVH
	version uint64
	built   bool
}

// Index returns the BVH for m, rebuilding it if the mesh version changed
// since the last query.
func (c *Context) Index(m *mesh.TriMesh) *spatial.BVH {
	if m == nil {
		return nil
	}
	if !c.built || c.version != m.Version() {
		c.bvh.Build(m)
		c.version = m.Version()
		c.built = true
	}
	return &c.bvh
}

// RayTriangle runs the Möller–Trumbore intersection test. On hit it returns
// the ray parameter and barycentric coordinates (w0, w1, w2 summing to 1).
func RayTriangle(ro, rd, a, b, c math.Vec3) (t float32, bary math.Vec3, ok bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := rd.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < 1e-8 {
		return 0, math.Vec3{}, false
	}
	invDet := 1 / det
	s := ro.Sub(a)
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, math.Vec3{}, false
	}
	q := s.Cross(e1)
	v := rd.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, math.Vec3{}, false
	}
	t = e2.Dot(q) * invDet
	if t < 0 {
		return 0, math.Vec3{}, false
	}
	return t, math.Vec3{X: 1 - u - v, Y: u, Z: v}, true
}

// Mesh finds the nearest forward intersection of the ray with the mesh.
// The hit normal is the interpolated vertex normal when the mesh has
// normals, the geometric face normal otherwise.
func (c *Context) Mesh(m *mesh.TriMesh, origin, dir math.Vec3) (Hit, bool) {
	if m == nil || len(m.Positions) == 0 || len(m.Indices) == 0 {
		return Hit{}, false
	}
	bvh := c.Index(m)

	bestT := math32.Inf(1)
	bestTri := -1
	var bestBary math.Vec3

	bvh.Raycast(origin, dir, func(tri int) {
		a, b, cc := m.Triangle(tri)
		t, bary, ok := RayTriangle(origin, dir, a, b, cc)
		if !ok {
			return
		}
		if t < bestT {
			bestT = t
			bestTri = tri
			bestBary = bary
		}
	})

	if bestTri < 0 || math32.IsInf(bestT, 0) {
		return Hit{}, false
	}

	i0, i1, i2 := m.TriangleIndices(bestTri)
	a, b, cc := m.Triangle(bestTri)
	pos := a.Scale(bestBary.X).Add(b.Scale(bestBary.Y)).Add(cc.Scale(bestBary.Z))
	n := b.Sub(a).Cross(cc.Sub(a)).Normalize()
	if len(m.Normals) > 0 {
		n = m.Normals[i0].Scale(bestBary.X).
			Add(m.Normals[i1].Scale(bestBary.Y)).
			Add(m.Normals[i2].Scale(bestBary.Z)).
			Normalize()
	}

	return Hit{
		T:        bestT,
		TriIndex: bestTri,
		Bary:     bestBary,
		Position: pos,
		Normal:   n,
	}, true
}

// NearestOnMesh answers "what point on the surface is closest to p" within
// maxDist. Used to re-bind imported curve roots to a possibly different mesh.
func (c *Context) NearestOnMesh(m *mesh.TriMesh, p math.Vec3, maxDist float32) (Hit, bool) {
	if m == nil || len(m.Positions) == 0 || len(m.Indices) == 0 {
		return Hit{}, false
	}
	bvh := c.Index(m)

	tri, cp, n, ok := bvh.NearestTriangle(p, maxDist)
	if !ok {
		return Hit{}, false
	}

	a, b, cc := m.Triangle(tri)
	return Hit{
		T:        p.Distance(cp),
		TriIndex: tri,
		Bary:     barycentric(cp, a, b, cc),
		Position: cp,
		Normal:   n,
	}, true
}

// barycentric projects p (assumed on the triangle plane) to barycentric
// coordinates, clamped to the valid simplex.
func barycentric(p, a, b, c math.Vec3) math.Vec3 {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if math32.Abs(denom) < 1e-12 {
		return math.Vec3{X: 1}
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	bary := math.Vec3{X: 1 - v - w, Y: v, Z: w}.Clamp01()
	s := bary.X + bary.Y + bary.Z
	if s <= 1e-8 {
		return math.Vec3{X: 1}
	}
	return bary.Scale(1 / s)
}
