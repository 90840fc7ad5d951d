// Package mesh provides the triangle mesh data model consumed by the
// simulation. Meshes are immutable per load; in-place edits must bump the
// version so spatial indices rebuild.
package mesh

import (
	"sync/atomic"

	"github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"
)

var versionCounter atomic.Uint64

// TriMesh is an indexed triangle mesh. Positions and Indices are required;
// Normals and UVs are optional and, when present, parallel to Positions.
type TriMesh struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	Indices   []uint32

	BoundsMin math.Vec3
	BoundsMax math.Vec3

	version uint64
}

// New creates a mesh from positions and indices, computes bounds, and assigns
// a fresh version.
func New(positions []math.Vec3, indices []uint32) *TriMesh {
	m := &TriMesh{
		Positions: positions,
		Indices:   indices,
		version:   versionCounter.Add(1),
	}
	m.ComputeBounds()
	return m
}

// Version returns the mesh's monotonically increasing identity counter.
func (m *TriMesh) Version() uint64 {
	return m.version
}

// BumpVersion marks the mesh as changed so cached spatial indices rebuild.
func (m *TriMesh) BumpVersion() {
	m.version = versionCounter.Add(1)
}

// TriangleCount returns the number of triangles.
func (m *TriMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the three corner positions of triangle tri.
// The caller must ensure tri is in range.
func (m *TriMesh) Triangle(tri int) (a, b, c math.Vec3) {
	i0 := m.Indices[tri*3+0]
	i1 := m.Indices[tri*3+1]
	i2 := m.Indices[tri*3+2]
	return m.Positions[i0], m.Positions[i1], m.Positions[i2]
}

// TriangleIndices returns the three vertex indices of triangle tri.
func (m *TriMesh) TriangleIndices(tri int) (i0, i1, i2 uint32) {
	return m.Indices[tri*3+0], m.Indices[tri*3+1], m.Indices[tri*3+2]
}

// ValidTriangle reports whether tri is in range and its vertex indices are
// within the position array.
func (m *TriMesh) ValidTriangle(tri int) bool {
	if tri < 0 || tri >= m.TriangleCount() {
		return false
	}
	i0, i1, i2 := m.TriangleIndices(tri)
	n := uint32(len(m.Positions))
	return i0 < n && i1 < n && i2 < n
}

// ComputeBounds recomputes the axis-aligned bounds from positions.
func (m *TriMesh) ComputeBounds() {
	if len(m.Positions) == 0 {
		m.BoundsMin = math.Vec3{}
		m.BoundsMax = math.Vec3{}
		return
	}
	bmin := m.Positions[0]
	bmax := m.Positions[0]
	for _, p := range m.Positions[1:] {
		bmin = bmin.Min(p)
		bmax = bmax.Max(p)
	}
	m.BoundsMin = bmin
	m.BoundsMax = bmax
}
