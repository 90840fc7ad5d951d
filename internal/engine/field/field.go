// Package field provides a precomputed nearest-surface voxel grid over a
// mesh. It trades memory and one BVH sweep at build time for O(1) collision
// lookups, as a drop-in alternative to per-point BVH queries.
package field

import (
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/mesh"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/spatial"
	"github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"
)

// Default build parameters.
const (
	DefaultResolution = 96
	DefaultPadding    = 0.03
)

// NearestSurface is a uniform cubic voxel grid storing, per voxel, the
// closest point on the mesh surface and that triangle's normal.
type NearestSurface struct {
	res    int
	voxel  float32
	origin math.Vec3

	closest []math.Vec3
	normals []math.Vec3
}

// Clear resets the field to the unbuilt state.
func (f *NearestSurface) Clear() {
	f.res = 0
	f.voxel = 0
	f.origin = math.Vec3{}
	f.closest = nil
	f.normals = nil
}

// Valid reports whether the field holds usable data.
func (f *NearestSurface) Valid() bool {
	return f.res > 0 && len(f.closest) > 0 && len(f.closest) == len(f.normals)
}

// Resolution returns the voxel count per axis.
func (f *NearestSurface) Resolution() int {
	return f.res
}

// VoxelSize returns the edge length of one voxel.
func (f *NearestSurface) VoxelSize() float32 {
	return f.voxel
}

// Build samples the mesh's nearest surface on a grid around its bounds
// expanded by padding. resolution is voxels per axis, clamped to [16, 256].
// Returns false when the mesh has no usable extent.
func (f *NearestSurface) Build(m *mesh.TriMesh, resolution int, padding float32) bool {
	f.Clear()
	if m == nil || m.TriangleCount() == 0 {
		return false
	}

	if resolution < 16 {
		resolution = 16
	}
	if resolution > 256 {
		resolution = 256
	}
	if padding < 0 {
		padding = 0
	}

	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	bmin := m.BoundsMin.Sub(pad)
	bmax := m.BoundsMax.Add(pad)
	extent := bmax.Sub(bmin)
	maxAxis := maxf(extent.X, maxf(extent.Y, extent.Z))
	if maxAxis < 1e-6 {
		return false
	}

	f.res = resolution
	f.voxel = maxAxis / float32(f.res-1)
	f.origin = bmin

	count := f.res * f.res * f.res
	f.closest = make([]math.Vec3, count)
	f.normals = make([]math.Vec3, count)

	var bvh spatial.BVH
	bvh.Build(m)

	for z := 0; z < f.res; z++ {
		for y := 0; y < f.res; y++ {
			for x := 0; x < f.res; x++ {
				p := f.origin.Add(math.Vec3{
					X: float32(x),
					Y: float32(y),
					Z: float32(z),
				}.Scale(f.voxel))

				idx := x + f.res*(y+f.res*z)
				if _, cp, n, ok := bvh.NearestTriangle(p, 1e30); ok {
					f.closest[idx] = cp
					f.normals[idx] = n
				} else {
					f.closest[idx] = p
					f.normals[idx] = math.Vec3{Y: 1}
				}
			}
		}
	}
	return true
}

// Lookup returns the stored closest surface point and normal for the voxel
// containing p. ok is false when the field is unbuilt or p lies outside the
// grid.
func (f *NearestSurface) Lookup(p math.Vec3) (closest, normal math.Vec3, ok bool) {
	if !f.Valid() {
		return math.Vec3{}, math.Vec3{}, false
	}

	rel := p.Sub(f.origin).Scale(1 / f.voxel)
	x := int(rel.X + 0.5)
	y := int(rel.Y + 0.5)
	z := int(rel.Z + 0.5)
	if x < 0 || y < 0 || z < 0 || x >= f.res || y >= f.res || z >= f.res {
		return math.Vec3{}, math.Vec3{}, false
	}

	idx := x + f.res*(y+f.res*z)
	return f.closest[idx], f.normals[idx], true
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
