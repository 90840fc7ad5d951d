package mesh

import (
	"github.com/chewxy/math32"

	"github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"
)

// NewPlane builds a single-quad horizontal plane at the given Y level,
// spanning [-halfSize, halfSize] on X and Z, with upward normals.
func NewPlane(y, halfSize float32) *TriMesh {
	positions := []math.Vec3{
		{X: -halfSize, Y: y, Z: -halfSize},
		{X: halfSize, Y: y, Z: -halfSize},
		{X: halfSize, Y: y, Z: halfSize},
		{X: -halfSize, Y: y, Z: halfSize},
	}
	indices := []uint32{0, 2, 1, 0, 3, 2}

	m := New(positions, indices)
	up := math.Vec3{Y: 1}
	m.Normals = []math.Vec3{up, up, up, up}
	return m
}

// NewUVSphere builds a latitude/longitude tessellated sphere centered at
// center. rings and segments are clamped to a sane minimum.
func NewUVSphere(center math.Vec3, radius float32, rings, segments int) *TriMesh {
	if rings < 3 {
		rings = 3
	}
	if segments < 3 {
		segments = 3
	}

	var positions []math.Vec3
	var normals []math.Vec3
	var uvs []math.Vec2
	for r := 0; r <= rings; r++ {
		phi := math32.Pi * float32(r) / float32(rings)
		sinPhi := math32.Sin(phi)
		cosPhi := math32.Cos(phi)
		for s := 0; s <= segments; s++ {
			theta := 2 * math32.Pi * float32(s) / float32(segments)
			n := math.Vec3{
				X: sinPhi * math32.Cos(theta),
				Y: cosPhi,
				Z: sinPhi * math32.Sin(theta),
			}
			positions = append(positions, center.Add(n.Scale(radius)))
			normals = append(normals, n)
			uvs = append(uvs, math.Vec2{
				X: float32(s) / float32(segments),
				Y: float32(r) / float32(rings),
			})
		}
	}

	var indices []uint32
	stride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			i0 := uint32(r)*stride + uint32(s)
			i1 := i0 + 1
			i2 := i0 + stride
			i3 := i2 + 1
			indices = append(indices, i0, i2, i1, i1, i2, i3)
		}
	}

	m := New(positions, indices)
	m.Normals = normals
	m.UVs = uvs
	return m
}
