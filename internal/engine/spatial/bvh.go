// Package spatial provides a bounding volume hierarchy over triangle meshes
// for ray candidate queries and nearest-surface lookups.
package spatial

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/mesh"
	"github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"
)

// maxLeafTris is the subdivision stop: leaves hold at most this many triangles.
const maxLeafTris = 8

type node struct {
	bmin, bmax math.Vec3
	left       int32
	right      int32
	firstTri   int32
	triCount   int32
}

// BVH is an axis-aligned bounding volume hierarchy over a mesh's triangles.
// The zero value is an empty tree; all queries on it return no result.
type BVH struct {
	nodes      []node
	triIndices []int32
	mesh       *mesh.TriMesh
}

// Build constructs the tree for the given mesh, replacing any previous tree.
func (b *BVH) Build(m *mesh.TriMesh) {
	b.mesh = m
	b.nodes = b.nodes[:0]
	b.triIndices = b.triIndices[:0]

	if m == nil {
		return
	}
	triCount := m.TriangleCount()
	if triCount == 0 {
		return
	}

	b.triIndices = make([]int32, triCount)
	for i := range b.triIndices {
		b.triIndices[i] = int32(i)
	}

	b.nodes = make([]node, 0, triCount*2)
	b.buildNode(0, triCount)
}

// Empty reports whether the tree holds no triangles.
func (b *BVH) Empty() bool {
	return len(b.nodes) == 0
}

func triBounds(m *mesh.TriMesh, tri int32) (bmin, bmax math.Vec3) {
	a, bb, c := m.Triangle(int(tri))
	bmin = a.Min(bb).Min(c)
	bmax = a.Max(bb).Max(c)
	return bmin, bmax
}

func (b *BVH) buildNode(first, count int) int32 {
	n := node{
		left:     -1,
		right:    -1,
		firstTri: int32(first),
		triCount: int32(count),
	}

	inf := math32.Inf(1)
	bmin := math.Vec3{X: inf, Y: inf, Z: inf}
	bmax := bmin.Scale(-1)
	for i := 0; i < count; i++ {
		tmin, tmax := triBounds(b.mesh, b.triIndices[first+i])
		bmin = bmin.Min(tmin)
		bmax = bmax.Max(tmax)
	}
	n.bmin = bmin
	n.bmax = bmax

	nodeIndex := int32(len(b.nodes))
	b.nodes = append(b.nodes, n)

	if count <= maxLeafTris {
		return nodeIndex
	}

	// Split on the longest axis at the centroid median. A full sort stands in
	// for nth_element; the O(n log n) cost is paid once per mesh version.
	extent := bmax.Sub(bmin)
	axis := 0
	if extent.Y > extent.X {
		axis = 1
	}
	if extent.Z > extent.Component(axis) {
		axis = 2
	}

	tris := b.triIndices[first : first+count]
	sort.Slice(tris, func(i, j int) bool {
		return b.triCenter(tris[i], axis) < b.triCenter(tris[j], axis)
	})

	mid := first + count/2
	left := b.buildNode(first, count/2)
	right := b.buildNode(mid, count-count/2)

	b.nodes[nodeIndex].left = left
	b.nodes[nodeIndex].right = right
	b.nodes[nodeIndex].triCount = 0
	return nodeIndex
}

func (b *BVH) triCenter(tri int32, axis int) float32 {
	tmin, tmax := triBounds(b.mesh, tri)
	return 0.5 * (tmin.Component(axis) + tmax.Component(axis))
}

// Raycast invokes visit for every triangle in a leaf whose box the ray
// intersects. The caller performs the exact ray-triangle test.
func (b *BVH) Raycast(origin, dir math.Vec3, visit func(tri int)) {
	if len(b.nodes) == 0 {
		return
	}
	inv := math.Vec3{X: 1 / dir.X, Y: 1 / dir.Y, Z: 1 / dir.Z}

	// Iterative traversal: recursion depth is unbounded on malformed meshes.
	stack := make([]int32, 0, 128)
	stack = append(stack, 0)

	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &b.nodes[ni]

		if !rayAABB(origin, inv, n.bmin, n.bmax) {
			continue
		}

		if n.triCount > 0 {
			for i := int32(0); i < n.triCount; i++ {
				visit(int(b.triIndices[n.firstTri+i]))
			}
			continue
		}

		if n.left >= 0 {
			stack = append(stack, n.left)
		}
		if n.right >= 0 {
			stack = append(stack, n.right)
		}
	}
}

// NearestTriangle returns the globally closest triangle to p within maxDist,
// with the closest surface point and the triangle's geometric normal.
// ok is false when the tree is empty or nothing qualifies.
func (b *BVH) NearestTriangle(p math.Vec3, maxDist float32) (tri int, closest, normal math.Vec3, ok bool) {
	if len(b.nodes) == 0 || b.mesh == nil {
		return -1, math.Vec3{}, math.Vec3{}, false
	}

	bestDistSq := maxDist * maxDist
	bestTri := -1
	var bestP math.Vec3
	bestN := math.Vec3{Y: 1}

	stack := make([]int32, 0, 128)
	stack = append(stack, 0)

	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &b.nodes[ni]

		if aabbDistSq(p, n.bmin, n.bmax) > bestDistSq {
			continue
		}

		if n.triCount > 0 {
			for i := int32(0); i < n.triCount; i++ {
				t := b.triIndices[n.firstTri+i]
				a, bb, c := b.mesh.Triangle(int(t))
				cp := ClosestPointOnTriangle(p, a, bb, c)
				dd := p.Sub(cp).LengthSq()
				if dd < bestDistSq {
					bestDistSq = dd
					bestTri = int(t)
					bestP = cp
					bestN = bb.Sub(a).Cross(c.Sub(a)).Normalize()
				}
			}
			continue
		}

		if n.left >= 0 {
			stack = append(stack, n.left)
		}
		if n.right >= 0 {
			stack = append(stack, n.right)
		}
	}

	if bestTri < 0 {
		return -1, math.Vec3{}, math.Vec3{}, false
	}
	return bestTri, bestP, bestN, true
}

// rayAABB is the slab test with precomputed inverse direction.
func rayAABB(ro, inv, bmin, bmax math.Vec3) bool {
	tx1 := (bmin.X - ro.X) * inv.X
	tx2 := (bmax.X - ro.X) * inv.X
	tmin := minf(tx1, tx2)
	tmax := maxf(tx1, tx2)

	ty1 := (bmin.Y - ro.Y) * inv.Y
	ty2 := (bmax.Y - ro.Y) * inv.Y
	tmin = maxf(tmin, minf(ty1, ty2))
	tmax = minf(tmax, maxf(ty1, ty2))

	tz1 := (bmin.Z - ro.Z) * inv.Z
	tz2 := (bmax.Z - ro.Z) * inv.Z
	tmin = maxf(tmin, minf(tz1, tz2))
	tmax = minf(tmax, maxf(tz1, tz2))

	return tmax >= tmin && tmax >= 0
}

// aabbDistSq returns the squared distance from p to the box, zero inside.
func aabbDistSq(p, bmin, bmax math.Vec3) float32 {
	var dx, dy, dz float32
	if p.X < bmin.X {
		dx = bmin.X - p.X
	} else if p.X > bmax.X {
		dx = p.X - bmax.X
	}
	if p.Y < bmin.Y {
		dy = bmin.Y - p.Y
	} else if p.Y > bmax.Y {
		dy = p.Y - bmax.Y
	}
	if p.Z < bmin.Z {
		dz = bmin.Z - p.Z
	} else if p.Z > bmax.Z {
		dz = p.Z - bmax.Z
	}
	return dx*dx + dy*dy + dz*dz
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
