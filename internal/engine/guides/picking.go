package guides

import (
	"github.com/chewxy/math32"

	"github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"
)

// World-space pick thresholds in meters. Segment picking is a bit more
// forgiving than point picking.
const (
	pointPickThreshold = 0.015
	curvePickThreshold = 0.025
)

func pointRayDistance(p, ro, rd math.Vec3) float32 {
	v := p.Sub(ro)
	t := v.Dot(rd)
	q := ro.Add(rd.Scale(t))
	return p.Distance(q)
}

// PickControlPoint finds the control vertex closest to the ray within the
// pick threshold. Root vertices are excluded since they are pinned. When
// selectedOnly is true, only selected curves are considered.
func (s *Set) PickControlPoint(ro, rd math.Vec3, selectedOnly bool) (curveIdx, vertIdx int, ok bool) {
	best := math32.Inf(1)
	bestC := -1
	bestV := -1

	for ci := range s.curves {
		if selectedOnly && !s.IsSelected(ci) {
			continue
		}
		c := &s.curves[ci]
		for vi := 1; vi < len(c.Points); vi++ {
			d := pointRayDistance(c.Points[vi], ro, rd)
			if d < pointPickThreshold && d < best {
				best = d
				bestC = ci
				bestV = vi
			}
		}
	}

	if bestC < 0 {
		return -1, -1, false
	}
	return bestC, bestV, true
}

// raySegmentDistance returns the distance between a forward ray and the
// segment ab.
func raySegmentDistance(ro, rdNorm, a, b math.Vec3) float32 {
	ab := b.Sub(a)
	ab2 := ab.Dot(ab)
	if ab2 < 1e-12 {
		// Segment is a point.
		sParam := maxf(0, a.Sub(ro).Dot(rdNorm))
		return a.Distance(ro.Add(rdNorm.Scale(sParam)))
	}

	ao := ro.Sub(a)
	rdab := rdNorm.Dot(ab)
	rdao := rdNorm.Dot(ao)
	abao := ab.Dot(ao)
	denom := ab2 - rdab*rdab

	var t float32
	if math32.Abs(denom) > 1e-8 {
		// Closest points between the infinite line and the segment, clamped.
		t = math.Clamp((rdab*rdao-abao)/denom, 0, 1)
	} else {
		// Nearly parallel: project the origin onto the segment.
		t = math.Clamp(-abao/ab2, 0, 1)
	}

	ps := a.Add(ab.Scale(t))
	sParam := maxf(0, ps.Sub(ro).Dot(rdNorm))
	pr := ro.Add(rdNorm.Scale(sParam))

	// One refinement step to improve stability.
	t = math.Clamp(pr.Sub(a).Dot(ab)/ab2, 0, 1)
	ps = a.Add(ab.Scale(t))
	sParam = maxf(0, ps.Sub(ro).Dot(rdNorm))
	pr = ro.Add(rdNorm.Scale(sParam))

	return ps.Distance(pr)
}

// PickCurve finds the curve whose polyline passes closest to the ray within
// the curve pick threshold.
func (s *Set) PickCurve(ro, rd math.Vec3) (curveIdx int, ok bool) {
	if len(s.curves) == 0 {
		return -1, false
	}
	rdl := rd.Length()
	if rdl < 1e-8 {
		return -1, false
	}
	rdNorm := rd.Scale(1 / rdl)

	best := math32.Inf(1)
	bestC := -1

	for ci := range s.curves {
		c := &s.curves[ci]
		if len(c.Points) < 2 {
			continue
		}
		for i := 0; i+1 < len(c.Points); i++ {
			d := raySegmentDistance(ro, rdNorm, c.Points[i], c.Points[i+1])
			if d < curvePickThreshold && d < best {
				best = d
				bestC = ci
			}
		}
	}

	if bestC < 0 {
		return -1, false
	}
	return bestC, true
}
