package guides

import "github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"

// resampleOnPolyline returns the point at arc length s along the polyline,
// using the cumulative segment length table cum.
func resampleOnPolyline(pts []math.Vec3, cum []float32, s float32) math.Vec3 {
	if len(pts) < 2 {
		if len(pts) == 0 {
			return math.Vec3{}
		}
		return pts[0]
	}
	if s <= 0 {
		return pts[0]
	}
	total := cum[len(cum)-1]
	if total <= 1e-8 || s >= total {
		return pts[len(pts)-1]
	}

	// Find the bracketing segment.
	hi := 1
	for hi < len(cum) && cum[hi] < s {
		hi++
	}
	if hi >= len(cum) {
		return pts[len(pts)-1]
	}
	lo := hi - 1
	a := cum[lo]
	b := cum[hi]
	t := float32(0)
	if b > a {
		t = (s - a) / (b - a)
	}
	return pts[lo].Mix(pts[hi], math.Clamp(t, 0, 1))
}

// resampleInPlace rebuilds the curve at newSteps points and newLength total
// length by arc-length resampling the existing polyline. Target lengths past
// the old arc length extrapolate along the last tangent. The root point is
// preserved exactly and all velocity is reset.
func (c *Curve) resampleInPlace(newLength float32, newSteps int) {
	newSteps = clampInt(newSteps, 2, 256)
	newLength = maxf(0.001, newLength)
	if len(c.Points) < 2 {
		return
	}

	oldPts := make([]math.Vec3, len(c.Points))
	copy(oldPts, c.Points)

	cum := make([]float32, len(oldPts))
	for i := 1; i < len(oldPts); i++ {
		cum[i] = cum[i-1] + oldPts[i].Distance(oldPts[i-1])
	}
	oldLen := cum[len(cum)-1]

	root := oldPts[0]
	lastDir := math.Vec3{Y: 1}
	d := oldPts[len(oldPts)-1].Sub(oldPts[len(oldPts)-2])
	if dl := d.Length(); dl > 1e-6 {
		lastDir = d.Scale(1 / dl)
	}

	newPts := make([]math.Vec3, newSteps)
	for i := 0; i < newSteps; i++ {
		t := float32(i) / float32(newSteps-1)
		targetS := newLength * t
		var p math.Vec3
		switch {
		case oldLen <= 1e-6:
			// Degenerate curve: rebuild as a straight line along lastDir.
			p = root.Add(lastDir.Scale(targetS))
		case targetS <= oldLen:
			p = resampleOnPolyline(oldPts, cum, targetS)
		default:
			p = oldPts[len(oldPts)-1].Add(lastDir.Scale(targetS - oldLen))
		}
		newPts[i] = p
	}
	newPts[0] = root

	c.Points = newPts
	c.PrevPoints = make([]math.Vec3, len(newPts))
	copy(c.PrevPoints, newPts)
	c.SegmentRestLen = newLength / float32(newSteps-1)
}

// ApplyLengthStepsToSelected resamples every selected curve to the given
// target length and control point count.
func (s *Set) ApplyLengthStepsToSelected(newLength float32, newSteps int) {
	for ci := range s.curves {
		if !s.IsSelected(ci) {
			continue
		}
		s.curves[ci].resampleInPlace(newLength, newSteps)
	}
}
