package guides

import "github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"

// evalCatmullRom evaluates a Catmull-Rom spline segment at t in [0,1].
func evalCatmullRom(p0, p1, p2, p3 math.Vec3, t float32) math.Vec3 {
	t2 := t * t
	t3 := t2 * t
	return p1.Scale(2).
		Add(p2.Sub(p0).Scale(t)).
		Add(p0.Scale(2).Sub(p1.Scale(5)).Add(p2.Scale(4)).Sub(p3).Scale(t2)).
		Add(p1.Scale(3).Sub(p0).Sub(p2.Scale(3)).Add(p3).Scale(t3)).
		Scale(0.5)
}

// SamplePolyline returns a smoothed polyline through the curve's control
// points: samplesPerSeg Catmull-Rom samples per segment, endpoints clamped.
// This is the geometry feed for drawing and export; the solver never touches
// the smoothed points.
func (c *Curve) SamplePolyline(samplesPerSeg int) []math.Vec3 {
	if len(c.Points) < 2 {
		return nil
	}
	if samplesPerSeg < 1 {
		samplesPerSeg = 1
	}

	out := make([]math.Vec3, 0, (len(c.Points)-1)*samplesPerSeg+1)
	for i := 0; i+1 < len(c.Points); i++ {
		p1 := c.Points[i]
		p2 := c.Points[i+1]
		p0 := p1
		if i > 0 {
			p0 = c.Points[i-1]
		}
		p3 := p2
		if i+2 < len(c.Points) {
			p3 = c.Points[i+2]
		}

		for s := 0; s < samplesPerSeg; s++ {
			t := float32(s) / float32(samplesPerSeg)
			out = append(out, evalCatmullRom(p0, p1, p2, p3, t))
		}
	}
	return append(out, c.Points[len(c.Points)-1])
}
