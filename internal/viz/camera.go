package viz

import (
	"math"

	"github.com/san-kum/galaxysim/internal/vecmath"
	"gonum.org/v1/gonum/spatial/r3"
)

var yAxis = r3.Vec{Y: 1}

// Camera is an orthographic view of the particle cloud. Yaw turns about
// the world Y axis, pitch about the X axis after yaw.
type Camera struct {
	Center     r3.Vec
	Yaw, Pitch float64
	Zoom       float64
	// Extent is the world distance from Center shown at the canvas edge
	// at zoom 1.
	Extent float64
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1, Extent: 1000}
}

func (c *Camera) RotateX(a float64) { c.Pitch += a }
func (c *Camera) RotateY(a float64) { c.Yaw += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(50, c.Zoom*1.25) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.02, c.Zoom/1.25) }

// Fit centers the camera on the buffer's centroid and sets Extent to the
// largest distance from it.
func (c *Camera) Fit(pos []float64) {
	n := len(pos) / 3
	if n == 0 {
		return
	}
	var sum r3.Vec
	for i := 0; i < n; i++ {
		sum = r3.Add(sum, vecmath.At(pos, i))
	}
	c.Center = r3.Scale(1/float64(n), sum)

	maxR := 0.0
	for i := 0; i < n; i++ {
		maxR = math.Max(maxR, r3.Norm(r3.Sub(vecmath.At(pos, i), c.Center)))
	}
	if maxR > 0 {
		c.Extent = maxR * 1.1
	}
}

type view struct {
	yaw, pitch r3.Rotation
	center     r3.Vec
	k          float64
	cx, cy     float64
}

func (c *Camera) view(w, h int) view {
	extent := c.Extent
	if extent <= 0 {
		extent = 1
	}
	minDim := math.Min(float64(w), float64(h))
	return view{
		yaw:    r3.NewRotation(c.Yaw, yAxis),
		pitch:  r3.NewRotation(c.Pitch, vecmath.XAxis),
		center: c.Center,
		k:      c.Zoom * minDim / (2 * extent),
		cx:     float64(w) / 2,
		cy:     float64(h) / 2,
	}
}

func (v view) project(p r3.Vec) (x, y int, depth float64) {
	q := v.pitch.Rotate(v.yaw.Rotate(r3.Sub(p, v.center)))
	return dot(v.cx + q.X*v.k), dot(v.cy - q.Y*v.k), q.Z
}

// dot floors a canvas coordinate. Rotation round-off just below a whole
// number is snapped up to it.
func dot(c float64) int {
	return int(math.Floor(c + 1e-9))
}

// Project maps a world point to dot coordinates on a w x h dot canvas.
func (c *Camera) Project(p r3.Vec, w, h int) (x, y int, depth float64, ok bool) {
	x, y, depth = c.view(w, h).project(p)
	return x, y, depth, x >= 0 && x < w && y >= 0 && y < h
}

// Render clears the canvas and draws every particle of the position
// buffer. It returns how many landed on the canvas.
func Render(cv *Canvas, pos []float64, cam *Camera) int {
	cv.Clear()
	v := cam.view(cv.DotWidth(), cv.DotHeight())
	visible := 0
	for i := 0; i < len(pos)/3; i++ {
		p := vecmath.At(pos, i)
		if !vecmath.Finite(p) {
			continue
		}
		x, y, _ := v.project(p)
		if cv.Set(x, y) {
			visible++
		}
	}
	return visible
}
