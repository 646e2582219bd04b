package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/galaxysim/internal/viz"
)

const background = "#0a0a0a"

// CanvasSVG writes every set dot of a braille canvas as a circle. Each
// dot covers scale x scale pixels.
func CanvasSVG(w io.Writer, cv *viz.Canvas, scale float64, color string) error {
	if cv == nil {
		return errors.New("export: nil canvas")
	}

	bw := bufio.NewWriter(w)
	width := float64(cv.DotWidth()) * scale
	height := float64(cv.DotHeight()) * scale

	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, background, color)

	r := scale * 0.4
	for y := 0; y < cv.DotHeight(); y++ {
		for x := 0; x < cv.DotWidth(); x++ {
			if !cv.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
		}
	}

	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// FrameSVG renders one position buffer through cam onto a cols x rows
// braille canvas and writes it as SVG.
func FrameSVG(w io.Writer, pos []float64, cam *viz.Camera, cols, rows int, color string) error {
	cv := viz.NewCanvas(cols, rows)
	viz.Render(cv, pos, cam)
	return CanvasSVG(w, cv, 4, color)
}

// SeriesSVG draws values against times as a single polyline with 10%
// padding around the data range.
func SeriesSVG(w io.Writer, times, values []float64, width, height int, stroke string) error {
	if len(times) != len(values) {
		return fmt.Errorf("export: %d times for %d values", len(times), len(values))
	}
	if len(values) < 2 {
		return errors.New("export: need at least 2 points")
	}

	minX, maxX := bounds(times)
	minY, maxY := bounds(values)
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = math.Max(math.Abs(maxY), 1)
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="`,
		width, height, width, height, background, stroke)

	for i := range values {
		x := (times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(bw, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(bw, " L%.1f,%.1f", x, y)
		}
	}

	bw.WriteString("\"/>\n</svg>\n")
	return bw.Flush()
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}
