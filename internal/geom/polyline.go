package geom

import (
	"math"

	gpolyline "github.com/twpayne/go-polyline"
)

// Polyline is an ordered point sequence with precomputed cumulative
// distances, supporting projection into a distance-along-line coordinate.
type Polyline struct {
	points []Point
	cum    []float64
}

// NewPolyline builds a polyline and its cumulative segment distances.
func NewPolyline(points []Point) *Polyline {
	cum := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		segment := Distance(
			points[i-1].Lat, points[i-1].Lon,
			points[i].Lat, points[i].Lon,
		)
		cum[i] = cum[i-1] + segment
	}
	return &Polyline{points: points, cum: cum}
}

// Points returns the polyline's vertices.
func (p *Polyline) Points() []Point {
	return p.points
}

// Length returns the total length of the polyline in meters.
func (p *Polyline) Length() float64 {
	if len(p.cum) == 0 {
		return 0
	}
	return p.cum[len(p.cum)-1]
}

// Project returns the distance in meters along the polyline of the point's
// closest position on it. Projection scans every segment and interpolates
// within the closest one.
func (p *Polyline) Project(pt Point) float64 {
	if len(p.points) < 2 {
		return 0
	}

	minDistance := math.Inf(1)
	closestSegment := 0
	projectionRatio := 0.0

	for i := 0; i < len(p.points)-1; i++ {
		distance, ratio := projectOntoSegment(
			pt.Lat, pt.Lon,
			p.points[i].Lat, p.points[i].Lon,
			p.points[i+1].Lat, p.points[i+1].Lon,
		)
		if distance < minDistance {
			minDistance = distance
			closestSegment = i
			projectionRatio = ratio
		}
	}

	segmentLength := p.cum[closestSegment+1] - p.cum[closestSegment]
	return p.cum[closestSegment] + segmentLength*projectionRatio
}

// IsSimple reports whether the polyline does not intersect itself.
// Projection onto a self-intersecting line is ambiguous, so callers fall
// back to the full line length in that case.
func (p *Polyline) IsSimple() bool {
	n := len(p.points)
	for i := 0; i < n-1; i++ {
		// Skip the adjacent segment: shared endpoints always touch.
		for j := i + 2; j < n-1; j++ {
			if i == 0 && j == n-2 && p.points[0] == p.points[n-1] {
				// Closed rings touch at the seam without self-intersecting.
				continue
			}
			if segmentsIntersect(p.points[i], p.points[i+1], p.points[j], p.points[j+1]) {
				return false
			}
		}
	}
	return true
}

// Encode returns the polyline in Google encoded polyline form.
func (p *Polyline) Encode() string {
	coords := make([][]float64, len(p.points))
	for i, pt := range p.points {
		coords[i] = []float64{pt.Lat, pt.Lon}
	}
	return string(gpolyline.EncodeCoords(coords))
}

// DecodePolyline decodes a Google encoded polyline string.
func DecodePolyline(encoded string) (*Polyline, error) {
	coords, _, err := gpolyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	points := make([]Point, len(coords))
	for i, c := range coords {
		points[i] = Point{Lat: c[0], Lon: c[1]}
	}
	return NewPolyline(points), nil
}

func segmentsIntersect(p1, p2, q1, q2 Point) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear overlap counts as an intersection.
	if d1 == 0 && onSegment(q1, q2, p1) {
		return true
	}
	if d2 == 0 && onSegment(q1, q2, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, q2) {
		return true
	}
	return false
}

func orientation(a, b, c Point) float64 {
	return (b.Lon-a.Lon)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lon-a.Lon)
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.Lon, b.Lon) <= p.Lon && p.Lon <= math.Max(a.Lon, b.Lon) &&
		math.Min(a.Lat, b.Lat) <= p.Lat && p.Lat <= math.Max(a.Lat, b.Lat)
}
