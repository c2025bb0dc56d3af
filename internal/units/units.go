// Package units converts distances between the measurement units a schedule
// dataset may declare for its shape_dist_traveled values.
package units

import "fmt"

// Unit identifies a supported distance unit.
type Unit string

const (
	Kilometers Unit = "km"
	Meters     Unit = "m"
	Miles      Unit = "mi"
	Feet       Unit = "ft"
)

// metersPer maps each supported unit to its length in meters.
var metersPer = map[Unit]float64{
	Kilometers: 1000,
	Meters:     1,
	Miles:      1609.344,
	Feet:       0.3048,
}

// Valid reports whether u is a supported distance unit.
func Valid(u Unit) bool {
	_, ok := metersPer[u]
	return ok
}

// Convert converts value from one unit to another.
func Convert(value float64, from, to Unit) (float64, error) {
	f, err := Converter(from, to)
	if err != nil {
		return 0, err
	}
	return f(value), nil
}

// Converter returns a conversion function from one unit to another.
// NaN inputs pass through unchanged, preserving undefined distances.
func Converter(from, to Unit) (func(float64) float64, error) {
	fromM, ok := metersPer[from]
	if !ok {
		return nil, fmt.Errorf("unknown distance unit %q", from)
	}
	toM, ok := metersPer[to]
	if !ok {
		return nil, fmt.Errorf("unknown distance unit %q", to)
	}
	factor := fromM / toM
	return func(v float64) float64 { return v * factor }, nil
}
