// SPDX-License-Identifier: Unlicense OR MIT

/*
Package fixed implements the signed 24.8 fixed-point coordinates used
for pointer positions and hit testing.

The integer part occupies the high 24 bits and the fraction the low 8
bits, matching the wire representation of protocol coordinates, so
values cross the delivery boundary without loss. The coordinate space
has the origin in the top left corner with the axes extending right
and down.
*/
package fixed

import (
	"math"
	"strconv"
)

// A Fixed is a signed 24.8 fixed-point number. The zero value is 0.
// Addition and subtraction work with the built-in operators.
type Fixed int32

// FromInt returns i as a Fixed.
func FromInt(i int32) Fixed {
	return Fixed(i << 8)
}

// FromFloat returns the Fixed nearest to f.
func FromFloat(f float64) Fixed {
	return Fixed(math.Round(f * 256))
}

// Float returns f as a float64.
func (f Fixed) Float() float64 {
	return float64(f) / 256
}

// RoundDown returns the integer part of f, rounded toward negative
// infinity. Truncating toward zero would round negative coordinates
// up and break composition across nested node origins.
func (f Fixed) RoundDown() int32 {
	return int32(f >> 8)
}

// Fract returns the fractional part of f, in [0, 1) regardless of
// sign, so that FromInt(f.RoundDown())+f.Fract() == f.
func (f Fixed) Fract() Fixed {
	return f & 0xff
}

// ApplyFract returns i carrying the fractional part of f. It
// translates a position into a node-local integer base without
// discarding the sub-pixel offset.
func (f Fixed) ApplyFract(i int32) Fixed {
	return Fixed(i<<8) | f&0xff
}

// String returns f in decimal notation.
func (f Fixed) String() string {
	return strconv.FormatFloat(f.Float(), 'g', -1, 64)
}

// A Point is a two dimensional point with Fixed coordinates.
type Point struct {
	X, Y Fixed
}

// Pt returns the point (x, y).
func Pt(x, y Fixed) Point {
	return Point{X: x, Y: y}
}

// Add returns the point p+p2.
func (p Point) Add(p2 Point) Point {
	return Point{X: p.X + p2.X, Y: p.Y + p2.Y}
}

// Sub returns the vector p-p2.
func (p Point) Sub(p2 Point) Point {
	return Point{X: p.X - p2.X, Y: p.Y - p2.Y}
}

// String returns p formatted as "(x, y)".
func (p Point) String() string {
	return "(" + p.X.String() + ", " + p.Y.String() + ")"
}
