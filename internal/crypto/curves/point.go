package curves

import (
	"fmt"
	"math/big"
)

// Point is either the point at infinity or an affine point (x, y).
// The zero value is the point at infinity. Infinity is tagged explicitly,
// so an affine point (0, 0) is an ordinary curve point.
type Point struct {
	x, y   *big.Int
	affine bool
}

// Infinity returns the identity element of the group.
func Infinity() Point {
	return Point{}
}

// NewPoint returns the affine point (x, y). It does not check membership;
// use Curve.OnCurve for that.
func NewPoint(x, y *big.Int) Point {
	return Point{
		x:      new(big.Int).Set(x),
		y:      new(big.Int).Set(y),
		affine: true,
	}
}

// NewPointInt64 is NewPoint for small coordinates.
func NewPointInt64(x, y int64) Point {
	return Point{x: big.NewInt(x), y: big.NewInt(y), affine: true}
}

// IsInfinity reports whether p is the point at infinity.
func (p Point) IsInfinity() bool {
	return !p.affine
}

// X returns a copy of the x coordinate, or nil for infinity.
func (p Point) X() *big.Int {
	if !p.affine {
		return nil
	}
	return new(big.Int).Set(p.x)
}

// Y returns a copy of the y coordinate, or nil for infinity.
func (p Point) Y() *big.Int {
	if !p.affine {
		return nil
	}
	return new(big.Int).Set(p.y)
}

// Equal reports whether p and q are the same point.
func (p Point) Equal(q Point) bool {
	if p.affine != q.affine {
		return false
	}
	if !p.affine {
		return true
	}
	return p.x.Cmp(q.x) == 0 && p.y.Cmp(q.y) == 0
}

func (p Point) String() string {
	if !p.affine {
		return "Infinity"
	}
	return fmt.Sprintf("(%s, %s)", p.x, p.y)
}
