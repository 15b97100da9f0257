package curves

import (
	"fmt"
	"math/big"

	"github.com/smallyu/go-toy-ecdsa/internal/crypto/modarith"
	"github.com/smallyu/go-toy-ecdsa/pkg/ecsig"
)

// Add returns p + q under the chord-and-tangent law.
//
// Both inputs must be on the curve. Any failed inversion is returned as
// ecsig.ErrNoInverse; doubling a point with y = 0 is one such case, since
// the slope needs inverse(2y).
func (c *Curve) Add(p, q Point) (Point, error) {
	if !c.OnCurve(p) {
		return Point{}, fmt.Errorf("%w: %s", ecsig.ErrPointNotOnCurve, p)
	}
	if !c.OnCurve(q) {
		return Point{}, fmt.Errorf("%w: %s", ecsig.ErrPointNotOnCurve, q)
	}
	return c.add(p, q)
}

func (c *Curve) add(p, q Point) (Point, error) {
	if p.IsInfinity() {
		return q, nil
	}
	if q.IsInfinity() {
		return p, nil
	}
	if p.x.Cmp(q.x) == 0 && p.y.Cmp(q.y) != 0 {
		return Infinity(), nil
	}

	var s *big.Int
	if p.x.Cmp(q.x) == 0 {
		// tangent: s = (3x² + a) / 2y
		den, err := modarith.Inverse(new(big.Int).Mul(two, p.y), c.n)
		if err != nil {
			return Point{}, err
		}
		s = new(big.Int).Mul(p.x, p.x)
		s.Mul(s, three)
		s.Add(s, c.a)
		s.Mul(s, den)
	} else {
		// chord: s = (y2 - y1) / (x2 - x1)
		den, err := modarith.Inverse(new(big.Int).Sub(q.x, p.x), c.n)
		if err != nil {
			return Point{}, err
		}
		s = new(big.Int).Sub(q.y, p.y)
		s.Mul(s, den)
	}
	s.Mod(s, c.n)

	x := new(big.Int).Mul(s, s)
	x.Sub(x, p.x)
	x.Sub(x, q.x)
	x.Mod(x, c.n)

	y := new(big.Int).Sub(p.x, x)
	y.Mul(y, s)
	y.Sub(y, p.y)
	y.Mod(y, c.n)

	result := Point{x: x, y: y, affine: true}
	c.mustBeOnCurve("add", result, "%s + %s with slope %s", p, q, s)
	return result, nil
}

// Double returns p + p.
func (c *Curve) Double(p Point) (Point, error) {
	return c.Add(p, p)
}

// Negate returns -p. The inverse of (x, y) is (x, n - y).
func (c *Curve) Negate(p Point) (Point, error) {
	if !c.OnCurve(p) {
		return Point{}, fmt.Errorf("%w: %s", ecsig.ErrPointNotOnCurve, p)
	}
	if p.IsInfinity() {
		return p, nil
	}
	y := new(big.Int).Neg(p.y)
	return Point{x: new(big.Int).Set(p.x), y: y.Mod(y, c.n), affine: true}, nil
}

// Multiply returns k·p by double-and-add over the bits of k, least
// significant first. k must be non-negative; 0·p is infinity.
func (c *Curve) Multiply(p Point, k *big.Int) (Point, error) {
	if k == nil || k.Sign() < 0 {
		return Point{}, fmt.Errorf("%w: %v", ecsig.ErrNegativeScalar, k)
	}
	if !c.OnCurve(p) {
		return Point{}, fmt.Errorf("%w: %s", ecsig.ErrPointNotOnCurve, p)
	}

	result := Infinity()
	base := p
	bits := k.BitLen()
	for i := 0; i < bits; i++ {
		var err error
		if k.Bit(i) == 1 {
			if result, err = c.add(result, base); err != nil {
				return Point{}, err
			}
		}
		// The doubling after the top bit would be discarded.
		if i == bits-1 {
			break
		}
		if base, err = c.add(base, base); err != nil {
			return Point{}, err
		}
	}

	c.mustBeOnCurve("multiply", result, "%s·%s", k, p)
	return result, nil
}

// PublicFromPrivate returns priv·generator.
func (c *Curve) PublicFromPrivate(generator Point, priv *big.Int) (Point, error) {
	return c.Multiply(generator, priv)
}
