// Package curves implements the group of points on a short Weierstrass curve
// y² = x³ + ax + b over the integers modulo n.
//
// It is meant for small, educational moduli. The modulus is not tested for
// primality: with a composite n the group law can fail with
// ecsig.ErrNoInverse, and callers must treat that as recoverable. This is
// unsafe for any real use.
package curves

import (
	"fmt"
	"math/big"

	"github.com/smallyu/go-toy-ecdsa/internal/crypto/modarith"
	"github.com/smallyu/go-toy-ecdsa/pkg/ecsig"
)

var (
	two   = big.NewInt(2)
	three = big.NewInt(3)
	four  = big.NewInt(4)
	b27   = big.NewInt(27)
)

// Curve holds the immutable parameters {a, b, n} of a non-singular curve.
// A *Curve is safe for concurrent use.
type Curve struct {
	a, b, n *big.Int
}

// New validates 0 < a < n, 0 < b < n, n > 2 and 4a³ + 27b² ≢ 0 (mod n).
// Every violated invariant is listed in the returned *ecsig.CurveError.
func New(a, b, n *big.Int) (*Curve, error) {
	if a == nil || b == nil || n == nil {
		return nil, &ecsig.CurveError{Violations: []string{"parameters must not be nil"}}
	}

	var violations []string
	if a.Sign() <= 0 || a.Cmp(n) >= 0 {
		violations = append(violations, fmt.Sprintf("a = %s must satisfy 0 < a < n", a))
	}
	if b.Sign() <= 0 || b.Cmp(n) >= 0 {
		violations = append(violations, fmt.Sprintf("b = %s must satisfy 0 < b < n", b))
	}
	if n.Cmp(two) <= 0 {
		violations = append(violations, fmt.Sprintf("n = %s must be greater than 2", n))
	}
	if n.Sign() > 0 && modarith.IsZeroMod(discriminant(a, b), n) {
		violations = append(violations, "curve is singular: 4a³ + 27b² ≡ 0 (mod n)")
	}
	if len(violations) > 0 {
		return nil, &ecsig.CurveError{Violations: violations}
	}

	return &Curve{
		a: new(big.Int).Set(a),
		b: new(big.Int).Set(b),
		n: new(big.Int).Set(n),
	}, nil
}

// NewFromInt64 is New for small parameters.
func NewFromInt64(a, b, n int64) (*Curve, error) {
	return New(big.NewInt(a), big.NewInt(b), big.NewInt(n))
}

// discriminant returns 4a³ + 27b².
func discriminant(a, b *big.Int) *big.Int {
	a3 := new(big.Int).Mul(a, a)
	a3.Mul(a3, a)
	a3.Mul(a3, four)

	b2 := new(big.Int).Mul(b, b)
	b2.Mul(b2, b27)

	return a3.Add(a3, b2)
}

// A returns a copy of the linear coefficient.
func (c *Curve) A() *big.Int { return new(big.Int).Set(c.a) }

// B returns a copy of the constant term.
func (c *Curve) B() *big.Int { return new(big.Int).Set(c.b) }

// N returns a copy of the modulus.
func (c *Curve) N() *big.Int { return new(big.Int).Set(c.n) }

func (c *Curve) String() string {
	return fmt.Sprintf("y² = x³ + %sx + %s (mod %s)", c.a, c.b, c.n)
}

// polynomial returns (x³ + ax + b) mod n.
func (c *Curve) polynomial(x *big.Int) *big.Int {
	v := new(big.Int).Mul(x, x)
	v.Add(v, c.a) // x² + a
	v.Mul(v, x)   // x³ + ax
	v.Add(v, c.b) // x³ + ax + b
	return v.Mod(v, c.n)
}

// OnCurve reports whether p lies on the curve. Infinity always does.
// Affine coordinates must be reduced into [0, n).
func (c *Curve) OnCurve(p Point) bool {
	if p.IsInfinity() {
		return true
	}
	if !c.inRange(p.x) || !c.inRange(p.y) {
		return false
	}

	y2 := new(big.Int).Mul(p.y, p.y)
	y2.Mod(y2, c.n)
	return y2.Cmp(c.polynomial(p.x)) == 0
}

func (c *Curve) inRange(v *big.Int) bool {
	return v.Sign() >= 0 && v.Cmp(c.n) < 0
}

// mustBeOnCurve panics with *ecsig.InvariantViolation if p is off the curve.
func (c *Curve) mustBeOnCurve(op string, p Point, format string, args ...interface{}) {
	if c.OnCurve(p) {
		return
	}
	panic(&ecsig.InvariantViolation{
		Op:     op,
		Detail: fmt.Sprintf("%s is not on %s: ", p, c) + fmt.Sprintf(format, args...),
	})
}
