// Package modarith implements the extended Euclidean algorithm and modular
// inversion used by every layer above it.
//
// The modulus is never checked for primality. Whether an inverse exists
// depends on gcd(a, n) alone, so callers working with composite moduli must
// be ready for ecsig.ErrNoInverse.
package modarith

import (
	"fmt"
	"math/big"

	"github.com/smallyu/go-toy-ecdsa/pkg/ecsig"
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
)

// ExtendedGCD returns (g, x, y) such that a*x + b*y = g = gcd(a, b).
// a and b must be non-negative; a = 0 and b = 0 are both allowed.
func ExtendedGCD(a, b *big.Int) (g, x, y *big.Int) {
	r0, r1 := new(big.Int).Set(a), new(big.Int).Set(b)
	s0, s1 := big.NewInt(1), big.NewInt(0)
	t0, t1 := big.NewInt(0), big.NewInt(1)

	q, rem, tmp := new(big.Int), new(big.Int), new(big.Int)
	for r1.Sign() > 0 {
		q.DivMod(r0, r1, rem)
		r0, r1 = r1, r0
		r1.Set(rem)

		// (s0, s1) = (s1, s0 - q*s1)
		tmp.Mul(q, s1)
		s0, s1 = s1, s0
		s1.Sub(s1, tmp)

		tmp.Mul(q, t1)
		t0, t1 = t1, t0
		t1.Sub(t1, tmp)
	}
	return r0, s0, t0
}

// Inverse returns x in [0, n) with (a*x) mod n = 1.
// a may be negative or larger than n; it is reduced mod n first.
func Inverse(a, n *big.Int) (*big.Int, error) {
	if n == nil || n.Cmp(one) <= 0 {
		return nil, fmt.Errorf("%w: %v", ecsig.ErrInvalidModulus, n)
	}
	reduced := new(big.Int).Mod(a, n)
	g, x, _ := ExtendedGCD(reduced, n)
	if g.Cmp(one) != 0 {
		return nil, &ecsig.InverseError{
			Value:   new(big.Int).Set(a),
			Modulus: new(big.Int).Set(n),
			GCD:     g,
		}
	}
	return x.Mod(x, n), nil
}

// Mod returns a mod n in [0, n) as a new value.
func Mod(a, n *big.Int) *big.Int {
	return new(big.Int).Mod(a, n)
}

// IsZeroMod reports whether a ≡ 0 (mod n).
func IsZeroMod(a, n *big.Int) bool {
	return new(big.Int).Mod(a, n).Cmp(zero) == 0
}
