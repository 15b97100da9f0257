// Package keygen derives the key material of a signing scheme: a generator
// G drawn from the curve, a private scalar d in [1, n-1], and the public
// point Q = d·G.
package keygen

import (
	crand "crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/smallyu/go-toy-ecdsa/internal/crypto/curves"
	"github.com/smallyu/go-toy-ecdsa/pkg/ecsig"
)

var one = big.NewInt(1)

// KeyPair is immutable once derived.
type KeyPair struct {
	generator curves.Point
	private   *big.Int
	public    curves.Point
}

// Generate draws a generator from curve using random and derives the
// public point for private.
func Generate(curve *curves.Curve, private *big.Int, random io.Reader) (*KeyPair, error) {
	if err := CheckPrivate(curve, private); err != nil {
		return nil, err
	}
	g, err := curve.Generator(random)
	if err != nil {
		return nil, err
	}
	return derive(curve, g, private)
}

// FromGenerator derives the key pair for a caller-chosen generator.
func FromGenerator(curve *curves.Curve, generator curves.Point, private *big.Int) (*KeyPair, error) {
	if err := CheckPrivate(curve, private); err != nil {
		return nil, err
	}
	if generator.IsInfinity() || !curve.OnCurve(generator) {
		return nil, fmt.Errorf("keygen: generator %s: %w", generator, ecsig.ErrPointNotOnCurve)
	}
	return derive(curve, generator, private)
}

func derive(curve *curves.Curve, g curves.Point, private *big.Int) (*KeyPair, error) {
	pub, err := curve.PublicFromPrivate(g, private)
	if err != nil {
		return nil, fmt.Errorf("keygen: deriving public point: %w", err)
	}
	return &KeyPair{
		generator: g,
		private:   new(big.Int).Set(private),
		public:    pub,
	}, nil
}

// CheckPrivate reports ecsig.ErrInvalidKey unless 1 ≤ private ≤ n-1.
func CheckPrivate(curve *curves.Curve, private *big.Int) error {
	if private == nil || private.Cmp(one) < 0 || private.Cmp(curve.N()) >= 0 {
		return fmt.Errorf("%w: %v not in [1, %s]", ecsig.ErrInvalidKey, private, new(big.Int).Sub(curve.N(), one))
	}
	return nil
}

// RandomScalar draws a scalar uniformly from [1, n-1], suitable as a
// private scalar or a signing ephemeral. A nil random falls back to
// crypto/rand.
func RandomScalar(curve *curves.Curve, random io.Reader) (*big.Int, error) {
	if random == nil {
		random = crand.Reader
	}
	// [0, n-2] + 1
	k, err := crand.Int(random, new(big.Int).Sub(curve.N(), one))
	if err != nil {
		return nil, err
	}
	return k.Add(k, one), nil
}

// Generator returns G.
func (k *KeyPair) Generator() curves.Point { return k.generator }

// Public returns Q = d·G.
func (k *KeyPair) Public() curves.Point { return k.public }

// Private returns a copy of d.
func (k *KeyPair) Private() *big.Int { return new(big.Int).Set(k.private) }
