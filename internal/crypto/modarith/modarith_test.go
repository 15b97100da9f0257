package modarith

import (
	"errors"
	"math/big"
	"math/rand"
	"testing"

	"filippo.io/edwards25519"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/smallyu/go-toy-ecdsa/pkg/ecsig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtendedGCD(t *testing.T) {
	cases := []struct {
		a, b  int64
		wantG int64
	}{
		{0, 0, 0},
		{0, 5, 5},
		{5, 0, 5},
		{240, 46, 2},
		{46, 240, 2},
		{17, 19, 1},
		{123, 19, 1},
		{1024, 4096, 1024},
	}

	for _, tc := range cases {
		a, b := big.NewInt(tc.a), big.NewInt(tc.b)
		g, x, y := ExtendedGCD(a, b)
		assert.Equal(t, tc.wantG, g.Int64(), "gcd(%d, %d)", tc.a, tc.b)

		// a*x + b*y = g
		lhs := new(big.Int).Mul(a, x)
		lhs.Add(lhs, new(big.Int).Mul(b, y))
		assert.Equal(t, 0, lhs.Cmp(g), "bezout identity for (%d, %d)", tc.a, tc.b)

		// inputs are not modified
		assert.Equal(t, tc.a, a.Int64())
		assert.Equal(t, tc.b, b.Int64())
	}
}

func TestExtendedGCDMatchesStdlib(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		a := new(big.Int).Rand(rng, new(big.Int).Lsh(one, 200))
		b := new(big.Int).Rand(rng, new(big.Int).Lsh(one, 200))

		g, x, y := ExtendedGCD(a, b)
		want := new(big.Int).GCD(nil, nil, a, b)
		require.Equal(t, 0, g.Cmp(want))

		lhs := new(big.Int).Mul(a, x)
		lhs.Add(lhs, new(big.Int).Mul(b, y))
		require.Equal(t, 0, lhs.Cmp(g))
	}
}

func TestInverseExhaustiveSmallModulus(t *testing.T) {
	n := big.NewInt(19)
	for a := int64(1); a < 19; a++ {
		inv, err := Inverse(big.NewInt(a), n)
		require.NoError(t, err)
		assert.True(t, inv.Sign() >= 0 && inv.Cmp(n) < 0)

		prod := new(big.Int).Mul(big.NewInt(a), inv)
		prod.Mod(prod, n)
		assert.Equal(t, int64(1), prod.Int64(), "a=%d", a)
	}
}

func TestInverseCompositeModulus(t *testing.T) {
	n := big.NewInt(21)
	for a := int64(0); a < 21; a++ {
		inv, err := Inverse(big.NewInt(a), n)
		if new(big.Int).GCD(nil, nil, big.NewInt(a), n).Cmp(one) != 0 {
			assert.ErrorIs(t, err, ecsig.ErrNoInverse, "a=%d", a)
			continue
		}
		require.NoError(t, err)
		prod := new(big.Int).Mul(big.NewInt(a), inv)
		assert.Equal(t, int64(1), prod.Mod(prod, n).Int64())
	}
}

func TestInverseNoInverse(t *testing.T) {
	_, err := Inverse(big.NewInt(2), big.NewInt(4))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ecsig.ErrNoInverse))

	var invErr *ecsig.InverseError
	require.True(t, errors.As(err, &invErr))
	assert.Equal(t, int64(2), invErr.GCD.Int64())

	// zero never has an inverse
	_, err = Inverse(big.NewInt(0), big.NewInt(19))
	assert.ErrorIs(t, err, ecsig.ErrNoInverse)
}

func TestInverseNegativeAndLargeInput(t *testing.T) {
	n := big.NewInt(19)

	// -3 ≡ 16 (mod 19), 16*6 = 96 = 5*19 + 1
	inv, err := Inverse(big.NewInt(-3), n)
	require.NoError(t, err)
	assert.Equal(t, int64(6), inv.Int64())

	inv, err = Inverse(big.NewInt(16+19*5), n)
	require.NoError(t, err)
	assert.Equal(t, int64(6), inv.Int64())
}

func TestInverseInvalidModulus(t *testing.T) {
	for _, n := range []*big.Int{nil, big.NewInt(0), big.NewInt(1), big.NewInt(-7)} {
		_, err := Inverse(big.NewInt(3), n)
		assert.ErrorIs(t, err, ecsig.ErrInvalidModulus)
	}
}

// The next tests compare against independent field implementations over
// large prime moduli.

func TestInverseMatchesSecp256k1Field(t *testing.T) {
	p := secp256k1.S256().P
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 50; i++ {
		a := new(big.Int).Rand(rng, p)
		if a.Sign() == 0 {
			continue
		}

		got, err := Inverse(a, p)
		require.NoError(t, err)

		var f secp256k1.FieldVal
		f.SetByteSlice(a.Bytes())
		f.Inverse().Normalize()
		want := f.Bytes()

		assert.Equal(t, 0, got.Cmp(new(big.Int).SetBytes(want[:])))
	}
}

func TestInverseMatchesSecp256k1Order(t *testing.T) {
	n := secp256k1.S256().N
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 50; i++ {
		a := new(big.Int).Rand(rng, n)
		if a.Sign() == 0 {
			continue
		}

		got, err := Inverse(a, n)
		require.NoError(t, err)

		var s secp256k1.ModNScalar
		s.SetByteSlice(a.Bytes())
		s.InverseNonConst()
		want := s.Bytes()

		assert.Equal(t, 0, got.Cmp(new(big.Int).SetBytes(want[:])))
	}
}

func TestInverseMatchesEd25519Scalar(t *testing.T) {
	// l = 2^252 + 27742317777372353535851937790883648493
	l, _ := new(big.Int).SetString("7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)
	rng := rand.New(rand.NewSource(4))

	for i := 0; i < 50; i++ {
		a := new(big.Int).Rand(rng, l)
		if a.Sign() == 0 {
			continue
		}

		got, err := Inverse(a, l)
		require.NoError(t, err)

		s, err := edwards25519.NewScalar().SetCanonicalBytes(toLittleEndian(a))
		require.NoError(t, err)
		inv := edwards25519.NewScalar().Invert(s)

		assert.Equal(t, 0, got.Cmp(fromLittleEndian(inv.Bytes())))
	}
}

func toLittleEndian(n *big.Int) []byte {
	b := n.Bytes()
	buf := make([]byte, 32)
	for i := 0; i < len(b); i++ {
		buf[len(b)-1-i] = b[i]
	}
	return buf
}

func fromLittleEndian(b []byte) *big.Int {
	buf := make([]byte, len(b))
	for i := range b {
		buf[len(b)-1-i] = b[i]
	}
	return new(big.Int).SetBytes(buf)
}

func FuzzExtendedGCD(f *testing.F) {
	f.Add(uint64(0), uint64(0))
	f.Add(uint64(240), uint64(46))
	f.Add(uint64(1<<63), uint64(3))

	f.Fuzz(func(t *testing.T, a, b uint64) {
		ba := new(big.Int).SetUint64(a)
		bb := new(big.Int).SetUint64(b)
		g, x, y := ExtendedGCD(ba, bb)

		if want := new(big.Int).GCD(nil, nil, ba, bb); g.Cmp(want) != 0 {
			t.Fatalf("gcd(%d, %d) = %s, want %s", a, b, g, want)
		}
		lhs := new(big.Int).Mul(ba, x)
		lhs.Add(lhs, new(big.Int).Mul(bb, y))
		if lhs.Cmp(g) != 0 {
			t.Fatalf("bezout identity failed for (%d, %d)", a, b)
		}
	})
}
