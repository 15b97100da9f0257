package curves

import (
	"errors"
	"math/big"
	"testing"

	"github.com/smallyu/go-toy-ecdsa/pkg/ecsig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Curves whose group order equals the modulus; every affine point generates.
var anomalous = [][3]int64{
	{1, 18, 19},
	{5, 3, 23},
	{1, 39, 47},
	{1, 14, 67},
	{1, 1, 97},
}

func mustCurve(t testing.TB, a, b, n int64) *Curve {
	t.Helper()
	c, err := NewFromInt64(a, b, n)
	require.NoError(t, err)
	return c
}

func mustPoints(t testing.TB, c *Curve) []Point {
	t.Helper()
	pts, err := c.Points()
	require.NoError(t, err)
	return pts
}

func TestNewRejectsInvalidParameters(t *testing.T) {
	cases := []struct {
		name       string
		a, b, n    int64
		violations int
	}{
		{"singular", 1, 1, 31, 1},
		{"a zero", 0, 5, 19, 1},
		{"a too large", 19, 5, 19, 1},
		{"b zero", 1, 0, 19, 1},
		{"b negative", 1, -1, 19, 1},
		{"n too small", 1, 1, 2, 1},
		{"everything wrong", 0, 0, 0, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFromInt64(tc.a, tc.b, tc.n)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ecsig.ErrInvalidCurve))

			var curveErr *ecsig.CurveError
			require.True(t, errors.As(err, &curveErr))
			assert.Len(t, curveErr.Violations, tc.violations, curveErr.Violations)
		})
	}

	_, err := New(nil, big.NewInt(1), big.NewInt(19))
	assert.ErrorIs(t, err, ecsig.ErrInvalidCurve)
}

func TestNewCopiesParameters(t *testing.T) {
	a := big.NewInt(1)
	c, err := New(a, big.NewInt(18), big.NewInt(19))
	require.NoError(t, err)

	a.SetInt64(5)
	assert.Equal(t, int64(1), c.A().Int64())

	c.N().SetInt64(100)
	assert.Equal(t, int64(19), c.N().Int64())
	assert.Equal(t, "y² = x³ + 1x + 18 (mod 19)", c.String())
}

func TestOnCurve(t *testing.T) {
	c := mustCurve(t, 1, 18, 19)

	assert.True(t, c.OnCurve(Infinity()))
	assert.True(t, c.OnCurve(NewPointInt64(1, 1)))
	assert.True(t, c.OnCurve(NewPointInt64(18, 15)))
	assert.False(t, c.OnCurve(NewPointInt64(1, 2)))
	assert.False(t, c.OnCurve(NewPointInt64(0, 0)))

	// unreduced coordinates are rejected
	assert.False(t, c.OnCurve(NewPointInt64(20, 1)))
	assert.False(t, c.OnCurve(NewPointInt64(1, -18)))
}

func TestOnCurveInfinityForEveryValidCurve(t *testing.T) {
	for n := int64(3); n < 30; n++ {
		for a := int64(1); a < n; a++ {
			for b := int64(1); b < n; b++ {
				c, err := NewFromInt64(a, b, n)
				if err != nil {
					continue
				}
				require.True(t, c.OnCurve(Infinity()))
			}
		}
	}
}

func TestOriginIsNotIdentity(t *testing.T) {
	// Infinity is a tag, not a coordinate pair.
	c := mustCurve(t, 5, 3, 23)
	p := NewPointInt64(0, 7)
	require.True(t, c.OnCurve(p))

	assert.False(t, p.IsInfinity())
	assert.False(t, NewPointInt64(0, 0).IsInfinity())
	assert.True(t, Point{}.IsInfinity())
	assert.False(t, NewPointInt64(0, 0).Equal(Infinity()))
	assert.Nil(t, Infinity().X())
	assert.Equal(t, "Infinity", Infinity().String())
	assert.Equal(t, "(0, 7)", p.String())
}

func TestAddIdentity(t *testing.T) {
	for _, params := range anomalous {
		c := mustCurve(t, params[0], params[1], params[2])
		for _, p := range mustPoints(t, c) {
			sum, err := c.Add(p, Infinity())
			require.NoError(t, err)
			assert.True(t, sum.Equal(p))

			sum, err = c.Add(Infinity(), p)
			require.NoError(t, err)
			assert.True(t, sum.Equal(p))
		}
	}
}

func TestAddInverse(t *testing.T) {
	c := mustCurve(t, 1, 18, 19)
	for _, p := range mustPoints(t, c) {
		neg, err := c.Negate(p)
		require.NoError(t, err)
		assert.Equal(t, 0, neg.X().Cmp(p.X()))

		sum, err := c.Add(p, neg)
		require.NoError(t, err)
		assert.True(t, sum.IsInfinity(), "%s + %s", p, neg)
	}

	neg, err := c.Negate(Infinity())
	require.NoError(t, err)
	assert.True(t, neg.IsInfinity())
}

func TestAddKnownValues(t *testing.T) {
	c := mustCurve(t, 1, 18, 19)

	// s = (3 - 1) / (2 - 1) = 2, x = 4 - 1 - 2 = 1, y = 2(1 - 1) - 1 = 18
	sum, err := c.Add(NewPointInt64(1, 1), NewPointInt64(2, 3))
	require.NoError(t, err)
	assert.True(t, sum.Equal(NewPointInt64(1, 18)), sum.String())

	// s = (3 + 1) / 2 = 2, x = 4 - 2 = 2, y = 2(1 - 2) - 1 = -3 ≡ 16
	dbl, err := c.Double(NewPointInt64(1, 1))
	require.NoError(t, err)
	assert.True(t, dbl.Equal(NewPointInt64(2, 16)), dbl.String())
}

func TestAddCommutativeAndAssociative(t *testing.T) {
	c := mustCurve(t, 5, 3, 23)
	pts := mustPoints(t, c)

	for i, p := range pts {
		for _, q := range pts[i:] {
			pq, err := c.Add(p, q)
			require.NoError(t, err)
			qp, err := c.Add(q, p)
			require.NoError(t, err)
			assert.True(t, pq.Equal(qp))
		}
	}

	p, q, r := pts[0], pts[3], pts[7]
	pq, _ := c.Add(p, q)
	left, err := c.Add(pq, r)
	require.NoError(t, err)
	qr, _ := c.Add(q, r)
	right, err := c.Add(p, qr)
	require.NoError(t, err)
	assert.True(t, left.Equal(right))
}

func TestAddRejectsOffCurvePoints(t *testing.T) {
	c := mustCurve(t, 1, 18, 19)
	_, err := c.Add(NewPointInt64(1, 2), NewPointInt64(1, 1))
	assert.ErrorIs(t, err, ecsig.ErrPointNotOnCurve)

	_, err = c.Multiply(NewPointInt64(1, 2), big.NewInt(3))
	assert.ErrorIs(t, err, ecsig.ErrPointNotOnCurve)
}

func TestAddCompositeModulusPropagatesNoInverse(t *testing.T) {
	// 21 = 3·7; x2 - x1 = 9 shares the factor 3 with n.
	c := mustCurve(t, 1, 1, 21)
	p, q := NewPointInt64(0, 1), NewPointInt64(9, 2)
	require.True(t, c.OnCurve(p))
	require.True(t, c.OnCurve(q))

	_, err := c.Add(p, q)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ecsig.ErrNoInverse))
}

func TestMultiplyZeroAndOne(t *testing.T) {
	c := mustCurve(t, 1, 18, 19)
	for _, p := range mustPoints(t, c) {
		zero, err := c.Multiply(p, big.NewInt(0))
		require.NoError(t, err)
		assert.True(t, zero.IsInfinity())

		same, err := c.Multiply(p, big.NewInt(1))
		require.NoError(t, err)
		assert.True(t, same.Equal(p))
	}

	inf, err := c.Multiply(Infinity(), big.NewInt(11))
	require.NoError(t, err)
	assert.True(t, inf.IsInfinity())
}

func TestMultiplyNegativeScalar(t *testing.T) {
	c := mustCurve(t, 1, 18, 19)
	_, err := c.Multiply(NewPointInt64(1, 1), big.NewInt(-1))
	assert.ErrorIs(t, err, ecsig.ErrNegativeScalar)

	_, err = c.Multiply(NewPointInt64(1, 1), nil)
	assert.ErrorIs(t, err, ecsig.ErrNegativeScalar)
}

func TestMultiplyMatchesRepeatedAddition(t *testing.T) {
	c := mustCurve(t, 1, 39, 47)
	p := mustPoints(t, c)[5]

	acc := Infinity()
	for k := int64(0); k < 60; k++ {
		got, err := c.Multiply(p, big.NewInt(k))
		require.NoError(t, err)
		assert.True(t, got.Equal(acc), "k=%d: %s != %s", k, got, acc)

		acc, err = c.Add(acc, p)
		require.NoError(t, err)
	}
}

func TestMultiplyDistributesOverScalarAddition(t *testing.T) {
	for _, params := range anomalous[:3] {
		c := mustCurve(t, params[0], params[1], params[2])
		for _, p := range mustPoints(t, c) {
			for k1 := int64(0); k1 < 25; k1 += 3 {
				for k2 := int64(0); k2 < 25; k2 += 4 {
					left, err := c.Multiply(p, big.NewInt(k1+k2))
					require.NoError(t, err)

					p1, err := c.Multiply(p, big.NewInt(k1))
					require.NoError(t, err)
					p2, err := c.Multiply(p, big.NewInt(k2))
					require.NoError(t, err)
					right, err := c.Add(p1, p2)
					require.NoError(t, err)

					require.True(t, left.Equal(right), "%s: (%d+%d)·%s", c, k1, k2, p)
				}
			}
		}
	}
}

func TestPublicFromPrivate(t *testing.T) {
	c := mustCurve(t, 1, 18, 19)
	g := NewPointInt64(1, 1)

	pub, err := c.PublicFromPrivate(g, big.NewInt(12))
	require.NoError(t, err)
	want, err := c.Multiply(g, big.NewInt(12))
	require.NoError(t, err)
	assert.True(t, pub.Equal(want))
	assert.True(t, c.OnCurve(pub))
}

func TestInvariantViolationPanics(t *testing.T) {
	c := mustCurve(t, 1, 18, 19)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		v, ok := r.(*ecsig.InvariantViolation)
		require.True(t, ok)
		assert.Equal(t, "test", v.Op)
	}()
	c.mustBeOnCurve("test", NewPointInt64(1, 2), "forced")
}

func TestMultiplySkipsUnusedDoubling(t *testing.T) {
	// (4, 0) on y² = x³ + 3x + 1 (mod 7) has order two and cannot be doubled.
	c := mustCurve(t, 3, 1, 7)
	p := NewPointInt64(4, 0)
	require.True(t, c.OnCurve(p))

	got, err := c.Multiply(p, big.NewInt(1))
	require.NoError(t, err)
	assert.True(t, got.Equal(p))

	_, err = c.Double(p)
	assert.ErrorIs(t, err, ecsig.ErrNoInverse)
	_, err = c.Multiply(p, big.NewInt(2))
	assert.ErrorIs(t, err, ecsig.ErrNoInverse)
}
