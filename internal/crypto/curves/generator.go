package curves

import (
	crand "crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/smallyu/go-toy-ecdsa/pkg/ecsig"
)

// MaxSearchModulus bounds the brute-force searches below. They run in O(n)
// time and memory, which is only tractable for educational moduli.
const MaxSearchModulus = 1 << 24

func (c *Curve) searchModulus() (uint64, error) {
	if c.n.Cmp(big.NewInt(MaxSearchModulus)) > 0 {
		return 0, fmt.Errorf("%w: n = %s exceeds %d", ecsig.ErrSearchTooLarge, c.n, MaxSearchModulus)
	}
	return c.n.Uint64(), nil
}

// Generators returns every candidate generator, in ascending x order.
//
// It builds a table from each square base² mod n (base = 0, 1, ...) to a
// witness root, stopping at the first repeated square. Then for each x in
// the same range of bases whose x³ + ax + b is in the table, it emits
// (x, w) and (x, n - w). For prime n that range is [0, (n+1)/2), so not
// every affine point is a candidate. Points with 2w ≡ 0 (mod n) are
// skipped: they cannot be doubled.
func (c *Curve) Generators() ([]Point, error) {
	n, err := c.searchModulus()
	if err != nil {
		return nil, err
	}
	a := c.a.Uint64()
	b := c.b.Uint64()

	roots := make(map[uint64]uint64)
	for base := uint64(0); base < n; base++ {
		sq := base * base % n
		if _, seen := roots[sq]; seen {
			break
		}
		roots[sq] = base
	}

	// The table has one entry per base scanned before the repeat.
	bound := uint64(len(roots))
	var candidates []Point
	for x := uint64(0); x < bound; x++ {
		rhs := (x*x%n*x%n + a*x%n + b) % n
		w, ok := roots[rhs]
		if !ok || 2*w%n == 0 {
			continue
		}
		for _, y := range []uint64{w, n - w} {
			p := Point{
				x:      new(big.Int).SetUint64(x),
				y:      new(big.Int).SetUint64(y),
				affine: true,
			}
			c.mustBeOnCurve("generators", p, "x³ + ax + b = %d, witness %d", rhs, w)
			candidates = append(candidates, p)
		}
	}
	return candidates, nil
}

// Generator returns a candidate from Generators chosen uniformly with
// random. A nil random falls back to crypto/rand.
func (c *Curve) Generator(random io.Reader) (Point, error) {
	candidates, err := c.Generators()
	if err != nil {
		return Point{}, err
	}
	if len(candidates) == 0 {
		return Point{}, fmt.Errorf("%w: %s", ecsig.ErrNoGeneratorFound, c)
	}
	if random == nil {
		random = crand.Reader
	}

	idx, err := crand.Int(random, big.NewInt(int64(len(candidates))))
	if err != nil {
		return Point{}, fmt.Errorf("generator: drawing candidate: %w", err)
	}
	return candidates[idx.Int64()], nil
}

// Points enumerates every affine point on the curve.
func (c *Curve) Points() ([]Point, error) {
	n, err := c.searchModulus()
	if err != nil {
		return nil, err
	}
	a := c.a.Uint64()
	b := c.b.Uint64()

	roots := make(map[uint64][]uint64)
	for y := uint64(0); y < n; y++ {
		sq := y * y % n
		roots[sq] = append(roots[sq], y)
	}

	var points []Point
	for x := uint64(0); x < n; x++ {
		rhs := (x*x%n*x%n + a*x%n + b) % n
		for _, y := range roots[rhs] {
			points = append(points, Point{
				x:      new(big.Int).SetUint64(x),
				y:      new(big.Int).SetUint64(y),
				affine: true,
			})
		}
	}
	return points, nil
}

// Order returns the smallest k ≥ 1 with k·p = Infinity, by repeated
// addition. Hasse's bound keeps k ≤ n + 1 + 2√n < 2n + 2.
func (c *Curve) Order(p Point) (*big.Int, error) {
	n, err := c.searchModulus()
	if err != nil {
		return nil, err
	}
	if !c.OnCurve(p) {
		return nil, fmt.Errorf("%w: %s", ecsig.ErrPointNotOnCurve, p)
	}
	if p.IsInfinity() {
		return big.NewInt(1), nil
	}
	// p = -p exactly when 2y ≡ 0; the tangent there is vertical.
	if new(big.Int).Mod(new(big.Int).Lsh(p.y, 1), c.n).Sign() == 0 {
		return big.NewInt(2), nil
	}

	acc := p
	for k := uint64(1); k <= 2*n+2; k++ {
		if acc.IsInfinity() {
			return new(big.Int).SetUint64(k), nil
		}
		if acc, err = c.add(acc, p); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("order of %s exceeds %d", p, 2*n+2)
}
