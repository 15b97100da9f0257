package sign

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/smallyu/go-toy-ecdsa/internal/crypto/curves"
	"github.com/smallyu/go-toy-ecdsa/internal/crypto/modarith"
	"github.com/smallyu/go-toy-ecdsa/pkg/ecsig"
	"go.uber.org/zap"
)

var errNilMessage = errors.New("message is nil")

// Verifier checks signatures against a public point. It holds no private
// material and is safe for concurrent use.
type Verifier struct {
	curve     *curves.Curve
	generator curves.Point
	public    curves.Point
	logger    *zap.Logger

	annihilated     bool
	annihilatedOnce sync.Once
}

// NewVerifier returns a Verifier for public = d·generator. A nil logger
// disables logging.
func NewVerifier(curve *curves.Curve, generator, public curves.Point, logger *zap.Logger) (*Verifier, error) {
	if generator.IsInfinity() || !curve.OnCurve(generator) {
		return nil, fmt.Errorf("verifier: generator %s: %w", generator, ecsig.ErrPointNotOnCurve)
	}
	if !curve.OnCurve(public) {
		return nil, fmt.Errorf("verifier: public point %s: %w", public, ecsig.ErrPointNotOnCurve)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{
		curve:     curve,
		generator: generator,
		public:    public,
		logger:    logger,
	}, nil
}

// Generator returns G.
func (v *Verifier) Generator() curves.Point { return v.generator }

// Public returns Q.
func (v *Verifier) Public() curves.Point { return v.public }

// Curve returns the curve the verifier works on.
func (v *Verifier) Curve() *curves.Curve { return v.curve }

// Verify checks sig over message. Components outside (0, n) are an error;
// a well-formed signature that does not match is Invalid, including one
// whose verification point cannot be computed because a slope has no
// inverse. Only inverting s itself, possible for composite n, is an error.
func (v *Verifier) Verify(message *big.Int, sig *ecsig.Signature) (ecsig.Verdict, error) {
	if message == nil {
		return ecsig.Invalid, errNilMessage
	}
	n := v.curve.N()
	if err := checkComponents(sig, n); err != nil {
		return ecsig.Invalid, err
	}

	if !v.curve.OnCurve(v.public) {
		panic(&ecsig.InvariantViolation{Op: "verify", Detail: fmt.Sprintf("public point %s left the curve", v.public)})
	}
	v.checkAnnihilated()

	w, err := modarith.Inverse(sig.S, n)
	if err != nil {
		return ecsig.Invalid, err
	}
	m := modarith.Mod(message, n)

	u1 := new(big.Int).Mul(w, m)
	u1.Mod(u1, n)
	u2 := new(big.Int).Mul(w, sig.R)
	u2.Mod(u2, n)

	R, err := v.combine(u1, u2)
	if errors.Is(err, ecsig.ErrNoInverse) {
		// A 2-torsion point was doubled on the way to u1·G + u2·Q.
		v.logger.Debug("verification point undefined", zap.Stringer("signature", sig), zap.Error(err))
		return ecsig.Invalid, nil
	}
	if err != nil {
		return ecsig.Invalid, err
	}

	if R.IsInfinity() {
		return ecsig.Invalid, nil
	}
	if modarith.Mod(R.X(), n).Cmp(sig.R) == 0 {
		return ecsig.Valid, nil
	}
	return ecsig.Invalid, nil
}

// combine returns u1·G + u2·Q.
func (v *Verifier) combine(u1, u2 *big.Int) (curves.Point, error) {
	p1, err := v.curve.Multiply(v.generator, u1)
	if err != nil {
		return curves.Point{}, err
	}
	p2, err := v.curve.Multiply(v.public, u2)
	if err != nil {
		return curves.Point{}, err
	}
	return v.curve.Add(p1, p2)
}

// checkAnnihilated tests n·Q = Infinity once and warns if it fails. n is
// the field modulus, not necessarily the order of Q's subgroup, so the
// result is advisory only and never affects the verdict.
func (v *Verifier) checkAnnihilated() {
	v.annihilatedOnce.Do(func() {
		nq, err := v.curve.Multiply(v.public, v.curve.N())
		if err != nil {
			v.logger.Debug("n·Q check skipped", zap.Error(err))
			return
		}
		v.annihilated = nq.IsInfinity()
		if !v.annihilated {
			v.logger.Warn("public point is not annihilated by the field modulus",
				zap.Stringer("public", v.public),
				zap.Stringer("curve", v.curve),
				zap.Stringer("nQ", nq),
			)
		}
	})
}

// Annihilated reports whether n·Q = Infinity. See checkAnnihilated.
func (v *Verifier) Annihilated() bool {
	v.checkAnnihilated()
	return v.annihilated
}

func checkComponents(sig *ecsig.Signature, n *big.Int) error {
	if sig == nil || sig.R == nil || sig.S == nil {
		return fmt.Errorf("%w: missing component", ecsig.ErrInvalidSignatureComponent)
	}
	if sig.R.Sign() <= 0 || sig.R.Cmp(n) >= 0 {
		return &ecsig.ComponentError{Component: "r", Value: new(big.Int).Set(sig.R), Modulus: n}
	}
	if sig.S.Sign() <= 0 || sig.S.Cmp(n) >= 0 {
		return &ecsig.ComponentError{Component: "s", Value: new(big.Int).Set(sig.S), Modulus: n}
	}
	return nil
}
