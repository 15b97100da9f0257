// Package sign implements ECDSA over a toy curve: signing with a
// caller-supplied or random ephemeral, and verification against the public
// point.
//
// All scalar arithmetic is reduced modulo the field modulus n. That is only
// sound when the curve's group order equals n; on other curves signatures
// may fail to verify.
package sign

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/smallyu/go-toy-ecdsa/internal/crypto/curves"
	"github.com/smallyu/go-toy-ecdsa/internal/crypto/modarith"
	"github.com/smallyu/go-toy-ecdsa/internal/protocol/keygen"
	"github.com/smallyu/go-toy-ecdsa/pkg/ecsig"
	"go.uber.org/zap"
)

// MaxSignAttempts bounds the retries of SignRandom.
const MaxSignAttempts = 64

var one = big.NewInt(1)

// Option configures a Scheme.
type Option func(*Scheme)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheme) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReuseGuard makes Sign refuse an ephemeral it has already signed with.
func WithReuseGuard() Option {
	return func(s *Scheme) {
		s.guard = newEphemeralGuard()
	}
}

// Scheme binds a curve to one key pair.
type Scheme struct {
	curve    *curves.Curve
	keys     *keygen.KeyPair
	verifier *Verifier
	guard    *ephemeralGuard
	logger   *zap.Logger
}

var (
	_ ecsig.Signer   = (*Scheme)(nil)
	_ ecsig.Verifier = (*Scheme)(nil)
	_ ecsig.Verifier = (*Verifier)(nil)
)

// NewScheme draws a generator from curve with random and derives the key
// pair for private. A nil random uses crypto/rand.
func NewScheme(curve *curves.Curve, private *big.Int, random io.Reader, opts ...Option) (*Scheme, error) {
	if curve == nil {
		return nil, errors.New("sign: curve is nil")
	}
	keys, err := keygen.Generate(curve, private, random)
	if err != nil {
		return nil, err
	}
	return NewSchemeFromKeys(curve, keys, opts...)
}

// NewSchemeFromKeys builds a Scheme around an existing key pair.
func NewSchemeFromKeys(curve *curves.Curve, keys *keygen.KeyPair, opts ...Option) (*Scheme, error) {
	if curve == nil || keys == nil {
		return nil, errors.New("sign: curve and keys are required")
	}
	s := &Scheme{
		curve:  curve,
		keys:   keys,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	v, err := NewVerifier(curve, keys.Generator(), keys.Public(), s.logger)
	if err != nil {
		return nil, err
	}
	s.verifier = v

	s.logger.Debug("scheme ready",
		zap.Stringer("curve", curve),
		zap.Stringer("generator", keys.Generator()),
		zap.Stringer("public", keys.Public()),
		zap.Bool("reuse_guard", s.guard != nil),
	)
	return s, nil
}

func (s *Scheme) Curve() *curves.Curve { return s.curve }
func (s *Scheme) Generator() curves.Point { return s.keys.Generator() }
func (s *Scheme) Public() curves.Point { return s.keys.Public() }
func (s *Scheme) Keys() *keygen.KeyPair { return s.keys }
func (s *Scheme) Verifier() *Verifier { return s.verifier }

// Sign signs message with the ephemeral k, which must lie in [1, n-1].
// The message is reduced mod n before use; the returned SignedMessage
// carries the message as given.
//
// Reusing k across two messages leaks the private scalar (see package
// identify). WithReuseGuard turns such reuse into ecsig.ErrEphemeralReused.
func (s *Scheme) Sign(message, ephemeral *big.Int) (*ecsig.SignedMessage, error) {
	if message == nil {
		return nil, errNilMessage
	}
	n := s.curve.N()
	if ephemeral == nil || ephemeral.Cmp(one) < 0 || ephemeral.Cmp(n) >= 0 {
		return nil, fmt.Errorf("%w: %v not in [1, %s]", ecsig.ErrInvalidEphemeral, ephemeral, new(big.Int).Sub(n, one))
	}

	if s.guard != nil {
		if !s.guard.reserve(ephemeral) {
			s.logger.Warn("refusing to reuse ephemeral", zap.Stringer("ephemeral", ephemeral))
			return nil, ecsig.ErrEphemeralReused
		}
	}

	sig, err := s.sign(message, ephemeral)
	if err != nil {
		if s.guard != nil {
			s.guard.release(ephemeral)
		}
		return nil, err
	}
	return &ecsig.SignedMessage{
		Message:   new(big.Int).Set(message),
		Signature: sig,
	}, nil
}

func (s *Scheme) sign(message, k *big.Int) (*ecsig.Signature, error) {
	n := s.curve.N()

	p, err := s.curve.Multiply(s.keys.Generator(), k)
	if err != nil {
		return nil, err
	}
	if p.IsInfinity() {
		return nil, fmt.Errorf("%w: %s·G is the point at infinity", ecsig.ErrInvalidEphemeral, k)
	}

	r := modarith.Mod(p.X(), n)
	if r.Sign() == 0 {
		return nil, fmt.Errorf("%w: r = 0 for k = %s", ecsig.ErrInvalidEphemeral, k)
	}

	kinv, err := modarith.Inverse(k, n)
	if err != nil {
		return nil, err
	}

	// s = k⁻¹(m + r·d) mod n
	d := s.keys.Private()
	sv := new(big.Int).Mul(r, d)
	sv.Add(sv, modarith.Mod(message, n))
	sv.Mul(sv, kinv)
	sv.Mod(sv, n)
	if sv.Sign() == 0 {
		return nil, fmt.Errorf("%w: s = 0 for k = %s", ecsig.ErrInvalidEphemeral, k)
	}

	s.logger.Debug("signed",
		zap.Stringer("message", message),
		zap.Stringer("r", r),
		zap.Stringer("s", sv),
	)
	return &ecsig.Signature{R: r, S: sv}, nil
}

// SignRandom signs with ephemerals drawn from random, retrying ephemerals
// that yield a degenerate signature.
func (s *Scheme) SignRandom(message *big.Int, random io.Reader) (*ecsig.SignedMessage, error) {
	var lastErr error
	for attempt := 0; attempt < MaxSignAttempts; attempt++ {
		k, err := keygen.RandomScalar(s.curve, random)
		if err != nil {
			return nil, fmt.Errorf("sign: drawing ephemeral: %w", err)
		}
		signed, err := s.Sign(message, k)
		if err == nil {
			return signed, nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
		s.logger.Debug("retrying ephemeral", zap.Int("attempt", attempt), zap.Error(err))
	}
	return nil, fmt.Errorf("sign: no usable ephemeral after %d attempts: %w", MaxSignAttempts, lastErr)
}

func retryable(err error) bool {
	return errors.Is(err, ecsig.ErrInvalidEphemeral) ||
		errors.Is(err, ecsig.ErrNoInverse) ||
		errors.Is(err, ecsig.ErrEphemeralReused)
}

// Verify delegates to the scheme's Verifier.
func (s *Scheme) Verify(message *big.Int, sig *ecsig.Signature) (ecsig.Verdict, error) {
	return s.verifier.Verify(message, sig)
}
