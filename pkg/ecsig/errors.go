package ecsig

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Errors returned by the curve, key and signing layers.
// Callers compare against these with errors.Is.
var (
	ErrInvalidCurve              = errors.New("invalid curve parameters")
	ErrNoGeneratorFound          = errors.New("no generator found")
	ErrNoInverse                 = errors.New("no modular inverse")
	ErrInvalidModulus            = errors.New("invalid modulus")
	ErrInvalidSignatureComponent = errors.New("signature component out of range")
	ErrInvalidKey                = errors.New("private scalar out of range")
	ErrInvalidEphemeral          = errors.New("unusable ephemeral scalar")
	ErrEphemeralReused           = errors.New("ephemeral scalar reused")
	ErrNegativeScalar            = errors.New("negative scalar")
	ErrPointNotOnCurve           = errors.New("point not on curve")
	ErrSearchTooLarge            = errors.New("modulus too large for brute-force search")
	ErrNoLeak                    = errors.New("no ephemeral reuse found")
)

// CurveError reports every construction invariant a parameter set violates.
type CurveError struct {
	Violations []string
}

func (e *CurveError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidCurve, strings.Join(e.Violations, "; "))
}

func (e *CurveError) Unwrap() error {
	return ErrInvalidCurve
}

// InverseError is returned when Value has no inverse modulo Modulus,
// i.e. gcd(Value, Modulus) = GCD != 1. It is recoverable: signing callers
// retry with a different ephemeral scalar.
type InverseError struct {
	Value   *big.Int
	Modulus *big.Int
	GCD     *big.Int
}

func (e *InverseError) Error() string {
	return fmt.Sprintf("%v: gcd(%s, %s) = %s", ErrNoInverse, e.Value, e.Modulus, e.GCD)
}

func (e *InverseError) Unwrap() error {
	return ErrNoInverse
}

// ComponentError reports a signature component outside (0, Modulus).
type ComponentError struct {
	Component string // "r" or "s"
	Value     *big.Int
	Modulus   *big.Int
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("%v: %s = %s not in (0, %s)", ErrInvalidSignatureComponent, e.Component, e.Value, e.Modulus)
}

func (e *ComponentError) Unwrap() error {
	return ErrInvalidSignatureComponent
}

// InvariantViolation is the panic value raised when a group operation
// produces a point that is not on the curve. It signals an arithmetic bug
// and is never returned as an error.
type InvariantViolation struct {
	Op     string
	Detail string
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violated in %s: %s", v.Op, v.Detail)
}
