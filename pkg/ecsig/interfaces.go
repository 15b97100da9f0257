package ecsig

import (
	"fmt"
	"math/big"
)

// Signature is an ECDSA signature (r, s) with both components in (0, n).
type Signature struct {
	R *big.Int
	S *big.Int
}

func (s *Signature) String() string {
	if s == nil {
		return "(<nil>)"
	}
	return fmt.Sprintf("(%s, %s)", s.R, s.S)
}

// SignedMessage pairs a message with its signature, as produced by Sign.
type SignedMessage struct {
	Message   *big.Int
	Signature *Signature
}

// Verdict is the outcome of verifying a well-formed signature.
// Malformed input is reported as an error, never as Invalid.
type Verdict int

const (
	Invalid Verdict = iota
	Valid
)

func (v Verdict) String() string {
	switch v {
	case Valid:
		return "Valid Signature"
	case Invalid:
		return "Invalid Signature"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Signer produces signatures under a fixed private scalar.
type Signer interface {
	// Sign signs message with the caller-supplied ephemeral scalar.
	// The ephemeral must be fresh for every call: two signatures sharing an
	// ephemeral under the same key reveal the private scalar.
	Sign(message, ephemeral *big.Int) (*SignedMessage, error)
}

// Verifier checks signatures against a fixed public point.
type Verifier interface {
	// Verify returns Valid or Invalid for a well-formed signature, and an
	// error if a component lies outside (0, n).
	Verify(message *big.Int, sig *Signature) (Verdict, error)
}
