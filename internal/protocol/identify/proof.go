package identify

import (
	"errors"
	"io"
	"math/big"

	"github.com/smallyu/go-toy-ecdsa/internal/crypto/curves"
	"github.com/smallyu/go-toy-ecdsa/internal/protocol/sign"
	"github.com/smallyu/go-toy-ecdsa/pkg/ecsig"
)

// Proof shows that the holder of Public's private scalar answered a
// challenge.
type Proof struct {
	Public    curves.Point
	Signature *ecsig.Signature
}

// NewProof signs the challenge bound to the scheme's public point.
func NewProof(s *sign.Scheme, challenge []byte, random io.Reader) (*Proof, error) {
	if s == nil {
		return nil, errors.New("identify: scheme cannot be nil")
	}
	m := challengeMessage(challenge, s.Public(), s.Curve().N())
	signed, err := s.SignRandom(m, random)
	if err != nil {
		return nil, err
	}
	return &Proof{Public: s.Public(), Signature: signed.Signature}, nil
}

// VerifyProof reports whether proof answers challenge for the verifier's
// public point.
func VerifyProof(v *sign.Verifier, challenge []byte, proof *Proof) bool {
	if v == nil || proof == nil || proof.Signature == nil {
		return false
	}
	if !proof.Public.Equal(v.Public()) {
		return false
	}
	m := challengeMessage(challenge, proof.Public, v.Curve().N())
	verdict, err := v.Verify(m, proof.Signature)
	return err == nil && verdict == ecsig.Valid
}

func challengeMessage(challenge []byte, public curves.Point, n *big.Int) *big.Int {
	buf := append([]byte{}, challenge...)
	buf = append(buf, public.String()...)
	return sign.HashMessage(buf, n)
}
