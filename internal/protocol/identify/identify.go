// Package identify recovers private scalars from signatures whose
// ephemerals are related, and proves ownership of a key pair.
//
// Two signatures made with k2 = a·k1 + b expose d through
//
//	d = (a·s2·z1 - s1·z2 + b·s1·s2) / (r2·s1 - a·r1·s2)  (mod n)
//
// Plain reuse is a = 1, b = 0. Since k and n-k produce the same r, a shared
// r is also tried with a = -1.
package identify

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/smallyu/go-toy-ecdsa/internal/crypto/modarith"
	"github.com/smallyu/go-toy-ecdsa/internal/protocol/sign"
	"github.com/smallyu/go-toy-ecdsa/pkg/ecsig"
)

// Leak is a private scalar recovered from a pair of signatures.
type Leak struct {
	First     *ecsig.SignedMessage
	Second    *ecsig.SignedMessage
	Ephemeral *big.Int // k of First
	Private   *big.Int
}

// RecoverAffine recovers d from two signatures whose ephemerals satisfy
// k2 = a·k1 + b. The candidate is confirmed against the verifier's public
// point; ecsig.ErrNoLeak is returned when the relation does not hold.
func RecoverAffine(v *sign.Verifier, first, second *ecsig.SignedMessage, a, b *big.Int) (*Leak, error) {
	if err := checkSigned(first); err != nil {
		return nil, err
	}
	if err := checkSigned(second); err != nil {
		return nil, err
	}
	n := v.Curve().N()

	z1 := modarith.Mod(first.Message, n)
	z2 := modarith.Mod(second.Message, n)
	r1, s1 := first.Signature.R, first.Signature.S
	r2, s2 := second.Signature.R, second.Signature.S

	num := new(big.Int).Mul(a, s2)
	num.Mul(num, z1)
	num.Sub(num, new(big.Int).Mul(s1, z2))
	bs1s2 := new(big.Int).Mul(b, s1)
	num.Add(num, bs1s2.Mul(bs1s2, s2))
	num.Mod(num, n)

	den := new(big.Int).Mul(r2, s1)
	ar1s2 := new(big.Int).Mul(a, r1)
	den.Sub(den, ar1s2.Mul(ar1s2, s2))
	den.Mod(den, n)

	denInv, err := modarith.Inverse(den, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ecsig.ErrNoLeak, err)
	}
	d := num.Mul(num, denInv)
	d.Mod(d, n)

	ok, err := confirm(v, d)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ecsig.ErrNoLeak
	}

	// k1 = (z1 + r1·d) / s1
	sInv, err := modarith.Inverse(s1, n)
	if err != nil {
		return nil, err
	}
	k := new(big.Int).Mul(r1, d)
	k.Add(k, z1)
	k.Mul(k, sInv)
	k.Mod(k, n)

	return &Leak{First: first, Second: second, Ephemeral: k, Private: d}, nil
}

// RecoverFromReuse recovers d from two signatures sharing r, whether they
// reused k or used k and n-k.
func RecoverFromReuse(v *sign.Verifier, first, second *ecsig.SignedMessage) (*Leak, error) {
	if err := checkSigned(first); err != nil {
		return nil, err
	}
	if err := checkSigned(second); err != nil {
		return nil, err
	}
	if first.Signature.R.Cmp(second.Signature.R) != 0 {
		return nil, ecsig.ErrNoLeak
	}

	n := v.Curve().N()
	minusOne := new(big.Int).Sub(n, big.NewInt(1))
	for _, a := range []*big.Int{big.NewInt(1), minusOne} {
		leak, err := RecoverAffine(v, first, second, a, new(big.Int))
		if err == nil {
			return leak, nil
		}
		if !isNoLeak(err) {
			return nil, err
		}
	}
	return nil, ecsig.ErrNoLeak
}

// FindLeak scans signatures made under one key for a pair that shares r
// and returns the first recovery that succeeds.
func FindLeak(v *sign.Verifier, signed []*ecsig.SignedMessage) (*Leak, error) {
	byR := make(map[string][]*ecsig.SignedMessage)
	var order []string
	for _, sm := range signed {
		if err := checkSigned(sm); err != nil {
			return nil, err
		}
		key := sm.Signature.R.String()
		if _, seen := byR[key]; !seen {
			order = append(order, key)
		}
		byR[key] = append(byR[key], sm)
	}

	for _, key := range order {
		group := byR[key]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				leak, err := RecoverFromReuse(v, group[i], group[j])
				if err == nil {
					return leak, nil
				}
				if !isNoLeak(err) {
					return nil, err
				}
			}
		}
	}
	return nil, ecsig.ErrNoLeak
}

func confirm(v *sign.Verifier, d *big.Int) (bool, error) {
	if d.Sign() == 0 {
		return false, nil
	}
	q, err := v.Curve().Multiply(v.Generator(), d)
	if err != nil {
		return false, err
	}
	return q.Equal(v.Public()), nil
}

func checkSigned(sm *ecsig.SignedMessage) error {
	if sm == nil || sm.Message == nil || sm.Signature == nil || sm.Signature.R == nil || sm.Signature.S == nil {
		return fmt.Errorf("identify: incomplete signed message: %w", ecsig.ErrInvalidSignatureComponent)
	}
	return nil
}

func isNoLeak(err error) bool {
	return errors.Is(err, ecsig.ErrNoLeak)
}
