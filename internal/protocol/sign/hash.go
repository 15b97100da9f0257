package sign

import (
	"crypto/sha256"
	"math/big"
)

// HashMessage maps arbitrary bytes to a message integer: SHA-256 of data,
// read big-endian and reduced mod n. On toy moduli the reduction discards
// nearly all of the digest, so distinct inputs collide often.
func HashMessage(data []byte, n *big.Int) *big.Int {
	sum := sha256.Sum256(data)
	m := new(big.Int).SetBytes(sum[:])
	return m.Mod(m, n)
}
