package paillier

import (
	"github.com/cronokirby/saferith"
)

// Ciphertext is an element of ℤₙ². It is not tagged with its key; callers
// pair it with the public key out-of-band.
type Ciphertext struct {
	c *saferith.Nat
}

// Add sets ct to the homomorphic sum ct ⊕ other and returns ct.
//
//	ct = ct·other (mod N²), Dec(ct) = m₁ + m₂ (mod N)
func (ct *Ciphertext) Add(pk *PublicKey, other *Ciphertext) *Ciphertext {
	ct.c.ModMul(ct.c, other.c, pk.nSquared.Modulus)
	return ct
}

// AddPlain adds the scalar k to the plaintext of ct, in place.
//
//	ct = ct·(1 + N·k) (mod N²), Dec(ct) = m + k (mod N)
func (ct *Ciphertext) AddPlain(pk *PublicKey, k *saferith.Nat) *Ciphertext {
	ct.c.ModMul(ct.c, pk.GPow(k), pk.nSquared.Modulus)
	return ct
}

// Mul multiplies the plaintext of ct by the scalar k, in place.
//
//	ct = ctᵏ (mod N²), Dec(ct) = m·k (mod N)
func (ct *Ciphertext) Mul(pk *PublicKey, k *saferith.Nat) *Ciphertext {
	ct.c = pk.nSquared.Exp(ct.c, k)
	return ct
}

// Equal checks whether ct = other.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	return other != nil && ct.c.Eq(other.c) == 1
}

// Clone returns a deep copy of ct.
func (ct *Ciphertext) Clone() *Ciphertext {
	return &Ciphertext{c: new(saferith.Nat).SetNat(ct.c)}
}

// Nat returns the value of the ciphertext.
// The returned value shares no state with ct.
func (ct *Ciphertext) Nat() *saferith.Nat {
	return new(saferith.Nat).SetNat(ct.c)
}
