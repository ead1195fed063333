package paillier

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/veilpoll/veilpoll/pkg/math/arith"
	"github.com/veilpoll/veilpoll/pkg/math/sample"
)

// PublicKey is a Paillier public key. Immutable after construction.
//
// The generator is fixed to g = N+1, which is what makes the closed-form
// g^m = 1 + N·m (mod N²) available everywhere an exponentiation of g
// would otherwise be needed.
type PublicKey struct {
	n        *arith.Modulus // N
	nSquared *arith.Modulus // N²
	nNat     *saferith.Nat  // N as an exponent
	nPlusOne *saferith.Nat  // g = N+1
	bits     int
}

// NewPublicKey creates the public key with modulus n.
// Keys built this way carry no factorization hint; the ones produced by
// KeyGen use CRT-accelerated exponentiation internally.
func NewPublicKey(n *saferith.Nat) *PublicKey {
	nMod := arith.ModulusFromN(saferith.ModulusFromNat(n))
	nNat := nMod.Nat()
	nSquared := nMod.Squared()
	nPlusOne := new(saferith.Nat).Add(nNat, oneNat, -1)
	nPlusOne.Resize(nPlusOne.TrueLen())
	return &PublicKey{
		n:        nMod,
		nSquared: nSquared,
		nNat:     nNat,
		nPlusOne: nPlusOne,
		bits:     nMod.BitLen(),
	}
}

// Enc encrypts m with a fresh nonce, returning the ciphertext and the
// nonce. The nonce is what the membership proof needs as its witness.
//
//	ct = (1+N)ᵐ ρᴺ (mod N²)
func (pk *PublicKey) Enc(m *saferith.Nat) (*Ciphertext, *saferith.Nat, error) {
	nonce := pk.Nonce()
	ct, err := pk.EncWithNonce(m, nonce)
	if err != nil {
		return nil, nil, err
	}
	return ct, nonce, nil
}

// EncWithNonce encrypts m using the given nonce ρ ∈ ℤₙˣ.
func (pk *PublicKey) EncWithNonce(m, nonce *saferith.Nat) (*Ciphertext, error) {
	if m == nil {
		return nil, ErrPlaintextTooLarge
	}
	if _, _, lt := m.CmpMod(pk.n.Modulus); lt != 1 {
		return nil, ErrPlaintextTooLarge
	}
	c := pk.GPow(m)
	rn := pk.nSquared.Exp(nonce, pk.nNat)
	c.ModMul(c, rn, pk.nSquared.Modulus)
	return &Ciphertext{c: c}, nil
}

// GPow returns gᵐ = 1 + N·m (mod N²), using the closed form instead of an
// exponentiation.
func (pk *PublicKey) GPow(m *saferith.Nat) *saferith.Nat {
	out := new(saferith.Nat).ModMul(pk.nNat, m, pk.nSquared.Modulus)
	out.ModAdd(out, oneNat, pk.nSquared.Modulus)
	return out
}

// Nonce returns a fresh encryption nonce ρ ∈ ℤₙˣ.
func (pk *PublicKey) Nonce() *saferith.Nat {
	return sample.UnitModN(rand.Reader, pk.n.Modulus)
}

// ValidateCiphertexts checks that every argument is a unit of ℤₙ²,
// i.e. nonzero, below N² and coprime to N.
func (pk *PublicKey) ValidateCiphertexts(cts ...*Ciphertext) bool {
	for _, ct := range cts {
		if ct == nil || ct.c == nil {
			return false
		}
		if !arith.IsUnitModN(pk.nSquared.Modulus, ct.c) {
			return false
		}
	}
	return true
}

// Equal returns true if pk = other.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return other != nil && pk.nNat.Eq(other.nNat) == 1
}

// N returns the modulus N.
func (pk *PublicKey) N() *saferith.Modulus {
	return pk.n.Modulus
}

// N2 returns the modulus N².
func (pk *PublicKey) N2() *saferith.Modulus {
	return pk.nSquared.Modulus
}

// Modulus returns N with whatever acceleration hints the key carries.
func (pk *PublicKey) Modulus() *arith.Modulus {
	return pk.n
}

// ModulusSquared returns N² with whatever acceleration hints the key carries.
func (pk *PublicKey) ModulusSquared() *arith.Modulus {
	return pk.nSquared
}

// Bits returns the bit length of N.
func (pk *PublicKey) Bits() int {
	return pk.bits
}
