package paillier

import (
	"github.com/cronokirby/saferith"
	"github.com/veilpoll/veilpoll/pkg/hash"
)

// Signature is a Paillier signature (s₁, s₂), both reduced mod N.
// s₂ enters verification as s₂ᴺ (mod N²).
type Signature struct {
	S1 *saferith.Nat
	S2 *saferith.Nat
}

// hashMessage maps m to H(m) ∈ [0, 2^256). Every key size this module
// accepts has N² well above 2^256, so H(m) is a canonical element of ℤₙ².
func hashMessage(m *saferith.Nat) *saferith.Nat {
	h := hash.New()
	_ = h.WriteAny(m)
	return h.Challenge()
}

// Sign produces the signature of m under sk.
//
//	h  = H(m)
//	s₁ = L(h^λ mod N²)·μ (mod N)
//	s₂ = (h·g^{-s₁})^{N⁻¹ mod λ} (mod N)
//
// s₁ extracts the g-component of h's decomposition g^a·bᴺ in ℤₙ²; s₂ is
// then the N-th root of what remains.
func (sk *SecretKey) Sign(m *saferith.Nat) *Signature {
	n := sk.n.Modulus
	h := hashMessage(m)

	u := sk.nSquared.Exp(h, sk.lambda)
	u.Sub(u, oneNat, -1)
	u.Div(u, n, -1)
	s1 := new(saferith.Nat).ModMul(u, sk.mu, n)

	g := new(saferith.Nat).Mod(sk.nPlusOne, n)
	gPowS1 := sk.n.Exp(g, s1)
	gPowS1Inv := new(saferith.Nat).ModInverse(gPowS1, n)
	x := new(saferith.Nat).Mod(h, n)
	x.ModMul(x, gPowS1Inv, n)
	s2 := sk.n.Exp(x, sk.nInv)

	return &Signature{S1: s1, S2: s2}
}

// VerifySignature reports whether sig is a valid signature of m under pk.
//
//	accept iff g^{s₁}·s₂ᴺ ≡ H(m) (mod N²)
//
// Fails closed: structural anomalies return false rather than an error.
func (pk *PublicKey) VerifySignature(m *saferith.Nat, sig *Signature) bool {
	if sig == nil || sig.S1 == nil || sig.S2 == nil {
		return false
	}
	if _, _, lt := sig.S1.CmpMod(pk.n.Modulus); lt != 1 {
		return false
	}
	if _, _, lt := sig.S2.CmpMod(pk.n.Modulus); lt != 1 {
		return false
	}

	h := hashMessage(m)
	h.Mod(h, pk.nSquared.Modulus)

	lhs := pk.nSquared.Exp(pk.nPlusOne, sig.S1)
	rhs := pk.nSquared.Exp(sig.S2, pk.nNat)
	lhs.ModMul(lhs, rhs, pk.nSquared.Modulus)
	return lhs.Eq(h) == 1
}
