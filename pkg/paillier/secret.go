package paillier

import (
	"math/big"

	"github.com/cronokirby/saferith"
)

// SecretKey is the secret half of a Paillier key pair.
//
// Decryption needs λ = lcm(p-1, q-1) and μ = λ⁻¹ (mod N); signing
// additionally needs N⁻¹ (mod λ). Keys built from their primes keep the
// factors around so that exponentiations can use the CRT split.
type SecretKey struct {
	*PublicKey
	// p, q such that N = p⋅q. Nil for keys restored from (λ, μ) alone.
	p, q *saferith.Nat
	// lambda = λ(N), the Carmichael function of N
	lambda *saferith.Nat
	// mu = L(g^λ mod N²)⁻¹ (mod N)
	mu *saferith.Nat
	// nInv = N⁻¹ (mod λ)
	nInv *saferith.Nat
}

// NewSecretKey assembles a secret key from its public half and the pair
// (λ, μ), as restored from storage. The factorization of N is not
// recovered, so the resulting key decrypts without the CRT speedup.
func NewSecretKey(pk *PublicKey, lambda, mu *saferith.Nat) (*SecretKey, error) {
	if pk == nil || lambda == nil || mu == nil || lambda.EqZero() == 1 {
		return nil, ErrInvalidSecretKey
	}
	// With g = N+1, μ must be the inverse of λ (mod N).
	check := new(saferith.Nat).Mod(lambda, pk.n.Modulus)
	check.ModMul(check, mu, pk.n.Modulus)
	if check.Eq(oneNat) != 1 {
		return nil, ErrInvalidSecretKey
	}
	nInvBig := new(big.Int).ModInverse(pk.nNat.Big(), lambda.Big())
	if nInvBig == nil {
		return nil, ErrInvalidSecretKey
	}
	return &SecretKey{
		PublicKey: pk,
		lambda:    lambda,
		mu:        mu,
		nInv:      new(saferith.Nat).SetBig(nInvBig, nInvBig.BitLen()),
	}, nil
}

// Lambda returns λ(N).
func (sk *SecretKey) Lambda() *saferith.Nat {
	return sk.lambda
}

// Mu returns μ = L(g^λ mod N²)⁻¹ (mod N).
func (sk *SecretKey) Mu() *saferith.Nat {
	return sk.mu
}

// Dec decrypts ct and returns the plaintext m ∈ [0, N).
// Returns ErrBadCiphertext unless 0 < ct < N² and gcd(ct, N²) = 1.
//
//	m = L(ct^λ mod N²)·μ (mod N)
func (sk *SecretKey) Dec(ct *Ciphertext) (*saferith.Nat, error) {
	if !sk.PublicKey.ValidateCiphertexts(ct) {
		return nil, ErrBadCiphertext
	}
	n := sk.n.Modulus

	// r = ct^λ (mod N²)
	result := sk.nSquared.Exp(ct.c, sk.lambda)
	// r = (ct^λ - 1)/N, exact division
	result.Sub(result, oneNat, -1)
	result.Div(result, n, -1)
	// r = L(ct^λ)·μ (mod N)
	result.ModMul(result, sk.mu, n)
	return result, nil
}
