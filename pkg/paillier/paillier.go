// Package paillier implements the additively homomorphic Paillier
// cryptosystem with generator g = N+1, together with a Paillier-based
// signature scheme.
//
// Plaintexts are elements of ℤₙ, ciphertexts elements of ℤₙ². Multiplying
// two ciphertexts adds their plaintexts, and raising a ciphertext to a
// scalar multiplies its plaintext, which is what lets encoded ballots be
// tallied without decrypting any single one.
package paillier

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/veilpoll/veilpoll/internal/params"
	"github.com/veilpoll/veilpoll/pkg/math/arith"
	"github.com/veilpoll/veilpoll/pkg/math/sample"
	"github.com/veilpoll/veilpoll/pkg/pool"
)

var (
	ErrKeyBits           = errors.New("paillier: key size must be a multiple of 8 and at least 160 bits")
	ErrPlaintextTooLarge = errors.New("paillier: plaintext is not in [0, N)")
	ErrBadCiphertext     = errors.New("paillier: invalid ciphertext")
	ErrInvalidPrimes     = errors.New("paillier: primes do not form a valid key")
	ErrInvalidSecretKey  = errors.New("paillier: secret key does not match public key")
)

var oneNat = new(saferith.Nat).SetUint64(1)

// KeyGen generates a key pair with a modulus of the given bit length.
//
// Both prime factors have bits/2 bits; candidates whose product comes up
// short are thrown away and the search restarts. The only long-running
// operation in this module, so the prime search is spread across pl
// (nil runs it on the calling goroutine).
func KeyGen(pl *pool.Pool, bits int) (*PublicKey, *SecretKey, error) {
	if bits < params.MinKeyBits || bits%8 != 0 {
		return nil, nil, ErrKeyBits
	}
	for {
		p, q := sample.Paillier(rand.Reader, pl, bits)
		sk, err := NewSecretKeyFromPrimes(p, q)
		if err != nil {
			continue
		}
		if sk.PublicKey.Bits() != bits {
			continue
		}
		return sk.PublicKey, sk, nil
	}
}

// NewSecretKeyFromPrimes assembles a key pair from two distinct primes of
// equal bit length.
//
//	λ = lcm(p-1, q-1) = (p-1)(q-1)/gcd(p-1, q-1)
//	μ = L(g^λ mod N²)⁻¹ (mod N), L(u) = (u-1)/N
//
// With g = N+1, g^λ ≡ 1 + Nλ (mod N²), so L(g^λ) reduces to λ (mod N).
func NewSecretKeyFromPrimes(P, Q *saferith.Nat) (*SecretKey, error) {
	if P == nil || Q == nil || P.Eq(Q) == 1 {
		return nil, ErrInvalidPrimes
	}

	pBig, qBig := P.Big(), Q.Big()
	one := big.NewInt(1)
	nBig := new(big.Int).Mul(pBig, qBig)
	pMinus1 := new(big.Int).Sub(pBig, one)
	qMinus1 := new(big.Int).Sub(qBig, one)

	gcd := new(big.Int).GCD(nil, nil, pMinus1, qMinus1)
	lambdaBig := new(big.Int).Mul(pMinus1, qMinus1)
	lambdaBig.Div(lambdaBig, gcd)

	nSquaredBig := new(big.Int).Mul(nBig, nBig)
	// g^λ (mod N²) via the closed form 1 + Nλ.
	u := new(big.Int).Mul(nBig, lambdaBig)
	u.Add(u, one)
	u.Mod(u, nSquaredBig)
	l := new(big.Int).Sub(u, one)
	l.Div(l, nBig)
	muBig := new(big.Int).ModInverse(l, nBig)
	if muBig == nil {
		return nil, ErrInvalidPrimes
	}
	// N⁻¹ (mod λ) exists whenever the primes have equal length; needed to
	// extract n-th roots when signing.
	nInvBig := new(big.Int).ModInverse(nBig, lambdaBig)
	if nInvBig == nil {
		return nil, ErrInvalidPrimes
	}

	n := arith.ModulusFromPrimes(P, Q)
	nNat := n.Nat()
	nPlusOne := new(saferith.Nat).Add(nNat, oneNat, -1)
	// Tightening is fine, since N is public.
	nPlusOne.Resize(nPlusOne.TrueLen())

	nSquared := n.Squared()

	pub := &PublicKey{
		n:        n,
		nSquared: nSquared,
		nNat:     nNat,
		nPlusOne: nPlusOne,
		bits:     n.BitLen(),
	}
	return &SecretKey{
		PublicKey: pub,
		p:         P,
		q:         Q,
		lambda:    new(saferith.Nat).SetBig(lambdaBig, lambdaBig.BitLen()),
		mu:        new(saferith.Nat).SetBig(muBig, muBig.BitLen()),
		nInv:      new(saferith.Nat).SetBig(nInvBig, nInvBig.BitLen()),
	}, nil
}
