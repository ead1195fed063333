// Package zkballot proves in zero knowledge that a Paillier ciphertext
// encrypts one element of a public, ordered set of plaintexts, without
// revealing which.
//
// The construction is the Cramer–Damgård–Schoenmakers OR-composition of
// the Guillou–Quisquater-style N-th-residue protocol: one clause per set
// element, the real clause answered honestly and every other clause
// simulated, with the clauses tied together by requiring the per-clause
// challenges to sum to the Fiat–Shamir hash of all first messages. The
// challenge space is [0, 2^256), the hash output width, so the challenge
// sum has an unambiguous non-negative representative.
package zkballot

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/veilpoll/veilpoll/internal/params"
	"github.com/veilpoll/veilpoll/pkg/hash"
	"github.com/veilpoll/veilpoll/pkg/math/arith"
	"github.com/veilpoll/veilpoll/pkg/math/sample"
	"github.com/veilpoll/veilpoll/pkg/paillier"
	"github.com/veilpoll/veilpoll/pkg/pool"
)

var (
	ErrNotInSet       = errors.New("zkballot: plaintext is not in the valid set")
	ErrMalformedProof = errors.New("zkballot: proof shape does not match the valid set")
)

type (
	Public struct {
		// C encrypts one element of Valid under Prover.
		C *paillier.Ciphertext

		// Valid is the ordered set of admissible plaintexts. Prover and
		// verifier must present it in identical order: clause i of the
		// proof corresponds to Valid[i].
		Valid []*saferith.Nat

		Prover *paillier.PublicKey
	}
	Private struct {
		// M = Dec(C), the encrypted plaintext.
		M *saferith.Nat

		// Rho is the encryption nonce of C.
		Rho *saferith.Nat
	}
)

// Proof is the prover's commitment: one (aᵢ, eᵢ, zᵢ) triple per element
// of the valid set, in set order.
type Proof struct {
	A []*saferith.Nat
	E []*saferith.Nat
	Z []*saferith.Nat
}

// clause bundles one simulated triple while the clause loop runs.
type clause struct {
	a, e, z *saferith.Nat
}

// uClause returns uᵢ = c·(g^{mᵢ})⁻¹ (mod N²), the value clause i proves
// to be an N-th residue.
func uClause(pk *paillier.PublicKey, c, m *saferith.Nat) *saferith.Nat {
	gm := pk.GPow(m)
	gmInv := new(saferith.Nat).ModInverse(gm, pk.N2())
	return new(saferith.Nat).ModMul(c, gmInv, pk.N2())
}

// challenge computes ε = H(a₀, …, a_{k-1}), consuming the first messages
// in clause order.
func challenge(A []*saferith.Nat) *saferith.Nat {
	h := hash.New()
	for _, a := range A {
		_ = h.WriteAny(a)
	}
	return h.Challenge()
}

// NewProof proves that public.C encrypts an element of public.Valid,
// given the plaintext and the encryption nonce. Returns ErrNotInSet when
// the plaintext is not in the set.
//
// The clauses are independent until the final hash, so the loop is spread
// across pl; a nil pool runs it serially.
func NewProof(pl *pool.Pool, public Public, private Private) (*Proof, error) {
	k := len(public.Valid)
	kappa := -1
	for i, m := range public.Valid {
		if private.M.Eq(m) == 1 {
			kappa = i
			break
		}
	}
	if kappa < 0 {
		return nil, ErrNotInSet
	}

	pk := public.Prover
	n := pk.N()
	nNat := n.Nat()
	nSquared := pk.ModulusSquared()
	c := public.C.Nat()

	// Simulated challenges stay below min(p, q); simulated responses stay
	// one bit below N.
	eBits := n.BitLen()/2 - 1
	zBits := n.BitLen() - 1

	// ω ∈ ℤₙˣ, the real clause's commitment randomness.
	omega := sample.UnitModN(rand.Reader, n)

	clauses := pl.Parallelize(k, func(i int) interface{} {
		if i == kappa {
			// a_κ = ωᴺ (mod N²)
			return clause{a: nSquared.Exp(omega, nNat)}
		}
		e := sample.Bits(rand.Reader, eBits)
		z := sample.UnitBits(rand.Reader, zBits, n)
		// aᵢ = zᵢᴺ·(uᵢ^{eᵢ})⁻¹ (mod N²)
		u := uClause(pk, c, public.Valid[i])
		ue := nSquared.Exp(u, e)
		ueInv := new(saferith.Nat).ModInverse(ue, nSquared.Modulus)
		a := nSquared.Exp(z, nNat)
		a.ModMul(a, ueInv, nSquared.Modulus)
		return clause{a: a, e: e, z: z}
	})

	proof := &Proof{
		A: make([]*saferith.Nat, k),
		E: make([]*saferith.Nat, k),
		Z: make([]*saferith.Nat, k),
	}
	for i, cl := range clauses {
		proof.A[i] = cl.(clause).a
		proof.E[i] = cl.(clause).e
		proof.Z[i] = cl.(clause).z
	}

	// e_κ = ε - Σ_{i≠κ} eᵢ (mod 2^256), as the representative in [0, M).
	eps := challenge(proof.A)
	m := new(big.Int).Lsh(big.NewInt(1), params.ChallengeBits)
	eKappa := new(big.Int)
	for i, e := range proof.E {
		if i == kappa {
			continue
		}
		eKappa.Add(eKappa, e.Big())
	}
	eKappa.Sub(eps.Big(), eKappa)
	eKappa.Mod(eKappa, m)
	proof.E[kappa] = new(saferith.Nat).SetBig(eKappa, params.ChallengeBits)

	// z_κ = ω·ρ^{e_κ} (mod N)
	rhoE := pk.Modulus().Exp(private.Rho, proof.E[kappa])
	proof.Z[kappa] = new(saferith.Nat).ModMul(omega, rhoE, n)

	return proof, nil
}

// Verify checks the proof against public. Structural mismatches (a slice
// without one entry per set element, or missing entries) surface as
// ErrMalformedProof; a proof that is well-formed but does not check out
// returns (false, nil).
func (p *Proof) Verify(pl *pool.Pool, public Public) (bool, error) {
	k := len(public.Valid)
	if k == 0 {
		return false, ErrMalformedProof
	}
	if p == nil || len(p.A) != k || len(p.E) != k || len(p.Z) != k {
		return false, ErrMalformedProof
	}
	for i := 0; i < k; i++ {
		if p.A[i] == nil || p.E[i] == nil || p.Z[i] == nil {
			return false, ErrMalformedProof
		}
	}
	if public.C == nil || !public.Prover.ValidateCiphertexts(public.C) {
		return false, nil
	}

	pk := public.Prover
	n := pk.N()
	nNat := n.Nat()
	nSquared := pk.ModulusSquared()
	c := public.C.Nat()

	// Σ eᵢ ≡ ε (mod 2^256)
	eps := challenge(p.A)
	m := new(big.Int).Lsh(big.NewInt(1), params.ChallengeBits)
	sum := new(big.Int)
	for _, e := range p.E {
		sum.Add(sum, e.Big())
	}
	sum.Mod(sum, m)
	if sum.Cmp(eps.Big()) != 0 {
		return false, nil
	}

	// zᵢᴺ ≡ aᵢ·uᵢ^{eᵢ} (mod N²) for every clause.
	results := pl.Parallelize(k, func(i int) interface{} {
		if !arith.IsUnitModN(n, p.Z[i]) {
			return false
		}
		if !arith.IsValidNatModN(nSquared.Modulus, p.A[i]) {
			return false
		}
		u := uClause(pk, c, public.Valid[i])
		lhs := nSquared.Exp(p.Z[i], nNat)
		rhs := nSquared.Exp(u, p.E[i])
		rhs.ModMul(rhs, p.A[i], nSquared.Modulus)
		return lhs.Eq(rhs) == 1
	})
	for _, ok := range results {
		if !ok.(bool) {
			return false, nil
		}
	}
	return true, nil
}

// Enc encrypts m under pk and attaches a proof that the result encrypts
// an element of valid. The membership check runs before any encryption
// work, so a plaintext outside the set fails fast with ErrNotInSet.
func Enc(pl *pool.Pool, pk *paillier.PublicKey, m *saferith.Nat, valid []*saferith.Nat) (*paillier.Ciphertext, *Proof, error) {
	member := false
	for _, v := range valid {
		if m.Eq(v) == 1 {
			member = true
			break
		}
	}
	if !member {
		return nil, nil, ErrNotInSet
	}

	ct, nonce, err := pk.Enc(m)
	if err != nil {
		return nil, nil, err
	}
	proof, err := NewProof(pl, Public{C: ct, Valid: valid, Prover: pk}, Private{M: m, Rho: nonce})
	if err != nil {
		return nil, nil, err
	}
	return ct, proof, nil
}
