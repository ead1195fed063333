// Package arith wraps saferith moduli with the cached values needed for
// fast modular exponentiation when the prime factorization is known.
//
// A Paillier key owns both N = p⋅q and N² = p²⋅q², and every heavy
// exponentiation in the scheme happens against one of the two. Knowing the
// factors allows two half-size exponentiations recombined by Garner's
// formula, with each exponent first reduced modulo the unit-group order of
// its factor (p−1 for a prime, p(p−1) for its square).
package arith

import (
	"github.com/cronokirby/saferith"
)

// Modulus is a saferith.Modulus plus optional CRT data.
type Modulus struct {
	*saferith.Modulus
	crt *crtData
}

// crtData carries the per-factor values used by Exp. The factors are
// coprime and their product is the modulus.
type crtData struct {
	p, q *saferith.Modulus
	// phiP, phiQ are the unit-group orders of p and q.
	phiP, phiQ *saferith.Modulus
	// qInv = q⁻¹ (mod p), the Garner coefficient.
	qInv *saferith.Nat
	qNat *saferith.Nat
}

var one = new(saferith.Nat).SetUint64(1)

// ModulusFromN wraps a modulus with no factorization hint.
// The modulus is not copied.
func ModulusFromN(n *saferith.Modulus) *Modulus {
	return &Modulus{Modulus: n}
}

// ModulusFromPrimes builds N = P⋅Q for two distinct primes, caching the
// CRT data (unit-group orders P−1 and Q−1).
func ModulusFromPrimes(P, Q *saferith.Nat) *Modulus {
	nNat := new(saferith.Nat).Mul(P, Q, -1)
	pMod := saferith.ModulusFromNat(P)
	qMod := saferith.ModulusFromNat(Q)
	return &Modulus{
		Modulus: saferith.ModulusFromNat(nNat),
		crt: &crtData{
			p:    pMod,
			q:    qMod,
			phiP: saferith.ModulusFromNat(new(saferith.Nat).Sub(P, one, -1)),
			phiQ: saferith.ModulusFromNat(new(saferith.Nat).Sub(Q, one, -1)),
			qInv: new(saferith.Nat).ModInverse(Q, pMod),
			qNat: new(saferith.Nat).SetNat(Q),
		},
	}
}

// Squared returns N². When the receiver knows its primes, the square
// carries CRT data for the factors p² and q², whose unit groups have
// order p(p−1) and q(q−1).
func (m *Modulus) Squared() *Modulus {
	nNat := m.Nat()
	nSquared := new(saferith.Nat).Mul(nNat, nNat, -1)
	if m.crt == nil {
		return &Modulus{Modulus: saferith.ModulusFromNat(nSquared)}
	}
	pNat := m.crt.p.Nat()
	qNat := m.crt.q.Nat()
	pSquared := new(saferith.Nat).Mul(pNat, pNat, -1)
	qSquared := new(saferith.Nat).Mul(qNat, qNat, -1)
	pSqMod := saferith.ModulusFromNat(pSquared)
	return &Modulus{
		Modulus: saferith.ModulusFromNat(nSquared),
		crt: &crtData{
			p:    pSqMod,
			q:    saferith.ModulusFromNat(qSquared),
			phiP: saferith.ModulusFromNat(new(saferith.Nat).Mul(pNat, m.crt.phiP.Nat(), -1)),
			phiQ: saferith.ModulusFromNat(new(saferith.Nat).Mul(qNat, m.crt.phiQ.Nat(), -1)),
			qInv: new(saferith.Nat).ModInverse(qSquared, pSqMod),
			qNat: qSquared,
		},
	}
}

// Exp returns xᵉ (mod n).
//
// With CRT data present, the exponent is reduced modulo each factor's
// unit-group order, so bases are expected to be units; a reduction to zero
// falls back to the full exponent. Every caller in this module validates
// its bases as units first, or tolerates a garbage result on the
// negligible non-unit draws.
func (m *Modulus) Exp(x, e *saferith.Nat) *saferith.Nat {
	if m.crt == nil {
		return new(saferith.Nat).Exp(x, e, m.Modulus)
	}
	xp := m.crt.halfExp(x, e, m.crt.p, m.crt.phiP)
	xq := m.crt.halfExp(x, e, m.crt.q, m.crt.phiQ)

	// Garner: r = xq + q·[q⁻¹·(xp − xq) mod p]
	xqModP := new(saferith.Nat).Mod(xq, m.crt.p)
	t := new(saferith.Nat).ModSub(xp, xqModP, m.crt.p)
	t.ModMul(t, m.crt.qInv, m.crt.p)
	r := t.ModMul(t, m.crt.qNat, m.Modulus)
	r.ModAdd(r, xq, m.Modulus)
	return r
}

func (c *crtData) halfExp(x, e *saferith.Nat, f, phi *saferith.Modulus) *saferith.Nat {
	reduced := new(saferith.Nat).Mod(e, phi)
	if reduced.EqZero() == 1 && e.EqZero() != 1 {
		reduced = e
	}
	return new(saferith.Nat).Exp(x, reduced, f)
}

// IsValidNatModN checks that every v is non-nil, nonzero and below n.
func IsValidNatModN(n *saferith.Modulus, vs ...*saferith.Nat) bool {
	for _, v := range vs {
		if v == nil {
			return false
		}
		if v.EqZero() == 1 {
			return false
		}
		_, _, lt := v.CmpMod(n)
		if lt != 1 {
			return false
		}
	}
	return true
}

// IsUnitModN checks that every v is a valid element of ℤₙˣ.
func IsUnitModN(n *saferith.Modulus, vs ...*saferith.Nat) bool {
	if !IsValidNatModN(n, vs...) {
		return false
	}
	for _, v := range vs {
		if v.IsUnit(n) != 1 {
			return false
		}
	}
	return true
}
