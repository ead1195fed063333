// Package sample draws the random values the cryptosystem consumes:
// uniform elements and units of ℤₙ, bit-bounded integers for simulated
// proof clauses, and the primes backing key generation.
package sample

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
)

const maxIterations = 255

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

// mustReadBits fills buf from rand. The system RNG failing is not a
// condition the caller can recover from, so it is fatal.
func mustReadBits(rand io.Reader, buf []byte) {
	if _, err := io.ReadFull(rand, buf); err != nil {
		panic(fmt.Errorf("sample: rng failure: %w", err))
	}
}

// maskedDraw fills buf and clears the spare high bits, leaving a uniform
// value of at most bits bits. Masking instead of drawing whole bytes keeps
// the rejection rate of the mod-n samplers below one half per draw.
func maskedDraw(rand io.Reader, buf []byte, bits int) {
	mustReadBits(rand, buf)
	if spare := len(buf)*8 - bits; spare > 0 {
		buf[0] &= 0xFF >> spare
	}
}

// ModN samples a uniform element of ℤₙ by rejection.
func ModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	bits := n.BitLen()
	buf := make([]byte, (bits+7)/8)
	out := new(saferith.Nat)
	for i := 0; i < maxIterations; i++ {
		maskedDraw(rand, buf, bits)
		out.SetBytes(buf)
		if _, _, lt := out.CmpMod(n); lt == 1 {
			return out
		}
	}
	panic(ErrMaxIterations)
}

// UnitModN returns a uniform u ∈ ℤₙˣ. Draws landing outside [0, n) or
// sharing a factor with n are rejected in the same loop.
func UnitModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	bits := n.BitLen()
	buf := make([]byte, (bits+7)/8)
	u := new(saferith.Nat)
	for i := 0; i < maxIterations; i++ {
		maskedDraw(rand, buf, bits)
		u.SetBytes(buf)
		if _, _, lt := u.CmpMod(n); lt != 1 {
			continue
		}
		if u.IsUnit(n) == 1 {
			return u
		}
	}
	panic(ErrMaxIterations)
}

// Bits returns a uniform integer in [0, 2^bits).
func Bits(rand io.Reader, bits int) *saferith.Nat {
	buf := make([]byte, (bits+7)/8)
	maskedDraw(rand, buf, bits)
	return new(saferith.Nat).SetBytes(buf)
}

// UnitBits returns a unit of ℤₙˣ below 2^bits, for bits < log₂(n).
// The membership proof uses this for its simulated responses.
func UnitBits(rand io.Reader, bits int, n *saferith.Modulus) *saferith.Nat {
	buf := make([]byte, (bits+7)/8)
	u := new(saferith.Nat)
	for i := 0; i < maxIterations; i++ {
		maskedDraw(rand, buf, bits)
		u.SetBytes(buf)
		if u.EqZero() == 1 {
			continue
		}
		if u.IsUnit(n) == 1 {
			return u
		}
	}
	panic(ErrMaxIterations)
}
