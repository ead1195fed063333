// Package hash provides the 256-bit transcript hash H used everywhere a
// bigint, or an ordered sequence of bigints, must be mapped to an integer:
// Fiat–Shamir challenges for the membership proof, and message digests for
// the signature scheme.
//
// H is BLAKE3 over the canonical big-endian magnitudes of its inputs, each
// framed as tag || len(data) || data so that neither values of different
// types nor adjacent values can collide. The 32-byte output is interpreted
// as a non-negative integer below 2^256. Prover and verifier must agree on
// this construction; changing it changes the challenge modulus.
package hash

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/veilpoll/veilpoll/internal/params"
	"github.com/zeebo/blake3"
)

// Hash wraps a blake3 hasher and extends it to the module's data types.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash initialized with the module's domain tag.
func New() *Hash {
	h := blake3.New()
	_, _ = h.Write([]byte("veilpoll"))
	return &Hash{h: h}
}

// writeFrame absorbs one value as tag || big-endian uint32 length || data.
// The length prefix keeps value boundaries unambiguous without reserving
// sentinel bytes inside the data.
func (hash *Hash) writeFrame(tag byte, data []byte) {
	var frame [5]byte
	frame[0] = tag
	binary.BigEndian.PutUint32(frame[1:], uint32(len(data)))
	_, _ = hash.h.Write(frame[:])
	_, _ = hash.h.Write(data)
}

// Frame tags, one per supported input type.
const (
	tagBytes byte = iota + 1
	tagNat
	tagModulus
	tagBigInt
)

// Digest returns a reader for the current output of the function.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns the 32-byte digest of the current state.
func (hash *Hash) Sum() []byte {
	out := make([]byte, params.ChallengeBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// Challenge returns the digest as an integer in [0, 2^256).
func (hash *Hash) Challenge() *saferith.Nat {
	return new(saferith.Nat).SetBytes(hash.Sum())
}

// WriteAny absorbs data into the hash state, framing each element.
//
// Supported types:
//
//   - []byte
//   - *saferith.Nat
//   - *saferith.Modulus
//   - *big.Int (non-negative)
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			hash.writeFrame(tagBytes, t)
		case *saferith.Nat:
			if t == nil {
				return fmt.Errorf("hash: write *saferith.Nat: nil")
			}
			hash.writeFrame(tagNat, t.Bytes())
		case *saferith.Modulus:
			if t == nil {
				return fmt.Errorf("hash: write *saferith.Modulus: nil")
			}
			hash.writeFrame(tagModulus, t.Bytes())
		case *big.Int:
			if t == nil {
				return fmt.Errorf("hash: write *big.Int: nil")
			}
			if t.Sign() < 0 {
				return fmt.Errorf("hash: write *big.Int: negative")
			}
			hash.writeFrame(tagBigInt, t.Bytes())
		default:
			panic("hash: unsupported type")
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}
