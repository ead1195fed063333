// Package ballot encodes scalar vote choices as positional bit-field
// integers. A single choice becomes a power of two; adding the encodings
// of many ballots, in the clear or homomorphically under Paillier, makes
// each B-bit field accumulate the tally of its choice.
//
// Fields decode through the mask 2^{B-1}-1 rather than 2^B-1: the top bit
// of every field is reserved headroom, so a tally overflowing its B-1
// usable bits is detectable instead of silently bleeding into the next
// field's count. Callers size B so expected tallies stay below 2^{B-1}.
package ballot

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
)

var ErrBadParameter = errors.New("ballot: bad parameter")

const (
	// MinChoices is the smallest meaningful contest size.
	MinChoices = 2
	// MinBitsPerChoice leaves at least one usable tally bit under the
	// overflow-headroom bit.
	MinBitsPerChoice = 2
	// MaxBitsPerChoice keeps per-field masks and tallies inside an int64.
	MaxBitsPerChoice = 62
)

var one = big.NewInt(1)

func validate(numChoices, bitsPerChoice, bin, numBins int) error {
	if numChoices < MinChoices {
		return fmt.Errorf("%w: numChoices %d < %d", ErrBadParameter, numChoices, MinChoices)
	}
	if bitsPerChoice < MinBitsPerChoice || bitsPerChoice > MaxBitsPerChoice {
		return fmt.Errorf("%w: bitsPerChoice %d outside [%d, %d]", ErrBadParameter, bitsPerChoice, MinBitsPerChoice, MaxBitsPerChoice)
	}
	if numBins < 0 {
		return fmt.Errorf("%w: numBins %d < 0", ErrBadParameter, numBins)
	}
	if numBins == 0 {
		if bin != 0 {
			return fmt.Errorf("%w: bin %d without grouping", ErrBadParameter, bin)
		}
		return nil
	}
	if bin < 0 || bin >= numBins {
		return fmt.Errorf("%w: bin %d outside [0, %d)", ErrBadParameter, bin, numBins)
	}
	return nil
}

// EncodeSingle returns the encoding of one choice: a 1 in the lowest bit
// of the field at position bin·numChoices + choice.
//
//	1 << (bitsPerChoice · (bin·numChoices + choice))
//
// Ungrouped callers pass bin = 0, numBins = 0.
func EncodeSingle(choice, numChoices, bitsPerChoice, bin, numBins int) (*big.Int, error) {
	if err := validate(numChoices, bitsPerChoice, bin, numBins); err != nil {
		return nil, err
	}
	if choice < 0 || choice >= numChoices {
		return nil, fmt.Errorf("%w: choice %d outside [0, %d)", ErrBadParameter, choice, numChoices)
	}
	shift := uint(bitsPerChoice * (bin*numChoices + choice))
	return new(big.Int).Lsh(one, shift), nil
}

// EncodeMultiple returns the sum of the single encodings of choices.
// Repeated choices accumulate; there is no deduplication.
func EncodeMultiple(choices []int, numChoices, bitsPerChoice, bin, numBins int) (*big.Int, error) {
	sum := new(big.Int)
	for _, choice := range choices {
		enc, err := EncodeSingle(choice, numChoices, bitsPerChoice, bin, numBins)
		if err != nil {
			return nil, err
		}
		sum.Add(sum, enc)
	}
	return sum, nil
}

// Decode extracts the per-choice tallies from an accumulated encoding.
// Field i is (x >> i·B) & (2^{B-1} - 1); tallies at or above 2^{B-1} are
// ambiguous and the caller must have picked B large enough.
func Decode(x *big.Int, numChoices, bitsPerChoice int) ([]uint64, error) {
	if err := validate(numChoices, bitsPerChoice, 0, 0); err != nil {
		return nil, err
	}
	if x == nil || x.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative or missing value", ErrBadParameter)
	}
	mask := new(big.Int).SetUint64(uint64(1)<<uint(bitsPerChoice-1) - 1)
	out := make([]uint64, numChoices)
	field := new(big.Int)
	for i := range out {
		field.Rsh(x, uint(i*bitsPerChoice))
		field.And(field, mask)
		out[i] = field.Uint64()
	}
	return out, nil
}

// DecodeGroups decodes a grouped encoding, one tally slice per bin.
// The field for (bin, choice) sits at offset (bin·numChoices + choice)·B.
func DecodeGroups(x *big.Int, numChoices, bitsPerChoice, numBins int) ([][]uint64, error) {
	if numBins < 1 {
		return nil, fmt.Errorf("%w: numBins %d < 1", ErrBadParameter, numBins)
	}
	if err := validate(numChoices, bitsPerChoice, 0, numBins); err != nil {
		return nil, err
	}
	if x == nil || x.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative or missing value", ErrBadParameter)
	}
	mask := new(big.Int).SetUint64(uint64(1)<<uint(bitsPerChoice-1) - 1)
	out := make([][]uint64, numBins)
	field := new(big.Int)
	for bin := range out {
		out[bin] = make([]uint64, numChoices)
		for i := range out[bin] {
			field.Rsh(x, uint((bin*numChoices+i)*bitsPerChoice))
			field.And(field, mask)
			out[bin][i] = field.Uint64()
		}
	}
	return out, nil
}

// TotalBits returns the width of the full encoding,
// numChoices·max(numBins, 1)·bitsPerChoice, or 0 when numChoices or
// bitsPerChoice is not positive or numBins is negative. Aggregation is only
// sound while this stays within the bit
// length of the Paillier modulus.
func TotalBits(numChoices, numBins, bitsPerChoice int) int {
	if numChoices <= 0 || bitsPerChoice <= 0 || numBins < 0 {
		return 0
	}
	bins := numBins
	if bins == 0 {
		bins = 1
	}
	return numChoices * bins * bitsPerChoice
}

// SingleChoicePermutations enumerates every single-choice encoding across
// all bins, in (bin, choice) order: numChoices·max(numBins, 1) values.
// This is the valid set handed to the membership proof.
func SingleChoicePermutations(numChoices, bitsPerChoice, numBins int) ([]*big.Int, error) {
	bins := numBins
	if bins == 0 {
		bins = 1
	}
	out := make([]*big.Int, 0, numChoices*bins)
	for bin := 0; bin < bins; bin++ {
		for choice := 0; choice < numChoices; choice++ {
			b := bin
			if numBins == 0 {
				b = 0
			}
			enc, err := EncodeSingle(choice, numChoices, bitsPerChoice, b, numBins)
			if err != nil {
				return nil, err
			}
			out = append(out, enc)
		}
	}
	return out, nil
}

// Nats converts codec outputs to the naturals the cryptographic layer
// consumes. All codec values are non-negative.
func Nats(xs []*big.Int) []*saferith.Nat {
	out := make([]*saferith.Nat, len(xs))
	for i, x := range xs {
		out[i] = new(saferith.Nat).SetBig(x, x.BitLen())
	}
	return out
}
