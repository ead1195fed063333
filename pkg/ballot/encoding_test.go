package ballot

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSingle(t *testing.T) {
	tests := []struct {
		name                                   string
		choice, numChoices, bits, bin, numBins int
		want                                   int64
	}{
		{"first choice", 0, 3, 8, 0, 0, 1},
		{"second choice", 1, 3, 8, 0, 0, 256},
		{"third choice", 2, 3, 8, 0, 0, 65536},
		{"grouped", 1, 2, 8, 1, 3, 16777216},
		{"grouped first bin", 0, 2, 8, 0, 3, 1},
		{"minimum width", 1, 2, 2, 0, 0, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EncodeSingle(tc.choice, tc.numChoices, tc.bits, tc.bin, tc.numBins)
			require.NoError(t, err)
			assert.Zero(t, big.NewInt(tc.want).Cmp(got))
		})
	}
}

func TestEncodeSingleValidation(t *testing.T) {
	tests := []struct {
		name                                   string
		choice, numChoices, bits, bin, numBins int
	}{
		{"choice out of range", 3, 3, 8, 0, 0},
		{"negative choice", -1, 3, 8, 0, 0},
		{"one choice only", 0, 1, 8, 0, 0},
		{"bits too narrow", 0, 3, 1, 0, 0},
		{"bits too wide", 0, 3, 63, 0, 0},
		{"bin out of range", 0, 3, 8, 3, 3},
		{"negative bin", 0, 3, 8, -1, 3},
		{"bin without grouping", 0, 3, 8, 1, 0},
		{"negative bins", 0, 3, 8, 0, -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EncodeSingle(tc.choice, tc.numChoices, tc.bits, tc.bin, tc.numBins)
			assert.ErrorIs(t, err, ErrBadParameter)
		})
	}
}

func TestEncodeDecodeSingle(t *testing.T) {
	for choice := 0; choice < 4; choice++ {
		enc, err := EncodeSingle(choice, 4, 8, 0, 0)
		require.NoError(t, err)
		counts, err := Decode(enc, 4, 8)
		require.NoError(t, err)
		for i, c := range counts {
			if i == choice {
				assert.EqualValues(t, 1, c)
			} else {
				assert.Zero(t, c)
			}
		}
	}
}

// Summed encodings must decode to the histogram of the multiset.
func TestDecodeHistogram(t *testing.T) {
	votes := []int{0, 2, 0, 1, 0, 2, 2, 2}
	sum := new(big.Int)
	for _, v := range votes {
		enc, err := EncodeSingle(v, 3, 8, 0, 0)
		require.NoError(t, err)
		sum.Add(sum, enc)
	}
	counts, err := Decode(sum, 3, 8)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 1, 4}, counts)
}

func TestEncodeMultipleAccumulatesRepeats(t *testing.T) {
	enc, err := EncodeMultiple([]int{1, 1, 2}, 3, 8, 0, 0)
	require.NoError(t, err)
	counts, err := Decode(enc, 3, 8)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 2, 1}, counts)

	_, err = EncodeMultiple([]int{0, 7}, 3, 8, 0, 0)
	assert.ErrorIs(t, err, ErrBadParameter)

	empty, err := EncodeMultiple(nil, 3, 8, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, empty.Sign())
}

func TestDecodeGroups(t *testing.T) {
	sum := new(big.Int)
	// Two ballots in bin 0 for choice 1, one in bin 2 for choice 0.
	for _, v := range []struct{ choice, bin int }{{1, 0}, {1, 0}, {0, 2}} {
		enc, err := EncodeSingle(v.choice, 2, 8, v.bin, 3)
		require.NoError(t, err)
		sum.Add(sum, enc)
	}
	groups, err := DecodeGroups(sum, 2, 8, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]uint64{{0, 2}, {0, 0}, {1, 0}}, groups)

	_, err = DecodeGroups(sum, 2, 8, 0)
	assert.ErrorIs(t, err, ErrBadParameter)
}

// The decode mask keeps B-1 usable bits; the top bit of each field is
// overflow headroom and never leaks into a neighbouring count.
func TestDecodeMaskWidth(t *testing.T) {
	// 127 = 2^{8-1} - 1 is the largest unambiguous tally for B = 8.
	sum := new(big.Int)
	enc, err := EncodeSingle(1, 3, 8, 0, 0)
	require.NoError(t, err)
	for i := 0; i < 127; i++ {
		sum.Add(sum, enc)
	}
	counts, err := Decode(sum, 3, 8)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 127, 0}, counts)

	// One more tally sets the headroom bit and the field reads as 0.
	sum.Add(sum, enc)
	counts, err = Decode(sum, 3, 8)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 0, 0}, counts)
}

func TestDecodeValidation(t *testing.T) {
	_, err := Decode(nil, 3, 8)
	assert.ErrorIs(t, err, ErrBadParameter)
	_, err = Decode(big.NewInt(-1), 3, 8)
	assert.ErrorIs(t, err, ErrBadParameter)
	_, err = Decode(big.NewInt(1), 1, 8)
	assert.ErrorIs(t, err, ErrBadParameter)
}

func TestTotalBits(t *testing.T) {
	assert.Equal(t, 24, TotalBits(3, 0, 8))
	assert.Equal(t, 72, TotalBits(3, 3, 8))
	assert.Equal(t, 0, TotalBits(0, 3, 8))
	assert.Equal(t, 0, TotalBits(3, -1, 8))
	assert.Equal(t, 0, TotalBits(3, 3, 0))
}

func TestSingleChoicePermutations(t *testing.T) {
	perms, err := SingleChoicePermutations(3, 8, 0)
	require.NoError(t, err)
	require.Len(t, perms, 3)
	assert.Zero(t, big.NewInt(1).Cmp(perms[0]))
	assert.Zero(t, big.NewInt(256).Cmp(perms[1]))
	assert.Zero(t, big.NewInt(65536).Cmp(perms[2]))

	grouped, err := SingleChoicePermutations(2, 8, 3)
	require.NoError(t, err)
	require.Len(t, grouped, 6)
	// (bin, choice) order: entry 3 is bin 1, choice 1.
	want := new(big.Int).Lsh(big.NewInt(1), 24)
	assert.Zero(t, want.Cmp(grouped[3]))

	// Every permutation decodes to exactly one count of one.
	for i, p := range grouped {
		groups, err := DecodeGroups(p, 2, 8, 3)
		require.NoError(t, err)
		total := uint64(0)
		for _, g := range groups {
			for _, c := range g {
				total += c
			}
		}
		assert.EqualValues(t, 1, total, "permutation %d", i)
	}
}

func TestNats(t *testing.T) {
	perms, err := SingleChoicePermutations(3, 8, 0)
	require.NoError(t, err)
	ns := Nats(perms)
	require.Len(t, ns, len(perms))
	for i := range ns {
		assert.Zero(t, perms[i].Cmp(ns[i].Big()))
	}
}
