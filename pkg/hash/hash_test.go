package hash

import (
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/veilpoll/veilpoll/internal/params"
)

func sum(vs ...interface{}) []byte {
	h := New()
	for _, v := range vs {
		if err := h.WriteAny(v); err != nil {
			panic(err)
		}
	}
	return h.Sum()
}

func TestHashDeterministic(t *testing.T) {
	n := new(saferith.Nat).SetUint64(123456)
	assert.Equal(t, sum(n), sum(n))
	assert.Len(t, sum(n), params.ChallengeBytes)
}

func TestHashOrderSensitive(t *testing.T) {
	a := new(saferith.Nat).SetUint64(1)
	b := new(saferith.Nat).SetUint64(2)
	assert.NotEqual(t, sum(a, b), sum(b, a))
}

func TestHashDomainSeparation(t *testing.T) {
	// The same bytes under different types must not collide.
	n := new(saferith.Nat).SetUint64(7)
	assert.NotEqual(t, sum(n), sum([]byte{7}))
	assert.NotEqual(t, sum(n), sum(big.NewInt(7)))
}

func TestHashSupportedTypes(t *testing.T) {
	h := New()
	n := new(saferith.Nat).SetUint64(35)
	m := saferith.ModulusFromBytes([]byte{35})
	assert.NoError(t, h.WriteAny(n, m, big.NewInt(35), []byte{35}))
}

// The length prefix must keep adjacent values apart: shifting bytes from
// one value into the next changes the digest.
func TestHashFramingUnambiguous(t *testing.T) {
	h1 := sum([]byte{1, 2}, []byte{3})
	h2 := sum([]byte{1}, []byte{2, 3})
	assert.NotEqual(t, h1, h2)
}

func TestHashRejectsNil(t *testing.T) {
	var n *saferith.Nat
	assert.Error(t, New().WriteAny(n))
	var b *big.Int
	assert.Error(t, New().WriteAny(b))
	assert.Error(t, New().WriteAny(big.NewInt(-1)))
}

func TestHashChallengeWidth(t *testing.T) {
	e := New().Challenge()
	assert.LessOrEqual(t, e.TrueLen(), params.ChallengeBits)
}

func TestHashClone(t *testing.T) {
	h := New()
	assert.NoError(t, h.WriteAny([]byte("prefix")))
	clone := h.Clone()

	assert.Equal(t, h.Sum(), clone.Sum())
	assert.NoError(t, clone.WriteAny([]byte("more")))
	assert.NotEqual(t, h.Sum(), clone.Sum())
}
