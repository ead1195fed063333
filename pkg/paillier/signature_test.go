package paillier

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureRoundtrip(t *testing.T) {
	pk, sk := testKey(t)

	for _, m := range []*big.Int{
		big.NewInt(1),
		big.NewInt(424242),
		new(big.Int).Lsh(big.NewInt(1), 200),
	} {
		sig := sk.Sign(nat(m))
		require.NotNil(t, sig)
		assert.True(t, pk.VerifySignature(nat(m), sig), "signature of %s should verify", m)
	}
}

// Flipping any single bit of the message must flip verification to false.
func TestSignatureRejectsTamperedMessage(t *testing.T) {
	pk, sk := testKey(t)

	m := big.NewInt(987654321)
	sig := sk.Sign(nat(m))
	require.True(t, pk.VerifySignature(nat(m), sig))

	for _, bit := range []int{0, 1, 13, 29} {
		tampered := new(big.Int).Set(m)
		tampered.SetBit(tampered, bit, 1-tampered.Bit(bit))
		assert.False(t, pk.VerifySignature(nat(tampered), sig), "bit %d flip should break the signature", bit)
	}
}

func TestSignatureRejectsTamperedSignature(t *testing.T) {
	pk, sk := testKey(t)

	m := big.NewInt(31337)
	sig := sk.Sign(nat(m))

	s1Bumped := &Signature{S1: nat(new(big.Int).Add(sig.S1.Big(), big.NewInt(1))), S2: sig.S2}
	assert.False(t, pk.VerifySignature(nat(m), s1Bumped))

	s2Bumped := &Signature{S1: sig.S1, S2: nat(new(big.Int).Add(sig.S2.Big(), big.NewInt(1)))}
	assert.False(t, pk.VerifySignature(nat(m), s2Bumped))
}

func TestSignatureFailsClosedOnMalformedInput(t *testing.T) {
	pk, sk := testKey(t)

	m := big.NewInt(5)
	assert.False(t, pk.VerifySignature(nat(m), nil))
	assert.False(t, pk.VerifySignature(nat(m), &Signature{}))

	// Components at or above N are not canonical.
	sig := sk.Sign(nat(m))
	tooBig := &Signature{S1: pk.N().Nat(), S2: sig.S2}
	assert.False(t, pk.VerifySignature(nat(m), tooBig))
}

func TestSignatureWrongKey(t *testing.T) {
	_, sk := testKey(t)

	pl := poolForTest(t)
	otherPk, _, err := KeyGen(pl, 256)
	require.NoError(t, err)

	m := big.NewInt(777)
	sig := sk.Sign(nat(m))
	assert.False(t, otherPk.VerifySignature(nat(m), sig))
}
