package paillier

import (
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecRejectsInvalidCiphertexts(t *testing.T) {
	pk, sk := testKey(t)

	zero := &Ciphertext{c: new(saferith.Nat).SetUint64(0)}
	_, err := sk.Dec(zero)
	assert.ErrorIs(t, err, ErrBadCiphertext, "decrypting 0 should fail")

	atN2 := &Ciphertext{c: pk.N2().Nat()}
	_, err = sk.Dec(atN2)
	assert.ErrorIs(t, err, ErrBadCiphertext, "decrypting N² should fail")

	aboveN2 := new(saferith.Nat).Add(pk.N2().Nat(), oneNat, -1)
	_, err = sk.Dec(&Ciphertext{c: aboveN2})
	assert.ErrorIs(t, err, ErrBadCiphertext, "decrypting N²+1 should fail")

	// N shares a factor with N², so it is not a valid ciphertext either.
	_, err = sk.Dec(&Ciphertext{c: pk.N().Nat()})
	assert.ErrorIs(t, err, ErrBadCiphertext, "decrypting N should fail")

	_, err = sk.Dec(nil)
	assert.ErrorIs(t, err, ErrBadCiphertext)
}

func TestCiphertextCloneIsIndependent(t *testing.T) {
	pk, sk := testKey(t)

	m := big.NewInt(42)
	ct, _, err := pk.Enc(nat(m))
	require.NoError(t, err)

	clone := ct.Clone()
	clone.AddPlain(pk, nat(big.NewInt(1)))

	dec, err := sk.Dec(ct)
	require.NoError(t, err)
	assert.Zero(t, m.Cmp(dec.Big()), "mutating the clone must not touch the original")
	assert.False(t, ct.Equal(clone))
}

func TestCiphertextEqual(t *testing.T) {
	pk, _ := testKey(t)

	nonce := pk.Nonce()
	ct1, err := pk.EncWithNonce(nat(big.NewInt(7)), nonce)
	require.NoError(t, err)
	ct2, err := pk.EncWithNonce(nat(big.NewInt(7)), nonce)
	require.NoError(t, err)

	assert.True(t, ct1.Equal(ct2))
	assert.False(t, ct1.Equal(nil))
}

func TestValidateCiphertexts(t *testing.T) {
	pk, _ := testKey(t)

	ct, _, err := pk.Enc(nat(big.NewInt(3)))
	require.NoError(t, err)
	assert.True(t, pk.ValidateCiphertexts(ct))
	assert.False(t, pk.ValidateCiphertexts(ct, nil))
	assert.False(t, pk.ValidateCiphertexts(&Ciphertext{}))
}
