package paillier

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
)

// Bigints serialize as base-64 of their big-endian magnitude; every value
// in this scheme is non-negative. A public key serializes as {n, g}, a
// secret key as {lambda, mu}, a signature as {s1, s2}. Round-trips are
// value-exact.

var ErrUnsupportedGenerator = errors.New("paillier: serialized generator is not N+1")

func natToB64(x *saferith.Nat) string {
	return base64.StdEncoding.EncodeToString(x.Bytes())
}

func natFromB64(s string) (*saferith.Nat, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return new(saferith.Nat).SetBytes(raw), nil
}

type jsonPublicKey struct {
	N string `json:"n"`
	G string `json:"g"`
}

func (pk PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonPublicKey{
		N: natToB64(pk.nNat),
		G: natToB64(pk.nPlusOne),
	})
}

func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var x jsonPublicKey
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	n, err := natFromB64(x.N)
	if err != nil {
		return err
	}
	g, err := natFromB64(x.G)
	if err != nil {
		return err
	}
	restored := NewPublicKey(n)
	if restored.nPlusOne.Eq(g) != 1 {
		return ErrUnsupportedGenerator
	}
	*pk = *restored
	return nil
}

type cborPublicKey struct {
	N []byte `cbor:"n"`
}

func (pk PublicKey) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(cborPublicKey{N: pk.nNat.Bytes()})
}

func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	var x cborPublicKey
	if err := cbor.Unmarshal(data, &x); err != nil {
		return err
	}
	*pk = *NewPublicKey(new(saferith.Nat).SetBytes(x.N))
	return nil
}

type jsonSecretKey struct {
	Lambda string `json:"lambda"`
	Mu     string `json:"mu"`
}

func (sk SecretKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonSecretKey{
		Lambda: natToB64(sk.lambda),
		Mu:     natToB64(sk.mu),
	})
}

// UnmarshalJSON restores (λ, μ). The secret key pairs with its public key
// out-of-band; complete it with WithPublicKey before use.
func (sk *SecretKey) UnmarshalJSON(data []byte) error {
	var x jsonSecretKey
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	lambda, err := natFromB64(x.Lambda)
	if err != nil {
		return err
	}
	mu, err := natFromB64(x.Mu)
	if err != nil {
		return err
	}
	*sk = SecretKey{lambda: lambda, mu: mu}
	return nil
}

// WithPublicKey attaches pk to a secret key restored from (λ, μ),
// recomputing the derived values and validating μ against λ.
func (sk *SecretKey) WithPublicKey(pk *PublicKey) (*SecretKey, error) {
	return NewSecretKey(pk, sk.lambda, sk.mu)
}

type cborSecretKey struct {
	Lambda []byte `cbor:"lambda"`
	Mu     []byte `cbor:"mu"`
}

func (sk SecretKey) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(cborSecretKey{
		Lambda: sk.lambda.Bytes(),
		Mu:     sk.mu.Bytes(),
	})
}

func (sk *SecretKey) UnmarshalBinary(data []byte) error {
	var x cborSecretKey
	if err := cbor.Unmarshal(data, &x); err != nil {
		return err
	}
	*sk = SecretKey{
		lambda: new(saferith.Nat).SetBytes(x.Lambda),
		mu:     new(saferith.Nat).SetBytes(x.Mu),
	}
	return nil
}

type jsonSignature struct {
	S1 string `json:"s1"`
	S2 string `json:"s2"`
}

func (sig Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonSignature{
		S1: natToB64(sig.S1),
		S2: natToB64(sig.S2),
	})
}

func (sig *Signature) UnmarshalJSON(data []byte) error {
	var x jsonSignature
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	s1, err := natFromB64(x.S1)
	if err != nil {
		return err
	}
	s2, err := natFromB64(x.S2)
	if err != nil {
		return err
	}
	sig.S1, sig.S2 = s1, s2
	return nil
}

type cborSignature struct {
	S1 []byte `cbor:"s1"`
	S2 []byte `cbor:"s2"`
}

func (sig Signature) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(cborSignature{S1: sig.S1.Bytes(), S2: sig.S2.Bytes()})
}

func (sig *Signature) UnmarshalBinary(data []byte) error {
	var x cborSignature
	if err := cbor.Unmarshal(data, &x); err != nil {
		return err
	}
	sig.S1 = new(saferith.Nat).SetBytes(x.S1)
	sig.S2 = new(saferith.Nat).SetBytes(x.S2)
	return nil
}

func (ct Ciphertext) MarshalJSON() ([]byte, error) {
	return json.Marshal(natToB64(ct.c))
}

func (ct *Ciphertext) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	c, err := natFromB64(s)
	if err != nil {
		return err
	}
	ct.c = c
	return nil
}

func (ct Ciphertext) MarshalBinary() ([]byte, error) {
	return ct.c.Bytes(), nil
}

func (ct *Ciphertext) UnmarshalBinary(data []byte) error {
	ct.c = new(saferith.Nat).SetBytes(data)
	return nil
}
