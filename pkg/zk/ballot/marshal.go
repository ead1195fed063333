package zkballot

import (
	"encoding/base64"
	"encoding/json"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
)

// A proof serializes as {a[], e[], z[]}, each entry the base-64 big-endian
// magnitude of the bigint (JSON) or its raw bytes (cbor).

type jsonProof struct {
	A []string `json:"a"`
	E []string `json:"e"`
	Z []string `json:"z"`
}

type cborProof struct {
	A [][]byte `cbor:"a"`
	E [][]byte `cbor:"e"`
	Z [][]byte `cbor:"z"`
}

func natsToB64(xs []*saferith.Nat) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = base64.StdEncoding.EncodeToString(x.Bytes())
	}
	return out
}

func natsFromB64(ss []string) ([]*saferith.Nat, error) {
	out := make([]*saferith.Nat, len(ss))
	for i, s := range ss {
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, err
		}
		out[i] = new(saferith.Nat).SetBytes(raw)
	}
	return out, nil
}

func natsToBytes(xs []*saferith.Nat) [][]byte {
	out := make([][]byte, len(xs))
	for i, x := range xs {
		out[i] = x.Bytes()
	}
	return out
}

func natsFromBytes(bs [][]byte) []*saferith.Nat {
	out := make([]*saferith.Nat, len(bs))
	for i, b := range bs {
		out[i] = new(saferith.Nat).SetBytes(b)
	}
	return out
}

func (p Proof) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonProof{
		A: natsToB64(p.A),
		E: natsToB64(p.E),
		Z: natsToB64(p.Z),
	})
}

func (p *Proof) UnmarshalJSON(data []byte) error {
	var x jsonProof
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	a, err := natsFromB64(x.A)
	if err != nil {
		return err
	}
	e, err := natsFromB64(x.E)
	if err != nil {
		return err
	}
	z, err := natsFromB64(x.Z)
	if err != nil {
		return err
	}
	p.A, p.E, p.Z = a, e, z
	return nil
}

func (p Proof) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(cborProof{
		A: natsToBytes(p.A),
		E: natsToBytes(p.E),
		Z: natsToBytes(p.Z),
	})
}

func (p *Proof) UnmarshalBinary(data []byte) error {
	var x cborProof
	if err := cbor.Unmarshal(data, &x); err != nil {
		return err
	}
	p.A = natsFromBytes(x.A)
	p.E = natsFromBytes(x.E)
	p.Z = natsFromBytes(x.Z)
	return nil
}
