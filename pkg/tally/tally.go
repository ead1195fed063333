// Package tally folds encrypted ballots into a running homomorphic sum
// and turns the decrypted total back into per-choice counts.
package tally

import (
	"context"
	"errors"
	"runtime"

	"github.com/veilpoll/veilpoll/pkg/ballot"
	"github.com/veilpoll/veilpoll/pkg/paillier"
	"golang.org/x/sync/errgroup"
)

var ErrNoBallots = errors.New("tally: no ballots absorbed")

// Aggregator accumulates ballot ciphertexts under one public key.
// Not safe for concurrent use; SumAll is the concurrent entry point.
type Aggregator struct {
	pk  *paillier.PublicKey
	sum *paillier.Ciphertext
	n   int
}

func New(pk *paillier.PublicKey) *Aggregator {
	return &Aggregator{pk: pk}
}

// Absorb folds the given ciphertexts into the running sum.
// Every ciphertext is validated against the key before anything is mixed
// in, so a malformed ballot cannot poison the total.
func (a *Aggregator) Absorb(cts ...*paillier.Ciphertext) error {
	if !a.pk.ValidateCiphertexts(cts...) {
		return paillier.ErrBadCiphertext
	}
	for _, ct := range cts {
		if a.sum == nil {
			a.sum = ct.Clone()
		} else {
			a.sum.Add(a.pk, ct)
		}
		a.n++
	}
	return nil
}

// Count returns the number of ballots absorbed so far.
func (a *Aggregator) Count() int {
	return a.n
}

// Sum returns a copy of the running homomorphic sum, or an error when
// nothing has been absorbed.
func (a *Aggregator) Sum() (*paillier.Ciphertext, error) {
	if a.sum == nil {
		return nil, ErrNoBallots
	}
	return a.sum.Clone(), nil
}

// Counts decrypts the running sum and decodes the per-choice tallies of
// an ungrouped encoding.
func (a *Aggregator) Counts(sk *paillier.SecretKey, numChoices, bitsPerChoice int) ([]uint64, error) {
	sum, err := a.Sum()
	if err != nil {
		return nil, err
	}
	m, err := sk.Dec(sum)
	if err != nil {
		return nil, err
	}
	return ballot.Decode(m.Big(), numChoices, bitsPerChoice)
}

// GroupCounts decrypts the running sum and decodes a grouped encoding,
// one tally slice per bin.
func (a *Aggregator) GroupCounts(sk *paillier.SecretKey, numChoices, bitsPerChoice, numBins int) ([][]uint64, error) {
	sum, err := a.Sum()
	if err != nil {
		return nil, err
	}
	m, err := sk.Dec(sum)
	if err != nil {
		return nil, err
	}
	return ballot.DecodeGroups(m.Big(), numChoices, bitsPerChoice, numBins)
}

// SumAll homomorphically folds a batch of ciphertexts, splitting the work
// into per-worker partial products that are combined at the end.
func SumAll(ctx context.Context, pk *paillier.PublicKey, cts []*paillier.Ciphertext) (*paillier.Ciphertext, error) {
	if len(cts) == 0 {
		return nil, ErrNoBallots
	}
	if !pk.ValidateCiphertexts(cts...) {
		return nil, paillier.ErrBadCiphertext
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(cts) {
		workers = len(cts)
	}
	chunk := (len(cts) + workers - 1) / workers

	parts := make([]*paillier.Ciphertext, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			lo := w * chunk
			hi := lo + chunk
			if hi > len(cts) {
				hi = len(cts)
			}
			if lo >= hi {
				return nil
			}
			acc := cts[lo].Clone()
			for _, ct := range cts[lo+1 : hi] {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				acc.Add(pk, ct)
			}
			parts[w] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total *paillier.Ciphertext
	for _, part := range parts {
		if part == nil {
			continue
		}
		if total == nil {
			total = part
		} else {
			total.Add(pk, part)
		}
	}
	return total, nil
}
