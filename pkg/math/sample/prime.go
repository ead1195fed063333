package sample

import (
	"io"
	"math"
	"math/big"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/veilpoll/veilpoll/pkg/pool"
)

// primes generates an array containing all the odd prime numbers < below.
func primes(below uint32) []uint32 {
	sieve := make([]bool, below)
	for i := 2; i < len(sieve); i++ {
		sieve[i] = true
	}
	for p := 2; p*p < len(sieve); p++ {
		if !sieve[p] {
			continue
		}
		for i := p << 1; i < len(sieve); i += p {
			sieve[i] = false
		}
	}
	// There are approximately N / log N primes below N.
	nF := float64(below)
	out := make([]uint32, 0, int(nF/math.Log(nF)))
	for p := uint32(3); p < below; p++ {
		if sieve[p] {
			out = append(out, p)
		}
	}
	return out
}

// The number of candidates to check after the initial random guess.
const sieveSize = 1 << 17

// The upper bound on the prime numbers used for sieving.
const primeBound = 1 << 19

// The number of Miller-Rabin iterations when checking primality.
// 20 is the same number that Go uses internally.
const primalityIterations = 20

var thePrimes []uint32
var initPrimes sync.Once

var sievePool = sync.Pool{
	New: func() interface{} {
		sieve := make([]bool, sieveSize)
		return &sieve
	},
}

// tryPrime makes one attempt at finding a prime of the given bit length,
// returning nil when the attempt fails.
//
// A random odd candidate with the top two bits set is drawn, and the window
// of candidates above it is sieved by the small primes before anything is
// handed to Miller-Rabin. Setting the top two bits means the product of two
// primes generated this way always has twice their bit length.
func tryPrime(rand io.Reader, bits int) *saferith.Nat {
	initPrimes.Do(func() {
		thePrimes = primes(primeBound)
	})

	if bits < 16 {
		return nil
	}

	buf := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil
	}

	// The number of significant bits in the leading byte.
	lastBits := bits % 8
	if lastBits == 0 {
		lastBits = 8
	}
	buf[0] &= 0xFF >> (8 - lastBits)
	if lastBits >= 2 {
		buf[0] |= 0b11 << (lastBits - 2)
	} else {
		buf[0] |= 1
		buf[1] |= 0x80
	}
	// Candidates are base, base+1, base+2, …; make the base odd so the even
	// offsets are the odd candidates.
	buf[len(buf)-1] |= 1
	base := new(big.Int).SetBytes(buf)

	sievePtr := sievePool.Get().(*[]bool)
	sieve := *sievePtr
	defer sievePool.Put(sievePtr)
	for i := range sieve {
		sieve[i] = true
	}
	for i := 1; i < len(sieve); i += 2 {
		sieve[i] = false
	}
	remainder := new(big.Int)
	for _, prime := range thePrimes {
		remainder.SetUint64(uint64(prime))
		remainder.Mod(base, remainder)
		r := int(remainder.Uint64())
		primeInt := int(prime)
		firstMultiple := primeInt - r
		if r == 0 {
			firstMultiple = 0
		}
		for i := firstMultiple; i < len(sieve); i += primeInt {
			sieve[i] = false
		}
	}

	p := new(big.Int)
	for delta := 0; delta < len(sieve); delta++ {
		if !sieve[delta] {
			continue
		}
		p.SetUint64(uint64(delta))
		p.Add(p, base)
		// Adding delta may have pushed the candidate past the target
		// length; everything beyond is too long as well.
		if p.BitLen() != bits {
			return nil
		}
		if !p.ProbablyPrime(primalityIterations) {
			continue
		}
		return new(saferith.Nat).SetBig(p, bits)
	}
	return nil
}

// Prime returns a random prime of exactly the given bit length, with its
// top two bits set.
func Prime(rand io.Reader, bits int) *saferith.Nat {
	for {
		if p := tryPrime(rand, bits); p != nil {
			return p
		}
	}
}

// Paillier generates the two prime factors of a Paillier modulus of the
// given total bit length, splitting the search across the pool.
// The primes are distinct and each bits/2 bits long.
func Paillier(rand io.Reader, pl *pool.Pool, bits int) (p, q *saferith.Nat) {
	reader := pool.NewLockedReader(rand)
	for {
		results := pl.Search(2, func() interface{} {
			p := tryPrime(reader, bits/2)
			if p == nil {
				return nil
			}
			return p
		})
		p, q = results[0].(*saferith.Nat), results[1].(*saferith.Nat)
		if p.Eq(q) != 1 {
			return
		}
	}
}
