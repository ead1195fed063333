package params

const (
	// MinKeyBits is the smallest modulus size KeyGen accepts.
	// The bit-field vote codec needs the headroom, and anything smaller
	// offers no margin at all for the aggregation use case.
	MinKeyBits = 160

	// ChallengeBits is the width of the Fiat–Shamir challenge space.
	// It equals the output width of the transcript hash and is the modulus
	// M = 2^ChallengeBits of the OR-proof challenge-sum equation.
	// Prover and verifier must share this value; changing the hash
	// function changes M.
	ChallengeBits  = 256
	ChallengeBytes = ChallengeBits / 8

	// TestKeyBits is the modulus size used by the test suites.
	// Large enough that the 256-bit message hash stays below N²,
	// small enough to keep prime search fast.
	TestKeyBits = 256
)
