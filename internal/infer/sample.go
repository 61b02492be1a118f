package infer

import "math/rand/v2"

// SampleIndices returns the row indices inspected for a column of length n.
// Columns no longer than size are enumerated in full; longer columns yield
// size distinct indices drawn uniformly without replacement.
func SampleIndices(n, size int, rng *rand.Rand) []int {
	if n <= 0 || size <= 0 {
		return nil
	}

	if n <= size {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}

	// Floyd's algorithm: size draws, no O(n) permutation.
	picked := make(map[int]struct{}, size)
	out := make([]int, 0, size)
	for j := n - size; j < n; j++ {
		t := rng.IntN(j + 1)
		if _, dup := picked[t]; dup {
			t = j
		}
		picked[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// newRand returns the generator used for the column at position.
// A zero seed draws fresh randomness; a fixed seed makes every column's
// sample reproducible regardless of which worker resolves it.
func newRand(seed uint64, position int) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, uint64(position)))
}
