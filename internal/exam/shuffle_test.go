package exam

import (
	"slices"
	"strings"
	"testing"
)

func TestShuffleIsPermutation(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 10, 97} {
		in := make([]int, n)
		for i := range in {
			in[i] = i
		}
		orig := slices.Clone(in)

		out := Shuffle(seeded(uint64(n)), in)
		if len(out) != n {
			t.Fatalf("n=%d: expected length %d, got %d", n, n, len(out))
		}
		if !slices.Equal(in, orig) {
			t.Errorf("n=%d: input slice was modified", n)
		}
		sorted := slices.Clone(out)
		slices.Sort(sorted)
		if !slices.Equal(sorted, orig) {
			t.Errorf("n=%d: output is not a permutation of input: %v", n, out)
		}
	}
}

func TestShuffleDeterministicWithSeed(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e", "f", "g"}
	first := Shuffle(seeded(7), in)
	second := Shuffle(seeded(7), in)
	if !slices.Equal(first, second) {
		t.Errorf("same seed produced %v and %v", first, second)
	}
}

func TestShuffleNilRand(t *testing.T) {
	in := []int{1, 2, 3, 4, 5}
	out := Shuffle(nil, in)
	sorted := slices.Clone(out)
	slices.Sort(sorted)
	if !slices.Equal(sorted, in) {
		t.Errorf("expected permutation of %v, got %v", in, out)
	}
}

func TestShuffleUniform(t *testing.T) {
	const runs = 60000
	rng := seeded(1)
	counts := map[string]int{}
	in := []string{"x", "y", "z"}
	for i := 0; i < runs; i++ {
		counts[strings.Join(Shuffle(rng, in), "")]++
	}
	if len(counts) != 6 {
		t.Fatalf("expected all 6 permutations, got %d: %v", len(counts), counts)
	}
	want := runs / 6
	for perm, c := range counts {
		if c < want*9/10 || c > want*11/10 {
			t.Errorf("permutation %s drawn %d times, want about %d", perm, c, want)
		}
	}
}
