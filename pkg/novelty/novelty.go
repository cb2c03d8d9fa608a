// Package novelty estimates whether new input differs enough from previously
// analyzed input to be worth analyzing again.
package novelty

const (
	// DefaultShingleSize is the n-gram length used by IsNovel.
	DefaultShingleSize = 5
	// Threshold is the similarity at or above which input counts as a near-duplicate.
	Threshold = 0.85
)

// JaccardShingles returns |A∩B| / |A∪B| over the sets of length-n rune substrings.
// Two empty shingle sets are identical (1); exactly one empty set scores 0.
func JaccardShingles(a, b string, n int) float64 {
	if n <= 0 {
		n = DefaultShingleSize
	}
	A := shingles(a, n)
	B := shingles(b, n)

	if len(A) == 0 && len(B) == 0 {
		return 1
	}
	if len(A) == 0 || len(B) == 0 {
		return 0
	}

	small, large := A, B
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for s := range small {
		if _, ok := large[s]; ok {
			inter++
		}
	}
	union := len(A) + len(B) - inter
	return float64(inter) / float64(union)
}

// IsNovel reports whether current should be analyzed given the previous input.
// A nil previous is always novel.
func IsNovel(current string, previous *string) bool {
	if previous == nil {
		return true
	}
	return JaccardShingles(current, *previous, DefaultShingleSize) < Threshold
}

func shingles(text string, n int) map[string]struct{} {
	runes := []rune(text)
	out := make(map[string]struct{})
	for i := 0; i+n <= len(runes); i++ {
		out[string(runes[i:i+n])] = struct{}{}
	}
	return out
}
