// Package similarity implements the Generalized Jaccard similarity kernel
// over two genes' k-mer multisets.
package similarity

import "github.com/SimoneColli/PanDelos-plus/internal/kmerset"

// Score computes the Generalized Jaccard similarity between two genes given
// their alphabet lengths and pre-built k-mer containers. The result is in
// [0, 1].
//
// Step 1 is a cheap length gate that avoids touching either container when
// the two genes cannot plausibly match. Step 2-4 walk the shorter
// container's sorted entries against the longer one's, exploiting the
// ascending-id invariant for a linear merge, and stop early once the
// shorter side's key exceeds the longer side's maximum key.
func Score(lenA, lenB int, a, b *kmerset.Container) float64 {
	if float64(lenA) < float64(lenB)/2 || float64(lenB) < float64(lenA)/2 {
		return 0
	}

	shortest, longest := a, b
	if a.TotalMultiplicity() > b.TotalMultiplicity() {
		shortest, longest = b, a
	}

	return jaccard(shortest, longest)
}

func jaccard(shortest, longest *kmerset.Container) float64 {
	se := shortest.Entries()
	le := longest.Entries()
	if len(se) == 0 || len(le) == 0 {
		return 0
	}

	longestMaxKey := longest.MaxKey()

	var num, den uint64
	var matchedShortest, matchedLongest uint64

	i, j := 0, 0
	for i < len(se) && j < len(le) {
		sKey := se[i].ID
		if sKey > longestMaxKey {
			break
		}

		lKey := le[j].ID
		switch {
		case sKey < lKey:
			i++
		case sKey > lKey:
			j++
		default:
			sm := uint64(se[i].Count)
			lm := uint64(le[j].Count)
			if sm < lm {
				num += sm
				den += lm
			} else {
				num += lm
				den += sm
			}
			matchedShortest += sm
			matchedLongest += lm
			i++
			j++
		}
	}

	tail := (shortest.TotalMultiplicity() - matchedShortest) + (longest.TotalMultiplicity() - matchedLongest)
	denom := den + tail
	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}
