package matching

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// NameSimilarity computes a similarity ratio in [0,1] between two normalized
// names. The scorer treats the strategy as a black box, so a Jaro-Winkler or
// trigram implementation can be swapped in without touching the weights.
type NameSimilarity interface {
	Ratio(a, b string) float64
}

// corporate suffixes carry no identity signal and routinely differ between
// a field survey entry and a formal registration
var corporateSuffixes = map[string]bool{
	"ltd":          true,
	"limited":      true,
	"inc":          true,
	"incorporated": true,
	"corp":         true,
	"corporation":  true,
	"co":           true,
	"company":      true,
	"plc":          true,
	"llc":          true,
	"pty":          true,
	"holdings":     true,
}

// TokenSetLevenshtein is the default name strategy: drop corporate suffixes,
// sort the remaining tokens, and take the Levenshtein ratio of the joined
// strings. Token sorting makes "Kokoda Trading Mary" and "Mary Kokoda
// Trading" compare as the same name.
type TokenSetLevenshtein struct{}

func (TokenSetLevenshtein) Ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ca := canonicalTokens(a)
	cb := canonicalTokens(b)
	if ca == cb {
		return 1
	}
	return levenshteinRatio(ca, cb)
}

// canonicalTokens strips corporate suffixes and returns the sorted token
// join. If stripping would consume the whole name, the original tokens are
// kept: a business actually named "Limited" still has to match something.
func canonicalTokens(name string) string {
	tokens := strings.Fields(name)
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !corporateSuffixes[t] {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		kept = tokens
	}
	sort.Strings(kept)
	return strings.Join(kept, " ")
}

func levenshteinRatio(a, b string) float64 {
	dist := levenshtein.ComputeDistance(a, b)
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(dist)/float64(longest)
}
