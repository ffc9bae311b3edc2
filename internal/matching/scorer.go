package matching

import "math"

// Component weights. They intentionally total 90, not 100: the remaining
// headroom is reserved for future signals, and rescaling would silently move
// every stored score. Do not "fix" the sum.
const (
	WeightName     = 40
	WeightPhone    = 30
	WeightProvince = 15
	WeightDistrict = 5

	// MaxScore is the highest score the current weights can produce
	MaxScore = WeightName + WeightPhone + WeightProvince + WeightDistrict

	// nameMatchThreshold is the ratio at which two names count as a match
	nameMatchThreshold = 0.85
)

// DefaultPendingThreshold is the minimum score that opens a review candidate
const DefaultPendingThreshold = 50

// Scorer computes pairwise similarity scores over normalized fields
type Scorer struct {
	names NameSimilarity
}

// NewScorer returns a scorer with the given name strategy; nil selects the
// default token-set Levenshtein strategy.
func NewScorer(names NameSimilarity) *Scorer {
	if names == nil {
		names = TokenSetLevenshtein{}
	}
	return &Scorer{names: names}
}

// Score returns the similarity score in [0,100] for two normalized records
// together with the match reason tags. Scoring is symmetric: Score(a,b) and
// Score(b,a) agree in both score and tags.
func (s *Scorer) Score(a, b NormalizedFields) (int, []string) {
	score := 0
	reasons := make([]string, 0, 3)

	// Name: best ratio across legal and trading names
	ratio := s.bestNameRatio(a, b)
	score += int(math.Round(ratio * WeightName))
	if ratio >= nameMatchThreshold {
		reasons = append(reasons, "name_match")
	}

	// Phone: primary and secondary numbers are interchangeable signals, so
	// any cross pairing counts. Absent phones never match.
	if phonesIntersect(a.Phones, b.Phones) {
		score += WeightPhone
		reasons = append(reasons, "phone_match")
	}

	// Location: province carries most of the weight, district refines it
	if a.ProvinceID != "" && a.ProvinceID == b.ProvinceID {
		score += WeightProvince
		reasons = append(reasons, "location_match")
		if a.DistrictID != "" && a.DistrictID == b.DistrictID {
			score += WeightDistrict
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, reasons
}

func (s *Scorer) bestNameRatio(a, b NormalizedFields) float64 {
	// identical normalized legal names short-circuit the strategy
	if a.BusinessName != "" && a.BusinessName == b.BusinessName {
		return 1
	}

	left := nonEmpty(a.BusinessName, a.TradingName)
	right := nonEmpty(b.BusinessName, b.TradingName)

	best := 0.0
	for _, la := range left {
		for _, rb := range right {
			if r := s.names.Ratio(la, rb); r > best {
				best = r
			}
		}
	}
	return best
}

func nonEmpty(names ...string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

func phonesIntersect(a, b []string) bool {
	for _, pa := range a {
		for _, pb := range b {
			if pa != "" && pa == pb {
				return true
			}
		}
	}
	return false
}
