package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Record is the comparison view of an MSME row. Callers map their persisted
// rows into this shape; the matching package stays free of storage concerns.
type Record struct {
	ID             uint
	BusinessName   string
	TradingName    string
	PrimaryPhone   string
	SecondaryPhone string
	ProvinceID     string
	DistrictID     string
}

// NormalizedFields is the canonical comparison form of a record.
// Normalization is deterministic and idempotent: normalizing an already
// normalized value returns it unchanged.
type NormalizedFields struct {
	ID           uint
	BusinessName string
	TradingName  string
	Phones       []string // normalized, absent phones dropped
	ProvinceID   string
	DistrictID   string
}

// diacritic folding: NFKD decomposition with combining marks removed
var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize maps a record to its canonical comparison form
func Normalize(rec Record) NormalizedFields {
	phones := make([]string, 0, 2)
	if p := NormalizePhone(rec.PrimaryPhone); p != "" {
		phones = append(phones, p)
	}
	if p := NormalizePhone(rec.SecondaryPhone); p != "" {
		phones = append(phones, p)
	}

	return NormalizedFields{
		ID:           rec.ID,
		BusinessName: NormalizeName(rec.BusinessName),
		TradingName:  NormalizeName(rec.TradingName),
		Phones:       phones,
		// location ids are already stable gazetteer slugs
		ProvinceID: rec.ProvinceID,
		DistrictID: rec.DistrictID,
	}
}

// NormalizeName canonicalizes a business or trading name: diacritics folded,
// lower-cased, punctuation stripped (hyphens inside a word survive),
// whitespace collapsed.
func NormalizeName(name string) string {
	folded, _, err := transform.String(foldTransformer, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-':
			b.WriteRune(r)
		default:
			// all other punctuation and whitespace becomes a separator
			b.WriteRune(' ')
		}
	}

	// collapse whitespace and drop hyphens left at word edges
	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}

// NormalizePhone reduces a phone number to digits plus an optional leading
// "+". A "00" international prefix collapses to "+". Anything with fewer
// than 7 digits carries too little signal and is treated as absent.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	plus := false
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			continue
		}
		if r == '+' && i == 0 {
			plus = true
		}
	}

	d := digits.String()
	if strings.HasPrefix(d, "00") {
		d = d[2:]
		plus = true
	}
	if len(d) < 7 {
		return ""
	}
	if plus {
		return "+" + d
	}
	return d
}
