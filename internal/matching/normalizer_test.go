package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Lowercases and trims",
			input: "  Kokoda Traders  ",
			want:  "kokoda traders",
		},
		{
			name:  "Folds diacritics",
			input: "Café Niugini",
			want:  "cafe niugini",
		},
		{
			name:  "Strips punctuation",
			input: "Highlands Fresh Produce, Ltd.",
			want:  "highlands fresh produce ltd",
		},
		{
			name:  "Keeps internal hyphens",
			input: "Kina-Save Trading",
			want:  "kina-save trading",
		},
		{
			name:  "Drops edge hyphens left by punctuation",
			input: "Sepik - River Crafts",
			want:  "sepik river crafts",
		},
		{
			name:  "Collapses whitespace",
			input: "Morobe\t Coffee   Exports",
			want:  "morobe coffee exports",
		},
		{
			name:  "Empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			assert.Equal(t, tt.want, got)

			// normalization must be idempotent
			assert.Equal(t, got, NormalizeName(got))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Keeps digits and leading plus",
			input: "+675 7123 4567",
			want:  "+67571234567",
		},
		{
			name:  "Collapses 00 prefix to plus",
			input: "00675 7123 4567",
			want:  "+67571234567",
		},
		{
			name:  "Strips separators",
			input: "675-7123-4567",
			want:  "67571234567",
		},
		{
			name:  "Interior plus is not a prefix",
			input: "675+7123456",
			want:  "6757123456",
		},
		{
			name:  "Too short is absent",
			input: "712 345",
			want:  "",
		},
		{
			name:  "Seven digits is the minimum",
			input: "7123456",
			want:  "7123456",
		},
		{
			name:  "Empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			assert.Equal(t, tt.want, got)

			// idempotence
			assert.Equal(t, got, NormalizePhone(got))
		})
	}
}

func TestNormalize(t *testing.T) {
	rec := Record{
		ID:             7,
		BusinessName:   "Highlands Fresh Produce, Ltd.",
		TradingName:    "Highlands  Fresh",
		PrimaryPhone:   "+675 7123 4567",
		SecondaryPhone: "123", // too short, dropped
		ProvinceID:     "western-highlands",
		DistrictID:     "mount-hagen",
	}

	got := Normalize(rec)

	assert.Equal(t, uint(7), got.ID)
	assert.Equal(t, "highlands fresh produce ltd", got.BusinessName)
	assert.Equal(t, "highlands fresh", got.TradingName)
	assert.Equal(t, []string{"+67571234567"}, got.Phones)
	assert.Equal(t, "western-highlands", got.ProvinceID)
	assert.Equal(t, "mount-hagen", got.DistrictID)
}
