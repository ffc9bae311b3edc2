package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRegistrationNumber(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		sequence uint
		want     string
	}{
		{"First registration of the year", 2026, 1, "SMEC-2026-00001"},
		{"Five digit padding", 2026, 42, "SMEC-2026-00042"},
		{"Large sequence", 2026, 12345, "SMEC-2026-12345"},
		{"Sequence beyond padding", 2026, 123456, "SMEC-2026-123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRegistrationNumber(tt.year, tt.sequence))
		})
	}
}

func TestNextRegistrationNumber(t *testing.T) {
	got := NextRegistrationNumber(7)
	want := FormatRegistrationNumber(time.Now().Year(), 7)
	assert.Equal(t, want, got)
}
