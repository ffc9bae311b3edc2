package util

import (
	"fmt"
	"time"
)

// FormatRegistrationNumber builds a registration number from the issue year
// and a registry sequence number, e.g. SMEC-2026-00145.
func FormatRegistrationNumber(year int, sequence uint) string {
	return fmt.Sprintf("SMEC-%04d-%05d", year, sequence)
}

// NextRegistrationNumber formats a registration number for the current year
func NextRegistrationNumber(sequence uint) string {
	return FormatRegistrationNumber(time.Now().Year(), sequence)
}
