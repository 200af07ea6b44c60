package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText trims surrounding whitespace and NFC-normalizes s so that
// visually identical customer input is stored byte-identically.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
