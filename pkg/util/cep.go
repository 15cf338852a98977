package util

import (
	"errors"
	"strings"
)

// ErrInvalidCEP indicates a postal code that is not exactly 8 digits after
// stripping formatting.
var ErrInvalidCEP = errors.New("invalid CEP: must contain exactly 8 digits")

// NormalizeCEP strips non-digit characters from a Brazilian postal code and
// validates the result is exactly 8 digits.
func NormalizeCEP(cep string) (string, error) {
	var b strings.Builder
	for _, r := range cep {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 8 {
		return "", ErrInvalidCEP
	}
	return digits, nil
}

// FormatCEP renders an 8-digit CEP as 00000-000. Inputs that are not 8
// digits are returned unchanged.
func FormatCEP(cep string) string {
	if len(cep) != 8 {
		return cep
	}
	return cep[:5] + "-" + cep[5:]
}
