// Package gtin validates GS1 article numbers (GTIN-8, UPC-A, EAN-13 and
// GTIN-14) without calling any remote service.
package gtin

import (
	"errors"
	"strings"
)

// ErrInvalidLength is returned when a code is not 7, 11, 12 or 13 digits
// long, the payload lengths of the four GTIN formats.
var ErrInvalidLength = errors.New("gtin: invalid code length")

// ErrNotNumeric is returned when a code contains non-digit characters.
var ErrNotNumeric = errors.New("gtin: code contains non-digit characters")

// Valid reports whether code is a complete GTIN (8, 12, 13 or 14 digits)
// with a correct mod-10 check digit.
func Valid(code string) bool {
	switch len(code) {
	case 8, 12, 13, 14:
	default:
		return false
	}

	digits, err := parseDigits(code)
	if err != nil {
		return false
	}

	payload := digits[:len(digits)-1]
	return checkDigit(payload) == digits[len(digits)-1]
}

// CheckDigit computes the mod-10 check digit for a GTIN payload, the code
// without its final digit. The payload must be 7, 11, 12 or 13 digits.
func CheckDigit(payload string) (int, error) {
	switch len(payload) {
	case 7, 11, 12, 13:
	default:
		return 0, ErrInvalidLength
	}

	digits, err := parseDigits(payload)
	if err != nil {
		return 0, err
	}

	return checkDigit(digits), nil
}

// IsISBN13 reports whether code is a valid EAN-13 in the Bookland prefix
// ranges 978 and 979.
func IsISBN13(code string) bool {
	if len(code) != 13 {
		return false
	}
	if !strings.HasPrefix(code, "978") && !strings.HasPrefix(code, "979") {
		return false
	}
	return Valid(code)
}

// checkDigit runs the GS1 mod-10 algorithm: weights alternate 3 and 1
// starting with 3 on the rightmost payload digit.
func checkDigit(payload []int) int {
	sum := 0
	weight := 3
	for i := len(payload) - 1; i >= 0; i-- {
		sum += payload[i] * weight
		if weight == 3 {
			weight = 1
		} else {
			weight = 3
		}
	}
	return (10 - sum%10) % 10
}

func parseDigits(code string) ([]int, error) {
	digits := make([]int, len(code))
	for i, r := range code {
		if r < '0' || r > '9' {
			return nil, ErrNotNumeric
		}
		digits[i] = int(r - '0')
	}
	return digits, nil
}
