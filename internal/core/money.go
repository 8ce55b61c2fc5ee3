// Package core provides money parsing and handling utilities.
//
// This file contains functions for converting between major-unit decimal
// amounts (as typed by a treasurer) and integer cents.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var half = decimal.RequireFromString("0.5")

// maxExponent bounds the decimal exponent of an amount. Rescaling a value
// such as "1e20000000" would otherwise build a huge integer.
const maxExponent = 18

// ParseMajorToCents converts a signed decimal amount in major units to cents.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. The
// value is rounded half up to the nearest cent, matching how opening balances
// were always entered. Returns ErrInvalidAmount for malformed input or values
// that do not fit in int64 cents.
//
// Examples:
//
//	ParseMajorToCents("12.34")  -> 1234, nil
//	ParseMajorToCents("-5")     -> -500, nil
//	ParseMajorToCents("0.005")  -> 1, nil
func ParseMajorToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return DecimalToCents(d)
}

// DecimalToCents converts a major-unit decimal to cents with half-up rounding.
func DecimalToCents(d decimal.Decimal) (int64, error) {
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Add(half).Floor()
	bi := cents.BigInt()
	if !bi.IsInt64() {
		return 0, ErrInvalidAmount
	}
	return bi.Int64(), nil
}

// FormatCents renders cents as a major-unit string with two decimals ("-12.34").
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
