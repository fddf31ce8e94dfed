// Package sctid validates, parses and composes SNOMED CT identifiers.
//
// An SCTID is a string of 6 to 18 digits laid out as
//
//	sequence [namespace] partition checkDigit
//
// where the 7-digit namespace is present only for extension partitions
// (first partition digit '1') and the check digit is computed with the
// Verhoeff algorithm over every preceding digit.
package sctid

import (
	dErrors "cis/pkg/domain-errors"
)

// Verhoeff multiplication table (dihedral group D5).
var verhoeffD = [10][10]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{1, 2, 3, 4, 0, 6, 7, 8, 9, 5},
	{2, 3, 4, 0, 1, 7, 8, 9, 5, 6},
	{3, 4, 0, 1, 2, 8, 9, 5, 6, 7},
	{4, 0, 1, 2, 3, 9, 5, 6, 7, 8},
	{5, 9, 8, 7, 6, 0, 4, 3, 2, 1},
	{6, 5, 9, 8, 7, 1, 0, 4, 3, 2},
	{7, 6, 5, 9, 8, 2, 1, 0, 4, 3},
	{8, 7, 6, 5, 9, 3, 2, 1, 0, 4},
	{9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
}

// Verhoeff permutation table, row i applies to position i mod 8.
var verhoeffP = [8][10]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{1, 5, 7, 6, 2, 8, 3, 0, 9, 4},
	{5, 8, 0, 3, 7, 9, 6, 1, 4, 2},
	{8, 9, 1, 6, 0, 4, 3, 5, 2, 7},
	{9, 4, 5, 3, 1, 2, 6, 8, 7, 0},
	{4, 2, 8, 6, 5, 7, 3, 9, 0, 1},
	{2, 7, 9, 3, 8, 0, 6, 4, 1, 5},
	{7, 0, 4, 6, 9, 1, 3, 2, 5, 8},
}

var verhoeffInv = [10]int{0, 4, 3, 2, 1, 5, 6, 7, 8, 9}

// ComputeCheckDigit returns the Verhoeff check digit for digits. The check
// digit will occupy position 0 once appended, so the rightmost input digit is
// permuted with row 1.
func ComputeCheckDigit(digits string) (int, error) {
	if digits == "" || !isDigits(digits) {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "SctId is not a number.")
	}
	c := 0
	for i := 0; i < len(digits); i++ {
		digit := int(digits[len(digits)-1-i] - '0')
		c = verhoeffD[c][verhoeffP[(i+1)%8][digit]]
	}
	return verhoeffInv[c], nil
}

// IsValid reports whether id is a digit string whose last digit is the
// Verhoeff check digit of the rest. It does not check partition or length
// rules; use Parse for that.
func IsValid(id string) bool {
	if len(id) < 2 || !isDigits(id) {
		return false
	}
	cd, err := ComputeCheckDigit(id[:len(id)-1])
	if err != nil {
		return false
	}
	return cd == int(id[len(id)-1]-'0')
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
