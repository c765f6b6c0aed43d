package core

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const ContactNumberLength = 10

var (
	// RE2 \s is ASCII only; \v, \p{Z} and U+FEFF complete the Unicode
	// whitespace set so every space-like rune is rejected.
	emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)
	monthsInYear = decimal.NewFromInt(12)
)

// MonthlyCTC derives the monthly figure from an annual one, rounded to 2 decimals.
func MonthlyCTC(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(monthsInYear).Round(2)
}

func MonthlyCTCFloat(annual float64) float64 {
	value, _ := MonthlyCTC(decimal.NewFromFloat(annual)).Float64()
	return value
}

func ValidEmail(value string) bool {
	return emailPattern.MatchString(value)
}

func ValidContactNumber(value string) bool {
	if len(value) != ContactNumberLength {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SanitizeContactNumber keeps ASCII digits only and truncates to ContactNumberLength.
func SanitizeContactNumber(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			continue
		}
		if b.Len() == ContactNumberLength {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

func HasActiveAssignment(assignments []ClientAssignment) bool {
	for _, a := range assignments {
		if a.Status == AssignmentStatusActive {
			return true
		}
	}
	return false
}

// CheckDeletable reports why emp may not be deleted, or nil.
func CheckDeletable(emp Employee, assignments []ClientAssignment) error {
	if emp.Status == EmployeeStatusActive {
		return ErrEmployeeActive
	}
	if HasActiveAssignment(assignments) {
		return ErrActiveAssignments
	}
	return nil
}

func ValidEmployeeStatus(status EmployeeStatus) bool {
	return status == EmployeeStatusActive || status == EmployeeStatusInactive
}

func ValidAssignmentStatus(status AssignmentStatus) bool {
	return status == AssignmentStatusActive || status == AssignmentStatusInactive
}
