package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrValidationFailed wraps every validation error so callers can map the
// whole family to a 400 with errors.Is.
var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	MaxNameLength        = 120
	MaxCodeLength        = 20
	MaxDescriptionLength = 512
	MaxNotesLength       = 1024
	MaxPhoneLength       = 20
)

var (
	clientCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	datePattern       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateClientCode checks the short human-readable code used in file
// names and combined statement headers.
func ValidateClientCode(code string) error {
	if err := ValidateStringNotEmpty(code, "client code"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(code, MaxCodeLength, "client code"); err != nil {
		return err
	}
	if !clientCodePattern.MatchString(code) {
		return fmt.Errorf("%w: client code may only contain letters, numbers, dashes and underscores", ErrValidationFailed)
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD calendar date with no time component.
func ValidateDate(date, fieldName string) error {
	if !datePattern.MatchString(date) {
		return fmt.Errorf("%w: %s must be in YYYY-MM-DD format", ErrValidationFailed, fieldName)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: %s is not a valid calendar date: %v", ErrValidationFailed, fieldName, err)
	}
	return nil
}

// ValidateAmount checks a debit or credit value. Amounts are non-negative;
// the debit/credit split carries the direction. Zero is allowed, an
// all-zero entry is simply inert.
func ValidateAmount(v float64, fieldName string) error {
	if v < 0 {
		return fmt.Errorf("%w: %s cannot be negative", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateCurrency checks a supported ledger currency tag.
func ValidateCurrency(currency string) error {
	if currency != "KES" && currency != "USD" {
		return fmt.Errorf("%w: unsupported currency %q", ErrValidationFailed, currency)
	}
	return nil
}
