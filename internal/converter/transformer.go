// =============================================================================
// Wisconsin Excise XML - Field Sanitizers
// =============================================================================
//
// Deterministic cleaners applied to raw values before they are placed on a
// canonical record. Every cleaner produces text that satisfies the fixed
// schema grammar for its field:
//   - street addresses: letters, digits, hyphen, slash, single spaces
//   - ZIP codes: 5 or 9 characters from 0-9 and A-Z
//   - TIN: 9 digits, zero padded
//   - permit numbers: 15 digits, zero padded
//
// Numeric parsing failures are reported as *InputError so the caller can name
// the row and the column that held the bad value.
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// INPUT ERRORS
// =============================================================================

// InputError reports a value that could not be coerced to the type its
// canonical field requires.
type InputError struct {
	// Row is the 1-based data row, 0 when the value did not come from a row.
	Row int

	// Column is the raw header the value was read from.
	Column string

	// Field is the canonical field name.
	Field string

	// Value is the offending raw value.
	Value string

	Err error
}

func (e *InputError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: column %q (%s) has non-numeric value %q", e.Row, e.Column, e.Field, e.Value)
	}
	return fmt.Sprintf("%s has non-numeric value %q", e.Field, e.Value)
}

func (e *InputError) Unwrap() error { return e.Err }

// =============================================================================
// STRING CLEANERS
// =============================================================================

var (
	addressDisallowed = regexp.MustCompile(`[^A-Za-z0-9\-/\s]`)
	zipDisallowed     = regexp.MustCompile(`[^0-9A-Z]`)
	nonDigit          = regexp.MustCompile(`[^0-9]`)
	allDigits         = regexp.MustCompile(`^[0-9]+$`)
)

// CleanStreetAddress removes periods and any character the address grammar
// rejects, then collapses runs of whitespace into single spaces.
//
// EXAMPLE:
//
//	"N. Main St., #4"  ->  "N Main St 4"
func CleanStreetAddress(address string) string {
	address = strings.ReplaceAll(address, ".", "")
	address = addressDisallowed.ReplaceAllString(address, "")
	return strings.Join(strings.Fields(address), " ")
}

// CleanZIP uppercases, strips everything outside 0-9/A-Z and left pads
// all-digit values shorter than 5 with zeros. Alphanumeric postal codes pass
// through unpadded.
func CleanZIP(zip string) string {
	zip = zipDisallowed.ReplaceAllString(strings.ToUpper(zip), "")
	if allDigits.MatchString(zip) && len(zip) < 5 {
		zip = strings.Repeat("0", 5-len(zip)) + zip
	}
	return zip
}

// CleanTIN returns exactly 9 digits.
func CleanTIN(tin string) string {
	return fixedDigits(tin, 9)
}

// CleanPermitNumber returns exactly 15 digits.
func CleanPermitNumber(permit string) string {
	return fixedDigits(permit, 15)
}

// fixedDigits keeps the digits of s, truncates to width and zero pads on the left.
func fixedDigits(s string, width int) string {
	digits := nonDigit.ReplaceAllString(s, "")
	if len(digits) > width {
		digits = digits[:width]
	}
	return strings.Repeat("0", width-len(digits)) + digits
}

// =============================================================================
// NUMERIC CONVERSIONS
// =============================================================================

// BottlesToLiters converts a bottle count and a bottle size in milliliters to
// liters rounded to one decimal place.
//
// EXAMPLE:
//
//	BottlesToLiters(12, 750) -> 9.0
func BottlesToLiters(count, sizeML int64) decimal.Decimal {
	ml := decimal.NewFromInt(count).Mul(decimal.NewFromInt(sizeML))
	return ml.Div(decimal.NewFromInt(1000)).Round(1)
}

// ParseDecimal parses a numeric cell. Thousands separators are not accepted.
func ParseDecimal(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(value))
}

// ParseCount parses an integer cell. Values written as "12.0" are accepted
// when they carry no fractional part.
func ParseCount(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%q is not a whole number", value)
	}
	return d.IntPart(), nil
}

// =============================================================================
// BEVERAGE TYPE
// =============================================================================

var (
	beverageTypes = map[string]bool{"BEER": true, "WINE": true, "SPIRITS": true, "UNKNOWN": true}
	titleCaser    = cases.Title(language.English)
)

// NormalizeBeverageType coerces a value to Beer, Wine, Spirits or Unknown.
// Blank input stays blank so the optional element is omitted.
func NormalizeBeverageType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !beverageTypes[strings.ToUpper(value)] {
		return "Unknown"
	}
	return titleCaser.String(value)
}
