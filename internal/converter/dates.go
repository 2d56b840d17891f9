package converter

import (
	"regexp"
	"strings"
	"time"
)

// =============================================================================
// DATE NORMALIZATION
// =============================================================================

// canonicalDate matches values that are already in filing format.
var canonicalDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// dateLayouts are tried in order. US month-first layouts come before the
// European day-first ones, so an ambiguous "03/05/2024" reads as March 5.
// Two-digit years use the time package pivot (69-99 -> 19xx, 00-68 -> 20xx).
var dateLayouts = []string{
	"2006-1-2",
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
	"1-2-06",
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	"2006/1/2",
	"2006.1.2",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
	"20060102",
	"01022006",
	"010206",
}

const (
	minFilingYear = 1900
	maxFilingYear = 2100
)

// NormalizeDate converts heterogeneous date text into YYYY-MM-DD.
//
// Blank input returns "". Text that no layout accepts (or that only parses to
// a year outside 1900-2100) is returned trimmed but otherwise unchanged, so
// the schema validator reports it and the date remediation path explains it.
func NormalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if canonicalDate.MatchString(value) {
		return value
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if t.Year() < minFilingYear || t.Year() > maxFilingYear {
			continue
		}
		return t.Format("2006-01-02")
	}

	return value
}
