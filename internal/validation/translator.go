// =============================================================================
// Wisconsin Excise XML - Remediation Translator
// =============================================================================
//
// This module turns the first schema violation into a report a non-technical
// filer can act on: what is wrong, the rejected value, where in the workflow
// it was entered and how to fix it.
//
// CLASSIFICATION:
//   The violation message is matched against field keywords in a fixed
//   priority order. The first match wins:
//     AddressLine1/2, TIN, PermitNumber, Date, Email/AckAddress, State,
//     City, BusinessNameLine1, ZIP, Weight, generic pattern, unknown.
//
// LOCALIZATION:
//   Address-like errors (street, city, state, ZIP) are attributed to one of
//   the four address blocks by scanning up to 20 lines back from the error
//   line for the nearest block start tag. Without a usable line number the
//   first block present in the document is used.
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// LOCATIONS
// =============================================================================

var (
	filerLocation = Location{
		Section:  "filer",
		Label:    "YOUR BUSINESS ADDRESS",
		Step:     2,
		StepName: "Filer Information",
	}
	consignorLocation = Location{
		Section:  "consignor",
		Label:    "SENDER'S ADDRESS (Consignor)",
		Step:     4,
		StepName: "Default Consignor Information",
	}
	manufacturerLocation = Location{
		Section:  "manufacturer",
		Label:    "MANUFACTURER'S ADDRESS (Winery)",
		Step:     4,
		StepName: "Default Manufacturer Information",
	}
	consigneeLocation = Location{
		Section:  "consignee",
		Label:    "RECIPIENT'S ADDRESS (Consignee)",
		Step:     5,
		StepName: "shipment data (from CSV or table)",
	}
	taxPeriodLocation = Location{
		Section:  "tax_period",
		Label:    "TAX PERIOD AND CONTACT",
		Step:     3,
		StepName: "Tax Period & Contact",
	}
	defaultsLocation = Location{
		Section:  "defaults",
		Label:    "DEFAULT VALUES",
		Step:     4,
		StepName: "Default Values",
	}
	shipmentLocation = Location{
		Section:  "shipment",
		Label:    "SHIPMENT DATA",
		Step:     5,
		StepName: "shipment data (from CSV or table)",
	}
)

type blockMarker struct {
	tag string
	loc Location
}

var blockMarkers = []blockMarker{
	{"<Filer>", filerLocation},
	{"<ConsignorAddress>", consignorLocation},
	{"<ManufacturerAddress>", manufacturerLocation},
	{"<ConsigneeAddress>", consigneeLocation},
}

// locateAddress attributes an address-field error to an address block.
func locateAddress(doc []byte, line int) Location {
	lines := strings.Split(string(doc), "\n")

	if line > 0 && line <= len(lines) {
		stop := max(0, line-20)
		for i := line - 1; i > stop; i-- {
			for _, m := range blockMarkers {
				if strings.Contains(lines[i], m.tag) {
					return m.loc
				}
			}
		}
	}

	text := string(doc)
	for _, m := range blockMarkers[1:] {
		if strings.Contains(text, m.tag) {
			return m.loc
		}
	}
	return filerLocation
}

// =============================================================================
// TRANSLATION
// =============================================================================

// Translate builds the remediation report for a violation found in doc.
func Translate(v Violation, doc []byte) *Report {
	msg := v.Message
	if v.Element != "" && !strings.Contains(msg, v.Element) {
		msg = v.Element + ": " + msg
	}

	r := &Report{
		InvalidValue: v.Value,
		Line:         v.Line,
		Detail:       firstNonEmpty(v.Raw, v.Message),
	}

	switch {
	case strings.Contains(msg, "AddressLine1") || strings.Contains(msg, "AddressLine2"):
		streetAddressReport(r, doc)
	case strings.Contains(msg, "TIN"):
		tinReport(r)
	case strings.Contains(msg, "PermitNumber"):
		permitReport(r, msg)
	case strings.Contains(msg, "Date") || strings.Contains(msg, "YYYY-MM-DD"):
		dateReport(r, msg, doc)
	case strings.Contains(msg, "Email") || strings.Contains(msg, "AckAddress"):
		emailReport(r)
	case strings.Contains(msg, "State"):
		stateReport(r, doc)
	case strings.Contains(msg, "City"):
		cityReport(r, doc)
	case strings.Contains(msg, "BusinessNameLine1"):
		businessNameReport(r)
	case strings.Contains(msg, "ZIP") || strings.Contains(msg, "Zip"):
		zipReport(r, doc)
	case strings.Contains(msg, "Weight"):
		weightReport(r)
	case strings.Contains(strings.ToLower(msg), "pattern") || strings.Contains(strings.ToLower(msg), "not accepted"):
		patternReport(r)
	default:
		unknownReport(r, msg)
	}
	return r
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// =============================================================================
// PER-KIND REPORTS
// =============================================================================

func streetAddressReport(r *Report, doc []byte) {
	r.Kind = KindStreetAddress
	r.Location = locateAddress(doc, r.Line)

	if r.InvalidValue != "" {
		r.Problem = "Invalid street address in " + r.Location.Label
		if strings.Contains(r.InvalidValue, ".") {
			r.Issues = append(r.Issues, "Contains period (.)")
			r.Suggestion = strings.ReplaceAll(r.InvalidValue, ".", "")
		}
	} else {
		r.Problem = "Missing or empty street address in " + r.Location.Label
	}

	switch r.Location.Section {
	case "consignor", "manufacturer":
		r.FixSteps = []string{
			"Open Step 4: Default Values (excise config set-defaults)",
			fmt.Sprintf("Find the '%s' section", r.Location.StepName),
			"Fill in the 'Address Line 1' field (REQUIRED), for example 123 Main Street",
			"Save the defaults",
			"Generate the XML again",
		}
		r.Notes = append(r.Notes, "This address is used for ALL shipments in the report, so make sure it is the correct sender or manufacturer address.")
	case "consignee":
		switch {
		case r.Suggestion != "":
			r.FixSteps = []string{
				"Re-import the CSV; periods are removed from addresses automatically",
				fmt.Sprintf("Or edit the shipment and change %q to %q", r.InvalidValue, r.Suggestion),
				"Generate the XML again",
			}
		case r.InvalidValue == "":
			r.FixSteps = []string{
				"A recipient address is empty",
				"If you imported a CSV, fill in the blank Address cell and re-import",
				"If you entered shipments by hand, find the row with a blank Address and fill it in",
			}
		default:
			r.FixSteps = []string{
				"Re-import the CSV; addresses are cleaned automatically",
				fmt.Sprintf("Or edit the shipment and fix the address %q", r.InvalidValue),
				"Remove any special characters except - and /",
			}
		}
	default:
		r.FixSteps = []string{
			"Open Step 2: Filer Information (excise config set-filer)",
			"Fill in 'Address Line 1' (REQUIRED); this is YOUR company's street address, for example 456 Business Blvd",
			"Save the filer information",
		}
	}
}

func tinReport(r *Report) {
	r.Kind = KindTIN
	r.Location = filerLocation
	r.Problem = "Tax ID Number (TIN) is missing or incorrect"
	r.FixSteps = []string{
		"Open Step 2: Filer Information",
		"Find the 'TIN Value' field",
		"Enter your 9-digit Tax ID Number: exactly 9 digits, numbers only, no dashes or spaces",
		"Save the filer information",
	}
	r.Examples = []Example{
		{Value: "12-3456789", Note: "has dashes"},
		{Value: "123456", Note: "too short"},
		{Value: "123456789", Valid: true},
	}
}

func permitReport(r *Report, msg string) {
	r.Kind = KindPermitNumber
	r.Location = defaultsLocation
	r.Problem = "Permit Number is missing or incorrect"

	field := "the permit number field"
	switch {
	case strings.Contains(msg, "Wine"):
		field = "'Wine Permit Number'"
	case strings.Contains(msg, "CommonCarrier"):
		field = "'Common Carrier Permit Number'"
	}
	r.FixSteps = []string{
		"Open Step 4: Default Values",
		"Find " + field,
		"Enter the 15-digit permit number: exactly 15 digits, add zeros at the start if needed, no letters or symbols",
		"Save the defaults",
	}
	r.Examples = []Example{
		{Value: "123456", Note: "too short"},
		{Value: "000000000123456", Valid: true, Note: "padded with zeros"},
		{Value: "123456789012345", Valid: true, Note: "already 15 digits"},
	}
}

func dateReport(r *Report, msg string, doc []byte) {
	r.Kind = KindDate
	r.Problem = "Date could not be understood or is invalid"

	switch {
	case strings.Contains(msg, "TaxPeriodBeginDate"):
		r.Location = taxPeriodLocation
		r.Location.Label = "TAX PERIOD BEGIN DATE"
	case strings.Contains(msg, "TaxPeriodEndDate"):
		r.Location = taxPeriodLocation
		r.Location.Label = "TAX PERIOD END DATE"
	case strings.Contains(msg, "ShipmentDate") || strings.Contains(string(doc), "<Shipment>"):
		r.Location = shipmentLocation
		r.Location.Label = "SHIPMENT DATE"
	}

	if strings.TrimSpace(r.InvalidValue) == "" {
		r.FixSteps = []string{
			"The date is EMPTY and must be filled in",
			"For tax period dates, set the begin and end dates in Step 3",
			"For shipment dates, make sure the Date column in your CSV is not blank",
		}
	} else {
		r.FixSteps = []string{
			fmt.Sprintf("The value %q is not a recognizable date", r.InvalidValue),
			"Check that this is really a date and not other text",
			"Use a standard format such as 10/29/2025 or 2025-10-29",
		}
	}
	r.Examples = []Example{
		{Value: "10/29/2025", Valid: true, Note: "American format"},
		{Value: "10/29/25", Valid: true, Note: "short year"},
		{Value: "2024-03-31", Valid: true, Note: "official format"},
		{Value: "October 29, 2025", Valid: true, Note: "with month name"},
		{Value: "Oct 29 2025", Valid: true, Note: "abbreviated"},
		{Value: "2025", Note: "year only"},
	}
	r.Notes = append(r.Notes, "Most date formats are converted automatically. This error usually means the date is blank or unreadable.")
}

func emailReport(r *Report) {
	r.Kind = KindEmail
	r.Location = taxPeriodLocation
	r.Problem = "Email address is missing or invalid"
	r.FixSteps = []string{
		"Open Step 3: Tax Period & Contact",
		"Find 'Acknowledgement Email'",
		"Enter a valid address: a username, the @ symbol, then a domain name",
	}
	r.Examples = []Example{
		{Value: "john.doe", Note: "missing @domain.com"},
		{Value: "@company.com", Note: "missing username"},
		{Value: "john.doe@company.com", Valid: true},
		{Value: "reports@business.org", Valid: true},
	}
}

var stateCodes = map[string]string{
	"WISCONSIN":  "WI",
	"ILLINOIS":   "IL",
	"MINNESOTA":  "MN",
	"IOWA":       "IA",
	"MICHIGAN":   "MI",
	"CALIFORNIA": "CA",
}

func stateReport(r *Report, doc []byte) {
	r.Kind = KindState
	r.Location = locateAddress(doc, r.Line)
	r.Problem = "State code is invalid or missing in " + r.Location.Label

	if len(r.InvalidValue) > 2 {
		r.Issues = append(r.Issues, "Spelled out; use the 2-letter code")
		if code, ok := stateCodes[cases.Upper(language.Und).String(strings.TrimSpace(r.InvalidValue))]; ok {
			r.Suggestion = code
		}
	}
	r.FixSteps = []string{
		"State codes MUST be 2 uppercase letters",
		"Check your business state (Step 2), the consignor or manufacturer state (Step 4) and the recipient states (Step 5 or the CSV State column)",
	}
	r.Examples = []Example{
		{Value: "Wisconsin", Note: "spelled out"},
		{Value: "wi", Note: "lowercase"},
		{Value: "W", Note: "only 1 letter"},
		{Value: "WIS", Note: "3 letters"},
		{Value: "WI", Valid: true},
	}
}

var (
	digitRe       = regexp.MustCompile(`[0-9]`)
	punctuationRe = regexp.MustCompile(`[.,;:]`)
	nonLetterRe   = regexp.MustCompile(`[^A-Za-z\s]`)
	zipInvalidRe  = regexp.MustCompile(`[^0-9A-Z]`)
)

func cityReport(r *Report, doc []byte) {
	r.Kind = KindCity
	r.Location = locateAddress(doc, r.Line)
	r.Problem = "City name contains invalid characters in " + r.Location.Label

	if city := r.InvalidValue; city != "" {
		if digitRe.MatchString(city) {
			r.Issues = append(r.Issues, "Contains numbers")
		}
		if punctuationRe.MatchString(city) {
			r.Issues = append(r.Issues, "Contains punctuation (.,;:)")
		}
		if nonLetterRe.MatchString(city) {
			r.Issues = append(r.Issues, "Contains special characters")
		}

		suggestion := punctuationRe.ReplaceAllString(digitRe.ReplaceAllString(city, ""), "")
		suggestion = strings.TrimSpace(suggestion)
		if suggestion != "" && suggestion != city {
			r.Suggestion = suggestion
		}
	}

	r.FixSteps = []string{
		"City names can ONLY contain letters and spaces",
		"Remove numbers, punctuation and other special characters",
		"Spell out abbreviations such as St. (Saint)",
	}
	r.Examples = []Example{
		{Value: "Fake2", Note: "has number"},
		{Value: "Fake", Valid: true},
		{Value: "Madison, WI", Note: "has comma"},
		{Value: "Madison", Valid: true},
		{Value: "St. Paul", Note: "has period"},
		{Value: "Saint Paul", Valid: true},
		{Value: "Eau Claire", Valid: true, Note: "spaces OK"},
	}
}

func businessNameReport(r *Report) {
	r.Kind = KindBusinessName
	r.Location = filerLocation
	r.Location.Label = "YOUR BUSINESS NAME"
	r.Problem = "Business name is missing or has invalid characters"
	r.FixSteps = []string{
		"Open Step 2: Filer Information",
		"Fill in 'Business Name Line 1' (REQUIRED)",
		"Use letters, numbers, # - ( ) & ' and single spaces only",
		"Remove other special characters and any leading or trailing spaces",
	}
	r.Examples = []Example{
		{Value: " ABC  Company ", Note: "extra spaces"},
		{Value: "ABC@Company", Note: "@ symbol"},
		{Value: "ABC Company Inc", Valid: true},
		{Value: "Smith & Sons #3", Valid: true},
		{Value: "O'Brien's Wine", Valid: true, Note: "apostrophe OK"},
	}
}

func zipReport(r *Report, doc []byte) {
	r.Kind = KindZIP
	r.Location = locateAddress(doc, r.Line)
	r.Problem = "ZIP code is invalid in " + r.Location.Label

	if r.InvalidValue == "" {
		r.InvalidValue, _ = valueFromDocument(doc, r.Line, "ZIP")
	}
	if zip := r.InvalidValue; zip != "" {
		n := len(zip)
		switch {
		case n < 5:
			r.Issues = append(r.Issues, fmt.Sprintf("Too short (only %d characters, need 5 or 9)", n))
		case n > 9:
			r.Issues = append(r.Issues, fmt.Sprintf("Too long (%d characters, max is 9)", n))
		case n > 5 && n < 9:
			r.Issues = append(r.Issues, fmt.Sprintf("Wrong length (%d characters, must be exactly 5 or 9)", n))
		}
		if zipInvalidRe.MatchString(zip) {
			r.Issues = append(r.Issues, "Contains invalid characters (only numbers and letters allowed)")
		}
	}

	r.FixSteps = []string{
		"ZIP codes must be EXACTLY 5 or EXACTLY 9 characters",
		"Use numbers only (or uppercase letters for Canadian postal codes)",
		"Check your business ZIP (Step 2), the consignor or manufacturer ZIP (Step 4) and the recipient ZIPs (Step 5 or the CSV ZIP column)",
	}
	r.Examples = []Example{
		{Value: "53703", Valid: true},
		{Value: "537031234", Valid: true},
		{Value: "53703-1234", Note: "has dash, removed automatically on import"},
		{Value: "5370", Note: "too short"},
		{Value: "5370312345", Note: "too long"},
	}
}

func weightReport(r *Report) {
	r.Kind = KindWeight
	r.Location = shipmentLocation
	r.Problem = "Weight value is missing or invalid"
	r.FixSteps = []string{
		"Check the weight in your shipment data",
		"Weight must be a number in pounds; decimals are allowed",
	}
	r.Examples = []Example{
		{Value: "25.5", Valid: true},
		{Value: "30", Valid: true},
		{Value: "(blank)"},
		{Value: "25 lbs", Note: "remove 'lbs'"},
	}
}

func patternReport(r *Report) {
	r.Kind = KindPattern
	r.Problem = "A field has invalid characters or is empty when it is required"
	r.FixSteps = []string{
		"Check that all REQUIRED fields are filled in",
		"Remove any special characters or symbols",
		"Make sure there are no extra spaces at the beginning or end",
		"Check that dates are in YYYY-MM-DD format",
		"Verify numbers do not have letters mixed in",
	}
	r.Notes = append(r.Notes, "If you are still stuck, look for field names in the technical detail below.")
}

func unknownReport(r *Report, msg string) {
	r.Kind = KindUnknown
	r.Problem = msg
	r.FixSteps = []string{
		"Double-check all REQUIRED fields",
		"Make sure dates use YYYY-MM-DD format",
		"Verify permit numbers are 15 digits",
		"Check that your TIN is 9 digits",
	}
}
