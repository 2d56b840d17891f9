package validation

import (
	"strings"
	"testing"

	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/ginjaninja78/wi-excise-xml/internal/xmlwriter"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() xmlwriter.Document {
	return xmlwriter.Document{
		ReportType: types.CommonCarrier,
		Filer: types.FilerInfo{
			TINValue:          "123456789",
			BusinessNameLine1: "Badger Freight",
			AddressLine1:      "1 Main St",
			City:              "Madison",
			State:             "WI",
			ZIP:               "53703",
		},
		Shipments: []types.Shipment{{
			ConsignorName:         "Acme",
			ConsignorAddressLine1: "2 Oak Ave",
			ConsignorCity:         "Milwaukee",
			ConsignorState:        "WI",
			ConsignorZIP:          "53202",
			ConsigneeName:         "Bob",
			ConsigneeAddressLine1: "3 Elm St",
			ConsigneeCity:         "Green Bay",
			ConsigneeState:        "WI",
			ConsigneeZIP:          "54301",
			ShipmentDate:          "2025-10-29",
			WeightOfBeverages:     decimal.NewNullDecimal(decimal.NewFromInt(10)),
		}},
		TaxPeriodBegin: "2025-10-01",
		TaxPeriodEnd:   "2025-10-31",
		AckEmail:       "reports@example.com",
	}
}

func assemble(t *testing.T, doc xmlwriter.Document) []byte {
	t.Helper()
	data, err := xmlwriter.Assemble(doc)
	require.NoError(t, err)
	return data
}

// lineOf returns the 1-based line of the first occurrence of needle.
func lineOf(t *testing.T, doc []byte, needle string) int {
	t.Helper()
	for i, line := range strings.Split(string(doc), "\n") {
		if strings.Contains(line, needle) {
			return i + 1
		}
	}
	t.Fatalf("%q not found in document", needle)
	return 0
}

func patternViolation(line int, element, value string) Violation {
	msg := "Element '" + element + "': [facet 'pattern'] The value '" + value + "' is not accepted by the pattern 'x'."
	return Violation{Line: line, Element: element, Value: value, Message: msg, Raw: "-:1: Schemas validity error : " + msg}
}

func TestTranslateConsigneeAddressWithPeriod(t *testing.T) {
	d := testDocument()
	d.Shipments[0].ConsigneeAddressLine1 = "N. Main St."
	doc := assemble(t, d)

	r := Translate(patternViolation(lineOf(t, doc, "N. Main St."), "AddressLine1", "N. Main St."), doc)

	assert.Equal(t, KindStreetAddress, r.Kind)
	assert.Equal(t, "consignee", r.Location.Section)
	assert.Equal(t, 5, r.Location.Step)
	assert.Equal(t, "N. Main St.", r.InvalidValue)
	assert.Equal(t, []string{"Contains period (.)"}, r.Issues)
	assert.Equal(t, "N Main St", r.Suggestion)
	assert.Contains(t, r.Problem, "RECIPIENT'S ADDRESS (Consignee)")
}

func TestTranslateMissingFilerAddress(t *testing.T) {
	d := testDocument()
	doc := assemble(t, d)
	v := Violation{
		Line:    lineOf(t, doc, "<AddressLine1>1 Main St"),
		Element: "AddressLine1",
		Message: "Element 'AddressLine1': [facet 'pattern'] The value '' is not accepted by the pattern 'x'.",
	}

	r := Translate(v, doc)
	assert.Equal(t, "filer", r.Location.Section)
	assert.Equal(t, "Missing or empty street address in YOUR BUSINESS ADDRESS", r.Problem)
	assert.Empty(t, r.Suggestion)
}

func TestTranslateLocatesAddressBlocks(t *testing.T) {
	d := testDocument()
	d.Shipments[0].ConsignorCity = "Milw4ukee"
	d.Filer.ZIP = "5370"
	doc := assemble(t, d)

	r := Translate(patternViolation(lineOf(t, doc, "Milw4ukee"), "City", "Milw4ukee"), doc)
	assert.Equal(t, KindCity, r.Kind)
	assert.Equal(t, "consignor", r.Location.Section)
	assert.Equal(t, "Step 4 - Default Consignor Information", r.Location.WhereToFix())

	v := Violation{Line: lineOf(t, doc, "<ZIP>5370<"), Element: "ZIP", Message: "Element 'ZIP': [facet 'pattern'] rejected"}
	r = Translate(v, doc)
	assert.Equal(t, KindZIP, r.Kind)
	assert.Equal(t, "filer", r.Location.Section)
	assert.Equal(t, "5370", r.InvalidValue, "value is read from the document line")
	assert.Equal(t, []string{"Too short (only 4 characters, need 5 or 9)"}, r.Issues)
}

func TestTranslateFallbackLocation(t *testing.T) {
	v := Violation{Element: "State", Value: "Wisconsin", Message: "Element 'State': [facet 'pattern'] The value 'Wisconsin' is not accepted by the pattern '[A-Z]{2}'."}

	cc := assemble(t, testDocument())
	assert.Equal(t, "consignor", Translate(v, cc).Location.Section)

	assert.Equal(t, "manufacturer", Translate(v, []byte("<FulfillmentHouse>\n<Shipment>\n<ManufacturerAddress>\n")).Location.Section)
	assert.Equal(t, "consignee", Translate(v, []byte("<ConsigneeAddress>")).Location.Section)
	assert.Equal(t, "filer", Translate(v, []byte("<CommonCarrier/>")).Location.Section)
}

func TestTranslateState(t *testing.T) {
	tests := []struct {
		value      string
		issues     int
		suggestion string
	}{
		{"Wisconsin", 1, "WI"},
		{"minnesota", 1, "MN"},
		{"Ontario", 1, ""},
		{"wi", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			r := Translate(patternViolation(0, "State", tt.value), nil)
			assert.Equal(t, KindState, r.Kind)
			assert.Len(t, r.Issues, tt.issues)
			assert.Equal(t, tt.suggestion, r.Suggestion)
		})
	}
}

func TestTranslateCity(t *testing.T) {
	r := Translate(patternViolation(0, "City", "St. Paul2"), nil)
	assert.Equal(t, []string{"Contains numbers", "Contains punctuation (.,;:)", "Contains special characters"}, r.Issues)
	assert.Equal(t, "St Paul", r.Suggestion)

	r = Translate(patternViolation(0, "City", "Eau-Claire"), nil)
	assert.Equal(t, []string{"Contains special characters"}, r.Issues)
	assert.Empty(t, r.Suggestion)
}

func TestTranslateZIPIssues(t *testing.T) {
	tests := map[string][]string{
		"5370":       {"Too short (only 4 characters, need 5 or 9)"},
		"5370312345": {"Too long (10 characters, max is 9)"},
		"537031":     {"Wrong length (6 characters, must be exactly 5 or 9)"},
		"53703-1234": {"Too long (10 characters, max is 9)", "Contains invalid characters (only numbers and letters allowed)"},
		"5370a":      {"Contains invalid characters (only numbers and letters allowed)"},
	}
	for value, want := range tests {
		t.Run(value, func(t *testing.T) {
			r := Translate(patternViolation(0, "ZIP", value), nil)
			assert.Equal(t, KindZIP, r.Kind)
			assert.Equal(t, want, r.Issues)
		})
	}
}

func TestTranslateClassification(t *testing.T) {
	tests := []struct {
		name    string
		message string
		kind    Kind
		section string
	}{
		{"tin", "Element 'TINTypeValue': [facet 'pattern'] The value '12-3456789' is not accepted by the pattern '[0-9]{9}'.", KindTIN, "filer"},
		{"wine permit", "Element 'WinePermitNumber': [facet 'pattern'] The value '123' is not accepted by the pattern '[0-9]{15}'.", KindPermitNumber, "defaults"},
		{"begin date", "Element 'TaxPeriodBeginDate': '' is not a valid value of the atomic type 'xs:date'.", KindDate, "tax_period"},
		{"shipment date", "Element 'ShipmentDate': 'soon' is not a valid value of the atomic type 'xs:date'.", KindDate, "shipment"},
		{"email", "Element 'AckAddress': [facet 'pattern'] The value 'john.doe' is not accepted by the pattern 'x'.", KindEmail, "tax_period"},
		{"business name", "Element 'BusinessNameLine1': [facet 'pattern'] The value 'ABC@Co' is not accepted by the pattern 'x'.", KindBusinessName, "filer"},
		{"weight", "Element 'WeightOfBeverages': [facet 'minInclusive'] The value '-1' is less than the minimum value allowed ('0').", KindWeight, "shipment"},
		{"generic pattern", "Element 'ConsigneeName': [facet 'pattern'] The value '!' is not accepted by the pattern 'x'.", KindPattern, ""},
		{"unknown", "Element 'Shipment': Missing child element(s). Expected is ( ConsigneeName ).", KindUnknown, ""},
		{"address wins over tin", "Element 'AddressLine1': [facet 'pattern'] The value 'TIN 5.' is not accepted by the pattern 'x'.", KindStreetAddress, "filer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Translate(ParseLintOutput("-:3: Schemas validity error : "+tt.message), []byte("<CommonCarrier/>"))
			assert.Equal(t, tt.kind, r.Kind)
			assert.Equal(t, tt.section, r.Location.Section)
			assert.NotEmpty(t, r.FixSteps)
		})
	}
}

func TestTranslatePermitField(t *testing.T) {
	r := Translate(Violation{Message: "Element 'CommonCarrierPermitNumber': [facet 'pattern'] rejected"}, nil)
	assert.Contains(t, r.FixSteps[1], "Common Carrier Permit Number")

	r = Translate(Violation{Message: "Element 'WinePermitNumber': [facet 'pattern'] rejected"}, nil)
	assert.Contains(t, r.FixSteps[1], "Wine Permit Number")

	r = Translate(Violation{Message: "Element 'PermitNumber': [facet 'pattern'] rejected"}, nil)
	assert.Contains(t, r.FixSteps[1], "the permit number field")
}

func TestTranslateUnknownKeepsMessage(t *testing.T) {
	msg := "Element 'QuantityOfWine': [facet 'minInclusive'] The value '-3' is less than the minimum value allowed ('0')."
	r := Translate(Violation{Message: msg}, nil)
	assert.Equal(t, KindUnknown, r.Kind)
	assert.Equal(t, msg, r.Problem)
	assert.Equal(t, msg, r.Detail)
}

func TestReportString(t *testing.T) {
	d := testDocument()
	d.Shipments[0].ConsigneeAddressLine1 = "N. Main St."
	doc := assemble(t, d)
	v := patternViolation(lineOf(t, doc, "N. Main St."), "AddressLine1", "N. Main St.")

	text := Translate(v, doc).String()
	assert.Contains(t, text, "fixing one error at a time - there may be more after you fix this one")
	assert.Contains(t, text, "PROBLEM: Invalid street address in RECIPIENT'S ADDRESS (Consignee)")
	assert.Contains(t, text, "WHERE TO FIX: Step 5 - shipment data (from CSV or table)")
	assert.Contains(t, text, `SUGGESTED FIX: change "N. Main St." to "N Main St"`)
	assert.Contains(t, text, "AFTER FIXING:")
	assert.Contains(t, text, "Technical detail: "+v.Raw)
}
