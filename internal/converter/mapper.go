// =============================================================================
// Wisconsin Excise XML - Column Mapper
// =============================================================================
//
// The column mapper reconciles arbitrary spreadsheet headers with the fixed
// canonical field names of a report type and produces canonical shipments.
//
// SYNONYM TABLES:
//   Each report type owns one immutable table from raw header spelling to
//   canonical field. Matching is exact: case, spacing and punctuation all
//   count. Headers without an entry are reported as unmapped and ignored.
//
// PRECEDENCE:
//   Columns are visited in the order they appear in the input. The first
//   non-empty value for a canonical field wins; later columns that map to the
//   same field and empty cells never overwrite it.
//
// DEFAULTS:
//   Consignor (CommonCarrier) and manufacturer (FulfillmentHouse) blocks are
//   taken from the defaults record through MergeDefaults. Any non-empty
//   default replaces whatever the shipment carried.
//
// =============================================================================

package converter

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CANONICAL FIELD NAMES
// =============================================================================

const (
	FieldConsigneeName         = "consignee_name"
	FieldConsigneeAddressLine1 = "consignee_address_line1"
	FieldConsigneeAddressLine2 = "consignee_address_line2"
	FieldConsigneeCity         = "consignee_city"
	FieldConsigneeState        = "consignee_state"
	FieldConsigneeZIP          = "consignee_zip"
	FieldTrackingNumber        = "tracking_number"
	FieldShipmentDate          = "shipment_date"
	FieldWeightOfBeverages     = "weight_of_beverages"
	FieldBeverageType          = "beverage_type"
	FieldBottleCount           = "bottle_count"
	FieldBottleSizeML          = "bottle_size_ml"
)

// =============================================================================
// SYNONYM TABLES
// =============================================================================

// consigneeColumns are shared by both report types.
var consigneeColumns = map[string]string{
	"Ship To Company": FieldConsigneeName,
	"Consignee Name":  FieldConsigneeName,
	"Company":         FieldConsigneeName,
	"Name":            FieldConsigneeName,

	"Ship To Street":  FieldConsigneeAddressLine1,
	"Ship To Address": FieldConsigneeAddressLine1,
	"Address":         FieldConsigneeAddressLine1,
	"Street":          FieldConsigneeAddressLine1,
	"Address Line 1":  FieldConsigneeAddressLine1,
	"AddressLine1":    FieldConsigneeAddressLine1,

	"Address Line 2": FieldConsigneeAddressLine2,
	"AddressLine2":   FieldConsigneeAddressLine2,

	"Ship To City": FieldConsigneeCity,
	"City":         FieldConsigneeCity,

	"Ship To State": FieldConsigneeState,
	"State":         FieldConsigneeState,

	"Ship To Zip": FieldConsigneeZIP,
	"Zip":         FieldConsigneeZIP,
	"ZIP":         FieldConsigneeZIP,
	"Zip Code":    FieldConsigneeZIP,
	"ZipCode":     FieldConsigneeZIP,

	"Tracking Nos":    FieldTrackingNumber,
	"Tracking Number": FieldTrackingNumber,
	"Tracking #":      FieldTrackingNumber,
	"Tracking":        FieldTrackingNumber,
	"TrackingNumber":  FieldTrackingNumber,

	"Order Date":    FieldShipmentDate,
	"Shipment Date": FieldShipmentDate,
	"Date":          FieldShipmentDate,
	"Ship Date":     FieldShipmentDate,
}

var commonCarrierColumns = withColumns(consigneeColumns, map[string]string{
	"LB":           FieldWeightOfBeverages,
	"Weight":       FieldWeightOfBeverages,
	"Weight (lbs)": FieldWeightOfBeverages,
	"Pounds":       FieldWeightOfBeverages,

	"TYPE":          FieldBeverageType,
	"Type":          FieldBeverageType,
	"Beverage Type": FieldBeverageType,
	"BeverageType":  FieldBeverageType,
})

var fulfillmentHouseColumns = withColumns(consigneeColumns, map[string]string{
	"BOTTLE COUNT": FieldBottleCount,
	"Bottle Count": FieldBottleCount,
	"BottleCount":  FieldBottleCount,
	"Bottles":      FieldBottleCount,
	"Count":        FieldBottleCount,
	"Qty":          FieldBottleCount,
	"Quantity":     FieldBottleCount,

	"SIZE":        FieldBottleSizeML,
	"Size":        FieldBottleSizeML,
	"Bottle Size": FieldBottleSizeML,
	"BottleSize":  FieldBottleSizeML,
	"ML":          FieldBottleSizeML,
	"Size (ml)":   FieldBottleSizeML,
})

func withColumns(base, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// CanonicalField returns the canonical field a raw header maps to for the
// given report type.
func CanonicalField(rt types.ReportType, header string) (string, bool) {
	field, ok := columnsFor(rt)[header]
	return field, ok
}

func columnsFor(rt types.ReportType) map[string]string {
	if rt == types.FulfillmentHouse {
		return fulfillmentHouseColumns
	}
	return commonCarrierColumns
}

// RecommendedFields lists the fields a useful import should provide, in the
// order they are reported.
func RecommendedFields(rt types.ReportType) []string {
	fields := []string{
		FieldConsigneeName,
		FieldConsigneeAddressLine1,
		FieldConsigneeCity,
		FieldConsigneeState,
		FieldConsigneeZIP,
		FieldShipmentDate,
	}
	if rt == types.FulfillmentHouse {
		return append(fields, FieldBottleCount, FieldBottleSizeML)
	}
	return append(fields, FieldWeightOfBeverages)
}

// =============================================================================
// MAPPING
// =============================================================================

// MapShipments converts every row of the table into a canonical shipment and
// overlays the defaults record.
//
// PARAMETERS:
//   - table: Parsed input with headers in source order.
//   - rt: The report type selecting the synonym table.
//   - defaults: Consignor/manufacturer block and permits applied to every row.
//
// RETURNS:
//   - One shipment per row, in row order.
//   - An *InputError for the first non-numeric weight or bottle value.
func MapShipments(table *types.Table, rt types.ReportType, defaults types.DefaultsRecord) ([]types.Shipment, error) {
	shipments := make([]types.Shipment, 0, len(table.Rows))
	for i, row := range table.Rows {
		shipment, err := mapRow(table.Headers, row, i+1, rt)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, MergeDefaults(shipment, rt, defaults))
	}
	return shipments, nil
}

// mapRow builds one shipment from one row. rowNum is 1-based and only used
// for error reporting.
func mapRow(headers []string, row types.Row, rowNum int, rt types.ReportType) (types.Shipment, error) {
	var (
		shipment    types.Shipment
		assigned    = make(map[string]bool)
		bottleCount int64
		bottleSize  int64
	)

	for _, header := range headers {
		field, ok := CanonicalField(rt, header)
		if !ok || assigned[field] {
			continue
		}
		value := strings.TrimSpace(row[header])
		if value == "" {
			continue
		}

		switch field {
		case FieldShipmentDate:
			shipment.ShipmentDate = NormalizeDate(value)
		case FieldConsigneeZIP:
			shipment.ConsigneeZIP = CleanZIP(value)
		case FieldConsigneeAddressLine1:
			shipment.ConsigneeAddressLine1 = CleanStreetAddress(value)
		case FieldConsigneeAddressLine2:
			shipment.ConsigneeAddressLine2 = CleanStreetAddress(value)
		case FieldConsigneeName:
			shipment.ConsigneeName = value
		case FieldConsigneeCity:
			shipment.ConsigneeCity = value
		case FieldConsigneeState:
			shipment.ConsigneeState = value
		case FieldTrackingNumber:
			shipment.TrackingNumber = value
		case FieldBeverageType:
			shipment.BeverageType = NormalizeBeverageType(value)
		case FieldWeightOfBeverages:
			weight, err := ParseDecimal(value)
			if err != nil {
				return shipment, &InputError{Row: rowNum, Column: header, Field: field, Value: value, Err: err}
			}
			shipment.WeightOfBeverages = decimal.NewNullDecimal(weight)
		case FieldBottleCount, FieldBottleSizeML:
			n, err := ParseCount(value)
			if err != nil {
				return shipment, &InputError{Row: rowNum, Column: header, Field: field, Value: value, Err: err}
			}
			if field == FieldBottleCount {
				bottleCount = n
			} else {
				bottleSize = n
			}
		}
		assigned[field] = true
	}

	// Bottle fields are transient: only the converted liters survive.
	if assigned[FieldBottleCount] && assigned[FieldBottleSizeML] {
		shipment.QuantityOfWine = decimal.NewNullDecimal(BottlesToLiters(bottleCount, bottleSize))
	}

	return shipment, nil
}

// MergeDefaults returns a copy of the shipment with the defaults record
// applied. Every non-empty default replaces the shipment value, so editing
// saved defaults and regenerating always reflects the latest values.
// Addresses, ZIP codes and permit numbers are sanitized as they are applied.
func MergeDefaults(s types.Shipment, rt types.ReportType, d types.DefaultsRecord) types.Shipment {
	if rt == types.FulfillmentHouse {
		m := d.Manufacturer
		overlay(&s.ManufacturerName, m.Name)
		overlay(&s.ManufacturerAddressLine1, CleanStreetAddress(m.AddressLine1))
		overlay(&s.ManufacturerAddressLine2, CleanStreetAddress(m.AddressLine2))
		overlay(&s.ManufacturerCity, strings.TrimSpace(m.City))
		overlay(&s.ManufacturerState, strings.TrimSpace(m.State))
		overlay(&s.ManufacturerZIP, CleanZIP(m.ZIP))
		overlay(&s.WinePermitNumber, cleanOptionalPermit(m.WinePermitNumber))
		overlay(&s.CommonCarrierPermitNumber, cleanOptionalPermit(d.CommonCarrierPermit))
		return s
	}

	c := d.Consignor
	overlay(&s.ConsignorName, c.Name)
	overlay(&s.ConsignorAddressLine1, CleanStreetAddress(c.AddressLine1))
	overlay(&s.ConsignorAddressLine2, CleanStreetAddress(c.AddressLine2))
	overlay(&s.ConsignorCity, strings.TrimSpace(c.City))
	overlay(&s.ConsignorState, strings.TrimSpace(c.State))
	overlay(&s.ConsignorZIP, CleanZIP(c.ZIP))
	overlay(&s.PermitNumber, cleanOptionalPermit(c.PermitNumber))
	return s
}

func overlay(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = value
	}
}

// cleanOptionalPermit pads a permit number only when one was given; a blank
// permit must stay blank so it is not overlaid as fifteen zeros.
func cleanOptionalPermit(permit string) string {
	if strings.TrimSpace(permit) == "" {
		return ""
	}
	return CleanPermitNumber(permit)
}

// =============================================================================
// MAPPING REPORT
// =============================================================================

// BuildMappingReport describes how the table's headers map for a report type.
// An empty table yields a report whose sections are all empty.
func BuildMappingReport(table *types.Table, rt types.ReportType) types.MappingReport {
	report := types.MappingReport{
		Mapped:             []types.ColumnMapping{},
		Unmapped:           []string{},
		MissingRecommended: []string{},
		Warnings:           []string{},
	}
	if table == nil || len(table.Rows) == 0 {
		return report
	}

	seen := make(map[string]bool)
	present := make(map[string]bool)
	for _, header := range table.Headers {
		if seen[header] {
			continue
		}
		seen[header] = true
		if field, ok := CanonicalField(rt, header); ok {
			report.Mapped = append(report.Mapped, types.ColumnMapping{Column: header, Field: field})
			present[field] = true
		} else {
			report.Unmapped = append(report.Unmapped, header)
		}
	}

	for _, field := range RecommendedFields(rt) {
		if !present[field] {
			report.MissingRecommended = append(report.MissingRecommended, field)
		}
	}

	if n := len(report.Unmapped); n > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("Found %d unmapped columns that will be ignored", n))
	}
	if n := len(report.MissingRecommended); n > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("Missing %d recommended fields", n))
	}

	return report
}

var fieldTips = map[string]string{
	FieldConsigneeName:         `Add "Name" or "Ship To Company" column`,
	FieldConsigneeAddressLine1: `Add "Address" or "Ship To Street" column`,
	FieldConsigneeCity:         `Add "City" or "Ship To City" column`,
	FieldConsigneeState:        `Add "State" or "Ship To State" column`,
	FieldConsigneeZIP:          `Add "ZIP" or "Ship To Zip" column`,
	FieldShipmentDate:          `Add "Date" or "Order Date" column`,
	FieldWeightOfBeverages:     `Add "LB" or "Weight" column`,
	FieldBottleCount:           `Add "Bottle Count" or "Quantity" column`,
	FieldBottleSizeML:          `Add "Size" or "SIZE" column (in milliliters)`,
}

// FieldTip tells the user which column would supply a missing field.
func FieldTip(field string) string {
	if tip, ok := fieldTips[field]; ok {
		return tip
	}
	return "Add column for " + field
}

// ImportFeedback renders the plain-text summary shown after an import.
func ImportFeedback(report types.MappingReport, shipments int) string {
	var b strings.Builder
	b.WriteString("CSV IMPORT SUCCESSFUL\n\n")
	fmt.Fprintf(&b, "Imported %d shipment(s)\n\n", shipments)

	if len(report.Mapped) > 0 {
		b.WriteString("SUCCESSFULLY MAPPED:\n")
		for _, m := range report.Mapped {
			fmt.Fprintf(&b, "  %s -> %s\n", m.Column, m.Field)
		}
		b.WriteString("\n")
	}

	if len(report.Unmapped) > 0 {
		b.WriteString("IGNORED COLUMNS (not needed for this report):\n")
		for _, col := range report.Unmapped {
			fmt.Fprintf(&b, "  - %s\n", col)
		}
		b.WriteString("\n")
	}

	if len(report.MissingRecommended) > 0 {
		b.WriteString("MISSING RECOMMENDED FIELDS:\n")
		for _, field := range report.MissingRecommended {
			fmt.Fprintf(&b, "  %s: %s\n", field, FieldTip(field))
		}
		b.WriteString("\n  TIP: Add these values to the shipment records, or update the CSV and import it again\n")
	}

	return b.String()
}
