// =============================================================================
// Wisconsin Excise XML - Shared Types
// =============================================================================
//
// This package contains the record types shared by the mapper, the XML
// assembler, the validator, the persisted store and the HTTP layer. Keeping
// them here avoids import cycles between those packages.
//
// JSON tags are the canonical field names. They are also the names used by
// MissingFieldError and by the mapping report, so a field is spelled the same
// way everywhere it surfaces.
//
// =============================================================================

package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REPORT TYPE
// =============================================================================

// ReportType selects the synonym table, the shipment shape and the schema.
type ReportType string

const (
	// CommonCarrier is the AB136 report filed by licensed carriers.
	CommonCarrier ReportType = "CommonCarrier"

	// FulfillmentHouse is the AB137 report filed by wine fulfillment houses.
	FulfillmentHouse ReportType = "FulfillmentHouse"
)

// ReportTypes lists every supported report type in a stable order.
var ReportTypes = []ReportType{CommonCarrier, FulfillmentHouse}

// ParseReportType converts user input into a ReportType.
func ParseReportType(s string) (ReportType, error) {
	switch ReportType(s) {
	case CommonCarrier, FulfillmentHouse:
		return ReportType(s), nil
	}
	return "", fmt.Errorf("unknown report type %q (expected %s or %s)", s, CommonCarrier, FulfillmentHouse)
}

// SchemaName returns the form number used for the schema file.
func (rt ReportType) SchemaName() string {
	if rt == FulfillmentHouse {
		return "AB137"
	}
	return "AB136"
}

// =============================================================================
// TABULAR INPUT
// =============================================================================

// Row maps a raw column header to the raw cell value.
type Row map[string]string

// Table is parsed tabular input. Headers keeps the source column order, which
// is the only tie-break signal available when two headers map to one field.
type Table struct {
	Headers []string
	Rows    []Row
}

// =============================================================================
// CANONICAL RECORDS
// =============================================================================

// Shipment is one canonical shipment record. Which fields are required
// depends on the report type; optional text fields are empty when absent and
// the decimal quantities are invalid (null) when absent.
type Shipment struct {
	// Common carrier sender block, filled from defaults.
	ConsignorName         string `json:"consignor_name"`
	ConsignorAddressLine1 string `json:"consignor_address_line1"`
	ConsignorAddressLine2 string `json:"consignor_address_line2"`
	ConsignorCity         string `json:"consignor_city"`
	ConsignorState        string `json:"consignor_state"`
	ConsignorZIP          string `json:"consignor_zip"`
	PermitNumber          string `json:"permit_number"`

	// Recipient block, filled from the CSV or manual entry.
	ConsigneeName         string `json:"consignee_name"`
	ConsigneeAddressLine1 string `json:"consignee_address_line1"`
	ConsigneeAddressLine2 string `json:"consignee_address_line2"`
	ConsigneeCity         string `json:"consignee_city"`
	ConsigneeState        string `json:"consignee_state"`
	ConsigneeZIP          string `json:"consignee_zip"`

	ShipmentDate       string              `json:"shipment_date"`
	BeverageType       string              `json:"beverage_type"`
	WeightOfBeverages  decimal.NullDecimal `json:"weight_of_beverages"`
	TrackingNumber     string              `json:"tracking_number"`
	BillOfLadingNumber string              `json:"bill_of_lading_number"`

	// Fulfillment house winery block, filled from defaults.
	ManufacturerName         string `json:"manufacturer_name"`
	ManufacturerAddressLine1 string `json:"manufacturer_address_line1"`
	ManufacturerAddressLine2 string `json:"manufacturer_address_line2"`
	ManufacturerCity         string `json:"manufacturer_city"`
	ManufacturerState        string `json:"manufacturer_state"`
	ManufacturerZIP          string `json:"manufacturer_zip"`
	WinePermitNumber         string `json:"wine_permit_number"`

	CommonCarrierPermitNumber string              `json:"common_carrier_permit_number"`
	QuantityOfWine            decimal.NullDecimal `json:"quantity_of_wine"`

	// Optional block for fulfillment shipments sent on behalf of a
	// consignor other than the manufacturer.
	DifferentConsignorName         string `json:"different_consignor_name"`
	DifferentConsignorAddressLine1 string `json:"different_consignor_address_line1"`
	DifferentConsignorAddressLine2 string `json:"different_consignor_address_line2"`
	DifferentConsignorCity         string `json:"different_consignor_city"`
	DifferentConsignorState        string `json:"different_consignor_state"`
	DifferentConsignorZIP          string `json:"different_consignor_zip"`
}

// FilerInfo is the business submitting the report.
type FilerInfo struct {
	TINType           string `json:"tin_type"`
	TINValue          string `json:"tin_value"`
	StateEIN          string `json:"state_ein"`
	BusinessNameLine1 string `json:"business_name_line1"`
	BusinessNameLine2 string `json:"business_name_line2"`
	AddressLine1      string `json:"address_line1"`
	AddressLine2      string `json:"address_line2"`
	City              string `json:"city"`
	State             string `json:"state"`
	ZIP               string `json:"zip"`
}

// PartyDefaults is a reusable consignor or manufacturer block.
type PartyDefaults struct {
	Name             string `json:"name"`
	AddressLine1     string `json:"address_line1"`
	AddressLine2     string `json:"address_line2"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZIP              string `json:"zip"`
	PermitNumber     string `json:"permit_number,omitempty"`
	WinePermitNumber string `json:"wine_permit_number,omitempty"`
}

// DefaultsRecord holds the values overlaid onto every shipment of a batch.
type DefaultsRecord struct {
	Consignor           PartyDefaults `json:"consignor"`
	Manufacturer        PartyDefaults `json:"manufacturer"`
	CommonCarrierPermit string        `json:"common_carrier_permit"`
	AckEmail            string        `json:"ack_email"`
}

// =============================================================================
// MAPPING REPORT
// =============================================================================

// ColumnMapping records one recognized header.
type ColumnMapping struct {
	Column string `json:"column"`
	Field  string `json:"field"`
}

// MappingReport describes how the headers of an input table were understood.
type MappingReport struct {
	Mapped             []ColumnMapping `json:"mapped"`
	Unmapped           []string        `json:"unmapped"`
	MissingRecommended []string        `json:"missing_recommended"`
	Warnings           []string        `json:"warnings"`
}
