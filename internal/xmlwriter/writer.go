// =============================================================================
// Wisconsin Excise XML - XML Writer Module
// =============================================================================
//
// This module assembles the filing document for a report type. The element
// order is fixed by the AB136 / AB137 schemas:
//
//   <CommonCarrier | FulfillmentHouse>
//     <TaxPeriodBeginDate/>
//     <TaxPeriodEndDate/>
//     <Filer> TIN, StateEIN?, Name, Address </Filer>
//     <AckAddress/>
//     <AmendedReturnIndicator>X</AmendedReturnIndicator>?
//     <Shipment/>+          one per record, in input order
//   </...>
//
// Optional elements are omitted when their value is empty; they are never
// written as empty elements. TrackingNumber is the exception: it is always
// written, possibly empty.
//
// Output is UTF-8 with an XML declaration and 2-space indentation. Given the
// same input the bytes are always identical: no timestamps, no map iteration.
//
// =============================================================================

package xmlwriter

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT AND ERRORS
// =============================================================================

// Document is everything needed to assemble one filing.
type Document struct {
	ReportType     types.ReportType
	Filer          types.FilerInfo
	Shipments      []types.Shipment
	TaxPeriodBegin string
	TaxPeriodEnd   string
	AckEmail       string
	Amended        bool
}

// MissingFieldError reports a required value that was empty at assembly time.
type MissingFieldError struct {
	// Record is "filer" or "shipment".
	Record string

	// Index is the 0-based shipment index; always 0 for the filer.
	Index int

	// Field is the canonical field name.
	Field string
}

func (e *MissingFieldError) Error() string {
	if e.Record == "shipment" {
		return fmt.Sprintf("shipment %d: missing required field %s", e.Index+1, e.Field)
	}
	return fmt.Sprintf("%s: missing required field %s", e.Record, e.Field)
}

// =============================================================================
// ASSEMBLY
// =============================================================================

// Assemble builds and serializes the filing.
//
// RETURNS:
//   - The XML bytes, starting with the declaration.
//   - A *MissingFieldError naming the first absent required field; the filer
//     is checked first, then each shipment in order. No partial document is
//     returned.
func Assemble(doc Document) ([]byte, error) {
	if doc.ReportType != types.CommonCarrier && doc.ReportType != types.FulfillmentHouse {
		return nil, fmt.Errorf("unknown report type %q", doc.ReportType)
	}

	if err := checkFiler(doc.Filer); err != nil {
		return nil, err
	}
	for i, s := range doc.Shipments {
		if err := checkShipment(doc.ReportType, i, s); err != nil {
			return nil, err
		}
	}

	out := etree.NewDocument()
	out.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	out.WriteSettings.CanonicalEndTags = true
	out.WriteSettings.CanonicalText = true

	root := out.CreateElement(string(doc.ReportType))
	addText(root, "TaxPeriodBeginDate", doc.TaxPeriodBegin)
	addText(root, "TaxPeriodEndDate", doc.TaxPeriodEnd)
	addFiler(root, doc.Filer)
	addText(root, "AckAddress", doc.AckEmail)
	if doc.Amended {
		addText(root, "AmendedReturnIndicator", "X")
	}

	for _, s := range doc.Shipments {
		if doc.ReportType == types.FulfillmentHouse {
			addFulfillmentHouseShipment(root, s)
		} else {
			addCommonCarrierShipment(root, s)
		}
	}

	out.Indent(2)

	data, err := out.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize XML: %w", err)
	}
	return data, nil
}

// =============================================================================
// ELEMENT BUILDERS
// =============================================================================

func addFiler(root *etree.Element, f types.FilerInfo) {
	filer := root.CreateElement("Filer")

	tin := filer.CreateElement("TIN")
	tinType := f.TINType
	if tinType == "" {
		tinType = "FEIN"
	}
	addText(tin, "TypeTIN", tinType)
	addText(tin, "TINTypeValue", f.TINValue)

	addOptional(filer, "StateEIN", f.StateEIN)

	name := filer.CreateElement("Name")
	addText(name, "BusinessNameLine1", f.BusinessNameLine1)
	addOptional(name, "BusinessNameLine2", f.BusinessNameLine2)

	addAddress(filer, "Address", address{f.AddressLine1, f.AddressLine2, f.City, f.State, f.ZIP})
}

func addCommonCarrierShipment(root *etree.Element, s types.Shipment) {
	shipment := root.CreateElement("Shipment")

	addText(shipment, "ConsignorName", s.ConsignorName)
	addAddress(shipment, "ConsignorAddress", address{
		s.ConsignorAddressLine1, s.ConsignorAddressLine2, s.ConsignorCity, s.ConsignorState, s.ConsignorZIP,
	})
	addOptional(shipment, "PermitNumber", s.PermitNumber)

	addText(shipment, "ConsigneeName", s.ConsigneeName)
	addAddress(shipment, "ConsigneeAddress", consigneeAddress(s))

	addText(shipment, "ShipmentDate", s.ShipmentDate)
	addOptional(shipment, "BeverageType", s.BeverageType)
	addText(shipment, "WeightOfBeverages", FormatDecimal(s.WeightOfBeverages.Decimal))
	addText(shipment, "TrackingNumber", s.TrackingNumber)
	addOptional(shipment, "BillOfLadingNumber", s.BillOfLadingNumber)
}

func addFulfillmentHouseShipment(root *etree.Element, s types.Shipment) {
	shipment := root.CreateElement("Shipment")

	addAddress(shipment, "ManufacturerAddress", address{
		s.ManufacturerAddressLine1, s.ManufacturerAddressLine2, s.ManufacturerCity, s.ManufacturerState, s.ManufacturerZIP,
	})
	addText(shipment, "WinePermitNumber", s.WinePermitNumber)
	addText(shipment, "ManufacturerName", s.ManufacturerName)

	addText(shipment, "ConsigneeName", s.ConsigneeName)
	addAddress(shipment, "ConsigneeAddress", consigneeAddress(s))

	addText(shipment, "ShipmentDate", s.ShipmentDate)
	addText(shipment, "TrackingNumber", s.TrackingNumber)
	addText(shipment, "CommonCarrierPermitNumber", s.CommonCarrierPermitNumber)
	addText(shipment, "QuantityOfWine", FormatDecimal(s.QuantityOfWine.Decimal))

	if s.DifferentConsignorName != "" {
		diff := shipment.CreateElement("DifferentConsignor")
		addText(diff, "ConsignorName", s.DifferentConsignorName)
		addAddress(diff, "ConsignorAddress", address{
			s.DifferentConsignorAddressLine1, s.DifferentConsignorAddressLine2,
			s.DifferentConsignorCity, s.DifferentConsignorState, s.DifferentConsignorZIP,
		})
	}
}

type address struct {
	line1, line2, city, state, zip string
}

func consigneeAddress(s types.Shipment) address {
	return address{s.ConsigneeAddressLine1, s.ConsigneeAddressLine2, s.ConsigneeCity, s.ConsigneeState, s.ConsigneeZIP}
}

func addAddress(parent *etree.Element, tag string, a address) {
	el := parent.CreateElement(tag)
	addText(el, "AddressLine1", a.line1)
	addOptional(el, "AddressLine2", a.line2)
	addText(el, "City", a.city)
	addText(el, "State", a.state)
	addText(el, "ZIP", a.zip)
}

func addText(parent *etree.Element, tag, value string) {
	parent.CreateElement(tag).SetText(value)
}

func addOptional(parent *etree.Element, tag, value string) {
	if value != "" {
		addText(parent, tag, value)
	}
}

// FormatDecimal renders a quantity with at least one fractional digit, so
// 10 is written as "10.0" and 25.25 stays "25.25".
func FormatDecimal(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// =============================================================================
// REQUIRED FIELDS
// =============================================================================

type field struct {
	name  string
	value string
}

func firstMissing(record string, index int, fields []field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &MissingFieldError{Record: record, Index: index, Field: f.name}
		}
	}
	return nil
}

func checkFiler(f types.FilerInfo) error {
	return firstMissing("filer", 0, []field{
		{"business_name_line1", f.BusinessNameLine1},
		{"address_line1", f.AddressLine1},
		{"city", f.City},
		{"state", f.State},
		{"zip", f.ZIP},
		{"tin_value", f.TINValue},
	})
}

func checkShipment(rt types.ReportType, i int, s types.Shipment) error {
	var fields []field
	if rt == types.CommonCarrier {
		fields = append(fields,
			field{"consignor_name", s.ConsignorName},
			field{"consignor_address_line1", s.ConsignorAddressLine1},
			field{"consignor_city", s.ConsignorCity},
			field{"consignor_state", s.ConsignorState},
			field{"consignor_zip", s.ConsignorZIP},
		)
	} else {
		fields = append(fields,
			field{"manufacturer_address_line1", s.ManufacturerAddressLine1},
			field{"manufacturer_city", s.ManufacturerCity},
			field{"manufacturer_state", s.ManufacturerState},
			field{"manufacturer_zip", s.ManufacturerZIP},
			field{"wine_permit_number", s.WinePermitNumber},
			field{"manufacturer_name", s.ManufacturerName},
		)
	}

	fields = append(fields,
		field{"consignee_name", s.ConsigneeName},
		field{"consignee_address_line1", s.ConsigneeAddressLine1},
		field{"consignee_city", s.ConsigneeCity},
		field{"consignee_state", s.ConsigneeState},
		field{"consignee_zip", s.ConsigneeZIP},
		field{"shipment_date", s.ShipmentDate},
	)

	if rt == types.FulfillmentHouse {
		fields = append(fields, field{"common_carrier_permit_number", s.CommonCarrierPermitNumber})
		if s.DifferentConsignorName != "" {
			fields = append(fields,
				field{"different_consignor_address_line1", s.DifferentConsignorAddressLine1},
				field{"different_consignor_city", s.DifferentConsignorCity},
				field{"different_consignor_state", s.DifferentConsignorState},
				field{"different_consignor_zip", s.DifferentConsignorZIP},
			)
		}
	}

	if err := firstMissing("shipment", i, fields); err != nil {
		return err
	}

	if rt == types.CommonCarrier && !s.WeightOfBeverages.Valid {
		return &MissingFieldError{Record: "shipment", Index: i, Field: "weight_of_beverages"}
	}
	if rt == types.FulfillmentHouse && !s.QuantityOfWine.Valid {
		return &MissingFieldError{Record: "shipment", Index: i, Field: "quantity_of_wine"}
	}
	return nil
}
