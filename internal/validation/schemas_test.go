package validation

import (
	"os"
	"testing"

	"github.com/beevik/etree"
	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaPathWritesEmbeddedSchemas(t *testing.T) {
	for _, rt := range types.ReportTypes {
		path, err := SchemaPath(rt)
		require.NoError(t, err)

		onDisk, err := os.ReadFile(path)
		require.NoError(t, err)
		embedded, err := Schema(rt)
		require.NoError(t, err)
		assert.Equal(t, embedded, onDisk)
		assert.Contains(t, string(onDisk), `<xs:element name="`+string(rt)+`">`)
	}

	first, _ := SchemaPath(types.CommonCarrier)
	second, _ := SchemaPath(types.CommonCarrier)
	assert.Equal(t, first, second)
}

// sequenceOf lists the element names declared in a named complex type.
func sequenceOf(t *testing.T, rt types.ReportType, typeName string) []string {
	t.Helper()
	data, err := Schema(rt)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))

	for _, ct := range doc.Root().ChildElements() {
		if ct.Tag != "complexType" || ct.SelectAttrValue("name", "") != typeName {
			continue
		}
		var names []string
		for _, seq := range ct.ChildElements() {
			if seq.Tag != "sequence" {
				continue
			}
			for _, el := range seq.ChildElements() {
				names = append(names, el.SelectAttrValue("name", ""))
			}
		}
		return names
	}
	t.Fatalf("complex type %s not found", typeName)
	return nil
}

func TestSchemaShipmentOrder(t *testing.T) {
	assert.Equal(t, []string{
		"ConsignorName", "ConsignorAddress", "PermitNumber", "ConsigneeName", "ConsigneeAddress",
		"ShipmentDate", "BeverageType", "WeightOfBeverages", "TrackingNumber", "BillOfLadingNumber",
	}, sequenceOf(t, types.CommonCarrier, "CarrierShipmentBlock"))

	assert.Equal(t, []string{
		"ManufacturerAddress", "WinePermitNumber", "ManufacturerName", "ConsigneeName", "ConsigneeAddress",
		"ShipmentDate", "TrackingNumber", "CommonCarrierPermitNumber", "QuantityOfWine", "DifferentConsignor",
	}, sequenceOf(t, types.FulfillmentHouse, "FulfillmentShipmentBlock"))

	assert.Equal(t, []string{"AddressLine1", "AddressLine2", "City", "State", "ZIP"},
		sequenceOf(t, types.CommonCarrier, "MailingBlock"))
}
