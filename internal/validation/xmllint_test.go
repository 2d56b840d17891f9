package validation

import (
	"context"
	"os/exec"
	"testing"

	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireXMLLint(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("xmllint")
	if err != nil {
		t.Skip("xmllint not installed")
	}
	return path
}

func TestXMLLintAcceptsAssembledDocument(t *testing.T) {
	lint := NewXMLLint(requireXMLLint(t), nil)

	v, err := lint.Validate(context.Background(), assemble(t, testDocument()), types.CommonCarrier)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestXMLLintReportsFirstViolation(t *testing.T) {
	lint := NewXMLLint(requireXMLLint(t), nil)

	d := testDocument()
	d.Shipments[0].ConsigneeAddressLine1 = "N. Main St."
	d.Shipments[0].ConsigneeState = "Wisconsin"
	doc := assemble(t, d)

	v, err := lint.Validate(context.Background(), doc, types.CommonCarrier)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "AddressLine1", v.Element)
	assert.Equal(t, "N. Main St.", v.Value)
	assert.Equal(t, lineOf(t, doc, "N. Main St."), v.Line)

	r := Translate(*v, doc)
	assert.Equal(t, "consignee", r.Location.Section)
}

func TestXMLLintMissingExecutable(t *testing.T) {
	lint := NewXMLLint("/nonexistent/xmllint", nil)
	_, err := lint.Validate(context.Background(), []byte("<CommonCarrier/>"), types.CommonCarrier)
	assert.Error(t, err)
}
