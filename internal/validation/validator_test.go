package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSchema struct {
	violation *Violation
	err       error
	gotType   types.ReportType
}

func (s *stubSchema) Validate(_ context.Context, _ []byte, rt types.ReportType) (*Violation, error) {
	s.gotType = rt
	return s.violation, s.err
}

func TestValidatorValid(t *testing.T) {
	schema := &stubSchema{}
	res, err := New(schema, nil).Validate(context.Background(), []byte("<FulfillmentHouse/>"), types.FulfillmentHouse)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Nil(t, res.Report)
	assert.Equal(t, types.FulfillmentHouse, schema.gotType)
}

func TestValidatorInvalid(t *testing.T) {
	v := ParseLintOutput("-:3: Schemas validity error : Element 'AckAddress': [facet 'pattern'] The value 'nobody' is not accepted by the pattern 'x'.")
	res, err := New(&stubSchema{violation: &v}, nil).Validate(context.Background(), []byte("<CommonCarrier/>"), types.CommonCarrier)
	require.NoError(t, err)

	assert.False(t, res.Valid)
	require.NotNil(t, res.Report)
	assert.Equal(t, KindEmail, res.Report.Kind)
	assert.Equal(t, "nobody", res.Report.InvalidValue)
	assert.Equal(t, &v, res.Violation)
}

func TestValidatorCollaboratorFailure(t *testing.T) {
	boom := errors.New("xmllint: not found")
	_, err := New(&stubSchema{err: boom}, nil).Validate(context.Background(), nil, types.CommonCarrier)
	assert.ErrorIs(t, err, boom)
}
