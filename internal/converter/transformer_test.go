package converter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanStreetAddress(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"N. Main St.", "N Main St"},
		{"123  Main   Street", "123 Main Street"},
		{"  456 Business Blvd  ", "456 Business Blvd"},
		{"Apt #4, Unit B", "Apt 4 Unit B"},
		{"12-14 1/2 Oak Ave", "12-14 1/2 Oak Ave"},
		{"P.O. Box 99", "PO Box 99"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanStreetAddress(tt.input))
		})
	}
}

func TestCleanStreetAddressIdempotent(t *testing.T) {
	inputs := []string{"N. Main St.", "  a\tb\n c ", "#$%^&*", "1/2 - 3", "Rue de l'Église 5"}
	for _, in := range inputs {
		once := CleanStreetAddress(in)
		assert.Equal(t, once, CleanStreetAddress(once), in)
		assert.NotContains(t, once, ".")
	}
}

func TestCleanZIP(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1234", "01234"},
		{"53703", "53703"},
		{"53703-1234", "537031234"},
		{"k1a 0b1", "K1A0B1"},
		{"", ""},
		{"12", "00012"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanZIP(tt.input))
		})
	}
}

func TestCleanTIN(t *testing.T) {
	assert.Equal(t, "123456789", CleanTIN("12-3456789"))
	assert.Equal(t, "000012345", CleanTIN("12345"))
	assert.Equal(t, "123456789", CleanTIN("1234567890123"))
	assert.Equal(t, "000000000", CleanTIN(""))
}

func TestCleanPermitNumber(t *testing.T) {
	assert.Equal(t, "000000000123456", CleanPermitNumber("123456"))
	assert.Equal(t, "123456789012345", CleanPermitNumber("123-456-789-012-345"))
	assert.Len(t, CleanPermitNumber("abc"), 15)
}

func TestBottlesToLiters(t *testing.T) {
	assert.Equal(t, "9", BottlesToLiters(12, 750).String())
	assert.Equal(t, "4.5", BottlesToLiters(6, 750).String())
	assert.Equal(t, "0.4", BottlesToLiters(1, 375).String())
	assert.Equal(t, "0", BottlesToLiters(0, 750).String())
}

func TestParseCount(t *testing.T) {
	n, err := ParseCount("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	n, err = ParseCount(" 12.0 ")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	_, err = ParseCount("12.5")
	assert.Error(t, err)

	_, err = ParseCount("twelve")
	assert.Error(t, err)
}

func TestNormalizeBeverageType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"beer", "Beer"},
		{"WINE", "Wine"},
		{"Spirits", "Spirits"},
		{"unknown", "Unknown"},
		{"cider", "Unknown"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBeverageType(tt.input))
		})
	}
}

func TestInputErrorUnwraps(t *testing.T) {
	cause := errors.New("bad digit")
	err := &InputError{Row: 3, Column: "LB", Field: FieldWeightOfBeverages, Value: "ten", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), `"LB"`)
}
