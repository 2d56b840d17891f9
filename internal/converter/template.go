package converter

import (
	"bytes"
	"encoding/csv"

	"github.com/ginjaninja78/wi-excise-xml/internal/types"
)

// TemplateHeaders returns the preferred column names for a report type.
// These are a subset of the synonym table, one spelling per field.
func TemplateHeaders(rt types.ReportType) []string {
	headers := []string{
		"Ship To Company",
		"Ship To Street",
		"Ship To City",
		"Ship To State",
		"Ship To Zip",
		"Tracking Nos",
		"Order Date",
	}
	if rt == types.FulfillmentHouse {
		return append(headers, "BOTTLE COUNT", "SIZE")
	}
	return append(headers, "LB", "TYPE")
}

// CSVTemplate returns a header-only CSV document for manual data entry.
func CSVTemplate(rt types.ReportType) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(TemplateHeaders(rt)); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
