// =============================================================================
// Wisconsin Excise XML - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks an existing XML
// filing against the state schema. It is useful after editing a generated
// file by hand.
//
// COMMAND USAGE:
//   excise validate <file.xml> [--type CommonCarrier|FulfillmentHouse]
//
// When --type is omitted the report type is taken from the root element.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/beevik/etree"
	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/spf13/cobra"
)

var validateType string

var validateCmd = &cobra.Command{
	Use:   "validate <file.xml>",
	Short: "Validate an XML filing against the state schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read XML file: %w", err)
		}

		rt, err := reportTypeOf(data, validateType)
		if err != nil {
			return err
		}

		result, err := newValidator().Validate(cmd.Context(), data, rt)
		if err != nil {
			return err
		}
		if !result.Valid {
			fmt.Println(result.Report.String())
			return errors.New("XML validation failed")
		}

		fmt.Printf("%s is a valid %s (%s) filing.\n", args[0], rt, rt.SchemaName())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateType, "type", "t", "", "Report type (detected from the root element when omitted)")
}

// reportTypeOf returns the explicit report type, or the root element name of
// a document that parses.
func reportTypeOf(data []byte, explicit string) (types.ReportType, error) {
	if explicit != "" {
		return types.ParseReportType(explicit)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil || doc.Root() == nil {
		return "", errors.New("cannot detect the report type of a malformed document; pass --type")
	}
	return types.ParseReportType(doc.Root().Tag)
}
