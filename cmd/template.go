package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/wi-excise-xml/internal/converter"
	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/ginjaninja78/wi-excise-xml/internal/xlsxparser"
	"github.com/spf13/cobra"
)

var (
	templateType   string
	templateFormat string
	templateOutput string
)

// templateCmd writes an empty input file with the preferred column names.
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write a blank shipment template (CSV or XLSX)",
	Long: `The template command writes the header row for a report type. CSV goes to
stdout unless --output is set; XLSX always needs a file and defaults to
<type>_template.xlsx.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := types.ParseReportType(templateType)
		if err != nil {
			return err
		}

		switch templateFormat {
		case "csv":
			content, err := converter.CSVTemplate(rt)
			if err != nil {
				return err
			}
			if templateOutput == "" {
				_, err = io.WriteString(os.Stdout, content)
				return err
			}
			return os.WriteFile(templateOutput, []byte(content), 0644)

		case "xlsx":
			path := templateOutput
			if path == "" {
				path = fmt.Sprintf("%s_template.xlsx", rt)
			}
			file, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create template: %w", err)
			}
			if err := xlsxparser.WriteTemplate(file, converter.TemplateHeaders(rt)); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil

		default:
			return fmt.Errorf("unknown template format %q (expected csv or xlsx)", templateFormat)
		}
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.Flags().StringVarP(&templateType, "type", "t", string(types.CommonCarrier), "Report type: CommonCarrier or FulfillmentHouse")
	templateCmd.Flags().StringVarP(&templateFormat, "format", "f", "csv", "Template format: csv or xlsx")
	templateCmd.Flags().StringVarP(&templateOutput, "output", "o", "", "Output path")
}
