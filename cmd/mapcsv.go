package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/wi-excise-xml/internal/converter"
	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	mapType   string
	mapAsJSON bool
)

// mapCmd shows how an input file's columns are understood, without
// generating a filing.
var mapCmd = &cobra.Command{
	Use:   "map <file>",
	Short: "Show how a CSV or XLSX file maps onto shipment fields",
	Long: `The map command reads a shipment file, reports which columns were recognized,
which were ignored and which recommended fields are missing, then prints the
mapped shipments (with the saved defaults applied) when --json is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := types.ParseReportType(mapType)
		if err != nil {
			return err
		}

		table, err := newConverter().ReadTable(args[0])
		if err != nil {
			return err
		}

		report := converter.BuildMappingReport(table, rt)
		shipments, err := converter.MapShipments(table, rt, newStore().LoadDefaults())
		if err != nil {
			return err
		}

		if !mapAsJSON {
			fmt.Print(converter.ImportFeedback(report, len(shipments)))
			return nil
		}

		data, err := json.MarshalIndent(struct {
			Report    types.MappingReport `json:"mapping_report"`
			Shipments []types.Shipment    `json:"shipments"`
		}{report, shipments}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	},
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.Flags().StringVarP(&mapType, "type", "t", string(types.CommonCarrier), "Report type: CommonCarrier or FulfillmentHouse")
	mapCmd.Flags().BoolVar(&mapAsJSON, "json", false, "Print the mapping report and shipments as JSON")
}
