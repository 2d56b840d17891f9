// =============================================================================
// Wisconsin Excise XML - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, the main command for turning
// shipment spreadsheets into filings. It runs the whole pipeline for each
// input file.
//
// COMMAND USAGE:
//   excise generate <file-or-directory> [flags]
//
// FLAGS:
//   --type       : CommonCarrier (default) or FulfillmentHouse
//   --begin      : First day of the tax period
//   --end        : Last day of the tax period
//   --ack-email  : Acknowledgement address (defaults to the saved one)
//   --amended    : Mark the filing as an amended return
//
// PROCESSING PIPELINE:
//   1. Load the saved filer and defaults records
//   2. Discover CSV/XLSX files when a directory is given
//   3. For each file (concurrently):
//      a. Parse and map the rows
//      b. Assemble the XML
//      c. Validate it against the state schema
//      d. Write the output file, or an error log with the remediation report
//   4. Print a summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ginjaninja78/wi-excise-xml/internal/converter"
	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/ginjaninja78/wi-excise-xml/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	generateType string
	periodBegin  string
	periodEnd    string
	ackEmail     string
	amended      bool
)

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

var generateCmd = &cobra.Command{
	Use:   "generate <file-or-directory>",
	Short: "Convert shipment files into validated XML filings",
	Long: `The generate command reads a CSV or XLSX shipment file (or every such file in
a directory), applies the saved filer and default records, and writes one XML
filing per input file to the output directory.

Dates in the input may use any common format; they are written as YYYY-MM-DD.

On success:
  - The XML is placed in the output directory
  - The input is moved to the archive directory when archive_input is set

On a schema rejection:
  - An error log explaining the first problem is written to the output directory
  - The input stays where it is
  - Other files are still processed`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := types.ParseReportType(generateType)
		if err != nil {
			return err
		}
		return runGenerate(cmd.Context(), args[0], rt)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateType, "type", "t", string(types.CommonCarrier), "Report type: CommonCarrier or FulfillmentHouse")
	generateCmd.Flags().StringVar(&periodBegin, "begin", "", "First day of the tax period")
	generateCmd.Flags().StringVar(&periodEnd, "end", "", "Last day of the tax period")
	generateCmd.Flags().StringVar(&ackEmail, "ack-email", "", "Acknowledgement email address (defaults to the saved one)")
	generateCmd.Flags().BoolVar(&amended, "amended", false, "Mark the filing as an amended return")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runGenerate(ctx context.Context, target string, rt types.ReportType) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD RECORDS
	// =========================================================================

	st := newStore()
	filer := st.LoadFiler()
	job := converter.Job{
		ReportType:     rt,
		Filer:          &filer,
		Defaults:       st.LoadDefaults(),
		TaxPeriodBegin: periodBegin,
		TaxPeriodEnd:   periodEnd,
		AckEmail:       ackEmail,
		Amended:        amended,
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles, err := inputFilesFor(target)
	if err != nil {
		return err
	}
	if len(inputFiles) == 0 {
		fmt.Println("No CSV or XLSX files found.")
		return nil
	}

	logger.Info("Starting conversion", zap.Int("files", len(inputFiles)), zap.String("report_type", string(rt)))

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================

	conv := newConverter()
	if err := conv.Files().EnsureDirectories(); err != nil {
		return err
	}

	var wg sync.WaitGroup
	results := make(chan converter.Result, len(inputFiles))

	for _, file := range inputFiles {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			results <- conv.ConvertFile(ctx, path, job)
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS AND PRINT SUMMARY
	// =========================================================================

	var successCount, errorCount, shipmentCount int
	for result := range results {
		name := filepath.Base(result.FilePath)
		if result.Success {
			successCount++
			shipmentCount += result.Stats.Shipments
			fmt.Printf("  OK   %s -> %s (%d shipments, %s)\n", name, result.OutputFile, result.Stats.Shipments,
				result.Stats.ProcessingTime.Round(time.Millisecond))
			continue
		}

		errorCount++
		fmt.Printf("  FAIL %s: %v\n", name, result.Error)
		if result.Report != nil {
			fmt.Println()
			fmt.Println(result.Report.String())
		}
		if result.ErrorLog != "" {
			fmt.Printf("       error log: %s\n", result.ErrorLog)
		}
	}

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", len(inputFiles))
	fmt.Printf("Successful:      %d\n", successCount)
	fmt.Printf("Errors:          %d\n", errorCount)
	fmt.Printf("Shipments:       %d\n", shipmentCount)
	fmt.Printf("Time elapsed:    %s\n", time.Since(startTime).Round(time.Millisecond))

	if errorCount > 0 {
		return fmt.Errorf("%d of %d file(s) failed", errorCount, len(inputFiles))
	}
	return nil
}

// inputFilesFor expands a directory into its CSV/XLSX files; a file path is
// returned as is.
func inputFilesFor(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if !info.IsDir() {
		return []string{target}, nil
	}
	return utils.DiscoverInputFiles(target)
}
