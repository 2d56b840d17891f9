// =============================================================================
// Wisconsin Excise XML - Version Command
// =============================================================================
//
// Prints the build identity and the schema each report type is checked
// against.
//
// Version and BuildDate are stamped at link time:
//   go build -ldflags "-X 'github.com/ginjaninja78/wi-excise-xml/cmd.Version=1.0.0'"
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/spf13/cobra"
)

var (
	Version   = "1.0.0"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build and schema information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("excise %s (built %s, %s)\n", Version, BuildDate, runtime.Version())
		for _, rt := range types.ReportTypes {
			fmt.Printf("  %-16s -> %s schema\n", rt, rt.SchemaName())
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
