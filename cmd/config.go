package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// configCmd groups the commands that manage the saved filer and defaults
// records. The same records back the web form.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update the saved filer and default records",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved filer and defaults records as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := newStore()
		data, err := json.MarshalIndent(struct {
			Filer    types.FilerInfo      `json:"filer"`
			Defaults types.DefaultsRecord `json:"defaults"`
		}{st.LoadFiler(), st.LoadDefaults()}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var configSetFilerCmd = &cobra.Command{
	Use:   "set-filer <file.json>",
	Short: "Replace the saved filer record with the contents of a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var filer types.FilerInfo
		if err := readJSONFile(args[0], &filer); err != nil {
			return err
		}
		st := newStore()
		if err := st.SaveFiler(filer); err != nil {
			return err
		}
		fmt.Printf("Filer configuration saved in %s\n", st.Dir())
		return nil
	},
}

var configSetDefaultsCmd = &cobra.Command{
	Use:   "set-defaults <file.json>",
	Short: "Replace the saved defaults record with the contents of a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var defaults types.DefaultsRecord
		if err := readJSONFile(args[0], &defaults); err != nil {
			return err
		}
		st := newStore()
		if err := st.SaveDefaults(defaults); err != nil {
			return err
		}
		fmt.Printf("Defaults saved in %s\n", st.Dir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetFilerCmd, configSetDefaultsCmd)
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
