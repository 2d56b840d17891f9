package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ginjaninja78/wi-excise-xml/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

// serveCmd runs the JSON API used by the web form.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API for the web form",
	Long: `The serve command starts the HTTP API on server.addr (127.0.0.1:5000 by
default). It stops cleanly on Ctrl+C or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			appConfig.Server.Addr = serveAddr
		}

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(appConfig, newStore(), newConverter(), logger)
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}
