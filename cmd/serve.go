package cmd

import (
	"github.com/spf13/cobra"

	"lanzoufetch/internal"
	"lanzoufetch/server"
)

var (
	listenHost string
	listenPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resolver as an HTTP API",
	Long: `Serve the resolver over HTTP.

GET /?url=<share link>&pwd=<password>&type=<json|down|file>&n=<rename>&pg=<page>

Examples:
  lanzoufetch serve
  lanzoufetch serve --host 127.0.0.1 --port 9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("host") {
			config.ListenHost = listenHost
		}
		if cmd.Flags().Changed("port") {
			config.ListenPort = listenPort
		}
		if err := config.ValidateConfig(); err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		srv := server.New(config)
		statusf("🌐 Serving on http://%s\n", srv.Addr())

		if err := srv.Run(ctx); err != nil {
			internal.LogError("Server stopped: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	defaults := internal.DefaultConfig()
	serveCmd.Flags().StringVar(&listenHost, "host", defaults.ListenHost, "Listen address (env: LANZOU_HOST)")
	serveCmd.Flags().IntVar(&listenPort, "port", defaults.ListenPort, "Listen port (env: LANZOU_PORT)")
}
