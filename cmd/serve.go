package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-trending/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the report server",
	Long: `Serves /latest-update (collects and returns the newest report), /view-markdown
(renders a report as HTML) and /list-markdown-files on server.addr.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := setup(cmd)
		defer a.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.settings.Server.Addr = addr
		}

		srv, err := server.New(a.collector(), a.store(), a.settings.Server, a.logger)
		if err != nil {
			fail("Failed to create server: %v", err)
		}

		ctx, cancel := signalContext()
		defer cancel()

		if err := srv.Start(ctx); err != nil {
			a.logger.Errorf("Server stopped: %v", err)
			fail("Server stopped: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
