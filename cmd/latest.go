package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-trending/internal/client"
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Prints a digest of the report server's latest update",
	Run: func(cmd *cobra.Command, args []string) {
		serverURL, _ := cmd.Flags().GetString("server")

		ctx, cancel := signalContext()
		defer cancel()

		update, err := client.New(serverURL).LatestUpdate(ctx)
		if err != nil {
			fail("Failed to fetch the latest update: %v", err)
		}
		fmt.Println(client.NewDigest(update))
	},
}

func init() {
	rootCmd.AddCommand(latestCmd)
	latestCmd.Flags().String("server", "http://127.0.0.1:5000", "Base URL of the report server")
}
