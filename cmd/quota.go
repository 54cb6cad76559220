package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Prints the remaining GitHub API quota as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		a := setup(cmd)
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		limit, err := a.gateway().FetchRateLimit(ctx)
		if err != nil {
			fail("Failed to fetch rate limit: %v", err)
		}
		printJSON(limit)
	},
}

var repoCmd = &cobra.Command{
	Use:   "repo OWNER/NAME",
	Short: "Prints the details of a single repository as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		owner, name, ok := strings.Cut(args[0], "/")
		if !ok || owner == "" || name == "" {
			fail("Invalid repository %q: expected OWNER/NAME", args[0])
		}

		a := setup(cmd)
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		repo, err := a.gateway().GetRepoDetails(ctx, owner, name)
		if err != nil {
			fail("Failed to fetch %s: %v", args[0], err)
		}
		printJSON(repo)
	},
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fail("Failed to marshal results to JSON: %v", err)
	}
	fmt.Println(string(jsonData))
}

func init() {
	rootCmd.AddCommand(quotaCmd)
	rootCmd.AddCommand(repoCmd)
}
