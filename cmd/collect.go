package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collects today's trending repositories and writes one report per language",
	Long: `Searches GitHub for repositories created within the lookback window that have at
least the configured number of stars, then writes {date}_{language}.md for every
configured language into the output directory. Languages are processed one at a time.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := setup(cmd)
		defer a.Close()

		// Flags override the configured languages and lookback window.
		if languages, _ := cmd.Flags().GetStringSlice("language"); len(languages) > 0 {
			a.settings.Fetch.Languages = languages
		}
		if cmd.Flags().Changed("days") {
			days, _ := cmd.Flags().GetInt("days")
			if days < 0 {
				fail("Invalid --days value %d: must not be negative", days)
			}
			a.settings.Fetch.LookbackDays = days
		}

		ctx, cancel := signalContext()
		defer cancel()

		summary, err := a.collector().Run(ctx)
		if err != nil {
			a.logger.Errorf("Collection failed: %v", err)
			fail("Collection failed: %v", err)
		}

		languages := make([]string, 0, len(summary.Written))
		for language := range summary.Written {
			languages = append(languages, language)
		}
		sort.Strings(languages)
		for _, language := range languages {
			fmt.Println(summary.Written[language])
		}
		for _, language := range summary.Skipped {
			fmt.Fprintf(os.Stderr, "No trending repositories found for %s\n", language)
		}
		if len(summary.Failed) > 0 {
			for language, err := range summary.Failed {
				fmt.Fprintf(os.Stderr, "Failed to write %s report: %v\n", language, err)
			}
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().StringSliceP("language", "l", nil, "Languages to collect (overrides fetch.languages)")
	collectCmd.Flags().Int("days", 1, "Lookback window in days (overrides fetch.time_range)")
}
