package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Bitergia/grimoirelab-metrics/common"
	"github.com/Bitergia/grimoirelab-metrics/metrics"
	"github.com/Bitergia/grimoirelab-metrics/pretty"
	"github.com/Bitergia/grimoirelab-metrics/sbom"
)

var computeCmd = &cobra.Command{
	Use:   "compute <sbom file or URL>",
	Short: "Compute metrics from an SBOM and print them, without indexing.",
	Long: `Compute all metrics over one SBOM document and print the sealed
records as JSON to stdout. Nothing is written to the document store;
use this to inspect what an index run would persist.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if common.DebugFlag() {
			defer common.Stopwatch("Compute command lasted").Report()
		}

		document, err := sbom.Load(args[0])
		pretty.Guard(err == nil, 3, "%v", err)

		workers, _ := cmd.Flags().GetInt("workers")
		if workers == 0 {
			workers = viper.GetInt("workers")
		}
		outcome := metrics.ComputeAll(document, metrics.DefaultComputers(), workers)
		for _, failure := range outcome.Failures {
			pretty.Warning("%v", failure)
		}

		content, err := json.MarshalIndent(outcome.Records, "", "  ")
		pretty.Guard(err == nil, 1, "Cannot serialize records: %v", err)
		common.Stdout("%s\n", string(content))
	},
}

func init() {
	rootCmd.AddCommand(computeCmd)

	computeCmd.Flags().Int("workers", 0, "Upper bound for parallel metric computers.")
}
