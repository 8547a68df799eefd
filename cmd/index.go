package cmd

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Bitergia/grimoirelab-metrics/common"
	"github.com/Bitergia/grimoirelab-metrics/operations"
	"github.com/Bitergia/grimoirelab-metrics/pretty"
	"github.com/Bitergia/grimoirelab-metrics/store"
)

var indexOutput string

var indexCmd = &cobra.Command{
	Use:   "index <sbom file or URL>",
	Short: "Run the full pipeline: load, compute metrics, index records.",
	Long: `Run the full pipeline over one SBOM document: load and normalize it,
compute all metrics, and upsert the records into the document store.

The run report is written as JSON to --output (stdout by default). The
command exits non-zero only when the document itself cannot be loaded;
partial compute or write failures are enumerated in the report.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if common.DebugFlag() {
			defer common.Stopwatch("Index command lasted").Report()
		}

		client, err := store.NewClient(store.Options{
			URL:         viper.GetString("opensearch-url"),
			Username:    viper.GetString("username"),
			Password:    viper.GetString("password"),
			VerifyCerts: viper.GetBool("verify-certs"),
		})
		pretty.Guard(err == nil, 2, "Failed to set up document store client: %v", err)

		timeout := time.Duration(viper.GetInt("timeout-seconds")) * time.Second
		indexer := store.NewIndexer(client, viper.GetString("index"), timeout)

		ctx := context.Background()
		if err := indexer.EnsureIndex(ctx); err != nil {
			pretty.Warning("Could not prepare index: %v", err)
		}

		pipeline := operations.NewPipeline(indexer)
		pipeline.Workers = viper.GetInt("workers")

		report, err := pipeline.Run(ctx, args[0])
		emitReport(report, indexOutput)
		pretty.Guard(err == nil, 3, "Run failed: %v", err)

		if len(report.ComputeFailures) > 0 {
			pretty.Warning("%d metric computers failed; see report.", len(report.ComputeFailures))
		}
		if report.Write != nil && len(report.Write.Failures) > 0 {
			pretty.Warning("%d records were not accepted by the store; see report.", len(report.Write.Failures))
		}
		pretty.Ok()
	},
}

func emitReport(report *operations.RunReport, target string) {
	content, err := json.MarshalIndent(report, "", "  ")
	pretty.Guard(err == nil, 1, "Cannot serialize run report: %v", err)
	if len(target) == 0 {
		common.Stdout("%s\n", string(content))
		return
	}
	err = os.WriteFile(target, append(content, '\n'), 0o644)
	pretty.Guard(err == nil, 1, "Cannot write run report to %q: %v", target, err)
	common.Log("Run report written to %q", target)
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().String("opensearch-url", "", "Document store endpoint URL.")
	indexCmd.Flags().String("index", "", "Index the metric records are written to.")
	indexCmd.Flags().String("username", "", "Document store user.")
	indexCmd.Flags().String("password", "", "Document store password.")
	indexCmd.Flags().Bool("verify-certs", true, "Verify store TLS certificates.")
	indexCmd.Flags().Int("timeout-seconds", 0, "Bulk write timeout in seconds.")
	indexCmd.Flags().Int("workers", 0, "Upper bound for parallel metric computers.")
	indexCmd.Flags().StringVarP(&indexOutput, "output", "o", "", "File for the run report, stdout when empty.")

	viper.BindPFlag("opensearch-url", indexCmd.Flags().Lookup("opensearch-url"))
	viper.BindPFlag("index", indexCmd.Flags().Lookup("index"))
	viper.BindPFlag("username", indexCmd.Flags().Lookup("username"))
	viper.BindPFlag("password", indexCmd.Flags().Lookup("password"))
	viper.BindPFlag("verify-certs", indexCmd.Flags().Lookup("verify-certs"))
	viper.BindPFlag("timeout-seconds", indexCmd.Flags().Lookup("timeout-seconds"))
	viper.BindPFlag("workers", indexCmd.Flags().Lookup("workers"))
}
