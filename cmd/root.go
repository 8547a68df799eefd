package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Bitergia/grimoirelab-metrics/common"
	"github.com/Bitergia/grimoirelab-metrics/pretty"
	"github.com/Bitergia/grimoirelab-metrics/settings"
)

var (
	debugFlag    bool
	traceFlag    bool
	silentFlag   bool
	settingsFile string
)

var rootCmd = &cobra.Command{
	Use:   "sbom-metrics",
	Short: "Extract quality and compliance metrics from SBOM documents.",
	Long: `sbom-metrics parses an SPDX Software Bill of Materials, computes a
fixed set of quality metrics over it (package counts, license coverage,
relationship completeness, missing fields) and upserts the resulting
records into an OpenSearch-compatible document store under a
deterministic identity, so that reruns overwrite instead of duplicate.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.DefineVerbosity(silentFlag, debugFlag, traceFlag)
		pretty.Setup()
		profile, err := settings.Summon(settingsFile)
		pretty.Guard(err == nil, 2, "Failed to load settings profile: %v", err)
		applyDefaults(profile)
	},
}

// applyDefaults publishes the profile as viper defaults, keeping the
// precedence chain flag > environment > profile > built-in.
func applyDefaults(profile *settings.Settings) {
	viper.SetDefault("opensearch-url", profile.Store.URL)
	viper.SetDefault("index", profile.Store.Index)
	viper.SetDefault("username", profile.Store.Username)
	viper.SetDefault("password", profile.Store.Password)
	viper.SetDefault("verify-certs", profile.Store.VerifyCerts)
	viper.SetDefault("timeout-seconds", profile.Store.TimeoutSeconds)
	viper.SetDefault("workers", profile.Metrics.Workers)
}

// Execute runs the command tree. Errors escape as ExitCode panics so
// main's exit protection can flush logs first.
func Execute() {
	err := rootCmd.Execute()
	pretty.Guard(err == nil, 1, "%v", err)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Turn on debugging output.")
	rootCmd.PersistentFlags().BoolVarP(&traceFlag, "trace", "T", false, "Turn on tracing output.")
	rootCmd.PersistentFlags().BoolVar(&silentFlag, "silent", false, "Be less verbose, only show warnings and errors.")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "Path to a YAML settings profile.")

	viper.SetEnvPrefix("SBOM_METRICS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
