// Package cli implements the maarif command-line interface. Commands are
// thin shells over the driving ports; main wires the services in before
// Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/maarif-labs/maarif/internal/config"
	"github.com/maarif-labs/maarif/internal/core/ports/driving"
	"github.com/maarif-labs/maarif/internal/logger"
)

var (
	contentService driving.ContentService
	queryService   driving.QueryService
	engineConfig   = config.Default()

	version = "dev"

	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "maarif",
	Short: "Bilingual organizational knowledge assistant",
	Long: `Maarif is a retrieval-augmented knowledge engine for organizational
documents in Arabic and English. It ingests policy documents, answers
employee questions grounded strictly in the ingested content, and
refuses anything it cannot support from its sources.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// SetServices injects the driving services before Execute.
func SetServices(content driving.ContentService, query driving.QueryService) {
	contentService = content
	queryService = query
}

// SetConfig injects the loaded engine configuration.
func SetConfig(cfg config.Config) {
	engineConfig = cfg
}

// SetVersion sets the build version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
