package cmd

import (
	"fmt"

	"donation-import-backend/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "importer",
	Short: "Payment processor export import tool",
	Long: `Importer ingests a payment processor export file into donation
records, resolving which child or project each payment funds and flagging
anything ambiguous for human review.

Examples:
  importer import --file export.csv
  importer import --file export.csv --wipe --yes
  importer version`,
	Version: getVersionString(),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	viper.SetEnvPrefix("IMPORTER")
	viper.AutomaticEnv()

	logger.SetVerbose(viper.GetBool("verbose"))
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
