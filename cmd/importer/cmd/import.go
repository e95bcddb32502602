package cmd

import (
	"fmt"
	"os"

	"donation-import-backend/internal/config"
	"donation-import-backend/internal/models"
	"donation-import-backend/internal/repository"
	"donation-import-backend/internal/services/importing"
	"donation-import-backend/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	importFile string
	wipe       bool
	assumeYes  bool
)

// importCmd runs the batch import against a local export file.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a payment processor export file",
	Long: `Import reads a processor export (CSV) and creates donation records,
find-or-creating donors, children, and projects along the way. Rows that
cannot be fully resolved are imported as needs_attention for manual review.

Re-running over the same file without --wipe is additive: the import is not
idempotent and will create duplicate donations.

Examples:
  importer import --file export.csv
  importer import --file export.csv --wipe --yes   # non-production re-run`,

	PreRunE: validateImportFlags,
	RunE:    runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "path to the processor export CSV file (required)")
	importCmd.Flags().BoolVar(&wipe, "wipe", false, "delete all existing donations before importing (non-production only)")
	importCmd.Flags().BoolVar(&assumeYes, "yes", false, "confirm destructive operations without prompting")

	importCmd.MarkFlagRequired("file")

	viper.BindPFlag("file", importCmd.Flags().Lookup("file"))
	viper.BindPFlag("wipe", importCmd.Flags().Lookup("wipe"))
}

func validateImportFlags(cmd *cobra.Command, args []string) error {
	importFile = viper.GetString("file")
	wipe = viper.GetBool("wipe")

	if importFile == "" {
		return fmt.Errorf("file is required")
	}
	info, err := os.Stat(importFile)
	if err != nil {
		return fmt.Errorf("export file not accessible: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("export file is a directory: %s", importFile)
	}
	if wipe && !assumeYes {
		return fmt.Errorf("--wipe deletes all existing donations; pass --yes to confirm")
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("importer")

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, relying on system env")
	}

	db := config.InitDB()
	db.AutoMigrate(
		&models.Donor{},
		&models.Child{},
		&models.Project{},
		&models.Sponsorship{},
		&models.Donation{},
		&models.ImportBatch{},
	)

	if wipe {
		deleted, err := repository.NewDonationRepository(db).HardDeleteAll()
		if err != nil {
			return fmt.Errorf("wipe donations: %w", err)
		}
		log.WithField("deleted", deleted).Warn("wiped existing donations")
	}

	orchestrator := importing.NewOrchestrator(
		repository.NewTxRunner(db),
		repository.NewImportBatchRepository(db),
	)

	summary, err := orchestrator.RunFile(importFile)
	if err != nil {
		return err
	}

	printSummary(cmd, summary)
	return nil
}

func printSummary(cmd *cobra.Command, s *importing.BatchSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Batch %s (%s)\n", s.BatchID, s.Filename)
	fmt.Fprintf(out, "  rows processed:   %d\n", s.TotalRows)
	fmt.Fprintf(out, "  succeeded:        %d\n", s.Succeeded)
	fmt.Fprintf(out, "  failed:           %d\n", s.Failed)
	fmt.Fprintf(out, "  refunded:         %d\n", s.Refunded)
	fmt.Fprintf(out, "  canceled:         %d\n", s.Canceled)
	fmt.Fprintf(out, "  needs attention:  %d\n", s.NeedsAttention)
	if len(s.Errors) > 0 {
		fmt.Fprintf(out, "  row errors (%d):\n", len(s.Errors))
		for _, e := range s.Errors {
			fmt.Fprintf(out, "    row %d: %s\n", e.RowNumber, e.Message)
		}
	}
}
