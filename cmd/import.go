package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sadopc/drivetheory/internal/progress"
)

const progressKey = progress.StorageKey

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace progress with a saved state file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		if err := progress.Validate(data); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.progress.FromSerialized(data); err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}
		backup, err := e.db.BackupBlob(progressKey)
		if err != nil {
			return fmt.Errorf("back up progress: %w", err)
		}
		if err := e.save(cmd.Context()); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}

		rec := e.progress.Progress()
		e.logger.Info("imported progress", "file", args[0], "backup", backup)
		fmt.Fprintf(cmd.OutOrStdout(), "Imported level %d, %d XP, %d history days.\n", rec.Level(), rec.TotalXP, len(rec.History))
		return nil
	},
}
