package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			confirmed := false
			err := huh.NewConfirm().
				Title("Reset all progress?").
				Description("XP, streak, hearts, history and category scores go back to zero.").
				Affirmative("Reset").
				Negative("Cancel").
				Value(&confirmed).
				Run()
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing changed.")
				return nil
			}
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if _, err := e.db.BackupBlob(progressKey); err != nil {
			return fmt.Errorf("back up progress: %w", err)
		}
		e.progress.ResetProgress()
		if err := e.save(cmd.Context()); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
