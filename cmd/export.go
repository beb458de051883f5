package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/drivetheory/internal/export"
	"github.com/sadopc/drivetheory/internal/progress"
)

// formatState writes the raw persisted envelope, readable by import.
const formatState = "state"

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export progress history to CSV, JSON, XLSX or a state backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		formatFlag, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if formatFlag == formatState {
			if out == "" {
				out = fmt.Sprintf("drivetheory-state-%s.json", progress.DateKey(time.Now()))
			}
			blob, err := e.progress.Serialize()
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, blob, 0o644); err != nil {
				return fmt.Errorf("write state file: %w", err)
			}
		} else {
			f, err := export.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("drivetheory-export-%s.%s", progress.DateKey(time.Now()), f)
			}
			if err := export.Write(f, e.progress.Progress(), out); err != nil {
				return err
			}
		}

		e.logger.Info("exported", "format", formatFlag, "path", out)
		fmt.Fprintln(cmd.OutOrStdout(), "Exported to", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", "csv", "csv, json, xlsx or state")
	exportCmd.Flags().StringP("out", "o", "", "Output file (default drivetheory-export-<date>.<format>)")
}
