package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/VectorBits/Chainsight/internal/report"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <protocol-name>",
	Short: "Export the latest stored report for a protocol as versioned JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	store, err := report.NewRunStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.FindByName(args[0])
	if err != nil {
		return err
	}

	var rep report.ProtocolReport
	if err := json.Unmarshal([]byte(run.ReportJSON), &rep); err != nil {
		return fmt.Errorf("stored report is corrupted: %w", err)
	}

	data, err := report.Export(&rep)
	if err != nil {
		return err
	}

	if exportOut == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	fmt.Printf("✅ Exported to %s\n", exportOut)
	return nil
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent analysis runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := report.NewRunStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Recent(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No analysis runs recorded yet.")
			return nil
		}
		for _, r := range runs {
			enhanced := " "
			if r.Enhanced {
				enhanced = "✨"
			}
			fmt.Printf("%-20s %-26s %-8s %2d findings %s  %s\n",
				r.CreatedAt.Format(time.DateTime), r.ProtocolName, r.SecurityRating,
				r.FindingCount, enhanced, r.Reference)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 10, "maximum number of runs to show")
}
