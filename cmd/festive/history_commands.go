package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"festive/internal/history"
)

const historyTimeFormat = "2006-01-02 15:04"

// historyRow is the JSON shape of one ledger record.
type historyRow struct {
	ID         int64     `json:"id"`
	Status     string    `json:"status"`
	Source     string    `json:"source"`
	JobID      string    `json:"job_id,omitempty"`
	ResultURL  string    `json:"result_url,omitempty"`
	OutputPath string    `json:"output_path,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var statusFlags []string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs from the local ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatusFlags(statusFlags)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit, statuses...)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				rows := make([]historyRow, 0, len(records))
				for _, record := range records {
					rows = append(rows, toHistoryRow(record))
				}
				return writeJSON(cmd, rows)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(records))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Only show runs with these statuses")

	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every run from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]int64{"removed": removed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s)\n", removed)
			return nil
		},
	}
}

func parseStatusFlags(values []string) ([]history.Status, error) {
	statuses := make([]history.Status, 0, len(values))
	for _, value := range values {
		status, ok := history.ParseStatus(value)
		if !ok {
			names := make([]string, 0, len(history.AllStatuses()))
			for _, known := range history.AllStatuses() {
				names = append(names, string(known))
			}
			return nil, fmt.Errorf("unknown status %q (valid: %s)", value, strings.Join(names, ", "))
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func renderHistoryTable(records []*history.Record) string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		outcome := record.OutputPath
		if outcome == "" {
			outcome = record.ResultURL
		}
		if record.ErrorMessage != "" {
			outcome = record.ErrorMessage
		}
		rows = append(rows, []string{
			strconv.FormatInt(record.ID, 10),
			record.CreatedAt.Local().Format(historyTimeFormat),
			statusTitle(record.Status),
			record.SourcePath,
			outcome,
		})
	}
	return renderTable(
		[]string{"ID", "Started", "Status", "Source", "Outcome"},
		rows,
		[]columnAlignment{alignRight},
	)
}

func toHistoryRow(record *history.Record) historyRow {
	return historyRow{
		ID:         record.ID,
		Status:     string(record.Status),
		Source:     record.SourcePath,
		JobID:      record.JobID,
		ResultURL:  record.ResultURL,
		OutputPath: record.OutputPath,
		Error:      record.ErrorMessage,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}
