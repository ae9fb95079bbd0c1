package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"platen/internal/runs"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect fulfillment runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsStatsCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent fulfillment runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			listed, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(listed) == 0 {
				fmt.Fprintln(out, "No fulfillment runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(listed))
			for _, run := range listed {
				rows = append(rows, []string{
					strconv.FormatInt(run.ID, 10),
					strconv.FormatInt(run.OrderID, 10),
					strconv.FormatInt(run.LineItemID, 10),
					string(run.Status),
					formatVariant(run),
					formatFailure(run),
					run.UpdatedAt.Local().Format(time.RFC3339),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Order", "Line Item", "Status", "Variant", "Failure", "Updated"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 = all)")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one fulfillment run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q", args[0])
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetByID(cmd.Context(), id)
			if err != nil {
				if errors.Is(err, runs.ErrNotFound) {
					return fmt.Errorf("run %d not found", id)
				}
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(run)
			}

			fmt.Fprintf(out, "Run %d (correlation %s)\n", run.ID, run.CorrelationID)
			fmt.Fprintf(out, "  Order / line item: %d / %d\n", run.OrderID, run.LineItemID)
			fmt.Fprintf(out, "  Status:            %s\n", run.Status)
			if run.ArtifactURL != "" {
				fmt.Fprintf(out, "  Artifact:          %s\n", run.ArtifactURL)
				fmt.Fprintf(out, "  Content hash:      %s\n", run.ContentHash)
			}
			if run.ResolvedVariantID != 0 {
				fmt.Fprintf(out, "  Variant:           %d via %s (%.2f)\n",
					run.ResolvedVariantID, run.ResolutionMethod, run.ResolutionConfidence)
			}
			if run.PartnerOrderID != 0 {
				fmt.Fprintf(out, "  Partner order:     %d\n", run.PartnerOrderID)
			}
			if run.Status == runs.StatusFailed {
				fmt.Fprintf(out, "  Failed at:         %s\n", run.FailureStage)
				fmt.Fprintf(out, "  Error:             %s\n", run.ErrorMessage)
			}
			fmt.Fprintf(out, "  Created:           %s\n", run.CreatedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(out, "  Updated:           %s\n", run.UpdatedAt.Local().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run as JSON")
	return cmd
}

func newRunsStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize runs per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(stats))
			total := 0
			for _, status := range runs.AllStatuses() {
				count, ok := stats[status]
				if !ok {
					continue
				}
				total += count
				rows = append(rows, []string{string(status), strconv.Itoa(count)})
			}
			out := cmd.OutOrStdout()
			if total == 0 {
				fmt.Fprintln(out, "No fulfillment runs recorded")
				return nil
			}
			rows = append(rows, []string{"total", strconv.Itoa(total)})
			fmt.Fprintln(out, renderTable(
				[]string{"Status", "Runs"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}

func formatVariant(run *runs.Run) string {
	if run.ResolvedVariantID == 0 {
		return "-"
	}
	return fmt.Sprintf("%d (%s)", run.ResolvedVariantID, run.ResolutionMethod)
}

func formatFailure(run *runs.Run) string {
	if run.Status != runs.StatusFailed {
		return "-"
	}
	return run.FailureStage
}
