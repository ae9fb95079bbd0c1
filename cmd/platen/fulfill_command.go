package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"platen/internal/fulfillment"
	"platen/internal/variant"
)

func newFulfillCommand(ctx *commandContext) *cobra.Command {
	var (
		orderID      int64
		lineItemID   int64
		snapshotPath string
		variantID    int64
		sku          string
		title        string
		properties   []string
		jsonOut      bool
	)

	cmd := &cobra.Command{
		Use:   "fulfill",
		Short: "Run one order line item through the full pipeline",
		Long: `Validates the layout snapshot, renders it, uploads the artifact,
resolves the catalog variant, and submits the partner order. Repeating
the command for the same order line replays the stored outcome without
re-submitting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(snapshotPath)
			if err != nil {
				return fmt.Errorf("read snapshot %s: %w", snapshotPath, err)
			}
			hints, err := parseHints(variantID, sku, title, properties)
			if err != nil {
				return err
			}

			orch, store, err := ctx.newOrchestrator()
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := orch.Fulfill(runCtx, fulfillment.Request{
				OrderID:      orderID,
				LineItemID:   lineItemID,
				RawSnapshot:  raw,
				VariantHints: hints,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(result)
			}
			fmt.Fprintf(out, "Fulfilled order %d line item %d\n", result.OrderID, result.LineItemID)
			fmt.Fprintf(out, "  Artifact:      %s\n", result.ArtifactURL)
			fmt.Fprintf(out, "  Variant:       %d (%s)\n", result.ResolvedVariantID, result.ResolutionMethod)
			fmt.Fprintf(out, "  Partner order: %d\n", result.PartnerOrderID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&orderID, "order", 0, "Source order ID")
	cmd.Flags().Int64Var(&lineItemID, "line-item", 0, "Source order line item ID")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Path to the layout snapshot JSON")
	cmd.Flags().Int64Var(&variantID, "variant-id", 0, "Variant ID hint")
	cmd.Flags().StringVar(&sku, "sku", "", "SKU hint")
	cmd.Flags().StringVar(&title, "title", "", "Variant title hint (\"Color / Size\")")
	cmd.Flags().StringArrayVar(&properties, "property", nil, "Line item property hint as key=value (repeatable)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the result as JSON")
	_ = cmd.MarkFlagRequired("order")
	_ = cmd.MarkFlagRequired("line-item")
	_ = cmd.MarkFlagRequired("snapshot")

	return cmd
}

func parseHints(variantID int64, sku, title string, properties []string) (variant.Hints, error) {
	hints := variant.Hints{
		VariantID:    variantID,
		SKU:          strings.TrimSpace(sku),
		VariantTitle: strings.TrimSpace(title),
	}
	for _, prop := range properties {
		key, value, found := strings.Cut(prop, "=")
		if !found || strings.TrimSpace(key) == "" {
			return variant.Hints{}, fmt.Errorf("property %q is not in key=value form", prop)
		}
		if hints.Properties == nil {
			hints.Properties = make(map[string]string)
		}
		hints.Properties[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return hints, nil
}
