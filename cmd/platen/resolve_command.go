package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"platen/internal/variant"
)

// newResolveCommand resolves variant hints against the live catalog
// without fulfilling anything, for diagnosing resolution problems.
func newResolveCommand(ctx *commandContext) *cobra.Command {
	var (
		variantID  int64
		sku        string
		title      string
		properties []string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve variant hints against the partner catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			hints, err := parseHints(variantID, sku, title, properties)
			if err != nil {
				return err
			}
			client, err := ctx.partnerClient()
			if err != nil {
				return err
			}
			table, err := variant.LoadMappingTable(cfg.Resolver.MappingTablePath)
			if err != nil {
				return err
			}

			resolver := variant.NewResolver(client, table, cfg.Partner.BaseProductID, ctx.ensureLogger())
			resolution, err := resolver.Resolve(cmd.Context(), hints)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Variant:    %d\n", resolution.VariantID)
			fmt.Fprintf(out, "Method:     %s\n", resolution.Method)
			fmt.Fprintf(out, "Confidence: %.2f\n", resolution.Confidence)
			return nil
		},
	}

	cmd.Flags().Int64Var(&variantID, "variant-id", 0, "Variant ID hint")
	cmd.Flags().StringVar(&sku, "sku", "", "SKU hint")
	cmd.Flags().StringVar(&title, "title", "", "Variant title hint (\"Color / Size\")")
	cmd.Flags().StringArrayVar(&properties, "property", nil, "Line item property hint as key=value (repeatable)")

	return cmd
}
