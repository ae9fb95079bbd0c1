package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"platen/internal/artifact"
	"platen/internal/fonts"
	"platen/internal/layout"
	"platen/internal/render"
	"platen/internal/snapshot"
)

// newRenderCommand renders a snapshot to a local PNG without touching
// storage or the partner, for previewing artwork before fulfillment.
func newRenderCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "render <snapshot.json>",
		Short: "Render a layout snapshot to a local PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot %s: %w", args[0], err)
			}

			snap, err := snapshot.Validate(raw)
			if err != nil {
				return err
			}

			logger := ctx.ensureLogger()
			registry := fonts.NewRegistry(cfg.Paths.FontsDir, cfg.Fonts.FallbackFamily, logger)
			engine := layout.NewEngine(registry, logger)
			placed, err := engine.Layout(snap)
			if err != nil {
				return err
			}
			data, err := render.NewRasterizer(logger).Render(placed)
			if err != nil {
				return err
			}

			target := outputPath
			if target == "" {
				target = "print.png"
			}
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rendered %dx%d px (%d bytes) to %s\n", placed.WidthPx, placed.HeightPx, len(data), target)
			fmt.Fprintf(out, "Content hash: %s\n", artifact.ContentHash(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output PNG path (default print.png)")
	return cmd
}
