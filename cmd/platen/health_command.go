package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check readiness of every pipeline stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, store, err := ctx.newOrchestrator()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			allReady := true
			for _, check := range orch.HealthCheck(cmd.Context()) {
				status := "ready"
				if !check.Ready {
					allReady = false
					status = "NOT READY"
					if check.Detail != "" {
						status += ": " + check.Detail
					}
				}
				fmt.Fprintf(out, "%-10s %s\n", check.Name, status)
			}
			if !allReady {
				return errors.New("one or more stages are not ready")
			}
			return nil
		},
	}
}
