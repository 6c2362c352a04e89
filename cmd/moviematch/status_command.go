package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moviematch/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check data files, cache directory and the poster service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			rows := make([][]string, 0, len(results))
			failed := 0
			for _, r := range results {
				if r.Failed() {
					failed++
				}
				rows = append(rows, []string{r.Name, statusLabel(r), r.Detail})
			}
			headers := []string{"Check", "Status", "Detail"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft}
			if err := writeRows(cmd.OutOrStdout(), format, headers, rows, aligns); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d readiness %s failed", failed, pluralize(failed, "check", "checks"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatAuto, "Output format: auto, table or tsv")
	return cmd
}

func statusLabel(r preflight.Result) string {
	switch {
	case r.Passed:
		return "ok"
	case r.Optional:
		return "warn"
	default:
		return "fail"
	}
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
