package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"moviematch/internal/web"
)

func newTitlesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var contains string

	cmd := &cobra.Command{
		Use:   "titles",
		Short: "List every title in the catalog in sorted order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg, logger)
			if err != nil {
				return err
			}

			titles := cat.SortedTitles()
			if needle := strings.ToLower(strings.TrimSpace(contains)); needle != "" {
				filtered := titles[:0]
				for _, title := range titles {
					if strings.Contains(strings.ToLower(title), needle) {
						filtered = append(filtered, title)
					}
				}
				titles = filtered
			}

			if jsonOut {
				return writeJSON(cmd, web.TitlesResponse{Count: len(titles), Titles: titles})
			}
			out := cmd.OutOrStdout()
			for _, title := range titles {
				fmt.Fprintln(out, title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&contains, "contains", "", "Only list titles containing this text (case-insensitive)")
	return cmd
}
