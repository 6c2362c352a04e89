package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"moviematch/internal/recommend"
	"moviematch/internal/services"
)

var errTitleNotFound = errors.New("title not found")

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var format string

	cmd := &cobra.Command{
		Use:   "recommend <title>",
		Short: "Show the most similar titles with their posters",
		Long: "Show the most similar titles with their posters.\n\n" +
			"The title must match a catalog entry exactly (case-sensitive). Notices are\n" +
			"written to stderr; the command exits non-zero when the title is unknown.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			a, err := ctx.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			reqCtx := services.WithSurface(cmd.Context(), "cli")
			result := a.service.Recommend(reqCtx, args[0])
			notices := append(a.service.StartupNotices(), result.Notices...)

			if jsonOut {
				result.Notices = notices
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				printNotices(cmd.ErrOrStderr(), notices)
				if len(result.Suggestions) > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "Did you mean: %s?\n", strings.Join(result.Suggestions, ", "))
				}
				if len(result.Items) > 0 {
					if err := writeRows(cmd.OutOrStdout(), format, recommendationHeaders, recommendationRows(result), recommendationAligns); err != nil {
						return err
					}
				}
			}
			if result.NotFound {
				return fmt.Errorf("recommend %q: %w", args[0], errTitleNotFound)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&format, "format", formatAuto, "Output format when not using --json: auto, table or tsv")
	return cmd
}

var (
	recommendationHeaders = []string{"#", "Title", "Score", "Poster"}
	recommendationAligns  = []columnAlignment{alignRight, alignLeft, alignRight, alignLeft}
)

func recommendationRows(result recommend.Result) [][]string {
	rows := make([][]string, 0, len(result.Items))
	for i, item := range result.Items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			item.Title,
			strconv.FormatFloat(item.Score, 'f', 4, 64),
			item.PosterURL,
		})
	}
	return rows
}

func printNotices(w io.Writer, notices []recommend.Notice) {
	for _, notice := range notices {
		fmt.Fprintf(w, "%s: %s\n", notice.Level, notice.Message)
	}
}
