package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"moviematch/internal/config"
	"moviematch/internal/respcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the poster response cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize cached responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(a *app) error {
				stats, err := a.cache.Stats(cmd.Context())
				if err != nil {
					return fmt.Errorf("cache stats: %w", err)
				}
				if jsonOut {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Backend: %s\n", stats.Backend)
				if stats.Path != "" {
					fmt.Fprintf(out, "Path: %s\n", stats.Path)
				}
				fmt.Fprintf(out, "TTL: %s\n", a.cfg.CacheTTL())
				fmt.Fprintf(out, "Entries: %d (%d expired)\n", stats.Entries, stats.Expired)
				fmt.Fprintf(out, "Size: %s\n", humanize.Bytes(uint64(stats.Bytes)))
				if !stats.Oldest.IsZero() {
					fmt.Fprintf(out, "Oldest: %s\n", humanize.Time(stats.Oldest))
					fmt.Fprintf(out, "Newest: %s\n", humanize.Time(stats.Newest))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached responses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			return withCache(cmd, ctx, func(a *app) error {
				entries, err := a.cache.List(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("cache list: %w", err)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No cached responses")
					return nil
				}
				now := time.Now()
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, cacheEntryRow(entry, now))
				}
				headers := []string{"Title", "Key", "Size", "Stored", "Expires"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
				return writeRows(cmd.OutOrStdout(), format, headers, rows, aligns)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show (0 for all)")
	cmd.Flags().StringVar(&format, "format", formatAuto, "Output format: auto, table or tsv")
	return cmd
}

func cacheEntryRow(entry respcache.Entry, now time.Time) []string {
	label := entry.Label
	if label == "" {
		label = "-"
	}
	key := entry.Key
	if len(key) > 12 {
		key = key[:12]
	}
	expires := humanize.Time(entry.ExpiresAt)
	if entry.Expired(now) {
		expires = "expired"
	}
	return []string{
		label,
		key,
		strconv.Itoa(entry.Size),
		entry.StoredAt.Local().Format(time.DateTime),
		expires,
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(a *app) error {
				removed, err := a.cache.Prune(cmd.Context())
				if err != nil {
					return fmt.Errorf("cache prune: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired %s\n", removed, pluralize(removed, "entry", "entries"))
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(a *app) error {
				removed, err := a.cache.Clear(cmd.Context())
				if err != nil {
					return fmt.Errorf("cache clear: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s\n", removed, pluralize(removed, "entry", "entries"))
				return nil
			})
		},
	}
}

func withCache(cmd *cobra.Command, ctx *commandContext, fn func(*app) error) error {
	a, err := ctx.openCacheOnly(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	describeBackend(cmd.ErrOrStderr(), a.cfg.Cache.Backend)
	return fn(a)
}

func describeBackend(w io.Writer, backend string) {
	switch backend {
	case config.CacheBackendMemory:
		fmt.Fprintln(w, "note: the memory cache lives only inside a running server; nothing persists between commands")
	case config.CacheBackendNone:
		fmt.Fprintln(w, "note: response caching is disabled (cache.backend = \"none\")")
	}
}
