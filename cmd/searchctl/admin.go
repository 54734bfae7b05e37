package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPopularCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "popular",
		Short: "List the most searched queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			queries, err := opts.client(cmd).Popular(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), queries, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "QUERY\tCOUNT")
				for _, q := range queries {
					fmt.Fprintf(tw, "%s\t%d\n", q.Query, q.Count)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of queries (1-100, default 10)")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Reset all popularity counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.client(cmd).ClearPopular(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "popularity counters cleared")
			return nil
		},
	})
	return cmd
}

func newCacheCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the result cache",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show result cache occupancy",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				stats, err := opts.client(cmd).CacheStats(cmd.Context())
				if err != nil {
					return err
				}
				return opts.render(cmd.OutOrStdout(), stats, func(w io.Writer) error {
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintf(tw, "total\t%d\n", stats.Total)
					fmt.Fprintf(tw, "active\t%d\n", stats.Active)
					fmt.Fprintf(tw, "expired\t%d\n", stats.Expired)
					fmt.Fprintf(tw, "ttl\t%s\n", stats.TTL)
					return tw.Flush()
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Drop every cached result",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := opts.client(cmd).ClearCache(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "result cache cleared")
				return nil
			},
		},
	)
	return cmd
}
