package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/utafrali/catalog-search/internal/client"
	"github.com/utafrali/catalog-search/internal/domain"
)

func newSearchCmd(opts *globalOptions) *cobra.Command {
	var (
		p        client.SearchParams
		maxPrice float64
	)

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Run a ranked search",
		Example: `  searchctl search galaxy --brand samsung --in-stock
  searchctl search --category smartphones --sort price --order asc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Query = strings.Join(args, " ")
			if cmd.Flags().Changed("max-price") {
				p.MaxPrice = &maxPrice
			}

			res, err := opts.client(cmd).Search(cmd.Context(), p)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), res, func(w io.Writer) error {
				return writeSearchTable(w, res)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.Brand, "brand", "", "brand slug")
	f.StringVar(&p.Category, "category", "", "category slug")
	f.Float64Var(&p.MinPrice, "min-price", 0, "minimum price")
	f.Float64Var(&maxPrice, "max-price", 0, "maximum price")
	f.BoolVar(&p.InStock, "in-stock", false, "only items with stock")
	f.StringVar(&p.Sort, "sort", "", "relevance, price, name, rating, date or stock")
	f.StringVar(&p.Order, "order", "", "asc or desc")
	f.IntVar(&p.Limit, "limit", 0, "page size (1-100)")
	f.IntVar(&p.Offset, "offset", 0, "number of results to skip")
	return cmd
}

func writeSearchTable(w io.Writer, res *domain.SearchResult) error {
	fmt.Fprintf(w, "%d results, showing %d from offset %d (%dms)\n", res.Total, len(res.Results), res.Offset, res.DurationMs)
	if len(res.Results) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tPRICE\tSTOCK\tSCORE")
	for _, it := range res.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%d\t%.1f\n", it.ID, it.Name, it.Brand.Name, it.Price, it.StockQuantity, it.Score)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if res.HasNext {
		fmt.Fprintf(w, "more: --offset %d\n", res.Offset+res.Limit)
	}
	return nil
}

func newSuggestCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "List popular queries starting with a prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suggestions, err := opts.client(cmd).Suggest(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), suggestions, func(w io.Writer) error {
				for _, s := range suggestions {
					fmt.Fprintln(w, s)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum suggestions (default 10)")
	return cmd
}
