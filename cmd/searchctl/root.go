package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/utafrali/catalog-search/internal/client"
	pkgconfig "github.com/utafrali/catalog-search/pkg/config"
	"github.com/utafrali/catalog-search/pkg/httpclient"
	"github.com/utafrali/catalog-search/pkg/logger"
)

const envPrefix = "SEARCHCTL_"

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
)

// cliConfig holds the environment defaults of the global flags.
type cliConfig struct {
	Addr    string        `env:"ADDR" envDefault:"http://localhost:8010"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	Output  string        `env:"OUTPUT" envDefault:"table"`
}

type globalOptions struct {
	addr    string
	timeout time.Duration
	output  string
}

func (o *globalOptions) client(cmd *cobra.Command) *client.Client {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = o.timeout
	log := logger.NewWithWriter("searchctl", "warn", cmd.ErrOrStderr())
	return client.New(o.addr, httpCfg, log)
}

// render writes v as indented JSON, or calls table when the table format
// was selected.
func (o *globalOptions) render(w io.Writer, v any, table func(io.Writer) error) error {
	if o.output == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return table(w)
}

func newRootCmd() *cobra.Command {
	var cfg cliConfig
	opts := &globalOptions{}

	envErr := pkgconfig.LoadWithPrefix(&cfg, envPrefix)
	if envErr != nil {
		cfg = cliConfig{Addr: "http://localhost:8010", Timeout: 10 * time.Second, Output: outputTable}
	}

	cmd := &cobra.Command{
		Use:          "searchctl",
		Short:        "Query and administer the catalog search service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if envErr != nil {
				cmd.PrintErrln("warning: ignoring environment:", envErr)
			}
			switch opts.output {
			case outputTable, outputJSON:
			default:
				return fmt.Errorf("unknown output format %q (want %s or %s)", opts.output, outputTable, outputJSON)
			}
			if opts.timeout <= 0 {
				return fmt.Errorf("timeout must be positive, got %s", opts.timeout)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.addr, "addr", cfg.Addr, "base URL of the search service ("+envPrefix+"ADDR)")
	flags.DurationVar(&opts.timeout, "timeout", cfg.Timeout, "per-request timeout ("+envPrefix+"TIMEOUT)")
	flags.StringVarP(&opts.output, "output", "o", cfg.Output, "output format: table or json ("+envPrefix+"OUTPUT)")

	cmd.AddCommand(
		newSearchCmd(opts),
		newSuggestCmd(opts),
		newPopularCmd(opts),
		newCacheCmd(opts),
	)
	return cmd
}
