package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"kaiginote/config"
	"kaiginote/internal/domain"
)

const requestsMetric = "kaiginote_api_requests_total"

type options struct {
	apiURL   string
	store    string
	output   string
	logLevel string
	stats    bool
}

// env is shared by all commands of one invocation.
type env struct {
	opts       options
	app        *App
	hadSession bool
}

func (e *env) printer(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout(), format: e.opts.output}
}

// Run executes the command line in args.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	e := &env{}
	root := newRootCommand(e)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if e.app != nil {
		// Failed commands still made requests worth reporting.
		if e.opts.stats {
			if serr := printStats(stderr, e.app.Registry); serr != nil && err == nil {
				err = serr
			}
		}
		if errors.Is(err, domain.ErrAuth) && e.hadSession && !e.app.Tokens.Authenticated() {
			fmt.Fprintln(stderr, "session ended: log in again")
		}
		if cerr := e.app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func newRootCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kaigi",
		Short:         "Command line client for kaigi-note",
		Long:          "kaigi manages kaigi-note events and their participants from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !validFormat(e.opts.output) {
				return fmt.Errorf("unknown output format %q (want table, json or yaml)", e.opts.output)
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if e.opts.apiURL != "" {
				cfg.APIURL = e.opts.apiURL
			}
			if e.opts.store != "" {
				cfg.StorePath = e.opts.store
			}
			if e.opts.logLevel != "" {
				cfg.LogLevel = e.opts.logLevel
			}
			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Environment, cfg.LogLevel)

			app, err := NewApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			e.app = app
			e.hadSession = app.Tokens.Authenticated()
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&e.opts.apiURL, "api-url", "", "Service base URL (default from KAIGI_API_URL)")
	flags.StringVar(&e.opts.store, "store", "", "Local storage file (default from KAIGI_STORE_PATH)")
	flags.StringVarP(&e.opts.output, "output", "o", formatTable, "Output format (table, json, yaml)")
	flags.StringVar(&e.opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&e.opts.stats, "stats", false, "Print request counters when done")

	cmd.AddCommand(
		newRegisterCommand(e),
		newLoginCommand(e),
		newLogoutCommand(e),
		newWhoamiCommand(e),
		newEventsCommand(e),
		newParticipantsCommand(e),
		newOpenCommand(e),
	)
	return cmd
}

func newOpenCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "open ROUTE",
		Short: "Show where navigating to ROUTE lands for the current session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := e.app.Router.Open(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", args[0], d.Target, d.Action)
			return nil
		},
	}
}

func printStats(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	type row struct {
		method, route, code string
		count               float64
	}
	var rows []row
	for _, mf := range families {
		if mf.GetName() != requestsMetric {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			rows = append(rows, row{labels["method"], labels["route"], labels["code"], m.GetCounter().GetValue()})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].route != rows[j].route {
			return rows[i].route < rows[j].route
		}
		return rows[i].method < rows[j].method
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tROUTE\tCODE\tCOUNT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f\n", r.method, r.route, r.code, r.count)
	}
	return tw.Flush()
}
