package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/talenti/fitscore/internal/loadtest"
)

func newLoadCmd(opts *rootOptions) *cobra.Command {
	cfg := &loadtest.Config{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Send synthetic scoring requests and verify every reply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.BaseURL = opts.server
			cfg.Timeout = opts.timeout
			stats, err := loadtest.Run(cmd.Context(), cfg)
			fmt.Fprintf(cmd.OutOrStdout(),
				"submitted %d  ok %d  rejected %d  failed %d  violations %d  inconsistent %d  in %s\n",
				stats.Submitted, stats.Successful, stats.Rejected, stats.Failed,
				stats.Violations, stats.Inconsistent, stats.Duration.Round(time.Millisecond))
			return err
		},
	}
	f := cmd.Flags()
	f.IntVarP(&cfg.Requests, "requests", "n", 100, "number of scoring requests")
	f.IntVarP(&cfg.Workers, "workers", "w", 8, "concurrent submitters")
	f.IntVar(&cfg.Repeat, "repeat", 0, "resubmit this many requests and require identical replies")
	f.Uint64Var(&cfg.Seed, "seed", 1, "generator seed")
	f.StringVar(&cfg.OrgID, "org", "", "resolve context from this organisation instead of sending it inline")
	f.StringVarP(&cfg.OutputFile, "output", "o", "", "write the generated requests to this file")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every scored request")
	return cmd
}
