// Command fitctl is the operator CLI for fitscore: it scores request files
// against a running server, checks predictor health, drives synthetic load,
// and seeds organisation context into the store.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const (
	defaultServer  = "http://localhost:9080"
	defaultTimeout = 3 * time.Minute
)

type rootOptions struct {
	server  string
	timeout time.Duration
}

func (o *rootOptions) httpClient() *http.Client {
	return &http.Client{Timeout: o.timeout}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "fitctl",
		Short:         "Operate a fitscore scoring service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("FITCTL_SERVER", defaultServer), "fitscore base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", defaultTimeout, "HTTP timeout")

	root.AddCommand(newScoreCmd(opts), newHealthCmd(opts), newLoadCmd(opts), newOrgCmd())
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fitctl:", err)
		stop()
		os.Exit(1)
	}
}
