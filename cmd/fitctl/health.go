package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

type predictorHealth struct {
	Culture    bool `json:"model_service_1"`
	Transcript bool `json:"model_service_2"`
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show prediction service health; exits non-zero unless both are up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet,
				strings.TrimRight(opts.server, "/")+"/api/v1/scoring/health", http.NoBody)
			if err != nil {
				return err
			}
			raw, err := roundTrip(opts.httpClient(), req)
			if err != nil {
				return err
			}
			var h predictorHealth
			if err := json.Unmarshal(raw, &h); err != nil {
				return fmt.Errorf("decode health: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "culture_fit  %s\n", status(h.Culture))
			fmt.Fprintf(out, "transcript   %s\n", status(h.Transcript))
			if !h.Culture || !h.Transcript {
				return fmt.Errorf("prediction services degraded")
			}
			return nil
		},
	}
}

func status(up bool) string {
	if up {
		return "up"
	}
	return "down"
}
