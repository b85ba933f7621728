package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

const maxResponseBytes = 4 << 20

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newScoreCmd(opts *rootOptions) *cobra.Command {
	var requestID string
	cmd := &cobra.Command{
		Use:   "score <request.yaml|request.json|->",
		Short: "Submit a scoring request and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc map[string]any
			if err := readDocument(cmd.InOrStdin(), args[0], &doc); err != nil {
				return err
			}
			if doc == nil {
				return errors.New("request document is empty")
			}
			body, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("encode request: %w", err)
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost,
				strings.TrimRight(opts.server, "/")+"/api/v1/scoring/analyze", bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			if requestID != "" {
				req.Header.Set("X-Request-ID", requestID)
			}

			out, err := roundTrip(opts.httpClient(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&requestID, "request-id", "", "X-Request-ID to send")
	return cmd
}

// roundTrip sends req and decodes a JSON reply. Non-2xx replies become an
// *apiError when the body carries one.
func roundTrip(hc *http.Client, req *http.Request) (json.RawMessage, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && ae.Code != "" {
			return nil, &ae
		}
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}
	if !json.Valid(raw) {
		return nil, errors.New("server returned invalid JSON")
	}
	return raw, nil
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
