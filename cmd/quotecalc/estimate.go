package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/pricing"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/quotetext"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/validation"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type estimateOptions struct {
	format string
	asOf   string
	now    func() time.Time
}

func newEstimateCmd(root *rootOptions) *cobra.Command {
	opts := &estimateOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:   "estimate <request.json|->",
		Short: "Price a quote request",
		Long: `Validate a quote request and print the itemized quote.

The request uses the same JSON shape as POST /api/quotes/estimate.
Use "-" to read it from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format (text, json)")
	cmd.Flags().StringVar(&opts.asOf, "as-of", "", "pricing date, RFC 3339 or YYYY-MM-DD (default: now)")
	return cmd
}

func runEstimate(cmd *cobra.Command, root *rootOptions, opts *estimateOptions, source string) error {
	if opts.format != formatText && opts.format != formatJSON {
		return fmt.Errorf("unsupported format %q (want %s or %s)", opts.format, formatText, formatJSON)
	}

	asOf, err := parseAsOf(opts.asOf, opts.now)
	if err != nil {
		return err
	}

	body, err := readSource(cmd.InOrStdin(), source)
	if err != nil {
		return err
	}

	log := root.logger()
	defer func() { _ = log.Sync() }()

	rates, err := root.loadRates(log)
	if err != nil {
		return err
	}

	req, err := validation.DecodeEstimate(body)
	if err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	res := pricing.Compute(req, rates, asOf)
	log.Debug("quote computed",
		zap.String("category", string(res.Category)),
		zap.String("total", res.TotalOneTimePrice.String()),
	)

	out := cmd.OutOrStdout()
	if opts.format == formatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return quotetext.Render(out, quotetext.Document{IssuedAt: asOf, Result: res})
}

func parseAsOf(raw string, now func() time.Time) (time.Time, error) {
	if raw == "" {
		return now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: want RFC 3339 or YYYY-MM-DD", raw)
	}
	return t, nil
}

func readSource(stdin io.Reader, source string) ([]byte, error) {
	if source == "-" {
		body, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read request from stdin: %w", err)
		}
		return body, nil
	}

	body, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return body, nil
}
