package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/logger"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/pricing"
)

type rootOptions struct {
	ratesPath string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "quotecalc",
		Short: "Price project quote requests",
		Long: `quotecalc prices a project quote request with the same engine and rate
table as the quote service.

Examples:
  quotecalc estimate request.json
  quotecalc estimate --format json --as-of 2024-03-01 - < request.json
  quotecalc rates --rates rates.yaml`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ratesPath, "rates", "", "YAML rate table overlay (default: built-in rates)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(newEstimateCmd(opts))
	cmd.AddCommand(newRatesCmd(opts))
	return cmd
}

func (o *rootOptions) logger() *zap.Logger {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	log, err := logger.New(level, "console")
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func (o *rootOptions) loadRates(log *zap.Logger) (pricing.RateTable, error) {
	rates, err := pricing.LoadRateTable(o.ratesPath)
	if err != nil {
		return pricing.RateTable{}, err
	}
	log.Debug("rate table loaded", zap.String("path", o.ratesPath), zap.String("currency", rates.Currency))
	return rates, nil
}
