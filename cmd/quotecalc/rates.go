package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRatesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Print the effective rate table as YAML",
		Long: `Print the rate table after applying --rates, in the same YAML format
that --rates and RATES_PATH accept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := root.logger()
			defer func() { _ = log.Sync() }()

			rates, err := root.loadRates(log)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(rates.ToFile()); err != nil {
				return fmt.Errorf("encode rate table: %w", err)
			}
			return enc.Close()
		},
	}
}
