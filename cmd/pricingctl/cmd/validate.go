package cmd

import (
	"errors"
	"fmt"

	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the pricing model and market condition files",
		Long: `Load the files named by --models and --market and report every problem.
Exits non-zero when either file is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var errs []error

			registry, err := pricing.LoadRegistry(modelsFile)
			if err != nil {
				errs = append(errs, fmt.Errorf("models: %w", err))
				fmt.Fprintf(out, "models: INVALID (%v)\n", err)
			} else {
				fmt.Fprintf(out, "models: ok (%d: %v)\n", len(registry.Names()), registry.Names())
			}

			snapshot, err := pricing.LoadMarketConditions(marketFile)
			if err != nil {
				errs = append(errs, fmt.Errorf("market: %w", err))
				fmt.Fprintf(out, "market: INVALID (%v)\n", err)
			} else {
				fmt.Fprintf(out, "market: ok (%d factors, snapshot %s)\n", snapshot.Len(), snapshot.ID())
			}

			return errors.Join(errs...)
		},
	}
}
