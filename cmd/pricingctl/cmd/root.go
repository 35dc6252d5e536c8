// Package cmd provides the pricingctl commands.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/amirphl/dynamic-pricing/logging"
	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "1.0.0"

var (
	modelsFile string
	marketFile string
	verbose    bool

	logger = zap.NewNop()
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pricingctl",
		Short: "Price client quotes offline",
		Long: `pricingctl prices client profiles with the same models and pipeline the
pricing API uses, without touching the database.

Examples:
  pricingctl models
  pricingctl quote --profile acme.hjson --model value_based --premium rush_delivery
  pricingctl batch --format json prospects.hjson
  pricingctl validate --models config/pricing_models.yaml --market config/market_conditions.yaml`,
		SilenceUsage:      true,
		PersistentPreRunE: initLogging,
	}

	root.PersistentFlags().StringVar(&modelsFile, "models", os.Getenv("PRICING_MODELS_FILE"), "pricing model file (yaml or hjson); built-in models when empty")
	root.PersistentFlags().StringVar(&marketFile, "market", os.Getenv("PRICING_MARKET_FILE"), "market conditions file (yaml); built-in factors when empty")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newQuoteCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newModelsCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pricingctl version %s\n", version)
		},
	})
	return root
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func initLogging(cmd *cobra.Command, args []string) error {
	cfg := logging.DefaultConfig()
	if verbose {
		cfg.Level = "debug"
	}
	l, err := logging.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger = l.Named("pricingctl")
	return nil
}

// loadPricing reads the model registry and one market snapshot for the whole run
func loadPricing() (*pricing.Calculator, *pricing.MarketSnapshot, error) {
	registry, err := pricing.LoadRegistry(modelsFile)
	if err != nil {
		return nil, nil, err
	}
	snapshot, err := pricing.LoadMarketConditions(marketFile)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("pricing inputs loaded",
		zap.Strings("models", registry.Names()),
		zap.String("snapshot_id", snapshot.ID()))
	return pricing.NewCalculator(registry), snapshot, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
