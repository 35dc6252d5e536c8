package cmd

import (
	"fmt"

	"github.com/amirphl/dynamic-pricing/app/dto"
	businessflow "github.com/amirphl/dynamic-pricing/business_flow"
	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/hjson/hjson-go/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// batchFile is the input of the batch command. Entries without a model or
// premium flags use the file level ones.
type batchFile struct {
	PricingModel string                    `json:"pricing_model"`
	PremiumFlags map[string]bool           `json:"premium_flags"`
	Quotes       []dto.PreviewQuoteRequest `json:"quotes"`
}

func newBatchCmd() *cobra.Command {
	var (
		format  string
		details bool
	)

	c := &cobra.Command{
		Use:   "batch [file]",
		Short: "Price many client profiles against one market snapshot",
		Long: `Price every entry of an HJSON or JSON batch file ("-" for stdin). The
market conditions are read once, so every quote in the run shares one snapshot.

  {
    pricing_model: value_based
    quotes: [
      { client: { company_name: "Acme", ... } }
      { client: { company_name: "Initech", ... }, pricing_model: "competitive", premium_flags: { rush_delivery: true } }
    ]
  }

Entries that fail are reported and the command exits non-zero after printing the rest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			data, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			var batch batchFile
			if err := hjson.Unmarshal(data, &batch); err != nil {
				return fmt.Errorf("failed to parse batch file: %w", err)
			}
			if len(batch.Quotes) == 0 {
				return fmt.Errorf("batch file has no quotes")
			}
			if batch.PricingModel == "" {
				batch.PricingModel = defaultModel()
			}

			calc, snapshot, err := loadPricing()
			if err != nil {
				return err
			}

			lines := make([]quoteLine, 0, len(batch.Quotes))
			failed := 0
			for i, q := range batch.Quotes {
				if q.PricingModel == "" {
					q.PricingModel = batch.PricingModel
				}
				if q.PremiumFlags == nil {
					q.PremiumFlags = batch.PremiumFlags
				}
				line, err := priceEntry(i+1, q, calc, snapshot)
				if err != nil {
					failed++
					line = quoteLine{Index: i + 1, CompanyName: q.Client.CompanyName, PricingModel: q.PricingModel, Error: err.Error()}
					logger.Debug("batch entry failed", zap.Int("index", i+1), zap.Error(err))
				}
				lines = append(lines, line)
			}

			if err := writeLines(cmd.OutOrStdout(), format, lines, details); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d quotes failed", failed, len(lines))
			}
			return nil
		},
	}

	c.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table, json)")
	c.Flags().BoolVarP(&details, "details", "d", false, "print the factor log of every quote")
	return c
}

func priceEntry(index int, q dto.PreviewQuoteRequest, calc *pricing.Calculator, snapshot *pricing.MarketSnapshot) (quoteLine, error) {
	if err := validate.Struct(&q); err != nil {
		return quoteLine{}, err
	}
	profile, err := businessflow.ToPricingProfile(q.Client)
	if err != nil {
		return quoteLine{}, err
	}
	res, err := calc.Quote(profile, q.PricingModel, snapshot, q.PremiumFlags)
	if err != nil {
		return quoteLine{}, err
	}
	return newQuoteLine(index, q.Client.CompanyName, res), nil
}
