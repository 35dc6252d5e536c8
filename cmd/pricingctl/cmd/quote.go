package cmd

import (
	"fmt"
	"os"

	"github.com/amirphl/dynamic-pricing/app/dto"
	businessflow "github.com/amirphl/dynamic-pricing/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/hjson/hjson-go/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var validate = validator.New()

func defaultModel() string {
	if m := os.Getenv("PRICING_DEFAULT_MODEL"); m != "" {
		return m
	}
	return "value_based"
}

func premiumFlags(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	flags := make(map[string]bool, len(names))
	for _, n := range names {
		flags[n] = true
	}
	return flags
}

func newQuoteCmd() *cobra.Command {
	var (
		profilePath string
		model       string
		premiums    []string
		format      string
		details     bool
	)

	c := &cobra.Command{
		Use:   "quote",
		Short: "Price one client profile",
		Long: `Price one client profile read from an HJSON or JSON file ("-" for stdin).

The profile uses the same fields as POST /api/v1/clients:
  { "company_name": "Acme", "industry": "saas", company_size: 250, annual_revenue: 2000000,
    urgency_score: 7, competition_level: 5, strategic_value: 6,
    payment_history_score: 8, relationship_strength: 6 }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			data, err := readInput(profilePath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			var req dto.CreateClientRequest
			if err := hjson.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("failed to parse profile: %w", err)
			}
			if err := validate.Struct(&req); err != nil {
				return fmt.Errorf("invalid profile: %w", err)
			}
			profile, err := businessflow.ToPricingProfile(req)
			if err != nil {
				return err
			}

			calc, snapshot, err := loadPricing()
			if err != nil {
				return err
			}
			res, err := calc.Quote(profile, model, snapshot, premiumFlags(premiums))
			if err != nil {
				return err
			}
			logger.Debug("quote priced", zap.String("model", model), zap.Float64("price", res.FinalPrice))
			return writeLines(cmd.OutOrStdout(), format, []quoteLine{newQuoteLine(1, req.CompanyName, res)}, details)
		},
	}

	c.Flags().StringVarP(&profilePath, "profile", "p", "-", "client profile file, - for stdin")
	c.Flags().StringVarP(&model, "model", "m", defaultModel(), "pricing model name")
	c.Flags().StringSliceVar(&premiums, "premium", nil, "premium flags to apply (repeatable or comma separated)")
	c.Flags().StringVarP(&format, "format", "f", formatTable, "output format (table, json)")
	c.Flags().BoolVarP(&details, "details", "d", true, "print the factor log")
	return c
}
