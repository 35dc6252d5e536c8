package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/shopspring/decimal"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// quoteLine is one priced profile as printed by quote and batch
type quoteLine struct {
	Index              int                   `json:"index"`
	CompanyName        string                `json:"company_name"`
	PricingModel       string                `json:"pricing_model"`
	Segment            string                `json:"segment,omitempty"`
	BasePrice          float64               `json:"base_price,omitempty"`
	CalculatedPrice    float64               `json:"calculated_price,omitempty"`
	DiscountPercentage float64               `json:"discount_percentage"`
	PremiumMultiplier  float64               `json:"premium_multiplier,omitempty"`
	FactorsApplied     []pricing.FactorEntry `json:"factors_applied,omitempty"`
	MarketSnapshotID   string                `json:"market_snapshot_id,omitempty"`
	Error              string                `json:"error,omitempty"`
}

func newQuoteLine(index int, company string, res pricing.Result) quoteLine {
	return quoteLine{
		Index:              index,
		CompanyName:        company,
		PricingModel:       res.ModelName,
		Segment:            string(res.Segment),
		BasePrice:          res.BasePrice,
		CalculatedPrice:    decimal.NewFromFloat(res.FinalPrice).Round(2).InexactFloat64(),
		DiscountPercentage: decimal.NewFromFloat(res.DiscountPercentage).Round(2).InexactFloat64(),
		PremiumMultiplier:  res.PremiumMultiplier,
		FactorsApplied:     res.Factors,
		MarketSnapshotID:   res.SnapshotID,
	}
}

func checkFormat(format string) error {
	if format != formatTable && format != formatJSON {
		return fmt.Errorf("unsupported format %q (use %s or %s)", format, formatTable, formatJSON)
	}
	return nil
}

func writeLines(w io.Writer, format string, lines []quoteLine, details bool) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(lines)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCOMPANY\tMODEL\tSEGMENT\tBASE\tPRICE\tDISCOUNT %\tNOTE")
	for _, l := range lines {
		if l.Error != "" {
			fmt.Fprintf(tw, "%d\t%s\t%s\t-\t-\t-\t-\t%s\n", l.Index, l.CompanyName, l.PricingModel, l.Error)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t\n",
			l.Index, l.CompanyName, l.PricingModel, l.Segment, l.BasePrice, l.CalculatedPrice, l.DiscountPercentage)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if details {
		for _, l := range lines {
			if l.Error != "" {
				continue
			}
			fmt.Fprintf(w, "\n%s factors: %s\n", l.CompanyName, formatFactors(l.FactorsApplied))
		}
	}
	return nil
}

func formatFactors(factors []pricing.FactorEntry) string {
	parts := make([]string, len(factors))
	for i, f := range factors {
		parts[i] = fmt.Sprintf("%s=%g", f.Stage, f.Value)
	}
	return strings.Join(parts, ", ")
}
