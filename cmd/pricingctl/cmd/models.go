package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

func newModelsCmd() *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "models [name]",
		Short: "List pricing models or print one model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := pricing.LoadRegistry(modelsFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				m, err := registry.Get(args[0])
				if err != nil {
					return err
				}
				var data []byte
				switch format {
				case formatJSON:
					data, err = json.MarshalIndent(m.Spec(), "", "  ")
					data = append(data, '\n')
				case "yaml", formatTable:
					data, err = yaml.Marshal(m.Spec())
				default:
					return fmt.Errorf("unsupported format %q (use yaml or json)", format)
				}
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tBASE PRICE\tFACTOR TABLES\tPREMIUMS")
			for _, m := range registry.Models() {
				spec := m.Spec()
				premiums := make([]string, 0, len(spec.PremiumMultipliers))
				for k := range spec.PremiumMultipliers {
					premiums = append(premiums, k)
				}
				sort.Strings(premiums)
				fmt.Fprintf(tw, "%s\t%.2f\t%d\t%v\n", m.Name(), m.BasePrice(), len(spec.PricingFactors), premiums)
			}
			return tw.Flush()
		},
	}
	c.Flags().StringVarP(&format, "format", "f", "yaml", "output format for a single model (yaml, json)")
	return c
}
