package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Agrid-Dev/thermoprops/internal/saturation"
	"github.com/Agrid-Dev/thermoprops/pkg/api"
)

func newPropertiesCmd(d deps) *cobra.Command {
	var inBar bool

	cmd := &cobra.Command{
		Use:   "properties PRESSURE",
		Short: "Saturated liquid and vapour properties at an absolute pressure (Pa)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("pressure %q is not a number", args[0])
			}
			if inBar {
				p *= 1e5
			}

			src, err := d.source()
			if err != nil {
				return err
			}
			out, err := d.output()
			if err != nil {
				return err
			}

			props, err := src.Properties(cmd.Context(), p)
			if err != nil {
				return err
			}
			return out.Print([]string{"QUANTITY", "LIQUID", "VAPOUR", "UNIT"}, propertiesRows(props), api.FromProperties(props))
		},
	}

	cmd.Flags().BoolVar(&inBar, "bar", false, "read PRESSURE as bar(abs) instead of Pa")
	return cmd
}

func propertiesRows(p saturation.Properties) [][]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', 8, 64) }
	return [][]string{
		{"pressure", f(p.Pressure), f(p.Pressure), "Pa"},
		{"temperature", f(p.Temperature), f(p.Temperature), "K"},
		{"enthalpy", f(p.HLiquid), f(p.HVapor), "J/kg"},
		{"density", f(p.RhoLiquid), f(p.RhoVapor), "kg/m³"},
		{"entropy", f(p.SLiquid), f(p.SVapor), "J/(kg·K)"},
		{"internal energy", f(p.ULiquid), f(p.UVapor), "J/kg"},
		{"latent heat", f(p.Latent()), "", "J/kg"},
	}
}
