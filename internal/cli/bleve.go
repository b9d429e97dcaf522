package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Agrid-Dev/thermoprops/internal/bleve"
	"github.com/Agrid-Dev/thermoprops/pkg/api"
)

func newBleveCmd(d deps) *cobra.Command {
	var (
		in         bleve.Inputs
		thresholds string
		serverSide bool
		curve      bool
	)

	cmd := &cobra.Command{
		Use:   "bleve",
		Short: "Burst energy and overpressure effect distances of a saturated water vessel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Thresholds = bleve.ParseThresholds(thresholds)

			out, err := d.output()
			if err != nil {
				return err
			}

			var res bleve.Results
			if serverSide {
				c, err := d.client()
				if err != nil {
					return err
				}
				res, err = c.Bleve(cmd.Context(), in)
				if err != nil {
					return err
				}
			} else {
				src, err := d.source()
				if err != nil {
					return err
				}
				res, err = bleve.NewCalculator(src).Calculate(cmd.Context(), in)
				if err != nil {
					return err
				}
			}

			if curve {
				return out.Print([]string{"DISTANCE_M", "OVERPRESSURE_MBAR"}, curveRows(res), api.FromBleveResults(res).OverpressureCurve)
			}
			return out.Print([]string{"STEP", "VALUE", "UNIT"}, bleveRows(res), api.FromBleveResults(res))
		},
	}

	f := cmd.Flags()
	f.Float64Var(&in.Volume, "volume", 1.0, "vessel volume (m³)")
	f.Float64Var(&in.LiquidFraction, "liquid-fraction", 0.7, "liquid volume fraction (0-1]")
	f.Float64Var(&in.PressureRel, "pressure-rel", 30.0, "relative rupture pressure (bar)")
	f.Float64Var(&in.Asb, "asb", bleve.DefaultAsb, "surface factor")
	f.StringVar(&thresholds, "thresholds", "50, 140, 200", "comma separated overpressure thresholds (mbar)")
	f.BoolVar(&serverSide, "server-side", false, "run the whole calculation on the API server")
	f.BoolVar(&curve, "curve", false, "print the overpressure curve instead of the steps")
	return cmd
}

func bleveRows(r bleve.Results) [][]string {
	rows := make([][]string, 0, len(r.Steps)+len(r.Distances))
	for _, s := range r.Steps {
		v := s.Text
		if v == "" {
			v = strconv.FormatFloat(s.Value, 'g', -1, 64)
		}
		rows = append(rows, []string{s.Description, v, s.Unit})
	}
	for _, dr := range r.Distances {
		rows = append(rows, []string{
			"Effect distance at " + strconv.FormatFloat(dr.Threshold, 'g', -1, 64) + " mbar",
			strconv.FormatFloat(dr.Distance, 'f', 2, 64),
			"m",
		})
	}
	return rows
}

func curveRows(r bleve.Results) [][]string {
	rows := make([][]string, len(r.Curve))
	for i, p := range r.Curve {
		rows[i] = []string{strconv.FormatFloat(p.Distance, 'f', 2, 64), strconv.FormatFloat(p.Overpressure, 'f', 2, 64)}
	}
	return rows
}
