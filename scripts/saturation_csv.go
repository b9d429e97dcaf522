package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/Agrid-Dev/thermoprops/internal/saturation"
)

// WriteSaturationTable samples the saturation line between minBar and maxBar
// (absolute) and writes one CSV row per point. Points outside the IAPWS
// range are skipped.
func WriteSaturationTable(filename string, minBar, maxBar float64, points int) error {
	if points < 2 || minBar <= 0 || maxBar <= minBar {
		return fmt.Errorf("invalid range %g..%g bar with %d points", minBar, maxBar, points)
	}
	svc := saturation.NewService(saturation.IAPWS97{})

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"pressure_bar", "temperature_c", "h_l", "h_v", "rho_l", "rho_v", "s_l", "s_v", "u_l", "u_v"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	ctx := context.Background()
	step := (maxBar - minBar) / float64(points-1)
	for i := range points {
		bar := minBar + float64(i)*step
		p, err := svc.Properties(ctx, bar*1e5)
		if err != nil {
			log.Printf("skipping %.3f bar: %v", bar, err)
			continue
		}
		row := []string{
			strconv.FormatFloat(bar, 'f', 3, 64),
			strconv.FormatFloat(p.Temperature-273.15, 'f', 2, 64),
		}
		for _, v := range []float64{p.HLiquid, p.HVapor, p.RhoLiquid, p.RhoVapor, p.SLiquid, p.SVapor, p.ULiquid, p.UVapor} {
			row = append(row, strconv.FormatFloat(v, 'g', 8, 64))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %v", err)
		}
	}
	return writer.Error()
}

func main() {
	out := flag.String("o", "saturation.csv", "output file")
	minBar := flag.Float64("min", 0.1, "lowest pressure, bar(abs)")
	maxBar := flag.Float64("max", 220, "highest pressure, bar(abs)")
	points := flag.Int("n", 200, "number of points")
	flag.Parse()

	if err := WriteSaturationTable(*out, *minBar, *maxBar, *points); err != nil {
		log.Fatal(err)
	}
}
