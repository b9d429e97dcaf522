package api

import "github.com/Agrid-Dev/thermoprops/internal/bleve"

// BleveRequestV1 is the body of POST /bleve.
type BleveRequestV1 struct {
	Volume         float64   `json:"volume"`         // m³
	LiquidFraction float64   `json:"liquidFraction"` // 0-1
	PressureRel    float64   `json:"pressureRel"`    // bar
	Asb            float64   `json:"asb"`
	Thresholds     []float64 `json:"thresholds"` // mbar
}

func (r BleveRequestV1) Inputs() bleve.Inputs {
	return bleve.Inputs{
		Volume:         r.Volume,
		LiquidFraction: r.LiquidFraction,
		PressureRel:    r.PressureRel,
		Asb:            r.Asb,
		Thresholds:     r.Thresholds,
	}
}

// StepV1.Value is a number, or a string for preformatted quantities.
type StepV1 struct {
	Description string `json:"description"`
	Value       any    `json:"value"`
	Unit        string `json:"unit"`
}

type DistanceV1 struct {
	Threshold float64 `json:"threshold"` // mbar
	Distance  float64 `json:"distance"`  // m
}

type CurvePointV1 struct {
	Distance     float64 `json:"distance"`
	Overpressure float64 `json:"overpressure"`
}

type BleveResultsV1 struct {
	AvailableEnergy   float64        `json:"availableEnergy"` // J
	EffectiveEnergy   float64        `json:"effectiveEnergy"` // J
	DistanceResults   []DistanceV1   `json:"distanceResults"`
	CalculationSteps  []StepV1       `json:"calculationSteps"`
	OverpressureCurve []CurvePointV1 `json:"overpressureCurve"`
}

func FromBleveResults(r bleve.Results) BleveResultsV1 {
	out := BleveResultsV1{
		AvailableEnergy:   r.AvailableEnergy,
		EffectiveEnergy:   r.EffectiveEnergy,
		DistanceResults:   make([]DistanceV1, len(r.Distances)),
		CalculationSteps:  make([]StepV1, len(r.Steps)),
		OverpressureCurve: make([]CurvePointV1, len(r.Curve)),
	}
	for i, d := range r.Distances {
		out.DistanceResults[i] = DistanceV1(d)
	}
	for i, s := range r.Steps {
		var v any = s.Value
		if s.Text != "" {
			v = s.Text
		}
		out.CalculationSteps[i] = StepV1{Description: s.Description, Value: v, Unit: s.Unit}
	}
	for i, p := range r.Curve {
		out.OverpressureCurve[i] = CurvePointV1(p)
	}
	return out
}

// Results converts back to the domain type. Numeric step values decoded
// from JSON arrive as float64; anything else is kept as text.
func (r BleveResultsV1) Results() bleve.Results {
	out := bleve.Results{
		AvailableEnergy: r.AvailableEnergy,
		EffectiveEnergy: r.EffectiveEnergy,
		Distances:       make([]bleve.Distance, len(r.DistanceResults)),
		Steps:           make([]bleve.Step, len(r.CalculationSteps)),
		Curve:           make([]bleve.CurvePoint, len(r.OverpressureCurve)),
	}
	for i, d := range r.DistanceResults {
		out.Distances[i] = bleve.Distance(d)
	}
	for i, s := range r.CalculationSteps {
		st := bleve.Step{Description: s.Description, Unit: s.Unit}
		switch v := s.Value.(type) {
		case float64:
			st.Value = v
		case string:
			st.Text = v
		}
		out.Steps[i] = st
	}
	for i, p := range r.OverpressureCurve {
		out.Curve[i] = bleve.CurvePoint(p)
	}
	return out
}
