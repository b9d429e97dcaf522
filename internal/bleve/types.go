package bleve

// Inputs describes a pressurised vessel holding saturated water.
type Inputs struct {
	Volume         float64   // m³
	LiquidFraction float64   // liquid volume fraction, (0, 1]
	PressureRel    float64   // bar, relative to atmosphere
	Asb            float64   // surface factor
	Thresholds     []float64 // overpressures of interest, mbar
}

// Step is one recorded line of the calculation. Text is set instead of
// Value for preformatted quantities.
type Step struct {
	Description string
	Value       float64
	Text        string
	Unit        string
}

type Distance struct {
	Threshold float64 // mbar
	Distance  float64 // m
}

type CurvePoint struct {
	Distance     float64 // m
	Overpressure float64 // mbar
}

type Results struct {
	AvailableEnergy float64 // J
	EffectiveEnergy float64 // J
	Distances       []Distance
	Steps           []Step
	Curve           []CurvePoint
}
