package bleve

import "math"

// TNO multi-energy method, blast strength index 10.
var tnoIndex10 = []struct{ p, c float64 }{
	{50, 0.11},
	{140, 0.05},
	{200, 0.032},
	{300, 0.028},
}

// Coefficient returns the TNO coefficient for an overpressure in mbar.
// Outside the table the nearest end value is used; inside it is
// interpolated linearly in log-log space.
func Coefficient(overpressureMbar float64) float64 {
	first, last := tnoIndex10[0], tnoIndex10[len(tnoIndex10)-1]
	if overpressureMbar <= first.p {
		return first.c
	}
	if overpressureMbar >= last.p {
		return last.c
	}

	for i := 0; i < len(tnoIndex10)-1; i++ {
		lo, hi := tnoIndex10[i], tnoIndex10[i+1]
		if overpressureMbar < lo.p || overpressureMbar > hi.p {
			continue
		}
		switch overpressureMbar {
		case lo.p:
			return lo.c
		case hi.p:
			return hi.c
		}
		f := (math.Log(overpressureMbar) - math.Log(lo.p)) / (math.Log(hi.p) - math.Log(lo.p))
		return math.Exp(math.Log(lo.c) + f*(math.Log(hi.c)-math.Log(lo.c)))
	}
	return last.c
}

// EffectDistance returns the distance (m) at which the blast of energyJ
// decays to overpressureMbar: C·E^(1/3). Non-positive overpressures are
// never reached.
func EffectDistance(overpressureMbar, energyJ float64) float64 {
	if overpressureMbar <= 0 {
		return math.Inf(1)
	}
	return Coefficient(overpressureMbar) * math.Cbrt(energyJ)
}
