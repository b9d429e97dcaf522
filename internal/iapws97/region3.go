package iapws97

import (
	"errors"
	"fmt"
	"math"
)

// Region 3: near-critical fluid, Helmholtz free energy f(rho,T).
const region3N1 = 0.10658070028513e1

var region3 = []struct {
	i, j int
	n    float64
}{
	{0, 0, -0.15732845290239e2},
	{0, 1, 0.20944396974307e2},
	{0, 2, -0.76867707878716e1},
	{0, 7, 0.26185947787954e1},
	{0, 10, -0.28080781148620e1},
	{0, 12, 0.12053369696517e1},
	{0, 23, -0.84566812812502e-2},
	{1, 2, -0.12654315477714e1},
	{1, 6, -0.11524407806681e1},
	{1, 15, 0.88521043984318},
	{1, 17, -0.64207765181607},
	{2, 0, 0.38493460186671},
	{2, 2, -0.85214708824206},
	{2, 6, 0.48972281541877e1},
	{2, 7, -0.30502617256965e1},
	{2, 22, 0.39420536879154e-1},
	{2, 26, 0.12558408424308},
	{3, 0, -0.27999329698710},
	{3, 2, 0.13899799569460e1},
	{3, 4, -0.20189915023570e1},
	{3, 16, -0.82147637173963e-2},
	{3, 26, -0.47596035734923},
	{4, 0, 0.43984074473500e-1},
	{4, 2, -0.44476435428739},
	{4, 4, 0.90572070719733},
	{4, 26, 0.70522450087967},
	{5, 1, 0.10770512626332},
	{5, 3, -0.32913623258954},
	{5, 26, -0.50871062041158},
	{6, 0, -0.22175400873096e-1},
	{6, 2, 0.94260751665092e-1},
	{6, 26, 0.16436278447961},
	{7, 2, -0.13503372241348e-1},
	{8, 26, -0.14834345352472e-1},
	{9, 2, 0.57922953628084e-3},
	{9, 26, 0.32308904703711e-2},
	{10, 0, 0.80964802996215e-4},
	{10, 1, -0.16557679795037e-3},
	{11, 26, -0.44923899061815e-4},
}

type helmholtz struct {
	phi, phiDelta, phiDeltaDelta, phiTau float64
}

func region3Helmholtz(delta, tau float64) helmholtz {
	h := helmholtz{
		phi:           region3N1 * math.Log(delta),
		phiDelta:      region3N1 / delta,
		phiDeltaDelta: -region3N1 / (delta * delta),
	}
	for _, c := range region3 {
		di := math.Pow(delta, float64(c.i))
		tj := math.Pow(tau, float64(c.j))
		h.phi += c.n * di * tj
		if c.i != 0 {
			h.phiDelta += c.n * float64(c.i) * math.Pow(delta, float64(c.i-1)) * tj
		}
		if c.i > 1 {
			h.phiDeltaDelta += c.n * float64(c.i*(c.i-1)) * math.Pow(delta, float64(c.i-2)) * tj
		}
		if c.j != 0 {
			h.phiTau += c.n * di * float64(c.j) * math.Pow(tau, float64(c.j-1))
		}
	}
	return h
}

// Region3 evaluates the near-critical equation at rho (kg/m³) and t (K).
func Region3(rho, t float64) State {
	delta := rho / CriticalDensity
	tau := CriticalTemperature / t
	f := region3Helmholtz(delta, tau)

	rt := R * t
	return State{
		Region:      3,
		Temperature: t,
		Pressure:    rho * rt * delta * f.phiDelta / 1000,
		Volume:      1 / rho,
		Enthalpy:    rt * (tau*f.phiTau + delta*f.phiDelta),
		Entropy:     R * (tau*f.phiTau - f.phi),
		Energy:      rt * tau * f.phiTau,
	}
}

// region3Pressure returns p (MPa) and dp/drho at rho and t.
func region3Pressure(rho, t float64) (float64, float64) {
	delta := rho / CriticalDensity
	f := region3Helmholtz(delta, CriticalTemperature/t)
	rt := R * t
	p := rho * rt * delta * f.phiDelta / 1000
	dp := rt * (2*delta*f.phiDelta + delta*delta*f.phiDeltaDelta) / 1000
	return p, dp
}

// ErrNoConvergence is returned when no density on the requested side of the
// critical point reproduces the saturation pressure.
var ErrNoConvergence = errors.New("iapws97: region 3 saturated density did not converge")

// Relative bound on |p3(rho, t) - p| for an accepted saturated density.
const region3PressureTolerance = 1e-6

// region3SaturatedDensity solves p3(rho, t) = p on one side of the critical
// density, starting from the auxiliary saturation-density correlation.
// Newton iteration is tried first, then bisection around the starting
// estimate. The estimate itself is only accepted within the pressure
// tolerance, which happens a few µK below the critical temperature.
func region3SaturatedDensity(p, t float64, liquid bool) (float64, error) {
	if CriticalTemperature-t < 1e-6 {
		return CriticalDensity, nil
	}
	guess := auxiliaryVaporDensity(t)
	if liquid {
		guess = auxiliaryLiquidDensity(t)
	}

	rho, ok := region3Newton(p, t, guess, liquid)
	if !ok {
		rho, ok = region3Bisect(p, t, guess, liquid)
	}
	if !ok {
		rho = guess
	}

	if p3, _ := region3Pressure(rho, t); !(math.Abs(p3-p) <= region3PressureTolerance*p) {
		return 0, fmt.Errorf("%w: p=%g MPa t=%g K liquid=%t", ErrNoConvergence, p, t, liquid)
	}
	return rho, nil
}

func region3Newton(p, t, rho float64, liquid bool) (float64, bool) {
	for range 100 {
		p3, dp := region3Pressure(rho, t)
		if dp <= 0 || math.IsNaN(dp) {
			return rho, false
		}
		next := rho - (p3-p)/dp
		if liquid && next <= CriticalDensity || !liquid && next >= CriticalDensity || next <= 0 {
			return rho, false
		}
		if math.Abs(next-rho) <= 1e-11*rho {
			return next, true
		}
		rho = next
	}
	// Close to the critical point the last step stays above 1e-11 while the
	// pressure residual is already at rounding level; the caller checks it.
	return rho, true
}

// region3Bisect looks for a sign change of p3 - p within 2 % of guess,
// clamped to the requested side of the critical density.
func region3Bisect(p, t, guess float64, liquid bool) (float64, bool) {
	lo, hi := 0.98*guess, 1.02*guess
	if liquid {
		lo = math.Max(lo, CriticalDensity*(1+1e-9))
	} else {
		hi = math.Min(hi, CriticalDensity*(1-1e-9))
	}
	if lo >= hi {
		return 0, false
	}

	flo, _ := region3Pressure(lo, t)
	flo -= p
	fhi, _ := region3Pressure(hi, t)
	fhi -= p
	if flo*fhi > 0 || math.IsNaN(flo*fhi) {
		return 0, false
	}

	for range 200 {
		mid := (lo + hi) / 2
		fm, _ := region3Pressure(mid, t)
		fm -= p
		if (fm < 0) == (flo < 0) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
		if hi-lo <= 1e-12*mid {
			break
		}
	}
	return (lo + hi) / 2, true
}

// Auxiliary equations for the saturated densities (IAPWS SR1-86(1992)).
func auxiliaryLiquidDensity(t float64) float64 {
	theta := 1 - t/CriticalTemperature
	c := math.Cbrt(theta)
	r := 1 +
		1.99274064*c +
		1.09965342*c*c -
		0.510839303*math.Pow(theta, 5.0/3) -
		1.75493479*math.Pow(theta, 16.0/3) -
		45.5170352*math.Pow(theta, 43.0/3) -
		6.74694450e5*math.Pow(theta, 110.0/3)
	return CriticalDensity * r
}

func auxiliaryVaporDensity(t float64) float64 {
	theta := 1 - t/CriticalTemperature
	ln := -2.03150240*math.Pow(theta, 2.0/6) -
		2.68302940*math.Pow(theta, 4.0/6) -
		5.38626492*math.Pow(theta, 8.0/6) -
		17.2991605*math.Pow(theta, 18.0/6) -
		44.7586581*math.Pow(theta, 37.0/6) -
		63.9201063*math.Pow(theta, 71.0/6)
	return CriticalDensity * math.Exp(ln)
}
