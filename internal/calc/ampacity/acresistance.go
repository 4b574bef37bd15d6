package ampacity

import (
	"fmt"
	"math"
)

// acResult carries the resistance chain evaluated at one temperature.
type acResult struct {
	Rdc float64 // ohm/m at the given temperature
	Ys  float64
	Yp  float64
	Rac float64 // ohm/m
}

// dcResistance returns R'dc at tempC. When no manufacturer R20 is given it
// is derived from the material resistivity and cross-section.
func dcResistance(c Conductor, tempC float64) (float64, error) {
	r20 := c.R20OhmPerM
	if r20 == 0 {
		rho, ok := conductorResistivity[c.Material]
		if !ok {
			return 0, fmt.Errorf("%w: conductor material %q", ErrInvalidMaterial, c.Material)
		}
		r20 = rho / (c.CrossSectionMM2 * 1e-6)
	}
	alpha := temperatureCoefficient[c.Material]
	return r20 * (1 + alpha*(tempC-20)), nil
}

// skinFactor is the IEC 60287-1-1 ys function of the skin-effect argument xs.
// The quadratic branch's linear term multiplies xs, not xs².
func skinFactor(xs float64) float64 {
	switch {
	case xs <= 2.8:
		x4 := xs * xs * xs * xs
		return x4 / (192 + 0.8*x4)
	case xs <= 3.8:
		return -0.136 - 0.0177*xs + 0.0563*xs*xs
	default:
		return 0.354*xs - 0.733
	}
}

// cigreYcs interpolates the empirical Milliken table. Only 50 and 60 Hz are
// tabulated; anything else is an operating error when the fallback engages.
func cigreYcs(areaMM2, freqHz float64) (float64, error) {
	var col []float64
	switch freqHz {
	case 50:
		col = cigreYcs50
	case 60:
		col = cigreYcs60
	default:
		return 0, fmt.Errorf("%w: frequency %g Hz has no tabulated Milliken skin factor", ErrInvalidOperating, freqHz)
	}
	if areaMM2 <= cigreAreas[0] {
		return col[0], nil
	}
	last := len(cigreAreas) - 1
	if areaMM2 >= cigreAreas[last] {
		return col[last], nil
	}
	for i := 1; i <= last; i++ {
		if areaMM2 <= cigreAreas[i] {
			t := (areaMM2 - cigreAreas[i-1]) / (cigreAreas[i] - cigreAreas[i-1])
			return col[i-1] + t*(col[i]-col[i-1]), nil
		}
	}
	return col[last], nil
}

// skinEffect resolves ys. Precedence: direct Ycs override, then the IEC
// formula with a user-supplied ks, then (for large Milliken conductors with
// no ks given) the CIGRE table, then the IEC formula with the table default.
func skinEffect(c Conductor, rdc, freqHz float64) (float64, error) {
	if c.YcsOverride != nil {
		return *c.YcsOverride, nil
	}
	if c.Ks == nil && c.Stranding == StrandingSegmental && c.CrossSectionMM2 >= cigreAreaThreshold {
		return cigreYcs(c.CrossSectionMM2, freqHz)
	}
	ks := skinEffectConstant[c.Stranding]
	if c.Ks != nil {
		ks = *c.Ks
	}
	xs2 := (8 * math.Pi * freqHz / rdc) * 1e-7 * ks
	ys := skinFactor(math.Sqrt(xs2))
	if ys < 0 {
		ys = 0
	}
	return ys, nil
}

// proximityEffect resolves yp for a trefoil/equal-spacing group. Zero spacing
// means an isolated cable with no proximity term.
func proximityEffect(c Conductor, rdc, spacingMM, freqHz float64) float64 {
	if c.YcpOverride != nil {
		return *c.YcpOverride
	}
	if spacingMM <= 0 {
		return 0
	}
	kp := proximityEffectConstant[c.Stranding]
	if c.Kp != nil {
		kp = *c.Kp
	}
	xp2 := (8 * math.Pi * freqHz / rdc) * 1e-7 * kp
	f := skinFactor(math.Sqrt(xp2))
	if f < 0 {
		f = 0
	}
	ratio2 := (c.DiameterMM / spacingMM) * (c.DiameterMM / spacingMM)
	yp := f * ratio2 * (0.312*ratio2 + 1.18/(f+0.27))
	if yp < 0 {
		yp = 0
	}
	return yp
}

// acResistance evaluates Rac = Rdc·(1 + ys + yp) at tempC.
func acResistance(c Conductor, tempC, spacingMM, freqHz float64) (acResult, error) {
	rdc, err := dcResistance(c, tempC)
	if err != nil {
		return acResult{}, err
	}
	ys, err := skinEffect(c, rdc, freqHz)
	if err != nil {
		return acResult{}, err
	}
	yp := proximityEffect(c, rdc, spacingMM, freqHz)
	return acResult{
		Rdc: rdc,
		Ys:  ys,
		Yp:  yp,
		Rac: rdc * (1 + ys + yp),
	}, nil
}
