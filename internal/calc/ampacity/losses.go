package ampacity

import (
	"fmt"
	"math"
)

// capacitancePerM returns C = 2πε₀εᵣ / ln(Di/dc) in F/m.
func capacitancePerM(cable Cable) (float64, error) {
	dc := cable.Conductor.DiameterMM
	di := cable.DiameterOverInsulationMM()
	if di <= dc {
		return 0, fmt.Errorf("%w: diameter over insulation must exceed conductor diameter", ErrInvalidGeometry)
	}
	props := insulationTable[cable.Insulation.Material]
	er := props.Permittivity
	if cable.Insulation.Permittivity != nil {
		er = *cable.Insulation.Permittivity
	}
	return 2 * math.Pi * epsilon0 * er / math.Log(di/dc), nil
}

// dielectricLoss returns Wd = ω·C·U₀²·tanδ in W/m. U₀ is phase-to-ground
// volts; the loss is independent of load current.
func dielectricLoss(cable Cable, voltageV, freqHz float64) (float64, error) {
	c, err := capacitancePerM(cable)
	if err != nil {
		return 0, err
	}
	props := insulationTable[cable.Insulation.Material]
	tand := props.TanDelta
	if cable.Insulation.TanDelta != nil {
		tand = *cable.Insulation.TanDelta
	}
	return 2 * math.Pi * freqHz * c * voltageV * voltageV * tand, nil
}

// shieldResistance returns Rs in ohm/m at tempC. Without a manufacturer
// value the thin annular section π·ds·ts approximates the metal area.
func shieldResistance(s Shield, tempC float64) (float64, error) {
	r20 := s.R20OhmPerM
	if r20 == 0 {
		rho, ok := shieldResistivity[s.Material]
		if !ok {
			return 0, fmt.Errorf("%w: shield material %q", ErrInvalidMaterial, s.Material)
		}
		area := math.Pi * (s.MeanDiameterMM * 1e-3) * (s.ThicknessMM * 1e-3)
		if area <= 0 {
			return 0, fmt.Errorf("%w: shield has no metal area", ErrInvalidGeometry)
		}
		r20 = rho / area
	}
	return r20 * (1 + shieldTempCoefficient[s.Material]*(tempC-20)), nil
}

// eddyLossFactor is the thin-sheath approximation for λ₁″.
func eddyLossFactor(s Shield, spacingMM float64) float64 {
	ds := s.MeanDiameterMM
	if spacingMM <= 0 {
		spacingMM = 2 * ds
	}
	tr := s.ThicknessMM / ds
	dr := ds / spacingMM
	return 0.01 * tr * tr * dr * dr
}

// shieldLossFactor resolves λ₁ for the bonding scheme. Circulating currents
// flow only with both-ends bonding; ideal cross bonding cancels them.
func shieldLossFactor(s *Shield, rac, spacingMM, freqHz, tempC float64) (float64, error) {
	if s == nil {
		return 0, nil
	}
	eddy := eddyLossFactor(*s, spacingMM)
	switch s.Bonding {
	case BondingSinglePoint, BondingCrossBonded:
		return eddy, nil
	case BondingBothEnds:
	default:
		return 0, fmt.Errorf("%w: shield bonding %q", ErrInvalidMaterial, s.Bonding)
	}

	rs, err := shieldResistance(*s, tempC)
	if err != nil {
		return 0, err
	}
	ds := s.MeanDiameterMM
	sp := spacingMM
	if sp <= 0 {
		sp = 2 * ds
	}
	// Xs = 2πf · 2·10⁻⁷ · ln(2s/ds), ohm/m
	xs := 2 * math.Pi * freqHz * 2e-7 * math.Log(2*sp/ds)
	if xs <= 0 {
		return eddy, nil
	}
	ratio := rs / xs
	circulating := (rs / rac) / (1 + ratio*ratio)
	return circulating + eddy, nil
}
