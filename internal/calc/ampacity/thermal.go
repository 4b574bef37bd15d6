package ampacity

import (
	"fmt"
	"math"
)

// Thermal resistances in K·m/W throughout.

// insulationResistance returns R1 = ρT/2π · ln(1 + 2t1/dc), with t1
// including the semi-conducting screens.
func insulationResistance(cable Cable) float64 {
	rho := insulationTable[cable.Insulation.Material].ThermalResistivity
	if cable.Insulation.ThermalResistivity != nil {
		rho = *cable.Insulation.ThermalResistivity
	}
	t1 := cable.Insulation.ConductorScreenMM + cable.Insulation.ThicknessMM + cable.Insulation.InsulationScreenMM
	return rho / (2 * math.Pi) * math.Log(1+2*t1/cable.Conductor.DiameterMM)
}

// jacketResistance returns R2 = ρT/2π · ln(De/Ds).
func jacketResistance(cable Cable) float64 {
	rho := jacketThermalResistivity[cable.Jacket.Material]
	if cable.Jacket.ThermalResistivity != nil {
		rho = *cable.Jacket.ThermalResistivity
	}
	return rho / (2 * math.Pi) * math.Log(cable.OverallDiameterMM()/cable.DiameterOverShieldMM())
}

// Air-gap constants for cable in duct, IEC 60287-2-1 form
// U / (1 + 0.1·(V + Y·θm)·De) with De the cable outer diameter in mm.
const (
	gapU = 1.87
	gapV = 0.29
	gapY = 0.026
)

// conduitGapResistance models the convective/radiative air space between
// cable surface and duct wall. θm is the mean temperature of the duct
// interior in °C.
func conduitGapResistance(cableODMM, meanTempC float64) float64 {
	return gapU / (1 + 0.1*(gapV+gapY*meanTempC)*cableODMM)
}

// conduitWallResistance returns ρT/2π · ln(OD/ID) for the duct wall.
func conduitWallResistance(idMM, odMM float64, material string) float64 {
	rho := conduitThermalResistivity[material]
	return rho / (2 * math.Pi) * math.Log(odMM/idMM)
}

// earthResistance is the Neher-McGrath external resistance for an isolated
// buried cylinder: ρ/2π · ln(u + √(u²−1)) with u = 2L/De, switching to the
// shallow-burial form ln(4L/De) for u > 10.
func earthResistance(rhoSoil, depthM, odMM float64) (float64, error) {
	de := odMM / 1000
	u := 2 * depthM / de
	if u <= 1 {
		return 0, fmt.Errorf("%w: burial depth %.3g m too small for diameter %.3g mm", ErrInvalidGeometry, depthM, odMM)
	}
	if u > 10 {
		return rhoSoil / (2 * math.Pi) * math.Log(4*depthM/de), nil
	}
	return rhoSoil / (2 * math.Pi) * math.Log(u+math.Sqrt(u*u-1)), nil
}

// imageTerm is the mutual-heating contribution of a heated neighbour k on
// target p: ρ/2π · ln(d'pk/dpk), d' measured to k's mirror image above the
// ground surface.
func imageTerm(p, k point, rhoSoil float64) (float64, error) {
	dx := p.x - k.x
	dy := p.y - k.y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return 0, fmt.Errorf("%w: coincident cable positions", ErrInvalidGeometry)
	}
	dImg := math.Hypot(dx, p.y+k.y)
	return rhoSoil / (2 * math.Pi) * math.Log(dImg/d), nil
}

// mutualResistance sums weighted image terms of every neighbour of target i.
func mutualResistance(i int, pts []point, weights []float64, rhoSoil float64) (float64, error) {
	var sum float64
	for j, k := range pts {
		if j == i {
			continue
		}
		f, err := imageTerm(pts[i], k, rhoSoil)
		if err != nil {
			return 0, err
		}
		w := 1.0
		if weights != nil {
			w = weights[j]
		}
		sum += f * w
	}
	return sum, nil
}

// kennellyFactor is the geometric factor of a duct inside the concrete
// envelope: G = ln( (2dt·2db·2dl·2dr)^¼ / r_duct ), using the four
// perpendicular distances from the duct centre to the bank boundary.
func kennellyFactor(b DuctBank, pt point) (float64, error) {
	dt := pt.y - b.DepthToTopM
	db := b.DepthToTopM + b.BankHeightM - pt.y
	dl := pt.x + b.BankWidthM/2
	dr := b.BankWidthM/2 - pt.x
	r := b.DuctODMM / 2000
	if dt <= 0 || db <= 0 || dl <= 0 || dr <= 0 {
		return 0, fmt.Errorf("%w: duct centre outside concrete envelope", ErrInvalidGeometry)
	}
	mean := math.Pow(2*dt*2*db*2*dl*2*dr, 0.25)
	if mean <= r {
		return 0, fmt.Errorf("%w: duct radius exceeds distance to concrete boundary", ErrInvalidGeometry)
	}
	return math.Log(mean / r), nil
}

// concreteResistance applies the native-soil correction of IEC 60287-2-1:
// (ρ_conc − ρ_soil)·G / 2π, with R4 carried at full ρ_soil on the duct
// surface. Backfill better than native soil gives a negative correction.
func concreteResistance(b DuctBank, pt point) (float64, error) {
	g, err := kennellyFactor(b, pt)
	if err != nil {
		return 0, err
	}
	return (b.ConcreteResistivity - b.SoilResistivity) / (2 * math.Pi) * g, nil
}
