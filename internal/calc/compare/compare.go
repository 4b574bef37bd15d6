package compare

import (
	"fmt"

	ampacity "github.com/chedy028/amapcity/internal/calc/ampacity"
)

type Input struct {
	Scenario ampacity.Input `json:"scenario"`
	SizesMM2 []float64      `json:"sizes_mm2"`
}

type Option struct {
	SizeMM2            float64 `json:"size_mm2"`
	DiameterMM         float64 `json:"diameter_mm"`
	AmpacityA          float64 `json:"ampacity_a"`
	AmpacityCyclicA    float64 `json:"ampacity_cyclic_a"`
	ConductorLossWPerM float64 `json:"conductor_loss_w_per_m"`
	DesignStatus       string  `json:"design_status"`
}

type Result struct {
	Options []Option `json:"options"`
}

// Calculate solves the same installation for each candidate conductor size.
// Only standard sizes are accepted; the diameter comes from the size table.
func Calculate(in Input) (Result, error) {
	if len(in.SizesMM2) == 0 {
		return Result{}, fmt.Errorf("no sizes to compare")
	}
	out := Result{Options: make([]Option, 0, len(in.SizesMM2))}
	for _, size := range in.SizesMM2 {
		diameter, ok := ampacity.ConductorDiameterMM[size]
		if !ok {
			return Result{}, fmt.Errorf("size %g mm2 is not a standard size", size)
		}
		scenario := in.Scenario
		scenario.Cable.Conductor.CrossSectionMM2 = size
		scenario.Cable.Conductor.DiameterMM = diameter
		if scenario.Cable.Insulation.ThicknessMM == 0 {
			scenario.Cable.Insulation.ThicknessMM = ampacity.InsulationThicknessMM(
				scenario.Operating.VoltageV, scenario.Cable.Insulation.Material)
		}
		res, err := ampacity.Calculate(scenario)
		if err != nil && !ampacity.Degraded(err) {
			return Result{}, fmt.Errorf("size %g mm2: %w", size, err)
		}
		out.Options = append(out.Options, Option{
			SizeMM2:            size,
			DiameterMM:         diameter,
			AmpacityA:          res.AmpacityA,
			AmpacityCyclicA:    res.AmpacityCyclicA,
			ConductorLossWPerM: res.Losses.ConductorWPerM,
			DesignStatus:       res.DesignStatus,
		})
	}
	return out, nil
}
