package sizing

import (
	"fmt"
	"math"

	ampacity "github.com/chedy028/amapcity/internal/calc/ampacity"
)

type Input struct {
	Scenario       ampacity.Input `json:"scenario"` // conductor size/diameter are filled per candidate
	TargetCurrentA float64        `json:"target_current_a"`
}

type Result struct {
	SizeMM2   float64 `json:"size_mm2"`
	SizeKcmil float64 `json:"size_kcmil"`
	AmpacityA float64 `json:"ampacity_a"`
	MarginPct float64 `json:"margin_pct"`
	Meets     bool    `json:"meets"`
	Notes     string  `json:"notes"`
}

const mm2PerKcmil = 0.5067

// Suggest walks the standard size table upward and returns the smallest
// conductor whose solved ampacity covers the target current.
func Suggest(in Input) (Result, error) {
	if in.TargetCurrentA <= 0 {
		return Result{}, fmt.Errorf("invalid target current")
	}
	for _, size := range ampacity.StandardSizesMM2 {
		scenario := withSize(in.Scenario, size)
		res, err := ampacity.Calculate(scenario)
		if err != nil {
			if ampacity.Degraded(err) {
				continue
			}
			return Result{}, err
		}
		if res.AmpacityA >= in.TargetCurrentA {
			margin := (res.AmpacityA - in.TargetCurrentA) / in.TargetCurrentA * 100
			return Result{
				SizeMM2:   size,
				SizeKcmil: math.Round(size / mm2PerKcmil),
				AmpacityA: res.AmpacityA,
				MarginPct: math.Round(margin*10) / 10,
				Meets:     true,
				Notes:     "Smallest standard size meeting the target current.",
			}, nil
		}
	}
	last := ampacity.StandardSizesMM2[len(ampacity.StandardSizesMM2)-1]
	return Result{
		SizeMM2: last,
		Meets:   false,
		Notes:   fmt.Sprintf("No standard size achieves %.0f A.", in.TargetCurrentA),
	}, nil
}

// withSize substitutes a standard conductor into the scenario, defaulting
// the insulation wall for the voltage class when none is given.
func withSize(scenario ampacity.Input, sizeMM2 float64) ampacity.Input {
	scenario.Cable.Conductor.CrossSectionMM2 = sizeMM2
	scenario.Cable.Conductor.DiameterMM = ampacity.ConductorDiameterMM[sizeMM2]
	if scenario.Cable.Insulation.ThicknessMM == 0 {
		scenario.Cable.Insulation.ThicknessMM = ampacity.InsulationThicknessMM(
			scenario.Operating.VoltageV, scenario.Cable.Insulation.Material)
	}
	return scenario
}

type TempCheckInput struct {
	Scenario          ampacity.Input `json:"scenario"`
	OperatingCurrentA float64        `json:"operating_current_a"`
}

type TempCheckResult struct {
	Status             string  `json:"status"` // PASS | FAIL
	RatedAmpacityA     float64 `json:"rated_ampacity_a"`
	UtilizationPct     float64 `json:"utilization_pct"`
	EstimatedTempC     float64 `json:"estimated_temp_c"`
	MaxAllowedTempC    float64 `json:"max_allowed_temp_c"`
	TemperatureMarginC float64 `json:"temperature_margin_c"`
}

// CheckTemperature estimates the conductor temperature at a given load by
// I² scaling of the solved current-dependent rise.
func CheckTemperature(in TempCheckInput) (TempCheckResult, error) {
	if in.OperatingCurrentA <= 0 {
		return TempCheckResult{}, fmt.Errorf("invalid operating current")
	}
	res, err := ampacity.Calculate(in.Scenario)
	if err != nil {
		return TempCheckResult{}, err
	}
	if res.AmpacityA <= 0 {
		return TempCheckResult{}, fmt.Errorf("scenario has no thermal headroom")
	}
	ratio := in.OperatingCurrentA / res.AmpacityA
	rise := res.TemperatureRise.ConductorC*ratio*ratio + res.TemperatureRise.DielectricC
	temp := res.AmbientTempC + rise
	status := "PASS"
	if temp > res.MaxConductorTempC {
		status = "FAIL"
	}
	return TempCheckResult{
		Status:             status,
		RatedAmpacityA:     res.AmpacityA,
		UtilizationPct:     math.Round(ratio*1000) / 10,
		EstimatedTempC:     math.Round(temp*10) / 10,
		MaxAllowedTempC:    res.MaxConductorTempC,
		TemperatureMarginC: math.Round((res.MaxConductorTempC-temp)*10) / 10,
	}, nil
}
