package sizing

import (
	"testing"

	ampacity "github.com/chedy028/amapcity/internal/calc/ampacity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseScenario() ampacity.Input {
	return ampacity.Input{
		Cable: ampacity.Cable{
			Conductor: ampacity.Conductor{
				Material:  ampacity.MaterialCopper,
				Stranding: ampacity.StrandingCompact,
			},
			Insulation: ampacity.Insulation{Material: ampacity.InsulationXLPE},
			Jacket:     ampacity.Jacket{Material: ampacity.JacketPE, ThicknessMM: 3.0},
		},
		Operating: ampacity.Operating{VoltageV: 15000, FrequencyHz: 60},
		Installation: ampacity.InstallationSpec{
			Type: "direct_buried",
			DirectBuried: &ampacity.DirectBuried{
				DepthM: 1.0, SoilResistivity: 1.0, AmbientTempC: 25,
			},
		},
	}
}

func TestSuggest(t *testing.T) {
	t.Run("smallest size meeting target", func(t *testing.T) {
		res, err := Suggest(Input{Scenario: baseScenario(), TargetCurrentA: 500})
		require.NoError(t, err)
		assert.True(t, res.Meets)
		assert.Equal(t, 120.0, res.SizeMM2)
		assert.InDelta(t, 535.0, res.AmpacityA, 0.5)
		assert.InDelta(t, 7.0, res.MarginPct, 0.2)
	})

	t.Run("no standard size suffices", func(t *testing.T) {
		res, err := Suggest(Input{Scenario: baseScenario(), TargetCurrentA: 3000})
		require.NoError(t, err)
		assert.False(t, res.Meets)
		assert.Equal(t, 2000.0, res.SizeMM2)
	})

	t.Run("invalid target", func(t *testing.T) {
		_, err := Suggest(Input{Scenario: baseScenario(), TargetCurrentA: 0})
		assert.Error(t, err)
	})
}

func TestCheckTemperature(t *testing.T) {
	scenario := baseScenario()
	scenario.Cable.Conductor.CrossSectionMM2 = 240
	scenario.Cable.Conductor.DiameterMM = 17.5
	scenario.Cable.Insulation.ThicknessMM = 8.0

	t.Run("within rating", func(t *testing.T) {
		res, err := CheckTemperature(TempCheckInput{Scenario: scenario, OperatingCurrentA: 500})
		require.NoError(t, err)
		assert.Equal(t, "PASS", res.Status)
		assert.InDelta(t, 768.8, res.RatedAmpacityA, 0.2)
		assert.InDelta(t, 65.0, res.UtilizationPct, 0.2)
		assert.InDelta(t, 52.5, res.EstimatedTempC, 0.2)
	})

	t.Run("overloaded", func(t *testing.T) {
		res, err := CheckTemperature(TempCheckInput{Scenario: scenario, OperatingCurrentA: 900})
		require.NoError(t, err)
		assert.Equal(t, "FAIL", res.Status)
		assert.Greater(t, res.EstimatedTempC, res.MaxAllowedTempC)
	})
}
