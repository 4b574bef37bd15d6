package batch

import (
	"math"
	"testing"

	ampacity "github.com/chedy028/amapcity/internal/calc/ampacity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func okScenario() ampacity.Input {
	return ampacity.Input{
		Cable: ampacity.Cable{
			Conductor: ampacity.Conductor{
				Material: ampacity.MaterialCopper, CrossSectionMM2: 240, DiameterMM: 17.5,
				Stranding: ampacity.StrandingCompact,
			},
			Insulation: ampacity.Insulation{Material: ampacity.InsulationXLPE, ThicknessMM: 8.0},
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

func infeasibleScenario() ampacity.Input {
	in := okScenario()
	in.Cable.Conductor = ampacity.Conductor{
		Material: ampacity.MaterialCopper, CrossSectionMM2: 2000, DiameterMM: 50.5,
		Stranding: ampacity.StrandingSegmental, Ks: fp(0.435), Kp: fp(0.37),
	}
	in.Cable.Insulation = ampacity.Insulation{
		Material: ampacity.InsulationPaperOil, ThicknessMM: 24.0, TanDelta: fp(0.01),
	}
	in.Cable.Jacket.ThicknessMM = 4.0
	in.Operating.VoltageV = 230000 / math.Sqrt(3)
	in.Installation.DirectBuried = &ampacity.DirectBuried{
		DepthM: 0.3, SpacingM: 0.15, SoilResistivity: 3.0, AmbientTempC: 45,
	}
	return in
}

func TestBatch(t *testing.T) {
	res, err := Calculate(Input{Items: []ampacity.Input{okScenario(), okScenario()}})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Equal(t, res.Results[0].AmpacityA, res.Results[1].AmpacityA)
}

func TestBatchKeepsDegradedResults(t *testing.T) {
	res, err := Calculate(Input{Items: []ampacity.Input{okScenario(), infeasibleScenario()}})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)

	assert.Empty(t, res.Results[0].Error)
	assert.NotEmpty(t, res.Results[1].Error)
	assert.Zero(t, res.Results[1].AmpacityA)
	assert.Equal(t, "FAIL", res.Results[1].DesignStatus)
}

func TestBatchAbortsOnInvalidInput(t *testing.T) {
	bad := okScenario()
	bad.Cable.Conductor.CrossSectionMM2 = -1
	_, err := Calculate(Input{Items: []ampacity.Input{okScenario(), bad}})
	assert.Error(t, err)
}

func TestBatchEmpty(t *testing.T) {
	_, err := Calculate(Input{})
	assert.Error(t, err)
}
