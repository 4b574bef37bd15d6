package ampacity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directBuried240() Input {
	return Input{
		Cable: Cable{
			Conductor: Conductor{
				Material: MaterialCopper, CrossSectionMM2: 240, DiameterMM: 17.5,
				Stranding: StrandingCompact,
			},
			Insulation: Insulation{Material: InsulationXLPE, ThicknessMM: 8.0},
			Jacket:     Jacket{Material: JacketPE, ThicknessMM: 3.0},
		},
		Operating: Operating{VoltageV: 15000, FrequencyHz: 60},
		Installation: InstallationSpec{
			Type: "direct_buried",
			DirectBuried: &DirectBuried{
				DepthM: 1.0, SoilResistivity: 1.0, AmbientTempC: 25,
			},
		},
	}
}

func TestDirectBuriedSingleCable(t *testing.T) {
	res, err := Calculate(directBuried240())
	require.NoError(t, err)

	assert.InDelta(t, 768.8, res.AmpacityA, 0.2)
	assert.Equal(t, statusPass, res.DesignStatus)
	assert.Equal(t, 90.0, res.MaxConductorTempC)
	assert.Zero(t, res.Thermal.R3)
	assert.Zero(t, res.Thermal.RConcrete)
	assert.Zero(t, res.Thermal.RMutual)
	assert.Zero(t, res.ACResistance.Yp)

	// the solved current closes the temperature budget
	assert.InDelta(t, res.DeltaTAvailableC, res.TemperatureRise.TotalC, 0.1)
	assert.InDelta(t, res.AmbientTempC+res.TemperatureRise.TotalC, res.MaxConductorTempC, 0.1)
}

func TestAmpacityMonotonicity(t *testing.T) {
	base, err := Calculate(directBuried240())
	require.NoError(t, err)

	t.Run("doubling soil resistivity strictly derates", func(t *testing.T) {
		in := directBuried240()
		in.Installation.DirectBuried.SoilResistivity = 2.0
		res, err := Calculate(in)
		require.NoError(t, err)
		assert.InDelta(t, 604.1, res.AmpacityA, 0.2)
		assert.Less(t, res.AmpacityA, base.AmpacityA)
	})

	t.Run("halving depth uprates", func(t *testing.T) {
		in := directBuried240()
		in.Installation.DirectBuried.DepthM = 0.5
		res, err := Calculate(in)
		require.NoError(t, err)
		assert.InDelta(t, 807.3, res.AmpacityA, 0.2)
		assert.Greater(t, res.AmpacityA, base.AmpacityA)
	})

	t.Run("hotter soil derates", func(t *testing.T) {
		in := directBuried240()
		in.Installation.DirectBuried.AmbientTempC = 35
		res, err := Calculate(in)
		require.NoError(t, err)
		assert.InDelta(t, 707.2, res.AmpacityA, 0.2)
		assert.Less(t, res.AmpacityA, base.AmpacityA)
	})

	t.Run("tighter phase spacing derates", func(t *testing.T) {
		var prev float64
		for i, spacing := range []float64{0.4, 0.2, 0.1} {
			in := directBuried240()
			in.Installation.DirectBuried.SpacingM = spacing
			res, err := Calculate(in)
			require.NoError(t, err)
			if i > 0 {
				assert.Less(t, res.AmpacityA, prev)
			}
			prev = res.AmpacityA
		}
		assert.InDelta(t, 572.0, prev, 0.2)
	})
}

func TestCyclicRating(t *testing.T) {
	in := directBuried240()
	in.Operating.LoadFactor = 0.8
	res, err := Calculate(in)
	require.NoError(t, err)
	assert.InDelta(t, res.AmpacityA/math.Sqrt(0.8), res.AmpacityCyclicA, 0.2)
	assert.Greater(t, res.AmpacityCyclicA, res.AmpacityA)
}

func TestTargetCurrentStatus(t *testing.T) {
	t.Run("met with margin", func(t *testing.T) {
		in := directBuried240()
		in.Operating.TargetCurrentA = 700
		in.Operating.MarginPct = 5
		res, err := Calculate(in)
		require.NoError(t, err)
		assert.Equal(t, statusPass, res.DesignStatus)
	})

	t.Run("missed", func(t *testing.T) {
		in := directBuried240()
		in.Operating.TargetCurrentA = 800
		res, err := Calculate(in)
		require.NoError(t, err)
		assert.Equal(t, statusFail, res.DesignStatus)
	})
}

func TestConduitInstallation(t *testing.T) {
	in := Input{
		Cable: Cable{
			Conductor: Conductor{
				Material: MaterialCopper, CrossSectionMM2: 500, DiameterMM: 25.2,
				Stranding: StrandingCompact,
			},
			Insulation: Insulation{Material: InsulationXLPE, ThicknessMM: 12.0},
			Jacket:     Jacket{Material: JacketPE, ThicknessMM: 3.5},
		},
		Operating: Operating{VoltageV: 20000, FrequencyHz: 60},
		Installation: InstallationSpec{
			Type: "conduit",
			Conduit: &Conduit{
				DepthM: 1.0, SpacingM: 0.3, SoilResistivity: 1.0, AmbientTempC: 25,
				ConduitIDMM: 150, ConduitODMM: 160, ConduitMaterial: ConduitPVC,
				NumConduits: 3,
			},
		},
	}

	res, err := Calculate(in)
	require.NoError(t, err)
	assert.InDelta(t, 888.3, res.AmpacityA, 0.3)
	assert.Greater(t, res.Thermal.R3Gap, 0.0)
	assert.Greater(t, res.Thermal.R3Wall, 0.0)
	assert.InDelta(t, res.Thermal.R3Gap+res.Thermal.R3Wall, res.Thermal.R3, 1e-9)
	assert.Greater(t, res.Thermal.RMutual, 0.0)
	assert.Greater(t, res.MutualHeatingFactor, 1.0)

	t.Run("single conduit carries more", func(t *testing.T) {
		single := in
		c := *in.Installation.Conduit
		c.NumConduits = 1
		c.SpacingM = 0
		single.Installation.Conduit = &c
		res2, err := Calculate(single)
		require.NoError(t, err)
		assert.InDelta(t, 1092.8, res2.AmpacityA, 0.3)
		assert.Greater(t, res2.AmpacityA, res.AmpacityA)
	})
}

func TestDielectricLimitedFailure(t *testing.T) {
	in := Input{
		Cable: Cable{
			Conductor: Conductor{
				Material: MaterialCopper, CrossSectionMM2: 2000, DiameterMM: 50.5,
				Stranding: StrandingSegmental, Ks: fp(0.435), Kp: fp(0.37),
			},
			Insulation: Insulation{Material: InsulationPaperOil, ThicknessMM: 24.0, TanDelta: fp(0.01)},
			Jacket:     Jacket{Material: JacketPE, ThicknessMM: 4.0},
		},
		Operating: Operating{VoltageV: 230000 / math.Sqrt(3), FrequencyHz: 60},
		Installation: InstallationSpec{
			Type: "direct_buried",
			DirectBuried: &DirectBuried{
				DepthM: 0.3, SpacingM: 0.15, SoilResistivity: 3.0, AmbientTempC: 45,
			},
		},
	}

	res, err := Calculate(in)
	require.ErrorIs(t, err, ErrThermalInfeasible)
	assert.True(t, Degraded(err))

	// degraded result still renders
	assert.Zero(t, res.AmpacityA)
	assert.Equal(t, statusFail, res.DesignStatus)
	assert.InDelta(t, 19.374, res.Losses.DielectricWPerM, 0.01)
	assert.Greater(t, res.TemperatureRise.DielectricC, res.DeltaTAvailableC)
	assert.Equal(t, 85.0, res.MaxConductorTempC) // paper-oil rated temperature
}

func TestShieldBondingComparison(t *testing.T) {
	build := func(bonding string) Input {
		return Input{
			Cable: Cable{
				Conductor: Conductor{
					Material: MaterialCopper, CrossSectionMM2: 1000, DiameterMM: 35.7,
					Stranding: StrandingCompact,
				},
				Insulation: Insulation{Material: InsulationXLPE, ThicknessMM: 16.0},
				Shield: &Shield{
					Material: MaterialLead, Type: ShieldTape, ThicknessMM: 0.4,
					MeanDiameterMM: 70, Bonding: bonding,
				},
				Jacket: Jacket{Material: JacketPE, ThicknessMM: 4.0},
			},
			Operating: Operating{VoltageV: 66000, FrequencyHz: 50},
			Installation: InstallationSpec{
				Type: "direct_buried",
				DirectBuried: &DirectBuried{
					DepthM: 1.0, SpacingM: 0.3, SoilResistivity: 1.0, AmbientTempC: 25,
				},
			},
		}
	}

	single, err := Calculate(build(BondingSinglePoint))
	require.NoError(t, err)
	both, err := Calculate(build(BondingBothEnds))
	require.NoError(t, err)
	cross, err := Calculate(build(BondingCrossBonded))
	require.NoError(t, err)

	assert.InDelta(t, 1254.3, single.AmpacityA, 0.3)
	assert.InDelta(t, 1126.2, both.AmpacityA, 0.3)
	assert.InDelta(t, 0.2405, both.ShieldLossFactor, 1e-3)

	// circulating losses only ever add heat
	assert.GreaterOrEqual(t, single.AmpacityA, both.AmpacityA)
	assert.GreaterOrEqual(t, cross.AmpacityA, both.AmpacityA)
	assert.Less(t, (cross.AmpacityA-both.AmpacityA)/cross.AmpacityA, 0.20)
}

func TestOperatingValidation(t *testing.T) {
	t.Run("ambient above max temp", func(t *testing.T) {
		in := directBuried240()
		in.Installation.DirectBuried.AmbientTempC = 95
		_, err := Calculate(in)
		assert.ErrorIs(t, err, ErrInvalidOperating)
	})

	t.Run("load factor above one", func(t *testing.T) {
		in := directBuried240()
		in.Operating.LoadFactor = 1.2
		_, err := Calculate(in)
		assert.ErrorIs(t, err, ErrInvalidOperating)
	})

	t.Run("zero voltage", func(t *testing.T) {
		in := directBuried240()
		in.Operating.VoltageV = 0
		_, err := Calculate(in)
		assert.ErrorIs(t, err, ErrInvalidOperating)
	})
}

func TestResultNeverNaN(t *testing.T) {
	res, err := Calculate(directBuried240())
	require.NoError(t, err)
	for name, v := range map[string]float64{
		"ampacity": res.AmpacityA,
		"cyclic":   res.AmpacityCyclicA,
		"rac":      res.ACResistance.RacOhmPerM,
		"total R":  res.Thermal.Total,
		"rise":     res.TemperatureRise.TotalC,
	} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), name)
	}
}
