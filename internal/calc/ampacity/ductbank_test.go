package ampacity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 230 kV six-way duct bank, target in the bottom-centre duct. Geometry and
// electrical data follow a validated CYMCAP 8.2 comparison study.
func cayugaBank() Input {
	occupied := make([]GridPos, 0, 6)
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			occupied = append(occupied, GridPos{Row: r, Col: c})
		}
	}
	return Input{
		Cable:     hvTestCable(),
		Operating: Operating{VoltageV: 132790, FrequencyHz: 60},
		Installation: InstallationSpec{
			Type: "duct_bank",
			DuctBank: &DuctBank{
				DepthToTopM: 0.89, SoilResistivity: 0.9, ConcreteResistivity: 1.0,
				AmbientTempC: 25, BankWidthM: 1.2, BankHeightM: 0.9,
				Rows: 2, Cols: 3, SpacingHM: 0.305, SpacingVM: 0.305,
				DuctIDMM: 202.7, DuctODMM: 219.1, DuctMaterial: ConduitPVC,
				Occupied: occupied, Target: GridPos{Row: 1, Col: 1},
			},
		},
	}
}

func TestCayugaDuctBank(t *testing.T) {
	res, err := Calculate(cayugaBank())
	require.NoError(t, err)

	assert.InDelta(t, 1518.9, res.AmpacityA, 1.0)
	assert.True(t, res.Converged)
	assert.LessOrEqual(t, res.Iterations, maxCoupledIterations)
	assert.Equal(t, statusPass, res.DesignStatus)

	// the explicit ks override must bypass the Milliken table
	assert.InDelta(t, 0.167189, res.ACResistance.Ys, 1e-4)
	assert.InDelta(t, 1.355786, res.Losses.DielectricWPerM, 1e-3)

	assert.InDelta(t, 0.035322, res.Thermal.RConcrete, 1e-4)
	assert.InDelta(t, 1.506318, res.Thermal.RMutual, 1e-3)
	assert.InDelta(t, 0.473403, res.Thermal.R4, 1e-4)
	assert.InDelta(t, res.Thermal.R4+res.Thermal.RMutual, res.Thermal.R4Effective, 1e-9)

	require.Len(t, res.PerCable, 6)
	byPos := map[GridPos]float64{}
	for _, c := range res.PerCable {
		byPos[GridPos{Row: c.Row, Col: c.Col}] = c.AmpacityA
	}
	// left/right mirror symmetry of the bank
	assert.InDelta(t, byPos[GridPos{0, 0}], byPos[GridPos{0, 2}], 0.2)
	assert.InDelta(t, byPos[GridPos{1, 0}], byPos[GridPos{1, 2}], 0.2)
	// the bottom-centre cable is the hottest (lowest ampacity)
	for pos, amp := range byPos {
		assert.GreaterOrEqual(t, amp, byPos[GridPos{1, 1}], "position %v", pos)
	}
	// upper row runs cooler than lower row
	assert.Greater(t, byPos[GridPos{0, 1}], byPos[GridPos{1, 1}])
}

// 345 kV three-unit study flattened onto a 2x18 grid, 36 cables total.
func homerCityBank() Input {
	occupied := make([]GridPos, 0, 36)
	for r := 0; r < 2; r++ {
		for c := 0; c < 18; c++ {
			occupied = append(occupied, GridPos{Row: r, Col: c})
		}
	}
	return Input{
		Cable: Cable{
			Conductor: Conductor{
				Material: MaterialCopper, CrossSectionMM2: 2529, DiameterMM: 62.99,
				Stranding: StrandingSegmental, Ks: fp(0.62), Kp: fp(0.37),
			},
			Insulation: Insulation{
				Material: InsulationXLPE, ThicknessMM: 30.5,
				ConductorScreenMM: 1.70, InsulationScreenMM: 1.70,
				TanDelta: fp(0.001), Permittivity: fp(2.5),
			},
			Shield: &Shield{
				Material: MaterialCopper, Type: ShieldExtruded, ThicknessMM: 0.127,
				MeanDiameterMM: 131.2, Bonding: BondingSinglePoint,
			},
			Jacket: Jacket{Material: JacketPE, ThicknessMM: 8.79},
		},
		Operating: Operating{VoltageV: 345000 / math.Sqrt(3), FrequencyHz: 60},
		Installation: InstallationSpec{
			Type: "duct_bank",
			DuctBank: &DuctBank{
				DepthToTopM: 1.28, SoilResistivity: 1.3, ConcreteResistivity: 1.0,
				AmbientTempC: 20, BankWidthM: 5.8, BankHeightM: 0.9,
				Rows: 2, Cols: 18, SpacingHM: 0.3048, SpacingVM: 0.3048,
				DuctIDMM: 202.72, DuctODMM: 219.08, DuctMaterial: ConduitPVC,
				Occupied: occupied, Target: GridPos{Row: 1, Col: 10},
			},
		},
	}
}

func TestHomerCityBank(t *testing.T) {
	res, err := Calculate(homerCityBank())
	require.NoError(t, err)

	assert.InDelta(t, 608.9, res.AmpacityA, 1.0)
	assert.True(t, res.Converged)
	// user-supplied ks wins even though the conductor qualifies for the
	// empirical Milliken table
	assert.InDelta(t, 0.411479, res.ACResistance.Ys, 1e-4)
	require.Len(t, res.PerCable, 36)

	// heavy mutual heating in a 36-cable bank
	assert.Greater(t, res.MutualHeatingFactor, 5.0)
}

func TestCoupledSolveIdempotence(t *testing.T) {
	first, err := Calculate(cayugaBank())
	require.NoError(t, err)
	second, err := Calculate(cayugaBank())
	require.NoError(t, err)

	assert.Equal(t, first.AmpacityA, second.AmpacityA)
	for i := range first.PerCable {
		assert.InDelta(t, first.PerCable[i].AmpacityA, second.PerCable[i].AmpacityA,
			coupledTolerance*first.PerCable[i].AmpacityA)
	}
}

func TestSingleDuctBankCable(t *testing.T) {
	in := cayugaBank()
	in.Installation.DuctBank.Occupied = []GridPos{{Row: 0, Col: 1}}
	in.Installation.DuctBank.Target = GridPos{Row: 0, Col: 1}

	res, err := Calculate(in)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Zero(t, res.Thermal.RMutual)
	assert.InDelta(t, 1.0, res.MutualHeatingFactor, 1e-9)

	full, err := Calculate(cayugaBank())
	require.NoError(t, err)
	assert.Greater(t, res.AmpacityA, full.AmpacityA)
}

func TestDuctBankValidation(t *testing.T) {
	t.Run("target not occupied", func(t *testing.T) {
		in := cayugaBank()
		in.Installation.DuctBank.Target = GridPos{Row: 0, Col: 5}
		_, err := Calculate(in)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("occupied outside grid", func(t *testing.T) {
		in := cayugaBank()
		in.Installation.DuctBank.Occupied = append(in.Installation.DuctBank.Occupied, GridPos{Row: 4, Col: 0})
		_, err := Calculate(in)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("ducts overflow the bank", func(t *testing.T) {
		in := cayugaBank()
		in.Installation.DuctBank.BankWidthM = 0.5
		_, err := Calculate(in)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("cable larger than duct", func(t *testing.T) {
		in := cayugaBank()
		in.Installation.DuctBank.DuctIDMM = 100
		in.Installation.DuctBank.DuctODMM = 110
		_, err := Calculate(in)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("unknown duct material", func(t *testing.T) {
		in := cayugaBank()
		in.Installation.DuctBank.DuctMaterial = "clay"
		_, err := Calculate(in)
		assert.ErrorIs(t, err, ErrInvalidMaterial)
	})

	t.Run("duplicate occupied position", func(t *testing.T) {
		in := cayugaBank()
		in.Installation.DuctBank.Occupied = append(in.Installation.DuctBank.Occupied, GridPos{Row: 1, Col: 1})
		_, err := Calculate(in)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})
}

func TestInstallationSpecDispatch(t *testing.T) {
	t.Run("unknown tag", func(t *testing.T) {
		in := directBuried240()
		in.Installation.Type = "overhead"
		_, err := Calculate(in)
		assert.ErrorIs(t, err, ErrInvalidMaterial)
	})

	t.Run("missing variant block", func(t *testing.T) {
		in := directBuried240()
		in.Installation.DirectBuried = nil
		_, err := Calculate(in)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})
}
