package ampacity

// Embedded material and standards data. All tables are read-only after
// initialization; values follow IEC 60287-1-1/2-1 and IEC-228.

const (
	epsilon0 = 8.854e-12 // F/m

	// Conductor resistivities at 20°C, ohm·m
	resistivityCopper   = 1.7241e-8
	resistivityAluminum = 2.8264e-8
	resistivityLead     = 21.4e-8

	// Temperature coefficients at 20°C, per °C
	alphaCopper   = 0.00393
	alphaAluminum = 0.00403
	alphaLead     = 0.00400
)

// Conductor materials
const (
	MaterialCopper   = "copper"
	MaterialAluminum = "aluminum"
	MaterialLead     = "lead" // shields only
)

// Stranding constructions
const (
	StrandingSolid     = "solid"
	StrandingRound     = "stranded_round"
	StrandingCompact   = "stranded_compact"
	StrandingSegmental = "segmental"
)

// Insulation materials
const (
	InsulationXLPE     = "xlpe"
	InsulationEPR      = "epr"
	InsulationPaperOil = "paper_oil"
)

// Jacket materials
const (
	JacketPVC  = "pvc"
	JacketPE   = "pe"
	JacketHDPE = "hdpe"
)

// Shield constructions
const (
	ShieldTape       = "tape"
	ShieldWire       = "wire"
	ShieldCorrugated = "corrugated"
	ShieldExtruded   = "extruded"
)

// Shield bonding schemes
const (
	BondingSinglePoint = "single_point"
	BondingBothEnds    = "both_ends"
	BondingCrossBonded = "cross_bonded"
)

// Conduit materials
const (
	ConduitPVC        = "pvc"
	ConduitFiberglass = "fiberglass"
	ConduitSteel      = "steel"
)

type insulationProps struct {
	TanDelta           float64
	Permittivity       float64
	ThermalResistivity float64 // K·m/W
	MaxTempC           float64 // rated steady-state conductor temperature
}

var insulationTable = map[string]insulationProps{
	InsulationXLPE:     {TanDelta: 0.004, Permittivity: 2.5, ThermalResistivity: 3.5, MaxTempC: 90},
	InsulationEPR:      {TanDelta: 0.020, Permittivity: 3.0, ThermalResistivity: 3.5, MaxTempC: 90},
	InsulationPaperOil: {TanDelta: 0.0035, Permittivity: 3.5, ThermalResistivity: 6.0, MaxTempC: 85},
}

var jacketThermalResistivity = map[string]float64{
	JacketPVC:  5.0,
	JacketPE:   3.5,
	JacketHDPE: 3.5,
}

// Steel is effectively transparent thermally; 1.0 keeps the wall term
// conservative instead of dividing by zero wall resistance elsewhere.
var conduitThermalResistivity = map[string]float64{
	ConduitPVC:        6.0,
	ConduitFiberglass: 4.0,
	ConduitSteel:      1.0,
}

var conductorResistivity = map[string]float64{
	MaterialCopper:   resistivityCopper,
	MaterialAluminum: resistivityAluminum,
}

var temperatureCoefficient = map[string]float64{
	MaterialCopper:   alphaCopper,
	MaterialAluminum: alphaAluminum,
}

var shieldResistivity = map[string]float64{
	MaterialCopper:   resistivityCopper,
	MaterialAluminum: resistivityAluminum,
	MaterialLead:     resistivityLead,
}

var shieldTempCoefficient = map[string]float64{
	MaterialCopper:   alphaCopper,
	MaterialAluminum: alphaAluminum,
	MaterialLead:     alphaLead,
}

// IEC 60287-1-1 Table 2 defaults, overridable per call.
var skinEffectConstant = map[string]float64{
	StrandingSolid:     1.0,
	StrandingRound:     1.0,
	StrandingCompact:   0.8,
	StrandingSegmental: 0.435,
}

var proximityEffectConstant = map[string]float64{
	StrandingSolid:     1.0,
	StrandingRound:     0.8,
	StrandingCompact:   0.8,
	StrandingSegmental: 0.37,
}

// CIGRE empirical skin-effect factors for large Milliken conductors.
// The IEC series is invalid for segmental conductors ≥ 800 mm²; these
// anchors are interpolated linearly and clamped at the endpoints.
var cigreAreas = []float64{800, 1000, 1200, 1400, 1600, 1800, 2000, 2500, 3000}

var cigreYcs50 = []float64{0.015, 0.019, 0.023, 0.027, 0.031, 0.035, 0.039, 0.048, 0.057}

var cigreYcs60 = []float64{0.018, 0.023, 0.028, 0.032, 0.037, 0.042, 0.047, 0.058, 0.069}

const cigreAreaThreshold = 800.0 // mm²

// Standard conductor sizes and nominal diameters for sizing tools.
var StandardSizesMM2 = []float64{
	25, 35, 50, 70, 95, 120, 150, 185, 240, 300,
	400, 500, 630, 800, 1000, 1200, 1400, 1600, 2000,
}

var ConductorDiameterMM = map[float64]float64{
	25: 5.64, 35: 6.68, 50: 7.98, 70: 9.44, 95: 11.0,
	120: 12.4, 150: 13.8, 185: 15.3, 240: 17.5, 300: 19.5,
	400: 22.6, 500: 25.2, 630: 28.3, 800: 31.9, 1000: 35.7,
	1200: 39.1, 1400: 42.2, 1600: 45.1, 2000: 50.5,
}

// InsulationThicknessMM returns a typical wall thickness for the voltage
// class when the caller does not supply one.
func InsulationThicknessMM(voltageV float64, material string) float64 {
	kv := voltageV / 1000
	xlpe := material == InsulationXLPE
	switch {
	case kv <= 15:
		if xlpe {
			return 4.5
		}
		return 5.5
	case kv <= 25:
		if xlpe {
			return 5.5
		}
		return 6.5
	case kv <= 35:
		if xlpe {
			return 8.0
		}
		return 9.0
	case kv <= 69:
		if xlpe {
			return 12.0
		}
		return 14.0
	case kv <= 115:
		if xlpe {
			return 16.0
		}
		return 18.0
	case kv <= 138:
		if xlpe {
			return 18.0
		}
		return 20.0
	default:
		if xlpe {
			return 24.0
		}
		return 26.0
	}
}
