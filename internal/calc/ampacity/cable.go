package ampacity

import "fmt"

// Conductor describes the current-carrying core. Ks/Kp/Ycs/Ycp are pointers
// so that an explicit user value always wins over table defaults.
type Conductor struct {
	Material        string   `json:"material"`  // copper | aluminum
	CrossSectionMM2 float64  `json:"cross_section_mm2"`
	DiameterMM      float64  `json:"diameter_mm"`
	Stranding       string   `json:"stranding"` // solid | stranded_round | stranded_compact | segmental
	R20OhmPerM      float64  `json:"r20_ohm_per_m,omitempty"`
	Ks              *float64 `json:"ks,omitempty"`
	Kp              *float64 `json:"kp,omitempty"`
	YcsOverride     *float64 `json:"ycs_override,omitempty"`
	YcpOverride     *float64 `json:"ycp_override,omitempty"`
}

type Insulation struct {
	Material           string   `json:"material"` // xlpe | epr | paper_oil
	ThicknessMM        float64  `json:"thickness_mm"`
	ConductorScreenMM  float64  `json:"conductor_screen_mm,omitempty"`
	InsulationScreenMM float64  `json:"insulation_screen_mm,omitempty"`
	TanDelta           *float64 `json:"tan_delta,omitempty"`
	Permittivity       *float64 `json:"permittivity,omitempty"`
	ThermalResistivity *float64 `json:"thermal_resistivity,omitempty"`
}

type Shield struct {
	Material       string  `json:"material"` // copper | aluminum | lead
	Type           string  `json:"type"`     // tape | wire | corrugated | extruded
	ThicknessMM    float64 `json:"thickness_mm"`
	MeanDiameterMM float64 `json:"mean_diameter_mm"`
	R20OhmPerM     float64 `json:"r20_ohm_per_m,omitempty"`
	Bonding        string  `json:"bonding"` // single_point | both_ends | cross_bonded
}

type Jacket struct {
	Material           string   `json:"material"` // pvc | pe | hdpe
	ThicknessMM        float64  `json:"thickness_mm"`
	ThermalResistivity *float64 `json:"thermal_resistivity,omitempty"`
}

type Cable struct {
	Conductor  Conductor  `json:"conductor"`
	Insulation Insulation `json:"insulation"`
	Shield     *Shield    `json:"shield,omitempty"`
	Jacket     Jacket     `json:"jacket"`
}

// DiameterOverInsulationMM includes the semi-conducting screens when given.
func (c Cable) DiameterOverInsulationMM() float64 {
	t1 := c.Insulation.ConductorScreenMM + c.Insulation.ThicknessMM + c.Insulation.InsulationScreenMM
	return c.Conductor.DiameterMM + 2*t1
}

func (c Cable) DiameterOverShieldMM() float64 {
	d := c.DiameterOverInsulationMM()
	if c.Shield != nil {
		d += 2 * c.Shield.ThicknessMM
	}
	return d
}

func (c Cable) OverallDiameterMM() float64 {
	return c.DiameterOverShieldMM() + 2*c.Jacket.ThicknessMM
}

func (c Cable) validate() error {
	cond := c.Conductor
	if _, ok := conductorResistivity[cond.Material]; !ok {
		return fmt.Errorf("%w: conductor material %q", ErrInvalidMaterial, cond.Material)
	}
	if _, ok := skinEffectConstant[cond.Stranding]; !ok {
		return fmt.Errorf("%w: stranding %q", ErrInvalidMaterial, cond.Stranding)
	}
	if cond.CrossSectionMM2 <= 0 || cond.DiameterMM <= 0 {
		return fmt.Errorf("%w: conductor cross-section and diameter must be positive", ErrInvalidGeometry)
	}
	if cond.R20OhmPerM < 0 {
		return fmt.Errorf("%w: negative R20", ErrInvalidGeometry)
	}

	ins := c.Insulation
	if _, ok := insulationTable[ins.Material]; !ok {
		return fmt.Errorf("%w: insulation material %q", ErrInvalidMaterial, ins.Material)
	}
	if ins.ThicknessMM <= 0 {
		return fmt.Errorf("%w: insulation thickness must be positive", ErrInvalidGeometry)
	}
	if ins.ConductorScreenMM < 0 || ins.InsulationScreenMM < 0 {
		return fmt.Errorf("%w: negative screen thickness", ErrInvalidGeometry)
	}

	if s := c.Shield; s != nil {
		if _, ok := shieldResistivity[s.Material]; !ok {
			return fmt.Errorf("%w: shield material %q", ErrInvalidMaterial, s.Material)
		}
		switch s.Type {
		case ShieldTape, ShieldWire, ShieldCorrugated, ShieldExtruded:
		default:
			return fmt.Errorf("%w: shield type %q", ErrInvalidMaterial, s.Type)
		}
		switch s.Bonding {
		case BondingSinglePoint, BondingBothEnds, BondingCrossBonded:
		default:
			return fmt.Errorf("%w: shield bonding %q", ErrInvalidMaterial, s.Bonding)
		}
		if s.ThicknessMM <= 0 {
			return fmt.Errorf("%w: shield thickness must be positive", ErrInvalidGeometry)
		}
		if s.MeanDiameterMM <= c.DiameterOverInsulationMM() {
			return fmt.Errorf("%w: shield mean diameter must exceed diameter over insulation", ErrInvalidGeometry)
		}
	}

	if _, ok := jacketThermalResistivity[c.Jacket.Material]; !ok {
		return fmt.Errorf("%w: jacket material %q", ErrInvalidMaterial, c.Jacket.Material)
	}
	if c.Jacket.ThicknessMM <= 0 {
		return fmt.Errorf("%w: jacket thickness must be positive", ErrInvalidGeometry)
	}
	return nil
}
