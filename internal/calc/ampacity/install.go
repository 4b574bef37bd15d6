package ampacity

import "fmt"

// Installation is a closed set of burial variants. The solver type-switches
// on the concrete type to decide which resistance components participate.
type Installation interface {
	installKind() string
}

type DirectBuried struct {
	DepthM          float64 `json:"depth_m"`   // to cable centre
	SpacingM        float64 `json:"spacing_m"` // axial phase spacing, 0 for a single cable
	SoilResistivity float64 `json:"soil_resistivity"`
	AmbientTempC    float64 `json:"ambient_temp_c"`
}

type Conduit struct {
	DepthM          float64 `json:"depth_m"` // to conduit centre
	SpacingM        float64 `json:"spacing_m"`
	SoilResistivity float64 `json:"soil_resistivity"`
	AmbientTempC    float64 `json:"ambient_temp_c"`
	ConduitIDMM     float64 `json:"conduit_id_mm"`
	ConduitODMM     float64 `json:"conduit_od_mm"`
	ConduitMaterial string  `json:"conduit_material"` // pvc | fiberglass | steel
	NumConduits     int     `json:"num_conduits"`
}

// GridPos addresses a duct in the bank, row 0 at the top.
type GridPos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type DuctBank struct {
	DepthToTopM         float64   `json:"depth_to_top_m"`
	SoilResistivity     float64   `json:"soil_resistivity"`
	ConcreteResistivity float64   `json:"concrete_resistivity"`
	AmbientTempC        float64   `json:"ambient_temp_c"`
	BankWidthM          float64   `json:"bank_width_m"`
	BankHeightM         float64   `json:"bank_height_m"`
	Rows                int       `json:"rows"`
	Cols                int       `json:"cols"`
	DuctIDMM            float64   `json:"duct_id_mm"`
	DuctODMM            float64   `json:"duct_od_mm"`
	DuctMaterial        string    `json:"duct_material"`
	SpacingHM           float64   `json:"spacing_h_m"`
	SpacingVM           float64   `json:"spacing_v_m"`
	Occupied            []GridPos `json:"occupied"`
	Target              GridPos   `json:"target"`
}

func (DirectBuried) installKind() string { return "direct_buried" }
func (Conduit) installKind() string      { return "conduit" }
func (DuctBank) installKind() string     { return "duct_bank" }

// InstallationSpec is the wire form of the sum type: a tag plus exactly one
// populated variant.
type InstallationSpec struct {
	Type         string        `json:"type"` // direct_buried | conduit | duct_bank
	DirectBuried *DirectBuried `json:"direct_buried,omitempty"`
	Conduit      *Conduit      `json:"conduit,omitempty"`
	DuctBank     *DuctBank     `json:"duct_bank,omitempty"`
}

func (s InstallationSpec) Installation() (Installation, error) {
	switch s.Type {
	case "direct_buried":
		if s.DirectBuried == nil {
			return nil, fmt.Errorf("%w: missing direct_buried block", ErrInvalidGeometry)
		}
		return *s.DirectBuried, nil
	case "conduit":
		if s.Conduit == nil {
			return nil, fmt.Errorf("%w: missing conduit block", ErrInvalidGeometry)
		}
		return *s.Conduit, nil
	case "duct_bank":
		if s.DuctBank == nil {
			return nil, fmt.Errorf("%w: missing duct_bank block", ErrInvalidGeometry)
		}
		return *s.DuctBank, nil
	default:
		return nil, fmt.Errorf("%w: installation type %q", ErrInvalidMaterial, s.Type)
	}
}

func (d DirectBuried) validate(cable Cable) error {
	if d.DepthM <= 0 {
		return fmt.Errorf("%w: burial depth must be positive", ErrInvalidGeometry)
	}
	if d.SpacingM < 0 {
		return fmt.Errorf("%w: negative spacing", ErrInvalidGeometry)
	}
	if d.SoilResistivity <= 0 {
		return fmt.Errorf("%w: soil resistivity must be positive", ErrInvalidGeometry)
	}
	if 2*d.DepthM*1000 <= cable.OverallDiameterMM() {
		return fmt.Errorf("%w: cable not fully buried at depth %.3g m", ErrInvalidGeometry, d.DepthM)
	}
	return nil
}

func (c Conduit) validate(cable Cable) error {
	if c.DepthM <= 0 {
		return fmt.Errorf("%w: burial depth must be positive", ErrInvalidGeometry)
	}
	if c.SpacingM < 0 {
		return fmt.Errorf("%w: negative spacing", ErrInvalidGeometry)
	}
	if c.SoilResistivity <= 0 {
		return fmt.Errorf("%w: soil resistivity must be positive", ErrInvalidGeometry)
	}
	if _, ok := conduitThermalResistivity[c.ConduitMaterial]; !ok {
		return fmt.Errorf("%w: conduit material %q", ErrInvalidMaterial, c.ConduitMaterial)
	}
	if c.ConduitIDMM <= 0 || c.ConduitODMM <= c.ConduitIDMM {
		return fmt.Errorf("%w: conduit OD must exceed ID and both must be positive", ErrInvalidGeometry)
	}
	if c.ConduitIDMM <= cable.OverallDiameterMM() {
		return fmt.Errorf("%w: cable does not fit inside conduit", ErrInvalidGeometry)
	}
	if c.NumConduits < 1 {
		return fmt.Errorf("%w: num_conduits must be at least 1", ErrInvalidGeometry)
	}
	if c.NumConduits > 1 && c.SpacingM <= 0 {
		return fmt.Errorf("%w: spacing required for multiple conduits", ErrInvalidGeometry)
	}
	if 2*c.DepthM*1000 <= c.ConduitODMM {
		return fmt.Errorf("%w: conduit not fully buried", ErrInvalidGeometry)
	}
	return nil
}

func (b DuctBank) validate(cable Cable) error {
	if b.DepthToTopM <= 0 || b.BankWidthM <= 0 || b.BankHeightM <= 0 {
		return fmt.Errorf("%w: bank dimensions must be positive", ErrInvalidGeometry)
	}
	if b.Rows < 1 || b.Cols < 1 {
		return fmt.Errorf("%w: duct grid must have at least one row and column", ErrInvalidGeometry)
	}
	if b.SoilResistivity <= 0 || b.ConcreteResistivity <= 0 {
		return fmt.Errorf("%w: resistivities must be positive", ErrInvalidGeometry)
	}
	if _, ok := conduitThermalResistivity[b.DuctMaterial]; !ok {
		return fmt.Errorf("%w: duct material %q", ErrInvalidMaterial, b.DuctMaterial)
	}
	if b.DuctIDMM <= 0 || b.DuctODMM <= b.DuctIDMM {
		return fmt.Errorf("%w: duct OD must exceed ID and both must be positive", ErrInvalidGeometry)
	}
	if b.DuctIDMM <= cable.OverallDiameterMM() {
		return fmt.Errorf("%w: cable does not fit inside duct", ErrInvalidGeometry)
	}
	if len(b.Occupied) == 0 {
		return fmt.Errorf("%w: no occupied duct positions", ErrInvalidGeometry)
	}
	if b.Rows > 1 && b.SpacingVM <= 0 {
		return fmt.Errorf("%w: vertical spacing required for multiple rows", ErrInvalidGeometry)
	}
	if b.Cols > 1 && b.SpacingHM <= 0 {
		return fmt.Errorf("%w: horizontal spacing required for multiple columns", ErrInvalidGeometry)
	}

	targetFound := false
	seen := make(map[GridPos]bool, len(b.Occupied))
	for _, p := range b.Occupied {
		if p.Row < 0 || p.Row >= b.Rows || p.Col < 0 || p.Col >= b.Cols {
			return fmt.Errorf("%w: occupied position (%d,%d) outside %dx%d grid", ErrInvalidGeometry, p.Row, p.Col, b.Rows, b.Cols)
		}
		if seen[p] {
			return fmt.Errorf("%w: duplicate occupied position (%d,%d)", ErrInvalidGeometry, p.Row, p.Col)
		}
		seen[p] = true
		if p == b.Target {
			targetFound = true
		}
		pt := b.positionOf(p)
		if !b.insideBank(pt) {
			return fmt.Errorf("%w: duct (%d,%d) outside bank bounds", ErrInvalidGeometry, p.Row, p.Col)
		}
	}
	if !targetFound {
		return fmt.Errorf("%w: target position (%d,%d) is not occupied", ErrInvalidGeometry, b.Target.Row, b.Target.Col)
	}
	return nil
}

// point is a cable centre in metres, x from the bank axis, y down from the
// ground surface.
type point struct {
	x, y float64
}

// positionOf lays ducts out on a grid centred in the bank rectangle, with
// the bank itself centred at x = 0.
func (b DuctBank) positionOf(p GridPos) point {
	cx := (float64(p.Col) - float64(b.Cols-1)/2) * b.SpacingHM
	cy := b.DepthToTopM + b.BankHeightM/2 + (float64(p.Row)-float64(b.Rows-1)/2)*b.SpacingVM
	return point{x: cx, y: cy}
}

func (b DuctBank) insideBank(pt point) bool {
	r := b.DuctODMM / 2000 // duct radius in metres
	if pt.x-r < -b.BankWidthM/2 || pt.x+r > b.BankWidthM/2 {
		return false
	}
	return pt.y-r >= b.DepthToTopM && pt.y+r <= b.DepthToTopM+b.BankHeightM
}
