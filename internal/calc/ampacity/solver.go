package ampacity

import (
	"fmt"
	"math"
)

// Operating holds the electrical boundary conditions of a solve.
type Operating struct {
	VoltageV          float64 `json:"voltage_v"` // U₀ phase-to-ground
	FrequencyHz       float64 `json:"frequency_hz"`
	MaxConductorTempC float64 `json:"max_conductor_temp_c,omitempty"` // 0 = rated table value
	LoadFactor        float64 `json:"load_factor,omitempty"`          // 0 = 1.0
	TargetCurrentA    float64 `json:"target_current_a,omitempty"`
	MarginPct         float64 `json:"margin_pct,omitempty"`
}

type Input struct {
	Cable        Cable            `json:"cable"`
	Operating    Operating        `json:"operating"`
	Installation InstallationSpec `json:"installation"`
}

type ACResistance struct {
	RdcOhmPerM float64 `json:"rdc_ohm_per_m"`
	RacOhmPerM float64 `json:"rac_ohm_per_m"`
	Ys         float64 `json:"ys"`
	Yp         float64 `json:"yp"`
}

type Losses struct {
	ConductorWPerM  float64 `json:"conductor_w_per_m"`
	DielectricWPerM float64 `json:"dielectric_w_per_m"`
	ShieldWPerM     float64 `json:"shield_w_per_m"`
	TotalWPerM      float64 `json:"total_w_per_m"`
}

type ThermalNetwork struct {
	R1          float64 `json:"r1_insulation"`
	R2          float64 `json:"r2_jacket"`
	R3Gap       float64 `json:"r3_air_gap"`
	R3Wall      float64 `json:"r3_conduit_wall"`
	R3          float64 `json:"r3_conduit"`
	RConcrete   float64 `json:"r_concrete"`
	R4          float64 `json:"r4_earth"`
	RMutual     float64 `json:"r_mutual"`
	R4Effective float64 `json:"r4_effective"`
	Total       float64 `json:"total"`
}

type TemperatureRise struct {
	ConductorC  float64 `json:"conductor_c"`
	DielectricC float64 `json:"dielectric_c"`
	TotalC      float64 `json:"total_c"`
}

// CableAmpacity is one duct-bank cable of the converged coupled solve.
type CableAmpacity struct {
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	XM        float64 `json:"x_m"`
	YM        float64 `json:"y_m"`
	AmpacityA float64 `json:"ampacity_a"`
}

// Result is returned by value and shares no state with the Input.
type Result struct {
	AmpacityA           float64         `json:"ampacity_a"`
	AmpacityCyclicA     float64         `json:"ampacity_cyclic_a"`
	DesignStatus        string          `json:"design_status"` // PASS | FAIL
	MaxConductorTempC   float64         `json:"max_conductor_temp_c"`
	AmbientTempC        float64         `json:"ambient_temp_c"`
	DeltaTAvailableC    float64         `json:"delta_t_available_c"`
	ACResistance        ACResistance    `json:"ac_resistance"`
	Losses              Losses          `json:"losses"`
	Thermal             ThermalNetwork  `json:"thermal_resistance"`
	TemperatureRise     TemperatureRise `json:"temperature_rise"`
	ShieldLossFactor    float64         `json:"shield_loss_factor"`
	MutualHeatingFactor float64         `json:"mutual_heating_factor"`
	Iterations          int             `json:"iterations"`
	Converged           bool            `json:"converged"`
	PerCable            []CableAmpacity `json:"per_cable,omitempty"`
}

const (
	maxCoupledIterations = 20
	coupledTolerance     = 0.01 // max relative current change
)

func (o Operating) validate() error {
	if o.VoltageV <= 0 {
		return fmt.Errorf("%w: voltage must be positive", ErrInvalidOperating)
	}
	if o.FrequencyHz <= 0 {
		return fmt.Errorf("%w: frequency must be positive", ErrInvalidOperating)
	}
	if o.LoadFactor < 0 || o.LoadFactor > 1 {
		return fmt.Errorf("%w: load factor must be in (0, 1]", ErrInvalidOperating)
	}
	return nil
}

// network is the per-cable resistance stack the ampacity equation closes on.
type network struct {
	r1, r2, r3, rconc, r4, rmut float64
}

func (n network) sumR() float64  { return n.r1 + n.r2 + n.r3 + n.rconc + n.r4 + n.rmut }
func (n network) sumRd() float64 { return 0.5*n.r1 + n.r2 + n.r3 + n.rconc + n.r4 + n.rmut }

// solveCurrent inverts ΔT = I²·Rac·(1+λ₁)·ΣR + Wd·ΣR'. A non-positive
// numerator means dielectric losses alone exhaust the budget.
func solveCurrent(deltaT, wd, rac, lambda1 float64, n network) (float64, bool) {
	num := deltaT - wd*n.sumRd()
	if num <= 0 {
		return 0, false
	}
	i := math.Sqrt(num / (rac * (1 + lambda1) * n.sumR()))
	if math.IsNaN(i) || math.IsInf(i, 0) {
		return 0, false
	}
	return i, true
}

// Calculate is the engine entry point: a pure function from a scenario to a
// Result. ErrThermalInfeasible and ErrIterationDivergence are returned with
// a populated degraded Result; every other error aborts with a zero Result.
func Calculate(in Input) (Result, error) {
	if err := in.Cable.validate(); err != nil {
		return Result{}, err
	}
	if err := in.Operating.validate(); err != nil {
		return Result{}, err
	}
	inst, err := in.Installation.Installation()
	if err != nil {
		return Result{}, err
	}

	tmax := in.Operating.MaxConductorTempC
	if tmax == 0 {
		tmax = insulationTable[in.Cable.Insulation.Material].MaxTempC
	}
	lf := in.Operating.LoadFactor
	if lf == 0 {
		lf = 1
	}

	switch v := inst.(type) {
	case DirectBuried:
		return solveDirectBuried(in, v, tmax, lf)
	case Conduit:
		return solveConduit(in, v, tmax, lf)
	case DuctBank:
		return solveDuctBank(in, v, tmax, lf)
	default:
		return Result{}, fmt.Errorf("%w: installation %T", ErrInvalidMaterial, inst)
	}
}

// common evaluates everything the three variants share at the temperature
// boundary condition Tmax.
type solveContext struct {
	ac      acResult
	wd      float64
	lambda1 float64
	r1, r2  float64
	deltaT  float64
	tmax    float64
	tamb    float64
}

func prepare(in Input, ambientC, spacingMM, tmax float64) (solveContext, error) {
	if tmax <= ambientC {
		return solveContext{}, fmt.Errorf("%w: max conductor temperature %.1f°C not above ambient %.1f°C", ErrInvalidOperating, tmax, ambientC)
	}
	ac, err := acResistance(in.Cable.Conductor, tmax, spacingMM, in.Operating.FrequencyHz)
	if err != nil {
		return solveContext{}, err
	}
	wd, err := dielectricLoss(in.Cable, in.Operating.VoltageV, in.Operating.FrequencyHz)
	if err != nil {
		return solveContext{}, err
	}
	lambda1, err := shieldLossFactor(in.Cable.Shield, ac.Rac, spacingMM, in.Operating.FrequencyHz, tmax)
	if err != nil {
		return solveContext{}, err
	}
	return solveContext{
		ac:      ac,
		wd:      wd,
		lambda1: lambda1,
		r1:      insulationResistance(in.Cable),
		r2:      jacketResistance(in.Cable),
		deltaT:  tmax - ambientC,
		tmax:    tmax,
		tamb:    ambientC,
	}, nil
}

func solveDirectBuried(in Input, d DirectBuried, tmax, lf float64) (Result, error) {
	if err := d.validate(in.Cable); err != nil {
		return Result{}, err
	}
	ctx, err := prepare(in, d.AmbientTempC, d.SpacingM*1000, tmax)
	if err != nil {
		return Result{}, err
	}
	r4, err := earthResistance(d.SoilResistivity, d.DepthM, in.Cable.OverallDiameterMM())
	if err != nil {
		return Result{}, err
	}
	// Flat three-phase group: two heated neighbours at ±s, same depth.
	var rmut float64
	if d.SpacingM > 0 {
		pts := []point{
			{x: 0, y: d.DepthM},
			{x: -d.SpacingM, y: d.DepthM},
			{x: d.SpacingM, y: d.DepthM},
		}
		rmut, err = mutualResistance(0, pts, nil, d.SoilResistivity)
		if err != nil {
			return Result{}, err
		}
	}
	n := network{r1: ctx.r1, r2: ctx.r2, r4: r4, rmut: rmut}
	return finish(in, ctx, n, network{}, lf, 1, true, nil)
}

func solveConduit(in Input, c Conduit, tmax, lf float64) (Result, error) {
	if err := c.validate(in.Cable); err != nil {
		return Result{}, err
	}
	ctx, err := prepare(in, c.AmbientTempC, c.SpacingM*1000, tmax)
	if err != nil {
		return Result{}, err
	}
	thetaM := (ctx.tmax + ctx.tamb) / 2
	gap := conduitGapResistance(in.Cable.OverallDiameterMM(), thetaM)
	wall := conduitWallResistance(c.ConduitIDMM, c.ConduitODMM, c.ConduitMaterial)
	r4, err := earthResistance(c.SoilResistivity, c.DepthM, c.ConduitODMM)
	if err != nil {
		return Result{}, err
	}
	// Flat row of conduits, worst case at the centre.
	var rmut float64
	if c.NumConduits > 1 {
		pts := make([]point, c.NumConduits)
		for i := range pts {
			pts[i] = point{x: float64(i) * c.SpacingM, y: c.DepthM}
		}
		target := (c.NumConduits - 1) / 2
		rmut, err = mutualResistance(target, pts, nil, c.SoilResistivity)
		if err != nil {
			return Result{}, err
		}
	}
	n := network{r1: ctx.r1, r2: ctx.r2, r3: gap + wall, r4: r4, rmut: rmut}
	aux := network{r3: gap} // carries the gap/wall split for reporting
	return finish(in, ctx, n, aux, lf, 1, true, nil)
}

func solveDuctBank(in Input, b DuctBank, tmax, lf float64) (Result, error) {
	if err := b.validate(in.Cable); err != nil {
		return Result{}, err
	}
	ctx, err := prepare(in, b.AmbientTempC, b.SpacingHM*1000, tmax)
	if err != nil {
		return Result{}, err
	}
	thetaM := (ctx.tmax + ctx.tamb) / 2
	gap := conduitGapResistance(in.Cable.OverallDiameterMM(), thetaM)
	wall := conduitWallResistance(b.DuctIDMM, b.DuctODMM, b.DuctMaterial)
	r3 := gap + wall

	// Per-cable fixed components; rows sit at different depths.
	count := len(b.Occupied)
	pts := make([]point, count)
	nets := make([]network, count)
	targetIdx := -1
	for i, p := range b.Occupied {
		pt := b.positionOf(p)
		pts[i] = pt
		r4, err := earthResistance(b.SoilResistivity, pt.y, b.DuctODMM)
		if err != nil {
			return Result{}, err
		}
		rconc, err := concreteResistance(b, pt)
		if err != nil {
			return Result{}, err
		}
		nets[i] = network{r1: ctx.r1, r2: ctx.r2, r3: r3, rconc: rconc, r4: r4}
		if p == b.Target {
			targetIdx = i
		}
	}

	// Current-weighted coupling: solve all cables, re-weight neighbour
	// contributions by relative heat output, repeat until currents settle.
	weights := make([]float64, count)
	for i := range weights {
		weights[i] = 1
	}
	currents := make([]float64, count)
	prev := make([]float64, count)
	converged := false
	iterations := 0
	infeasible := false

	for iter := 0; iter < maxCoupledIterations; iter++ {
		iterations = iter + 1
		for i := range nets {
			rmut, err := mutualResistance(i, pts, weights, b.SoilResistivity)
			if err != nil {
				return Result{}, err
			}
			nets[i].rmut = rmut
			cur, ok := solveCurrent(ctx.deltaT, ctx.wd, ctx.ac.Rac, ctx.lambda1, nets[i])
			currents[i] = cur
			if !ok {
				infeasible = true
			}
		}
		if infeasible {
			break
		}
		if iter > 0 {
			maxChange := 0.0
			for i := range currents {
				change := math.Abs(currents[i]-prev[i]) / prev[i]
				if change > maxChange {
					maxChange = change
				}
			}
			if maxChange < coupledTolerance {
				converged = true
				break
			}
		}
		copy(prev, currents)

		var totalQ float64
		for i := range currents {
			totalQ += currents[i]*currents[i]*ctx.ac.Rac*(1+ctx.lambda1) + ctx.wd
		}
		meanQ := totalQ / float64(count)
		for i := range weights {
			weights[i] = (currents[i]*currents[i]*ctx.ac.Rac*(1+ctx.lambda1) + ctx.wd) / meanQ
		}
	}
	perCable := make([]CableAmpacity, count)
	for i, p := range b.Occupied {
		perCable[i] = CableAmpacity{
			Row: p.Row, Col: p.Col,
			XM: pts[i].x, YM: pts[i].y,
			AmpacityA: round1(currents[i]),
		}
	}

	aux := network{r3: gap}
	res, err := finish(in, ctx, nets[targetIdx], aux, lf, iterations, converged, perCable)
	if err != nil {
		return res, err
	}
	if !converged {
		res.DesignStatus = statusFail
		return res, fmt.Errorf("%w: %d cables after %d iterations", ErrIterationDivergence, count, iterations)
	}
	return res, nil
}

const (
	statusPass = "PASS"
	statusFail = "FAIL"
)

// finish closes the ampacity equation on the target network and assembles
// the Result. Infeasible budgets produce a degraded FAIL result with I = 0.
func finish(in Input, ctx solveContext, n network, aux network, lf float64, iterations int, converged bool, perCable []CableAmpacity) (Result, error) {
	current, feasible := solveCurrent(ctx.deltaT, ctx.wd, ctx.ac.Rac, ctx.lambda1, n)

	wc := current * current * ctx.ac.Rac
	ws := ctx.lambda1 * wc
	riseCond := current * current * ctx.ac.Rac * (1 + ctx.lambda1) * n.sumR()
	riseDiel := ctx.wd * n.sumRd()

	mutualFactor := 1.0
	if n.r4 > 0 {
		mutualFactor = (n.r4 + n.rmut) / n.r4
	}

	res := Result{
		AmpacityA:         round1(current),
		AmpacityCyclicA:   round1(current / math.Sqrt(lf)),
		MaxConductorTempC: ctx.tmax,
		AmbientTempC:      ctx.tamb,
		DeltaTAvailableC:  ctx.deltaT,
		ACResistance: ACResistance{
			RdcOhmPerM: ctx.ac.Rdc,
			RacOhmPerM: ctx.ac.Rac,
			Ys:         ctx.ac.Ys,
			Yp:         ctx.ac.Yp,
		},
		Losses: Losses{
			ConductorWPerM:  wc,
			DielectricWPerM: ctx.wd,
			ShieldWPerM:     ws,
			TotalWPerM:      wc + ctx.wd + ws,
		},
		Thermal: ThermalNetwork{
			R1:          n.r1,
			R2:          n.r2,
			R3Gap:       aux.r3,
			R3Wall:      n.r3 - aux.r3,
			R3:          n.r3,
			RConcrete:   n.rconc,
			R4:          n.r4,
			RMutual:     n.rmut,
			R4Effective: n.r4 + n.rmut,
			Total:       n.sumR(),
		},
		TemperatureRise: TemperatureRise{
			ConductorC:  riseCond,
			DielectricC: riseDiel,
			TotalC:      riseCond + riseDiel,
		},
		ShieldLossFactor:    ctx.lambda1,
		MutualHeatingFactor: mutualFactor,
		Iterations:          iterations,
		Converged:           converged,
		PerCable:            perCable,
	}

	if !feasible {
		res.DesignStatus = statusFail
		res.AmpacityA = 0
		res.AmpacityCyclicA = 0
		res.Losses.ConductorWPerM = 0
		res.Losses.ShieldWPerM = 0
		res.Losses.TotalWPerM = ctx.wd
		res.TemperatureRise.ConductorC = 0
		res.TemperatureRise.TotalC = riseDiel
		return res, fmt.Errorf("%w: dielectric losses %.2f W/m exceed the thermal budget", ErrThermalInfeasible, ctx.wd)
	}

	if target := in.Operating.TargetCurrentA; target > 0 {
		need := target * (1 + in.Operating.MarginPct/100)
		if current >= need {
			res.DesignStatus = statusPass
		} else {
			res.DesignStatus = statusFail
		}
	} else if current > 0 && ctx.deltaT > 0 {
		res.DesignStatus = statusPass
	} else {
		res.DesignStatus = statusFail
	}
	return res, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
