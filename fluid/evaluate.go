package fluid

import (
	"fmt"

	"github.com/slfuchs/4C-sub001/discret"
	"github.com/slfuchs/4C-sub001/geometry"
	"github.com/slfuchs/4C-sub001/material"
	"github.com/slfuchs/4C-sub001/quadrature"
	"github.com/slfuchs/4C-sub001/shapes"
	"github.com/slfuchs/4C-sub001/stab"
	"github.com/slfuchs/4C-sub001/turbulence"
	"github.com/slfuchs/4C-sub001/utils"
	"gonum.org/v1/gonum/mat"
)

// coefficients are the material and stabilization values used at one
// integration point
type coefficients struct {
	mat      material.Params
	tau      stab.Tau
	sgvisc   float64
	fssgvisc float64
}

// evaluator carries one element evaluation. The finite difference checker
// reuses it with frozen coefficients and a private subscale buffer.
type evaluator struct {
	ele      *Element
	params   *Parameters
	material material.Material
	es       *elementState
	shape    shapes.Evaluator
	rule     quadrature.Rule
	nsd, nen int
	ndof     int

	subscales      *SubscaleBuffer
	frozen         []coefficients // used instead of evaluating when set
	recorded       []coefficients
	skipStatistics bool
	withMesh       bool

	// element center
	vol       float64
	wallCoord float64
	center    coefficients
}

// Evaluate computes the tangent K = ∂R/∂U and the force F = -R of one element
// at the current state of dis, and for ALE elements with MeshLinearization
// the mesh block ∂R/∂d. Time dependent subscales of the element are
// written back into ele.Subscales.
func Evaluate(ele *Element, dis *discret.Discretization, lm []int, params Parameters, mat material.Material) (out *ElementOutputs, err error) {
	var ev *evaluator
	if ev, err = newEvaluator(ele, dis, lm, &params, mat); err != nil {
		return
	}
	ev.subscales = ele.Subscales
	return ev.run()
}

func newEvaluator(ele *Element, dis *discret.Discretization, lm []int, params *Parameters, m material.Material) (ev *evaluator, err error) {
	if err = ele.check(lm); err != nil {
		return
	}
	if m == nil {
		return nil, utils.NewConfigurationError("element %d: no material", ele.ID)
	}
	ti := params.Time
	if err = ti.Validate(); err != nil {
		return
	}
	if ele.IsALE && ti.IsStationary() {
		return nil, utils.NewConfigurationError("element %d: ALE is not available for stationary problems", ele.ID)
	}
	ev = &evaluator{
		ele:      ele,
		params:   params,
		material: m,
		nsd:      ele.Nsd(),
		nen:      ele.Nen(),
		ndof:     ele.NumDof(),
		withMesh: ele.IsALE && params.MeshLinearization,
	}
	if ev.shape, err = ele.shapeEvaluator(); err != nil {
		return nil, err
	}
	if params.QuadPoints > 0 {
		ev.rule, err = quadrature.New(ele.Shape, params.QuadPoints)
	} else {
		ev.rule, err = quadrature.ForShape(ele.Shape)
	}
	if err != nil {
		return nil, err
	}
	if params.Stab.Subscales == TimeDependent {
		if !ti.IsGenAlpha() {
			return nil, utils.NewConfigurationError("time dependent subscales need generalized-alpha, got %s", ti.Scheme)
		}
		if ele.Subscales == nil {
			return nil, utils.NewConfigurationError("element %d: time dependent subscales need a subscale buffer", ele.ID)
		}
		if np := ele.Subscales.NumPoints(); np != ev.rule.NumPoints() {
			return nil, utils.NewConfigurationError("element %d: subscale buffer holds %d points, the rule has %d",
				ele.ID, np, ev.rule.NumPoints())
		}
	}
	if ev.es, err = extractState(ele, dis, lm, params); err != nil {
		return nil, err
	}
	return
}

func (ev *evaluator) run() (out *ElementOutputs, err error) {
	var (
		nsd = ev.nsd
		g   = geometry.New(ev.shape)
		ps  = newPointState(nsd)
		np  = ev.rule.NumPoints()
	)
	out = &ElementOutputs{
		Tangent: mat.NewDense(ev.ndof, ev.ndof, nil),
		Force:   mat.NewVecDense(ev.ndof, nil),
	}
	if ev.withMesh {
		out.Mesh = mat.NewDense(ev.ndof, nsd*ev.nen, nil)
	}
	if err = ev.evalCenter(g, ps); err != nil {
		return nil, err
	}
	ev.recorded = make([]coefficients, np)
	asm := newAssembler(ev, out)
	for q := 0; q < np; q++ {
		if err = g.EvalAt(ev.rule.Points[q], ev.es.xyze, ev.ele.ID); err != nil {
			return nil, err
		}
		ps.interpolate(g, ev.es)
		var c coefficients
		if c, err = ev.pointCoefficients(q, g, ps); err != nil {
			return nil, err
		}
		ev.recorded[q] = c
		if err = asm.point(q, ev.rule.Weights[q], g, ps, &c); err != nil {
			return nil, err
		}
	}
	out.Force.ScaleVec(-1, out.Force)
	return
}

// evalCenter computes the element volume and the center values of the
// material, the subgrid viscosity and the stabilization parameters
func (ev *evaluator) evalCenter(g *geometry.Evaluator, ps *pointState) (err error) {
	var (
		kind   = ev.ele.Shape
		center = make([]float64, ev.nsd)
	)
	if err = g.EvalAt(kind.Centroid(), ev.es.xyze, ev.ele.ID); err != nil {
		return
	}
	ev.vol = kind.RefVolume() * g.Det
	g.Interpolate(ev.es.xyze, center)
	if nd := ev.params.Turb.NormalDir; nd >= 0 && nd < ev.nsd {
		ev.wallCoord = center[nd]
	}
	if ev.frozen != nil {
		return
	}
	ps.interpolate(g, ev.es)
	var closure *turbulence.Closure
	if ev.center, closure, err = ev.evalCoefficients(g, ps); err != nil {
		return
	}
	ev.updateStatistics(closure)
	return
}

func (ev *evaluator) updateStatistics(c *turbulence.Closure) {
	var (
		p  = ev.params
		pl = p.List
	)
	if ev.skipStatistics || !ev.ele.Owned || p.Turb.Model != turbulence.DynamicSmagorinsky {
		return
	}
	if pl == nil || !pl.HasSublist(TurbulenceList) {
		return
	}
	ls := discret.GetOr[*turbulence.LayerStatistics](pl.Sublist(TurbulenceList), LayerStatistics, nil)
	if ls == nil {
		return
	}
	var cs float64
	if c.Delta > 0 {
		cs = ev.ele.CsDeltaSq / (c.Delta * c.Delta)
	}
	ls.Add(ev.wallCoord, cs, ev.ele.CsDeltaSq, ev.center.mat.Visc+ev.center.sgvisc)
}

// pointCoefficients selects the point or center values according to MatGP and TauGP
func (ev *evaluator) pointCoefficients(q int, g *geometry.Evaluator, ps *pointState) (c coefficients, err error) {
	if ev.frozen != nil {
		return ev.frozen[q], nil
	}
	var p = ev.params
	if !p.MatGP && !p.TauGP {
		c = ev.center
		// the fine-scale viscosity always follows the point velocity
		if p.Turb.FineScale {
			c.fssgvisc, err = ev.fineScaleViscosity(ps)
		}
		return
	}
	if p.MatGP {
		if c, _, err = ev.evalCoefficients(g, ps); err != nil {
			return
		}
		if !p.TauGP {
			c.tau = ev.center.tau
		}
		return
	}
	// center material, point stabilization parameters
	c = ev.center
	if p.Turb.FineScale {
		if c.fssgvisc, err = ev.fineScaleViscosity(ps); err != nil {
			return
		}
	}
	c.tau, err = ev.tau(g, ps, &c)
	return
}

func (ev *evaluator) materialState(ps *pointState) (s material.State) {
	pl := ev.params.List
	return material.State{
		ScalarAF:     ps.scaaf,
		ScalarAM:     ps.scaam,
		ScalarN:      ps.scaam,
		ShearRate:    ps.rate,
		ThermPressAF: discret.GetOr(pl, ThermPressAF, 0.),
		ThermPressAM: discret.GetOr(pl, ThermPressAM, 0.),
		ThermPressDt: discret.GetOr(pl, ThermPressDt, 0.),
		GenAlpha:     ev.params.Time.IsGenAlpha(),
	}
}

func (ev *evaluator) closure(mp material.Params, ps *pointState) (c *turbulence.Closure) {
	c = &turbulence.Closure{
		Settings:  &ev.params.Turb,
		Nsd:       ev.nsd,
		Vol:       ev.vol,
		Dens:      mp.DensAF,
		Visc:      mp.Visc,
		VelGrad:   ps.vderxy,
		CsDeltaSq: ev.ele.CsDeltaSq,
		WallCoord: ev.wallCoord,
	}
	if ev.es.efsvel != nil {
		c.FsVelGrad = ps.fsvderxy
	}
	return
}

func (ev *evaluator) evalCoefficients(g *geometry.Evaluator, ps *pointState) (c coefficients, cl *turbulence.Closure, err error) {
	if c.mat, err = ev.material.Evaluate(ev.materialState(ps)); err != nil {
		return
	}
	cl = ev.closure(c.mat, ps)
	if err = cl.Compute(); err != nil {
		return
	}
	c.sgvisc, c.fssgvisc = cl.SgVisc, cl.FsSgVisc
	c.tau, err = ev.tau(g, ps, &c)
	return
}

func (ev *evaluator) fineScaleViscosity(ps *pointState) (fs float64, err error) {
	cl := ev.closure(ev.center.mat, ps)
	if err = cl.Compute(); err != nil {
		return
	}
	return cl.FsSgVisc, nil
}

func (ev *evaluator) tau(g *geometry.Evaluator, ps *pointState, c *coefficients) (tau stab.Tau, err error) {
	var (
		p  = ev.params
		ti = p.Time
	)
	if !p.Stab.Active() {
		return
	}
	tau, err = stab.Compute(p.Stab.TauType, stab.Input{
		Vel:        ps.convvel,
		Dens:       c.mat.DensAF,
		Visc:       c.mat.Visc + c.sgvisc,
		ReaCoeff:   c.mat.ReaCoeff,
		Vol:        ev.vol,
		Derxy:      g.Derxy,
		Xji:        g.Xji,
		Mk:         ev.ele.Shape.Mk(),
		Dt:         ti.Dt,
		TimeFac:    ti.TimeFac(),
		Stationary: ti.IsStationary(),
	})
	if err != nil {
		err = fmt.Errorf("element %d: %w", ev.ele.ID, err)
	}
	return
}
