package fluid

import (
	"github.com/slfuchs/4C-sub001/discret"
	"github.com/slfuchs/4C-sub001/geometry"
	"github.com/slfuchs/4C-sub001/shapes"
	"github.com/slfuchs/4C-sub001/stab"
	"github.com/slfuchs/4C-sub001/turbulence"
	"github.com/slfuchs/4C-sub001/utils"
	"gonum.org/v1/gonum/mat"
)

// elementState holds the nodal values of one element, nsd x nen matrices
// for vector fields and nen slices for scalar fields. Optional fields are nil.
type elementState struct {
	nsd, nen       int
	xyze           *mat.Dense
	evelaf, evelnp *mat.Dense
	epre           []float64
	eaccam, ehist  *mat.Dense
	egridv, edisp  *mat.Dense
	efsvel         *mat.Dense
	escaaf, escaam []float64
	escadt         []float64
	ebody          *mat.Dense
	efvel, erey    *mat.Dense
}

func splitVelPres(vals []float64, nsd, nen int) (vel *mat.Dense, pre []float64) {
	vel = mat.NewDense(nsd, nen, nil)
	pre = make([]float64, nen)
	for a := 0; a < nen; a++ {
		for i := 0; i < nsd; i++ {
			vel.Set(i, a, vals[a*(nsd+1)+i])
		}
		pre[a] = vals[a*(nsd+1)+nsd]
	}
	return
}

func extract(dis *discret.Discretization, name string, lm []int, nsd, nen int) (vel *mat.Dense, pre []float64, err error) {
	v, err := dis.GetState(name)
	if err != nil {
		return
	}
	vals, err := discret.ExtractMyValues(v, lm)
	if err != nil {
		return
	}
	vel, pre = splitVelPres(vals, nsd, nen)
	return
}

func extractOptional(dis *discret.Discretization, name string, lm []int, nsd, nen int) (vel *mat.Dense, pre []float64, err error) {
	if !dis.HasState(name) {
		return
	}
	return extract(dis, name, lm, nsd, nen)
}

func extractState(ele *Element, dis *discret.Discretization, lm []int, params *Parameters) (es *elementState, err error) {
	var (
		nsd = ele.Nsd()
		nen = ele.Nen()
		ti  = params.Time
	)
	es = &elementState{nsd: nsd, nen: nen}
	if es.evelnp, es.epre, err = extract(dis, StateVelNP, lm, nsd, nen); err != nil {
		return nil, err
	}
	switch ti.Scheme {
	case GenAlpha:
		if es.evelaf, _, err = extract(dis, StateVelAF, lm, nsd, nen); err != nil {
			return nil, err
		}
		if es.eaccam, _, err = extract(dis, StateAccAM, lm, nsd, nen); err != nil {
			return nil, err
		}
	case OneStepTheta, BDF2:
		es.evelaf = es.evelnp
		if es.ehist, _, err = extract(dis, StateHist, lm, nsd, nen); err != nil {
			return nil, err
		}
	default:
		es.evelaf = es.evelnp
	}
	if _, es.escaaf, err = extractOptional(dis, StateScaAF, lm, nsd, nen); err != nil {
		return nil, err
	}
	if _, es.escaam, err = extractOptional(dis, StateScaAM, lm, nsd, nen); err != nil {
		return nil, err
	}
	if _, es.escadt, err = extractOptional(dis, StateScaDtAM, lm, nsd, nen); err != nil {
		return nil, err
	}
	es.xyze = mat.DenseCopyOf(ele.X)
	if ele.IsALE {
		if es.edisp, _, err = extract(dis, StateDispNP, lm, nsd, nen); err != nil {
			return nil, err
		}
		if es.egridv, _, err = extract(dis, StateGridV, lm, nsd, nen); err != nil {
			return nil, err
		}
		es.xyze.Add(es.xyze, es.edisp)
	}
	if params.Turb.FineScale {
		if es.efsvel, _, err = extract(dis, StateFsVelAF, lm, nsd, nen); err != nil {
			return nil, err
		}
	}
	if params.Turb.Model.Similarity() {
		fvel, ok := dis.GetField(FieldFilteredVel)
		rey, ok2 := dis.GetField(FieldFilteredReyStr)
		if !ok || !ok2 {
			return nil, utils.NewConfigurationError("scale similarity needs the filtered velocity and reynolds stress fields")
		}
		if es.efvel, err = fvel.Extract(ele.NodeIDs); err != nil {
			return nil, err
		}
		if es.erey, err = rey.Extract(ele.NodeIDs); err != nil {
			return nil, err
		}
		if r, _ := es.erey.Dims(); r != nsd*nsd {
			return nil, utils.NewConfigurationError("filtered reynolds stress needs %d components, got %d", nsd*nsd, r)
		}
	}
	if es.ebody, err = discret.BodyForce(es.xyze, ele.Conditions, ti.Time); err != nil {
		return nil, err
	}
	return
}

// pointState is the state interpolated to one integration point
type pointState struct {
	velint, convvel []float64
	vderxy          *mat.Dense // vderxy(i,j) = du_i/dx_j at n+αF
	vdiv, cdiv      float64    // divergence of the velocity and the convective velocity
	presint         float64
	gradp           []float64
	accint, histint []float64
	bodyforce       []float64
	scaaf, scaam    float64
	scadt           float64
	gradsca         []float64
	convOld         []float64 // (c·∇)u
	lapl, graddiv   []float64 // Σ_k d²u_i/dx_k², Σ_j d²u_j/dx_i dx_j
	fsvderxy        *mat.Dense
	fvel            []float64
	fvderxy         *mat.Dense
	reyDiv          []float64
	rate            float64 // rate of strain of the velocity at n+αF
}

func newPointState(nsd int) *pointState {
	return &pointState{
		velint:    make([]float64, nsd),
		convvel:   make([]float64, nsd),
		vderxy:    mat.NewDense(nsd, nsd, nil),
		gradp:     make([]float64, nsd),
		accint:    make([]float64, nsd),
		histint:   make([]float64, nsd),
		bodyforce: make([]float64, nsd),
		gradsca:   make([]float64, nsd),
		convOld:   make([]float64, nsd),
		lapl:      make([]float64, nsd),
		graddiv:   make([]float64, nsd),
		fsvderxy:  mat.NewDense(nsd, nsd, nil),
		fvel:      make([]float64, nsd),
		fvderxy:   mat.NewDense(nsd, nsd, nil),
		reyDiv:    make([]float64, nsd),
	}
}

func interpScalar(funct []float64, v []float64) (s float64) {
	for a, n := range funct {
		s += n * v[a]
	}
	return
}

func gradScalar(derxy *mat.Dense, v []float64, dst []float64) {
	nsd, nen := derxy.Dims()
	for i := 0; i < nsd; i++ {
		var sum float64
		for a := 0; a < nen; a++ {
			sum += derxy.At(i, a) * v[a]
		}
		dst[i] = sum
	}
}

// interpolate evaluates every field at the current point of g
func (ps *pointState) interpolate(g *geometry.Evaluator, es *elementState) {
	var nsd = es.nsd
	g.Interpolate(es.evelaf, ps.velint)
	copy(ps.convvel, ps.velint)
	if es.egridv != nil {
		gv := make([]float64, nsd)
		g.Interpolate(es.egridv, gv)
		for i := range ps.convvel {
			ps.convvel[i] -= gv[i]
		}
	}
	g.Gradient(es.evelaf, ps.vderxy)
	ps.vdiv = 0
	for i := 0; i < nsd; i++ {
		ps.vdiv += ps.vderxy.At(i, i)
	}
	ps.cdiv = ps.vdiv
	if es.egridv != nil {
		var gvderxy mat.Dense
		g.Gradient(es.egridv, &gvderxy)
		for i := 0; i < nsd; i++ {
			ps.cdiv -= gvderxy.At(i, i)
		}
	}
	for i := 0; i < nsd; i++ {
		var sum float64
		for j := 0; j < nsd; j++ {
			sum += ps.convvel[j] * ps.vderxy.At(i, j)
		}
		ps.convOld[i] = sum
	}
	ps.presint = interpScalar(g.Funct, es.epre)
	gradScalar(g.Derxy, es.epre, ps.gradp)
	if es.eaccam != nil {
		g.Interpolate(es.eaccam, ps.accint)
	}
	if es.ehist != nil {
		g.Interpolate(es.ehist, ps.histint)
	}
	g.Interpolate(es.ebody, ps.bodyforce)
	ps.scaaf, ps.scaam, ps.scadt = 0, 0, 0
	for i := range ps.gradsca {
		ps.gradsca[i] = 0
	}
	if es.escaaf != nil {
		ps.scaaf = interpScalar(g.Funct, es.escaaf)
		gradScalar(g.Derxy, es.escaaf, ps.gradsca)
	}
	ps.scaam = ps.scaaf
	if es.escaam != nil {
		ps.scaam = interpScalar(g.Funct, es.escaam)
	}
	if es.escadt != nil {
		ps.scadt = interpScalar(g.Funct, es.escadt)
	}
	for i := 0; i < nsd; i++ {
		ps.lapl[i], ps.graddiv[i] = 0, 0
	}
	if g.HigherOrder {
		for i := 0; i < nsd; i++ {
			for a := 0; a < es.nen; a++ {
				for k := 0; k < nsd; k++ {
					ps.lapl[i] += g.Derxy2.At(k, a) * es.evelaf.At(i, a)
					ps.graddiv[i] += g.Derxy2.At(shapes.Deriv2Index(nsd, i, k), a) * es.evelaf.At(k, a)
				}
			}
		}
	}
	if es.efsvel != nil {
		g.Gradient(es.efsvel, ps.fsvderxy)
	}
	if es.efvel != nil {
		g.Interpolate(es.efvel, ps.fvel)
		g.Gradient(es.efvel, ps.fvderxy)
		for i := 0; i < nsd; i++ {
			var sum float64
			for j := 0; j < nsd; j++ {
				for a := 0; a < es.nen; a++ {
					sum += g.Derxy.At(j, a) * es.erey.At(i*nsd+j, a)
				}
			}
			ps.reyDiv[i] = sum
		}
	}
	ps.rate = stab.RateOfStrain(ps.vderxy)
}

// similarityDivergence is the subgrid stress divergence of the scale
// similarity model at the point
func (ps *pointState) similarityDivergence(form turbulence.SimilarityForm) ([]float64, error) {
	return turbulence.SimilarityDivergence(form, ps.fvel, ps.fvderxy, ps.reyDiv)
}
