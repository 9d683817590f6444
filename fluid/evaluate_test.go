package fluid

import (
	"errors"
	"io"
	"testing"

	"github.com/slfuchs/4C-sub001/discret"
	"github.com/slfuchs/4C-sub001/geometry"
	"github.com/slfuchs/4C-sub001/material"
	"github.com/slfuchs/4C-sub001/quadrature"
	"github.com/slfuchs/4C-sub001/shapes"
	"github.com/slfuchs/4C-sub001/stab"
	"github.com/slfuchs/4C-sub001/turbulence"
	"github.com/slfuchs/4C-sub001/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const fdTol = 1e-5

func TestTangentMatchesFiniteDifferences(t *testing.T) {
	var (
		newtonian = &material.Newtonian{Viscosity: 0.05, Density: 1.2}
		permeable = &material.Permeable{Viscosity: 0.05, Density: 1.2, Permeability: 0.1}
	)
	configs := []struct {
		name   string
		params Parameters
		mat    material.Material
	}{
		{"stationary galerkin", Parameters{
			Time:   TimeIntegration{Scheme: Stationary},
			Newton: true, MatGP: true, TauGP: true,
		}, newtonian},
		{"gen-alpha all terms", Parameters{
			Time: genAlpha(), Stab: allTerms(),
			Newton: true, Conservative: true, MatGP: true, TauGP: true,
		}, permeable},
	}
	for _, kind := range fluidKinds() {
		for _, cfg := range configs {
			ele, lm := testElement(t, kind, 0.05)
			dis := testStates(ele.NumDof())
			maxRel, err := FDCheck(ele, dis, lm, cfg.params, cfg.mat, 1e-6, io.Discard)
			require.NoError(t, err, "%s %s", kind, cfg.name)
			assert.Lessf(t, maxRel, fdTol, "%s %s", kind, cfg.name)
		}
	}
}

func TestTangentVariants(t *testing.T) {
	var (
		newtonian = &material.Newtonian{Viscosity: 0.05, Density: 1.2}
		usfem     = allTerms()
	)
	usfem.Reactive, usfem.Viscous = ReactiveUSFEM, ViscousUSFEM
	usfem.TauType = stab.Codina
	rhsOnly := allTerms()
	rhsOnly.Viscous, rhsOnly.Cross = ViscousGLSRhs, CrossRhs
	rhsOnly.Reynolds = ReynoldsNone
	rhsOnly.Reactive = ReactiveNone

	cases := []struct {
		name   string
		kind   shapes.ShapeKind
		params Parameters
		mat    material.Material
	}{
		{"one-step-theta usfem", shapes.Hex20, Parameters{
			Time: oneStepTheta(), Stab: usfem, Newton: true, Conservative: true, MatGP: true, TauGP: true,
		}, &material.Permeable{Viscosity: 0.05, Density: 1.2, Permeability: 0.2}},
		{"bdf2 center coefficients", shapes.Quad9, Parameters{
			Time:   TimeIntegration{Scheme: BDF2, Dt: 0.05},
			Stab:   allTerms(),
			Newton: true,
		}, newtonian},
		{"point material center tau", shapes.Tet10, Parameters{
			Time: genAlpha(), Stab: allTerms(), Newton: true, MatGP: true,
		}, &material.CarreauYasuda{Mu0: 0.1, MuInf: 0.01, Lambda: 1, A: 2, N: 0.5, Density: 1}},
		{"smagorinsky", shapes.Hex8, Parameters{
			Time: genAlpha(), Stab: allTerms(), Newton: true, MatGP: true, TauGP: true,
			Turb: turbulence.Settings{Model: turbulence.Smagorinsky, Cs: 0.17, FineScale: true, CsFs: 0.1},
		}, newtonian},
		{"franca madureira valentin", shapes.Wedge6, Parameters{
			Time:   genAlpha(),
			Stab:   StabSwitches{TauType: stab.FrancaMadureiraValentin, PSPG: true, SUPG: true},
			Newton: true, MatGP: true, TauGP: true,
		}, newtonian},
		{"rhs only variants", shapes.Quad8, Parameters{
			Time: genAlpha(), Stab: rhsOnly, Newton: true, MatGP: true, TauGP: true,
		}, newtonian},
	}
	for _, c := range cases {
		ele, lm := testElement(t, c.kind, 0.05)
		dis := testStates(ele.NumDof())
		maxRel, err := FDCheck(ele, dis, lm, c.params, c.mat, 1e-6, io.Discard)
		require.NoError(t, err, c.name)
		if c.name == "rhs only variants" {
			// the viscous and cross-stress terms have no tangent
			assert.Greater(t, maxRel, fdTol, c.name)
			continue
		}
		assert.Less(t, maxRel, fdTol, c.name)
	}
}

func TestLowMachTangent(t *testing.T) {
	suth := &material.Sutherland{RefVisc: 0.02, RefTemp: 300, SuthTemp: 110, GasConst: 287}
	for _, kind := range []shapes.ShapeKind{shapes.Quad9, shapes.Hex8} {
		ele, lm := testElement(t, kind, 0.05)
		dis := testStates(ele.NumDof())
		params := Parameters{
			Time: TimeIntegration{Scheme: BDF2, Dt: 0.05}, Stab: allTerms(),
			Newton: true, MatGP: true, TauGP: true,
			List: discret.NewParameterList("fluid").
				Set(ThermPressAF, 1.e5).Set(ThermPressAM, 1.01e5).Set(ThermPressDt, 50.),
		}
		maxRel, err := FDCheck(ele, dis, lm, params, suth, 1e-6, io.Discard)
		require.NoError(t, err, kind.String())
		assert.Less(t, maxRel, fdTol, kind.String())

		// the continuity row carries the thermodynamic source
		out, err := Evaluate(ele, dis, lm, params, suth)
		require.NoError(t, err)
		assert.NotZero(t, out.Force.AtVec(ele.Nsd()))
	}
}

func TestTimeDependentSubscales(t *testing.T) {
	var (
		kind   = shapes.Hex8
		m      = &material.Newtonian{Viscosity: 0.05, Density: 1.2}
		params = Parameters{Time: genAlpha(), Stab: allTerms(), Newton: true, MatGP: true, TauGP: true}
	)
	params.Stab.Subscales = TimeDependent
	ele, lm := testElement(t, kind, 0.05)
	ele.Subscales = NewSubscaleBuffer(numPoints(t, kind), ele.Nsd())
	for q := range ele.Subscales.Sveln {
		for i := range ele.Subscales.Sveln[q] {
			ele.Subscales.Sveln[q][i] = 0.01 * float64(q-i)
			ele.Subscales.Saccn[q][i] = 0.02 * float64(i+1)
		}
	}
	dis := testStates(ele.NumDof())

	before := ele.Subscales.Clone()
	maxRel, err := FDCheck(ele, dis, lm, params, m, 1e-6, io.Discard)
	require.NoError(t, err)
	assert.Less(t, maxRel, fdTol)
	assert.Equal(t, before, ele.Subscales, "the finite difference check works on a copy")

	_, err = Evaluate(ele, dis, lm, params, m)
	require.NoError(t, err)
	var moved bool
	for q := range ele.Subscales.Svelnp {
		for i := range ele.Subscales.Svelnp[q] {
			moved = moved || ele.Subscales.Svelnp[q][i] != 0
		}
	}
	assert.True(t, moved)

	svelnp := ele.Subscales.Svelnp[0][1]
	sveln := ele.Subscales.Sveln[0][1]
	saccn := ele.Subscales.Saccn[0][1]
	ti := params.Time
	ele.Subscales.TimeUpdate(ti)
	assert.Equal(t, svelnp, ele.Subscales.Sveln[0][1])
	expected := (svelnp-sveln)/(ti.Gamma*ti.Dt) - (1-ti.Gamma)/ti.Gamma*saccn
	assert.InDelta(t, expected, ele.Subscales.Saccn[0][1], 1e-12)
}

func TestStokesSymmetry(t *testing.T) {
	m := &material.Newtonian{Viscosity: 0.3, Density: 1}
	for _, kind := range []shapes.ShapeKind{shapes.Quad4, shapes.Tri6, shapes.Hex8, shapes.Tet10, shapes.Nurbs9} {
		ele, lm := testElement(t, kind, 0.05)
		dis := discret.New()
		dis.SetState(StateVelNP, mat.NewVecDense(ele.NumDof(), nil))
		out, err := Evaluate(ele, dis, lm, Parameters{Time: TimeIntegration{Scheme: Stationary}, Newton: true}, m)
		require.NoError(t, err)
		nsd := ele.Nsd()
		uu := block(out.Tangent, nsd, false, false)
		n, _ := uu.Dims()
		for i := 0; i < n; i++ {
			for j := 0; j < i; j++ {
				assert.InDelta(t, uu.At(i, j), uu.At(j, i), 1e-12, kind.String())
			}
		}
		var eig mat.EigenSym
		sym := mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				sym.SetSym(i, j, 0.5*(uu.At(i, j)+uu.At(j, i)))
			}
		}
		require.True(t, eig.Factorize(sym, false))
		for _, v := range eig.Values(nil) {
			assert.GreaterOrEqual(t, v, -1e-12, kind.String())
		}
		assert.Zero(t, mat.Norm(block(out.Tangent, nsd, true, true), 1), kind.String())

		// continuity stabilization fills the pressure block
		params := Parameters{Time: TimeIntegration{Scheme: Stationary}, Newton: true,
			Stab: StabSwitches{TauType: stab.TaylorHughesZarins, PSPG: true}}
		out, err = Evaluate(ele, dis, lm, params, m)
		require.NoError(t, err)
		assert.NotZero(t, mat.Norm(block(out.Tangent, nsd, true, true), 1), kind.String())
	}
}

func TestIdempotence(t *testing.T) {
	var (
		m      = &material.Newtonian{Viscosity: 0.05, Density: 1.2}
		params = Parameters{Time: genAlpha(), Stab: allTerms(), Newton: true, MatGP: true, TauGP: true}
	)
	ele, lm := testElement(t, shapes.Hex27, 0.05)
	dis := testStates(ele.NumDof())
	first, err := Evaluate(ele, dis, lm, params, m)
	require.NoError(t, err)
	second, err := Evaluate(ele, dis, lm, params, m)
	require.NoError(t, err)
	assert.Equal(t, first.Tangent.RawMatrix().Data, second.Tangent.RawMatrix().Data)
	assert.Equal(t, first.Force.RawVector().Data, second.Force.RawVector().Data)
}

func unitHex(t *testing.T) (ele *Element, lm []int) {
	ele, lm = testElement(t, shapes.Hex8, 0)
	ele.X.Apply(func(i, j int, v float64) float64 { return v + 0.5 }, ele.X)
	return
}

func TestScenarioZeroStateStokes(t *testing.T) {
	var (
		m         = &material.Newtonian{Viscosity: 1e-3, Density: 1}
		ele, lm   = unitHex(t)
		dis       = discret.New()
		nsd, nen  = 3, 8
		stiffness = mat.NewDense(ele.NumDof(), ele.NumDof(), nil)
	)
	dis.SetState(StateVelNP, mat.NewVecDense(ele.NumDof(), nil))
	out, err := Evaluate(ele, dis, lm, Parameters{Time: TimeIntegration{Scheme: Stationary}}, m)
	require.NoError(t, err)
	for _, v := range out.Force.RawVector().Data {
		assert.Zero(t, v)
	}

	// Stokes stiffness built directly from the shape derivatives
	shape, err := shapes.New(shapes.Hex8)
	require.NoError(t, err)
	rule, err := quadrature.ForShape(shapes.Hex8)
	require.NoError(t, err)
	g := geometry.New(shape)
	for q, xi := range rule.Points {
		require.NoError(t, g.EvalAt(xi, ele.X, ele.ID))
		fac := rule.Weights[q] * g.Det
		for a := 0; a < nen; a++ {
			for b := 0; b < nen; b++ {
				var lap float64
				for k := 0; k < nsd; k++ {
					lap += g.Derxy.At(k, a) * g.Derxy.At(k, b)
				}
				for i := 0; i < nsd; i++ {
					for j := 0; j < nsd; j++ {
						v := g.Derxy.At(j, a) * g.Derxy.At(i, b)
						if i == j {
							v += lap
						}
						stiffness.Set(a*4+i, b*4+j, stiffness.At(a*4+i, b*4+j)+fac*m.Viscosity*v)
					}
					stiffness.Set(a*4+i, b*4+3, stiffness.At(a*4+i, b*4+3)-fac*g.Derxy.At(i, a)*g.Funct[b])
					stiffness.Set(b*4+3, a*4+i, stiffness.At(b*4+3, a*4+i)+fac*g.Funct[b]*g.Derxy.At(i, a))
				}
			}
		}
	}
	assert.True(t, mat.EqualApprox(stiffness, out.Tangent, 1e-14))
	assert.InDelta(t, 1e-3*4./9., out.Tangent.At(0, 0), 1e-15)
	assert.InDelta(t, 1./18., out.Tangent.At(0, 3), 1e-15)
	assert.InDelta(t, -1./18., out.Tangent.At(3, 0), 1e-15)
}

func TestScenarioBodyForce(t *testing.T) {
	var (
		m       = &material.Newtonian{Viscosity: 1e-3, Density: 2}
		ele, lm = unitHex(t)
		dis     = discret.New()
	)
	ele.Conditions = []*discret.Condition{{
		Name:  "gravity",
		OnOff: []bool{true, true, true},
		Val:   []float64{0, 0, -9.81},
	}}
	dis.SetState(StateVelNP, mat.NewVecDense(ele.NumDof(), nil))
	out, err := Evaluate(ele, dis, lm, Parameters{Time: TimeIntegration{Scheme: Stationary}}, m)
	require.NoError(t, err)
	w, err := IntegrateShapeFunction(ele, dis, lm)
	require.NoError(t, err)
	for a := 0; a < 8; a++ {
		intN := w.AtVec(a*4 + 3)
		assert.InDelta(t, 0.125, intN, 1e-14)
		assert.InDelta(t, 0, w.AtVec(a*4), 0)
		assert.InDelta(t, 0, out.Force.AtVec(a*4), 1e-15)
		assert.InDelta(t, 0, out.Force.AtVec(a*4+1), 1e-15)
		assert.InDelta(t, 2*-9.81*intN, out.Force.AtVec(a*4+2), 1e-13)
		assert.InDelta(t, 0, out.Force.AtVec(a*4+3), 1e-15)
	}
}

func TestScenarioDegenerateElement(t *testing.T) {
	m := &material.Newtonian{Viscosity: 1e-3, Density: 1}
	for _, kind := range []shapes.ShapeKind{shapes.Tet4, shapes.Hex8} {
		ele, lm := testElement(t, kind, 0)
		if kind == shapes.Tet4 {
			// two coincident nodes
			for i := 0; i < 3; i++ {
				ele.X.Set(i, 1, ele.X.At(i, 0))
			}
		} else {
			// top face collapsed onto the bottom face
			for a := 4; a < 8; a++ {
				for i := 0; i < 3; i++ {
					ele.X.Set(i, a, ele.X.At(i, a-4))
				}
			}
		}
		dis := discret.New()
		dis.SetState(StateVelNP, mat.NewVecDense(ele.NumDof(), nil))
		_, err := Evaluate(ele, dis, lm, Parameters{Time: TimeIntegration{Scheme: Stationary}}, m)
		var gerr *utils.GeometryError
		require.True(t, errors.As(err, &gerr), kind.String())
		assert.Equal(t, ele.ID, gerr.ElementID)
	}
}

func TestMeshLinearization(t *testing.T) {
	var (
		newtonian = &material.Newtonian{Viscosity: 0.05, Density: 1.2}
		suth      = &material.Sutherland{RefVisc: 0.02, RefTemp: 300, SuthTemp: 110, GasConst: 287}
		galerkin  = StabSwitches{}
		subscales = allTerms()
	)
	subscales.Subscales = TimeDependent
	cases := []struct {
		kind shapes.ShapeKind
		time TimeIntegration
		mat  material.Material
		stab StabSwitches
	}{
		{shapes.Quad4, genAlpha(), newtonian, galerkin},
		{shapes.Quad4, genAlpha(), newtonian, allTerms()},
		{shapes.Quad9, oneStepTheta(), suth, allTerms()},
		{shapes.Tri3, genAlpha(), newtonian, allTerms()},
		{shapes.Tri6, genAlpha(), newtonian, allTerms()},
		{shapes.Hex8, genAlpha(), newtonian, allTerms()},
		{shapes.Hex8, genAlpha(), newtonian, subscales},
		{shapes.Tet10, oneStepTheta(), suth, allTerms()},
		{shapes.Wedge6, genAlpha(), newtonian, allTerms()},
	}
	for _, c := range cases {
		ele, lm := testElement(t, c.kind, 0.05)
		ele.IsALE = true
		if c.stab.Subscales == TimeDependent {
			ele.Subscales = NewSubscaleBuffer(numPoints(t, c.kind), ele.Nsd())
			for q := range ele.Subscales.Sveln {
				for i := range ele.Subscales.Sveln[q] {
					ele.Subscales.Sveln[q][i] = 0.01 * float64(q-i)
				}
			}
		}
		dis := testStates(ele.NumDof())
		params := Parameters{
			Time: c.time, Stab: c.stab, Newton: true, Conservative: true, MatGP: true, TauGP: true, MeshLinearization: true,
			List: discret.NewParameterList("fluid").
				Set(ThermPressAF, 1.e5).Set(ThermPressAM, 1.e5).Set(ThermPressDt, 0.),
		}
		maxRel, err := FDCheckMesh(ele, dis, lm, params, c.mat, 1e-6, io.Discard)
		require.NoError(t, err, c.kind.String())
		assert.Less(t, maxRel, fdTol, "%s %+v", c.kind, c.stab)

		out, err := Evaluate(ele, dis, lm, params, c.mat)
		require.NoError(t, err)
		r, cols := out.Mesh.Dims()
		assert.Equal(t, ele.NumDof(), r)
		assert.Equal(t, ele.Nsd()*ele.Nen(), cols)
	}

	// the plane strategy agrees with the general identity
	ele, _ := testElement(t, shapes.Quad8, 0.05)
	shape, err := shapes.New(shapes.Quad8)
	require.NoError(t, err)
	g := geometry.New(shape)
	require.NoError(t, g.EvalAt([]float64{0.3, -0.4}, ele.X, ele.ID))
	dd := mat.NewDense(2, 8, nil)
	for c := 0; c < 8; c++ {
		for k := 0; k < 2; k++ {
			ddet := planeMesh{}.sensitivity(g, k, c, dd)
			assert.InDelta(t, g.Det*g.Derxy.At(k, c), ddet, 1e-12)
			for i := 0; i < 2; i++ {
				for a := 0; a < 8; a++ {
					assert.InDelta(t, -g.Derxy.At(k, a)*g.Derxy.At(i, c), dd.At(i, a), 1e-10)
				}
			}
		}
	}
}

func TestSecondDerivativeSensitivity(t *testing.T) {
	const h = 1e-6
	for _, kind := range []shapes.ShapeKind{shapes.Quad9, shapes.Hex8, shapes.Tet10} {
		var (
			ele, _ = testElement(t, kind, 0.08)
			nsd    = kind.Dim()
			nen    = kind.NumNodes()
			nd2    = shapes.NumDeriv2(nsd)
			xi     = kind.Centroid()
			dd2    = mat.NewDense(nd2, nen, nil)
		)
		xi[0] += 0.05
		shape, err := shapes.New(kind)
		require.NoError(t, err)
		g := geometry.New(shape)
		require.NoError(t, g.EvalAt(xi, ele.X, ele.ID))
		eval := func(c, k int, s float64) *mat.Dense {
			x := mat.DenseCopyOf(ele.X)
			x.Set(k, c, x.At(k, c)+s)
			ge := geometry.New(shape)
			require.NoError(t, ge.EvalAt(xi, x, ele.ID))
			return mat.DenseCopyOf(ge.Derxy2)
		}
		for c := 0; c < nen; c += 3 {
			for k := 0; k < nsd; k++ {
				secondSensitivity(g, k, c, dd2)
				plus, minus := eval(c, k, h), eval(c, k, -h)
				for r := 0; r < nd2; r++ {
					for a := 0; a < nen; a++ {
						fd := (plus.At(r, a) - minus.At(r, a)) / (2 * h)
						assert.InDelta(t, fd, dd2.At(r, a), 1e-5, "%s node %d dir %d", kind, c, k)
					}
				}
			}
		}
	}
}

func TestDynamicSmagorinskyStatistics(t *testing.T) {
	var (
		m     = &material.Newtonian{Viscosity: 0.05, Density: 1.2}
		stats = turbulence.NewLayerStatistics([]float64{-1, 0, 1})
		list  = discret.NewParameterList("fluid")
	)
	list.Sublist(TurbulenceList).Set(LayerStatistics, stats)
	params := Parameters{
		Time: genAlpha(), Stab: allTerms(), Newton: true, MatGP: true, TauGP: true,
		Turb: turbulence.Settings{Model: turbulence.DynamicSmagorinsky, NormalDir: 1},
		List: list,
	}
	ele, lm := testElement(t, shapes.Hex8, 0.05)
	ele.CsDeltaSq = 0.01
	dis := testStates(ele.NumDof())

	count := func() (n int) {
		for _, c := range stats.Count {
			n += c
		}
		return
	}
	_, err := Evaluate(ele, dis, lm, params, m)
	require.NoError(t, err)
	assert.Equal(t, 1, count())

	_, err = FDCheck(ele, dis, lm, params, m, 1e-6, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, count())

	ele.Owned = false
	_, err = Evaluate(ele, dis, lm, params, m)
	require.NoError(t, err)
	assert.Equal(t, 1, count())

	cs, csDeltaSq, _ := stats.Means()
	var sum float64
	for i := range cs {
		sum += csDeltaSq[i]
	}
	assert.InDelta(t, 0.01, sum, 1e-15)
}

func TestScaleSimilarity(t *testing.T) {
	var (
		m      = &material.Newtonian{Viscosity: 0.05, Density: 1.2}
		kind   = shapes.Quad4
		params = Parameters{
			Time: genAlpha(), Stab: allTerms(), Newton: true, MatGP: true, TauGP: true,
			Turb: turbulence.Settings{Model: turbulence.ScaleSimilarity, Cl: 1},
		}
	)
	ele, lm := testElement(t, kind, 0.05)
	dis := testStates(ele.NumDof())
	_, err := Evaluate(ele, dis, lm, params, m)
	var cerr *utils.ConfigurationError
	assert.True(t, errors.As(err, &cerr), "missing filtered fields")

	fvel := discret.NewNodeField(2)
	rey := discret.NewNodeField(4)
	for a, id := range ele.NodeIDs {
		require.NoError(t, fvel.Set(id, []float64{0.1 * float64(a), 0.05}))
		require.NoError(t, rey.Set(id, []float64{0.01 * float64(a), 0, 0, 0.02}))
	}
	dis.SetField(FieldFilteredVel, fvel)
	dis.SetField(FieldFilteredReyStr, rey)
	withModel, err := Evaluate(ele, dis, lm, params, m)
	require.NoError(t, err)

	maxRel, err := FDCheck(ele, dis, lm, params, m, 1e-6, io.Discard)
	require.NoError(t, err)
	assert.Less(t, maxRel, fdTol)

	params.Turb.Cl = 0
	without, err := Evaluate(ele, dis, lm, params, m)
	require.NoError(t, err)
	assert.False(t, mat.EqualApprox(withModel.Force, without.Force, 1e-14))

	params.Turb.Cl = 1
	params.Turb.Form = turbulence.ConvectiveForm
	_, err = Evaluate(ele, dis, lm, params, m)
	assert.True(t, errors.As(err, &cerr), "inactive similarity form")
}

func TestConfigurationErrors(t *testing.T) {
	var (
		m       = &material.Newtonian{Viscosity: 0.05, Density: 1.2}
		ele, lm = testElement(t, shapes.Quad4, 0.05)
		dis     = testStates(ele.NumDof())
		base    = Parameters{Time: genAlpha(), Stab: allTerms(), Newton: true}
	)
	cases := map[string]func() (*Element, Parameters, material.Material){
		"ale stationary": func() (*Element, Parameters, material.Material) {
			e := *ele
			e.IsALE = true
			p := base
			p.Time = TimeIntegration{Scheme: Stationary}
			return &e, p, m
		},
		"subscales without gen-alpha": func() (*Element, Parameters, material.Material) {
			e := *ele
			e.Subscales = NewSubscaleBuffer(numPoints(t, shapes.Quad4), 2)
			p := base
			p.Time = oneStepTheta()
			p.Stab.Subscales = TimeDependent
			return &e, p, m
		},
		"missing subscale buffer": func() (*Element, Parameters, material.Material) {
			p := base
			p.Stab.Subscales = TimeDependent
			return ele, p, m
		},
		"subscale buffer size": func() (*Element, Parameters, material.Material) {
			e := *ele
			e.Subscales = NewSubscaleBuffer(1, 2)
			p := base
			p.Stab.Subscales = TimeDependent
			return &e, p, m
		},
		"boussinesq gen-alpha": func() (*Element, Parameters, material.Material) {
			return ele, base, &material.Boussinesq{Viscosity: 0.05, Density: 1, Beta: 1e-3, RefTemp: 300}
		},
		"unknown tau": func() (*Element, Parameters, material.Material) {
			p := base
			p.Stab.TauType = stab.TauType(200)
			return ele, p, m
		},
		"two volume forces": func() (*Element, Parameters, material.Material) {
			e := *ele
			c := &discret.Condition{OnOff: []bool{true, true}, Val: []float64{1, 1}}
			e.Conditions = []*discret.Condition{c, c}
			return &e, base, m
		},
		"line element": func() (*Element, Parameters, material.Material) {
			e := *ele
			e.Shape = shapes.Line2
			e.X = mat.NewDense(1, 2, []float64{0, 1})
			return &e, base, m
		},
		"bad time step": func() (*Element, Parameters, material.Material) {
			p := base
			p.Time.Dt = 0
			return ele, p, m
		},
	}
	for name, setup := range cases {
		e, p, mm := setup()
		_, err := Evaluate(e, dis, lm, p, mm)
		var cerr *utils.ConfigurationError
		assert.True(t, errors.As(err, &cerr), "%s: %v", name, err)
	}

	_, err := Evaluate(ele, discret.New(), lm, base, m)
	assert.Error(t, err, "missing state")
	_, err = Evaluate(ele, dis, lm[:3], base, m)
	assert.Error(t, err, "short location vector")
	_, err = FDCheck(ele, dis, lm, base, m, 0, io.Discard)
	assert.Error(t, err)
	_, err = FDCheckMesh(ele, dis, lm, base, m, 1e-6, io.Discard)
	assert.Error(t, err)

	var merr *utils.MaterialError
	_, err = Evaluate(ele, dis, lm, base, &material.Newtonian{Viscosity: -1, Density: 1})
	assert.True(t, errors.As(err, &merr))
}

func TestPicardDropsConvectiveLinearization(t *testing.T) {
	var (
		m       = &material.Newtonian{Viscosity: 0.05, Density: 1.2}
		ele, lm = testElement(t, shapes.Quad4, 0.05)
		dis     = testStates(ele.NumDof())
		params  = Parameters{Time: genAlpha(), Stab: allTerms(), MatGP: true, TauGP: true}
	)
	picard, err := Evaluate(ele, dis, lm, params, m)
	require.NoError(t, err)
	params.Newton = true
	newton, err := Evaluate(ele, dis, lm, params, m)
	require.NoError(t, err)
	assert.True(t, mat.Equal(picard.Force, newton.Force))
	assert.False(t, mat.EqualApprox(picard.Tangent, newton.Tangent, 1e-12))
}
