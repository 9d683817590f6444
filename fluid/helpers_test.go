package fluid

import (
	"math"
	"testing"

	"github.com/slfuchs/4C-sub001/discret"
	"github.com/slfuchs/4C-sub001/quadrature"
	"github.com/slfuchs/4C-sub001/shapes"
	"github.com/slfuchs/4C-sub001/stab"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// referenceCoords returns the nodal reference coordinates of any shape,
// Greville points for the NURBS cells
func referenceCoords(kind shapes.ShapeKind) (c [][]float64) {
	if !kind.IsNurbs() {
		return shapes.NodeCoords(kind)
	}
	var (
		nsd = kind.Dim()
		p   = kind.Degree()
		n1d = p + 1
	)
	for a := 0; a < kind.NumNodes(); a++ {
		var (
			rest = a
			x    = make([]float64, nsd)
		)
		for d := 0; d < nsd; d++ {
			x[d] = 2*float64(rest%n1d)/float64(p) - 1
			rest /= n1d
		}
		c = append(c, x)
	}
	return
}

// testElement is a slightly distorted element of roughly unit size with
// global dofs numbered like the local ones
func testElement(t *testing.T, kind shapes.ShapeKind, distortion float64) (ele *Element, lm []int) {
	var (
		nsd = kind.Dim()
		nen = kind.NumNodes()
		ref = referenceCoords(kind)
	)
	ele = &Element{
		ID:      7,
		Shape:   kind,
		NodeIDs: make([]int, nen),
		X:       mat.NewDense(nsd, nen, nil),
		Owned:   true,
	}
	if kind.IsNurbs() {
		ele.Nurbs = shapes.UniformCell(kind)
	}
	for a := 0; a < nen; a++ {
		ele.NodeIDs[a] = 100 + a
		for i := 0; i < nsd; i++ {
			d := distortion * float64((a*7+i*3)%5-2) / 2
			ele.X.Set(i, a, 0.5*ref[a][i]+d)
		}
	}
	lm = make([]int, ele.NumDof())
	for i := range lm {
		lm[i] = i
	}
	require.Equal(t, nsd, ele.Nsd())
	return
}

func wave(n int, amp, phase float64) (v *mat.VecDense) {
	v = mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v.SetVec(i, amp*math.Sin(1.7*float64(i)+phase))
	}
	return
}

// testStates fills every state the element could ask for
func testStates(ndof int) (dis *discret.Discretization) {
	dis = discret.New()
	dis.SetState(StateVelNP, wave(ndof, 0.3, 0.1))
	dis.SetState(StateVelAF, wave(ndof, 0.25, 0.3))
	dis.SetState(StateAccAM, wave(ndof, 0.5, 0.7))
	dis.SetState(StateHist, wave(ndof, 0.2, 1.1))
	dis.SetState(StateDispNP, wave(ndof, 0.02, 0.5))
	dis.SetState(StateGridV, wave(ndof, 0.05, 0.9))
	dis.SetState(StateFsVelAF, wave(ndof, 0.05, 1.3))
	temp := func(phase float64) (v *mat.VecDense) {
		v = wave(ndof, 10, phase)
		for i := 0; i < ndof; i++ {
			v.SetVec(i, 300+v.AtVec(i))
		}
		return
	}
	dis.SetState(StateScaAF, temp(0.2))
	dis.SetState(StateScaAM, temp(0.4))
	dis.SetState(StateScaDtAM, wave(ndof, 2, 0.6))
	return
}

func genAlpha() TimeIntegration {
	const rho = 0.5
	var (
		am = 0.5 * (3 - rho) / (1 + rho)
		af = 1 / (1 + rho)
	)
	return TimeIntegration{Scheme: GenAlpha, AlphaF: af, AlphaM: am, Gamma: 0.5 + am - af, Dt: 0.1, Time: 0.3}
}

func oneStepTheta() TimeIntegration {
	return TimeIntegration{Scheme: OneStepTheta, Theta: 0.66, Dt: 0.05, Time: 0.2}
}

func allTerms() StabSwitches {
	return StabSwitches{
		TauType:  stab.TaylorHughesZarins,
		PSPG:     true,
		SUPG:     true,
		GradDiv:  true,
		Reactive: ReactiveGLS,
		Viscous:  ViscousGLS,
		Cross:    CrossComplete,
		Reynolds: ReynoldsComplete,
	}
}

func numPoints(t *testing.T, kind shapes.ShapeKind) int {
	r, err := quadrature.ForShape(kind)
	require.NoError(t, err)
	return r.NumPoints()
}

func fluidKinds() (kinds []shapes.ShapeKind) {
	for _, k := range shapes.AllKinds() {
		if k.Dim() >= 2 {
			kinds = append(kinds, k)
		}
	}
	return
}

func block(m *mat.Dense, nsd int, rowPressure, colPressure bool) (b *mat.Dense) {
	n, _ := m.Dims()
	var rows, cols []int
	for i := 0; i < n; i++ {
		pres := i%(nsd+1) == nsd
		if pres == rowPressure {
			rows = append(rows, i)
		}
		if pres == colPressure {
			cols = append(cols, i)
		}
	}
	b = mat.NewDense(len(rows), len(cols), nil)
	for r, i := range rows {
		for c, j := range cols {
			b.Set(r, c, m.At(i, j))
		}
	}
	return
}
