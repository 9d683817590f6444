package shapes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func samplePoint(kind ShapeKind) []float64 {
	switch kind {
	case Tri3, Tri6:
		return []float64{0.2, 0.3}
	case Tet4, Tet10:
		return []float64{0.2, 0.3, 0.15}
	case Wedge6:
		return []float64{0.2, 0.3, -0.4}
	case Pyramid5:
		return []float64{0.1, -0.2, 0.3}
	default:
		return []float64{0.3, -0.2, 0.45}[:kind.Dim()]
	}
}

func weightedCell(kind ShapeKind) (cell *NurbsCell) {
	cell = UniformCell(kind)
	for d := range cell.Knots {
		for j := range cell.Knots[d] {
			cell.Knots[d][j] = 2*cell.Knots[d][j] + float64(d)
		}
	}
	for i := range cell.Weights {
		cell.Weights[i] = 1 + 0.1*float64(i%3)
	}
	return
}

func allEvaluators(t *testing.T) (evs []Evaluator) {
	for _, kind := range AllKinds() {
		var (
			ev  Evaluator
			err error
		)
		if kind.IsNurbs() {
			ev, err = NewNurbs(kind, weightedCell(kind))
		} else {
			ev, err = New(kind)
		}
		require.NoError(t, err, kind.String())
		evs = append(evs, ev)
	}
	return
}

func TestShapeKindTables(t *testing.T) {
	for _, kind := range AllKinds() {
		name := kind.String()
		parsed, err := ParseShapeKind(" " + name + " ")
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
		assert.True(t, kind.Dim() > 0, name)
		assert.True(t, kind.NumNodes() > 0, name)
		assert.True(t, kind.RefVolume() > 0, name)
		if !kind.IsNurbs() {
			assert.Equal(t, kind.NumNodes(), len(NodeCoords(kind)), name)
		}
	}
	_, err := ParseShapeKind("hex9")
	assert.Error(t, err)

	assert.False(t, Tet4.IsHigherOrder())
	assert.False(t, Tri3.IsHigherOrder())
	assert.True(t, Hex8.IsHigherOrder())
	assert.True(t, Tet10.IsHigherOrder())
	assert.InDelta(t, 1./3., Hex8.Mk(), 1e-15)
	assert.InDelta(t, 1./12., Hex27.Mk(), 1e-15)

	assert.Equal(t, 3, Deriv2Index(3, 0, 1))
	assert.Equal(t, 4, Deriv2Index(3, 2, 0))
	assert.Equal(t, 5, Deriv2Index(3, 1, 2))
	assert.Equal(t, 2, Deriv2Index(2, 1, 0))
	assert.Panics(t, func() { Deriv2Index(1, 0, 1) })
}

func TestNewRejectsNurbsKinds(t *testing.T) {
	_, err := New(Nurbs9)
	assert.Error(t, err)
	_, err = New(Unknown)
	assert.Error(t, err)
}

func TestPartitionOfUnity(t *testing.T) {
	for _, ev := range allEvaluators(t) {
		funct, deriv, deriv2 := NewWorkspace(ev)
		xi := samplePoint(ev.Kind())
		ev.Eval(xi, funct, deriv, deriv2)
		var sum float64
		for _, v := range funct {
			sum += v
		}
		assert.InDeltaf(t, 1, sum, 1e-12, "%s: sum N = %v", ev.Kind(), sum)
		r, _ := deriv.Dims()
		for i := 0; i < r; i++ {
			assert.InDeltaf(t, 0, mat.Sum(deriv.RowView(i)), 1e-12, "%s: sum dN/dxi_%d", ev.Kind(), i)
		}
		r, _ = deriv2.Dims()
		for i := 0; i < r; i++ {
			assert.InDeltaf(t, 0, mat.Sum(deriv2.RowView(i)), 1e-10, "%s: sum d2N row %d", ev.Kind(), i)
		}
	}
}

func TestNodalInterpolation(t *testing.T) {
	for _, kind := range AllKinds() {
		if kind.IsNurbs() {
			continue
		}
		ev, err := New(kind)
		require.NoError(t, err)
		funct, _, _ := NewWorkspace(ev)
		for n, c := range NodeCoords(kind) {
			ev.Eval(c, funct, nil, nil)
			for m, v := range funct {
				expected := 0.
				if m == n {
					expected = 1
				}
				assert.InDeltaf(t, expected, v, 1e-12, "%s: N_%d at node %d", kind, m, n)
			}
		}
	}
}

func TestNumericalDerivatives(t *testing.T) {
	const h = 1e-6
	for _, ev := range allEvaluators(t) {
		var (
			nsd              = ev.Dim()
			nen              = ev.NumNodes()
			xi               = samplePoint(ev.Kind())
			funct, deriv, dd = NewWorkspace(ev)
			fp, dp, _        = NewWorkspace(ev)
			fm, dm, _        = NewWorkspace(ev)
			xp, xm           = make([]float64, nsd), make([]float64, nsd)
		)
		ev.Eval(xi, funct, deriv, dd)
		for j := 0; j < nsd; j++ {
			copy(xp, xi)
			copy(xm, xi)
			xp[j] += h
			xm[j] -= h
			ev.Eval(xp, fp, dp, nil)
			ev.Eval(xm, fm, dm, nil)
			for a := 0; a < nen; a++ {
				num := (fp[a] - fm[a]) / (2 * h)
				assert.InDeltaf(t, num, deriv.At(j, a), 1e-7, "%s: dN_%d/dxi_%d", ev.Kind(), a, j)
				for i := 0; i < nsd; i++ {
					num2 := (dp.At(i, a) - dm.At(i, a)) / (2 * h)
					assert.InDeltaf(t, num2, dd.At(Deriv2Index(nsd, i, j), a), 1e-6,
						"%s: d2N_%d/dxi_%d dxi_%d", ev.Kind(), a, i, j)
				}
			}
		}
	}
}

func TestBSplineBernstein(t *testing.T) {
	var (
		U = []float64{0, 0, 0, 1, 1, 1}
		u = 0.3
	)
	ders := bsplineDerivs(2, U, u, 2)
	assert.InDelta(t, (1-u)*(1-u), ders[0][0], 1e-14)
	assert.InDelta(t, 2*u*(1-u), ders[0][1], 1e-14)
	assert.InDelta(t, u*u, ders[0][2], 1e-14)
	assert.InDelta(t, -2*(1-u), ders[1][0], 1e-14)
	assert.InDelta(t, 2-4*u, ders[1][1], 1e-14)
	assert.InDelta(t, 2*u, ders[1][2], 1e-14)
	assert.InDelta(t, 2, ders[2][0], 1e-14)
	assert.InDelta(t, -4, ders[2][1], 1e-14)
	assert.InDelta(t, 2, ders[2][2], 1e-14)

	lin := bsplineDerivs(1, []float64{0, 0, 2, 2}, 0.5, 2)
	assert.InDelta(t, 0.75, lin[0][0], 1e-14)
	assert.InDelta(t, -0.5, lin[1][0], 1e-14)
	assert.InDelta(t, 0, lin[2][0], 1e-14)
}

func TestNurbsMatchesLagrangeForLinearCell(t *testing.T) {
	// a bilinear B-spline cell on [0,1]² with unit weights is the quad4 basis
	// with the nodes ordered lexicographically
	nb, err := NewNurbs(Nurbs4, UniformCell(Nurbs4))
	require.NoError(t, err)
	q4, err := New(Quad4)
	require.NoError(t, err)
	var (
		xi       = []float64{0.3, -0.6}
		fn, _, _ = NewWorkspace(nb)
		fq, _, _ = NewWorkspace(q4)
		perm     = []int{0, 1, 3, 2}
	)
	nb.Eval(xi, fn, nil, nil)
	q4.Eval(xi, fq, nil, nil)
	for a, b := range perm {
		assert.InDelta(t, fq[b], fn[a], 1e-14)
	}
}

func TestNewNurbsValidation(t *testing.T) {
	_, err := NewNurbs(Hex8, UniformCell(Nurbs8))
	assert.Error(t, err)
	_, err = NewNurbs(Nurbs8, nil)
	assert.Error(t, err)

	cell := UniformCell(Nurbs9)
	cell.Weights[4] = 0
	_, err = NewNurbs(Nurbs9, cell)
	assert.Error(t, err)

	cell = UniformCell(Nurbs9)
	cell.Knots[1] = cell.Knots[1][:4]
	_, err = NewNurbs(Nurbs9, cell)
	assert.Error(t, err)

	cell = UniformCell(Nurbs4)
	cell.Knots[0] = []float64{0, 1, 1, 2}
	_, err = NewNurbs(Nurbs4, cell)
	assert.Error(t, err)
}

func TestPyramidApex(t *testing.T) {
	ev, err := New(Pyramid5)
	require.NoError(t, err)
	funct, deriv, _ := NewWorkspace(ev)
	ev.Eval([]float64{0, 0, 1}, funct, deriv, nil)
	assert.InDelta(t, 1, funct[4], 1e-14)
	for a := 0; a < 4; a++ {
		assert.InDelta(t, 0, funct[a], 1e-14)
		assert.False(t, math.IsNaN(deriv.At(2, a)))
	}
}
