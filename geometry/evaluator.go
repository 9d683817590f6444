// Package geometry maps reference shape data onto a physical element: the
// Jacobian, its inverse and determinant, and first and second physical
// derivatives of the shape functions.
package geometry

import (
	"errors"

	"github.com/slfuchs/4C-sub001/shapes"
	"github.com/slfuchs/4C-sub001/utils"
	"gonum.org/v1/gonum/mat"
)

// MinDet is the smallest accepted jacobian determinant
const MinDet = 1.e-16

// Evaluator holds the shape data of one element at the current point. The
// buffers are reused between calls to EvalAt.
//
// Xjm(i,j) = dx_j/dξ_i and Xji(j,k) = dξ_k/dx_j, so Derxy = Xji * Deriv.
type Evaluator struct {
	Shape       shapes.Evaluator
	Nsd, Nen    int
	HigherOrder bool
	Funct       []float64
	Deriv       *mat.Dense // nsd x nen
	Deriv2      *mat.Dense // nd2 x nen
	Xjm, Xji    *mat.Dense // nsd x nsd
	Det         float64
	Derxy       *mat.Dense // nsd x nen
	Derxy2      *mat.Dense // nd2 x nen
	xder2       *mat.Dense // nd2 x nsd
}

func New(shape shapes.Evaluator) (g *Evaluator) {
	var (
		nsd = shape.Dim()
		nen = shape.NumNodes()
		nd2 = shapes.NumDeriv2(nsd)
	)
	g = &Evaluator{
		Shape:       shape,
		Nsd:         nsd,
		Nen:         nen,
		HigherOrder: shape.Kind().IsHigherOrder(),
		Xjm:         mat.NewDense(nsd, nsd, nil),
		Xji:         mat.NewDense(nsd, nsd, nil),
		Derxy:       mat.NewDense(nsd, nen, nil),
		Derxy2:      mat.NewDense(nd2, nen, nil),
		xder2:       mat.NewDense(nd2, nsd, nil),
	}
	g.Funct, g.Deriv, g.Deriv2 = shapes.NewWorkspace(shape)
	return
}

// EvalAt evaluates the shape functions at xi and maps them with the nodal
// coordinates xyze (nsd x nen). Second physical derivatives are computed
// only for higher order shapes and are zero otherwise.
func (g *Evaluator) EvalAt(xi []float64, xyze mat.Matrix, eleID int) (err error) {
	if g.HigherOrder {
		g.Shape.Eval(xi, g.Funct, g.Deriv, g.Deriv2)
	} else {
		g.Shape.Eval(xi, g.Funct, g.Deriv, nil)
	}
	g.Xjm.Mul(g.Deriv, xyze.T())
	g.Det = mat.Det(g.Xjm)
	if g.Det <= MinDet {
		return &utils.GeometryError{ElementID: eleID, Det: g.Det}
	}
	if err = g.Xji.Inverse(g.Xjm); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return &utils.GeometryError{ElementID: eleID, Det: g.Det}
		}
		err = nil
	}
	g.Derxy.Mul(g.Xji, g.Deriv)
	if g.HigherOrder {
		g.secondDerivatives(xyze)
	} else {
		g.Derxy2.Zero()
	}
	return
}

// secondDerivatives applies the chain rule
//
//	d²N/dx_i dx_j = Σ_kl dξ_k/dx_i dξ_l/dx_j (d²N/dξ_k dξ_l - Σ_m dN/dx_m d²x_m/dξ_k dξ_l)
func (g *Evaluator) secondDerivatives(xyze mat.Matrix) {
	var (
		nsd  = g.Nsd
		corr mat.Dense
	)
	g.xder2.Mul(g.Deriv2, xyze.T())
	corr.Mul(g.xder2, g.Derxy)
	corr.Sub(g.Deriv2, &corr)
	for i := 0; i < nsd; i++ {
		for j := i; j < nsd; j++ {
			row := shapes.Deriv2Index(nsd, i, j)
			for a := 0; a < g.Nen; a++ {
				var sum float64
				for k := 0; k < nsd; k++ {
					for l := 0; l < nsd; l++ {
						sum += g.Xji.At(i, k) * g.Xji.At(j, l) * corr.At(shapes.Deriv2Index(nsd, k, l), a)
					}
				}
				g.Derxy2.Set(row, a, sum)
			}
		}
	}
}

// Interpolate returns Σ_a N_a v(c, a) for every row c of the nodal matrix v
func (g *Evaluator) Interpolate(v mat.Matrix, dst []float64) {
	r, _ := v.Dims()
	for c := 0; c < r; c++ {
		var sum float64
		for a := 0; a < g.Nen; a++ {
			sum += g.Funct[a] * v.At(c, a)
		}
		dst[c] = sum
	}
}

// Gradient returns grad(c, j) = Σ_a dN_a/dx_j v(c, a)
func (g *Evaluator) Gradient(v mat.Matrix, grad *mat.Dense) {
	grad.Mul(v, g.Derxy.T())
}
