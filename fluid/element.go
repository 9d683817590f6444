// Package fluid evaluates the element residual and tangent of the residual
// based variational multiscale formulation of the incompressible and
// variable density (low-Mach-number) Navier-Stokes equations.
package fluid

import (
	"fmt"

	"github.com/slfuchs/4C-sub001/discret"
	"github.com/slfuchs/4C-sub001/shapes"
	"github.com/slfuchs/4C-sub001/utils"
	"gonum.org/v1/gonum/mat"
)

// Element is one fluid element. X holds the reference nodal coordinates
// (nsd x nen); ALE elements add the displacement state to obtain the current
// configuration.
type Element struct {
	ID         int
	Shape      shapes.ShapeKind
	NodeIDs    []int
	X          *mat.Dense
	IsALE      bool
	Owned      bool
	Nurbs      *shapes.NurbsCell
	CsDeltaSq  float64 // dynamic Smagorinsky Cs·Δ² of the element
	Subscales  *SubscaleBuffer
	Conditions []*discret.Condition // volume force conditions
}

func (ele *Element) Nsd() int { return ele.Shape.Dim() }
func (ele *Element) Nen() int { return ele.Shape.NumNodes() }

// NumDof is the number of element dofs, nsd velocities and one pressure per node
func (ele *Element) NumDof() int { return (ele.Nsd() + 1) * ele.Nen() }

func (ele *Element) shapeEvaluator() (ev shapes.Evaluator, err error) {
	if ele.Shape.IsNurbs() {
		return shapes.NewNurbs(ele.Shape, ele.Nurbs)
	}
	return shapes.New(ele.Shape)
}

func (ele *Element) check(lm []int) (err error) {
	var (
		nsd = ele.Nsd()
		nen = ele.Nen()
	)
	if nsd < 2 {
		return utils.NewConfigurationError("element %d: shape %s is not a fluid element shape", ele.ID, ele.Shape)
	}
	if ele.X == nil {
		return fmt.Errorf("element %d: missing nodal coordinates", ele.ID)
	}
	if r, c := ele.X.Dims(); r != nsd || c != nen {
		return fmt.Errorf("element %d: coordinates are %dx%d, expected %dx%d", ele.ID, r, c, nsd, nen)
	}
	if len(lm) != ele.NumDof() {
		return fmt.Errorf("element %d: location vector has %d entries, expected %d", ele.ID, len(lm), ele.NumDof())
	}
	return
}

// ElementOutputs are the element tangent K = ∂R/∂U, the force F = -R and,
// when requested for ALE elements, the mesh block ∂R/∂d with one column per
// nodal displacement component (node-major).
type ElementOutputs struct {
	Tangent *mat.Dense
	Force   *mat.VecDense
	Mesh    *mat.Dense
}

// SubscaleBuffer stores the time dependent subscale velocity and
// acceleration of each integration point across time steps
type SubscaleBuffer struct {
	Sveln, Saccn, Svelnp [][]float64 // [point][component]
}

func NewSubscaleBuffer(npoints, nsd int) (sb *SubscaleBuffer) {
	alloc := func() (v [][]float64) {
		v = make([][]float64, npoints)
		for q := range v {
			v[q] = make([]float64, nsd)
		}
		return
	}
	return &SubscaleBuffer{Sveln: alloc(), Saccn: alloc(), Svelnp: alloc()}
}

func (sb *SubscaleBuffer) NumPoints() int { return len(sb.Sveln) }

func (sb *SubscaleBuffer) Clone() (c *SubscaleBuffer) {
	cp := func(src [][]float64) (dst [][]float64) {
		dst = make([][]float64, len(src))
		for q := range src {
			dst[q] = append([]float64(nil), src[q]...)
		}
		return
	}
	return &SubscaleBuffer{Sveln: cp(sb.Sveln), Saccn: cp(sb.Saccn), Svelnp: cp(sb.Svelnp)}
}

// TimeUpdate advances the subscales after a converged generalized-alpha step
func (sb *SubscaleBuffer) TimeUpdate(ti TimeIntegration) {
	var (
		gdt = ti.Gamma * ti.Dt
		fac = (1 - ti.Gamma) / ti.Gamma
	)
	for q := range sb.Sveln {
		for i := range sb.Sveln[q] {
			sb.Saccn[q][i] = (sb.Svelnp[q][i]-sb.Sveln[q][i])/gdt - fac*sb.Saccn[q][i]
			sb.Sveln[q][i] = sb.Svelnp[q][i]
		}
	}
}
