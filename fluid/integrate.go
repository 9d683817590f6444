package fluid

import (
	"github.com/slfuchs/4C-sub001/discret"
	"github.com/slfuchs/4C-sub001/geometry"
	"github.com/slfuchs/4C-sub001/quadrature"
	"gonum.org/v1/gonum/mat"
)

// IntegrateShapeFunction returns ∫N_a dΩ in the pressure dof of every node
// and zero in the velocity dofs. ALE elements are integrated in the current
// configuration.
func IntegrateShapeFunction(ele *Element, dis *discret.Discretization, lm []int) (w *mat.VecDense, err error) {
	if err = ele.check(lm); err != nil {
		return
	}
	var (
		nsd  = ele.Nsd()
		nen  = ele.Nen()
		xyze = mat.DenseCopyOf(ele.X)
		rule quadrature.Rule
	)
	if ele.IsALE {
		var disp *mat.Dense
		if disp, _, err = extract(dis, StateDispNP, lm, nsd, nen); err != nil {
			return nil, err
		}
		xyze.Add(xyze, disp)
	}
	shape, err := ele.shapeEvaluator()
	if err != nil {
		return
	}
	if rule, err = quadrature.ForShape(ele.Shape); err != nil {
		return
	}
	g := geometry.New(shape)
	w = mat.NewVecDense(ele.NumDof(), nil)
	for q, xi := range rule.Points {
		if err = g.EvalAt(xi, xyze, ele.ID); err != nil {
			return nil, err
		}
		fac := rule.Weights[q] * g.Det
		for a := 0; a < nen; a++ {
			row := a*(nsd+1) + nsd
			w.SetVec(row, w.AtVec(row)+fac*g.Funct[a])
		}
	}
	return
}
