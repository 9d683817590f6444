package fluid

import (
	"fmt"
	"io"
	"math"

	"github.com/slfuchs/4C-sub001/discret"
	"github.com/slfuchs/4C-sub001/material"
	"github.com/slfuchs/4C-sub001/utils"
	"gonum.org/v1/gonum/mat"
)

// fdProbe re-evaluates the force of one element with the material,
// stabilization and subgrid viscosity values of a base evaluation
type fdProbe struct {
	ele      *Element
	lm       []int
	params   Parameters
	material material.Material
	frozen   []coefficients
	buffer   *SubscaleBuffer
}

func newFDProbe(ele *Element, dis *discret.Discretization, lm []int, params Parameters, m material.Material) (pr *fdProbe, base *ElementOutputs, err error) {
	pr = &fdProbe{ele: ele, lm: lm, params: params, material: m}
	if ele.Subscales != nil {
		pr.buffer = ele.Subscales.Clone()
	}
	var ev *evaluator
	if ev, err = pr.evaluator(dis); err != nil {
		return nil, nil, err
	}
	if base, err = ev.run(); err != nil {
		return nil, nil, err
	}
	pr.frozen = ev.recorded
	return
}

func (pr *fdProbe) evaluator(dis *discret.Discretization) (ev *evaluator, err error) {
	if ev, err = newEvaluator(pr.ele, dis, pr.lm, &pr.params, pr.material); err != nil {
		return
	}
	ev.skipStatistics = true
	ev.frozen = pr.frozen
	if pr.buffer != nil {
		ev.subscales = pr.buffer.Clone()
	}
	return
}

func (pr *fdProbe) force(dis *discret.Discretization) (f *mat.VecDense, err error) {
	var (
		ev  *evaluator
		out *ElementOutputs
	)
	if ev, err = pr.evaluator(dis); err != nil {
		return
	}
	if out, err = ev.run(); err != nil {
		return
	}
	return out.Force, nil
}

// central returns -(F(+h) - F(-h)) / 2h for the perturbation applied by perturb
func (pr *fdProbe) central(dis *discret.Discretization, h float64, perturb func(d *discret.Discretization, h float64) error) (col []float64, err error) {
	var fp, fm *mat.VecDense
	for _, s := range []float64{1, -1} {
		d := dis.Clone()
		if err = perturb(d, s*h); err != nil {
			return
		}
		var f *mat.VecDense
		if f, err = pr.force(d); err != nil {
			return
		}
		if s > 0 {
			fp = f
		} else {
			fm = f
		}
	}
	col = make([]float64, fp.Len())
	for i := range col {
		col[i] = -(fp.AtVec(i) - fm.AtVec(i)) / (2 * h)
	}
	return
}

func addToState(d *discret.Discretization, name string, gid int, v float64) (err error) {
	var vec *mat.VecDense
	if vec, err = d.GetState(name); err != nil {
		return
	}
	if gid < 0 || gid >= vec.Len() {
		return fmt.Errorf("dof %d out of range of state %q", gid, name)
	}
	vec.SetVec(gid, vec.AtVec(gid)+v)
	return
}

func maxAbs(m mat.Matrix) (v float64) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v = math.Max(v, math.Abs(m.At(i, j)))
		}
	}
	return
}

// compare writes one line per entry of the column and returns the largest
// relative deviation. Entries far below the largest analytic entry are
// compared against a floor of 1e-3 times that entry.
func compare(w io.Writer, col int, analytic mat.Matrix, fd []float64, floor float64) (maxRel float64) {
	for row, v := range fd {
		var (
			ana = analytic.At(row, col)
			abs = math.Abs(v - ana)
			den = math.Max(floor, math.Max(math.Abs(ana), math.Abs(v)))
			rel float64
		)
		if den > 0 {
			rel = abs / den
		}
		maxRel = math.Max(maxRel, rel)
		fmt.Fprintf(w, "%5d %5d  %16.8e %16.8e  %10.3e %10.3e\n", row, col, ana, v, abs, rel)
	}
	return
}

// FDCheck compares the tangent of Evaluate column by column with central
// differences of the force. Velocity perturbations are carried to the
// intermediate generalized-alpha states. Every perturbed force is recomputed
// with the material, stabilization and subgrid viscosity values of the
// unperturbed evaluation, since the tangent does not differentiate them; a
// shear rate dependent viscosity such as Carreau-Yasuda is therefore not
// covered by the check. Neither the subscale buffer of the element nor the
// turbulence statistics are modified.
func FDCheck(ele *Element, dis *discret.Discretization, lm []int, params Parameters, m material.Material, eps float64, w io.Writer) (maxRel float64, err error) {
	if !(eps > 0) {
		return 0, utils.NewConfigurationError("finite difference step must be positive, got %g", eps)
	}
	var (
		pr   *fdProbe
		base *ElementOutputs
		nsd  = ele.Nsd()
		ti   = params.Time
	)
	if pr, base, err = newFDProbe(ele, dis, lm, params, m); err != nil {
		return
	}
	floor := 1e-3 * maxAbs(base.Tangent)
	fmt.Fprintf(w, "# element %d, %s, %d dofs, eps %g\n", ele.ID, ele.Shape, ele.NumDof(), eps)
	fmt.Fprintf(w, "# %3s %5s  %16s %16s  %10s %10s\n", "row", "col", "analytic", "fd", "abs", "rel")
	for col := range lm {
		var (
			gid      = lm[col]
			velocity = col%(nsd+1) < nsd
		)
		perturb := func(d *discret.Discretization, h float64) (err error) {
			if err = addToState(d, StateVelNP, gid, h); err != nil {
				return
			}
			if ti.IsGenAlpha() && velocity {
				if err = addToState(d, StateVelAF, gid, ti.AlphaF*h); err != nil {
					return
				}
				err = addToState(d, StateAccAM, gid, ti.AlphaM/(ti.Gamma*ti.Dt)*h)
			}
			return
		}
		var fd []float64
		if fd, err = pr.central(dis, eps, perturb); err != nil {
			return
		}
		maxRel = math.Max(maxRel, compare(w, col, base.Tangent, fd, floor))
	}
	fmt.Fprintf(w, "# max relative error %10.3e\n", maxRel)
	return
}

// FDCheckMesh compares the mesh block of an ALE element with central
// differences of the force with respect to the nodal displacements. The
// coefficients are frozen as in FDCheck; body forces given by spatial
// functions are not linearized.
func FDCheckMesh(ele *Element, dis *discret.Discretization, lm []int, params Parameters, m material.Material, eps float64, w io.Writer) (maxRel float64, err error) {
	if !ele.IsALE || !params.MeshLinearization {
		return 0, utils.NewConfigurationError("element %d: the mesh check needs an ALE element with mesh linearization", ele.ID)
	}
	if !(eps > 0) {
		return 0, utils.NewConfigurationError("finite difference step must be positive, got %g", eps)
	}
	var (
		pr   *fdProbe
		base *ElementOutputs
		nsd  = ele.Nsd()
	)
	if pr, base, err = newFDProbe(ele, dis, lm, params, m); err != nil {
		return
	}
	floor := 1e-3 * maxAbs(base.Mesh)
	fmt.Fprintf(w, "# element %d, %s, mesh block, eps %g\n", ele.ID, ele.Shape, eps)
	for node := 0; node < ele.Nen(); node++ {
		for k := 0; k < nsd; k++ {
			gid := lm[node*(nsd+1)+k]
			perturb := func(d *discret.Discretization, h float64) error {
				return addToState(d, StateDispNP, gid, h)
			}
			var fd []float64
			if fd, err = pr.central(dis, eps, perturb); err != nil {
				return
			}
			maxRel = math.Max(maxRel, compare(w, node*nsd+k, base.Mesh, fd, floor))
		}
	}
	fmt.Fprintf(w, "# max relative error %10.3e\n", maxRel)
	return
}
