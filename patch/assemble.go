package patch

import (
	"fmt"
	"sync"

	"github.com/slfuchs/4C-sub001/discret"
	"github.com/slfuchs/4C-sub001/fluid"
	"github.com/slfuchs/4C-sub001/material"
	"github.com/slfuchs/4C-sub001/turbulence"
	"github.com/slfuchs/4C-sub001/utils"
	"gonum.org/v1/gonum/mat"
)

// System is the assembled tangent and force of a mesh
type System struct {
	K utils.CSR
	F *mat.VecDense
}

// Assemble evaluates all elements on ParallelDegree goroutines and sums the
// element tangents and forces into the global system. Each worker collects
// dynamic Smagorinsky layer statistics in its own accumulator; these are
// merged into the accumulator of params.List after the element loop.
func (m *Mesh) Assemble(dis *discret.Discretization, params fluid.Parameters, mt material.Material, ParallelDegree int) (sys *System, err error) {
	var (
		nele    = len(m.Elements)
		pm      = utils.NewPartitionMap(ParallelDegree, nele)
		NP      = pm.ParallelDegree
		outputs = make([]*fluid.ElementOutputs, nele)
		errs    = make([]error, NP)
		stats   = make([]*turbulence.LayerStatistics, NP)
		global  = layerStatistics(params.List)
		wg      = sync.WaitGroup{}
	)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			local := params
			if params.List != nil {
				local.List = params.List.Clone()
				if global != nil {
					stats[np] = turbulence.NewLayerStatistics(global.Planes)
					local.List.Sublist(fluid.TurbulenceList).Set(fluid.LayerStatistics, stats[np])
				}
			}
			kMin, kMax := pm.GetBucketRange(np)
			for k := kMin; k < kMax; k++ {
				var out *fluid.ElementOutputs
				if out, errs[np] = fluid.Evaluate(m.Elements[k], dis, m.LM[k], local, mt); errs[np] != nil {
					return
				}
				outputs[k] = out
			}
		}(np)
	}
	wg.Wait()
	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	if global != nil {
		for _, ls := range stats {
			global.Merge(ls)
		}
	}
	var (
		K = utils.NewDOK(m.NumDof, m.NumDof)
		F = mat.NewVecDense(m.NumDof, nil)
	)
	for k, out := range outputs {
		lm := m.LM[k]
		if err = K.AddBlock(lm, lm, out.Tangent); err != nil {
			return nil, fmt.Errorf("element %d: %w", m.Elements[k].ID, err)
		}
		for i, gi := range lm {
			F.SetVec(gi, F.AtVec(gi)+out.Force.AtVec(i))
		}
	}
	K.SetReadOnly("K")
	return &System{K: K.ToCSR(), F: F}, nil
}

func layerStatistics(pl *discret.ParameterList) (ls *turbulence.LayerStatistics) {
	if pl == nil || !pl.HasSublist(fluid.TurbulenceList) {
		return
	}
	ls, _ = discret.Get[*turbulence.LayerStatistics](pl.Sublist(fluid.TurbulenceList), fluid.LayerStatistics)
	return
}
