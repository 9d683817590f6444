// Package patch builds structured fluid meshes and assembles the element
// contributions into the global sparse system.
package patch

import (
	"fmt"

	"github.com/slfuchs/4C-sub001/discret"
	"github.com/slfuchs/4C-sub001/fluid"
	"github.com/slfuchs/4C-sub001/shapes"
	"gonum.org/v1/gonum/mat"
)

// Mesh is a patch of fluid elements with nsd velocities and one pressure
// per node; dof numbering is node*(nsd+1)+component
type Mesh struct {
	Nsd      int
	Coords   [][]float64 // nodal coordinates
	Elements []*fluid.Element
	LM       [][]int // element location vectors
	NumDof   int
}

// NewBox meshes the box [0,length[0]] x ... with n[d] elements per direction.
// Only Quad4 and Hex8 are supported.
func NewBox(kind shapes.ShapeKind, n []int, length []float64) (m *Mesh, err error) {
	if kind != shapes.Quad4 && kind != shapes.Hex8 {
		return nil, fmt.Errorf("box meshes support quad4 and hex8, got %s", kind)
	}
	nsd := kind.Dim()
	if len(n) != nsd || len(length) != nsd {
		return nil, fmt.Errorf("%s box needs %d divisions and lengths, got %d and %d", kind, nsd, len(n), len(length))
	}
	var (
		nnode   = 1
		nele    = 1
		npd     = make([]int, nsd) // nodes per direction
		corners = shapes.NodeCoords(kind)
	)
	for d := 0; d < nsd; d++ {
		if n[d] < 1 || !(length[d] > 0) {
			return nil, fmt.Errorf("invalid box division %d or length %g in direction %d", n[d], length[d], d)
		}
		npd[d] = n[d] + 1
		nnode *= npd[d]
		nele *= n[d]
	}
	m = &Mesh{
		Nsd:    nsd,
		Coords: make([][]float64, nnode),
		NumDof: nnode * (nsd + 1),
	}
	nodeID := func(ijk []int) (id int) {
		for d := nsd - 1; d >= 0; d-- {
			id = id*npd[d] + ijk[d]
		}
		return
	}
	ijk := make([]int, nsd)
	for id := 0; id < nnode; id++ {
		rest := id
		x := make([]float64, nsd)
		for d := 0; d < nsd; d++ {
			ijk[d] = rest % npd[d]
			rest /= npd[d]
			x[d] = length[d] * float64(ijk[d]) / float64(n[d])
		}
		m.Coords[id] = x
	}
	for e := 0; e < nele; e++ {
		var (
			rest = e
			base = make([]int, nsd)
			ele  = &fluid.Element{
				ID:      e,
				Shape:   kind,
				NodeIDs: make([]int, len(corners)),
				X:       mat.NewDense(nsd, len(corners), nil),
				Owned:   true,
			}
			lm = make([]int, 0, ele.NumDof())
		)
		for d := 0; d < nsd; d++ {
			base[d] = rest % n[d]
			rest /= n[d]
		}
		for a, c := range corners {
			for d := 0; d < nsd; d++ {
				ijk[d] = base[d] + int((c[d]+1)/2)
			}
			id := nodeID(ijk)
			ele.NodeIDs[a] = id
			for d := 0; d < nsd; d++ {
				ele.X.Set(d, a, m.Coords[id][d])
			}
			for k := 0; k <= nsd; k++ {
				lm = append(lm, id*(nsd+1)+k)
			}
		}
		m.Elements = append(m.Elements, ele)
		m.LM = append(m.LM, lm)
	}
	return
}

// SetConditions attaches the volume force conditions to every element
func (m *Mesh) SetConditions(conds []*discret.Condition) {
	for _, ele := range m.Elements {
		ele.Conditions = conds
	}
}

// NodalVector fills a global vector from a function of the nodal
// coordinates returning the nsd+1 values of a node
func (m *Mesh) NodalVector(f func(x []float64) []float64) (v *mat.VecDense) {
	v = mat.NewVecDense(m.NumDof, nil)
	for id, x := range m.Coords {
		for k, val := range f(x) {
			if k > m.Nsd {
				break
			}
			v.SetVec(id*(m.Nsd+1)+k, val)
		}
	}
	return
}
