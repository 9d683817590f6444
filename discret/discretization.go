// Package discret is the thin view of the global discretization the element
// kernel needs: named state vectors, per-node auxiliary fields, the
// parameter list and element conditions.
package discret

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Discretization holds the named global state vectors of one evaluation
type Discretization struct {
	states map[string]*mat.VecDense
	fields map[string]*NodeField
}

func New() (dis *Discretization) {
	return &Discretization{
		states: make(map[string]*mat.VecDense),
		fields: make(map[string]*NodeField),
	}
}

func (dis *Discretization) SetState(name string, v *mat.VecDense) { dis.states[name] = v }

func (dis *Discretization) HasState(name string) (ok bool) {
	_, ok = dis.states[name]
	return
}

func (dis *Discretization) GetState(name string) (v *mat.VecDense, err error) {
	var ok bool
	if v, ok = dis.states[name]; !ok {
		err = fmt.Errorf("cannot get state vector %q", name)
	}
	return
}

func (dis *Discretization) ClearState() {
	dis.states = make(map[string]*mat.VecDense)
}

// StateNames lists the registered states in sorted order
func (dis *Discretization) StateNames() (names []string) {
	for name := range dis.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

func (dis *Discretization) SetField(name string, f *NodeField) { dis.fields[name] = f }

func (dis *Discretization) GetField(name string) (f *NodeField, ok bool) {
	f, ok = dis.fields[name]
	return
}

// Clone returns a discretization sharing nothing with the receiver
func (dis *Discretization) Clone() (c *Discretization) {
	c = New()
	for name, v := range dis.states {
		var cp mat.VecDense
		cp.CloneFromVec(v)
		c.states[name] = &cp
	}
	for name, f := range dis.fields {
		c.fields[name] = f
	}
	return
}

// ExtractMyValues gathers the entries of v addressed by the location vector
func ExtractMyValues(v mat.Vector, lm []int) (vals []float64, err error) {
	vals = make([]float64, len(lm))
	n := v.Len()
	for i, gid := range lm {
		if gid < 0 || gid >= n {
			return nil, fmt.Errorf("dof %d out of range [0,%d)", gid, n)
		}
		vals[i] = v.AtVec(gid)
	}
	return
}

// NodeField holds a fixed number of components per node, keyed by node id
type NodeField struct {
	NumComp int
	values  map[int][]float64
}

func NewNodeField(ncomp int) *NodeField {
	return &NodeField{NumComp: ncomp, values: make(map[int][]float64)}
}

func (f *NodeField) Set(node int, vals []float64) (err error) {
	if len(vals) != f.NumComp {
		return fmt.Errorf("node %d: expected %d components, got %d", node, f.NumComp, len(vals))
	}
	f.values[node] = append([]float64(nil), vals...)
	return
}

// Extract returns the element matrix ncomp x nen for the given nodes
func (f *NodeField) Extract(nodeIDs []int) (m *mat.Dense, err error) {
	m = mat.NewDense(f.NumComp, len(nodeIDs), nil)
	for a, id := range nodeIDs {
		vals, ok := f.values[id]
		if !ok {
			return nil, fmt.Errorf("node field has no values for node %d", id)
		}
		for c, v := range vals {
			m.Set(c, a, v)
		}
	}
	return
}
