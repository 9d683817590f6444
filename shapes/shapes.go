// Package shapes implements the reference shape functions of the supported
// element topologies, including their first and second derivatives with
// respect to the reference coordinates.
package shapes

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Evaluator computes shape functions for one element type at a reference point.
//
// Storage convention: funct[a] = N_a, deriv.At(i, a) = dN_a/dξ_i and
// deriv2.At(Deriv2Index(nsd, i, j), a) = d²N_a/dξ_i dξ_j. deriv2 may be nil.
type Evaluator interface {
	Kind() ShapeKind
	Dim() int
	NumNodes() int
	Eval(xi []float64, funct []float64, deriv, deriv2 *mat.Dense)
}

// New returns the evaluator for a polynomial shape. NURBS shapes need the
// cell data and are built with NewNurbs.
func New(kind ShapeKind) (ev Evaluator, err error) {
	switch kind {
	case Line2, Line3, Quad4, Quad9, Hex8, Hex27:
		ev = &lagrangeTensor{kind: kind, nodes: NodeCoords(kind)}
	case Quad8, Hex20:
		ev = &serendipity{kind: kind, nodes: NodeCoords(kind)}
	case Tri3, Tri6, Tet4, Tet10:
		ev = newBarycentric(kind)
	case Wedge6:
		ev = &wedge{}
	case Pyramid5:
		ev = &pyramid{}
	case Nurbs4, Nurbs9, Nurbs8, Nurbs27:
		err = fmt.Errorf("shape %s needs knot vectors and weights, use NewNurbs", kind)
	default:
		err = fmt.Errorf("unsupported shape kind %s", kind)
	}
	return
}

// NewWorkspace allocates the output buffers for an evaluator
func NewWorkspace(ev Evaluator) (funct []float64, deriv, deriv2 *mat.Dense) {
	var (
		nen = ev.NumNodes()
		nsd = ev.Dim()
	)
	funct = make([]float64, nen)
	deriv = mat.NewDense(nsd, nen, nil)
	deriv2 = mat.NewDense(NumDeriv2(nsd), nen, nil)
	return
}

// NodeCoords returns the reference coordinates of the nodes of a polynomial
// shape, one row per node. NURBS shapes have no interpolatory nodes.
func NodeCoords(kind ShapeKind) (c [][]float64) {
	switch kind {
	case Line2:
		c = [][]float64{{-1}, {1}}
	case Line3:
		c = [][]float64{{-1}, {1}, {0}}
	case Quad4:
		c = quadCorners()
	case Quad8:
		c = append(quadCorners(), quadMids()...)
	case Quad9:
		c = append(append(quadCorners(), quadMids()...), []float64{0, 0})
	case Tri3:
		c = [][]float64{{0, 0}, {1, 0}, {0, 1}}
	case Tri6:
		c = [][]float64{{0, 0}, {1, 0}, {0, 1}, {0.5, 0}, {0.5, 0.5}, {0, 0.5}}
	case Hex8:
		c = hexCorners()
	case Hex20:
		c = append(hexCorners(), hexEdgeMids()...)
	case Hex27:
		c = append(append(hexCorners(), hexEdgeMids()...), hexFaceAndCenter()...)
	case Tet4:
		c = [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	case Tet10:
		c = [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
			{0.5, 0, 0}, {0.5, 0.5, 0}, {0, 0.5, 0},
			{0, 0, 0.5}, {0.5, 0, 0.5}, {0, 0.5, 0.5}}
	case Wedge6:
		c = [][]float64{{0, 0, -1}, {1, 0, -1}, {0, 1, -1}, {0, 0, 1}, {1, 0, 1}, {0, 1, 1}}
	case Pyramid5:
		c = [][]float64{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}, {0, 0, 1}}
	}
	return
}

func quadCorners() [][]float64 {
	return [][]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
}

func quadMids() [][]float64 {
	return [][]float64{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
}

func hexCorners() [][]float64 {
	return [][]float64{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
}

func hexEdgeMids() [][]float64 {
	return [][]float64{
		{0, -1, -1}, {1, 0, -1}, {0, 1, -1}, {-1, 0, -1},
		{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
		{0, -1, 1}, {1, 0, 1}, {0, 1, 1}, {-1, 0, 1},
	}
}

func hexFaceAndCenter() [][]float64 {
	return [][]float64{
		{0, 0, -1}, {0, -1, 0}, {1, 0, 0}, {0, 1, 0}, {-1, 0, 0}, {0, 0, 1},
		{0, 0, 0},
	}
}
