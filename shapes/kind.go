package shapes

import (
	"fmt"
	"strings"
)

// ShapeKind selects the reference shape of an element
type ShapeKind uint8

const (
	Unknown ShapeKind = iota
	// 1D elements
	Line2
	Line3
	// 2D elements
	Quad4
	Quad8
	Quad9
	Tri3
	Tri6
	Nurbs4 // bilinear NURBS patch cell
	Nurbs9 // biquadratic NURBS patch cell
	// 3D elements
	Hex8
	Hex20
	Hex27
	Tet4
	Tet10
	Wedge6
	Pyramid5
	Nurbs8  // trilinear NURBS patch cell
	Nurbs27 // triquadratic NURBS patch cell
)

var kindNames = map[ShapeKind]string{
	Unknown:  "unknown",
	Line2:    "line2",
	Line3:    "line3",
	Quad4:    "quad4",
	Quad8:    "quad8",
	Quad9:    "quad9",
	Tri3:     "tri3",
	Tri6:     "tri6",
	Nurbs4:   "nurbs4",
	Nurbs9:   "nurbs9",
	Hex8:     "hex8",
	Hex20:    "hex20",
	Hex27:    "hex27",
	Tet4:     "tet4",
	Tet10:    "tet10",
	Wedge6:   "wedge6",
	Pyramid5: "pyramid5",
	Nurbs8:   "nurbs8",
	Nurbs27:  "nurbs27",
}

func (k ShapeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// ParseShapeKind converts a name like "hex8" into a ShapeKind
func ParseShapeKind(name string) (k ShapeKind, err error) {
	label := strings.ToLower(strings.TrimSpace(name))
	for kind, n := range kindNames {
		if n == label && kind != Unknown {
			return kind, nil
		}
	}
	err = fmt.Errorf("unknown shape kind %q", name)
	return
}

// AllKinds lists every supported shape, ordered by dimension
func AllKinds() []ShapeKind {
	return []ShapeKind{
		Line2, Line3,
		Quad4, Quad8, Quad9, Tri3, Tri6, Nurbs4, Nurbs9,
		Hex8, Hex20, Hex27, Tet4, Tet10, Wedge6, Pyramid5, Nurbs8, Nurbs27,
	}
}

// Dim returns the spatial dimension of the reference shape
func (k ShapeKind) Dim() int {
	switch k {
	case Line2, Line3:
		return 1
	case Quad4, Quad8, Quad9, Tri3, Tri6, Nurbs4, Nurbs9:
		return 2
	case Hex8, Hex20, Hex27, Tet4, Tet10, Wedge6, Pyramid5, Nurbs8, Nurbs27:
		return 3
	default:
		return -1
	}
}

// NumNodes returns the number of nodes (control points for NURBS)
func (k ShapeKind) NumNodes() int {
	switch k {
	case Line2:
		return 2
	case Line3, Tri3:
		return 3
	case Quad4, Tet4, Nurbs4:
		return 4
	case Pyramid5:
		return 5
	case Tri6, Wedge6:
		return 6
	case Quad8, Hex8, Nurbs8:
		return 8
	case Quad9, Nurbs9:
		return 9
	case Tet10:
		return 10
	case Hex20:
		return 20
	case Hex27, Nurbs27:
		return 27
	default:
		return 0
	}
}

func (k ShapeKind) IsNurbs() bool {
	return k == Nurbs4 || k == Nurbs9 || k == Nurbs8 || k == Nurbs27
}

// IsSimplex is true for the straight-sided linear simplices
func (k ShapeKind) IsSimplex() bool {
	return k == Line2 || k == Tri3 || k == Tet4
}

// IsHigherOrder reports whether second derivatives of the shape functions
// do not vanish identically. Only the linear simplices have none.
func (k ShapeKind) IsHigherOrder() bool {
	return !k.IsSimplex() && k != Unknown
}

// Degree returns the polynomial degree per direction used for quadrature
func (k ShapeKind) Degree() int {
	switch k {
	case Line3, Quad8, Quad9, Tri6, Nurbs9, Hex20, Hex27, Tet10, Nurbs27:
		return 2
	default:
		return 1
	}
}

// Mk is the element-order constant used in the stabilization parameters:
// 1/3 for linear and 1/12 for quadratic elements
func (k ShapeKind) Mk() float64 {
	if k.Degree() == 2 {
		return 1. / 12.
	}
	return 1. / 3.
}

// NumDeriv2 is the number of independent second derivatives
func NumDeriv2(nsd int) int {
	return nsd * (nsd + 1) / 2
}

// Deriv2Index returns the storage row of d²/dξ_i dξ_j:
// 3D: rr, ss, tt, rs, rt, st; 2D: rr, ss, rs; 1D: rr
func Deriv2Index(nsd, i, j int) int {
	if i == j {
		return i
	}
	if i > j {
		i, j = j, i
	}
	switch nsd {
	case 2:
		return 2
	case 3:
		switch {
		case i == 0 && j == 1:
			return 3
		case i == 0 && j == 2:
			return 4
		default:
			return 5
		}
	}
	panic(fmt.Errorf("no mixed second derivative in %d dimensions", nsd))
}

// Centroid returns the reference coordinates of the element center
func (k ShapeKind) Centroid() []float64 {
	switch k {
	case Tri3, Tri6:
		return []float64{1. / 3., 1. / 3.}
	case Tet4, Tet10:
		return []float64{0.25, 0.25, 0.25}
	case Wedge6:
		return []float64{1. / 3., 1. / 3., 0}
	case Pyramid5:
		return []float64{0, 0, 0.25}
	default:
		return make([]float64, k.Dim())
	}
}

// RefVolume is the measure of the reference shape
func (k ShapeKind) RefVolume() float64 {
	switch k {
	case Line2, Line3:
		return 2
	case Quad4, Quad8, Quad9, Nurbs4, Nurbs9:
		return 4
	case Tri3, Tri6:
		return 0.5
	case Hex8, Hex20, Hex27, Nurbs8, Nurbs27:
		return 8
	case Tet4, Tet10:
		return 1. / 6.
	case Wedge6:
		return 1
	case Pyramid5:
		return 4. / 3.
	default:
		return 0
	}
}
