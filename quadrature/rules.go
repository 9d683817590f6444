// Package quadrature provides Gauss integration rules on the reference shapes.
// Simplex, pyramid and wedge rules are built from Gauss-Jacobi rules in
// collapsed coordinates.
package quadrature

import (
	"fmt"

	"github.com/slfuchs/4C-sub001/shapes"
	"gonum.org/v1/gonum/floats"
)

// Rule is a set of integration points in reference coordinates
type Rule struct {
	Points  [][]float64
	Weights []float64
}

func (r Rule) NumPoints() int { return len(r.Weights) }

// Measure integrates 1 over the reference shape
func (r Rule) Measure() float64 { return floats.Sum(r.Weights) }

// ForShape returns the default rule of a shape: degree+1 points per direction
func ForShape(kind shapes.ShapeKind) (r Rule, err error) {
	return New(kind, kind.Degree()+1)
}

// New returns a rule with n points per (collapsed) direction
func New(kind shapes.ShapeKind, n int) (r Rule, err error) {
	if n < 1 {
		err = fmt.Errorf("quadrature for %s needs at least one point per direction, got %d", kind, n)
		return
	}
	switch kind {
	case shapes.Line2, shapes.Line3:
		r = tensorRule(1, n)
	case shapes.Quad4, shapes.Quad8, shapes.Quad9, shapes.Nurbs4, shapes.Nurbs9:
		r = tensorRule(2, n)
	case shapes.Hex8, shapes.Hex20, shapes.Hex27, shapes.Nurbs8, shapes.Nurbs27:
		r = tensorRule(3, n)
	case shapes.Tri3, shapes.Tri6:
		r = triangleRule(n)
	case shapes.Tet4, shapes.Tet10:
		r = tetRule(n)
	case shapes.Wedge6:
		r = wedgeRule(n)
	case shapes.Pyramid5:
		r = pyramidRule(n)
	default:
		err = fmt.Errorf("no quadrature rule for shape %s", kind)
	}
	return
}

// Centroid is the one-point rule at the element center
func Centroid(kind shapes.ShapeKind) Rule {
	return Rule{
		Points:  [][]float64{kind.Centroid()},
		Weights: []float64{kind.RefVolume()},
	}
}

func tensorRule(nsd, n int) (r Rule) {
	x, w := JacobiGQ(0, 0, n-1)
	var idx [3]int
	total := 1
	for d := 0; d < nsd; d++ {
		total *= n
	}
	for q := 0; q < total; q++ {
		rest := q
		for d := 0; d < nsd; d++ {
			idx[d] = rest % n
			rest /= n
		}
		var (
			pt = make([]float64, nsd)
			wt = 1.
		)
		for d := 0; d < nsd; d++ {
			pt[d] = x[idx[d]]
			wt *= w[idx[d]]
		}
		r.Points = append(r.Points, pt)
		r.Weights = append(r.Weights, wt)
	}
	return
}

// triangleRule maps the square (a,b) onto the unit triangle with
// r = (1+a)(1-b)/4, s = (1+b)/2; the factor (1-b) is carried by the Jacobi weight
func triangleRule(n int) (r Rule) {
	var (
		xa, wa = JacobiGQ(0, 0, n-1)
		xb, wb = JacobiGQ(1, 0, n-1)
	)
	for j := range xb {
		for i := range xa {
			a, b := xa[i], xb[j]
			r.Points = append(r.Points, []float64{(1 + a) * (1 - b) / 4, (1 + b) / 2})
			r.Weights = append(r.Weights, wa[i]*wb[j]/8)
		}
	}
	return
}

func tetRule(n int) (r Rule) {
	var (
		xa, wa = JacobiGQ(0, 0, n-1)
		xb, wb = JacobiGQ(1, 0, n-1)
		xc, wc = JacobiGQ(2, 0, n-1)
	)
	for k := range xc {
		for j := range xb {
			for i := range xa {
				a, b, c := xa[i], xb[j], xc[k]
				r.Points = append(r.Points, []float64{
					(1 + a) * (1 - b) * (1 - c) / 8,
					(1 + b) * (1 - c) / 4,
					(1 + c) / 2,
				})
				r.Weights = append(r.Weights, wa[i]*wb[j]*wc[k]/64)
			}
		}
	}
	return
}

func wedgeRule(n int) (r Rule) {
	var (
		tri    = triangleRule(n)
		xl, wl = JacobiGQ(0, 0, n-1)
	)
	for k := range xl {
		for q, p := range tri.Points {
			r.Points = append(r.Points, []float64{p[0], p[1], xl[k]})
			r.Weights = append(r.Weights, tri.Weights[q]*wl[k])
		}
	}
	return
}

// pyramidRule collapses the cube onto the pyramid with r = a(1-t), s = b(1-t),
// t = (1+c)/2
func pyramidRule(n int) (r Rule) {
	var (
		xa, wa = JacobiGQ(0, 0, n-1)
		xc, wc = JacobiGQ(2, 0, n-1)
	)
	for k := range xc {
		t := (1 + xc[k]) / 2
		for j := range xa {
			for i := range xa {
				r.Points = append(r.Points, []float64{xa[i] * (1 - t), xa[j] * (1 - t), t})
				r.Weights = append(r.Weights, wa[i]*wa[j]*wc[k]/8)
			}
		}
	}
	return
}
