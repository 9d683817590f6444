package shapes

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// lagrange1D returns the 1D Lagrange functions with derivatives. Index 0 is the
// node at -1, index 1 the node at +1 and, for the quadratic case, index 2 the
// node at 0.
func lagrange1D(degree int, x float64) (l, dl, ddl [3]float64) {
	if degree == 1 {
		l = [3]float64{0.5 * (1 - x), 0.5 * (1 + x), 0}
		dl = [3]float64{-0.5, 0.5, 0}
		return
	}
	l = [3]float64{0.5 * x * (x - 1), 0.5 * x * (x + 1), 1 - x*x}
	dl = [3]float64{x - 0.5, x + 0.5, -2 * x}
	ddl = [3]float64{1, 1, -2}
	return
}

func index1D(c float64) int {
	switch {
	case c < -0.5:
		return 0
	case c > 0.5:
		return 1
	default:
		return 2
	}
}

// lagrangeTensor covers the tensor-product Lagrange shapes: line2/3, quad4/9, hex8/27
type lagrangeTensor struct {
	kind  ShapeKind
	nodes [][]float64
}

func (lt *lagrangeTensor) Kind() ShapeKind { return lt.kind }
func (lt *lagrangeTensor) Dim() int        { return lt.kind.Dim() }
func (lt *lagrangeTensor) NumNodes() int   { return len(lt.nodes) }

func (lt *lagrangeTensor) Eval(xi []float64, funct []float64, deriv, deriv2 *mat.Dense) {
	var (
		nsd             = lt.Dim()
		l, dl, ddl      [3][3]float64
		val, dval, ddvl [3]float64
	)
	for i := 0; i < nsd; i++ {
		l[i], dl[i], ddl[i] = lagrange1D(lt.kind.Degree(), xi[i])
	}
	for a, c := range lt.nodes {
		for i := 0; i < nsd; i++ {
			k := index1D(c[i])
			val[i], dval[i], ddvl[i] = l[i][k], dl[i][k], ddl[i][k]
		}
		funct[a] = productExcept(val[:nsd], -1, -1)
		if deriv != nil {
			for i := 0; i < nsd; i++ {
				deriv.Set(i, a, dval[i]*productExcept(val[:nsd], i, -1))
			}
		}
		if deriv2 != nil {
			for i := 0; i < nsd; i++ {
				deriv2.Set(i, a, ddvl[i]*productExcept(val[:nsd], i, -1))
				for j := i + 1; j < nsd; j++ {
					deriv2.Set(Deriv2Index(nsd, i, j), a, dval[i]*dval[j]*productExcept(val[:nsd], i, j))
				}
			}
		}
	}
}

// productExcept multiplies all entries of v but the ones at skip1 and skip2
func productExcept(v []float64, skip1, skip2 int) (p float64) {
	p = 1
	for i, x := range v {
		if i == skip1 || i == skip2 {
			continue
		}
		p *= x
	}
	return
}

// serendipity covers quad8 and hex20
type serendipity struct {
	kind  ShapeKind
	nodes [][]float64
}

func (sp *serendipity) Kind() ShapeKind { return sp.kind }
func (sp *serendipity) Dim() int        { return sp.kind.Dim() }
func (sp *serendipity) NumNodes() int   { return len(sp.nodes) }

func (sp *serendipity) Eval(xi []float64, funct []float64, deriv, deriv2 *mat.Dense) {
	nsd := sp.Dim()
	scale := 1. / float64(int(1)<<uint(nsd))
	for a, c := range sp.nodes {
		var (
			lin  [3]float64
			zero = -1
		)
		for i := 0; i < nsd; i++ {
			lin[i] = 1 + xi[i]*c[i]
			if c[i] == 0 {
				zero = i
			}
		}
		if zero < 0 {
			// corner: N = 1/2^d * Π(1+ξ_i c_i) * (Σ ξ_i c_i - (d-1))
			sum := -float64(nsd - 1)
			for i := 0; i < nsd; i++ {
				sum += xi[i] * c[i]
			}
			funct[a] = scale * productExcept(lin[:nsd], -1, -1) * sum
			if deriv != nil {
				for i := 0; i < nsd; i++ {
					deriv.Set(i, a, scale*c[i]*productExcept(lin[:nsd], i, -1)*(sum+lin[i]))
				}
			}
			if deriv2 != nil {
				for i := 0; i < nsd; i++ {
					deriv2.Set(i, a, 2*scale*productExcept(lin[:nsd], i, -1))
					for j := i + 1; j < nsd; j++ {
						deriv2.Set(Deriv2Index(nsd, i, j), a,
							scale*c[i]*c[j]*productExcept(lin[:nsd], i, j)*(sum+lin[i]+lin[j]))
					}
				}
			}
			continue
		}
		// edge midpoint: N = 1/2^(d-1) * (1-ξ_k²) * Π_{i≠k}(1+ξ_i c_i)
		var (
			s2   = 2 * scale
			k    = zero
			bub  = 1 - xi[k]*xi[k]
			dbub = -2 * xi[k]
		)
		funct[a] = s2 * bub * productExcept(lin[:nsd], k, -1)
		if deriv != nil {
			for i := 0; i < nsd; i++ {
				if i == k {
					deriv.Set(i, a, s2*dbub*productExcept(lin[:nsd], k, -1))
				} else {
					deriv.Set(i, a, s2*bub*c[i]*productExcept(lin[:nsd], k, i))
				}
			}
		}
		if deriv2 != nil {
			for i := 0; i < nsd; i++ {
				if i == k {
					deriv2.Set(i, a, -2*s2*productExcept(lin[:nsd], k, -1))
				} else {
					deriv2.Set(i, a, 0)
				}
				for j := i + 1; j < nsd; j++ {
					var v float64
					switch {
					case i == k:
						v = s2 * dbub * c[j] * productExcept(lin[:nsd], k, j)
					case j == k:
						v = s2 * dbub * c[i] * productExcept(lin[:nsd], k, i)
					default:
						// both directions differ from k, so only one factor is left in 3D
						v = s2 * bub * c[i] * c[j]
						for m := 0; m < nsd; m++ {
							if m != i && m != j && m != k {
								v *= lin[m]
							}
						}
					}
					deriv2.Set(Deriv2Index(nsd, i, j), a, v)
				}
			}
		}
	}
}

// barycentric covers tri3, tri6, tet4 and tet10
type barycentric struct {
	kind ShapeKind
	nv   int      // number of vertices
	mids [][2]int // vertex pairs of the edge midpoints
}

func newBarycentric(kind ShapeKind) (b *barycentric) {
	b = &barycentric{kind: kind, nv: kind.Dim() + 1}
	switch kind {
	case Tri6:
		b.mids = [][2]int{{0, 1}, {1, 2}, {2, 0}}
	case Tet10:
		b.mids = [][2]int{{0, 1}, {1, 2}, {2, 0}, {0, 3}, {1, 3}, {2, 3}}
	}
	return
}

func (b *barycentric) Kind() ShapeKind { return b.kind }
func (b *barycentric) Dim() int        { return b.kind.Dim() }
func (b *barycentric) NumNodes() int   { return b.nv + len(b.mids) }

func (b *barycentric) Eval(xi []float64, funct []float64, deriv, deriv2 *mat.Dense) {
	var (
		nsd = b.Dim()
		L   [4]float64
		dL  [4][3]float64
	)
	L[0] = 1
	for i := 0; i < nsd; i++ {
		L[0] -= xi[i]
		L[i+1] = xi[i]
		dL[0][i] = -1
		dL[i+1][i] = 1
	}
	quadratic := len(b.mids) > 0
	for v := 0; v < b.nv; v++ {
		if !quadratic {
			funct[v] = L[v]
		} else {
			funct[v] = L[v] * (2*L[v] - 1)
		}
		for i := 0; i < nsd; i++ {
			if deriv != nil {
				if quadratic {
					deriv.Set(i, v, (4*L[v]-1)*dL[v][i])
				} else {
					deriv.Set(i, v, dL[v][i])
				}
			}
			if deriv2 != nil {
				for j := i; j < nsd; j++ {
					val := 0.
					if quadratic {
						val = 4 * dL[v][i] * dL[v][j]
					}
					deriv2.Set(Deriv2Index(nsd, i, j), v, val)
				}
			}
		}
	}
	for m, pq := range b.mids {
		var (
			a    = b.nv + m
			p, q = pq[0], pq[1]
		)
		funct[a] = 4 * L[p] * L[q]
		for i := 0; i < nsd; i++ {
			if deriv != nil {
				deriv.Set(i, a, 4*(dL[p][i]*L[q]+L[p]*dL[q][i]))
			}
			if deriv2 != nil {
				for j := i; j < nsd; j++ {
					deriv2.Set(Deriv2Index(nsd, i, j), a, 4*(dL[p][i]*dL[q][j]+dL[p][j]*dL[q][i]))
				}
			}
		}
	}
}

// wedge is the six-node prism: linear triangle times linear line in t
type wedge struct{}

func (w *wedge) Kind() ShapeKind { return Wedge6 }
func (w *wedge) Dim() int        { return 3 }
func (w *wedge) NumNodes() int   { return 6 }

func (w *wedge) Eval(xi []float64, funct []float64, deriv, deriv2 *mat.Dense) {
	var (
		r, s, t = xi[0], xi[1], xi[2]
		T       = [3]float64{1 - r - s, r, s}
		dTdr    = [3]float64{-1, 1, 0}
		dTds    = [3]float64{-1, 0, 1}
		l       = [2]float64{0.5 * (1 - t), 0.5 * (1 + t)}
		dl      = [2]float64{-0.5, 0.5}
	)
	for a := 0; a < 6; a++ {
		v, k := a%3, a/3
		funct[a] = T[v] * l[k]
		if deriv != nil {
			deriv.Set(0, a, dTdr[v]*l[k])
			deriv.Set(1, a, dTds[v]*l[k])
			deriv.Set(2, a, T[v]*dl[k])
		}
		if deriv2 != nil {
			deriv2.Set(0, a, 0)
			deriv2.Set(1, a, 0)
			deriv2.Set(2, a, 0)
			deriv2.Set(3, a, 0)
			deriv2.Set(4, a, dTdr[v]*dl[k])
			deriv2.Set(5, a, dTds[v]*dl[k])
		}
	}
}

// pyramid is the five-node pyramid with the rational base functions
//
//	N_a = 1/4 [(1+r r_a)(1+s s_a) - t + r_a s_a r s t/(1-t)],  N_4 = t
type pyramid struct{}

func (p *pyramid) Kind() ShapeKind { return Pyramid5 }
func (p *pyramid) Dim() int        { return 3 }
func (p *pyramid) NumNodes() int   { return 5 }

func (p *pyramid) Eval(xi []float64, funct []float64, deriv, deriv2 *mat.Dense) {
	var (
		r, s, t = xi[0], xi[1], xi[2]
		q       float64
		base    = quadCorners()
	)
	if math.Abs(1-t) > 1e-14 {
		q = 1 / (1 - t)
	}
	for a := 0; a < 4; a++ {
		var (
			ra, sa = base[a][0], base[a][1]
			rs     = ra * sa
		)
		funct[a] = 0.25 * ((1+r*ra)*(1+s*sa) - t + rs*r*s*t*q)
		if deriv != nil {
			deriv.Set(0, a, 0.25*(ra*(1+s*sa)+rs*s*t*q))
			deriv.Set(1, a, 0.25*(sa*(1+r*ra)+rs*r*t*q))
			deriv.Set(2, a, 0.25*(-1+rs*r*s*q*q))
		}
		if deriv2 != nil {
			deriv2.Set(0, a, 0)
			deriv2.Set(1, a, 0)
			deriv2.Set(2, a, 0.5*rs*r*s*q*q*q)
			deriv2.Set(3, a, 0.25*rs*q)
			deriv2.Set(4, a, 0.25*rs*s*q*q)
			deriv2.Set(5, a, 0.25*rs*r*q*q)
		}
	}
	funct[4] = t
	if deriv != nil {
		deriv.Set(0, 4, 0)
		deriv.Set(1, 4, 0)
		deriv.Set(2, 4, 1)
	}
	if deriv2 != nil {
		for k := 0; k < 6; k++ {
			deriv2.Set(k, 4, 0)
		}
	}
}
