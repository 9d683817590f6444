package shapes

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// NurbsCell holds the isogeometric data of one element (knot span cell).
//
// Knots[d] is the local knot vector of direction d with 2*p+2 entries; the
// element occupies the span [Knots[d][p], Knots[d][p+1]]. Weights are ordered
// with the first direction running fastest.
type NurbsCell struct {
	Knots   [][]float64
	Weights []float64
}

type nurbs struct {
	kind ShapeKind
	cell *NurbsCell
	nsd  int
	p    int
}

// NewNurbs returns the rational basis evaluator of one NURBS cell
func NewNurbs(kind ShapeKind, cell *NurbsCell) (ev Evaluator, err error) {
	if !kind.IsNurbs() {
		return nil, fmt.Errorf("shape %s is not a NURBS shape", kind)
	}
	if cell == nil {
		return nil, fmt.Errorf("shape %s requires knot vectors and weights", kind)
	}
	var (
		nsd = kind.Dim()
		p   = kind.Degree()
	)
	if len(cell.Knots) != nsd {
		return nil, fmt.Errorf("shape %s: expected %d knot vectors, got %d", kind, nsd, len(cell.Knots))
	}
	for d, kv := range cell.Knots {
		if len(kv) != 2*p+2 {
			return nil, fmt.Errorf("shape %s: knot vector %d has %d entries, need %d", kind, d, len(kv), 2*p+2)
		}
		if kv[p+1]-kv[p] <= 0 {
			return nil, fmt.Errorf("shape %s: knot span %d has zero length", kind, d)
		}
	}
	if len(cell.Weights) != kind.NumNodes() {
		return nil, fmt.Errorf("shape %s: expected %d weights, got %d", kind, kind.NumNodes(), len(cell.Weights))
	}
	for i, w := range cell.Weights {
		if w <= 0 {
			return nil, fmt.Errorf("shape %s: weight %d is not positive (%g)", kind, i, w)
		}
	}
	return &nurbs{kind: kind, cell: cell, nsd: nsd, p: p}, nil
}

func (nb *nurbs) Kind() ShapeKind { return nb.kind }
func (nb *nurbs) Dim() int        { return nb.nsd }
func (nb *nurbs) NumNodes() int   { return nb.kind.NumNodes() }

func (nb *nurbs) Eval(xi []float64, funct []float64, deriv, deriv2 *mat.Dense) {
	var (
		nsd    = nb.nsd
		p      = nb.p
		nen    = nb.NumNodes()
		n1d    = p + 1
		B, dB  [3][3]float64 // [direction][local function]
		ddB    [3][3]float64
		W      float64
		dW     [3]float64
		ddW    [3][3]float64
		wB     = make([]float64, nen)
		wdB    = make([][3]float64, nen)
		wddB   = make([][3][3]float64, nen)
		idx    [3]int
		factor [3]float64
	)
	for d := 0; d < nsd; d++ {
		var (
			kv  = nb.cell.Knots[d]
			h   = kv[p+1] - kv[p]
			u   = kv[p] + 0.5*(xi[d]+1)*h
			jac = 0.5 * h
		)
		ders := bsplineDerivs(p, kv, u, 2)
		for j := 0; j < n1d; j++ {
			B[d][j] = ders[0][j]
			dB[d][j] = ders[1][j] * jac
			ddB[d][j] = ders[2][j] * jac * jac
		}
	}
	for a := 0; a < nen; a++ {
		rest := a
		for d := 0; d < nsd; d++ {
			idx[d] = rest % n1d
			rest /= n1d
		}
		w := nb.cell.Weights[a]
		for d := 0; d < nsd; d++ {
			factor[d] = B[d][idx[d]]
		}
		wB[a] = w * productExcept(factor[:nsd], -1, -1)
		W += wB[a]
		for i := 0; i < nsd; i++ {
			wdB[a][i] = w * dB[i][idx[i]] * productExcept(factor[:nsd], i, -1)
			dW[i] += wdB[a][i]
			wddB[a][i][i] = w * ddB[i][idx[i]] * productExcept(factor[:nsd], i, -1)
			ddW[i][i] += wddB[a][i][i]
			for j := i + 1; j < nsd; j++ {
				v := w * dB[i][idx[i]] * dB[j][idx[j]] * productExcept(factor[:nsd], i, j)
				wddB[a][i][j], wddB[a][j][i] = v, v
				ddW[i][j] += v
				ddW[j][i] += v
			}
		}
	}
	for a := 0; a < nen; a++ {
		var (
			R  = wB[a] / W
			dR [3]float64
		)
		funct[a] = R
		for i := 0; i < nsd; i++ {
			dR[i] = (wdB[a][i] - R*dW[i]) / W
			if deriv != nil {
				deriv.Set(i, a, dR[i])
			}
		}
		if deriv2 != nil {
			for i := 0; i < nsd; i++ {
				for j := i; j < nsd; j++ {
					v := (wddB[a][i][j] - dR[i]*dW[j] - dR[j]*dW[i] - R*ddW[i][j]) / W
					deriv2.Set(Deriv2Index(nsd, i, j), a, v)
				}
			}
		}
	}
}

// bsplineDerivs evaluates the p+1 non-zero B-spline functions of degree p and
// their derivatives up to order nd on the span [U[p], U[p+1]] of the local
// knot vector U (Piegl & Tiller, algorithm A2.3). ders[k][j] is the k-th
// derivative of the j-th function; derivatives of order > p are zero.
func bsplineDerivs(p int, U []float64, u float64, nd int) (ders [3][3]float64) {
	var (
		i           = p
		ndu         [3][3]float64
		left, right [3]float64
		a           [2][3]float64
	)
	ndu[0][0] = 1
	for j := 1; j <= p; j++ {
		left[j] = u - U[i+1-j]
		right[j] = U[i+j] - u
		saved := 0.
		for r := 0; r < j; r++ {
			ndu[j][r] = right[r+1] + left[j-r]
			temp := ndu[r][j-1] / ndu[j][r]
			ndu[r][j] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		ndu[j][j] = saved
	}
	for j := 0; j <= p; j++ {
		ders[0][j] = ndu[j][p]
	}
	if nd > p {
		nd = p
	}
	for r := 0; r <= p; r++ {
		s1, s2 := 0, 1
		a[0][0] = 1
		for k := 1; k <= nd; k++ {
			var (
				d      float64
				rk, pk = r - k, p - k
				j1, j2 int
			)
			if r >= k {
				a[s2][0] = a[s1][0] / ndu[pk+1][rk]
				d = a[s2][0] * ndu[rk][pk]
			}
			if rk >= -1 {
				j1 = 1
			} else {
				j1 = -rk
			}
			if r-1 <= pk {
				j2 = k - 1
			} else {
				j2 = p - r
			}
			for j := j1; j <= j2; j++ {
				a[s2][j] = (a[s1][j] - a[s1][j-1]) / ndu[pk+1][rk+j]
				d += a[s2][j] * ndu[rk+j][pk]
			}
			if r <= pk {
				a[s2][k] = -a[s1][k-1] / ndu[pk+1][r]
				d += a[s2][k] * ndu[r][pk]
			}
			ders[k][r] = d
			s1, s2 = s2, s1
		}
	}
	fac := float64(p)
	for k := 1; k <= nd; k++ {
		for j := 0; j <= p; j++ {
			ders[k][j] *= fac
		}
		fac *= float64(p - k)
	}
	return
}

// UniformCell returns a NURBS cell with open uniform knots on [0,1] and unit
// weights, i.e. a B-spline cell reproducing the Bernstein basis.
func UniformCell(kind ShapeKind) (cell *NurbsCell) {
	var (
		nsd = kind.Dim()
		p   = kind.Degree()
	)
	cell = &NurbsCell{Knots: make([][]float64, nsd), Weights: make([]float64, kind.NumNodes())}
	for d := 0; d < nsd; d++ {
		kv := make([]float64, 2*p+2)
		for j := p + 1; j < len(kv); j++ {
			kv[j] = 1
		}
		cell.Knots[d] = kv
	}
	for i := range cell.Weights {
		cell.Weights[i] = 1
	}
	return
}
