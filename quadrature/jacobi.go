package quadrature

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// gamma0 is the integral of the Jacobi weight (1-x)^alpha (1+x)^beta over [-1,1]
func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

// JacobiGQ returns the N+1 Gauss-Jacobi nodes and weights for the weight
// function (1-x)^alpha (1+x)^beta, computed from the eigen decomposition of
// the Jacobi matrix (Golub-Welsch). Nodes are ascending.
func JacobiGQ(alpha, beta float64, N int) (x, w []float64) {
	if N == 0 {
		x = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		w = []float64{gamma0(alpha, beta)}
		return
	}
	var (
		h1 = make([]float64, N+1)
		JJ = mat.NewSymDense(N+1, nil)
	)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}
	// main diagonal: -(alpha^2-beta^2)/(h1+2)/h1
	fac := -(alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		JJ.SetSym(i, i, fac/(val*(val+2.)))
	}
	// Handle division by zero
	if alpha+beta < 1.e-15 {
		JJ.SetSym(0, 0, 0.)
	}
	// 1st upper diagonal
	for i := 0; i < N; i++ {
		ip1 := float64(i + 1)
		val := h1[i]
		d1 := 2. / (val + 2.)
		d1 *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
		JJ.SetSym(i, i+1, d1)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(nil)
	var VVr mat.Dense
	eig.VectorsTo(&VVr)
	w = make([]float64, N+1)
	g0 := gamma0(alpha, beta)
	for i := range w {
		v := VVr.At(0, i)
		w[i] = v * v * g0
	}
	return
}
