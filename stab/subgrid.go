package stab

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// VanDriestA is the damping constant A⁺ of the van Driest wall function
const VanDriestA = 26.

// FilterWidth is the Smagorinsky filter width Δ, the cube (square) root of
// the element volume (area)
func FilterWidth(vol float64, nsd int) float64 {
	switch nsd {
	case 3:
		return math.Cbrt(vol)
	case 2:
		return math.Sqrt(vol)
	default:
		return vol
	}
}

// RateOfStrain returns sqrt(2 ε:ε) with ε = (∇u + ∇uᵀ)/2, grad(i,j) = du_i/dx_j
func RateOfStrain(grad mat.Matrix) float64 {
	var (
		nsd, _ = grad.Dims()
		sum    float64
	)
	for i := 0; i < nsd; i++ {
		for j := 0; j < nsd; j++ {
			eps := 0.5 * (grad.At(i, j) + grad.At(j, i))
			sum += eps * eps
		}
	}
	return math.Sqrt(2 * sum)
}

// VanDriestDamping is 1 - exp(-y⁺/A⁺)
func VanDriestDamping(yplus float64) float64 {
	return 1 - math.Exp(-yplus/VanDriestA)
}

// SmagorinskyViscosity is ρ (Cs Δ)² |ε|
func SmagorinskyViscosity(cs, delta, rate, dens float64) float64 {
	return dens * cs * cs * delta * delta * rate
}

// DynamicSmagorinskyViscosity uses the element value Cs·Δ² of the dynamic
// procedure; negative values are clipped to zero.
func DynamicSmagorinskyViscosity(csDeltaSq, rate, dens float64) float64 {
	return dens * math.Max(csDeltaSq, 0) * rate
}
