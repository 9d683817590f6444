// Package stab computes the residual-based stabilization parameters and the
// Smagorinsky type subgrid viscosities of the fluid element.
package stab

import (
	"fmt"
	"math"
	"strings"

	"github.com/slfuchs/4C-sub001/utils"
	"gonum.org/v1/gonum/mat"
)

// TauType selects the closed form used for the stabilization parameters
type TauType uint8

const (
	TaylorHughesZarins TauType = iota
	TaylorHughesZarinsWoDt
	TaylorHughesZarinsWhitingJansen
	TaylorHughesZarinsWhitingJansenWoDt
	TaylorHughesZarinsScaled
	TaylorHughesZarinsScaledWoDt
	FrancaBarrenecheaValentinFreyWall
	FrancaBarrenecheaValentinFreyWallWoDt
	ShakibHughesCodina
	ShakibHughesCodinaWoDt
	Codina
	CodinaWoDt
	FrancaMadureiraValentin
	FrancaMadureiraValentinWoDt
	numTauTypes
)

var tauNames = [numTauTypes]string{
	"taylor_hughes_zarins",
	"taylor_hughes_zarins_wo_dt",
	"taylor_hughes_zarins_whiting_jansen",
	"taylor_hughes_zarins_whiting_jansen_wo_dt",
	"taylor_hughes_zarins_scaled",
	"taylor_hughes_zarins_scaled_wo_dt",
	"franca_barrenechea_valentin_frey_wall",
	"franca_barrenechea_valentin_frey_wall_wo_dt",
	"shakib_hughes_codina",
	"shakib_hughes_codina_wo_dt",
	"codina",
	"codina_wo_dt",
	"franca_madureira_valentin",
	"franca_madureira_valentin_wo_dt",
}

func (tt TauType) String() string {
	if tt < numTauTypes {
		return tauNames[tt]
	}
	return fmt.Sprintf("TauType(%d)", uint8(tt))
}

func ParseTauType(name string) (tt TauType, err error) {
	label := strings.ToLower(strings.TrimSpace(name))
	for i, n := range tauNames {
		if n == label {
			return TauType(i), nil
		}
	}
	err = utils.NewConfigurationError("unknown stabilization parameter definition %q", name)
	return
}

// WithoutDt reports whether the artificial time reaction is left out
func (tt TauType) WithoutDt() bool {
	switch tt {
	case TaylorHughesZarinsWoDt, TaylorHughesZarinsWhitingJansenWoDt, TaylorHughesZarinsScaledWoDt,
		FrancaBarrenecheaValentinFreyWallWoDt, ShakibHughesCodinaWoDt, CodinaWoDt, FrancaMadureiraValentinWoDt:
		return true
	}
	return false
}

func (tt TauType) isTHZ() bool { return tt <= TaylorHughesZarinsScaledWoDt }

// Tau holds the stabilization parameters: Mu weights the SUPG type terms,
// Mp the PSPG type terms and C the continuity (grad-div) term.
type Tau struct {
	Mu, Mp, C float64
}

// Input gathers the point data entering the stabilization parameters
type Input struct {
	Vel        []float64  // convective velocity
	Dens       float64    // density at n+αF (n+1)
	Visc       float64    // effective dynamic viscosity
	ReaCoeff   float64    // physical reaction coefficient
	Vol        float64    // element volume
	Derxy      *mat.Dense // physical shape derivatives, nsd x nen
	Xji        *mat.Dense // inverse jacobian, Xji(j,k) = dξ_k/dx_j
	Mk         float64    // element order constant
	Dt         float64
	TimeFac    float64
	Stationary bool
}

func (in *Input) velNorm() (norm float64) {
	for _, v := range in.Vel {
		norm += v * v
	}
	return math.Sqrt(norm)
}

// sigmaTot adds the artificial reaction of the time discretization
func (in *Input) sigmaTot(tt TauType) (sigma float64) {
	sigma = in.ReaCoeff
	if tt.WithoutDt() || in.Stationary {
		return
	}
	if tt.isTHZ() {
		sigma += 1 / in.Dt
	} else {
		sigma += 1 / in.TimeFac
	}
	return
}

// Compute evaluates the selected parameter family
func Compute(tt TauType, in Input) (tau Tau, err error) {
	if !(in.Visc > 0) || !(in.Dens > 0) {
		return tau, utils.NewMaterialError("stabilization", "non-positive viscosity %g or density %g", in.Visc, in.Dens)
	}
	var (
		sigma = in.sigmaTot(tt)
		vnorm = in.velNorm()
		dens  = in.Dens
		visc  = in.Visc
		mk    = in.Mk
	)
	switch tt {
	case TaylorHughesZarins, TaylorHughesZarinsWoDt,
		TaylorHughesZarinsWhitingJansen, TaylorHughesZarinsWhitingJansenWoDt,
		TaylorHughesZarinsScaled, TaylorHughesZarinsScaledWoDt:
		const c1 = 4.
		var (
			c3                 = 12. / mk
			G, g               = Metric(in.Xji)
			nsd, _             = G.Dims()
			normG, Gnormu, trG float64
			gg                 float64
		)
		for i := 0; i < nsd; i++ {
			trG += G.At(i, i)
			gg += g[i] * g[i]
			for j := 0; j < nsd; j++ {
				normG += G.At(i, j) * G.At(i, j)
				Gnormu += in.Vel[i] * G.At(i, j) * in.Vel[j]
			}
		}
		tau.Mu = 1 / math.Sqrt(c1*dens*dens*sigma*sigma+dens*dens*Gnormu+c3*visc*visc*normG)
		tau.Mp = tau.Mu
		switch tt {
		case TaylorHughesZarinsWhitingJansen, TaylorHughesZarinsWhitingJansenWoDt:
			tau.C = 1 / (8 * tau.Mp * gg)
		case TaylorHughesZarinsScaled, TaylorHughesZarinsScaledWoDt:
			tau.C = 1 / (3 * tau.Mp * trG)
		default:
			tau.C = 1 / (tau.Mp * trG)
		}

	case FrancaBarrenecheaValentinFreyWall, FrancaBarrenecheaValentinFreyWallWoDt:
		var (
			strle = StreamLength(in.Vel, in.Derxy, in.Vol)
			hk    = VolumeEquivalentDiameter(in.Vol, len(in.Vel))
			re12  = mk * dens * vnorm * hk / (2 * visc)
		)
		// h²ρσ max(re_1,1) = max(4μ/mk, h²ρσ) and 4μ/mk max(re_2,1) = max(4μ/mk, 2ρ|u|h)
		switched := func(h float64) float64 {
			return h * h / (math.Max(4*visc/mk, h*h*dens*sigma) + math.Max(4*visc/mk, 2*dens*vnorm*h))
		}
		tau.Mu = switched(strle)
		tau.Mp = switched(hk)
		tau.C = dens * vnorm * hk * 0.5 * math.Min(1, re12)

	case ShakibHughesCodina, ShakibHughesCodinaWoDt:
		const (
			c1 = 4.
			c2 = 4.
		)
		var (
			c3    = 4. / (mk * mk)
			strle = StreamLength(in.Vel, in.Derxy, in.Vol)
			hk    = VolumeEquivalentDiameter(in.Vol, len(in.Vel))
		)
		shc := func(h float64) float64 {
			return 1 / math.Sqrt(c1*dens*dens*sigma*sigma+c2*dens*dens*vnorm*vnorm/(h*h)+c3*visc*visc/(h*h*h*h))
		}
		tau.Mu = shc(strle)
		tau.Mp = shc(hk)
		ch := 0.5 * dens * vnorm * hk
		tau.C = math.Sqrt(visc*visc + ch*ch)

	case Codina, CodinaWoDt:
		const (
			c1 = 1.
			c2 = 2.
		)
		var (
			c3    = 4. / mk
			strle = StreamLength(in.Vel, in.Derxy, in.Vol)
			hk    = VolumeEquivalentDiameter(in.Vol, len(in.Vel))
		)
		codina := func(h float64) float64 {
			return 1 / (c1*dens*sigma + c2*dens*vnorm/h + c3*visc/(h*h))
		}
		tau.Mu = codina(strle)
		tau.Mp = codina(hk)
		tau.C = visc + 0.5*dens*vnorm*hk

	case FrancaMadureiraValentin, FrancaMadureiraValentinWoDt:
		hk := VolumeEquivalentDiameter(in.Vol, len(in.Vel))
		// h²ρσ max(re_11,1) = max(2μ/mk, h²ρσ)
		tau.Mp = hk * hk / (math.Max(2*visc/mk, hk*hk*dens*sigma) + 2*visc/mk)
		tau.Mu = tau.Mp
		tau.C = 0

	default:
		err = utils.NewConfigurationError("unknown stabilization parameter definition %s", tt)
	}
	return
}

// Metric returns G_ij = Σ_k dξ_k/dx_i dξ_k/dx_j and g_i = Σ_k dξ_k/dx_i
func Metric(xji *mat.Dense) (G *mat.Dense, g []float64) {
	nsd, _ := xji.Dims()
	G = mat.NewDense(nsd, nsd, nil)
	G.Mul(xji, xji.T())
	g = make([]float64, nsd)
	for i := 0; i < nsd; i++ {
		for k := 0; k < nsd; k++ {
			g[i] += xji.At(i, k)
		}
	}
	return
}

// VolumeEquivalentDiameter is the diameter of the circle (2D) or sphere (3D)
// with the element's measure
func VolumeEquivalentDiameter(vol float64, nsd int) float64 {
	switch nsd {
	case 3:
		return math.Cbrt(6 * vol / math.Pi)
	case 2:
		return math.Sqrt(4 * vol / math.Pi)
	default:
		return vol
	}
}

// StreamLength is the element length in flow direction (Tezduyar),
// h_u = 2|u| / Σ_a |u·∇N_a|. It falls back to the volume equivalent diameter
// for vanishing velocity.
func StreamLength(vel []float64, derxy *mat.Dense, vol float64) float64 {
	var vnorm float64
	for _, v := range vel {
		vnorm += v * v
	}
	vnorm = math.Sqrt(vnorm)
	if vnorm < 1.e-14 {
		return VolumeEquivalentDiameter(vol, len(vel))
	}
	_, nen := derxy.Dims()
	var sum float64
	for a := 0; a < nen; a++ {
		var dot float64
		for i, v := range vel {
			dot += v * derxy.At(i, a)
		}
		sum += math.Abs(dot)
	}
	if sum < 1.e-14 {
		return VolumeEquivalentDiameter(vol, len(vel))
	}
	return 2 * vnorm / sum
}
