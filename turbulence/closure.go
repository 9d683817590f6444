// Package turbulence implements the large eddy simulation closures of the
// fluid element: Smagorinsky, dynamic Smagorinsky, scale similarity and the
// mixed model, plus the fine-scale Smagorinsky viscosity of the
// variational multiscale formulation.
package turbulence

import (
	"fmt"
	"math"
	"strings"

	"github.com/slfuchs/4C-sub001/stab"
	"github.com/slfuchs/4C-sub001/utils"
	"gonum.org/v1/gonum/mat"
)

type Model uint8

const (
	None Model = iota
	Smagorinsky
	DynamicSmagorinsky
	ScaleSimilarity
	MixedScaleSimilarityEddyViscosity
)

var modelNames = map[Model]string{
	None:                              "none",
	Smagorinsky:                       "smagorinsky",
	DynamicSmagorinsky:                "dynamic_smagorinsky",
	ScaleSimilarity:                   "scale_similarity",
	MixedScaleSimilarityEddyViscosity: "mixed_scale_similarity_eddy_viscosity",
}

func (m Model) String() string {
	if name, ok := modelNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Model(%d)", uint8(m))
}

func ParseModel(name string) (m Model, err error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if label == "" {
		return None, nil
	}
	for model, n := range modelNames {
		if n == label {
			return model, nil
		}
	}
	err = utils.NewConfigurationError("unknown turbulence model %q", name)
	return
}

// EddyViscosity reports whether the model adds an all-scale subgrid viscosity
func (m Model) EddyViscosity() bool {
	return m == Smagorinsky || m == DynamicSmagorinsky || m == MixedScaleSimilarityEddyViscosity
}

// Similarity reports whether the model needs the filtered fields
func (m Model) Similarity() bool {
	return m == ScaleSimilarity || m == MixedScaleSimilarityEddyViscosity
}

// SimilarityForm selects how the subgrid stress of the scale similarity
// model enters the momentum equation. Only the divergence form is active;
// the convective and partially integrated forms are kept as documented
// alternatives and rejected at evaluation.
type SimilarityForm uint8

const (
	DivergenceForm SimilarityForm = iota
	ConvectiveForm
	PartiallyIntegratedForm
)

// Settings is the turbulence model configuration
type Settings struct {
	Model             Model
	FineScale         bool    // fine-scale Smagorinsky subgrid viscosity
	Cs                float64 // Smagorinsky constant
	CsFs              float64 // fine-scale Smagorinsky constant
	Cl                float64 // scale similarity constant
	Form              SimilarityForm
	VanDriest         bool
	ChannelHalfHeight float64
	Utau              float64   // friction velocity of the channel flow
	NormalDir         int       // wall normal direction of the channel
	Planes            []float64 // layer boundaries along NormalDir for the statistics
}

// Closure holds the inputs and results of the subgrid viscosity evaluation
// at one point
type Closure struct {
	Settings *Settings
	// Inputs
	Nsd       int
	Vol       float64
	Dens      float64
	Visc      float64    // molecular dynamic viscosity
	VelGrad   mat.Matrix // grad(i,j) = du_i/dx_j at n+αF
	FsVelGrad mat.Matrix // fine-scale velocity gradient, may be nil
	CsDeltaSq float64    // element value of the dynamic procedure
	WallCoord float64    // element center coordinate along NormalDir

	// Results
	Delta       float64
	Damping     float64
	SgVisc      float64 // all-scale subgrid viscosity
	FsSgVisc    float64 // fine-scale subgrid viscosity
	RateOfStr   float64
	FsRateOfStr float64
}

// ComputeDamping evaluates the van Driest factor from the distance to the
// nearest channel wall
func (c *Closure) ComputeDamping() {
	c.Damping = 1
	s := c.Settings
	if !s.VanDriest || s.Model != Smagorinsky {
		return
	}
	var (
		wallDist = s.ChannelHalfHeight - math.Abs(c.WallCoord)
		yplus    = wallDist * s.Utau * c.Dens / c.Visc
	)
	c.Damping = stab.VanDriestDamping(math.Max(yplus, 0))
}

// Compute evaluates the all-scale and fine-scale subgrid viscosities
func (c *Closure) Compute() (err error) {
	var s = c.Settings
	c.Delta = stab.FilterWidth(c.Vol, c.Nsd)
	c.SgVisc, c.FsSgVisc = 0, 0
	if s.Model.EddyViscosity() {
		c.RateOfStr = stab.RateOfStrain(c.VelGrad)
		switch s.Model {
		case Smagorinsky, MixedScaleSimilarityEddyViscosity:
			c.ComputeDamping()
			c.SgVisc = stab.SmagorinskyViscosity(s.Cs*c.Damping, c.Delta, c.RateOfStr, c.Dens)
		case DynamicSmagorinsky:
			c.SgVisc = stab.DynamicSmagorinskyViscosity(c.CsDeltaSq, c.RateOfStr, c.Dens)
		}
	}
	if s.FineScale {
		if c.FsVelGrad == nil {
			return utils.NewConfigurationError("fine-scale subgrid viscosity needs the fine-scale velocity")
		}
		c.FsRateOfStr = stab.RateOfStrain(c.FsVelGrad)
		c.FsSgVisc = stab.SmagorinskyViscosity(s.CsFs, c.Delta, c.FsRateOfStr, c.Dens)
	}
	return
}

// SimilarityDivergence returns div(R̄ - ū⊗ū) for the filtered velocity ū
// with gradient fvelGrad(i,j) = dū_i/dx_j and the divergence of the filtered
// Reynolds stress reystrDiv_i = Σ_j dR̄_ij/dx_j.
func SimilarityDivergence(form SimilarityForm, fvel []float64, fvelGrad mat.Matrix, reystrDiv []float64) (div []float64, err error) {
	if form != DivergenceForm {
		return nil, utils.NewConfigurationError("scale similarity form %d is not active, use the divergence form", form)
	}
	nsd := len(fvel)
	div = make([]float64, nsd)
	var fdiv float64
	for j := 0; j < nsd; j++ {
		fdiv += fvelGrad.At(j, j)
	}
	for i := 0; i < nsd; i++ {
		conv := 0.
		for j := 0; j < nsd; j++ {
			conv += fvel[j] * fvelGrad.At(i, j)
		}
		div[i] = reystrDiv[i] - conv - fvel[i]*fdiv
	}
	return
}
