// Package material provides the constitutive laws consumed by the fluid
// element: effective viscosity, densities at the time levels of the scheme,
// the reaction coefficient and the low-Mach-number coupling factors.
package material

import (
	"math"

	"github.com/slfuchs/4C-sub001/utils"
)

// State is the point data a material law may depend on
type State struct {
	ScalarAF, ScalarAM, ScalarN float64 // temperature at n+αF (n+1), n+αM and n
	ShearRate                   float64 // sqrt(2 ε:ε) of the velocity at n+αF
	ThermPressAF                float64 // thermodynamic pressure at n+αF (n+1)
	ThermPressAM                float64 // thermodynamic pressure at n+αM
	ThermPressDt                float64 // time derivative of the thermodynamic pressure
	GenAlpha                    bool
}

// Params are the material coefficients at one point
type Params struct {
	Visc          float64 // dynamic viscosity
	DensN         float64 // density at n
	DensAF        float64 // density at n+αF (n+1)
	DensAM        float64 // density at n+αM (n+1)
	DensBody      float64 // density multiplying the body force
	ReaCoeff      float64 // reaction (Darcy) coefficient
	ScaConvFacAF  float64 // factor of the convective scalar term in the continuity residual
	ScaDtFac      float64 // factor of the scalar time derivative in the continuity residual
	ThermPressAdd float64 // -dP/dt / P
	LowMach       bool
}

type Material interface {
	Name() string
	Evaluate(s State) (p Params, err error)
}

func checkParams(name string, p Params) (err error) {
	switch {
	case !(p.Visc > 0):
		return utils.NewMaterialError(name, "non-positive viscosity %g", p.Visc)
	case !(p.DensAF > 0) || !(p.DensAM > 0) || !(p.DensN > 0):
		return utils.NewMaterialError(name, "non-positive density (n: %g, af: %g, am: %g)",
			p.DensN, p.DensAF, p.DensAM)
	case math.IsNaN(p.ReaCoeff) || p.ReaCoeff < 0:
		return utils.NewMaterialError(name, "invalid reaction coefficient %g", p.ReaCoeff)
	}
	return
}

// Newtonian is a constant viscosity, constant density fluid
type Newtonian struct {
	Viscosity, Density float64
}

func (m *Newtonian) Name() string { return "newtonian" }

func (m *Newtonian) Evaluate(s State) (p Params, err error) {
	p = Params{
		Visc:     m.Viscosity,
		DensN:    m.Density,
		DensAF:   m.Density,
		DensAM:   m.Density,
		DensBody: m.Density,
	}
	err = checkParams(m.Name(), p)
	return
}

// CarreauYasuda is the shear-thinning law
//
//	μ = μ∞ + (μ0 - μ∞) (1 + (λ γ̇)^a)^((n-1)/a)
type CarreauYasuda struct {
	Mu0, MuInf float64
	Lambda     float64
	A, N       float64
	Density    float64
}

func (m *CarreauYasuda) Name() string { return "carreau_yasuda" }

func (m *CarreauYasuda) Evaluate(s State) (p Params, err error) {
	if !(m.A > 0) {
		return p, utils.NewMaterialError(m.Name(), "exponent a must be positive, got %g", m.A)
	}
	visc := m.MuInf + (m.Mu0-m.MuInf)*math.Pow(1+math.Pow(m.Lambda*s.ShearRate, m.A), (m.N-1)/m.A)
	p = Params{
		Visc:     visc,
		DensN:    m.Density,
		DensAF:   m.Density,
		DensAM:   m.Density,
		DensBody: m.Density,
	}
	err = checkParams(m.Name(), p)
	return
}

// Sutherland is the ideal gas of the low-Mach-number formulation with the
// Sutherland viscosity law; the scalar is the temperature.
type Sutherland struct {
	RefVisc  float64 // viscosity at RefTemp
	RefTemp  float64
	SuthTemp float64 // Sutherland temperature
	GasConst float64 // specific gas constant
}

func (m *Sutherland) Name() string { return "sutherland" }

func (m *Sutherland) visc(T float64) float64 {
	return m.RefVisc * math.Pow(T/m.RefTemp, 1.5) * (m.RefTemp + m.SuthTemp) / (T + m.SuthTemp)
}

func (m *Sutherland) Evaluate(s State) (p Params, err error) {
	scalarN := s.ScalarN
	if scalarN == 0 {
		scalarN = s.ScalarAM
	}
	for _, T := range []float64{s.ScalarAF, s.ScalarAM, scalarN} {
		if !(T > 0) {
			return p, utils.NewMaterialError(m.Name(), "non-positive temperature %g", T)
		}
	}
	if !(s.ThermPressAF > 0) || !(s.ThermPressAM > 0) {
		return p, utils.NewMaterialError(m.Name(), "non-positive thermodynamic pressure (af: %g, am: %g)",
			s.ThermPressAF, s.ThermPressAM)
	}
	if !(m.GasConst > 0) || !(m.RefTemp > 0) {
		return p, utils.NewMaterialError(m.Name(), "gas constant and reference temperature must be positive")
	}
	p = Params{
		Visc:          m.visc(s.ScalarAF),
		DensAF:        s.ThermPressAF / (m.GasConst * s.ScalarAF),
		DensAM:        s.ThermPressAM / (m.GasConst * s.ScalarAM),
		DensN:         s.ThermPressAM / (m.GasConst * scalarN),
		ScaConvFacAF:  1 / s.ScalarAF,
		ScaDtFac:      1 / s.ScalarAM,
		ThermPressAdd: -s.ThermPressDt / s.ThermPressAM,
		LowMach:       true,
	}
	p.DensBody = p.DensAF
	err = checkParams(m.Name(), p)
	return
}

// Boussinesq is an incompressible fluid with a temperature dependent
// buoyancy density ρ0 (1 - β (T - T0))
type Boussinesq struct {
	Viscosity, Density float64
	Beta, RefTemp      float64
}

func (m *Boussinesq) Name() string { return "boussinesq" }

func (m *Boussinesq) Evaluate(s State) (p Params, err error) {
	if s.GenAlpha {
		return p, utils.NewConfigurationError("the Boussinesq approximation is not available with generalized-alpha")
	}
	p = Params{
		Visc:     m.Viscosity,
		DensN:    m.Density,
		DensAF:   m.Density,
		DensAM:   m.Density,
		DensBody: m.Density * (1 - m.Beta*(s.ScalarAF-m.RefTemp)),
	}
	err = checkParams(m.Name(), p)
	return
}

// Permeable is the Darcy-Brinkman fluid with reaction coefficient μ/K
type Permeable struct {
	Viscosity, Density float64
	Permeability       float64
}

func (m *Permeable) Name() string { return "permeable" }

func (m *Permeable) Evaluate(s State) (p Params, err error) {
	if !(m.Permeability > 0) {
		return p, utils.NewMaterialError(m.Name(), "non-positive permeability %g", m.Permeability)
	}
	p = Params{
		Visc:     m.Viscosity,
		DensN:    m.Density,
		DensAF:   m.Density,
		DensAM:   m.Density,
		DensBody: m.Density,
		ReaCoeff: m.Viscosity / m.Permeability,
	}
	err = checkParams(m.Name(), p)
	return
}
