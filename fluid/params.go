package fluid

import (
	"fmt"
	"strings"

	"github.com/slfuchs/4C-sub001/discret"
	"github.com/slfuchs/4C-sub001/stab"
	"github.com/slfuchs/4C-sub001/turbulence"
	"github.com/slfuchs/4C-sub001/utils"
)

// Scheme is the time integration scheme of the momentum equation
type Scheme uint8

const (
	Stationary Scheme = iota
	OneStepTheta
	BDF2
	GenAlpha
)

var schemeNames = map[Scheme]string{
	Stationary:   "stationary",
	OneStepTheta: "one_step_theta",
	BDF2:         "bdf2",
	GenAlpha:     "gen_alpha",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scheme(%d)", uint8(s))
}

func ParseScheme(name string) (s Scheme, err error) {
	label := strings.ToLower(strings.TrimSpace(name))
	for scheme, n := range schemeNames {
		if n == label {
			return scheme, nil
		}
	}
	err = utils.NewConfigurationError("unknown time integration scheme %q", name)
	return
}

// TimeIntegration holds the scheme constants of one step
type TimeIntegration struct {
	Scheme                Scheme
	Theta                 float64 // one-step-theta; BDF2 uses 2/3
	AlphaF, AlphaM, Gamma float64 // generalized-alpha
	Dt                    float64
	Time                  float64 // evaluation time of loads
}

func (ti TimeIntegration) IsStationary() bool { return ti.Scheme == Stationary }
func (ti TimeIntegration) IsGenAlpha() bool   { return ti.Scheme == GenAlpha }

func (ti TimeIntegration) theta() float64 {
	if ti.Scheme == BDF2 {
		return 2. / 3.
	}
	return ti.Theta
}

// TimeFac is the factor of the velocity dependent terms in the tangent:
// θΔt for one-step-theta and BDF2, αF γ Δt / αM for generalized-alpha
func (ti TimeIntegration) TimeFac() float64 {
	switch ti.Scheme {
	case OneStepTheta, BDF2:
		return ti.theta() * ti.Dt
	case GenAlpha:
		return ti.AlphaF * ti.Gamma * ti.Dt / ti.AlphaM
	default:
		return 1
	}
}

// TimeFacPre scales the residual and the pressure terms: TimeFac for
// one-step-theta and BDF2, TimeFac/αF for generalized-alpha
func (ti TimeIntegration) TimeFacPre() float64 {
	if ti.Scheme == GenAlpha {
		return ti.TimeFac() / ti.AlphaF
	}
	return ti.TimeFac()
}

// AfGdt is αF γ Δt
func (ti TimeIntegration) AfGdt() float64 { return ti.AlphaF * ti.Gamma * ti.Dt }

func (ti TimeIntegration) Validate() (err error) {
	switch ti.Scheme {
	case Stationary:
		return
	case OneStepTheta:
		if !(ti.Theta > 0) || ti.Theta > 1 {
			return utils.NewConfigurationError("theta must lie in (0,1], got %g", ti.Theta)
		}
	case BDF2:
	case GenAlpha:
		if !(ti.AlphaF > 0) || !(ti.AlphaM > 0) || !(ti.Gamma > 0) {
			return utils.NewConfigurationError("generalized-alpha needs positive alpha_F, alpha_M and gamma")
		}
	default:
		return utils.NewConfigurationError("unknown time integration scheme %s", ti.Scheme)
	}
	if !(ti.Dt > 0) {
		return utils.NewConfigurationError("time step must be positive, got %g", ti.Dt)
	}
	return
}

type ReactiveStab uint8

const (
	ReactiveNone ReactiveStab = iota
	ReactiveGLS
	ReactiveUSFEM
)

type ViscousStab uint8

const (
	ViscousNone ViscousStab = iota
	ViscousGLS
	ViscousUSFEM
	ViscousGLSRhs
	ViscousUSFEMRhs
)

type CrossStress uint8

const (
	CrossNone CrossStress = iota
	CrossRhs
	CrossComplete
)

type ReynoldsStress uint8

const (
	ReynoldsNone ReynoldsStress = iota
	ReynoldsComplete
)

type Subscales uint8

const (
	QuasiStatic Subscales = iota
	TimeDependent
)

// StabSwitches selects the stabilization terms
type StabSwitches struct {
	TauType   stab.TauType
	PSPG      bool
	SUPG      bool
	GradDiv   bool
	Reactive  ReactiveStab
	Viscous   ViscousStab
	Cross     CrossStress
	Reynolds  ReynoldsStress
	Subscales Subscales
}

// Active reports whether any residual based term is switched on
func (ss StabSwitches) Active() bool {
	return ss.PSPG || ss.SUPG || ss.GradDiv || ss.Reactive != ReactiveNone || ss.Viscous != ViscousNone ||
		ss.Cross != CrossNone || ss.Reynolds != ReynoldsNone
}

// Parameters is the configuration of one element evaluation. It is passed
// by value and never modified by the element; List is the runtime bag of
// named values (thermodynamic pressure, turbulence statistics).
type Parameters struct {
	Time              TimeIntegration
	Stab              StabSwitches
	Turb              turbulence.Settings
	Newton            bool // linearize the convective velocity
	Conservative      bool // conservative form of the convective term
	MatGP             bool // material at every integration point, else at the element center
	TauGP             bool // stabilization parameters at every integration point, else at the center
	MeshLinearization bool // compute the mesh motion block of ALE elements
	QuadPoints        int  // points per direction, 0 selects the default of the shape
	List              *discret.ParameterList
}

// names of the runtime parameters
const (
	ThermPressAF    = "thermpress at n+alpha_F/n+1"
	ThermPressAM    = "thermpress at n+alpha_M/n"
	ThermPressDt    = "thermpressderiv at n+alpha_F/n+1"
	TurbulenceList  = "TURBULENCE MODEL"
	LayerStatistics = "layer statistics"
)

// names of the state vectors
const (
	StateVelAF   = "velaf"
	StateVelNP   = "velnp"
	StateAccAM   = "accam"
	StateHist    = "hist"
	StateScaAF   = "scaaf"
	StateScaAM   = "scaam"
	StateScaDtAM = "scadtam"
	StateDispNP  = "dispnp"
	StateGridV   = "gridv"
	StateFsVelAF = "fsvelaf"
)

// names of the node fields of the scale similarity model
const (
	FieldFilteredVel    = "filtered velocity"
	FieldFilteredReyStr = "filtered reynolds stress"
)
