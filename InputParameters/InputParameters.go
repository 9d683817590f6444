package InputParameters

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/slfuchs/4C-sub001/discret"
	"github.com/slfuchs/4C-sub001/fluid"
	"github.com/slfuchs/4C-sub001/material"
	"github.com/slfuchs/4C-sub001/stab"
	"github.com/slfuchs/4C-sub001/turbulence"
	"github.com/slfuchs/4C-sub001/utils"
)

// Parameters obtained from the YAML input file
type FluidParameters struct {
	Title             string               `json:"Title"`
	Shape             string               `json:"Shape"`
	ElementSize       float64              `json:"ElementSize"`
	ALE               bool                 `json:"ALE"`
	TimeIntegration   TimeParameters       `json:"TimeIntegration"`
	Stabilization     StabParameters       `json:"Stabilization"`
	Turbulence        TurbulenceParameters `json:"Turbulence"`
	Material          material.Config      `json:"Material"`
	Newton            bool                 `json:"Newton"`
	Conservative      bool                 `json:"Conservative"`
	MatGP             bool                 `json:"MatGP"`
	TauGP             bool                 `json:"TauGP"`
	MeshLinearization bool                 `json:"MeshLinearization"`
	QuadPoints        int                  `json:"QuadPoints"`
	ThermPress        map[string]float64   `json:"ThermPress"` // AF, AM, Dt
	BodyForce         []float64            `json:"BodyForce"`
	State             StateParameters      `json:"State"`
}

type TimeParameters struct {
	Scheme string  `json:"Scheme"`
	Theta  float64 `json:"Theta"`
	RhoInf float64 `json:"RhoInf"` // generalized-alpha spectral radius, sets AlphaF, AlphaM and Gamma
	Dt     float64 `json:"Dt"`
	Time   float64 `json:"Time"`
}

type StabParameters struct {
	TauType   string `json:"TauType"`
	PSPG      bool   `json:"PSPG"`
	SUPG      bool   `json:"SUPG"`
	GradDiv   bool   `json:"GradDiv"`
	Reactive  string `json:"Reactive"`
	Viscous   string `json:"Viscous"`
	Cross     string `json:"Cross"`
	Reynolds  string `json:"Reynolds"`
	Subscales string `json:"Subscales"`
}

type TurbulenceParameters struct {
	Model             string    `json:"Model"`
	FineScale         bool      `json:"FineScale"`
	Cs                float64   `json:"Cs"`
	CsFs              float64   `json:"CsFs"`
	Cl                float64   `json:"Cl"`
	Form              string    `json:"Form"`
	VanDriest         bool      `json:"VanDriest"`
	ChannelHalfHeight float64   `json:"ChannelHalfHeight"`
	Utau              float64   `json:"Utau"`
	NormalDir         *int      `json:"NormalDir"`
	Planes            []float64 `json:"Planes"`
}

// StateParameters describe a linear velocity field u = U + G x and a
// constant pressure used to fill the state vectors of the driver
type StateParameters struct {
	Velocity         []float64   `json:"Velocity"`
	VelocityGradient [][]float64 `json:"VelocityGradient"`
	Pressure         float64     `json:"Pressure"`
	Temperature      float64     `json:"Temperature"`
}

func (ip *FluidParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *FluidParameters) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	fmt.Fprintf(w, "[%s]\t\t\t= Shape\n", ip.Shape)
	fmt.Fprintf(w, "[%s]\t\t= Time Integration\n", ip.TimeIntegration.Scheme)
	fmt.Fprintf(w, "%8.5f\t\t= Dt\n", ip.TimeIntegration.Dt)
	fmt.Fprintf(w, "[%s]\t\t= Material\n", ip.Material.Type)
	fmt.Fprintf(w, "[%s]\t= Tau Type\n", ip.Stabilization.TauType)
	fmt.Fprintf(w, "[%v]\t\t\t= PSPG, SUPG, GradDiv\n",
		[]bool{ip.Stabilization.PSPG, ip.Stabilization.SUPG, ip.Stabilization.GradDiv})
	fmt.Fprintf(w, "[%s]\t\t\t= Turbulence Model\n", ip.Turbulence.Model)
	keys := make([]string, 0, len(ip.ThermPress))
	for k := range ip.ThermPress {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "ThermPress[%s] = %v\n", key, ip.ThermPress[key])
	}
}

func lookup[T any](kind, name string, table map[string]T) (v T, err error) {
	label := strings.ToLower(strings.TrimSpace(name))
	var ok bool
	if v, ok = table[label]; !ok {
		err = utils.NewConfigurationError("unknown %s %q", kind, name)
	}
	return
}

var (
	reactiveNames = map[string]fluid.ReactiveStab{
		"": fluid.ReactiveNone, "none": fluid.ReactiveNone, "gls": fluid.ReactiveGLS, "usfem": fluid.ReactiveUSFEM,
	}
	viscousNames = map[string]fluid.ViscousStab{
		"": fluid.ViscousNone, "none": fluid.ViscousNone,
		"gls": fluid.ViscousGLS, "usfem": fluid.ViscousUSFEM,
		"gls_rhs": fluid.ViscousGLSRhs, "usfem_rhs": fluid.ViscousUSFEMRhs,
	}
	crossNames = map[string]fluid.CrossStress{
		"": fluid.CrossNone, "none": fluid.CrossNone, "rhs": fluid.CrossRhs, "complete": fluid.CrossComplete,
	}
	reynoldsNames = map[string]fluid.ReynoldsStress{
		"": fluid.ReynoldsNone, "none": fluid.ReynoldsNone, "complete": fluid.ReynoldsComplete,
	}
	subscaleNames = map[string]fluid.Subscales{
		"": fluid.QuasiStatic, "quasi_static": fluid.QuasiStatic, "time_dependent": fluid.TimeDependent,
	}
	formNames = map[string]turbulence.SimilarityForm{
		"": turbulence.DivergenceForm, "divergence": turbulence.DivergenceForm,
		"convective": turbulence.ConvectiveForm, "partially_integrated": turbulence.PartiallyIntegratedForm,
	}
)

// TimeIntegration converts the time section; generalized-alpha constants
// follow from the spectral radius ρ∞ (default 0.5)
func (tp TimeParameters) TimeIntegration() (ti fluid.TimeIntegration, err error) {
	scheme := tp.Scheme
	if scheme == "" {
		scheme = fluid.Stationary.String()
	}
	if ti.Scheme, err = fluid.ParseScheme(scheme); err != nil {
		return
	}
	ti.Theta, ti.Dt, ti.Time = tp.Theta, tp.Dt, tp.Time
	if ti.Scheme == fluid.GenAlpha {
		rho := tp.RhoInf
		if rho == 0 {
			rho = 0.5
		}
		if rho < 0 || rho > 1 {
			return ti, utils.NewConfigurationError("spectral radius must lie in [0,1], got %g", rho)
		}
		ti.AlphaM = 0.5 * (3 - rho) / (1 + rho)
		ti.AlphaF = 1 / (1 + rho)
		ti.Gamma = 0.5 + ti.AlphaM - ti.AlphaF
	}
	err = ti.Validate()
	return
}

func (sp StabParameters) Switches() (ss fluid.StabSwitches, err error) {
	ss.PSPG, ss.SUPG, ss.GradDiv = sp.PSPG, sp.SUPG, sp.GradDiv
	tauName := sp.TauType
	if tauName == "" {
		tauName = stab.TaylorHughesZarins.String()
	}
	if ss.TauType, err = stab.ParseTauType(tauName); err != nil {
		return
	}
	if ss.Reactive, err = lookup("reactive stabilization", sp.Reactive, reactiveNames); err != nil {
		return
	}
	if ss.Viscous, err = lookup("viscous stabilization", sp.Viscous, viscousNames); err != nil {
		return
	}
	if ss.Cross, err = lookup("cross-stress stabilization", sp.Cross, crossNames); err != nil {
		return
	}
	if ss.Reynolds, err = lookup("Reynolds-stress stabilization", sp.Reynolds, reynoldsNames); err != nil {
		return
	}
	ss.Subscales, err = lookup("subscale closure", sp.Subscales, subscaleNames)
	return
}

func (tp TurbulenceParameters) Settings() (s turbulence.Settings, err error) {
	if s.Model, err = turbulence.ParseModel(tp.Model); err != nil {
		return
	}
	if s.Form, err = lookup("scale similarity form", tp.Form, formNames); err != nil {
		return
	}
	s.FineScale, s.Cs, s.CsFs, s.Cl = tp.FineScale, tp.Cs, tp.CsFs, tp.Cl
	s.VanDriest, s.ChannelHalfHeight, s.Utau = tp.VanDriest, tp.ChannelHalfHeight, tp.Utau
	s.NormalDir = 1
	if tp.NormalDir != nil {
		s.NormalDir = *tp.NormalDir
	}
	s.Planes = tp.Planes
	return
}

// FluidParams assembles the element parameters. The parameter list carries
// the thermodynamic pressure and, for the dynamic Smagorinsky model with
// layer planes, a statistics accumulator.
func (ip *FluidParameters) FluidParams() (p fluid.Parameters, err error) {
	if p.Time, err = ip.TimeIntegration.TimeIntegration(); err != nil {
		return
	}
	if p.Stab, err = ip.Stabilization.Switches(); err != nil {
		return
	}
	if p.Turb, err = ip.Turbulence.Settings(); err != nil {
		return
	}
	p.Newton, p.Conservative = ip.Newton, ip.Conservative
	p.MatGP, p.TauGP = ip.MatGP, ip.TauGP
	p.MeshLinearization, p.QuadPoints = ip.MeshLinearization, ip.QuadPoints
	p.List = discret.NewParameterList("fluid")
	for key, name := range map[string]string{"AF": fluid.ThermPressAF, "AM": fluid.ThermPressAM, "Dt": fluid.ThermPressDt} {
		if v, ok := ip.ThermPress[key]; ok {
			p.List.Set(name, v)
		}
	}
	if p.Turb.Model == turbulence.DynamicSmagorinsky && len(p.Turb.Planes) > 1 {
		p.List.Sublist(fluid.TurbulenceList).Set(fluid.LayerStatistics, turbulence.NewLayerStatistics(p.Turb.Planes))
	}
	return
}

func (ip *FluidParameters) NewMaterial() (material.Material, error) {
	return material.FromConfig(ip.Material)
}

// BodyForceCondition returns the constant volume force of the input, or nil
func (ip *FluidParameters) BodyForceCondition() (conds []*discret.Condition) {
	if len(ip.BodyForce) == 0 {
		return
	}
	c := &discret.Condition{Name: "volume force", Val: append([]float64(nil), ip.BodyForce...)}
	for range ip.BodyForce {
		c.OnOff = append(c.OnOff, true)
	}
	return []*discret.Condition{c}
}

// VelocityAt evaluates the linear velocity field of the state section at x
func (sp StateParameters) VelocityAt(x []float64) (u []float64) {
	u = make([]float64, len(x))
	for i := range u {
		if i < len(sp.Velocity) {
			u[i] = sp.Velocity[i]
		}
		if i < len(sp.VelocityGradient) {
			for j, g := range sp.VelocityGradient[i] {
				if j < len(x) {
					u[i] += g * x[j]
				}
			}
		}
	}
	return
}
