package material

import (
	"strings"

	"github.com/slfuchs/4C-sub001/utils"
)

// Config is the serialized material selection, read from the parameter file
type Config struct {
	Type         string  `json:"Type"`
	Viscosity    float64 `json:"Viscosity"`
	Density      float64 `json:"Density"`
	Mu0          float64 `json:"Mu0"`
	MuInf        float64 `json:"MuInf"`
	Lambda       float64 `json:"Lambda"`
	A            float64 `json:"A"`
	N            float64 `json:"N"`
	RefTemp      float64 `json:"RefTemp"`
	SuthTemp     float64 `json:"SuthTemp"`
	GasConst     float64 `json:"GasConst"`
	Beta         float64 `json:"Beta"`
	Permeability float64 `json:"Permeability"`
}

func FromConfig(c Config) (m Material, err error) {
	switch strings.ToLower(c.Type) {
	case "", "newtonian":
		m = &Newtonian{Viscosity: c.Viscosity, Density: c.Density}
	case "carreau_yasuda", "carreauyasuda":
		m = &CarreauYasuda{Mu0: c.Mu0, MuInf: c.MuInf, Lambda: c.Lambda, A: c.A, N: c.N, Density: c.Density}
	case "sutherland":
		m = &Sutherland{RefVisc: c.Viscosity, RefTemp: c.RefTemp, SuthTemp: c.SuthTemp, GasConst: c.GasConst}
	case "boussinesq":
		m = &Boussinesq{Viscosity: c.Viscosity, Density: c.Density, Beta: c.Beta, RefTemp: c.RefTemp}
	case "permeable":
		m = &Permeable{Viscosity: c.Viscosity, Density: c.Density, Permeability: c.Permeability}
	default:
		err = utils.NewConfigurationError("unsupported material type %q", c.Type)
	}
	return
}
