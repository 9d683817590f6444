package discret

import (
	"github.com/slfuchs/4C-sub001/utils"
	"gonum.org/v1/gonum/mat"
)

// TimeCurve scales a condition in time
type TimeCurve interface {
	Value(t float64) float64
}

// SpatialFunction scales one component of a condition in space and time
type SpatialFunction interface {
	Value(component int, x []float64, t float64) float64
}

// CurveFunc adapts a plain function to a TimeCurve
type CurveFunc func(t float64) float64

func (f CurveFunc) Value(t float64) float64 { return f(t) }

// SpatialFunc adapts a plain function to a SpatialFunction
type SpatialFunc func(component int, x []float64, t float64) float64

func (f SpatialFunc) Value(component int, x []float64, t float64) float64 { return f(component, x, t) }

// Condition is a volume (or surface) load attached to an element
type Condition struct {
	Name  string
	OnOff []bool
	Val   []float64
	Curve TimeCurve       // nil means constant in time
	Funct SpatialFunction // nil means constant in space
}

// BodyForce evaluates the volume force at the element nodes xyze (nsd x nen).
// Without a condition the force is zero; more than one condition is an error.
func BodyForce(xyze mat.Matrix, conds []*Condition, time float64) (force *mat.Dense, err error) {
	nsd, nen := xyze.Dims()
	if nsd < 2 {
		return nil, utils.NewConfigurationError("body force is not available in %d dimension(s)", nsd)
	}
	force = mat.NewDense(nsd, nen, nil)
	switch len(conds) {
	case 0:
		return
	case 1:
	default:
		return nil, utils.NewConfigurationError("found %d volume force conditions on one element, at most one is allowed", len(conds))
	}
	var (
		cond     = conds[0]
		curveFac = 1.
		x        = make([]float64, nsd)
	)
	if len(cond.OnOff) < nsd || len(cond.Val) < nsd {
		return nil, utils.NewConfigurationError("condition %q needs %d components", cond.Name, nsd)
	}
	if cond.Curve != nil {
		curveFac = cond.Curve.Value(time)
	}
	for a := 0; a < nen; a++ {
		for i := 0; i < nsd; i++ {
			x[i] = xyze.At(i, a)
		}
		for i := 0; i < nsd; i++ {
			if !cond.OnOff[i] {
				continue
			}
			functFac := 1.
			if cond.Funct != nil {
				functFac = cond.Funct.Value(i, x, time)
			}
			force.Set(i, a, cond.Val[i]*curveFac*functFac)
		}
	}
	return
}
