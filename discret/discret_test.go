package discret

import (
	"errors"
	"testing"

	"github.com/slfuchs/4C-sub001/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestStates(t *testing.T) {
	dis := New()
	dis.SetState("velnp", mat.NewVecDense(4, []float64{1, 2, 3, 4}))
	assert.True(t, dis.HasState("velnp"))
	_, err := dis.GetState("accam")
	assert.Error(t, err)
	v, err := dis.GetState("velnp")
	require.NoError(t, err)
	vals, err := ExtractMyValues(v, []int{3, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 1}, vals)
	_, err = ExtractMyValues(v, []int{4})
	assert.Error(t, err)

	c := dis.Clone()
	cv, _ := c.GetState("velnp")
	cv.SetVec(0, 10)
	assert.Equal(t, 1., v.AtVec(0))
	assert.Equal(t, []string{"velnp"}, c.StateNames())
	dis.ClearState()
	assert.False(t, dis.HasState("velnp"))
}

func TestNodeField(t *testing.T) {
	f := NewNodeField(2)
	require.NoError(t, f.Set(7, []float64{1, 2}))
	require.NoError(t, f.Set(3, []float64{3, 4}))
	assert.Error(t, f.Set(1, []float64{1}))
	m, err := f.Extract([]int{3, 7})
	require.NoError(t, err)
	assert.Equal(t, 3., m.At(0, 0))
	assert.Equal(t, 2., m.At(1, 1))
	_, err = f.Extract([]int{5})
	assert.Error(t, err)
}

func TestParameterList(t *testing.T) {
	pl := NewParameterList("fluid")
	pl.Set("thermpress at n+alpha_F/n+1", 1e5).Set("total time", 0.5)
	pl.Sublist("TURBULENCE MODEL").Set("CHANNEL_L_TAU", 0.1)

	v, err := Get[float64](pl, "total time")
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)
	_, err = Get[int](pl, "total time")
	assert.Error(t, err)
	_, err = Get[float64](pl, "dt")
	assert.Error(t, err)
	assert.Equal(t, 2., GetOr(pl, "dt", 2.))
	assert.Equal(t, 0.1, GetOr(pl.Sublist("TURBULENCE MODEL"), "CHANNEL_L_TAU", 0.))
	assert.True(t, pl.HasSublist("TURBULENCE MODEL"))
	var nilList *ParameterList
	assert.Equal(t, 3, GetOr(nilList, "x", 3))

	c := pl.Clone()
	c.Set("total time", 1.).Sublist("TURBULENCE MODEL").Set("CHANNEL_L_TAU", 0.2)
	assert.Equal(t, 0.5, GetOr(pl, "total time", 0.))
	assert.Equal(t, 0.1, GetOr(pl.Sublist("TURBULENCE MODEL"), "CHANNEL_L_TAU", 0.))
	assert.Equal(t, 1e5, GetOr(c, "thermpress at n+alpha_F/n+1", 0.))
}

func TestBodyForce(t *testing.T) {
	xyze := mat.NewDense(3, 2, []float64{0, 1, 0, 0, 0, 2})
	force, err := BodyForce(xyze, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 0., mat.Sum(force))

	cond := &Condition{
		Name:  "gravity",
		OnOff: []bool{false, true, true},
		Val:   []float64{5, 1, -9.81},
		Curve: CurveFunc(func(t float64) float64 { return 2 * t }),
		Funct: SpatialFunc(func(c int, x []float64, t float64) float64 { return 1 + x[2] }),
	}
	force, err = BodyForce(xyze, []*Condition{cond}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0., force.At(0, 0))
	assert.InDelta(t, 1, force.At(1, 0), 1e-15)
	assert.InDelta(t, -9.81*3, force.At(2, 1), 1e-14)

	_, err = BodyForce(xyze, []*Condition{cond, cond}, 0)
	var ce *utils.ConfigurationError
	assert.True(t, errors.As(err, &ce))
	_, err = BodyForce(mat.NewDense(1, 2, nil), []*Condition{cond}, 0)
	assert.True(t, errors.As(err, &ce))
}
