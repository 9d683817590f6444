package turbulence

import (
	"errors"
	"math"
	"testing"

	"github.com/slfuchs/4C-sub001/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var shear = mat.NewDense(3, 3, []float64{
	0, 2, 0,
	0, 0, 0,
	0, 0, 0,
})

func TestSmagorinsky(t *testing.T) {
	c := &Closure{
		Settings: &Settings{Model: Smagorinsky, Cs: 0.1},
		Nsd:      3, Vol: 8, Dens: 2, Visc: 1e-3,
		VelGrad: shear,
	}
	require.NoError(t, c.Compute())
	assert.InDelta(t, 2, c.Delta, 1e-14)
	assert.InDelta(t, 2, c.RateOfStr, 1e-14)
	assert.InDelta(t, 2*0.01*4*2, c.SgVisc, 1e-14)
	assert.Equal(t, 0., c.FsSgVisc)

	// van Driest damping vanishes at the wall
	c.Settings.VanDriest = true
	c.Settings.ChannelHalfHeight = 1
	c.Settings.Utau = 1
	c.WallCoord = 1
	require.NoError(t, c.Compute())
	assert.InDelta(t, 0, c.SgVisc, 1e-14)
	c.WallCoord = 0
	require.NoError(t, c.Compute())
	assert.InDelta(t, 1-math.Exp(-2000./26.), c.Damping, 1e-14)
}

func TestDynamicSmagorinskyClipping(t *testing.T) {
	c := &Closure{
		Settings: &Settings{Model: DynamicSmagorinsky},
		Nsd:      3, Vol: 1, Dens: 1, Visc: 1,
		VelGrad:   shear,
		CsDeltaSq: -0.2,
	}
	require.NoError(t, c.Compute())
	assert.Equal(t, 0., c.SgVisc)
	c.CsDeltaSq = 0.2
	require.NoError(t, c.Compute())
	assert.InDelta(t, 0.4, c.SgVisc, 1e-14)
}

func TestFineScale(t *testing.T) {
	c := &Closure{
		Settings: &Settings{Model: None, FineScale: true, CsFs: 0.2},
		Nsd:      3, Vol: 8, Dens: 1, Visc: 1,
		VelGrad: shear,
	}
	err := c.Compute()
	var ce *utils.ConfigurationError
	assert.True(t, errors.As(err, &ce))
	c.FsVelGrad = shear
	require.NoError(t, c.Compute())
	assert.Equal(t, 0., c.SgVisc)
	assert.InDelta(t, 0.04*4*2, c.FsSgVisc, 1e-14)
}

func TestSimilarityDivergence(t *testing.T) {
	var (
		fvel = []float64{1, 2}
		grad = mat.NewDense(2, 2, []float64{0.5, 0, 0, 0.25})
		rdiv = []float64{3, 4}
	)
	div, err := SimilarityDivergence(DivergenceForm, fvel, grad, rdiv)
	require.NoError(t, err)
	// d(u_i u_j)/dx_j = u_j du_i/dx_j + u_i div u
	assert.InDelta(t, 3-(1*0.5)-1*0.75, div[0], 1e-15)
	assert.InDelta(t, 4-(2*0.25)-2*0.75, div[1], 1e-15)

	for _, form := range []SimilarityForm{ConvectiveForm, PartiallyIntegratedForm} {
		_, err = SimilarityDivergence(form, fvel, grad, rdiv)
		var ce *utils.ConfigurationError
		assert.True(t, errors.As(err, &ce))
	}
}

func TestParseModel(t *testing.T) {
	for m := range modelNames {
		parsed, err := ParseModel(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	m, err := ParseModel("")
	require.NoError(t, err)
	assert.Equal(t, None, m)
	_, err = ParseModel("wale")
	assert.Error(t, err)
	assert.True(t, MixedScaleSimilarityEddyViscosity.Similarity())
	assert.True(t, MixedScaleSimilarityEddyViscosity.EddyViscosity())
	assert.False(t, ScaleSimilarity.EddyViscosity())
}

func TestLayerStatistics(t *testing.T) {
	ls := NewLayerStatistics([]float64{1, -1, 0})
	assert.Equal(t, []float64{-1, 0, 1}, ls.Planes)
	assert.Equal(t, 0, ls.Layer(-1))
	assert.Equal(t, 0, ls.Layer(-0.5))
	assert.Equal(t, 1, ls.Layer(0))
	assert.Equal(t, 1, ls.Layer(1))
	assert.Equal(t, -1, ls.Layer(1.5))

	ls.Add(-0.5, 0.1, 0.01, 2)
	ls.Add(-0.25, 0.3, 0.03, 4)
	ls.Add(2, 1, 1, 1)
	other := NewLayerStatistics([]float64{-1, 0, 1})
	other.Add(0.5, 0.2, 0.02, 1)
	ls.Merge(other)
	cs, csd, visc := ls.Means()
	assert.InDelta(t, 0.2, cs[0], 1e-15)
	assert.InDelta(t, 0.02, csd[0], 1e-15)
	assert.InDelta(t, 3, visc[0], 1e-15)
	assert.Equal(t, 2, ls.Count[0])
	assert.Equal(t, 1, ls.Count[1])
	assert.InDelta(t, 0.2, cs[1], 1e-15)
}
