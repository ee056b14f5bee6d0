package fitting

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priorelicit/domain/core"
	"priorelicit/internal/analysis/numeric"
)

func TestFamilies_DensityIntegratesToOne(t *testing.T) {
	tests := []struct {
		family *Family
		params map[string]float64
		lo, hi float64
	}{
		{Uniform, map[string]float64{"loc": 0, "scale": 1}, -1, 2},
		{Normal, map[string]float64{"loc": 1, "scale": 2}, -20, 22},
		{StudentT, map[string]float64{"df": 5, "loc": 0, "scale": 1}, -300, 300},
		{Gamma, map[string]float64{"a": 2, "loc": 0, "scale": 1}, -1, 40},
		{Beta, map[string]float64{"a": 2, "b": 3, "loc": 0, "scale": 1}, 0, 1},
		{SkewNormal, map[string]float64{"a": 3, "loc": 0, "scale": 1}, -10, 10},
		{LogNormal, map[string]float64{"s": 0.5, "loc": 0, "scale": 1}, -1, 30},
		{LogGamma, map[string]float64{"c": 2, "loc": 0, "scale": 1}, -20, 6},
		{Exponential, map[string]float64{"loc": 0, "scale": 2}, -1, 60},
	}
	for _, tt := range tests {
		t.Run(tt.family.Name, func(t *testing.T) {
			d, err := tt.family.New(tt.params, nil)
			require.NoError(t, err)

			grid := numeric.Linspace(tt.lo, tt.hi, 200001)
			p := d.Density(grid)
			assert.True(t, numeric.AllFinite(p))
			assert.InDelta(t, 1.0, numeric.Trapezoid(grid, p), 1e-2)
		})
	}
}

func TestFamily_ParamNames(t *testing.T) {
	assert.Equal(t, []string{"loc", "scale"}, Normal.ParamNames())
	assert.Equal(t, []string{"a", "b", "loc", "scale"}, Beta.ParamNames())
	assert.Len(t, Families(), 9)
}

func TestLookup(t *testing.T) {
	f, err := Lookup("skewnorm")
	require.NoError(t, err)
	assert.Same(t, SkewNormal, f)

	_, err = Lookup("weibull")
	assert.ErrorIs(t, err, core.ErrUnsupportedFamily)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestFamily_NewRejectsBadParams(t *testing.T) {
	_, err := Gamma.New(map[string]float64{"loc": 0, "scale": 1}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)

	_, err = Normal.New(map[string]float64{"loc": 0, "scale": -1}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)

	_, err = Beta.New(map[string]float64{"a": 0, "b": 1, "loc": 0, "scale": 1}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestSkewNormal_RandMatchesMean(t *testing.T) {
	d, err := SkewNormal.New(map[string]float64{"a": 3, "loc": 0, "scale": 1}, rand.NewPCG(1, 2))
	require.NoError(t, err)

	const n = 20000
	var sum float64
	for i := 0; i < n; i++ {
		sum += d.Rand()
	}
	delta := 3 / math.Sqrt(10)
	assert.InDelta(t, delta*math.Sqrt(2/math.Pi), sum/n, 0.03)
}

func TestSkewNormal_FitRecoversSkewDirection(t *testing.T) {
	src, err := SkewNormal.New(map[string]float64{"a": 4, "loc": 0, "scale": 1}, rand.NewPCG(3, 4))
	require.NoError(t, err)
	x := make([]float64, 2000)
	for i := range x {
		x[i] = src.Rand()
	}

	fit, err := SkewNormal.Fit(x)
	require.NoError(t, err)
	assert.Greater(t, fit.Params()["a"], 1.0)
	assert.InDelta(t, 1.0, fit.Scale, 0.25)
}

func TestLogGamma_RandMatchesMean(t *testing.T) {
	d, err := LogGamma.New(map[string]float64{"c": 2, "loc": 0, "scale": 1}, rand.NewPCG(5, 6))
	require.NoError(t, err)

	const n = 20000
	var sum float64
	for i := 0; i < n; i++ {
		sum += d.Rand()
	}
	// E[log G] = digamma(2) = 1 - EulerGamma
	assert.InDelta(t, 1-0.5772156649, sum/n, 0.03)
}

func TestNormal_FitIsClosedForm(t *testing.T) {
	d, err := Normal.Fit([]float64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, d.Loc, 1e-12)
	assert.InDelta(t, math.Sqrt(2), d.Scale, 1e-12)
}

func TestFit_ZeroSpread(t *testing.T) {
	for _, f := range Families() {
		_, err := f.Fit([]float64{1, 1, 1})
		assert.Error(t, err, f.Name)
	}
}
