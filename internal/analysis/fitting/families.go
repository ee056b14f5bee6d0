package fitting

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"priorelicit/domain/core"
)

var errZeroSpread = errors.New("samples have zero spread")

func positive(shapes []float64) bool {
	for _, s := range shapes {
		if s <= 0 {
			return false
		}
	}
	return true
}

// Uniform: loc = min, scale = max - min (closed-form MLE)
var Uniform = &Family{
	Name: "uniform",
	standard: func(_ []float64, src rand.Source) Standard {
		return distuv.Uniform{Min: 0, Max: 1, Src: src}
	},
	fit: func(x []float64) ([]float64, float64, float64, error) {
		s, err := summarize(x)
		if err != nil {
			return nil, 0, 0, err
		}
		return nil, s.min, s.max - s.min, nil
	},
}

// Normal: loc = mean, scale = population standard deviation (closed-form MLE)
var Normal = &Family{
	Name: "norm",
	standard: func(_ []float64, src rand.Source) Standard {
		return distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	},
	fit: func(x []float64) ([]float64, float64, float64, error) {
		s, err := summarize(x)
		if err != nil {
			return nil, 0, 0, err
		}
		return nil, s.mean, s.popStd, nil
	},
}

// Exponential: loc = min, scale = mean - min (closed-form MLE)
var Exponential = &Family{
	Name: "expon",
	standard: func(_ []float64, src rand.Source) Standard {
		return positiveSupport{distuv.Exponential{Rate: 1, Src: src}}
	},
	fit: func(x []float64) ([]float64, float64, float64, error) {
		s, err := summarize(x)
		if err != nil {
			return nil, 0, 0, err
		}
		return nil, s.min, s.mean - s.min, nil
	},
}

// StudentT: shape df
var StudentT = &Family{
	Name:        "t",
	Shapes:      []string{"df"},
	validShapes: positive,
	standard: func(shapes []float64, src rand.Source) Standard {
		return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: shapes[0], Src: src}
	},
}

// Gamma: shape a
var Gamma = &Family{
	Name:        "gamma",
	Shapes:      []string{"a"},
	validShapes: positive,
	standard: func(shapes []float64, src rand.Source) Standard {
		return positiveSupport{distuv.Gamma{Alpha: shapes[0], Beta: 1, Src: src}}
	},
}

// Beta: shapes a and b on [loc, loc+scale]
var Beta = &Family{
	Name:        "beta",
	Shapes:      []string{"a", "b"},
	validShapes: positive,
	standard: func(shapes []float64, src rand.Source) Standard {
		return distuv.Beta{Alpha: shapes[0], Beta: shapes[1], Src: src}
	},
}

// SkewNormal: shape a (any real)
var SkewNormal = &Family{
	Name:   "skewnorm",
	Shapes: []string{"a"},
	standard: func(shapes []float64, src rand.Source) Standard {
		return newSkewNormal(shapes[0], src)
	},
}

// LogNormal: shape s, scale = exp(mu)
var LogNormal = &Family{
	Name:        "lognorm",
	Shapes:      []string{"s"},
	validShapes: positive,
	standard: func(shapes []float64, src rand.Source) Standard {
		return positiveSupport{distuv.LogNormal{Mu: 0, Sigma: shapes[0], Src: src}}
	},
}

// LogGamma: shape c
var LogGamma = &Family{
	Name:        "loggamma",
	Shapes:      []string{"c"},
	validShapes: positive,
	standard: func(shapes []float64, src rand.Source) Standard {
		return newLogGamma(shapes[0], src)
	},
}

// candidates is the fixed search set, in tie-break order
var candidates = []*Family{Uniform, Normal, StudentT, Gamma, Beta, SkewNormal, LogNormal, LogGamma, Exponential}

func init() {
	StudentT.fit = fitStudentT
	Gamma.fit = fitGamma
	Beta.fit = fitBeta
	SkewNormal.fit = fitSkewNormal
	LogNormal.fit = fitLogNormal
	LogGamma.fit = fitLogGamma
}

// Families returns the candidate families in tie-break order
func Families() []*Family {
	return append([]*Family(nil), candidates...)
}

// Lookup finds a family by its name
func Lookup(name string) (*Family, error) {
	for _, f := range candidates {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFamily, name)
}

type summary struct {
	n      float64
	min    float64
	max    float64
	mean   float64
	median float64
	popStd float64
	skew   float64
}

func (s summary) spread() float64 { return s.max - s.min }

func summarize(x []float64) (summary, error) {
	var s summary
	var err error
	if s.min, err = stats.Min(x); err != nil {
		return s, err
	}
	if s.max, err = stats.Max(x); err != nil {
		return s, err
	}
	if s.max == s.min {
		return s, errZeroSpread
	}
	if s.mean, err = stats.Mean(x); err != nil {
		return s, err
	}
	if s.median, err = stats.Median(x); err != nil {
		return s, err
	}
	if s.popStd, err = stats.StandardDeviationPopulation(x); err != nil {
		return s, err
	}
	s.n = float64(len(x))
	s.skew = stat.Skew(x, nil)
	if math.IsNaN(s.skew) {
		s.skew = 0
	}
	return s, nil
}

// gapBelow returns a strictly positive distance from loc up to min
func gapBelow(s summary, loc float64) float64 {
	gap := s.min - loc
	if !(gap > 0) || math.IsInf(gap, 0) {
		gap = 0.1 * s.popStd
	}
	return gap
}

func fitStudentT(x []float64) ([]float64, float64, float64, error) {
	s, err := summarize(x)
	if err != nil {
		return nil, 0, 0, err
	}
	theta, err := maximizeLikelihood(StudentT, x, []float64{math.Log(10), s.median, math.Log(s.popStd)},
		func(t []float64) ([]float64, float64, float64) {
			return []float64{math.Exp(t[0])}, t[1], math.Exp(t[2])
		})
	if err != nil {
		return nil, 0, 0, err
	}
	return []float64{math.Exp(theta[0])}, theta[1], math.Exp(theta[2]), nil
}

// fitGamma starts from the method of moments: skew = 2/sqrt(a)
func fitGamma(x []float64) ([]float64, float64, float64, error) {
	s, err := summarize(x)
	if err != nil {
		return nil, 0, 0, err
	}
	a := 100.0
	if s.skew > 0.1 {
		a = 4 / (s.skew * s.skew)
	}
	a = math.Min(math.Max(a, 0.1), 400)
	scale := s.popStd / math.Sqrt(a)
	loc := s.mean - a*scale

	decode := func(t []float64) ([]float64, float64, float64) {
		return []float64{math.Exp(t[0])}, s.min - math.Exp(t[1]), math.Exp(t[2])
	}
	theta, err := maximizeLikelihood(Gamma, x, []float64{math.Log(a), math.Log(gapBelow(s, loc)), math.Log(scale)}, decode)
	if err != nil {
		return nil, 0, 0, err
	}
	shapes, loc, scale := decode(theta)
	return shapes, loc, scale, nil
}

// fitBeta starts from a support padded 5% beyond the sample range on both sides
func fitBeta(x []float64) ([]float64, float64, float64, error) {
	s, err := summarize(x)
	if err != nil {
		return nil, 0, 0, err
	}
	pad := 0.05 * s.spread()
	loc := s.min - pad
	scale := s.spread() + 2*pad
	m := (s.mean - loc) / scale
	v := (s.popStd / scale) * (s.popStd / scale)
	common := m*(1-m)/v - 1
	if !(common > 0) {
		common = 2
	}
	a, b := m*common, (1-m)*common

	decode := func(t []float64) ([]float64, float64, float64) {
		lo := s.min - math.Exp(t[2])
		hi := s.max + math.Exp(t[3])
		return []float64{math.Exp(t[0]), math.Exp(t[1])}, lo, hi - lo
	}
	theta, err := maximizeLikelihood(Beta, x, []float64{math.Log(a), math.Log(b), math.Log(pad), math.Log(pad)}, decode)
	if err != nil {
		return nil, 0, 0, err
	}
	shapes, loc, scale := decode(theta)
	return shapes, loc, scale, nil
}

// fitSkewNormal inverts the skew-normal skewness for the starting shape
func fitSkewNormal(x []float64) ([]float64, float64, float64, error) {
	s, err := summarize(x)
	if err != nil {
		return nil, 0, 0, err
	}
	g := math.Max(math.Min(s.skew, 0.99), -0.99)
	b := math.Cbrt(2 * math.Abs(g) / (4 - math.Pi))
	delta := math.Copysign(math.Sqrt(math.Pi/2*b*b/(1+b*b)), g)
	delta = math.Max(math.Min(delta, 0.99), -0.99)
	a := delta / math.Sqrt(1-delta*delta)
	scale := s.popStd / math.Sqrt(1-2*delta*delta/math.Pi)
	loc := s.mean - scale*delta*math.Sqrt(2/math.Pi)

	decode := func(t []float64) ([]float64, float64, float64) {
		return []float64{t[0]}, t[1], math.Exp(t[2])
	}
	theta, err := maximizeLikelihood(SkewNormal, x, []float64{a, loc, math.Log(scale)}, decode)
	if err != nil {
		return nil, 0, 0, err
	}
	shapes, loc, scale := decode(theta)
	return shapes, loc, scale, nil
}

// fitLogNormal matches skewness to (w+2)sqrt(w-1) with w = exp(s^2)
func fitLogNormal(x []float64) ([]float64, float64, float64, error) {
	sum, err := summarize(x)
	if err != nil {
		return nil, 0, 0, err
	}
	g := math.Max(sum.skew, 0.05)
	lo, hi := 1.0, 2.0
	for (hi+2)*math.Sqrt(hi-1) < g && hi < 1e6 {
		hi *= 2
	}
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if (mid+2)*math.Sqrt(mid-1) < g {
			lo = mid
		} else {
			hi = mid
		}
	}
	w := (lo + hi) / 2
	shape := math.Sqrt(math.Log(w))
	scale := sum.popStd / math.Sqrt(w*(w-1))
	loc := sum.mean - scale*math.Sqrt(w)

	decode := func(t []float64) ([]float64, float64, float64) {
		return []float64{math.Exp(t[0])}, sum.min - math.Exp(t[1]), math.Exp(t[2])
	}
	theta, err := maximizeLikelihood(LogNormal, x, []float64{math.Log(shape), math.Log(gapBelow(sum, loc)), math.Log(scale)}, decode)
	if err != nil {
		return nil, 0, 0, err
	}
	shapes, loc, scale := decode(theta)
	return shapes, loc, scale, nil
}

// fitLogGamma starts at c = 1, where the variance of the standard form is pi^2/6
func fitLogGamma(x []float64) ([]float64, float64, float64, error) {
	s, err := summarize(x)
	if err != nil {
		return nil, 0, 0, err
	}
	scale := s.popStd / math.Sqrt(math.Pi*math.Pi/6)
	loc := s.mean - scale*mathext.Digamma(1)

	decode := func(t []float64) ([]float64, float64, float64) {
		return []float64{math.Exp(t[0])}, t[1], math.Exp(t[2])
	}
	theta, err := maximizeLikelihood(LogGamma, x, []float64{0, loc, math.Log(scale)}, decode)
	if err != nil {
		return nil, 0, 0, err
	}
	shapes, loc, scale := decode(theta)
	return shapes, loc, scale, nil
}
