package fitting

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

const logTwo = math.Ln2

// skewNormal is the standard skew-normal with shape A (scipy skewnorm)
type skewNormal struct {
	A    float64
	unit distuv.Normal
}

func newSkewNormal(a float64, src rand.Source) skewNormal {
	return skewNormal{A: a, unit: distuv.Normal{Mu: 0, Sigma: 1, Src: src}}
}

func (s skewNormal) LogProb(z float64) float64 {
	return logTwo + s.unit.LogProb(z) + logNormalCDF(s.A*z)
}

func (s skewNormal) Prob(z float64) float64 {
	return math.Exp(s.LogProb(z))
}

// Rand uses the (u0, v) construction: with delta = A/sqrt(1+A^2), u1 = delta*u0 +
// sqrt(1-delta^2)*v is skew-normal after reflecting on the sign of u0.
func (s skewNormal) Rand() float64 {
	delta := s.A / math.Sqrt(1+s.A*s.A)
	u0 := s.unit.Rand()
	v := s.unit.Rand()
	u1 := delta*u0 + math.Sqrt(1-delta*delta)*v
	if u0 >= 0 {
		return u1
	}
	return -u1
}

// logNormalCDF is log Phi(t), switching to the asymptotic tail below t = -30
func logNormalCDF(t float64) float64 {
	if t > -30 {
		return math.Log(0.5 * math.Erfc(-t/math.Sqrt2))
	}
	return -0.5*t*t - math.Log(-t) - 0.5*math.Log(2*math.Pi)
}

// logGamma is the standard log-gamma with shape C (scipy loggamma): the law of log(G),
// G ~ Gamma(C, 1).
type logGamma struct {
	C     float64
	gamma distuv.Gamma
}

func newLogGamma(c float64, src rand.Source) logGamma {
	return logGamma{C: c, gamma: distuv.Gamma{Alpha: c, Beta: 1, Src: src}}
}

func (l logGamma) LogProb(z float64) float64 {
	lg, _ := math.Lgamma(l.C)
	return l.C*z - math.Exp(z) - lg
}

func (l logGamma) Prob(z float64) float64 {
	return math.Exp(l.LogProb(z))
}

func (l logGamma) Rand() float64 {
	return math.Log(l.gamma.Rand())
}
