package app

import (
	"priorelicit/domain/elicit"
	"priorelicit/internal/analysis/numeric"
)

// Grid coordinates and ranges leave the service unrounded: they span the data at any
// scale and must keep bracketing it. Densities and simulated values are rounded to
// CurveSignificantDigits.
func roundFits(r *elicit.RankedFits) *elicit.RankedFits {
	out := &elicit.RankedFits{
		XMin:          r.XMin,
		XMax:          r.XMax,
		Distributions: make([]elicit.FittedDistribution, len(r.Distributions)),
	}
	for i, d := range r.Distributions {
		d.P = numeric.RoundSliceSignificant(d.P, CurveSignificantDigits)
		out.Distributions[i] = d
	}
	return out
}

func roundCheck(pc *elicit.PredictiveCheck) {
	pc.MaxDensityVal = numeric.RoundSignificant(pc.MaxDensityVal, CurveSignificantDigits)
	pc.Average = roundCurve(pc.Average)
	for i := range pc.Checks {
		c := &pc.Checks[i]
		c.Parameters = numeric.RoundMapSignificant(c.Parameters, CurveSignificantDigits)
		for j, row := range c.Dataset {
			c.Dataset[j] = numeric.RoundMapSignificant(row, CurveSignificantDigits)
		}
		if c.Density != nil {
			rounded := roundCurve(*c.Density)
			c.Density = &rounded
		}
	}
}

func roundCurve(c elicit.Curve) elicit.Curve {
	return elicit.Curve{
		X: c.X,
		P: numeric.RoundSliceSignificant(c.P, CurveSignificantDigits),
	}
}
