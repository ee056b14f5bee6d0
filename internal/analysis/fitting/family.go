// Package fitting fits a fixed set of parametric families to scalar samples and ranks the
// fits by goodness of fit.
//
// Every family is parameterised as (shape parameters) + loc + scale: a standardised member
// (loc 0, scale 1) is built from the shapes and shifted/stretched. Parameter names follow
// the scipy.stats conventions the presentation layer already understands (norm, t, gamma,
// beta, skewnorm, lognorm, loggamma, expon, uniform).
package fitting

import (
	"fmt"
	"math"
	"math/rand/v2"

	"priorelicit/domain/core"
	"priorelicit/internal/analysis/numeric"
)

// Standard is a loc=0, scale=1 member of a family. gonum's distuv types satisfy it.
type Standard interface {
	Prob(x float64) float64
	LogProb(x float64) float64
	Rand() float64
}

// Family describes one candidate parametric family and the names of its shape slots
type Family struct {
	Name   string
	Shapes []string

	standard    func(shapes []float64, src rand.Source) Standard
	validShapes func(shapes []float64) bool
	fit         func(x []float64) (shapes []float64, loc, scale float64, err error)
}

// ParamNames lists the parameter slots in order: shapes, then loc and scale
func (f *Family) ParamNames() []string {
	names := make([]string, 0, len(f.Shapes)+2)
	names = append(names, f.Shapes...)
	return append(names, "loc", "scale")
}

// Build creates a distribution from positional shapes plus loc and scale
func (f *Family) Build(shapes []float64, loc, scale float64, src rand.Source) (*Distribution, error) {
	if len(shapes) != len(f.Shapes) {
		return nil, fmt.Errorf("%s: expected %d shape parameters, got %d", f.Name, len(f.Shapes), len(shapes))
	}
	if !numeric.AllFinite(shapes, []float64{loc, scale}) {
		return nil, fmt.Errorf("%s: non-finite parameters", f.Name)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("%s: scale must be positive, got %g", f.Name, scale)
	}
	if f.validShapes != nil && !f.validShapes(shapes) {
		return nil, fmt.Errorf("%s: shape parameters %v out of range", f.Name, shapes)
	}
	return &Distribution{
		family: f,
		shapes: append([]float64(nil), shapes...),
		Loc:    loc,
		Scale:  scale,
		std:    f.standard(shapes, src),
	}, nil
}

// New resolves the family's parameter slots from a name->value map
func (f *Family) New(params map[string]float64, src rand.Source) (*Distribution, error) {
	shapes := make([]float64, len(f.Shapes))
	for i, name := range f.Shapes {
		v, ok := params[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s requires parameter %q", core.ErrInvalidConfiguration, f.Name, name)
		}
		shapes[i] = v
	}
	loc, ok := params["loc"]
	if !ok {
		return nil, fmt.Errorf("%w: %s requires parameter \"loc\"", core.ErrInvalidConfiguration, f.Name)
	}
	scale, ok := params["scale"]
	if !ok {
		return nil, fmt.Errorf("%w: %s requires parameter \"scale\"", core.ErrInvalidConfiguration, f.Name)
	}
	d, err := f.Build(shapes, loc, scale, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidConfiguration, err)
	}
	return d, nil
}

// Fit estimates the family's parameters from the samples
func (f *Family) Fit(x []float64) (*Distribution, error) {
	shapes, loc, scale, err := f.fit(x)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	return f.Build(shapes, loc, scale, nil)
}

// Distribution is a fitted or user-supplied member of a family
type Distribution struct {
	family *Family
	shapes []float64
	Loc    float64
	Scale  float64
	std    Standard
}

// Family returns the family descriptor
func (d *Distribution) Family() *Family {
	return d.family
}

// LogProb is the log density at x
func (d *Distribution) LogProb(x float64) float64 {
	return d.std.LogProb((x-d.Loc)/d.Scale) - math.Log(d.Scale)
}

// Prob is the density at x
func (d *Distribution) Prob(x float64) float64 {
	return d.std.Prob((x-d.Loc)/d.Scale) / d.Scale
}

// Rand draws one value
func (d *Distribution) Rand() float64 {
	return d.Loc + d.Scale*d.std.Rand()
}

// Params returns the named parameters
func (d *Distribution) Params() map[string]float64 {
	out := make(map[string]float64, len(d.shapes)+2)
	for i, name := range d.family.Shapes {
		out[name] = d.shapes[i]
	}
	out["loc"] = d.Loc
	out["scale"] = d.Scale
	return out
}

// NumParams is the number of free parameters, used by the information criteria
func (d *Distribution) NumParams() int {
	return len(d.shapes) + 2
}

// Density evaluates the density on every grid point
func (d *Distribution) Density(grid []float64) []float64 {
	out := make([]float64, len(grid))
	for i, x := range grid {
		out[i] = d.Prob(x)
	}
	return out
}

// positiveSupport guards families defined on z >= 0 so negative z yields zero density and
// the boundary never yields the NaN some closed forms produce there.
type positiveSupport struct {
	Standard
}

func (p positiveSupport) LogProb(z float64) float64 {
	if z < 0 {
		return math.Inf(-1)
	}
	if lp := p.Standard.LogProb(z); !math.IsNaN(lp) {
		return lp
	}
	return math.Inf(-1)
}

func (p positiveSupport) Prob(z float64) float64 {
	if z < 0 {
		return 0
	}
	if v := p.Standard.Prob(z); !math.IsNaN(v) {
		return v
	}
	return 0
}
