package elicit

import (
	"encoding/json"
	"math"
	"strconv"
)

// Role is the part a variable plays in the regression model
type Role string

const (
	RolePredictor Role = "predictor"
	RoleResponse  Role = "response"
)

// InterceptName is the parameter name of the model intercept
const InterceptName = "intercept"

// Entity is one user-constructed row: variable name -> value.
// Values may be missing, null or non-numeric; Value reports usability.
type Entity map[string]any

// Value returns the numeric value of a field and whether it is usable
func (e Entity) Value(name string) (float64, bool) {
	raw, ok := e[name]
	if !ok || raw == nil {
		return 0, false
	}
	var v float64
	switch t := raw.(type) {
	case float64:
		v = t
	case float32:
		v = float64(t)
	case int:
		v = float64(t)
	case int64:
		v = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// HasAll reports whether every named field is usable
func (e Entity) HasAll(names []string) bool {
	for _, name := range names {
		if _, ok := e.Value(name); !ok {
			return false
		}
	}
	return true
}

// Dataset is the ordered sequence of entities
type Dataset []Entity

// Complete returns the entities with every named field populated, in order
func (d Dataset) Complete(names []string) Dataset {
	out := make(Dataset, 0, len(d))
	for _, e := range d {
		if e.HasAll(names) {
			out = append(out, e)
		}
	}
	return out
}

// Column returns the usable values of one variable, skipping missing entries
func (d Dataset) Column(name string) []float64 {
	out := make([]float64, 0, len(d))
	for _, e := range d {
		if v, ok := e.Value(name); ok {
			out = append(out, v)
		}
	}
	return out
}

// Mentions reports whether at least one entity carries the variable
func (d Dataset) Mentions(name string) bool {
	for _, e := range d {
		if _, ok := e[name]; ok {
			return true
		}
	}
	return false
}

// Variable describes a predictor or response and its sampling bounds
type Variable struct {
	Name string  `json:"name"`
	Role Role    `json:"type"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Parameter is a regression coefficient or the intercept.
// RelatedVar names the predictor it multiplies; the intercept relates to itself.
type Parameter struct {
	Name       string `json:"name"`
	RelatedVar string `json:"relatedVar"`
}

// IsIntercept reports whether the parameter is the model intercept
func (p Parameter) IsIntercept() bool {
	return p.Name == InterceptName || p.RelatedVar == InterceptName
}

// SampleSet maps parameter name -> bootstrap draws, one per iteration
type SampleSet map[string][]float64

// FittedDistribution is one parametric family fitted to a sample, with its density curve
type FittedDistribution struct {
	Name    string             `json:"name"`
	Params  map[string]float64 `json:"params"`
	X       []float64          `json:"x"`
	P       []float64          `json:"p"`
	Metrics map[string]float64 `json:"metrics"`
}

// RankedFits is best-fit-first with the padded plotting range of the input sample
type RankedFits struct {
	Distributions []FittedDistribution `json:"distributions"`
	XMin          float64              `json:"x_min"`
	XMax          float64              `json:"x_max"`
}

// Best returns the top-ranked distribution
func (r *RankedFits) Best() (FittedDistribution, bool) {
	if r == nil || len(r.Distributions) == 0 {
		return FittedDistribution{}, false
	}
	return r.Distributions[0], true
}

// Strategy selects how predictor values are drawn during a predictive check
type Strategy string

const (
	StrategyDistributional Strategy = "distributional"
	StrategyRelational     Strategy = "relational"
	StrategyUniform        Strategy = "uniform"
)

// Strategies lists every supported strategy in presentation order
var Strategies = []Strategy{StrategyDistributional, StrategyRelational, StrategyUniform}

// Valid reports whether the strategy is supported
func (s Strategy) Valid() bool {
	switch s {
	case StrategyDistributional, StrategyRelational, StrategyUniform:
		return true
	}
	return false
}

// Curve is a density evaluated on a grid
type Curve struct {
	X []float64 `json:"x"`
	P []float64 `json:"p"`
}

// SimulationCheck is one Monte Carlo trial: a parameter draw and its simulated entities
type SimulationCheck struct {
	Index      int                  `json:"index"`
	Parameters map[string]float64   `json:"parameters"`
	Dataset    []map[string]float64 `json:"dataset"`
	Responses  []float64            `json:"-"`
	Density    *Curve               `json:"density,omitempty"`
}

// PredictiveCheck aggregates the checks for one strategy
type PredictiveCheck struct {
	Strategy       Strategy          `json:"strategy"`
	MinResponseVal float64           `json:"min_response_val"`
	MaxResponseVal float64           `json:"max_response_val"`
	MaxDensityVal  float64           `json:"max_density_val"`
	Checks         []SimulationCheck `json:"checks"`
	Excluded       []int             `json:"excluded_checks,omitempty"`
	Average        Curve             `json:"average"`
}
