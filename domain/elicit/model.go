package elicit

import (
	"fmt"

	"priorelicit/domain/core"
)

// Model is the validated linear-model layout shared by the resampler and simulator
type Model struct {
	Predictors []Variable
	Response   Variable
	Parameters []Parameter
}

// NewModel splits descriptors by role and checks the parameter mapping.
// When params is empty one coefficient per predictor plus the intercept is derived.
func NewModel(variables []Variable, params []Parameter) (*Model, error) {
	m := &Model{}
	haveResponse := false
	seen := make(map[string]bool, len(variables))
	for _, v := range variables {
		if v.Name == "" {
			return nil, fmt.Errorf("%w: variable without a name", core.ErrInvalidConfiguration)
		}
		if seen[v.Name] {
			return nil, fmt.Errorf("%w: duplicate variable %q", core.ErrInvalidConfiguration, v.Name)
		}
		seen[v.Name] = true
		if v.Min > v.Max {
			return nil, fmt.Errorf("%w: %s [%g, %g]", core.ErrInvalidVariableBounds, v.Name, v.Min, v.Max)
		}
		switch v.Role {
		case RoleResponse:
			if haveResponse {
				return nil, fmt.Errorf("%w: more than one response variable", core.ErrInvalidConfiguration)
			}
			m.Response = v
			haveResponse = true
		case RolePredictor:
			m.Predictors = append(m.Predictors, v)
		default:
			return nil, fmt.Errorf("%w: variable %q has unknown role %q", core.ErrInvalidConfiguration, v.Name, v.Role)
		}
	}
	if !haveResponse {
		return nil, core.ErrMissingResponse
	}
	if len(m.Predictors) == 0 {
		return nil, fmt.Errorf("%w: no predictor variables", core.ErrInvalidConfiguration)
	}

	if len(params) == 0 {
		params = DeriveParameters(m.Predictors)
	}
	if err := m.bindParameters(params); err != nil {
		return nil, err
	}
	return m, nil
}

// DeriveParameters returns one coefficient per predictor followed by the intercept
func DeriveParameters(predictors []Variable) []Parameter {
	out := make([]Parameter, 0, len(predictors)+1)
	for _, p := range predictors {
		out = append(out, Parameter{Name: p.Name, RelatedVar: p.Name})
	}
	return append(out, Parameter{Name: InterceptName, RelatedVar: InterceptName})
}

func (m *Model) bindParameters(params []Parameter) error {
	bound := make(map[string]string, len(params))
	names := make(map[string]bool, len(params))
	intercept := false
	for _, p := range params {
		if p.Name == "" {
			return fmt.Errorf("%w: parameter without a name", core.ErrInvalidConfiguration)
		}
		if names[p.Name] {
			return fmt.Errorf("%w: duplicate parameter %q", core.ErrInvalidConfiguration, p.Name)
		}
		names[p.Name] = true
		if p.IsIntercept() {
			if intercept {
				return fmt.Errorf("%w: more than one intercept", core.ErrInvalidConfiguration)
			}
			intercept = true
			continue
		}
		if !m.isPredictor(p.RelatedVar) {
			return fmt.Errorf("%w: %s -> %q", core.ErrParameterVarMismatch, p.Name, p.RelatedVar)
		}
		if other, dup := bound[p.RelatedVar]; dup {
			return fmt.Errorf("%w: predictor %q bound to both %s and %s", core.ErrInvalidConfiguration, p.RelatedVar, other, p.Name)
		}
		bound[p.RelatedVar] = p.Name
	}
	for _, v := range m.Predictors {
		if _, ok := bound[v.Name]; !ok {
			return fmt.Errorf("%w: predictor %q has no parameter", core.ErrInvalidConfiguration, v.Name)
		}
	}
	m.Parameters = append([]Parameter(nil), params...)
	if !intercept {
		m.Parameters = append(m.Parameters, Parameter{Name: InterceptName, RelatedVar: InterceptName})
	}
	return nil
}

func (m *Model) isPredictor(name string) bool {
	for _, v := range m.Predictors {
		if v.Name == name {
			return true
		}
	}
	return false
}

// PredictorNames returns predictor names in declaration order
func (m *Model) PredictorNames() []string {
	out := make([]string, len(m.Predictors))
	for i, v := range m.Predictors {
		out[i] = v.Name
	}
	return out
}

// RequiredFields is every variable a regression row must carry
func (m *Model) RequiredFields() []string {
	return append(m.PredictorNames(), m.Response.Name)
}

// ParameterFor returns the parameter bound to a predictor
func (m *Model) ParameterFor(predictor string) (Parameter, bool) {
	for _, p := range m.Parameters {
		if !p.IsIntercept() && p.RelatedVar == predictor {
			return p, true
		}
	}
	return Parameter{}, false
}

// Intercept returns the intercept parameter
func (m *Model) Intercept() Parameter {
	for _, p := range m.Parameters {
		if p.IsIntercept() {
			return p
		}
	}
	return Parameter{Name: InterceptName, RelatedVar: InterceptName}
}
