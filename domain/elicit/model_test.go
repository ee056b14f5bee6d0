package elicit

import (
	"encoding/json"
	"testing"

	"priorelicit/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVariables() []Variable {
	return []Variable{
		{Name: "age", Role: RolePredictor, Min: 18, Max: 90},
		{Name: "income", Role: RolePredictor, Min: 0, Max: 200},
		{Name: "spend", Role: RoleResponse, Min: 0, Max: 50},
	}
}

func TestNewModel_DerivesParameters(t *testing.T) {
	m, err := NewModel(testVariables(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "income"}, m.PredictorNames())
	assert.Equal(t, "spend", m.Response.Name)
	require.Len(t, m.Parameters, 3)
	assert.Equal(t, InterceptName, m.Intercept().Name)

	p, ok := m.ParameterFor("income")
	require.True(t, ok)
	assert.Equal(t, "income", p.Name)
}

func TestNewModel_AddsMissingIntercept(t *testing.T) {
	params := []Parameter{
		{Name: "b_age", RelatedVar: "age"},
		{Name: "b_income", RelatedVar: "income"},
	}
	m, err := NewModel(testVariables(), params)
	require.NoError(t, err)
	require.Len(t, m.Parameters, 3)
	assert.True(t, m.Parameters[2].IsIntercept())
}

func TestNewModel_InvalidConfigurations(t *testing.T) {
	vars := testVariables()

	tests := []struct {
		name   string
		vars   []Variable
		params []Parameter
	}{
		{"no response", vars[:2], nil},
		{"no predictors", vars[2:], nil},
		{"bad bounds", []Variable{{Name: "x", Role: RolePredictor, Min: 5, Max: 1}, vars[2]}, nil},
		{"unknown role", []Variable{{Name: "x", Role: "other"}, vars[2]}, nil},
		{"unknown predictor", vars, []Parameter{{Name: "b", RelatedVar: "height"}}},
		{"unbound predictor", vars, []Parameter{{Name: "b_age", RelatedVar: "age"}}},
		{"duplicate parameter", vars, []Parameter{{Name: "b", RelatedVar: "age"}, {Name: "b", RelatedVar: "income"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModel(tt.vars, tt.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
		})
	}
}

func TestEntityValue(t *testing.T) {
	var e Entity
	require.NoError(t, json.Unmarshal([]byte(`{"id":"e1","x":1.5,"y":null,"z":"2.5","w":"abc"}`), &e))

	v, ok := e.Value("x")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok = e.Value("y")
	assert.False(t, ok)

	v, ok = e.Value("z")
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	_, ok = e.Value("w")
	assert.False(t, ok)

	_, ok = e.Value("missing")
	assert.False(t, ok)
}

func TestDatasetComplete(t *testing.T) {
	d := Dataset{
		{"x": 1.0, "y": 2.0},
		{"x": 2.0},
		{"x": 3.0, "y": nil},
		{"x": 4.0, "y": 5.0},
	}
	complete := d.Complete([]string{"x", "y"})
	require.Len(t, complete, 2)
	assert.Equal(t, []float64{1, 2, 3, 4}, d.Column("x"))
	assert.True(t, d.Mentions("y"))
	assert.False(t, d.Mentions("q"))
}
