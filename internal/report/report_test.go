package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priorelicit/models"
)

func sampleRecord() *models.Record {
	return &models.Record{
		ID:        "0190b4f0-0000-7000-8000-000000000001",
		Name:      "pilot-3",
		TaskID:    "task-1",
		Space:     models.SpaceParameter,
		Feedback:  models.FeedbackPredictive,
		CreatedAt: time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
		Payload: models.JSONPayload(`{
			"model": {"variables": [
				{"name": "dose", "type": "predictor", "min": 0, "max": 10},
				{"name": "effect", "type": "response", "min": -5, "max": 30}
			]},
			"priors": {
				"intercept": {"name": "norm", "params": {"loc": 0.5, "scale": 0.2}},
				"dose": {"name": "gamma", "params": {"a": 2.1, "loc": 0, "scale": 0.4}}
			}
		}`),
	}
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(sampleRecord())
	require.NoError(t, err)

	assert.Contains(t, md, "# pilot-3")
	assert.Contains(t, md, "| dose | predictor | 0 | 10 |")
	assert.Contains(t, md, "| dose | gamma | a=2.1, loc=0, scale=0.4 |")
	assert.Contains(t, md, "| intercept | norm | loc=0.5, scale=0.2 |")
	assert.Less(t, strings.Index(md, "| dose | gamma"), strings.Index(md, "| intercept | norm"))
}

func TestMarkdown_NoPriors(t *testing.T) {
	md, err := Markdown(&models.Record{Name: "empty"})
	require.NoError(t, err)
	assert.Contains(t, md, "_No priors recorded._")
	assert.Contains(t, md, "**Task:** -")
}

func TestMarkdown_BadPayload(t *testing.T) {
	_, err := Markdown(&models.Record{Name: "bad", Payload: models.JSONPayload(`[1,2]`)})
	assert.Error(t, err)
}

func TestHTML(t *testing.T) {
	out, err := HTML(sampleRecord())
	require.NoError(t, err)

	page := string(out)
	assert.Contains(t, page, "<title>pilot-3</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<td>gamma</td>")
}

func TestHTML_EscapesStoredMarkup(t *testing.T) {
	rec := &models.Record{
		Name: "study <script>alert(1)</script>",
		Payload: models.JSONPayload(`{
			"model": {"variables": [{"name": "dose|mg", "type": "predictor", "min": 0, "max": 1}]},
			"priors": {"b<img src=x onerror=alert(2)>": {"name": "norm", "params": {"loc": 0, "scale": 1}}}
		}`),
	}

	out, err := HTML(rec)
	require.NoError(t, err)

	page := string(out)
	assert.NotContains(t, page, "<script")
	assert.NotContains(t, page, "<img")
	assert.Contains(t, page, "<title>study &lt;script&gt;alert(1)&lt;/script&gt;</title>")
	assert.Contains(t, page, "<td>dose|mg</td>")
	assert.Contains(t, page, "<td>norm</td>")
}

func TestMarkdown_EscapesTableCells(t *testing.T) {
	md, err := Markdown(&models.Record{
		Name:    "two\nlines",
		Payload: models.JSONPayload(`{"priors": {"a|b": {"name": "norm", "params": {"loc": 1, "scale": 2}}}}`),
	})
	require.NoError(t, err)

	assert.Contains(t, md, "# two lines\n")
	assert.Contains(t, md, `| a\|b | norm | loc=1, scale=2 |`)
}
