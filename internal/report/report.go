// Package report renders a stored elicitation record as a markdown summary and HTML page.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"priorelicit/domain/elicit"
	"priorelicit/models"
)

// payload is the part of a record document the report understands. Unknown fields are ignored.
type payload struct {
	Priors map[string]elicit.FittedDistribution `json:"priors"`
	Model  struct {
		Variables  []elicit.Variable  `json:"variables"`
		Parameters []elicit.Parameter `json:"parameters"`
	} `json:"model"`
}

// Markdown summarises the record: study metadata, variables and the chosen prior per parameter
func Markdown(rec *models.Record) (string, error) {
	var p payload
	if len(rec.Payload) > 0 {
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return "", fmt.Errorf("record %s payload: %w", rec.ID, err)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cell(rec.Name))
	fmt.Fprintf(&b, "- **Task:** %s\n", cell(orDash(rec.TaskID)))
	fmt.Fprintf(&b, "- **Elicitation space:** %s\n", orDash(rec.Space))
	fmt.Fprintf(&b, "- **Feedback:** %s\n", orDash(rec.Feedback))
	if !rec.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "- **Saved:** %s\n", rec.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	}

	if len(p.Model.Variables) > 0 {
		b.WriteString("\n## Variables\n\n| Name | Role | Min | Max |\n|---|---|---|---|\n")
		for _, v := range p.Model.Variables {
			fmt.Fprintf(&b, "| %s | %s | %g | %g |\n", cell(v.Name), cell(string(v.Role)), v.Min, v.Max)
		}
	}

	b.WriteString("\n## Priors\n\n")
	if len(p.Priors) == 0 {
		b.WriteString("_No priors recorded._\n")
		return b.String(), nil
	}
	b.WriteString("| Parameter | Family | Parameters |\n|---|---|---|\n")
	for _, name := range sortedKeys(p.Priors) {
		d := p.Priors[name]
		fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(name), cell(d.Name), cell(formatParams(d.Params)))
	}
	return b.String(), nil
}

// HTML renders the markdown summary. Raw HTML in stored names is dropped and the title is
// escaped, so the page never carries markup from the record.
func HTML(rec *models.Record) ([]byte, error) {
	md, err := Markdown(rec)
	if err != nil {
		return nil, err
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	// no Smartypants: it copies tags in the title verbatim
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.SkipHTML | html.CompletePage,
		Title: rec.Name,
	})
	return markdown.ToHTML([]byte(md), p, renderer), nil
}

func formatParams(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, params[k])
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]elicit.FittedDistribution) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// cell keeps user text inside one table cell or heading line
var cellReplacer = strings.NewReplacer("|", `\|`, "\r", " ", "\n", " ")

func cell(s string) string {
	return cellReplacer.Replace(s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
