package report

import (
	"html/template"
	"strings"

	"github.com/Brownie44l1/foodlens/internal/nutrition"
)

var htmlTable = template.Must(template.New("facts").Parse(`<table border="1" style="width: 100%; border-collapse: collapse;">
    <tr><th colspan="2" style="text-align: center;"><b>Nutrition Facts</b></th></tr>
    <tr><td colspan="2" style="text-align: center;"><b>Food Name: {{.Name}}</b></td></tr>
{{- range .Rows}}
    <tr>
        <td style="text-align: left;"><b>{{.Label}}</b></td><td style="text-align: right;">{{.Value}}</td>
    </tr>
{{- end}}
</table>
`))

// Format renders result as an HTML nutrition facts table.
func Format(result *nutrition.Result) (string, error) {
	msg, f, err := extract(result)
	if err != nil || f == nil {
		return msg, err
	}

	var b strings.Builder
	if err := htmlTable.Execute(&b, f); err != nil {
		return "", err
	}
	return b.String(), nil
}
