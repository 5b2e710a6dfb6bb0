package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Brownie44l1/foodlens/internal/nutrition"
)

// FormatText renders result as a plain terminal table.
func FormatText(result *nutrition.Result) (string, error) {
	msg, f, err := extract(result)
	if err != nil || f == nil {
		return msg, err
	}

	rows := make([][]string, 0, len(f.Rows))
	for _, r := range f.Rows {
		rows = append(rows, []string{r.Label, r.Value})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Nutrient", "Amount").
		Rows(rows...)

	return fmt.Sprintf("Nutrition Facts\nFood Name: %s\n%s\n", f.Name, t.Render()), nil
}
