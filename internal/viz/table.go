package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/pdratio/internal/model"
)

var paramLabels = map[string]string{
	"beta":    "β",
	"gamma":   "γ",
	"rho":     "ρ",
	"sigma":   "σ",
	"mu_d":    "μ_d",
	"sigma_d": "σ_d",
	"mu_c":    "μ_c",
	"sigma_c": "σ_c",
	"n":       "N",
	"m":       "M",
}

// ParamsTable renders a parameter bundle as a titled panel.
func ParamsTable(title string, p model.Params) string {
	values := p.Map()

	rows := make([]string, 0, len(values))
	for _, name := range model.Names() {
		v := values[name]
		var text string
		if name == "n" || name == "m" {
			text = fmt.Sprintf("%d", int(v))
		} else {
			text = fmt.Sprintf("%g", v)
		}
		label := fmt.Sprintf("%-4s %s", paramLabels[name], Subtle.Render(name))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			MetricLabel.Width(18).Render(label), MetricValue.Render(text)))
	}

	body := TitleStyle.Render(title) + "\n\n" + strings.Join(rows, "\n")
	return Panel.Render(body)
}
