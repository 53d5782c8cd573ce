package report

import (
	"time"

	"github.com/manav03panchal/creatorbook/internal/analytics"
	"github.com/manav03panchal/creatorbook/internal/model"
)

// KPI is a labelled headline figure.
type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Table is a titled grid of pre-formatted cells.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Document is an assembled report, ready for any encoder. Tables[0] holds
// one row per record and is what the CSV encoding exports.
type Document struct {
	Type        model.ReportType    `json:"type"`
	Title       string              `json:"title"`
	Period      Period              `json:"period"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Currency    string              `json:"currency"`
	KPIs        []KPI               `json:"kpis"`
	Highlights  []string            `json:"highlights,omitempty"`
	Tables      []Table             `json:"tables"`
	Insights    []analytics.Insight `json:"insights,omitempty"`
	Data        any                 `json:"data"`
}

// Template describes one report type.
type Template struct {
	Type        model.ReportType `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
}

// Templates lists the available reports.
var Templates = []Template{
	{
		Type:        model.ReportCommercialista,
		Title:       "Fiscal summary",
		Description: "Every payment in the period with platform totals and the registration threshold status, for your accountant.",
	},
	{
		Type:        model.ReportPerformance,
		Title:       "Content performance",
		Description: "Per-video revenue, engagement and score, with category rollups and the best category.",
	},
	{
		Type:        model.ReportExecutive,
		Title:       "Executive summary",
		Description: "Headline KPIs, best category, platform recommendation and insights.",
	},
}

// TemplateFor returns the template of t.
func TemplateFor(t model.ReportType) (Template, bool) {
	for _, tpl := range Templates {
		if tpl.Type == t {
			return tpl, true
		}
	}
	return Template{}, false
}

// Primary returns the record table, or an empty table.
func (d *Document) Primary() Table {
	if len(d.Tables) == 0 {
		return Table{}
	}
	return d.Tables[0]
}
