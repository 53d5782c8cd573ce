package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/model"
)

// Encode renders doc in format.
func Encode(doc *Document, format model.ReportFormat) ([]byte, error) {
	switch format {
	case model.FormatCSV:
		return EncodeCSV(doc)
	case model.FormatJSON:
		return EncodeJSON(doc)
	case model.FormatHTML:
		return EncodeHTML(doc)
	case model.FormatPDF:
		return EncodePDF(doc)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidFormat, "%q", format)
	}
}

// ContentType returns the MIME type of format.
func ContentType(format model.ReportFormat) string {
	switch format {
	case model.FormatCSV:
		return "text/csv"
	case model.FormatJSON:
		return "application/json"
	case model.FormatHTML:
		return "text/html"
	case model.FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// FileName returns "<report>-<YYYY-MM-DD>.<ext>" for doc.
func FileName(doc *Document, format model.ReportFormat) string {
	return fmt.Sprintf("%s-%s.%s", doc.Type, model.FormatDate(doc.GeneratedAt), format)
}

// EncodeCSV writes the record table with a header row.
func EncodeCSV(doc *Document) ([]byte, error) {
	t := doc.Primary()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeJSON writes the document as indented JSON.
func EncodeJSON(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.Period.Label}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; color: #222; margin: 2rem auto; max-width: 960px; }
h1 { margin-bottom: 0; }
.meta { color: #666; margin-top: .25rem; }
.kpis { display: flex; flex-wrap: wrap; gap: 1rem; margin: 1.5rem 0; }
.kpi { border: 1px solid #ddd; border-radius: 6px; padding: .75rem 1rem; min-width: 140px; }
.kpi .label { color: #666; font-size: .85rem; }
.kpi .value { font-size: 1.25rem; font-weight: 600; }
table { border-collapse: collapse; width: 100%; margin-bottom: 2rem; }
th, td { border-bottom: 1px solid #eee; padding: .4rem .6rem; text-align: left; }
th { background: #f6f6f6; }
.insight { border-left: 4px solid #888; padding: .25rem .75rem; margin: .5rem 0; }
.insight.success { border-color: #2e7d32; }
.insight.warning { border-color: #ef6c00; }
.insight.info { border-color: #1565c0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">{{.Period.Label}} ({{.Period.From}} to {{.Period.To}}) &middot; generated {{.GeneratedAt.Format "2006-01-02 15:04"}}</p>
<div class="kpis">
{{- range .KPIs}}
<div class="kpi"><div class="label">{{.Label}}</div><div class="value">{{.Value}}</div></div>
{{- end}}
</div>
{{- if .Highlights}}
<ul>
{{- range .Highlights}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
{{- range .Tables}}
<h2>{{.Title}}</h2>
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- end}}
{{- if .Insights}}
<h2>Insights</h2>
{{- range .Insights}}
<div class="insight {{.Type}}"><strong>{{.Title}}</strong><p>{{.Message}}</p>{{if .Action}}<p><em>{{.Action}}</em></p>{{end}}</div>
{{- end}}
{{- end}}
</body>
</html>
`))

// EncodeHTML renders a standalone HTML page.
func EncodeHTML(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Markdown renders doc as markdown, the input of the PDF encoder.
func Markdown(doc *Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	fmt.Fprintf(&b, "%s (%s to %s), generated %s\n\n", doc.Period.Label, doc.Period.From, doc.Period.To, doc.GeneratedAt.Format("2006-01-02 15:04"))

	for _, k := range doc.KPIs {
		fmt.Fprintf(&b, "- %s: %s\n", k.Label, mdEscape(k.Value))
	}
	b.WriteString("\n")
	for _, h := range doc.Highlights {
		fmt.Fprintf(&b, "> %s\n\n", mdEscape(h))
	}

	for _, t := range doc.Tables {
		fmt.Fprintf(&b, "## %s\n\n", t.Title)
		if len(t.Rows) == 0 {
			b.WriteString("No records.\n\n")
			continue
		}
		b.WriteString("| " + strings.Join(t.Columns, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(t.Columns)) + "\n")
		for _, row := range t.Rows {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = mdEscape(c)
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
		b.WriteString("\n")
	}

	if len(doc.Insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, in := range doc.Insights {
			fmt.Fprintf(&b, "- %s: %s\n", mdEscape(in.Title), mdEscape(in.Message))
		}
	}
	return b.String()
}

var mdReplacer = strings.NewReplacer("|", "\\|", "*", "\\*", "_", "\\_", "\n", " ")

func mdEscape(s string) string {
	return mdReplacer.Replace(s)
}

// EncodePDF renders the markdown form of doc to PDF. mdtopdf writes to a
// path, so the output goes through a temporary file.
func EncodePDF(doc *Document) ([]byte, error) {
	dir, err := os.MkdirTemp("", "creatorbook-pdf-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	pdfPath := filepath.Join(dir, "report.pdf")
	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process([]byte(Markdown(doc))); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return os.ReadFile(pdfPath)
}
