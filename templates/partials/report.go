package partials

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"stock-analyzer/internal/app"
)

// ReportView renders a completed analysis: download link, report body and chart
func ReportView(a *app.Analysis) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		href := "/api/reports/" + a.Artifact.ID.String()
		parts := []string{
			`<section class="report" id="report-` + a.Artifact.ID.String() + `">`,
			`<div class="report-actions"><a class="button" href="` + templ.EscapeString(href) + `" download="` +
				templ.EscapeString(a.Artifact.Filename) + `">Download PDF</a>`,
			`<span class="artifact">` + templ.EscapeString(a.Artifact.Filename) + `</span></div>`,
			`<article class="report-body">`, a.HTML, `</article>`,
			`<figure class="chart"><figcaption>Candlestick Chart</figcaption>`, a.ChartSVG, `</figure>`,
			`</section>`,
		}
		for _, p := range parts {
			if _, err := io.WriteString(w, p); err != nil {
				return err
			}
		}
		return nil
	})
}
