// Package templates renders the dashboard page.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"stock-analyzer/templates/partials"
)

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>NSE Stock Analyzer</title>
<script src="https://unpkg.com/htmx.org@2.0.4"></script>
<style>
body{font-family:sans-serif;margin:0;background:#f4f6f9;color:#1b2636}
header{background:#003366;color:#fff;padding:16px 24px}
main{max-width:960px;margin:24px auto;padding:0 16px}
.controls{display:flex;gap:8px;flex-wrap:wrap;margin-bottom:16px}
.controls input,.controls select{padding:8px;font-size:14px;min-width:220px}
.button,button{background:#0b5394;color:#fff;border:0;padding:8px 16px;border-radius:4px;cursor:pointer;text-decoration:none}
.alert{padding:12px;border-radius:4px;margin:12px 0}
.alert-warning{background:#fff4e5;color:#8a5300}
.alert-error{background:#fdecea;color:#a12622}
.report-body{background:#fff;padding:16px 24px;border-radius:4px}
.report-body h2{color:#0b5394;font-size:16px}
.chart svg{max-width:100%;height:auto}
.htmx-indicator{display:none}.htmx-request .htmx-indicator{display:inline}
</style>
</head>
<body>
<header><h1>NSE Stock Analyzer</h1></header>
<main>
<form class="controls" hx-post="/api/analyze" hx-target="#report" hx-indicator="#busy">
<input type="search" name="q" placeholder="Search stock" autocomplete="off"
 hx-get="/api/symbols" hx-trigger="input changed delay:300ms, search" hx-target="#symbol" hx-include="this">
<select id="symbol" name="symbol">`

const pageFoot = `</select>
<button type="submit">Analyze</button>
<span id="busy" class="htmx-indicator">Analyzing...</span>
</form>
<div id="report"></div>
</main>
</body>
</html>`

// Index renders the dashboard with the initial symbol choices
func Index(symbols []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}
		if err := partials.SymbolOptions(symbols).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, pageFoot)
		return err
	})
}
