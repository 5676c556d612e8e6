package report

import (
	"fmt"
	"strings"

	"stock-analyzer/models"
)

// ChartConfig holds rendering parameters for the candlestick chart
type ChartConfig struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	BgColor      string
	GridColor    string
	TextColor    string
	FontSize     int
	Title        string
}

// DefaultChartConfig returns the dashboard chart layout
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  30,
		MarginBottom: 40,
		MarginLeft:   80,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
		Title:        "Candlestick Chart",
	}
}

func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

const (
	bullColor    = "#26a69a"
	bearColor    = "#ef5350"
	bullVolColor = "#c8e6c9"
	bearVolColor = "#ffcdd2"
	chartGrid    = 5
)

// CandlestickChart draws bars as an SVG candlestick chart with volume
// in the bottom fifth of the plot.
func CandlestickChart(bars models.PriceSeries, cfg ChartConfig) string {
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if len(bars) == 0 {
		return emptySVG(cfg, "No chart data available")
	}

	px, py, pw, ph := cfg.plotArea()

	minPrice, maxPrice := bars[0].Low, bars[0].High
	var maxVol int64
	for _, b := range bars {
		minPrice = min(minPrice, b.Low)
		maxPrice = max(maxPrice, b.High)
		maxVol = max(maxVol, b.Volume)
	}
	priceRange := maxPrice - minPrice
	if priceRange < 0.01 {
		priceRange = 1
	}
	minPrice -= priceRange * 0.05
	maxPrice += priceRange * 0.05
	priceRange = maxPrice - minPrice

	n := len(bars)
	slot := float64(pw) / float64(n)
	bodyWidth := min(slot, 24) * 0.7
	volHeight := float64(ph) * 0.2
	priceHeight := float64(ph) - volHeight

	priceToY := func(p float64) float64 {
		return float64(py) + priceHeight - (p-minPrice)/priceRange*priceHeight
	}
	centre := func(i int) float64 {
		return float64(px) + float64(i)*slot + slot/2
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor)
	fmt.Fprintf(&sb, `<text x="%d" y="22" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title))

	for i := 0; i <= chartGrid; i++ {
		price := minPrice + priceRange*float64(i)/chartGrid
		y := priceToY(price)
		fmt.Fprintf(&sb, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor)
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-6, y+4, cfg.FontSize, cfg.TextColor, escapeXML(Price(&price)))
	}

	for i, b := range bars {
		cx := centre(i)
		candle, vol := bullColor, bullVolColor
		if b.Close < b.Open {
			candle, vol = bearColor, bearVolColor
		}

		if maxVol > 0 {
			vh := float64(b.Volume) / float64(maxVol) * volHeight
			fmt.Fprintf(&sb, `<rect class="volume" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" opacity="0.6"/>`,
				cx-bodyWidth/2, float64(py+ph)-vh, bodyWidth, vh, vol)
		}

		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`,
			cx, priceToY(b.High), cx, priceToY(b.Low), candle)

		top, bottom := priceToY(b.Open), priceToY(b.Close)
		if top > bottom {
			top, bottom = bottom, top
		}
		fmt.Fprintf(&sb, `<rect class="candle" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s</title></rect>`,
			cx-bodyWidth/2, top, bodyWidth, max(bottom-top, 1), candle, escapeXML(candleTitle(b)))
	}

	// At most about eight date labels
	step := max(1, n/8)
	for i := 0; i < n; i += step {
		fmt.Fprintf(&sb, `<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			centre(i), py+ph+16, cfg.FontSize, cfg.TextColor, bars[i].Date.Format("02 Jan"))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func candleTitle(b models.Bar) string {
	return fmt.Sprintf("%s O:%.2f H:%.2f L:%.2f C:%.2f V:%d",
		b.Date.Format("02-01-2006"), b.Open, b.High, b.Low, b.Close, b.Volume)
}

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
