package intensity

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

var barColors = [5]string{"#60a5fa", "#f59e0b", "#f97316", "#ef4444", "#dc2626"}

const (
	chartWidth   = 600
	chartHeight  = 350
	chartLeft    = 50
	chartRight   = 20
	chartTop     = 40
	chartBottom  = 50
	chartBarGap  = 24
	chartMaxTick = 10
)

// ChartFileName returns "<id>_<safe title>.svg", or "<safe title>.svg" when
// the id is unknown.
func ChartFileName(id int64, title string) string {
	safe := safeTitle(title)
	if id > 0 {
		return fmt.Sprintf("%d_%s.svg", id, safe)
	}
	return safe + ".svg"
}

// safeTitle keeps letters, digits, '-' and '_', turns spaces into '_' and
// replaces everything else with '_'.
func safeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// WriteChart renders the five segment scores as an SVG bar chart in dir and
// returns the file path.
func WriteChart(dir string, id int64, title string, ratings Ratings) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("charts directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create charts directory: %w", err)
	}
	path := filepath.Join(dir, ChartFileName(id, title))
	if err := os.WriteFile(path, RenderChart(title, ratings), 0o644); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	return path, nil
}

// RenderChart returns the SVG document for ratings.
func RenderChart(title string, ratings Ratings) []byte {
	plotW := chartWidth - chartLeft - chartRight
	plotH := chartHeight - chartTop - chartBottom
	segments := ratings.Segments()
	barW := (plotW - chartBarGap*(len(segments)+1)) / len(segments)

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`+"\n",
		chartWidth, chartHeight, chartWidth, chartHeight)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")
	fmt.Fprintf(&b, `<text x="%d" y="24" text-anchor="middle" font-size="15">Intensity Progression: %s</text>`+"\n",
		chartWidth/2, html.EscapeString(title))

	for tick := 0; tick <= chartMaxTick; tick += 2 {
		y := chartTop + plotH - tick*plotH/chartMaxTick
		fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#e5e7eb"/>`+"\n", chartLeft, y, chartLeft+plotW, y)
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="end" font-size="10">%d</text>`+"\n", chartLeft-6, y+3, tick)
	}
	fmt.Fprintf(&b, `<text x="14" y="%d" font-size="11" transform="rotate(-90 14 %d)" text-anchor="middle">Intensity (0-10)</text>`+"\n",
		chartTop+plotH/2, chartTop+plotH/2)

	for i, seg := range segments {
		score := clampScore(seg.Segment.Score)
		h := score * plotH / chartMaxTick
		x := chartLeft + chartBarGap + i*(barW+chartBarGap)
		y := chartTop + plotH - h
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`+"\n", x, y, barW, h, barColors[i])
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" font-size="11">%d</text>`+"\n", x+barW/2, y-4, score)
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" font-size="11">%s</text>`+"\n", x+barW/2, chartTop+plotH+18, seg.Label)
	}
	b.WriteString("</svg>\n")
	return b.Bytes()
}
