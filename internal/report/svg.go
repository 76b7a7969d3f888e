package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// XY is one plotted point with an optional one-sigma error bar.
type XY struct {
	X   float64
	Y   float64
	Err float64
}

// Plot describes a keff-versus-parameter scatter plot.
type Plot struct {
	Title  string
	XLabel string
	YLabel string
	// Target draws a dashed horizontal reference line (the criticality
	// target) when non-zero.
	Target float64
	Points []XY
}

// SVG canvas geometry.
const (
	svgWidth   = 720.0
	svgHeight  = 480.0
	marginLeft = 72.0
	marginOth  = 48.0
	tickCount  = 5
)

// RenderSVG renders the plot as a standalone SVG document. No plotting
// library is used; the document is a fixed-size canvas with linear axes.
func RenderSVG(p Plot) []byte {
	var b strings.Builder

	xMin, xMax, yMin, yMax := p.bounds()
	plotW := svgWidth - marginLeft - marginOth
	plotH := svgHeight - 2*marginOth
	sx := func(x float64) float64 { return marginLeft + (x-xMin)/(xMax-xMin)*plotW }
	sy := func(y float64) float64 { return svgHeight - marginOth - (y-yMin)/(yMax-yMin)*plotH }

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		svgWidth, svgHeight, svgWidth, svgHeight)
	fmt.Fprintf(&b, `<rect width="%g" height="%g" fill="white"/>`+"\n", svgWidth, svgHeight)

	if p.Title != "" {
		fmt.Fprintf(&b, `<text x="%g" y="24" text-anchor="middle" font-family="sans-serif" font-size="16">%s</text>`+"\n",
			svgWidth/2, escape(p.Title))
	}

	// axes
	fmt.Fprintf(&b, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="black"/>`+"\n",
		marginLeft, svgHeight-marginOth, svgWidth-marginOth, svgHeight-marginOth)
	fmt.Fprintf(&b, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="black"/>`+"\n",
		marginLeft, marginOth, marginLeft, svgHeight-marginOth)

	// ticks and grid
	for i := 0; i <= tickCount; i++ {
		frac := float64(i) / tickCount
		xVal := xMin + frac*(xMax-xMin)
		x := sx(xVal)
		fmt.Fprintf(&b, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="black"/>`+"\n",
			x, svgHeight-marginOth, x, svgHeight-marginOth+5)
		fmt.Fprintf(&b, `<text x="%g" y="%g" text-anchor="middle" font-family="sans-serif" font-size="11">%.4g</text>`+"\n",
			x, svgHeight-marginOth+18, xVal)

		yVal := yMin + frac*(yMax-yMin)
		y := sy(yVal)
		fmt.Fprintf(&b, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="black"/>`+"\n",
			marginLeft-5, y, marginLeft, y)
		fmt.Fprintf(&b, `<text x="%g" y="%g" text-anchor="end" font-family="sans-serif" font-size="11">%.5g</text>`+"\n",
			marginLeft-8, y+4, yVal)
		fmt.Fprintf(&b, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="#dddddd"/>`+"\n",
			marginLeft, y, svgWidth-marginOth, y)
	}

	// axis labels
	if p.XLabel != "" {
		fmt.Fprintf(&b, `<text x="%g" y="%g" text-anchor="middle" font-family="sans-serif" font-size="13">%s</text>`+"\n",
			marginLeft+plotW/2, svgHeight-10, escape(p.XLabel))
	}
	if p.YLabel != "" {
		fmt.Fprintf(&b, `<text x="16" y="%g" text-anchor="middle" font-family="sans-serif" font-size="13" transform="rotate(-90 16 %g)">%s</text>`+"\n",
			marginOth+plotH/2, marginOth+plotH/2, escape(p.YLabel))
	}

	if p.Target != 0 && p.Target >= yMin && p.Target <= yMax {
		y := sy(p.Target)
		fmt.Fprintf(&b, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="crimson" stroke-dasharray="6 4"/>`+"\n",
			marginLeft, y, svgWidth-marginOth, y)
	}

	for _, pt := range p.Points {
		x, y := sx(pt.X), sy(pt.Y)
		if pt.Err > 0 {
			fmt.Fprintf(&b, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="steelblue"/>`+"\n",
				x, sy(pt.Y-pt.Err), x, sy(pt.Y+pt.Err))
		}
		fmt.Fprintf(&b, `<circle cx="%g" cy="%g" r="4" fill="steelblue"/>`+"\n", x, y)
	}

	b.WriteString("</svg>\n")
	return []byte(b.String())
}

// WriteScatter writes keff.svg into dir.
func WriteScatter(dir string, p Plot) error {
	path := filepath.Join(dir, PlotFile)
	if err := os.WriteFile(path, RenderSVG(p), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", PlotFile, err)
	}
	return nil
}

// bounds computes padded data bounds, always including the target line and
// degenerating gracefully for single-point plots.
func (p Plot) bounds() (xMin, xMax, yMin, yMax float64) {
	xMin, yMin = math.Inf(1), math.Inf(1)
	xMax, yMax = math.Inf(-1), math.Inf(-1)
	for _, pt := range p.Points {
		xMin = math.Min(xMin, pt.X)
		xMax = math.Max(xMax, pt.X)
		yMin = math.Min(yMin, pt.Y-pt.Err)
		yMax = math.Max(yMax, pt.Y+pt.Err)
	}
	if len(p.Points) == 0 {
		xMin, xMax, yMin, yMax = 0, 1, 0, 1
	}
	if p.Target != 0 {
		yMin = math.Min(yMin, p.Target)
		yMax = math.Max(yMax, p.Target)
	}
	if xMax == xMin {
		xMin, xMax = xMin-1, xMax+1
	}
	if yMax == yMin {
		yMin, yMax = yMin-0.01, yMax+0.01
	}
	xPad := (xMax - xMin) * 0.05
	yPad := (yMax - yMin) * 0.05
	return xMin - xPad, xMax + xPad, yMin - yPad, yMax + yPad
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
