package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotASCII draws v̂ against grid index. Overflowed estimates become gaps.
func PlotASCII(grid, values []float64, caption string) string {
	if len(values) == 0 {
		return caption + ": no data"
	}

	data := make([]float64, len(values))
	finite := 0
	for i, v := range values {
		if isFinite(v) {
			data[i] = v
			finite++
		} else {
			data[i] = math.NaN()
		}
	}
	if finite == 0 {
		return caption + ": no finite estimates"
	}

	if len(grid) == len(values) {
		caption = fmt.Sprintf("%s  (x from %.3f to %.3f)", caption, grid[0], grid[len(grid)-1])
	}

	return asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(72),
		asciigraph.Caption(caption),
	)
}

// errorPoints pairs the value curve with its confidence half-widths.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// SavePNG writes v̂(x) with 95% error bars to path. The image format follows
// the file extension (png, svg, pdf).
func SavePNG(path string, grid, values, stderrs []float64, title string) error {
	if len(grid) != len(values) {
		return fmt.Errorf("grid has %d points, values has %d", len(grid), len(values))
	}

	pts := make(plotter.XYs, 0, len(grid))
	errs := make(plotter.YErrors, 0, len(grid))
	for i := range grid {
		if !isFinite(values[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: grid[i], Y: values[i]})

		half := 0.0
		if i < len(stderrs) && isFinite(stderrs[i]) {
			half = 1.96 * stderrs[i]
		}
		errs = append(errs, struct{ Low, High float64 }{half, half})
	}
	if len(pts) == 0 {
		return fmt.Errorf("no finite estimates to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "v(x)"
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	bars, err := plotter.NewYErrorBars(errorPoints{XYs: pts, YErrors: errs})
	if err != nil {
		return err
	}
	p.Add(line, points, bars)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
