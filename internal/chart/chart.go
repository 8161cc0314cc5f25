// Package chart renders the validity-score-vs-k line chart of a
// model-selection sweep.
package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-lloyd/lloyd/internal/selector"
)

type Options struct {
	fileName string
}

type Option func(*Renderer)

func WithFileName(name string) Option {
	return func(r *Renderer) {
		r.opts.fileName = name
	}
}

type Renderer struct {
	opts Options
}

func New(options ...Option) *Renderer {
	r := &Renderer{opts: Options{fileName: "dann_index.html"}}
	for _, f := range options {
		f(r)
	}
	return r
}

// RenderFile writes the chart into the result directory and returns the
// written path.
func (r *Renderer) RenderFile(resultDir string, results []selector.Result) (string, error) {
	path := filepath.Join(resultDir, r.opts.fileName)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("unable to create chart file: %w", err)
	}
	defer file.Close()

	if err := r.Render(file, results); err != nil {
		return "", err
	}
	return path, nil
}

// Render draws the score-vs-k line with point markers.
func (r *Renderer) Render(w io.Writer, results []selector.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("nothing to render, no scored candidates")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Dann Index over Clusters"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Clusters"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Score", Min: 0, Max: 1}),
	)

	xAxis := make([]string, 0, len(results))
	series := make([]opts.LineData, 0, len(results))
	for _, res := range results {
		xAxis = append(xAxis, fmt.Sprintf("%d", res.K))
		series = append(series, opts.LineData{Value: res.Score})
	}

	line.SetXAxis(xAxis).
		AddSeries("Score", series).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: pointer(true)}))

	if err := line.Render(w); err != nil {
		return fmt.Errorf("unable to render chart: %w", err)
	}
	return nil
}

func pointer(b bool) *bool {
	return &b
}
