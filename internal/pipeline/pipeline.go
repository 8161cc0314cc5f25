// Package pipeline owns the batch flow: load the input table, select the
// best cluster count, export the winning partition, render the score
// chart and record the run in history.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-lloyd/lloyd/internal/chart"
	"github.com/go-lloyd/lloyd/internal/cluster"
	"github.com/go-lloyd/lloyd/internal/dataset"
	"github.com/go-lloyd/lloyd/internal/export"
	"github.com/go-lloyd/lloyd/internal/logging"
	runDb "github.com/go-lloyd/lloyd/internal/run/database"
	"github.com/go-lloyd/lloyd/internal/run/model"
	"github.com/go-lloyd/lloyd/internal/selector"
)

// Contract for returning the Manager instance
type ProvideFn func() (Manager, error)

type Manager interface {
	// Run executes the whole batch pipeline once.
	Run(context.Context) error
}

// Abstractions for getting dependencies
type (
	loadFn        func(path string) (*dataset.PointSet, error)
	selectRunFn   func(ctx context.Context, set *dataset.PointSet) (*cluster.Partition, int, []selector.Result, error)
	prepareFn     func() error
	exportFinalFn func(part *cluster.Partition, columns []string) ([]string, error)
	renderChartFn func(resultDir string, results []selector.Result) (string, error)
	storeRunFn    func(ctx context.Context, run model.Run) error
	pruneRunsFn   func(ctx context.Context, maxStored int) error
)

type pullDependencies struct {
	load        loadFn
	selectRun   selectRunFn
	prepare     prepareFn
	exportFinal exportFinalFn
	renderChart renderChartFn
	storeRun    storeRunFn
	pruneRuns   pruneRunsFn
}

type Options struct {
	inputFile     string
	maxRunsStored int
	deps          pullDependencies
}

type Option func(*manager)

func WithInputFile(path string) Option {
	return func(m *manager) {
		m.opts.inputFile = path
	}
}

func WithMaxRunsStored(n int) Option {
	return func(m *manager) {
		m.opts.maxRunsStored = n
	}
}

func New(
	selection *selector.Manager,
	exporter *export.Exporter,
	renderer *chart.Renderer,
	history *runDb.DB,
	opts ...Option,
) (*manager, error) {
	if selection == nil {
		return nil, fmt.Errorf("selector instance is not created")
	}
	if exporter == nil {
		return nil, fmt.Errorf("exporter instance is not created")
	}

	m := &manager{
		opts: Options{inputFile: "kmeans.csv"},
	}
	for _, f := range opts {
		f(m)
	}

	m.opts.deps = pullDependencies{
		load:        dataset.ReadCSV,
		selectRun:   selection.Run,
		prepare:     exporter.Prepare,
		exportFinal: exporter.Final,
	}
	if renderer != nil {
		resultDir := exporter.ResultDir()
		m.opts.deps.renderChart = func(_ string, results []selector.Result) (string, error) {
			return renderer.RenderFile(resultDir, results)
		}
	}
	if history != nil {
		m.opts.deps.storeRun = history.Store
		m.opts.deps.pruneRuns = history.PruneOldest
	}
	m.resultDir = exporter.ResultDir()

	return m, nil
}

type manager struct {
	opts      Options
	resultDir string
}

func (m *manager) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	set, err := m.opts.deps.load(m.opts.inputFile)
	if err != nil {
		return fmt.Errorf("unable to load input table: %w", err)
	}
	logger.Infof("loaded %d points of dimensionality %d from %s",
		set.Len(), set.Dimensions(), m.opts.inputFile)

	// The result directory must exist before the final run starts, the
	// engine streams intermediate state into it.
	if err := m.opts.deps.prepare(); err != nil {
		return fmt.Errorf("unable to prepare result directory: %w", err)
	}

	part, bestK, results, err := m.opts.deps.selectRun(ctx, set)
	if err != nil {
		return fmt.Errorf("model selection failed: %w", err)
	}

	paths, err := m.opts.deps.exportFinal(part, set.Columns())
	if err != nil {
		return fmt.Errorf("unable to export final partition: %w", err)
	}
	logger.Infof("exported %d cluster tables for k=%d after %d iterations",
		len(paths), bestK, part.Steps)

	if m.opts.deps.renderChart != nil {
		path, err := m.opts.deps.renderChart(m.resultDir, results)
		if err != nil {
			return fmt.Errorf("unable to render chart: %w", err)
		}
		logger.Infof("rendered score chart to %s", path)
	}

	if m.opts.deps.storeRun != nil {
		record := model.NewRun(m.opts.inputFile, bestK, results, time.Now())
		if err := m.opts.deps.storeRun(ctx, record); err != nil {
			return fmt.Errorf("unable to store run record: %w", err)
		}
		if m.opts.deps.pruneRuns != nil {
			if err := m.opts.deps.pruneRuns(ctx, m.opts.maxRunsStored); err != nil {
				logger.Errorf("unable to prune run history: %v", err)
			}
		}
	}

	return nil
}
