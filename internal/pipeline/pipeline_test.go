package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/go-lloyd/lloyd/internal/cluster"
	"github.com/go-lloyd/lloyd/internal/dataset"
	"github.com/go-lloyd/lloyd/internal/run/model"
	"github.com/go-lloyd/lloyd/internal/selector"
)

func testManager(calls *[]string, failAt string) *manager {
	fail := func(step string) error {
		if failAt == step {
			return errors.New(step + " failed")
		}
		return nil
	}

	set, _ := dataset.New([]dataset.Point{
		{ID: 0, Vec: []float64{0, 0}},
		{ID: 1, Vec: []float64{1, 1}},
	}, nil)

	return &manager{
		resultDir: "result",
		opts: Options{
			inputFile:     "kmeans.csv",
			maxRunsStored: 10,
			deps: pullDependencies{
				load: func(path string) (*dataset.PointSet, error) {
					*calls = append(*calls, "load")
					return set, fail("load")
				},
				prepare: func() error {
					*calls = append(*calls, "prepare")
					return fail("prepare")
				},
				selectRun: func(_ context.Context, _ *dataset.PointSet) (*cluster.Partition, int, []selector.Result, error) {
					*calls = append(*calls, "select")
					return &cluster.Partition{
						Clusters: make([]cluster.Cluster, 2),
						Steps:    3,
					}, 2, []selector.Result{{K: 2, Score: 0.8}}, fail("select")
				},
				exportFinal: func(_ *cluster.Partition, _ []string) ([]string, error) {
					*calls = append(*calls, "export")
					return []string{"res_0_cluster.csv", "res_1_cluster.csv"}, fail("export")
				},
				renderChart: func(_ string, _ []selector.Result) (string, error) {
					*calls = append(*calls, "chart")
					return "result/dann_index.html", fail("chart")
				},
				storeRun: func(_ context.Context, run model.Run) error {
					*calls = append(*calls, "store")
					return fail("store")
				},
				pruneRuns: func(_ context.Context, maxStored int) error {
					*calls = append(*calls, "prune")
					return nil
				},
			},
		},
	}
}

func TestRunOrder(t *testing.T) {
	var calls []string
	if err := testManager(&calls, "").Run(context.Background()); err != nil {
		t.Fatalf("the error should not be returned, got %v", err)
	}

	expected := []string{"load", "prepare", "select", "export", "chart", "store", "prune"}
	if len(calls) != len(expected) {
		t.Fatalf("pipeline steps got: %v, expected: %v", calls, expected)
	}
	for i := range expected {
		if calls[i] != expected[i] {
			t.Errorf("step %d got: %v, expected: %v", i, calls[i], expected[i])
		}
	}
}

func TestRunStopsOnFailure(t *testing.T) {
	tests := []struct {
		name          string
		failAt        string
		expectedCalls int
	}{
		{name: "load_failure", failAt: "load", expectedCalls: 1},
		{name: "prepare_failure", failAt: "prepare", expectedCalls: 2},
		{name: "select_failure", failAt: "select", expectedCalls: 3},
		{name: "export_failure", failAt: "export", expectedCalls: 4},
		{name: "chart_failure", failAt: "chart", expectedCalls: 5},
		{name: "store_failure", failAt: "store", expectedCalls: 6},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var calls []string
			err := testManager(&calls, test.failAt).Run(context.Background())
			if err == nil {
				t.Fatalf("a %s step failure must fail the pipeline", test.failAt)
			}
			if len(calls) != test.expectedCalls {
				t.Errorf("steps executed got: %v, expected %d steps", calls, test.expectedCalls)
			}
		})
	}
}

func TestRunWithoutHistory(t *testing.T) {
	var calls []string
	m := testManager(&calls, "")
	m.opts.deps.storeRun = nil
	m.opts.deps.pruneRuns = nil
	m.opts.deps.renderChart = nil

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("the error should not be returned, got %v", err)
	}
	expected := []string{"load", "prepare", "select", "export"}
	if len(calls) != len(expected) {
		t.Errorf("pipeline steps got: %v, expected: %v", calls, expected)
	}
}
