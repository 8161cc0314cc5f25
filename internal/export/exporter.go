// Package export persists per-cluster tables and intermediate engine
// state as delimited text files in the result directory.
package export

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-lloyd/lloyd/internal/cluster"
	"github.com/go-lloyd/lloyd/internal/dataset"
	"github.com/go-lloyd/lloyd/internal/util"
)

var _ cluster.StateExporter = (*Exporter)(nil)

type Options struct {
	resultDir    string
	separator    rune
	quote        rune
	nullSentinel string
	precision    int
}

type Option func(*Exporter)

func WithResultDir(dir string) Option {
	return func(e *Exporter) {
		e.opts.resultDir = dir
	}
}

func WithSeparator(sep rune) Option {
	return func(e *Exporter) {
		e.opts.separator = sep
	}
}

func WithQuote(q rune) Option {
	return func(e *Exporter) {
		e.opts.quote = q
	}
}

func WithNullSentinel(s string) Option {
	return func(e *Exporter) {
		e.opts.nullSentinel = s
	}
}

func WithPrecision(p int) Option {
	return func(e *Exporter) {
		e.opts.precision = p
	}
}

// Exporter writes delimited tables with a fixed numeric precision. Fields
// are quoted only when they contain the separator, mirroring the
// quote-when-necessary policy of the result format.
type Exporter struct {
	opts Options
}

func New(opts ...Option) *Exporter {
	e := &Exporter{
		opts: Options{
			resultDir:    "./result",
			separator:    ',',
			quote:        '~',
			nullSentinel: "None",
			precision:    5,
		},
	}
	for _, f := range opts {
		f(e)
	}
	return e
}

// Prepare clears and recreates the result directory. Destructive, no
// versioning.
func (e *Exporter) Prepare() error {
	if err := os.RemoveAll(e.opts.resultDir); err != nil {
		return fmt.Errorf("unable to remove result directory: %w", err)
	}
	if err := os.MkdirAll(e.opts.resultDir, 0o755); err != nil {
		return fmt.Errorf("unable to create result directory: %w", err)
	}
	return nil
}

func (e *Exporter) ResultDir() string {
	return e.opts.resultDir
}

// Distances writes the per-point distance table of one iteration as
// {step}__dist.csv: id, features and one cluster{i}dist column per active
// centroid.
func (e *Exporter) Distances(step int, set *dataset.PointSet, dists [][]float64) error {
	if set.Len() == 0 || len(dists) != set.Len() {
		return fmt.Errorf("distance table does not match the point set")
	}

	header := append([]string{dataset.IDColumn}, set.Columns()...)
	for i := range dists[0] {
		header = append(header, fmt.Sprintf("cluster%ddist", i))
	}

	rows := make([][]string, 0, set.Len())
	for i, point := range set.Points() {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatUint(point.ID, 10))
		for _, f := range point.Vec {
			row = append(row, e.formatFloat(f))
		}
		for _, d := range dists[i] {
			row = append(row, e.formatFloat(d))
		}
		rows = append(rows, row)
	}

	return e.writeFile(fmt.Sprintf("%d__dist.csv", step), header, rows)
}

// Clusters writes every cluster of one iteration as
// {step}_{i}_cluster.csv.
func (e *Exporter) Clusters(step int, part *cluster.Partition) error {
	for i := range part.Clusters {
		name := fmt.Sprintf("%d_%d_cluster.csv", step, i)
		if err := e.writeCluster(name, part.Clusters[i], i, nil); err != nil {
			return err
		}
	}
	return nil
}

// Final writes the converged partition as res_{i}_cluster.csv files and
// returns the written paths.
func (e *Exporter) Final(part *cluster.Partition, columns []string) ([]string, error) {
	paths := make([]string, 0, part.Len())
	for i := range part.Clusters {
		name := fmt.Sprintf("res_%d_cluster.csv", i)
		if err := e.writeCluster(name, part.Clusters[i], i, columns); err != nil {
			return nil, err
		}
		paths = append(paths, filepath.Join(e.opts.resultDir, name))
	}
	return paths, nil
}

func (e *Exporter) writeCluster(name string, c cluster.Cluster, idx int, columns []string) error {
	if len(columns) == 0 {
		columns = make([]string, 0)
		for i := 0; i < len(c.Points[0].Vec); i++ {
			columns = append(columns, fmt.Sprintf("f%d", i))
		}
	}
	header := append([]string{dataset.IDColumn}, columns...)
	header = append(header, "cluster")

	rows := make([][]string, 0, len(c.Points))
	for _, point := range c.Points {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatUint(point.ID, 10))
		for _, f := range point.Vec {
			row = append(row, e.formatFloat(f))
		}
		row = append(row, strconv.Itoa(idx))
		rows = append(rows, row)
	}
	return e.writeFile(name, header, rows)
}

func (e *Exporter) writeFile(name string, header []string, rows [][]string) error {
	buffer := util.GetBytesBuffer()
	defer util.PutBytesBuffer(buffer)
	defer buffer.Reset()

	e.writeRow(buffer, header)
	for _, row := range rows {
		e.writeRow(buffer, row)
	}

	path := filepath.Join(e.opts.resultDir, name)
	if err := os.WriteFile(path, buffer.Bytes(), 0o644); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return nil
}

func (e *Exporter) writeRow(buffer *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buffer.WriteRune(e.opts.separator)
		}
		if strings.ContainsRune(field, e.opts.separator) {
			buffer.WriteRune(e.opts.quote)
			buffer.WriteString(field)
			buffer.WriteRune(e.opts.quote)
		} else {
			buffer.WriteString(field)
		}
	}
	buffer.WriteByte('\n')
}

func (e *Exporter) formatFloat(f float64) string {
	if math.IsNaN(f) {
		return e.opts.nullSentinel
	}
	return strconv.FormatFloat(f, 'f', e.opts.precision, 64)
}
