package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// IDColumn is the header name of the row identifier column.
const IDColumn = "n"

// ReadCSV consumes the whole file into a PointSet before any clustering
// begins. The table must carry a header row with the id column and at
// least one numeric feature column.
func ReadCSV(path string) (*PointSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open input file: %w", err)
	}
	defer file.Close()

	return Read(file)
}

// Read parses a delimited table from r.
func Read(r io.Reader) (*PointSet, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: missing header or data rows", ErrMalformedInput)
	}

	header := rows[0]
	idIdx := -1
	columns := make([]string, 0, len(header)-1)
	for i, name := range header {
		if name == IDColumn {
			idIdx = i
			continue
		}
		columns = append(columns, name)
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("%w: id column %q not found", ErrMalformedInput, IDColumn)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no feature columns", ErrMalformedInput)
	}

	points := make([]Point, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, expected %d",
				ErrMalformedInput, n+1, len(row), len(header))
		}
		id, err := strconv.ParseUint(row[idIdx], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d id %q is not an unsigned integer",
				ErrMalformedInput, n+1, row[idIdx])
		}
		vec := make([]float64, 0, len(columns))
		for i, field := range row {
			if i == idIdx {
				continue
			}
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %q value %q is not numeric",
					ErrMalformedInput, n+1, header[i], field)
			}
			vec = append(vec, value)
		}
		points = append(points, Point{ID: id, Vec: vec})
	}

	return New(points, columns)
}
