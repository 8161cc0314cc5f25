package dataset

import (
	"errors"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		expectedErr error
		expectedLen int
		expectedDim int
	}{
		{
			name:        "positive",
			in:          "n,x,y,z\n0,0,0,0\n1,0,0,1\n2,10,10,10\n3,10,10,11\n",
			expectedLen: 4,
			expectedDim: 3,
		},
		{
			name:        "positive_id_column_not_first",
			in:          "x,n,y\n1.5,0,2.5\n3.5,1,4.5\n",
			expectedLen: 2,
			expectedDim: 2,
		},
		{
			name:        "non_numeric_feature",
			in:          "n,x,y\n0,1,two\n",
			expectedErr: ErrMalformedInput,
		},
		{
			name:        "non_numeric_id",
			in:          "n,x,y\nzero,1,2\n",
			expectedErr: ErrMalformedInput,
		},
		{
			name:        "duplicate_id",
			in:          "n,x,y\n0,1,2\n0,3,4\n",
			expectedErr: ErrMalformedInput,
		},
		{
			name:        "missing_id_column",
			in:          "x,y\n1,2\n",
			expectedErr: ErrMalformedInput,
		},
		{
			name:        "no_rows",
			in:          "n,x,y\n",
			expectedErr: ErrMalformedInput,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			set, err := Read(strings.NewReader(test.in))
			if test.expectedErr != nil {
				if !errors.Is(err, test.expectedErr) {
					t.Errorf("reading the table, err got: %v, expected: %v", err, test.expectedErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("the error should not be returned, got %v", err)
			}
			if set.Len() != test.expectedLen {
				t.Errorf("the number of points got: %v, expected: %v", set.Len(), test.expectedLen)
			}
			if set.Dimensions() != test.expectedDim {
				t.Errorf("dimensionality got: %v, expected: %v", set.Dimensions(), test.expectedDim)
			}
		})
	}
}

func TestReadLookup(t *testing.T) {
	set, err := Read(strings.NewReader("x,n,y\n1.5,7,2.5\n3.5,8,4.5\n"))
	if err != nil {
		t.Fatalf("the error should not be returned, got %v", err)
	}

	point, ok := set.ByID(8)
	if !ok {
		t.Fatalf("point with id 8 must be present")
	}
	if !point.Vec.Equal([]float64{3.5, 4.5}) {
		t.Errorf("point vector got: %v, expected: %v", point.Vec, []float64{3.5, 4.5})
	}
	if _, ok := set.ByID(100); ok {
		t.Errorf("point with id 100 must not be present")
	}
	if got := set.Columns(); len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("columns got: %v, expected: [x y]", got)
	}
}
