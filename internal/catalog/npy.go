package catalog

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sbinet/npyio/npy"
)

// parseNPY decodes a 2-D float array written by numpy.save. Either byte order
// and either memory layout is accepted; the result is row-major.
func parseNPY(data []byte) ([]float64, int, int, error) {
	r, err := npy.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read npy header: %w", err)
	}
	descr := r.Header.Descr
	if len(descr.Shape) != 2 {
		return nil, 0, 0, fmt.Errorf("npy array has %d dimensions, want 2", len(descr.Shape))
	}
	rows, cols := descr.Shape[0], descr.Shape[1]

	var scores []float64
	switch {
	case strings.HasSuffix(descr.Type, "f8"):
		scores = make([]float64, rows*cols)
		if err := r.Read(&scores); err != nil {
			return nil, 0, 0, fmt.Errorf("read npy body: %w", err)
		}
	case strings.HasSuffix(descr.Type, "f4"):
		narrow := make([]float32, rows*cols)
		if err := r.Read(&narrow); err != nil {
			return nil, 0, 0, fmt.Errorf("read npy body: %w", err)
		}
		scores = make([]float64, len(narrow))
		for i, v := range narrow {
			scores[i] = float64(v)
		}
	default:
		return nil, 0, 0, fmt.Errorf("unsupported npy dtype %q", descr.Type)
	}
	if len(scores) != rows*cols {
		return nil, 0, 0, fmt.Errorf("npy body holds %d values, want %d", len(scores), rows*cols)
	}
	if descr.Fortran {
		scores = columnToRowMajor(scores, rows, cols)
	}
	return scores, rows, cols, nil
}

func columnToRowMajor(values []float64, rows, cols int) []float64 {
	out := make([]float64, len(values))
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			out[r*cols+c] = values[c*rows+r]
		}
	}
	return out
}
