package testsupport

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// ReferenceCatalog returns seven titles A..G where row A is
// [1.0, 0.9, 0.9, 0.5, 0.4, 0.3, 0.1] and the rest of the matrix is identity.
func ReferenceCatalog() ([]string, [][]float64) {
	titles := []string{"A", "B", "C", "D", "E", "F", "G"}
	matrix := make([][]float64, len(titles))
	for i := range matrix {
		matrix[i] = make([]float64, len(titles))
		matrix[i][i] = 1
	}
	matrix[0] = []float64{1.0, 0.9, 0.9, 0.5, 0.4, 0.3, 0.1}
	return titles, matrix
}

// EncodeNPY returns matrix as a C-ordered float64 .npy file.
func EncodeNPY(t testing.TB, matrix [][]float64) []byte {
	t.Helper()
	rows, cols := len(matrix), 0
	if rows > 0 {
		cols = len(matrix[0])
	}
	flat := make([]float64, 0, rows*cols)
	for _, row := range matrix {
		flat = append(flat, row...)
	}
	var buf bytes.Buffer
	if err := npyio.Write(&buf, mat.NewDense(rows, cols, flat)); err != nil {
		t.Fatalf("encode npy: %v", err)
	}
	return buf.Bytes()
}

// WriteCatalog stores titles and matrix at the given paths. The format follows
// each path's extension: .csv or .json for titles, .npy, .json or .csv for the
// matrix.
func WriteCatalog(t testing.TB, titlesPath, matrixPath string, titles []string, matrix [][]float64) {
	t.Helper()

	mkdirFor(t, titlesPath)
	switch strings.ToLower(filepath.Ext(titlesPath)) {
	case ".json":
		records := make([]map[string]string, 0, len(titles))
		for _, title := range titles {
			records = append(records, map[string]string{"title": title})
		}
		writeJSON(t, titlesPath, records)
	default:
		rows := [][]string{{"movie_id", "title"}}
		for i, title := range titles {
			rows = append(rows, []string{strconv.Itoa(i + 1), title})
		}
		writeCSV(t, titlesPath, rows)
	}

	mkdirFor(t, matrixPath)
	switch strings.ToLower(filepath.Ext(matrixPath)) {
	case ".json":
		writeJSON(t, matrixPath, matrix)
	case ".csv":
		rows := make([][]string, 0, len(matrix))
		for _, row := range matrix {
			fields := make([]string, 0, len(row))
			for _, v := range row {
				fields = append(fields, strconv.FormatFloat(v, 'g', -1, 64))
			}
			rows = append(rows, fields)
		}
		writeCSV(t, matrixPath, rows)
	default:
		if err := os.WriteFile(matrixPath, EncodeNPY(t, matrix), 0o644); err != nil {
			t.Fatalf("write %s: %v", matrixPath, err)
		}
	}
}

func mkdirFor(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
}

func writeJSON(t testing.TB, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeCSV(t testing.TB, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
