package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"moviematch/internal/services"
)

// ErrMissingData reports that the title list or matrix file does not exist.
var ErrMissingData = errors.New("catalog data files missing")

// Load reads the title list and similarity matrix from disk and verifies
// that they are index-aligned.
func Load(titlesPath, matrixPath string) (*Catalog, error) {
	if err := checkPresent(titlesPath, matrixPath); err != nil {
		return nil, err
	}

	titles, err := loadTitles(titlesPath)
	if err != nil {
		return nil, err
	}
	scores, rows, cols, err := loadMatrix(matrixPath)
	if err != nil {
		return nil, err
	}
	if rows != cols {
		return nil, services.Wrap(services.ErrValidation, "catalog", "load matrix",
			fmt.Sprintf("%s is %dx%d, want a square matrix", matrixPath, rows, cols), nil)
	}
	if rows != len(titles) {
		return nil, services.Wrap(services.ErrValidation, "catalog", "align",
			fmt.Sprintf("%d titles in %s but %d matrix rows in %s", len(titles), titlesPath, rows, matrixPath), nil)
	}
	return newFromFlat(titles, scores)
}

func checkPresent(titlesPath, matrixPath string) error {
	missing := false
	for _, path := range []string{titlesPath, matrixPath} {
		if strings.TrimSpace(path) == "" {
			missing = true
			continue
		}
		info, err := os.Stat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			missing = true
		case err != nil:
			return services.Wrap(services.ErrConfiguration, "catalog", "stat", path, err)
		case info.IsDir():
			missing = true
		}
	}
	if !missing {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "catalog", "load",
		fmt.Sprintf("expected titles at %s and similarity matrix at %s", titlesPath, matrixPath), ErrMissingData)
}

func loadTitles(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "read titles", path, err)
	}
	var titles []string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		titles, err = parseTitlesCSV(data)
	case ".json":
		titles, err = parseTitlesJSON(data)
	default:
		err = fmt.Errorf("unsupported title file extension %q", ext)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "catalog", "parse titles", path, err)
	}
	return titles, nil
}

func parseTitlesCSV(data []byte) ([]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, err
	}
	column := -1
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		if strings.EqualFold(strings.TrimSpace(name), "title") {
			column = i
			break
		}
	}
	if column < 0 {
		return nil, errors.New(`csv header has no "title" column`)
	}
	var titles []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if column >= len(record) {
			return nil, fmt.Errorf("row %d has no title column", len(titles)+2)
		}
		titles = append(titles, record[column])
	}
	return titles, nil
}

func parseTitlesJSON(data []byte) ([]string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(raw))
	for i, item := range raw {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) > 0 && trimmed[0] == '"' {
			var title string
			if err := json.Unmarshal(trimmed, &title); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			titles = append(titles, title)
			continue
		}
		var record struct {
			Title *string `json:"title"`
		}
		if err := json.Unmarshal(trimmed, &record); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if record.Title == nil {
			return nil, fmt.Errorf("entry %d has no title field", i)
		}
		titles = append(titles, *record.Title)
	}
	return titles, nil
}

func loadMatrix(path string) ([]float64, int, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, services.Wrap(services.ErrConfiguration, "catalog", "read matrix", path, err)
	}
	var (
		scores     []float64
		rows, cols int
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".npy":
		scores, rows, cols, err = parseNPY(data)
	case ".json":
		scores, rows, cols, err = parseMatrixJSON(data)
	case ".csv":
		scores, rows, cols, err = parseMatrixCSV(data)
	default:
		err = fmt.Errorf("unsupported matrix file extension %q", ext)
	}
	if err != nil {
		return nil, 0, 0, services.Wrap(services.ErrValidation, "catalog", "parse matrix", path, err)
	}
	return scores, rows, cols, nil
}

// jsonScore accepts numbers plus null and the strings "NaN"/"Infinity" that
// Python writers emit for non-finite values.
type jsonScore float64

func (s *jsonScore) UnmarshalJSON(data []byte) error {
	text := string(bytes.TrimSpace(data))
	if text == "null" {
		*s = jsonScore(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(strings.Trim(text, `"`), 64)
	if err != nil {
		return fmt.Errorf("invalid score %s", text)
	}
	*s = jsonScore(v)
	return nil
}

func parseMatrixJSON(data []byte) ([]float64, int, int, error) {
	var matrix [][]jsonScore
	if err := json.Unmarshal(data, &matrix); err != nil {
		return nil, 0, 0, err
	}
	rows := len(matrix)
	if rows == 0 {
		return nil, 0, 0, nil
	}
	cols := len(matrix[0])
	scores := make([]float64, 0, rows*cols)
	for i, row := range matrix {
		if len(row) != cols {
			return nil, 0, 0, fmt.Errorf("row %d has %d columns, want %d", i, len(row), cols)
		}
		for _, v := range row {
			scores = append(scores, float64(v))
		}
	}
	return scores, rows, cols, nil
}

func parseMatrixCSV(data []byte) ([]float64, int, int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = 0
	reader.TrimLeadingSpace = true
	var (
		scores []float64
		rows   int
		cols   int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, 0, err
		}
		if rows == 0 {
			cols = len(record)
			scores = make([]float64, 0, cols*cols)
		}
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("row %d column %d: %w", rows+1, j+1, err)
			}
			scores = append(scores, v)
		}
		rows++
	}
	return scores, rows, cols, nil
}
