package catalog_test

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"moviematch/internal/catalog"
	"moviematch/internal/services"
	"moviematch/internal/testsupport"
)

var fixtureMatrix = [][]float64{
	{1.0, 0.2, 0.7},
	{0.2, 1.0, 0.4},
	{0.7, 0.4, 1.0},
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFormatsAgree(t *testing.T) {
	dir := t.TempDir()
	csvTitles := writeFile(t, dir, "titles.csv", []byte("movie_id,title\n1,Alien\n2,\"Heat, Director's Cut\"\n3,Zodiac\n"))
	jsonTitles := writeFile(t, dir, "titles.json", []byte(`[{"movie_id":1,"title":"Alien"},{"title":"Heat, Director's Cut"},{"title":"Zodiac"}]`))
	plainJSONTitles := writeFile(t, dir, "plain.json", []byte(`["Alien","Heat, Director's Cut","Zodiac"]`))

	npyMatrix := writeFile(t, dir, "similarity.npy", testsupport.EncodeNPY(t, fixtureMatrix))
	jsonMatrix := writeFile(t, dir, "similarity.json", []byte("[[1.0,0.2,0.7],[0.2,1.0,0.4],[0.7,0.4,1.0]]"))
	csvMatrix := writeFile(t, dir, "similarity.csv", []byte("1.0,0.2,0.7\n0.2, 1.0,0.4\n0.7,0.4,1.0\n"))

	cases := []struct {
		name           string
		titles, matrix string
	}{
		{"csv+npy", csvTitles, npyMatrix},
		{"json objects+json", jsonTitles, jsonMatrix},
		{"json strings+csv", plainJSONTitles, csvMatrix},
	}
	wantTitles := []string{"Alien", "Heat, Director's Cut", "Zodiac"}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cat, err := catalog.Load(tc.titles, tc.matrix)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(cat.Titles(), wantTitles) {
				t.Fatalf("titles = %v, want %v", cat.Titles(), wantTitles)
			}
			for i := range fixtureMatrix {
				for j := range fixtureMatrix[i] {
					if got := cat.Score(i, j); got != fixtureMatrix[i][j] {
						t.Fatalf("score(%d,%d) = %v, want %v", i, j, got, fixtureMatrix[i][j])
					}
				}
			}
		})
	}
}

func TestLoadMissingFilesNamesBothPaths(t *testing.T) {
	dir := t.TempDir()
	titles := filepath.Join(dir, "movie_list.csv")
	matrix := filepath.Join(dir, "similarity.npy")

	_, err := catalog.Load(titles, matrix)
	if !errors.Is(err, catalog.ErrMissingData) {
		t.Fatalf("expected ErrMissingData, got %v", err)
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
	if !strings.Contains(err.Error(), titles) || !strings.Contains(err.Error(), matrix) {
		t.Fatalf("expected both paths in %q", err.Error())
	}
}

func TestLoadRejectsMisalignedData(t *testing.T) {
	dir := t.TempDir()
	titles := writeFile(t, dir, "titles.json", []byte(`["A","B"]`))
	matrix := writeFile(t, dir, "similarity.npy", testsupport.EncodeNPY(t, fixtureMatrix))

	_, err := catalog.Load(titles, matrix)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadRejectsNonSquareMatrix(t *testing.T) {
	dir := t.TempDir()
	titles := writeFile(t, dir, "titles.json", []byte(`["A","B"]`))
	matrix := writeFile(t, dir, "similarity.csv", []byte("1,0.5,0.1\n0.5,1,0.2\n"))

	_, err := catalog.Load(titles, matrix)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadRejectsCSVWithoutTitleColumn(t *testing.T) {
	dir := t.TempDir()
	titles := writeFile(t, dir, "titles.csv", []byte("name\nA\n"))
	matrix := writeFile(t, dir, "similarity.json", []byte("[[1]]"))

	if _, err := catalog.Load(titles, matrix); err == nil || !strings.Contains(err.Error(), "title") {
		t.Fatalf("expected missing title column error, got %v", err)
	}
}

// rawNPY builds a version 1.0 .npy file around body.
func rawNPY(descr string, fortran bool, shape string, body any) []byte {
	order := "False"
	if fortran {
		order = "True"
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': %s, 'shape': %s, }", descr, order, shape)
	header += strings.Repeat(" ", 63-(10+len(header))%64) + "\n"
	data := append([]byte("\x93NUMPY\x01\x00"), byte(len(header)), byte(len(header)>>8))
	data = append(data, header...)

	var byteOrder binary.ByteOrder = binary.LittleEndian
	if strings.HasPrefix(descr, ">") {
		byteOrder = binary.BigEndian
	}
	out, err := binary.Append(data, byteOrder, body)
	if err != nil {
		panic(err)
	}
	return out
}

func TestLoadNPYVariants(t *testing.T) {
	asymmetric := [][]float64{{1, 0.2}, {0.8, 1}}
	cases := []struct {
		name string
		data []byte
	}{
		{"float32", rawNPY("<f4", false, "(2, 2)", []float32{1, 0.25, 0.75, 1})},
		{"big endian", rawNPY(">f8", false, "(2, 2)", []float64{1, 0.2, 0.8, 1})},
		{"fortran order", rawNPY("<f8", true, "(2, 2)", []float64{1, 0.8, 0.2, 1})},
		{"numpy writer", testsupport.EncodeNPY(t, asymmetric)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			titles := writeFile(t, dir, "titles.json", []byte(`["A","B"]`))
			matrix := writeFile(t, dir, "similarity.npy", tc.data)

			cat, err := catalog.Load(titles, matrix)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			want := asymmetric
			if tc.name == "float32" {
				want = [][]float64{{1, 0.25}, {0.75, 1}}
			}
			for i := range want {
				for j := range want[i] {
					if got := cat.Score(i, j); got != want[i][j] {
						t.Fatalf("Score(%d, %d) = %v, want %v", i, j, got, want[i][j])
					}
				}
			}
		})
	}
}

func TestLoadRejectsUnusableNPY(t *testing.T) {
	cases := map[string][]byte{
		"one dimension": rawNPY("<f8", false, "(2,)", []float64{1, 1}),
		"integer dtype": rawNPY("<i8", false, "(1, 1)", []int64{1}),
		"not npy":       []byte("plain text"),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			titles := writeFile(t, dir, "titles.json", []byte(`["Solo"]`))
			matrix := writeFile(t, dir, "similarity.npy", data)
			if _, err := catalog.Load(titles, matrix); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestJSONMatrixAcceptsNonFiniteValues(t *testing.T) {
	dir := t.TempDir()
	titles := writeFile(t, dir, "titles.json", []byte(`["A","B"]`))
	matrix := writeFile(t, dir, "similarity.json", []byte(`[[1, "NaN"],["NaN", 1]]`))

	cat, err := catalog.Load(titles, matrix)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !math.IsNaN(cat.Score(0, 1)) || !math.IsNaN(cat.Score(1, 0)) {
		t.Fatalf("expected NaN scores")
	}
	if cat.NonFinite() != 2 {
		t.Fatalf("NonFinite = %d, want 2", cat.NonFinite())
	}
}

func TestIndexOfReturnsFirstOccurrence(t *testing.T) {
	cat, err := catalog.New([]string{"Heat", "Alien", "Heat"}, [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	idx, ok := cat.IndexOf("Heat")
	if !ok || idx != 0 {
		t.Fatalf("IndexOf(Heat) = %d, %v", idx, ok)
	}
	if _, ok := cat.IndexOf("heat"); ok {
		t.Fatal("expected case-sensitive lookup")
	}
}

func TestNewRejectsRaggedMatrix(t *testing.T) {
	_, err := catalog.New([]string{"A", "B"}, [][]float64{{1, 0}, {0}})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSortedTitlesUsesCollation(t *testing.T) {
	cat, err := catalog.New([]string{"zodiac", "Élite Squad", "Alien", "Heat"}, [][]float64{
		{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []string{"Alien", "Élite Squad", "Heat", "zodiac"}
	if got := cat.SortedTitles(); !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedTitles = %v, want %v", got, want)
	}
	if cat.Title(0) != "zodiac" {
		t.Fatal("sorting must not reorder the catalog")
	}
}
