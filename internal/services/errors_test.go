package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"moviematch/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "omdb", "lookup", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"omdb", "lookup", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want services.Category
	}{
		{"nil", nil, ""},
		{"not found", services.Wrap(services.ErrNotFound, "similarity", "lookup", "missing", nil), services.CategoryNotFound},
		{"configuration", services.Wrap(services.ErrConfiguration, "catalog", "load", "missing files", nil), services.CategoryConfiguration},
		{"validation", services.Wrap(services.ErrValidation, "catalog", "load", "not square", nil), services.CategoryInvalid},
		{"external", services.Wrap(services.ErrExternalTool, "omdb", "lookup", "", errors.New("io")), services.CategoryExternal},
		{"transient", fmt.Errorf("outer: %w", services.Wrap(nil, "omdb", "", "", nil)), services.CategoryExternal},
		{"unmarked", errors.New("plain"), services.CategoryFatal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.Classify(tc.err); got != tc.want {
				t.Fatalf("Classify() = %q, want %q", got, tc.want)
			}
		})
	}
}
