package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestGraph_AddPackage(t *testing.T) {
	g := domain.NewGraph()

	if err := g.AddPackage("pkg-a", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := g.AddPackage("pkg-a", nil)
	if err == nil {
		t.Fatal("expected error when adding duplicate package, got nil")
	}
	if !errors.Is(err, domain.ErrScan) || !errors.Is(err, domain.ErrDuplicatePackageName) {
		t.Errorf("expected duplicate package error, got %v", err)
	}
	zErr, ok := err.(*zerr.Error)
	if !ok {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	if name, ok := zErr.Metadata()["package"].(string); !ok || name != "pkg-a" {
		t.Errorf("expected metadata package=pkg-a, got %v", zErr.Metadata()["package"])
	}
}

func TestGraph_Validate_Cycle(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddPackage("A", []string{"B"}))
	require.NoError(t, g.AddPackage("B", []string{"A"}))

	err := g.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrScan)
	assert.ErrorIs(t, err, domain.ErrCycleDetected)

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "A -> B -> A", zErr.Metadata()["cycle"])
}

func TestGraph_Walk(t *testing.T) {
	g := domain.NewGraph()
	// A -> B -> C
	require.NoError(t, g.AddPackage("A", []string{"B"}))
	require.NoError(t, g.AddPackage("B", []string{"C"}))
	require.NoError(t, g.AddPackage("C", nil))
	require.NoError(t, g.Validate())

	executed := make([]string, 0, 3)
	for name := range g.Walk() {
		executed = append(executed, name)
	}
	assert.Equal(t, []string{"C", "B", "A"}, executed)
}

func TestGraph_Dependents(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddPackage("core", nil))
	require.NoError(t, g.AddPackage("web", []string{"core"}))
	require.NoError(t, g.AddPackage("cli", []string{"core", "web"}))

	assert.Equal(t, []string{"web", "cli"}, g.Dependents("core"))
	assert.Equal(t, []string{"cli"}, g.Dependents("web"))
	assert.Empty(t, g.Dependents("cli"))
}

func TestGraph_Order(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddPackage("app", []string{"lib", "util"}))
	require.NoError(t, g.AddPackage("lib", []string{"util"}))
	require.NoError(t, g.AddPackage("docs", nil))
	require.NoError(t, g.AddPackage("util", nil))

	tests := []struct {
		name   string
		subset []string
		want   []string
	}{
		{"full graph", []string{"app", "lib", "docs", "util"}, []string{"docs", "util", "lib", "app"}},
		{"induced subgraph skips missing edges", []string{"app", "util"}, []string{"util", "app"}},
		{"independent packages keep discovery order", []string{"util", "docs"}, []string{"docs", "util"}},
		{"empty", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Order(tt.subset)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGraph_Order_UnknownPackage(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddPackage("a", nil))

	_, err := g.Order([]string{"missing"})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrPackageNotFound.Error())
}

func TestGraph_Order_Cycle(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddPackage("a", []string{"b"}))
	require.NoError(t, g.AddPackage("b", []string{"a"}))

	_, err := g.Order([]string{"a", "b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrScan)
}
