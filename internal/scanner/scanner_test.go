package scanner

import (
	"context"
	"reflect"
	"testing"

	"IntelliSearch/internal/domain"
)

type stubScanner struct{ name string }

func (s stubScanner) Name() string { return s.name }

func (s stubScanner) Search(context.Context, domain.SearchQuery) ([]domain.SearchResultStub, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubScanner{name: "rod"})
	reg.Register(stubScanner{name: "http"})

	sc, err := reg.Resolve("http")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if sc.Name() != "http" {
		t.Fatalf("unexpected scanner: %s", sc.Name())
	}

	if _, err := reg.Resolve("selenium"); err == nil {
		t.Fatal("expected error for unknown scanner")
	}

	if got := reg.Names(); !reflect.DeepEqual(got, []string{"http", "rod"}) {
		t.Fatalf("unexpected names: %v", got)
	}
}

func TestRegistryZeroValueRegister(t *testing.T) {
	t.Parallel()

	var reg Registry
	reg.Register(stubScanner{name: "http"})
	if _, err := reg.Resolve("http"); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
}
