package engine

import (
	"errors"
	"log/slog"
	"testing"
)

func TestListEngines(t *testing.T) {
	names := ListEngines()
	want := map[string]bool{"duckdb": false, "sqlite": false}
	for _, name := range names {
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("engine %q not registered", name)
		}
	}
}

func TestNew_KnownEngines(t *testing.T) {
	for _, name := range engineNames {
		eng, err := New(Config{Type: name}, nil)
		if err != nil {
			t.Fatalf("New(%q) errored: %v", name, err)
		}
		if eng.Name() != name {
			t.Errorf("engine name = %q, want %q", eng.Name(), name)
		}
	}
}

func TestNew_UnknownEngine(t *testing.T) {
	_, err := New(Config{Type: "gpu"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown engine, got nil")
	}
	var unknown *UnknownEngineError
	if !errors.As(err, &unknown) {
		t.Fatalf("error type = %T, want *UnknownEngineError", err)
	}
	if unknown.Type != "gpu" {
		t.Errorf("error type field = %q, want %q", unknown.Type, "gpu")
	}
	if len(unknown.Available) == 0 {
		t.Error("error should list available engines")
	}
}

func TestNew_MissingType(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Fatal("expected error for empty engine type, got nil")
	}
}

func TestRegister_CustomEngine(t *testing.T) {
	Register("custom_test", func(logger *slog.Logger) Engine { return NewSQLiteEngine(logger) })
	if _, ok := Get("custom_test"); !ok {
		t.Error("custom engine not retrievable after Register")
	}
}
