package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Engine)
)

// Register adds an engine factory to the registry.
// Called by engine implementations in their init() functions.
func Register(name string, factory func(*slog.Logger) Engine) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves an engine factory by name.
func Get(name string) (func(*slog.Logger) Engine, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// New creates a new engine instance based on config type.
// The logger parameter is passed to the engine constructor (nil uses a
// discard logger).
func New(cfg Config, logger *slog.Logger) (Engine, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("engine type not specified")
	}

	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownEngineError{
			Type:      cfg.Type,
			Available: ListEngines(),
		}
	}
	return factory(logger), nil
}

// ListEngines returns all registered engine names (sorted).
func ListEngines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownEngineError is returned when an unknown engine type is requested.
type UnknownEngineError struct {
	Type      string
	Available []string
}

func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("unknown engine type %q\nAvailable engines: %v\nHint: Check your engine setting in framebench.yaml", e.Type, e.Available)
}
