package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineDatabase(t *testing.T) {
	// In-memory databases are already private to each connection.
	assert.Equal(t, ":memory:", engineDatabase(":memory:", "duckdb"))
	assert.Equal(t, "", engineDatabase("", "sqlite"))

	// File-backed databases get one file per engine so a comparison never
	// hands one engine another engine's file format.
	assert.Equal(t, "bench.duckdb.db", engineDatabase("bench.db", "duckdb"))
	assert.Equal(t, "bench.sqlite.db", engineDatabase("bench.db", "sqlite"))
	assert.Equal(t, "runs/bench.sqlite", engineDatabase("runs/bench", "sqlite"))
}
