package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "WaRn", "ERROR"} {
		t.Run(level, func(t *testing.T) {
			app := newApp()
			app.Commands = nil
			app.Action = func(*cli.Context) error { return nil }
			require.NoError(t, app.Run([]string{"bookstore", "--log-level", level}))
		})
	}

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := newApp()
		err := app.Run([]string{"bookstore", "--log-level", "loud", "seed"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestSeedCommand(t *testing.T) {
	dataDir := t.TempDir()
	var out bytes.Buffer

	app := newApp()
	app.Writer = &out
	err := app.Run([]string{"bookstore", "seed",
		"--backend", "recordset",
		"--medium", "file",
		"--data-dir", dataDir,
		"--fixtures", filepath.Join("..", "..", "fixtures"),
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Seeded 2 books and 3 reviews.")

	assert.FileExists(t, filepath.Join(dataDir, "books.json"))
	raw, err := os.ReadFile(filepath.Join(dataDir, "reviews.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"reviews"`)
}

func TestSeedCommand_MissingFixtures(t *testing.T) {
	app := newApp()
	err := app.Run([]string{"bookstore", "seed",
		"--medium", "file",
		"--data-dir", t.TempDir(),
		"--fixtures", t.TempDir(),
	})
	assert.Error(t, err)
}

func TestServeCommand_RejectsBadConfig(t *testing.T) {
	tests := map[string][]string{
		"unknown backend":   {"--backend", "sqlite"},
		"unknown medium":    {"--medium", "tape"},
		"mongo without uri": {"--backend", "mongo", "--mongo-uri", "", "--mongo-db", "x"},
	}
	for name, flags := range tests {
		t.Run(name, func(t *testing.T) {
			app := newApp()
			err := app.Run(append([]string{"bookstore", "serve"}, flags...))
			assert.Error(t, err)
		})
	}
}
