package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteScenario writes content to a file called name in a fresh temporary
// directory and returns its absolute path.
// It fails the test immediately on error.
func WriteScenario(t *testing.T, name, content string) string {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write scenario")
	return path
}

// ExampleScenario returns the path of a scenario shipped in examples/scenarios.
func ExampleScenario(t *testing.T, name string) string {
	t.Helper()

	_, err := os.Stat(filepath.Join(moduleRoot(t), "examples", "scenarios", name))
	require.NoError(t, err, "Example scenario not found")
	return filepath.Join(moduleRoot(t), "examples", "scenarios", name)
}

func moduleRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "go.mod not found")
		dir = parent
	}
}
