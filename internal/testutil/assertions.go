package testutil

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// ReadHeader returns the content of a generated file below the run's root.
func ReadHeader(t *testing.T, result *HarnessResult, rel string) string {
	t.Helper()
	data, err := os.ReadFile(result.Path(rel))
	require.NoError(t, err, "expected header %s to be written", rel)
	return string(data)
}

// AssertHeader checks a generated file byte for byte and prints a diff on
// mismatch.
func AssertHeader(t *testing.T, result *HarnessResult, rel, want string) {
	t.Helper()
	if diff := cmp.Diff(want, ReadHeader(t, result, rel)); diff != "" {
		t.Errorf("header %s mismatch (-want +got):\n%s", rel, diff)
	}
}

// AssertNoHeader checks that a run left no file at rel.
func AssertNoHeader(t *testing.T, result *HarnessResult, rel string) {
	t.Helper()
	_, err := os.Stat(result.Path(rel))
	require.True(t, os.IsNotExist(err), "header %s must not exist", rel)
}

// AssertNoWorkspaces checks that every intermediate artifact was removed.
func AssertNoWorkspaces(t *testing.T, result *HarnessResult) {
	t.Helper()
	entries, err := os.ReadDir(result.WorkDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Empty(t, names, "intermediate workspaces leaked")
}
