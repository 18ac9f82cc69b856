package testutil

import (
	"fmt"
	"mycase-search/lib/telemetry"
	"os"
	"path/filepath"
	"testing"
)

// Setup prepares telemetry for the test named `name` and returns a scratch
// directory that is removed when the test ends.
func Setup(t testing.TB, name string) string {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", name))
	t.Cleanup(cleanup)
	return t.TempDir()
}

// WriteFile writes `contents` to `path`, creating parent directories.
func WriteFile(t testing.TB, path, contents string) {
	err := os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}
