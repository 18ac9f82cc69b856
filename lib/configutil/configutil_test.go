package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string   `json:"name"`
	Retries int      `json:"retries"`
	Proxies []string `json:"proxies"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "dir/config.local.json5", LocalPath("dir/config.json5"))
	require.Equal(t, "input.local.json", LocalPath("input.json"))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")

	_, err := ReadConfig[testConfig](path)
	require.True(t, os.IsNotExist(err))

	writeFile(t, path, `{
		// comments and trailing commas are json5
		name: "base",
		retries: 2,
	}`)
	cfg, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "base", Retries: 2}, cfg)

	writeFile(t, filepath.Join(dir, "config.local.json5"), `{retries: 5, proxies: ["http://proxy:8000"]}`)
	cfg, err = ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		Name:    "base",
		Retries: 5,
		Proxies: []string{"http://proxy:8000"},
	}, cfg)
}

func TestReadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	writeFile(t, path, `{name: `)

	_, err := ReadConfig[testConfig](path)
	require.Error(t, err)
	require.False(t, os.IsNotExist(err))
}

func TestReadConfigOr(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	defaults := testConfig{Name: "default", Retries: 2}

	cfg, err := ReadConfigOr(path, defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, cfg)

	writeFile(t, path, `{name: "custom"}`)
	cfg, err = ReadConfigOr(path, defaults)
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "custom", Retries: 2}, cfg)
}
