package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vjjda/suttaworks/internal/hierarchy"
	"github.com/vjjda/suttaworks/internal/sources"
)

const sample = `
suttacentral-sqlite:
  path: data/db
  name: hierarchy.json
  tree:
    - super-tree: data/tree/super-tree.json
    - ignore: [xplayground-tree.json]
    - sutta: data/tree/sutta
  suttaplex: data/suttaplex
  overrides:
    - child: dn_book
      parent: dn
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "builder_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, sample)
	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, dir, cfg.BaseDir())
	assert.Equal(t, filepath.Join(dir, "data/db/hierarchy.json"), cfg.OutputPath())
	assert.Equal(t, filepath.Join(dir, "data/suttaplex"), cfg.Resolve(cfg.Suttaplex))
	assert.Equal(t, "/abs/path", cfg.Resolve("/abs/path"))
	assert.Equal(t, hierarchy.Overrides{{Child: "dn_book", Parent: "dn"}}, cfg.Overrides)
	assert.Equal(t, sources.Descriptors{
		{Key: "super-tree", Path: "data/tree/super-tree.json"},
		{Key: "ignore", Names: []string{"xplayground-tree.json"}},
		{Key: "sutta", Path: "data/tree/sutta"},
	}, cfg.Tree)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing bool
	}{
		{"no builder section", "other: {}\n", true},
		{"missing name", "suttacentral-sqlite:\n  path: p\n  tree: [{super-tree: s.json}]\n  suttaplex: x\n", true},
		{"missing tree", "suttacentral-sqlite:\n  path: p\n  name: n\n  suttaplex: x\n", true},
		{"missing suttaplex", "suttacentral-sqlite:\n  path: p\n  name: n\n  tree: [{super-tree: s.json}]\n", true},
		{"bad yaml", "suttacentral-sqlite: [\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			if tt.missing {
				assert.ErrorIs(t, err, ErrMissingKey)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("SUTTAWORKS_CONFIG", "")
	assert.Equal(t, DefaultPath, PathFromEnv())

	t.Setenv("SUTTAWORKS_CONFIG", "/etc/suttaworks.yaml")
	assert.Equal(t, "/etc/suttaworks.yaml", PathFromEnv())
}
