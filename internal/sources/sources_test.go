package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
)

func TestDescriptors_UnmarshalYAML(t *testing.T) {
	input := `
- super-tree: tree/super-tree.json
- ignore: [xplayground-tree.json, test.json]
- sutta: tree/sutta
  vinaya: tree/vinaya
`
	var descs Descriptors
	require.NoError(t, yaml.Unmarshal([]byte(input), &descs))

	assert.Equal(t, Descriptors{
		{Key: "super-tree", Path: "tree/super-tree.json"},
		{Key: "ignore", Names: []string{"xplayground-tree.json", "test.json"}},
		{Key: "sutta", Path: "tree/sutta"},
		{Key: "vinaya", Path: "tree/vinaya"},
	}, descs)
}

func TestDescriptors_UnmarshalYAMLErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not a list", `super-tree: a.json`},
		{"entry not a mapping", `- a.json`},
		{"ignore not a list", `- ignore: {a: b}`},
		{"path not a scalar", `- sutta: [a, b]`},
		{"empty path", `- sutta: ""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var descs Descriptors
			assert.Error(t, yaml.Unmarshal([]byte(tt.input), &descs))
		})
	}
}

func TestNewPlan(t *testing.T) {
	descs := Descriptors{
		{Key: "super-tree", Path: "tree/super-tree.json"},
		{Key: "ignore", Names: []string{"skip.json"}},
		{Key: "sutta", Path: "tree/sutta"},
		{Key: "abs", Path: "/srv/tree/abs"},
	}

	plan, err := NewPlan(descs, "/data")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/data", "tree/super-tree.json"), plan.SuperTree)
	assert.Equal(t, []Dir{
		{Label: "sutta", Path: filepath.Join("/data", "tree/sutta")},
		{Label: "abs", Path: "/srv/tree/abs"},
	}, plan.Dirs)
	assert.True(t, plan.Ignored("/anywhere/skip.json"))
	assert.False(t, plan.Ignored("/anywhere/keep.json"))
}

func TestNewPlan_Errors(t *testing.T) {
	_, err := NewPlan(Descriptors{{Key: "sutta", Path: "x"}}, "")
	assert.ErrorIs(t, err, ErrNoSuperTree)

	_, err = NewPlan(Descriptors{
		{Key: "super-tree", Path: "a.json"},
		{Key: "super-tree", Path: "b.json"},
	}, "")
	assert.Error(t, err)
}

func TestPlan_BookFiles(t *testing.T) {
	tmpDir := t.TempDir()
	sutta := filepath.Join(tmpDir, "sutta")
	require.NoError(t, os.MkdirAll(filepath.Join(sutta, "nested.json"), 0755))
	for _, name := range []string{"mn-tree.json", "dn-tree.json", "skip.json", "notes.txt", "super-tree.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(sutta, name), []byte(`{}`), 0644))
	}

	plan := &Plan{
		SuperTree: filepath.Join(sutta, "super-tree.json"),
		Dirs: []Dir{
			{Label: "missing", Path: filepath.Join(tmpDir, "nope")},
			{Label: "sutta", Path: sutta},
		},
		Ignore: map[string]struct{}{"skip.json": {}},
	}

	core, logs := observer.New(zap.DebugLevel)
	files := plan.BookFiles(zap.New(core))

	assert.Equal(t, []string{
		filepath.Join(sutta, "dn-tree.json"),
		filepath.Join(sutta, "mn-tree.json"),
	}, files)
	assert.Equal(t, 1, logs.FilterMessage("book source directory not found, skipping").Len())
	assert.Equal(t, 1, logs.FilterMessage("skipping ignored tree file").Len())
}
