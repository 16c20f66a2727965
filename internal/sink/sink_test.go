package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vjjda/suttaworks/internal/hierarchy"
)

var records = []hierarchy.NodeRecord{
	{UID: "sutta", Type: hierarchy.TypeRoot, PitakaRoot: "sutta", BookRoot: hierarchy.RootBook, BookDepth: hierarchy.NoBookDepth},
	{UID: "dn", ParentUID: "sutta", Type: hierarchy.TypeBranch, PitakaRoot: "sutta", BookRoot: hierarchy.RootBook, PitakaDepth: 1, BookDepth: hierarchy.NoBookDepth, GlobalPosition: 1},
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	assert.IsType(t, &JSONWriter{}, New("-", &buf))
	assert.IsType(t, &JSONFile{}, New("out/hierarchy.json", &buf))
	assert.Equal(t, "out/hierarchy.json", New("out/hierarchy.json", &buf).Name())
}

func TestJSONFile_WriteHierarchy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "hierarchy.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	f := &JSONFile{Path: path}
	require.NoError(t, f.WriteHierarchy(context.Background(), records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []hierarchy.NodeRecord
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, records, got)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Nil(t, raw[0]["parent_uid"])
	assert.Equal(t, "sutta", raw[1]["parent_uid"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestJSONFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "hierarchy.json")
	require.NoError(t, (&JSONFile{Path: path}).WriteHierarchy(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestJSONWriter_WriteHierarchy(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONWriter{W: &buf}
	require.NoError(t, w.WriteHierarchy(context.Background(), records[:1]))

	assert.JSONEq(t, `[{
		"uid": "sutta", "parent_uid": null, "type": "root",
		"pitaka_root": "sutta", "book_root": "buddha",
		"pitaka_depth": 0, "book_depth": -1,
		"sibling_position": 0, "depth_position": 0, "global_position": 0,
		"prev_uid": null, "next_uid": null
	}]`, buf.String())
}

func TestWriteHierarchy_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	assert.ErrorIs(t, (&JSONWriter{W: &buf}).WriteHierarchy(ctx, records), context.Canceled)
	assert.Empty(t, buf.String())

	path := filepath.Join(t.TempDir(), "hierarchy.json")
	assert.ErrorIs(t, (&JSONFile{Path: path}).WriteHierarchy(ctx, records), context.Canceled)
	assert.NoFileExists(t, path)
}
