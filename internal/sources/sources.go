// Package sources turns the tree-source descriptors of the builder config
// into the ordered list of tree files the hierarchy engine reads.
package sources

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	superTreeKey = "super-tree"
	ignoreKey    = "ignore"
)

// ErrNoSuperTree is returned when no descriptor names the super-tree.
var ErrNoSuperTree = errors.New("no super-tree descriptor in tree sources")

// Descriptor is one key of a tree-source entry: the super-tree path, an
// ignore list, or a labelled directory of book files.
type Descriptor struct {
	Key   string
	Path  string
	Names []string
}

// Descriptors is the tree-source list in config order.
type Descriptors []Descriptor

// UnmarshalYAML reads a sequence of mappings, keeping key order within each
// mapping.
func (d *Descriptors) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: tree sources must be a list", value.Line)
	}

	var out Descriptors
	for _, entry := range value.Content {
		if entry.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: tree source entry must be a mapping", entry.Line)
		}
		for i := 0; i+1 < len(entry.Content); i += 2 {
			key, val := entry.Content[i], entry.Content[i+1]
			desc := Descriptor{Key: key.Value}

			if key.Value == ignoreKey {
				if err := val.Decode(&desc.Names); err != nil {
					return fmt.Errorf("line %d: ignore must be a list of file names: %w", val.Line, err)
				}
			} else {
				if val.Kind != yaml.ScalarNode || val.Value == "" {
					return fmt.Errorf("line %d: %s must be a path", val.Line, key.Value)
				}
				desc.Path = val.Value
			}
			out = append(out, desc)
		}
	}
	*d = out
	return nil
}

// Dir is a labelled directory of book tree files.
type Dir struct {
	Label string
	Path  string
}

// Plan is the resolved set of tree sources for one build.
type Plan struct {
	SuperTree string
	Dirs      []Dir
	Ignore    map[string]struct{}
}

// NewPlan resolves descriptors against baseDir. A missing super-tree is a
// configuration error.
func NewPlan(descs Descriptors, baseDir string) (*Plan, error) {
	p := &Plan{Ignore: make(map[string]struct{})}

	for _, d := range descs {
		switch d.Key {
		case superTreeKey:
			if p.SuperTree != "" {
				return nil, fmt.Errorf("tree sources: more than one %s descriptor", superTreeKey)
			}
			p.SuperTree = resolve(baseDir, d.Path)
		case ignoreKey:
			for _, name := range d.Names {
				p.Ignore[name] = struct{}{}
			}
		default:
			p.Dirs = append(p.Dirs, Dir{Label: d.Key, Path: resolve(baseDir, d.Path)})
		}
	}

	if p.SuperTree == "" {
		return nil, ErrNoSuperTree
	}
	return p, nil
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}

// Ignored reports whether a file with this base name is skipped.
func (p *Plan) Ignored(path string) bool {
	_, ok := p.Ignore[filepath.Base(path)]
	return ok
}

// BookFiles lists the book tree files in processing order: directories in
// config order, files sorted by name within each. A missing directory is
// logged and contributes nothing.
func (p *Plan) BookFiles(log *zap.Logger) []string {
	var files []string
	for _, dir := range p.Dirs {
		entries, err := os.ReadDir(dir.Path)
		if err != nil {
			log.Warn("book source directory not found, skipping",
				zap.String("label", dir.Label),
				zap.String("path", dir.Path),
				zap.Error(err))
			continue
		}

		count := 0
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
				continue
			}
			path := filepath.Join(dir.Path, e.Name())
			if path == p.SuperTree {
				continue
			}
			if p.Ignored(path) {
				log.Info("skipping ignored tree file", zap.String("file", e.Name()))
				continue
			}
			files = append(files, path)
			count++
		}
		log.Debug("collected book files", zap.String("label", dir.Label), zap.Int("files", count))
	}
	return files
}
