// Package oracle builds the validity oracle from suttaplex card files.
//
// Every *.json file below the suttaplex root holds a list of cards. A card's
// uid marks real content and its type overrides the shape-inferred node type
// in the hierarchy. Files under an "update" directory are applied last so
// their types win.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/vjjda/suttaworks/internal/hierarchy"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const updateDir = "update"

// DefaultConcurrency bounds how many card files are read at once.
const DefaultConcurrency = 8

type card struct {
	UID  string `json:"uid"`
	Type string `json:"type"`
}

// Stats reports what Extract read.
type Stats struct {
	Files        int
	SkippedFiles int
	Cards        int
}

// Extractor reads suttaplex card files.
type Extractor struct {
	root        string
	concurrency int
	log         *zap.Logger
}

// NewExtractor creates an Extractor for the card tree rooted at root.
func NewExtractor(root string, log *zap.Logger) *Extractor {
	return &Extractor{
		root:        root,
		concurrency: DefaultConcurrency,
		log:         log,
	}
}

// SetConcurrency changes the number of files read in parallel.
func (e *Extractor) SetConcurrency(n int) {
	if n > 0 {
		e.concurrency = n
	}
}

// Extract reads every card file and merges them into an Oracle. Files are
// read concurrently but merged in a fixed order, so the result does not
// depend on scheduling. Unreadable files are logged and skipped.
func (e *Extractor) Extract(ctx context.Context) (hierarchy.Oracle, Stats, error) {
	var stats Stats

	files, err := e.cardFiles()
	if err != nil {
		return hierarchy.Oracle{}, stats, err
	}
	stats.Files = len(files)

	slots := make([][]card, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cards, err := readCards(path)
			if err != nil {
				e.log.Warn("skipping unreadable suttaplex file",
					zap.String("file", path),
					zap.Error(err))
				return nil
			}
			slots[i] = cards
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return hierarchy.Oracle{}, stats, fmt.Errorf("suttaplex extraction aborted: %w", err)
	}

	o := hierarchy.NewOracle()
	for _, cards := range slots {
		if cards == nil {
			stats.SkippedFiles++
			continue
		}
		for _, c := range cards {
			if c.UID == "" {
				continue
			}
			o.Add(c.UID, c.Type)
			stats.Cards++
		}
	}

	e.log.Info("built validity oracle",
		zap.Int("files", stats.Files),
		zap.Int("skipped", stats.SkippedFiles),
		zap.Int("cards", stats.Cards),
		zap.Int("valid_uids", len(o.ValidUIDs)))
	return o, stats, nil
}

// cardFiles lists *.json below root with update/ files moved to the end.
func (e *Extractor) cardFiles() ([]string, error) {
	var regular, updates []string
	err := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		if inUpdateDir(e.root, path) {
			updates = append(updates, path)
		} else {
			regular = append(regular, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list suttaplex files: %w", err)
	}

	sort.Strings(updates)
	return append(regular, updates...), nil
}

func inUpdateDir(root, path string) bool {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		return false
	}
	for dir := rel; dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		if filepath.Base(dir) == updateDir {
			return true
		}
	}
	return false
}

func readCards(path string) ([]card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cards []card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []card{}
	}
	return cards, nil
}
