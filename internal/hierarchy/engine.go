package hierarchy

import (
	"fmt"
	"path/filepath"

	"github.com/vjjda/suttaworks/internal/treedoc"
	"go.uber.org/zap"
)

// Summary reports what one Build did.
type Summary struct {
	Files        int // tree files parsed, super-tree included
	SkippedFiles int // book files that could not be read
	Warnings     int

	Overridden      int // learned parents changed by the override table
	Parsed          int // records emitted by the parser
	Superseded      int // duplicate uids dropped before filtering
	BeforeFilter    int
	AfterFilter     int
	Demoted         int
	Pruned          int
	PruneIterations int
	Final           int
	Groups          int
	Roots           int
}

// Engine runs the hierarchy passes. It keeps no per-run state, so one
// Engine can serve any number of builds.
type Engine struct {
	log       *zap.Logger
	overrides Overrides
	demote    bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithOverrides sets the canonical parent corrections applied after the
// super-tree has been learned.
func WithOverrides(o Overrides) Option {
	return func(e *Engine) {
		e.overrides = append(Overrides(nil), o...)
	}
}

// WithoutDemotion disables the branch repair pass. Childless branches are
// then removed by pruning instead of being kept as single-node books.
func WithoutDemotion() Option {
	return func(e *Engine) {
		e.demote = false
	}
}

// New creates an Engine logging to log.
func New(log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		log:    log,
		demote: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Build runs the full pipeline: learn the super-tree, apply overrides,
// parse the super-tree and every book file in order, then filter, repair,
// prune and index. The super-tree must be readable; unreadable book files
// are skipped with a warning.
func (e *Engine) Build(superTree string, books []string, oracle Oracle) ([]NodeRecord, Summary, error) {
	var sum Summary

	doc, err := treedoc.Load(superTree)
	if err != nil {
		return nil, sum, fmt.Errorf("failed to load super-tree: %w", err)
	}

	gen := Learn(doc, e.log)
	e.log.Debug("learned super-tree", zap.Int("parents", gen.Len()))
	sum.Overridden = e.overrides.Apply(gen, e.log)

	p := NewParser(gen, oracle, e.log)
	sum.Warnings += e.fileDone(superTree, p.ParseSuperTree(doc, superTree))
	sum.Files++

	for _, path := range books {
		doc, err := treedoc.Load(path)
		if err != nil {
			e.log.Warn("skipping unreadable tree file",
				zap.String("file", filepath.Base(path)),
				zap.Error(err))
			sum.SkippedFiles++
			sum.Warnings++
			continue
		}
		sum.Warnings += e.fileDone(path, p.ParseBook(doc, path))
		sum.Files++
	}

	records := p.Records()
	sum.Parsed = len(records)
	records, sum.Superseded = DropSuperseded(records)
	if sum.Superseded > 0 {
		e.log.Debug("dropped superseded records", zap.Int("count", sum.Superseded))
	}
	sum.BeforeFilter = len(records)

	records = FilterValid(records, oracle)
	sum.AfterFilter = len(records)

	if e.demote {
		sum.Demoted = DemoteChildless(records)
	}
	var stats PruneStats
	records, stats = PruneDeadBranches(records)
	sum.Pruned = stats.Removed
	sum.PruneIterations = stats.Iterations
	sum.Final = len(records)

	sum.Groups = AssignPositions(records)
	sum.Roots = countRoots(records)
	if sum.Roots != 1 && len(records) > 0 {
		e.log.Warn("hierarchy does not have exactly one root", zap.Int("roots", sum.Roots))
	}

	e.log.Info("hierarchy built",
		zap.Int("files", sum.Files),
		zap.Int("before_filter", sum.BeforeFilter),
		zap.Int("after_filter", sum.AfterFilter),
		zap.Int("demoted", sum.Demoted),
		zap.Int("after_pruning", sum.Final),
		zap.Int("prune_iterations", sum.PruneIterations),
		zap.Int("warnings", sum.Warnings))

	return records, sum, nil
}

func (e *Engine) fileDone(path string, warnings int) int {
	if warnings > 0 {
		e.log.Warn("tree file parsed with warnings",
			zap.String("file", filepath.Base(path)),
			zap.Int("warnings", warnings))
	} else {
		e.log.Debug("parsed tree file", zap.String("file", filepath.Base(path)))
	}
	return warnings
}

func countRoots(records []NodeRecord) int {
	roots := 0
	for _, r := range records {
		if r.ParentUID == "" && r.Type == TypeRoot {
			roots++
		}
	}
	return roots
}
