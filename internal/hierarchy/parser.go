package hierarchy

import (
	"path/filepath"

	"github.com/vjjda/suttaworks/internal/treedoc"
	"go.uber.org/zap"
)

// frame is the context carried down one level of recursion.
type frame struct {
	parent      string
	pitaka      string
	book        string
	pitakaDepth int
	bookDepth   int
	position    int
}

func (f frame) child(uid, pitaka string) frame {
	next := frame{
		parent:      uid,
		pitaka:      pitaka,
		book:        f.book,
		pitakaDepth: f.pitakaDepth + 1,
		bookDepth:   f.bookDepth,
	}
	if f.bookDepth != NoBookDepth {
		next.bookDepth = f.bookDepth + 1
	}
	return next
}

// Parser turns tree documents into flat records. One Parser serves one run:
// it remembers the pitaka depth of every uid it has emitted so a book file
// can be placed below a parent emitted by an earlier file.
type Parser struct {
	gen    *Genealogy
	oracle Oracle
	log    *zap.Logger

	records []NodeRecord
	depths  map[string]int

	file     string
	warnings int
}

// NewParser creates a parser over learned genealogy and the type overrides
// carried by oracle.
func NewParser(gen *Genealogy, oracle Oracle, log *zap.Logger) *Parser {
	return &Parser{
		gen:    gen,
		oracle: oracle,
		log:    log,
		depths: make(map[string]int),
	}
}

// Records returns everything emitted so far, in emission order.
func (p *Parser) Records() []NodeRecord {
	return p.records
}

// ParseSuperTree emits the records of the super-tree itself: parent null,
// pitaka depth 0 and no book depth. A multi-key mapping at the top level
// keeps only its first key, as the learner does. It returns the number of
// warnings.
func (p *Parser) ParseSuperTree(doc treedoc.Tree, file string) int {
	p.begin(file)
	if t, ok := doc.(treedoc.Tangle); ok {
		p.warn("multi-key mapping at super-tree top level, using first key only",
			zap.Strings("keys", t.Keys()))
		doc = t[0]
	}
	p.walk(doc, frame{book: RootBook, bookDepth: NoBookDepth})
	return p.warnings
}

// ParseBook emits the records of one book file. The document must be a
// single-key mapping whose key is the book root. It returns the number of
// warnings; a malformed file contributes no records.
func (p *Parser) ParseBook(doc treedoc.Tree, file string) int {
	p.begin(file)

	root, ok := doc.(treedoc.Node)
	if !ok {
		p.warn("book file is not a single-key mapping, skipping file")
		return p.warnings
	}

	f := frame{book: root.UID}
	f.parent, _ = p.gen.Parent(root.UID)
	f.pitaka, _ = p.gen.Pitaka(root.UID)
	if depth, ok := p.depths[f.parent]; ok && f.parent != "" {
		f.pitakaDepth = depth + 1
	}

	p.walk(root, f)
	return p.warnings
}

func (p *Parser) begin(file string) {
	p.file = file
	p.warnings = 0
}

func (p *Parser) walk(t treedoc.Tree, f frame) {
	switch t := t.(type) {
	case treedoc.List:
		for i, item := range t {
			sib := f
			sib.position = i
			p.walk(item, sib)
		}
	case treedoc.Node:
		pitaka := p.emit(t.UID, !treedoc.Empty(t.Children), f)
		p.walk(t.Children, f.child(t.UID, pitaka))
	case treedoc.Leaf:
		p.emit(string(t), false, f)
	case treedoc.Tangle:
		p.warn("multi-key mapping in tree, skipping subtree",
			zap.String("parent", f.parent),
			zap.Strings("keys", t.Keys()))
	}
}

// emit appends the record for uid and returns its pitaka root.
func (p *Parser) emit(uid string, hasChildren bool, f frame) string {
	pitaka := f.pitaka
	if pitaka == "" {
		pitaka, _ = p.gen.Pitaka(uid)
	}

	typ, ok := p.oracle.TypeOf(uid)
	if !ok {
		typ = TypeLeaf
		if hasChildren {
			typ = TypeBranch
		}
	}
	if f.parent == "" {
		typ = TypeRoot
	}

	p.records = append(p.records, NodeRecord{
		UID:             uid,
		ParentUID:       f.parent,
		Type:            typ,
		PitakaRoot:      pitaka,
		BookRoot:        f.book,
		PitakaDepth:     f.pitakaDepth,
		BookDepth:       f.bookDepth,
		SiblingPosition: f.position,
	})
	p.depths[uid] = f.pitakaDepth
	return pitaka
}

func (p *Parser) warn(msg string, fields ...zap.Field) {
	p.warnings++
	p.log.Warn(msg, append([]zap.Field{zap.String("file", filepath.Base(p.file))}, fields...)...)
}
