package hierarchy

import (
	"github.com/vjjda/suttaworks/internal/treedoc"
	"go.uber.org/zap"
)

// canonRoots are the super-tree keys that open a new pitaka context.
var canonRoots = map[string]bool{
	"sutta":      true,
	"vinaya":     true,
	"abhidhamma": true,
}

// Genealogy holds what the super-tree says about each uid: its parent at
// book granularity and the pitaka it belongs to.
type Genealogy struct {
	parents map[string]string
	pitakas map[string]string
}

// NewGenealogy returns empty lookup tables.
func NewGenealogy() *Genealogy {
	return &Genealogy{
		parents: make(map[string]string),
		pitakas: make(map[string]string),
	}
}

// Learn walks the super-tree once and records child->parent and
// child->pitaka relations. No records are produced.
func Learn(doc treedoc.Tree, log *zap.Logger) *Genealogy {
	g := NewGenealogy()
	g.learn(doc, "", "", log)
	return g
}

func (g *Genealogy) learn(t treedoc.Tree, parent, pitaka string, log *zap.Logger) {
	switch t := t.(type) {
	case treedoc.List:
		for _, item := range t {
			g.learn(item, parent, pitaka, log)
		}
	case treedoc.Node:
		g.learnNode(t, parent, pitaka, log)
	case treedoc.Tangle:
		log.Warn("multi-key mapping in super-tree, learning first key only",
			zap.String("parent", parent),
			zap.Strings("keys", t.Keys()))
		g.learnNode(t[0], parent, pitaka, log)
	case treedoc.Leaf:
		g.register(string(t), parent, pitaka)
	}
}

func (g *Genealogy) learnNode(n treedoc.Node, parent, pitaka string, log *zap.Logger) {
	if pitaka == "" && canonRoots[n.UID] {
		pitaka = n.UID
	}
	g.register(n.UID, parent, pitaka)
	g.learn(n.Children, n.UID, pitaka, log)
}

func (g *Genealogy) register(uid, parent, pitaka string) {
	if pitaka != "" {
		g.pitakas[uid] = pitaka
	}
	if parent != "" {
		g.parents[uid] = parent
	}
}

// Parent returns the learned parent of uid.
func (g *Genealogy) Parent(uid string) (string, bool) {
	p, ok := g.parents[uid]
	return p, ok
}

// Pitaka returns the learned pitaka root of uid.
func (g *Genealogy) Pitaka(uid string) (string, bool) {
	p, ok := g.pitakas[uid]
	return p, ok
}

// SetParent overwrites the parent of child and returns the previous value.
func (g *Genealogy) SetParent(child, parent string) (previous string, existed bool) {
	previous, existed = g.parents[child]
	g.parents[child] = parent
	return previous, existed
}

// Len returns the number of uids with a learned parent.
func (g *Genealogy) Len() int {
	return len(g.parents)
}
