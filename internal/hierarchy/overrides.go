package hierarchy

import (
	"go.uber.org/zap"
)

// Override pins a child to its correct parent regardless of what the
// super-tree says.
type Override struct {
	Child  string `yaml:"child"`
	Parent string `yaml:"parent"`
}

// Overrides is the canonical correction table. It is applied once per run,
// after learning and before any book file is parsed.
type Overrides []Override

// Apply overwrites learned parents in g. Every value that actually changes
// is logged as a warning; the override always wins. It returns the number
// of changed parents.
func (o Overrides) Apply(g *Genealogy, log *zap.Logger) int {
	changed := 0
	for _, ov := range o {
		if ov.Child == "" || ov.Parent == "" {
			log.Warn("ignoring incomplete parent override",
				zap.String("child", ov.Child),
				zap.String("parent", ov.Parent))
			continue
		}

		previous, existed := g.SetParent(ov.Child, ov.Parent)
		switch {
		case !existed:
			log.Warn("override for uid not in super-tree",
				zap.String("child", ov.Child),
				zap.String("parent", ov.Parent))
			changed++
		case previous != ov.Parent:
			log.Warn("overriding learned parent",
				zap.String("child", ov.Child),
				zap.String("learned", previous),
				zap.String("override", ov.Parent))
			changed++
		}
	}
	return changed
}
