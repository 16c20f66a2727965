// Package hierarchy rebuilds the flat Hierarchy table of the corpus from
// tree description files.
//
// The engine learns canonical genealogy from the super-tree, parses every
// book tree into NodeRecords, reconciles them with an external validity
// oracle, repairs and prunes dead branches, and finally assigns global and
// per-level positions with sibling links.
package hierarchy

import (
	"encoding/json"
)

// NodeType classifies a record within the hierarchy.
type NodeType string

const (
	TypeRoot   NodeType = "root"
	TypeBranch NodeType = "branch"
	TypeLeaf   NodeType = "leaf"
)

// RootBook is the book_root given to every record emitted from the super-tree.
const RootBook = "buddha"

// NoBookDepth marks records that sit above book granularity.
const NoBookDepth = -1

// NodeRecord is one row of the Hierarchy table.
// Empty strings stand for null in the nullable fields.
type NodeRecord struct {
	UID             string
	ParentUID       string
	Type            NodeType
	PitakaRoot      string
	BookRoot        string
	PitakaDepth     int
	BookDepth       int
	SiblingPosition int
	DepthPosition   int
	GlobalPosition  int
	PrevUID         string
	NextUID         string
}

type recordJSON struct {
	UID             string   `json:"uid"`
	ParentUID       *string  `json:"parent_uid"`
	Type            NodeType `json:"type"`
	PitakaRoot      *string  `json:"pitaka_root"`
	BookRoot        *string  `json:"book_root"`
	PitakaDepth     int      `json:"pitaka_depth"`
	BookDepth       int      `json:"book_depth"`
	SiblingPosition int      `json:"sibling_position"`
	DepthPosition   int      `json:"depth_position"`
	GlobalPosition  int      `json:"global_position"`
	PrevUID         *string  `json:"prev_uid"`
	NextUID         *string  `json:"next_uid"`
}

// MarshalJSON writes the record with the column names of the Hierarchy
// table, emitting null for absent references.
func (r NodeRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		UID:             r.UID,
		ParentUID:       nullable(r.ParentUID),
		Type:            r.Type,
		PitakaRoot:      nullable(r.PitakaRoot),
		BookRoot:        nullable(r.BookRoot),
		PitakaDepth:     r.PitakaDepth,
		BookDepth:       r.BookDepth,
		SiblingPosition: r.SiblingPosition,
		DepthPosition:   r.DepthPosition,
		GlobalPosition:  r.GlobalPosition,
		PrevUID:         nullable(r.PrevUID),
		NextUID:         nullable(r.NextUID),
	})
}

// UnmarshalJSON reads a record written by MarshalJSON.
func (r *NodeRecord) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = NodeRecord{
		UID:             raw.UID,
		ParentUID:       deref(raw.ParentUID),
		Type:            raw.Type,
		PitakaRoot:      deref(raw.PitakaRoot),
		BookRoot:        deref(raw.BookRoot),
		PitakaDepth:     raw.PitakaDepth,
		BookDepth:       raw.BookDepth,
		SiblingPosition: raw.SiblingPosition,
		DepthPosition:   raw.DepthPosition,
		GlobalPosition:  raw.GlobalPosition,
		PrevUID:         deref(raw.PrevUID),
		NextUID:         deref(raw.NextUID),
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Oracle is the externally supplied view of which uids are real content.
type Oracle struct {
	// ValidUIDs holds every uid known to the content source.
	ValidUIDs map[string]struct{}
	// Types overrides the shape-inferred node type per uid.
	Types map[string]string
}

// NewOracle returns an empty oracle ready for filling.
func NewOracle() Oracle {
	return Oracle{
		ValidUIDs: make(map[string]struct{}),
		Types:     make(map[string]string),
	}
}

// Add registers uid as valid, recording typ when it is non-empty.
func (o Oracle) Add(uid, typ string) {
	o.ValidUIDs[uid] = struct{}{}
	if typ != "" {
		o.Types[uid] = typ
	}
}

// Valid reports whether uid is known content.
func (o Oracle) Valid(uid string) bool {
	_, ok := o.ValidUIDs[uid]
	return ok
}

// TypeOf returns the override type for uid, if any.
func (o Oracle) TypeOf(uid string) (NodeType, bool) {
	t := o.Types[uid]
	if t == "" {
		return "", false
	}
	return NodeType(t), true
}
