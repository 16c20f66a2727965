// Package treedoc loads nested-JSON tree description files.
//
// A tree file is built from three shapes: a list is an ordered group of
// siblings, a single-key object {"uid": subtree} binds a node to its
// children, and a string is a leaf node. Parse normalizes the raw JSON into
// the Tree union below in one pass so that walkers can switch on the
// concrete type instead of probing maps and slices at runtime.
package treedoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrScalar is returned when a document holds a number or boolean where a
// node, list or leaf was expected.
var ErrScalar = errors.New("unexpected scalar in tree document")

// Tree is one value of a tree document: List, Node, Leaf or Tangle.
// A nil Tree is an empty subtree (JSON null, "", [] or {}).
type Tree interface {
	isTree()
}

// List is an ordered sibling group. Elements may be nil.
type List []Tree

// Node is a single-key object binding UID to its children.
type Node struct {
	UID      string
	Children Tree
}

// Leaf is a bare uid string.
type Leaf string

// Tangle is an object with more than one key. Entries keep source order.
type Tangle []Node

func (List) isTree()   {}
func (Node) isTree()   {}
func (Leaf) isTree()   {}
func (Tangle) isTree() {}

// Keys returns the object keys of a tangle in source order.
func (t Tangle) Keys() []string {
	keys := make([]string, len(t))
	for i, n := range t {
		keys[i] = n.UID
	}
	return keys
}

// Empty reports whether t has no content.
func Empty(t Tree) bool {
	return t == nil
}

// Load reads and normalizes the tree document at path.
func Load(path string) (Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tree file: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return t, nil
}

// Parse normalizes one JSON document from r.
func Parse(r io.Reader) (Tree, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	t, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after tree document")
	}
	return t, nil
}

func decodeValue(dec *json.Decoder) (Tree, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '[':
			return decodeList(dec)
		case '{':
			return decodeObject(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", v)
	case string:
		if v == "" {
			return nil, nil
		}
		return Leaf(v), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrScalar, v)
	}
}

func decodeList(dec *json.Decoder) (Tree, error) {
	var items List
	for dec.More() {
		item, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	// closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

func decodeObject(dec *json.Decoder) (Tree, error) {
	var nodes []Node
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		children, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, Node{UID: key, Children: children})
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	switch len(nodes) {
	case 0:
		return nil, nil
	case 1:
		return nodes[0], nil
	default:
		return Tangle(nodes), nil
	}
}
