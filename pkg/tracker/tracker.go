// Package tracker records which locations of a state graph changed since an
// observer last looked, keeping the value each location held before its first
// change in the current window.
package tracker

import (
	"github.com/aretw0/settle/pkg/domain"
)

// Tracker is a ledger of changed paths, each mapped to its prior value.
// At most one entry exists per distinct path.
//
// Entries live in a trie keyed by path segment. Every node counts the entries
// in its subtree, which makes HasPrefix independent of the number of entries.
//
// A Tracker is not safe for concurrent use.
type Tracker struct {
	root *trieNode
}

type trieNode struct {
	children map[string]*trieNode
	prior    any
	set      bool
	count    int // entries in this subtree, this node included
}

func newTrieNode() *trieNode {
	return &trieNode{}
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{root: newTrieNode()}
}

func (t *Tracker) init() {
	if t.root == nil {
		t.root = newTrieNode()
	}
}

// Set records prior for path unless an entry for path already exists.
// It reports whether a new entry was inserted.
func (t *Tracker) Set(path domain.Path, prior any) bool {
	t.init()
	if t.lookup(path) != nil {
		return false
	}

	node := t.root
	node.count++
	for _, seg := range path {
		child := node.children[seg]
		if child == nil {
			if node.children == nil {
				node.children = make(map[string]*trieNode)
			}
			child = newTrieNode()
			node.children[seg] = child
		}
		child.count++
		node = child
	}
	node.prior = prior
	node.set = true
	return true
}

// Get returns the prior value tracked for exactly path.
// It returns domain.Missing and false when path is not tracked.
func (t *Tracker) Get(path domain.Path) (any, bool) {
	node := t.lookup(path)
	if node == nil {
		return domain.Missing, false
	}
	return node.prior, true
}

// Delete removes the entry for exactly path and prunes emptied branches.
// It reports whether an entry was removed.
func (t *Tracker) Delete(path domain.Path) bool {
	if t.lookup(path) == nil {
		return false
	}

	node := t.root
	node.count--
	for _, seg := range path {
		child := node.children[seg]
		child.count--
		if child.count == 0 {
			delete(node.children, seg)
			return true
		}
		node = child
	}
	node.prior = nil
	node.set = false
	return true
}

// DeletePrefix removes every entry at or below path and returns how many
// were removed. The empty path clears the tracker.
func (t *Tracker) DeletePrefix(path domain.Path) int {
	if t.root == nil {
		return 0
	}
	if len(path) == 0 {
		n := t.root.count
		t.Reset()
		return n
	}

	parents := make([]*trieNode, 0, len(path))
	node := t.root
	for _, seg := range path {
		parents = append(parents, node)
		node = node.children[seg]
		if node == nil {
			return 0
		}
	}

	removed := node.count
	delete(parents[len(parents)-1].children, path[len(path)-1])
	for i, p := range parents {
		p.count -= removed
		if i > 0 && p.count == 0 {
			delete(parents[i-1].children, path[i-1])
			break
		}
	}
	return removed
}

// HasPrefix reports whether any tracked path starts with path, i.e. whether
// something at or below path changed. An entry shorter than path never
// satisfies the query. The empty path matches any entry.
func (t *Tracker) HasPrefix(path domain.Path) bool {
	if t.root == nil {
		return false
	}
	node := t.root
	for _, seg := range path {
		node = node.children[seg]
		if node == nil {
			return false
		}
	}
	return node.count > 0
}

// Keys returns every tracked path. Order is unspecified.
func (t *Tracker) Keys() []domain.Path {
	if t.root == nil {
		return nil
	}
	keys := make([]domain.Path, 0, t.root.count)
	var walk func(n *trieNode, prefix domain.Path)
	walk = func(n *trieNode, prefix domain.Path) {
		if n.set {
			keys = append(keys, prefix.Clone())
		}
		for seg, child := range n.children {
			walk(child, append(prefix, seg))
		}
	}
	walk(t.root, make(domain.Path, 0, 8))
	return keys
}

// Len returns the number of tracked paths.
func (t *Tracker) Len() int {
	if t.root == nil {
		return 0
	}
	return t.root.count
}

// Empty reports whether nothing is tracked.
func (t *Tracker) Empty() bool {
	return t.Len() == 0
}

// Reset drops every entry.
func (t *Tracker) Reset() {
	t.root = newTrieNode()
}

func (t *Tracker) lookup(path domain.Path) *trieNode {
	if t.root == nil {
		return nil
	}
	node := t.root
	for _, seg := range path {
		node = node.children[seg]
		if node == nil {
			return nil
		}
	}
	if !node.set {
		return nil
	}
	return node
}
