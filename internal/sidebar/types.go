package sidebar

// Node is one entry of a resolved sidebar. It is exactly one of Document or
// Category.
type Node interface {
	sidebarNode()
}

// Document is a leaf referencing a content identifier.
type Document struct {
	ID    string
	Label string // optional display label; the document title is used when empty
}

// Category is a labelled group of nodes. Items is never empty.
type Category struct {
	Label     string
	Collapsed bool
	Items     []Node
}

func (Document) sidebarNode() {}
func (Category) sidebarNode() {}

// Tree maps sidebar names to their resolved nodes. Sidebars keep the order in
// which they were declared. A Tree is built by Resolve and must not be
// modified afterwards.
type Tree struct {
	names    []string
	sidebars map[string][]Node
}

func newTree() *Tree {
	return &Tree{sidebars: make(map[string][]Node)}
}

func (t *Tree) add(name string, nodes []Node) {
	t.names = append(t.names, name)
	t.sidebars[name] = nodes
}

// Names returns the sidebar names in declaration order.
func (t *Tree) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.names...)
}

// Has reports whether a sidebar with the given name exists.
func (t *Tree) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.sidebars[name]
	return ok
}

// Sidebar returns a copy of the top-level nodes of the named sidebar.
// Changing the result does not affect the tree.
func (t *Tree) Sidebar(name string) ([]Node, bool) {
	if t == nil {
		return nil, false
	}
	nodes, ok := t.sidebars[name]
	if !ok {
		return nil, false
	}
	return copyNodes(nodes), true
}

func copyNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		if c, ok := n.(Category); ok {
			c.Items = copyNodes(c.Items)
			n = c
		}
		out[i] = n
	}
	return out
}

// Len returns the number of sidebars.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Documents returns every document of the named sidebar in depth-first
// declaration order.
func (t *Tree) Documents(name string) []Document {
	if t == nil {
		return nil
	}
	nodes, ok := t.sidebars[name]
	if !ok {
		return nil
	}
	var docs []Document
	Walk(nodes, func(n Node, _ int) {
		if d, ok := n.(Document); ok {
			docs = append(docs, d)
		}
	})
	return docs
}

// DocIDs returns the distinct document ids of all sidebars, in declaration
// order.
func (t *Tree) DocIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, name := range t.Names() {
		for _, d := range t.Documents(name) {
			if _, dup := seen[d.ID]; dup {
				continue
			}
			seen[d.ID] = struct{}{}
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// Walk visits nodes depth-first in declaration order. Top-level nodes have
// depth 1.
func Walk(nodes []Node, fn func(n Node, depth int)) {
	walk(nodes, 1, fn)
}

func walk(nodes []Node, depth int, fn func(Node, int)) {
	for _, n := range nodes {
		fn(n, depth)
		if c, ok := n.(Category); ok {
			walk(c.Items, depth+1, fn)
		}
	}
}
