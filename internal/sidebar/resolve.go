package sidebar

import (
	"fmt"
	"strings"
)

// DefaultMaxDepth bounds category nesting when Options.MaxDepth is unset.
const DefaultMaxDepth = 1000

// Options controls resolution.
type Options struct {
	// MaxDepth is the deepest allowed node; top-level items have depth 1.
	MaxDepth int
	// UniqueAcrossSidebars rejects a document id that appears in more than
	// one sidebar. By default ids only need to be unique within a sidebar.
	UniqueAcrossSidebars bool
}

// Resolve validates a raw document and returns the resolved tree. It fails
// with a *SidebarError on the first malformed node. The input is only read.
func Resolve(doc *RawDocument, opts Options) (*Tree, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	tree := newTree()
	if doc == nil {
		return tree, nil
	}

	r := &resolver{doc: doc, opts: opts}
	if opts.UniqueAcrossSidebars {
		r.owners = make(map[string]string)
	}
	for _, sb := range doc.Sidebars {
		if strings.TrimSpace(sb.Name) == "" {
			return nil, &SidebarError{Kind: ErrInvalidNode, Detail: "sidebar name is empty"}
		}
		if tree.Has(sb.Name) {
			return nil, &SidebarError{Kind: ErrInvalidNode, Sidebar: sb.Name, Detail: "sidebar declared twice"}
		}
		nodes, err := r.resolveSidebar(sb)
		if err != nil {
			return nil, err
		}
		tree.add(sb.Name, nodes)
	}
	return tree, nil
}

// resolver holds the transient walk state of one Resolve call.
type resolver struct {
	doc  *RawDocument
	opts Options

	// owners maps a document id to its sidebar when ids must be globally unique.
	owners map[string]string

	sidebar    string
	seen       map[string]struct{}
	active     map[*RawNode]struct{}
	activeRefs map[string]struct{}
	path       []string
}

func (r *resolver) resolveSidebar(sb RawSidebar) ([]Node, error) {
	r.sidebar = sb.Name
	r.seen = make(map[string]struct{})
	r.active = make(map[*RawNode]struct{})
	r.activeRefs = make(map[string]struct{})
	r.path = nil

	if len(sb.Items) == 0 {
		return nil, r.fail(ErrEmptyCategory, "", "sidebar has no items")
	}
	return r.resolveItems(sb.Items, 1)
}

func (r *resolver) resolveItems(items []*RawNode, depth int) ([]Node, error) {
	out := make([]Node, 0, len(items))
	for _, item := range items {
		n, err := r.resolveNode(item, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *resolver) resolveNode(n *RawNode, depth int) (Node, error) {
	if n == nil {
		return nil, r.fail(ErrInvalidNode, "", "nil item")
	}
	if depth > r.opts.MaxDepth {
		return nil, r.fail(ErrMaxDepthExceeded, "", fmt.Sprintf("limit %d", r.opts.MaxDepth))
	}

	switch kind := n.kind(); kind {
	case TypeDoc:
		return r.resolveDocument(n)
	case TypeCategory:
		return r.resolveCategory(n, depth)
	case TypeRef:
		return r.resolveRef(n, depth)
	default:
		return nil, r.fail(ErrInvalidNode, "", fmt.Sprintf("unknown item type %q", kind))
	}
}

func (r *resolver) resolveDocument(n *RawNode) (Node, error) {
	id := strings.TrimSpace(n.ID)
	if id == "" {
		return nil, r.fail(ErrInvalidNode, "", "document without id")
	}
	if len(n.Items) > 0 {
		return nil, r.fail(ErrInvalidNode, id, "documents cannot have items")
	}
	if _, dup := r.seen[id]; dup {
		return nil, r.fail(ErrDuplicateDocument, id, "")
	}
	if r.owners != nil {
		if owner, dup := r.owners[id]; dup && owner != r.sidebar {
			return nil, r.fail(ErrDuplicateDocument, id, fmt.Sprintf("already in sidebar %q", owner))
		}
		r.owners[id] = r.sidebar
	}
	r.seen[id] = struct{}{}
	return Document{ID: id, Label: n.Label}, nil
}

func (r *resolver) resolveCategory(n *RawNode, depth int) (Node, error) {
	if _, open := r.active[n]; open {
		return nil, r.fail(ErrCyclicReference, n.Label, "")
	}
	label := strings.TrimSpace(n.Label)
	if label == "" {
		return nil, r.fail(ErrEmptyCategory, "", "missing label")
	}
	if len(n.Items) == 0 {
		return nil, r.fail(ErrEmptyCategory, label, "no items")
	}

	r.active[n] = struct{}{}
	r.path = append(r.path, label)
	defer func() {
		delete(r.active, n)
		r.path = r.path[:len(r.path)-1]
	}()

	items, err := r.resolveItems(n.Items, depth+1)
	if err != nil {
		return nil, err
	}
	return Category{Label: label, Collapsed: n.Collapsed, Items: items}, nil
}

// resolveRef inlines a shared category. A ref that is already being expanded
// further up the walk is a cycle.
func (r *resolver) resolveRef(n *RawNode, depth int) (Node, error) {
	name := strings.TrimSpace(n.Ref)
	if name == "" {
		return nil, r.fail(ErrInvalidNode, "", "ref without a category name")
	}
	if _, open := r.activeRefs[name]; open {
		return nil, r.fail(ErrCyclicReference, name, "")
	}
	shared, ok := r.doc.Categories[name]
	if !ok || shared == nil {
		return nil, r.fail(ErrUnknownCategory, name, "")
	}

	r.activeRefs[name] = struct{}{}
	defer delete(r.activeRefs, name)
	return r.resolveCategory(shared, depth)
}

func (r *resolver) fail(kind error, id, detail string) *SidebarError {
	return &SidebarError{
		Kind:    kind,
		Sidebar: r.sidebar,
		Path:    append([]string(nil), r.path...),
		ID:      id,
		Detail:  detail,
	}
}
