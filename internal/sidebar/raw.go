package sidebar

// Raw item types.
const (
	TypeDoc      = "doc"
	TypeCategory = "category"
	TypeRef      = "ref"
)

// RawDocument is a declared sidebar document before resolution. Sidebars keep
// declaration order. Categories holds shared categories that sidebar items can
// include with a ref item.
type RawDocument struct {
	Sidebars   []RawSidebar
	Categories map[string]*RawNode
}

// RawSidebar is one named, ordered list of declared items.
type RawSidebar struct {
	Name  string
	Items []*RawNode
}

// RawNode is one declared sidebar item. Type may be empty, in which case it
// is inferred from the populated fields.
type RawNode struct {
	Type      string
	ID        string
	Label     string
	Collapsed bool
	Items     []*RawNode
	Ref       string
}

// Add appends a sidebar and returns d for chaining.
func (d *RawDocument) Add(name string, items ...*RawNode) *RawDocument {
	d.Sidebars = append(d.Sidebars, RawSidebar{Name: name, Items: items})
	return d
}

// Share registers a shared category under name and returns d for chaining.
func (d *RawDocument) Share(name string, category *RawNode) *RawDocument {
	if d.Categories == nil {
		d.Categories = make(map[string]*RawNode)
	}
	d.Categories[name] = category
	return d
}

// Doc declares a document item.
func Doc(id string) *RawNode { return &RawNode{Type: TypeDoc, ID: id} }

// Cat declares a category item.
func Cat(label string, items ...*RawNode) *RawNode {
	return &RawNode{Type: TypeCategory, Label: label, Items: items}
}

// Ref declares an item that includes the shared category name.
func Ref(name string) *RawNode { return &RawNode{Type: TypeRef, Ref: name} }

// kind returns the explicit or inferred item type.
func (n *RawNode) kind() string {
	if n.Type != "" {
		return n.Type
	}
	switch {
	case n.Ref != "":
		return TypeRef
	case n.ID != "" && len(n.Items) == 0:
		return TypeDoc
	default:
		return TypeCategory
	}
}
