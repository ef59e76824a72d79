package sidebar

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tutorial() *RawDocument {
	return (&RawDocument{}).Add("tutorialSidebar",
		Cat("Getting Started", Doc("intro"), Doc("keycloak-setup")),
	)
}

func requireSidebarError(t *testing.T, err error, kind error) *SidebarError {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, kind), "got %v", err)
	var se *SidebarError
	require.True(t, errors.As(err, &se))
	return se
}

func TestResolve_Tutorial(t *testing.T) {
	tree, err := Resolve(tutorial(), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"tutorialSidebar"}, tree.Names())
	assert.True(t, tree.Has("tutorialSidebar"))
	assert.False(t, tree.Has("missingSidebar"))

	nodes, ok := tree.Sidebar("tutorialSidebar")
	require.True(t, ok)
	want := []Node{Category{Label: "Getting Started", Items: []Node{
		Document{ID: "intro"}, Document{ID: "keycloak-setup"},
	}}}
	if diff := cmp.Diff(want, nodes); diff != "" {
		t.Fatalf("resolved sidebar mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"intro", "keycloak-setup"}, tree.DocIDs())
}

func TestResolve_Idempotent(t *testing.T) {
	raw := tutorial().
		Add("apiSidebar", Doc("api/overview"), Cat("Endpoints", Doc("api/users"), Ref("shared"))).
		Share("shared", Cat("Shared", Doc("faq")))

	first, err := Resolve(raw, Options{})
	require.NoError(t, err)
	second, err := Resolve(raw, Options{})
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, cmp.AllowUnexported(Tree{})); diff != "" {
		t.Fatalf("resolving twice differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, []string{"tutorialSidebar", "apiSidebar"}, first.Names())
}

func TestResolve_DuplicateInAnyBranch(t *testing.T) {
	raw := (&RawDocument{}).Add("s",
		Cat("A", Cat("B", Doc("x")), Doc("x")),
	)
	_, err := Resolve(raw, Options{})
	se := requireSidebarError(t, err, ErrDuplicateDocument)
	assert.Equal(t, "x", se.ID)
	assert.Equal(t, "s", se.Sidebar)
	assert.Equal(t, []string{"A"}, se.Path)
	assert.Equal(t, `sidebar "s" > A: duplicate document "x"`, se.Error())

	// Same duplicate, mirrored branches.
	raw = (&RawDocument{}).Add("s", Doc("x"), Cat("A", Cat("B", Cat("C", Doc("x")))))
	_, err = Resolve(raw, Options{})
	se = requireSidebarError(t, err, ErrDuplicateDocument)
	assert.Equal(t, []string{"A", "B", "C"}, se.Path)
}

func TestResolve_DuplicateAcrossSidebars(t *testing.T) {
	raw := (&RawDocument{}).Add("one", Doc("intro")).Add("two", Doc("intro"))

	_, err := Resolve(raw, Options{})
	require.NoError(t, err)

	_, err = Resolve(raw, Options{UniqueAcrossSidebars: true})
	se := requireSidebarError(t, err, ErrDuplicateDocument)
	assert.Equal(t, "two", se.Sidebar)
	assert.Contains(t, se.Detail, `"one"`)
}

func TestResolve_EmptyCategory(t *testing.T) {
	tests := []struct {
		name string
		raw  *RawDocument
	}{
		{"no items", (&RawDocument{}).Add("s", Cat("Empty"))},
		{"no label", (&RawDocument{}).Add("s", Cat("  ", Doc("a")))},
		{"nested", (&RawDocument{}).Add("s", Cat("Outer", Doc("a"), Cat("Inner")))},
		{"empty sidebar", (&RawDocument{}).Add("s")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.raw, Options{})
			requireSidebarError(t, err, ErrEmptyCategory)
		})
	}
}

func TestResolve_SelfReferenceViaPointer(t *testing.T) {
	a := Cat("A", Doc("x"))
	a.Items = append(a.Items, a)

	_, err := Resolve((&RawDocument{}).Add("s", a), Options{})
	se := requireSidebarError(t, err, ErrCyclicReference)
	assert.Equal(t, "A", se.ID)
}

func TestResolve_CycleThroughSharedCategories(t *testing.T) {
	raw := (&RawDocument{}).
		Add("s", Ref("ops")).
		Share("ops", Cat("Operations", Doc("runbook"), Ref("debug"))).
		Share("debug", Cat("Debugging", Doc("logs"), Ref("ops")))

	_, err := Resolve(raw, Options{})
	se := requireSidebarError(t, err, ErrCyclicReference)
	assert.Equal(t, "ops", se.ID)
	assert.Equal(t, []string{"Operations", "Debugging"}, se.Path)
}

func TestResolve_SharedCategoryReusedAcrossSidebars(t *testing.T) {
	raw := (&RawDocument{}).
		Add("one", Doc("a"), Ref("common")).
		Add("two", Doc("b"), Ref("common")).
		Share("common", Cat("Common", Doc("faq")))

	tree, err := Resolve(raw, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "faq", "b"}, tree.DocIDs())
}

func TestResolve_UnknownCategory(t *testing.T) {
	_, err := Resolve((&RawDocument{}).Add("s", Ref("nope")), Options{})
	se := requireSidebarError(t, err, ErrUnknownCategory)
	assert.Equal(t, "nope", se.ID)
}

func nested(depth int) *RawNode {
	n := Doc("leaf")
	for i := 0; i < depth; i++ {
		n = Cat("level", n)
	}
	return n
}

func TestResolve_MaxDepth(t *testing.T) {
	// Four categories put the leaf at depth five.
	_, err := Resolve((&RawDocument{}).Add("s", nested(4)), Options{MaxDepth: 5})
	require.NoError(t, err)

	_, err = Resolve((&RawDocument{}).Add("s", nested(5)), Options{MaxDepth: 5})
	requireSidebarError(t, err, ErrMaxDepthExceeded)
}

func TestResolve_DefaultMaxDepthFailsGracefully(t *testing.T) {
	_, err := Resolve((&RawDocument{}).Add("s", nested(5000)), Options{})
	se := requireSidebarError(t, err, ErrMaxDepthExceeded)
	assert.Len(t, se.Path, DefaultMaxDepth)
}

func TestResolve_InvalidNodes(t *testing.T) {
	tests := []struct {
		name string
		node *RawNode
	}{
		{"doc without id", &RawNode{Type: TypeDoc}},
		{"doc with items", &RawNode{Type: TypeDoc, ID: "a", Items: []*RawNode{Doc("b")}}},
		{"unknown type", &RawNode{Type: "link", Label: "x"}},
		{"nil", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve((&RawDocument{}).Add("s", tc.node), Options{})
			requireSidebarError(t, err, ErrInvalidNode)
		})
	}
}

func TestTree_Walk(t *testing.T) {
	tree, err := Resolve((&RawDocument{}).Add("s", Doc("a"), Cat("C", Doc("b"), Cat("D", Doc("c")))), Options{})
	require.NoError(t, err)

	nodes, _ := tree.Sidebar("s")
	var depths []int
	Walk(nodes, func(_ Node, depth int) { depths = append(depths, depth) })
	assert.Equal(t, []int{1, 1, 2, 2, 3}, depths)
	assert.Equal(t, []Document{{ID: "a"}, {ID: "b"}, {ID: "c"}}, tree.Documents("s"))
}

func TestTree_SidebarReturnsCopy(t *testing.T) {
	tree, err := Resolve((&RawDocument{}).Add("s", Doc("a"), Cat("C", Doc("b"))), Options{})
	require.NoError(t, err)

	nodes, ok := tree.Sidebar("s")
	require.True(t, ok)
	nodes[0] = Document{ID: "changed"}
	nodes[1].(Category).Items[0] = Document{ID: "changed"}

	again, _ := tree.Sidebar("s")
	if diff := cmp.Diff([]Node{Document{ID: "a"}, Category{Label: "C", Items: []Node{Document{ID: "b"}}}}, again); diff != "" {
		t.Fatalf("tree changed through Sidebar result (-want +got):\n%s", diff)
	}
	assert.Equal(t, []Document{{ID: "a"}, {ID: "b"}}, tree.Documents("s"))

	_, ok = tree.Sidebar("missing")
	assert.False(t, ok)
}

func TestTree_NilSafe(t *testing.T) {
	var tree *Tree
	assert.Empty(t, tree.Names())
	assert.False(t, tree.Has("x"))
	assert.Equal(t, 0, tree.Len())
}
