package sidebar

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
)

const sidebarsYAML = `
sidebars:
  tutorialSidebar:
    - type: category
      label: Getting Started
      items:
        - intro
        - keycloak-setup
        - crossplane-config
    - type: ref
      ref: operations
  apiSidebar:
    - api/overview
categories:
  operations:
    label: Operations
    collapsed: true
    items: [troubleshooting]
`

const sidebarsTOML = `
[sidebars]
tutorialSidebar = [
  { type = "category", label = "Getting Started", items = ["intro", "keycloak-setup", "crossplane-config"] },
  { type = "ref", ref = "operations" },
]
apiSidebar = ["api/overview"]

[categories.operations]
label = "Operations"
collapsed = true
items = ["troubleshooting"]
`

const sidebarsJSON = `{
  "sidebars": {
    "tutorialSidebar": [
      {"type": "category", "label": "Getting Started", "items": ["intro", "keycloak-setup", "crossplane-config"]},
      {"type": "ref", "ref": "operations"}
    ],
    "apiSidebar": ["api/overview"]
  },
  "categories": {
    "operations": {"label": "Operations", "collapsed": true, "items": ["troubleshooting"]}
  }
}`

func TestParse_FormatsAgree(t *testing.T) {
	want := []Node{
		Category{Label: "Getting Started", Items: []Node{
			Document{ID: "intro"}, Document{ID: "keycloak-setup"}, Document{ID: "crossplane-config"},
		}},
		Category{Label: "Operations", Collapsed: true, Items: []Node{Document{ID: "troubleshooting"}}},
	}

	for format, data := range map[config.Format]string{
		config.FormatYAML: sidebarsYAML,
		config.FormatTOML: sidebarsTOML,
		config.FormatJSON: sidebarsJSON,
	} {
		t.Run(string(format), func(t *testing.T) {
			raw, err := Parse([]byte(data), format)
			require.NoError(t, err)
			tree, err := Resolve(raw, Options{})
			require.NoError(t, err)

			assert.Equal(t, []string{"tutorialSidebar", "apiSidebar"}, tree.Names())
			got, _ := tree.Sidebar("tutorialSidebar")
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("tutorialSidebar mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, []Document{{ID: "api/overview"}}, tree.Documents("apiSidebar"))
		})
	}
}

func TestParse_InfersItemType(t *testing.T) {
	raw, err := Parse([]byte(`
sidebars:
  s:
    - id: intro
      label: Welcome
    - label: Guides
      items: [a, b]
`), config.FormatYAML)
	require.NoError(t, err)
	tree, err := Resolve(raw, Options{})
	require.NoError(t, err)

	nodes, _ := tree.Sidebar("s")
	require.Len(t, nodes, 2)
	assert.Equal(t, Document{ID: "intro", Label: "Welcome"}, nodes[0])
	assert.IsType(t, Category{}, nodes[1])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format config.Format
	}{
		{"root not mapping", "- a\n- b\n", config.FormatYAML},
		{"sidebar not list", "sidebars:\n  s: intro\n", config.FormatYAML},
		{"label not string", "sidebars:\n  s:\n    - label: [x]\n      items: [a]\n", config.FormatYAML},
		{"collapsed not bool", "sidebars:\n  s:\n    - label: x\n      collapsed: maybe\n      items: [a]\n", config.FormatYAML},
		{"numeric item", "sidebars:\n  s: [1]\n", config.FormatYAML},
		{"shared doc", "sidebars:\n  s: [a]\ncategories:\n  c: b\n", config.FormatYAML},
		{"duplicate json sidebar", `{"sidebars": {"s": ["a"], "s": ["b"]}}`, config.FormatJSON},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data), tc.format)
			requireSidebarError(t, err, ErrInvalidNode)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("sidebars: [unclosed"), config.FormatYAML)
	require.Error(t, err)
	_, err = Parse([]byte(`{"sidebars": `), config.FormatJSON)
	require.Error(t, err)
	_, err = Parse([]byte("a"), config.Format("js"))
	assert.ErrorIs(t, err, config.ErrUnsupportedFormat)
}

func TestParse_EmptyDocument(t *testing.T) {
	for _, format := range []config.Format{config.FormatYAML, config.FormatTOML, config.FormatJSON} {
		raw, err := Parse(nil, format)
		require.NoError(t, err, format)
		tree, err := Resolve(raw, Options{})
		require.NoError(t, err)
		assert.Equal(t, 0, tree.Len())
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sidebars.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sidebarsYAML), 0o644))

	tree, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"intro", "keycloak-setup", "crossplane-config", "troubleshooting", "api/overview"}, tree.DocIDs())

	_, err = Load(filepath.Join(dir, "missing.yaml"), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
