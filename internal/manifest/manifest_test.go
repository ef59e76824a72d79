package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/sidebar"
	"git.home.luguber.info/inful/docsite/internal/site"
)

func testModel(t *testing.T) *site.Model {
	t.Helper()
	cfg, _, err := config.FromRaw(config.Example())
	require.NoError(t, err)
	tree, err := sidebar.Resolve((&sidebar.RawDocument{}).Add("tutorialSidebar",
		sidebar.Cat("Getting Started", sidebar.Doc("intro"), &sidebar.RawNode{Type: sidebar.TypeDoc, ID: "setup", Label: "Setup"}),
	), sidebar.Options{})
	require.NoError(t, err)

	m, err := site.Assemble(cfg, tree, nil, site.Options{
		BuildID:       "build-123",
		Revision:      "abc123",
		ContentDigest: "digest",
		Now:           func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return m
}

func TestFromModel(t *testing.T) {
	m := FromModel(testModel(t), Inputs{ConfigHash: "cfg", SidebarHash: "sb"})

	assert.Equal(t, "build-123", m.ID)
	assert.Equal(t, Inputs{ConfigHash: "cfg", SidebarHash: "sb", Revision: "abc123", ContentDigest: "digest"}, m.Inputs)
	assert.Equal(t, "/keycloak-getting-started/", m.Site.BaseURL)
	assert.Equal(t, "blog", m.Site.BlogRoute)
	assert.Len(t, m.Site.Navbar, 3)
	assert.Len(t, m.Site.Footer, 3)
	require.Len(t, m.Sidebars, 1)
	assert.Equal(t, []NodeSpec{{
		Type:  "category",
		Label: "Getting Started",
		Items: []NodeSpec{{Type: "doc", ID: "intro"}, {Type: "doc", ID: "setup", Label: "Setup"}},
	}}, m.Sidebars[0].Items)
	assert.NotNil(t, m.Report.Warnings)
}

func TestManifestSerialization(t *testing.T) {
	m := FromModel(testModel(t), Inputs{ConfigHash: "cfg"})

	data, err := m.ToJSON()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"id", "timestamp", "inputs", "site", "sidebars", "report"} {
		assert.Contains(t, raw, key)
	}

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, m.ID, back.ID)
	assert.Equal(t, m.Sidebars, back.Sidebars)

	_, err = FromJSON([]byte("{"))
	assert.Error(t, err)
}

func TestManifestHash(t *testing.T) {
	a := &SiteManifest{ID: "one", Inputs: Inputs{ConfigHash: "c", ContentDigest: "d"}}
	b := &SiteManifest{ID: "two", Inputs: Inputs{ConfigHash: "c", ContentDigest: "d"}}
	c := &SiteManifest{ID: "one", Inputs: Inputs{ConfigHash: "c", ContentDigest: "changed"}}

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	hc, err := c.Hash()
	require.NoError(t, err)

	assert.Equal(t, ha, hb, "hash depends on inputs only")
	assert.NotEqual(t, ha, hc)
}

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	m := FromModel(testModel(t), Inputs{ConfigHash: "cfg"})

	require.NoError(t, Write(path, m))
	m.ID = "second"
	require.NoError(t, Write(path, m))

	back, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "second", back.ID)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	_, err = Read(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHashBytes(t *testing.T) {
	assert.Equal(t, HashBytes([]byte("a")), HashBytes([]byte("a")))
	assert.NotEqual(t, HashBytes([]byte("a")), HashBytes([]byte("b")))
	assert.Len(t, HashBytes(nil), 64)
}
