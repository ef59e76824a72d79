package sidebar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/config"
)

// genericDocument is a decoded sidebar document whose items are still plain
// values. order keeps sidebar declaration order, which maps lose.
type genericDocument struct {
	order      []string
	sidebars   map[string]any
	categories map[string]any
}

func (g *genericDocument) add(name string, items any) error {
	if g.sidebars == nil {
		g.sidebars = make(map[string]any)
	}
	if _, dup := g.sidebars[name]; dup {
		return &SidebarError{Kind: ErrInvalidNode, Sidebar: name, Detail: "sidebar declared twice"}
	}
	g.order = append(g.order, name)
	g.sidebars[name] = items
	return nil
}

// Parse decodes a sidebar document. A bare string item is shorthand for a
// document with that id.
func Parse(data []byte, format config.Format) (*RawDocument, error) {
	var (
		g   *genericDocument
		err error
	)
	switch format {
	case config.FormatYAML:
		g, err = decodeYAML(data)
	case config.FormatTOML:
		g, err = decodeTOML(data)
	case config.FormatJSON:
		g, err = decodeJSON(data)
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return g.toRaw()
}

// Load reads, parses and resolves the sidebar document at path.
func Load(path string, opts Options) (*Tree, error) {
	format, err := config.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sidebar file: %w", err)
	}
	raw, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	return Resolve(raw, opts)
}

func decodeYAML(data []byte) (*genericDocument, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	g := &genericDocument{}
	if len(root.Content) == 0 {
		return g, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, &SidebarError{Kind: ErrInvalidNode, Detail: "document root must be a mapping"}
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i].Value, doc.Content[i+1]
		switch key {
		case "sidebars":
			if val.Kind != yaml.MappingNode {
				return nil, &SidebarError{Kind: ErrInvalidNode, Detail: "sidebars must be a mapping"}
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				var items any
				if err := val.Content[j+1].Decode(&items); err != nil {
					return nil, fmt.Errorf("failed to decode sidebar %q: %w", val.Content[j].Value, err)
				}
				if err := g.add(val.Content[j].Value, items); err != nil {
					return nil, err
				}
			}
		case "categories":
			if err := val.Decode(&g.categories); err != nil {
				return nil, fmt.Errorf("failed to decode categories: %w", err)
			}
		}
	}
	return g, nil
}

func decodeTOML(data []byte) (*genericDocument, error) {
	var m map[string]any
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal toml: %w", err)
	}
	g := &genericDocument{}
	sidebars, _ := m["sidebars"].(map[string]any)
	// Keys() follows document order; arrays of tables repeat their key.
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "sidebars" {
			continue
		}
		if _, done := g.sidebars[key[1]]; done {
			continue
		}
		if err := g.add(key[1], sidebars[key[1]]); err != nil {
			return nil, err
		}
	}
	if cats, ok := m["categories"].(map[string]any); ok {
		g.categories = cats
	}
	return g, nil
}

func decodeJSON(data []byte) (*genericDocument, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	g := &genericDocument{}
	if err := expectDelim(dec, '{'); err != nil {
		if errors.Is(err, io.EOF) {
			return g, nil
		}
		return nil, err
	}
	for dec.More() {
		key, err := objectKey(dec)
		if err != nil {
			return nil, err
		}
		switch key {
		case "sidebars":
			if err := expectDelim(dec, '{'); err != nil {
				return nil, err
			}
			for dec.More() {
				name, err := objectKey(dec)
				if err != nil {
					return nil, err
				}
				var items any
				if err := dec.Decode(&items); err != nil {
					return nil, fmt.Errorf("failed to decode sidebar %q: %w", name, err)
				}
				if err := g.add(name, items); err != nil {
					return nil, err
				}
			}
			if err := expectDelim(dec, '}'); err != nil {
				return nil, err
			}
		case "categories":
			if err := dec.Decode(&g.categories); err != nil {
				return nil, fmt.Errorf("failed to decode categories: %w", err)
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("failed to unmarshal json: %w", err)
			}
		}
	}
	return g, expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return fmt.Errorf("failed to unmarshal json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("failed to unmarshal json: expected %q, got %v", want, tok)
	}
	return nil
}

func objectKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("failed to unmarshal json: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("failed to unmarshal json: expected object key, got %v", tok)
	}
	return key, nil
}

// toRaw converts decoded values into raw nodes.
func (g *genericDocument) toRaw() (*RawDocument, error) {
	doc := &RawDocument{}
	for _, name := range g.order {
		items, err := nodesFromValue(g.sidebars[name], "sidebars."+name)
		if err != nil {
			return nil, withSidebar(err, name)
		}
		doc.Add(name, items...)
	}
	names := make([]string, 0, len(g.categories))
	for name := range g.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		n, err := nodeFromValue(g.categories[name], "categories."+name)
		if err != nil {
			return nil, err
		}
		if n.kind() != TypeCategory {
			return nil, &SidebarError{Kind: ErrInvalidNode, ID: name, Detail: "shared entries must be categories"}
		}
		doc.Share(name, n)
	}
	return doc, nil
}

func withSidebar(err error, name string) error {
	var se *SidebarError
	if errors.As(err, &se) && se.Sidebar == "" {
		se.Sidebar = name
	}
	return err
}

func nodesFromValue(v any, at string) ([]*RawNode, error) {
	var values []any
	switch vv := v.(type) {
	case nil:
		return nil, nil
	case []any:
		values = vv
	case []map[string]any:
		values = make([]any, len(vv))
		for i, m := range vv {
			values[i] = m
		}
	default:
		return nil, invalidNode(at, "expected a list of items, got %T", v)
	}
	nodes := make([]*RawNode, 0, len(values))
	for i, item := range values {
		n, err := nodeFromValue(item, fmt.Sprintf("%s[%d]", at, i))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func nodeFromValue(v any, at string) (*RawNode, error) {
	switch vv := v.(type) {
	case string:
		id := strings.TrimSpace(vv)
		if id == "" {
			return nil, invalidNode(at, "empty document id")
		}
		return Doc(id), nil
	case map[string]any:
		return nodeFromMap(vv, at)
	default:
		return nil, invalidNode(at, "unsupported item %T", v)
	}
}

func nodeFromMap(m map[string]any, at string) (*RawNode, error) {
	n := &RawNode{}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"type", &n.Type},
		{"id", &n.ID},
		{"label", &n.Label},
		{"ref", &n.Ref},
	} {
		v, ok := m[f.key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, invalidNode(at+"."+f.key, "expected a string, got %T", v)
		}
		*f.dst = strings.TrimSpace(s)
	}
	if v, ok := m["collapsed"]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, invalidNode(at+".collapsed", "expected a boolean, got %T", v)
		}
		n.Collapsed = b
	}
	if v, ok := m["items"]; ok {
		items, err := nodesFromValue(v, at+".items")
		if err != nil {
			return nil, err
		}
		n.Items = items
	}
	return n, nil
}

func invalidNode(at, format string, args ...any) error {
	return &SidebarError{Kind: ErrInvalidNode, Detail: at + ": " + fmt.Sprintf(format, args...)}
}
