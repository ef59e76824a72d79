package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Options locates the content directories of a site.
type Options struct {
	DocsDir   string
	DocsRoute string
	// BlogDir is empty when the blog is disabled.
	BlogDir   string
	BlogRoute string
	PagesDir  string
	// IncludeDrafts keeps documents marked `draft: true`.
	IncludeDrafts bool
}

// OptionsFromConfig derives discovery options from a loaded site config.
func OptionsFromConfig(cfg *config.SiteConfig) Options {
	opts := Options{
		DocsDir:   cfg.Docs.Path,
		DocsRoute: cfg.Docs.RouteBasePath,
		PagesDir:  cfg.Pages.Path,
	}
	if cfg.Blog != nil {
		opts.BlogDir = cfg.Blog.Path
		opts.BlogRoute = cfg.Blog.RouteBasePath
	}
	return opts
}

var (
	markdownExts = []string{".md", ".mdx"}
	pageExts     = []string{".md", ".mdx", ".js", ".jsx", ".ts", ".tsx"}

	// numberPrefix matches ordering prefixes such as "01-" or "2.".
	numberPrefix = regexp.MustCompile(`^\d+[-_.]+(.+)$`)
	// datePrefix matches blog post names such as "2024-01-15-welcome".
	datePrefix = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})[-_](.+)$`)
)

// Discover walks the docs, blog and pages directories and returns the
// catalog of routes and document ids. Missing directories are treated as
// empty.
func Discover(ctx context.Context, opts Options) (*Catalog, error) {
	var entries []Entry

	err := walkContent(ctx, opts.DocsDir, markdownExts, func(rel, src string, data []byte) error {
		e, ok, err := docEntry(rel, data, opts)
		if err != nil || !ok {
			return err
		}
		e.Source = src
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opts.BlogDir != "" {
		route := routeJoin(opts.BlogRoute, "")
		for _, listing := range []string{route, routeJoin(route, "archive"), routeJoin(route, "tags")} {
			entries = append(entries, Entry{Kind: KindListing, Path: listing, Source: opts.BlogDir})
		}
		err = walkContent(ctx, opts.BlogDir, markdownExts, func(rel, src string, data []byte) error {
			e, ok, err := blogEntry(rel, data, opts)
			if err != nil || !ok {
				return err
			}
			e.Source = src
			entries = append(entries, e)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	err = walkContent(ctx, opts.PagesDir, pageExts, func(rel, src string, data []byte) error {
		e, ok, err := pageEntry(rel, data, opts)
		if err != nil || !ok {
			return err
		}
		e.Source = src
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return newCatalog(entries)
}

// walkContent calls fn for every file below dir with one of exts. rel is the
// slash-separated path relative to dir. Names starting with "_" or "." are
// skipped.
func walkContent(ctx context.Context, dir string, exts []string, fn func(rel, src string, data []byte) error) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		slog.Debug("Content directory does not exist", logfields.Path(dir))
		return nil
	}

	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if p != dir && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !hasExt(name, exts) {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		if err := fn(filepath.ToSlash(rel), p, data); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		return nil
	})
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func stem(rel string) string {
	return strings.TrimSuffix(rel, path.Ext(rel))
}

func stripNumberPrefix(segment string) string {
	if m := numberPrefix.FindStringSubmatch(segment); m != nil {
		return m[1]
	}
	return segment
}

// routeJoin joins a route base and a relative path into a clean route.
func routeJoin(base, rel string) string {
	return NormalizePath(path.Join(base, rel))
}

func isIndexName(name string) bool {
	n := strings.ToLower(name)
	return n == "index" || n == "readme"
}

// docEntry derives id, route and title of a docs file. The id is the path
// without extension and ordering prefixes; front matter `id` replaces its
// last segment and `slug` replaces the route.
func docEntry(rel string, data []byte, opts Options) (Entry, bool, error) {
	fields, body, err := splitFrontMatter(data)
	if err != nil {
		return Entry{}, false, err
	}
	if boolField(fields, "draft") && !opts.IncludeDrafts {
		slog.Debug("Skipping draft document", logfields.Path(rel))
		return Entry{}, false, nil
	}

	segments := strings.Split(stem(rel), "/")
	for i, s := range segments {
		segments[i] = stripNumberPrefix(s)
	}
	dir := path.Join(segments[:len(segments)-1]...)
	base := segments[len(segments)-1]
	if fmID := stringField(fields, "id"); fmID != "" {
		base = fmID
	}
	id := path.Join(dir, base)

	route := routeJoin(opts.DocsRoute, id)
	if isIndexName(base) {
		route = routeJoin(opts.DocsRoute, dir)
	}
	if slug := stringField(fields, "slug"); slug != "" {
		if strings.HasPrefix(slug, "/") {
			route = routeJoin(opts.DocsRoute, slug)
		} else {
			route = routeJoin(opts.DocsRoute, path.Join(dir, slug))
		}
	}

	fp, err := computeFingerprint(fields, body)
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{
		Kind:        KindDoc,
		ID:          id,
		Path:        route,
		Title:       titleOf(fields, body, path.Base(id)),
		Fingerprint: fp,
	}, true, nil
}

// blogEntry derives the route of a blog post. Date-prefixed names become
// /<route>/YYYY/MM/DD/<name>; folder posts use the folder name.
func blogEntry(rel string, data []byte, opts Options) (Entry, bool, error) {
	fields, body, err := splitFrontMatter(data)
	if err != nil {
		return Entry{}, false, err
	}
	if boolField(fields, "draft") && !opts.IncludeDrafts {
		slog.Debug("Skipping draft post", logfields.Path(rel))
		return Entry{}, false, nil
	}

	name := stem(rel)
	if isIndexName(path.Base(name)) {
		name = path.Dir(name)
	}
	name = path.Base(name)

	var route string
	switch {
	case stringField(fields, "slug") != "":
		route = routeJoin(opts.BlogRoute, stringField(fields, "slug"))
	case datePrefix.MatchString(name):
		m := datePrefix.FindStringSubmatch(name)
		route = routeJoin(opts.BlogRoute, path.Join(m[1], m[2], m[3], m[4]))
	default:
		route = routeJoin(opts.BlogRoute, name)
	}

	fp, err := computeFingerprint(fields, body)
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{
		Kind:        KindBlogPost,
		Path:        route,
		Title:       titleOf(fields, body, name),
		Fingerprint: fp,
	}, true, nil
}

// pageEntry maps a pages file to its route; index files serve their
// directory.
func pageEntry(rel string, data []byte, _ Options) (Entry, bool, error) {
	name := stem(rel)
	if path.Base(name) == "index" {
		name = path.Dir(name)
		if name == "." {
			name = ""
		}
	}
	e := Entry{Kind: KindPage, Path: routeJoin("", name)}

	if hasExt(rel, markdownExts) {
		fields, body, err := splitFrontMatter(data)
		if err != nil {
			return Entry{}, false, err
		}
		fp, err := computeFingerprint(fields, body)
		if err != nil {
			return Entry{}, false, err
		}
		e.Title = titleOf(fields, body, path.Base(e.Path))
		e.Fingerprint = fp
		return e, true, nil
	}

	e.Fingerprint = mdfp.CalculateFingerprintFromParts("", string(data))
	return e, true, nil
}

func titleOf(fields map[string]any, body []byte, fallback string) string {
	if t := stringField(fields, "title"); t != "" {
		return t
	}
	if h := firstHeading(body); h != "" {
		return h
	}
	return fallback
}
