package watch

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/config"
)

// Paths lists the inputs of a site build: the config file, its .env files,
// the sidebar document and the content directories.
func Paths(configPath string, cfg *config.SiteConfig) []string {
	dir := filepath.Dir(configPath)
	paths := []string{
		configPath,
		filepath.Join(dir, ".env"),
		filepath.Join(dir, ".env.local"),
		cfg.Docs.SidebarPath,
		cfg.Docs.Path,
		cfg.Pages.Path,
	}
	if cfg.Blog != nil {
		paths = append(paths, cfg.Blog.Path)
	}
	return paths
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// Hidden files, except the .env files Paths lists explicitly.
	if strings.HasPrefix(base, ".") && !strings.HasPrefix(base, ".env") {
		return true
	}

	// Editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
