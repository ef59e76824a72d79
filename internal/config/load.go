package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// FromRaw normalizes, defaults and validates a declared configuration. The
// input is not modified. It has no side effects.
func FromRaw(raw *RawConfig) (*SiteConfig, *NormalizationResult, error) {
	if raw == nil {
		return nil, nil, errors.New("config nil")
	}
	c := cloneRaw(raw)
	res := &NormalizationResult{}
	normalizeRaw(c, res)
	applyDefaults(c)
	cfg, err := newConfigurationValidator(c).validate()
	if err != nil {
		return nil, res, err
	}
	return cfg, res, nil
}

// Parse decodes data in the given format and validates it. It has no side
// effects; environment expansion only happens in Load.
func Parse(data []byte, format Format) (*SiteConfig, *NormalizationResult, error) {
	var raw RawConfig
	if err := Decode(data, format, &raw); err != nil {
		return nil, nil, err
	}
	return FromRaw(&raw)
}

// Load reads a site configuration file. It expands ${VAR} references using
// the process environment and the .env files next to the config, and
// resolves docs paths relative to the config file's directory.
func Load(configPath string) (*SiteConfig, error) {
	cfg, _, err := LoadExpanded(configPath)
	return cfg, err
}

// LoadExpanded is Load that also returns the document after environment
// expansion, so callers can tell when a .env change alters the config.
// The .env files are read on every call and never written into the process
// environment; variables set in the process take precedence.
func LoadExpanded(configPath string) (*SiteConfig, []byte, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("configuration file not found: %s: %w", configPath, fs.ErrNotExist)
	}

	format, err := FormatFromPath(configPath)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dir := filepath.Dir(configPath)
	env, loaded := readEnvFiles(dir)
	if len(loaded) > 0 {
		slog.Debug("Loaded environment files", "files", loaded)
	}
	expanded := []byte(os.Expand(string(data), env.lookup))

	cfg, res, err := Parse(expanded, format)
	if res != nil {
		for _, w := range res.Warnings {
			slog.Warn("config normalization", "path", configPath, "detail", w)
		}
	}
	if err != nil {
		return nil, nil, err
	}

	cfg.Docs.Path = resolveRelative(dir, cfg.Docs.Path)
	cfg.Docs.SidebarPath = resolveRelative(dir, cfg.Docs.SidebarPath)
	cfg.Pages.Path = resolveRelative(dir, cfg.Pages.Path)
	if cfg.Blog != nil {
		cfg.Blog.Path = resolveRelative(dir, cfg.Blog.Path)
	}
	return cfg, expanded, nil
}

// envFiles holds variables read from .env files.
type envFiles map[string]string

// lookup resolves a variable from the process environment first, then from
// the .env files.
func (e envFiles) lookup(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return e[key]
}

// readEnvFiles reads .env and then .env.local from dir; .env.local wins on
// conflicts. Missing files are skipped.
func readEnvFiles(dir string) (envFiles, []string) {
	env := envFiles{}
	var loaded []string
	for _, name := range []string{".env", ".env.local"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		vars, err := godotenv.Read(p)
		if err != nil {
			slog.Warn("Failed to load environment file", "path", p, "error", err)
			continue
		}
		maps.Copy(env, vars)
		loaded = append(loaded, p)
	}
	return env, loaded
}

func resolveRelative(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
