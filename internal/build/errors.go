package build

import "errors"

// Sentinel errors naming the failed stage. They are always wrapped with
// context at the call site.
var (
	ErrLoadConfig   = errors.New("docsite: load config")
	ErrLoadSidebars = errors.New("docsite: load sidebars")
	ErrDiscovery    = errors.New("docsite: content discovery")
	ErrAssemble     = errors.New("docsite: assemble")
	ErrManifest     = errors.New("docsite: write manifest")
)
