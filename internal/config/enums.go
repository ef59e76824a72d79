package config

import "strings"

// Position is the side of the navbar an item is placed on.
type Position string

const (
	PositionLeft  Position = "left"
	PositionRight Position = "right"
)

// FooterStyle selects the footer color scheme.
type FooterStyle string

const (
	FooterStyleLight FooterStyle = "light"
	FooterStyleDark  FooterStyle = "dark"
)

// BrokenLinkPolicy decides how unresolved navigation references are treated.
type BrokenLinkPolicy string

const (
	BrokenLinksThrow  BrokenLinkPolicy = "throw"
	BrokenLinksWarn   BrokenLinkPolicy = "warn"
	BrokenLinksIgnore BrokenLinkPolicy = "ignore"
)

// normalizer case-folds raw enum strings onto canonical values.
type normalizer[T ~string] struct {
	values map[string]T
}

func newNormalizer[T ~string](values ...T) normalizer[T] {
	m := make(map[string]T, len(values))
	for _, v := range values {
		m[string(v)] = v
	}
	return normalizer[T]{values: m}
}

// normalize returns the canonical value, or "" when raw is unknown.
func (n normalizer[T]) normalize(raw string) T {
	return n.values[strings.ToLower(strings.TrimSpace(raw))]
}

var (
	positionNormalizer    = newNormalizer(PositionLeft, PositionRight)
	footerStyleNormalizer = newNormalizer(FooterStyleLight, FooterStyleDark)
	policyNormalizer      = newNormalizer(BrokenLinksThrow, BrokenLinksWarn, BrokenLinksIgnore)
)

// NormalizePosition returns the canonical position or "" when unknown.
func NormalizePosition(raw string) Position { return positionNormalizer.normalize(raw) }

// NormalizeFooterStyle returns the canonical footer style or "" when unknown.
func NormalizeFooterStyle(raw string) FooterStyle { return footerStyleNormalizer.normalize(raw) }

// NormalizeBrokenLinkPolicy returns the canonical policy or "" when unknown.
func NormalizeBrokenLinkPolicy(raw string) BrokenLinkPolicy { return policyNormalizer.normalize(raw) }
