package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *SiteError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.err.Error())
		})
	}
}

func TestSiteError_WithContext(t *testing.T) {
	err := New(CategorySidebar, SeverityFatal, "sidebar invalid").
		WithContext("sidebar", "tutorialSidebar").
		WithContext("path", "sidebars.yaml")

	require.NotNil(t, err.Context)
	assert.Equal(t, "tutorialSidebar", err.Context["sidebar"])
	assert.Equal(t, "sidebars.yaml", err.Context["path"])
}

func TestIsCategoryThroughWrapping(t *testing.T) {
	configErr := ConfigInvalid("site.yaml", fmt.Errorf("title missing"))
	wrapped := fmt.Errorf("build: %w", configErr)

	assert.True(t, IsCategory(wrapped, CategoryConfig))
	assert.False(t, IsCategory(wrapped, CategorySidebar))
	assert.False(t, IsCategory(fmt.Errorf("plain"), CategoryConfig))
	assert.Equal(t, CategoryInternal, GetCategory(fmt.Errorf("plain")))
}

func TestUnwrapReachesCause(t *testing.T) {
	sentinel := stdErrors.New("duplicate document")
	err := SidebarInvalid("sidebars.yaml", fmt.Errorf("intro: %w", sentinel))
	assert.True(t, stdErrors.Is(err, sentinel))
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{fmt.Errorf("plain"), 1},
		{BrokenLinks(2, fmt.Errorf("x")), 2},
		{SidebarInvalid("s.yaml", fmt.Errorf("x")), 6},
		{ConfigNotFound("site.yaml"), 7},
		{ExternalError("nats", fmt.Errorf("x")), 8},
		{InternalError("boom", fmt.Errorf("x")), 10},
		{ManifestWriteError("out.json", fmt.Errorf("x")), 11},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.code, a.ExitCodeFor(tc.err), "err=%v", tc.err)
	}
}

func TestCLIErrorAdapter_FormatAndReport(t *testing.T) {
	var logs bytes.Buffer
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	var out bytes.Buffer
	a.out = &out

	err := ConfigInvalid("site.yaml", fmt.Errorf("i18n.defaultLocale: not listed"))
	assert.Equal(t, "site configuration invalid: i18n.defaultLocale: not listed", a.FormatError(err))

	code := a.Report(err)
	assert.Equal(t, 7, code)
	assert.Contains(t, out.String(), "defaultLocale")
	assert.Empty(t, logs.String(), "config errors are not logged in non-verbose mode")

	assert.Equal(t, "Error: plain", a.FormatError(fmt.Errorf("plain")))
}
