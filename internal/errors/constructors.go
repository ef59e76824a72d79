package errors

// Convenience functions for common error patterns

// Input errors

func ConfigNotFound(path string) *SiteError {
	return New(CategoryConfig, SeverityFatal, "site configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *SiteError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "site configuration invalid").
		WithContext("path", path)
}

func SidebarInvalid(path string, cause error) *SiteError {
	return Wrap(cause, CategorySidebar, SeverityFatal, "sidebar definition invalid").
		WithContext("path", path)
}

func BrokenLinks(count int, cause error) *SiteError {
	return Wrap(cause, CategoryValidation, SeverityFatal, "broken navigation links").
		WithContext("warnings", count)
}

// Content and output errors

func DiscoveryError(root string, cause error) *SiteError {
	return Wrap(cause, CategoryContent, SeverityFatal, "content discovery failed").
		WithContext("root", root)
}

func ManifestWriteError(path string, cause error) *SiteError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "writing site manifest failed").
		WithContext("path", path)
}

// External systems

func ExternalError(system string, cause error) *SiteError {
	return Wrap(cause, CategoryExternal, SeverityWarning, "external system unavailable").
		WithContext("system", system)
}

// Internal errors

func InternalError(message string, cause error) *SiteError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
