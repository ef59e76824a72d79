package version

import "testing"

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if BuildTime == "" || GitCommit == "" {
		t.Error("build info should be initialized")
	}
}

func TestString(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })

	Version, GitCommit = "v1.2.3", "unknown"
	if got := String(); got != "v1.2.3" {
		t.Errorf("String() = %q", got)
	}

	GitCommit = "0123456789abcdef"
	if got := String(); got != "v1.2.3 (0123456)" {
		t.Errorf("String() = %q", got)
	}
}
