package version

import (
	"strings"
	"testing"
)

func TestDefaultVersionNamesRelease(t *testing.T) {
	if Version != "v2.1 (Visual Upgrade)" {
		t.Errorf("Version = %q, want v2.1 (Visual Upgrade)", Version)
	}
	if !strings.HasPrefix(String(), Version+" (commit=") {
		t.Errorf("String() = %q, want it to start with the version", String())
	}
}
