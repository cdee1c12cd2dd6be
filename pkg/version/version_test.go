package version

import (
	"strings"
	"testing"
)

func TestVersionStrings(t *testing.T) {
	v := String()
	if !strings.HasPrefix(v, "v") {
		t.Errorf("version string should start with v, got %s", v)
	}

	for _, tt := range []struct {
		fips bool
		mode string
	}{{false, "(standard build)"}, {true, "(fips build)"}} {
		full := Full(tt.fips)
		if !strings.Contains(full, "quantum-go-fips") {
			t.Errorf("full version should contain project name, got %s", full)
		}
		if !strings.Contains(full, v) {
			t.Errorf("full version should contain version string, got %s", full)
		}
		if !strings.HasSuffix(full, tt.mode) {
			t.Errorf("full version should end with %s, got %s", tt.mode, full)
		}
	}
}
