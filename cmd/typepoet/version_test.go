package main

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestDevelVersion(t *testing.T) {
	tests := []struct {
		name     string
		settings []debug.BuildSetting
		want     string
	}{
		{"no vcs", nil, "devel-0.1.0"},
		{"revision", []debug.BuildSetting{{Key: "vcs.revision", Value: "abc1234def"}}, "devel-0.1.0+abc1234"},
		{"dirty", []debug.BuildSetting{{Key: "vcs.revision", Value: "abc1234def"}, {Key: "vcs.modified", Value: "true"}}, "devel-0.1.0+abc1234-dirty"},
		{"short revision", []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}}, "devel-0.1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := develVersion("0.1.0", tt.settings); got != tt.want {
				t.Errorf("develVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	if got := Version(); !strings.Contains(got, strings.TrimSpace(embeddedVersion)) {
		t.Errorf("Version() = %q, want it to contain %q", got, strings.TrimSpace(embeddedVersion))
	}
}
