package main

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/config"
)

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid("link_radius=60:180:3, jitter=0.1:0.1:1")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "link_radius" || names[1] != "jitter" {
		t.Fatalf("names = %v", names)
	}
	if got := ranges[0]; len(got) != 3 || got[0] != 60 || got[1] != 120 || got[2] != 180 {
		t.Errorf("link_radius range = %v", got)
	}

	for _, bad := range []string{"", "link_radius", "link_radius=1:2", "gravity=1:2:3", "jitter=a:1:2", "jitter=0:1:0"} {
		if _, _, err := parseGrid(bad); err == nil {
			t.Errorf("parseGrid(%q) should fail", bad)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Error("empty input should give nil")
	}
}

func TestResolveConfigRejectsBadFlags(t *testing.T) {
	tests := []struct {
		flag, value string
	}{
		{"theme", "neon"},
		{"width", "NaN"},
		{"height", "+Inf"},
		{"dpr", "NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			cmd := &cobra.Command{Use: "run"}
			addRunFlags(cmd)
			if err := cmd.Flags().Set(tt.flag, tt.value); err != nil {
				t.Fatal(err)
			}
			if _, err := resolveConfig(cmd); !errors.Is(err, config.ErrInvalid) {
				t.Errorf("--%s=%s: expected ErrInvalid, got %v", tt.flag, tt.value, err)
			}
		})
	}
}
