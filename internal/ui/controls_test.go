package ui

import (
	"testing"

	"waterflow/internal/core"
)

func TestControlAdjustClamps(t *testing.T) {
	c := Control{Key: "k", Step: 2, Min: 1, Max: 6}
	cases := []struct {
		current, direction int
		want               int
		ok                 bool
	}{
		{3, 1, 5, true},
		{5, 1, 6, true},
		{6, 1, 6, false},
		{2, -1, 1, true},
		{1, -1, 1, false},
		{4, 0, 4, false},
	}
	for _, tc := range cases {
		got, ok := c.Adjust(tc.current, tc.direction)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("Adjust(%d,%d): expected (%d,%v), got (%d,%v)", tc.current, tc.direction, tc.want, tc.ok, got, ok)
		}
	}
}

func TestSnapshotLinesSkipsControlledParameters(t *testing.T) {
	snap := core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{Name: "Simulation", Params: []core.Parameter{{Key: "generation", Label: "Generation", Value: "12"}}},
		{Name: "Drops", Params: []core.Parameter{
			{Key: "drop_depth", Label: "Drop depth", Value: "3"},
			{Key: "drop_radius", Label: "Drop radius", Value: "2"},
		}},
	}}
	lines := SnapshotLines(snap)
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %v", lines)
	}
	if !lines[0].Header || lines[0].Text != "Simulation" {
		t.Fatalf("expected Simulation header, got %+v", lines[0])
	}
	if lines[1].Text != "Generation   12" {
		t.Fatalf("expected padded generation row, got %q", lines[1].Text)
	}
}
