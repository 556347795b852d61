package ui

import (
	"fmt"

	"waterflow/internal/core"
)

// Control is an integer parameter the HUD can nudge with +/- buttons.
type Control struct {
	Key   string
	Label string
	Step  int
	Min   int
	Max   int
}

// Controls lists the adjustable parameters shown on the panel.
var Controls = []Control{
	{Key: "drop_depth", Label: "Drop depth", Step: 1, Min: 1, Max: 64},
	{Key: "drop_radius", Label: "Drop radius", Step: 1, Min: 0, Max: 32},
}

// Adjust returns the value one step from current in direction, clamped to
// the control's range. ok is false when the value would not change.
func (c Control) Adjust(current, direction int) (int, bool) {
	if direction == 0 {
		return current, false
	}
	step := c.Step
	if step <= 0 {
		step = 1
	}
	target := current + direction*step
	if target < c.Min {
		target = c.Min
	}
	if target > c.Max {
		target = c.Max
	}
	return target, target != current
}

// Line is one row of the parameter listing.
type Line struct {
	Text   string
	Header bool
}

// SnapshotLines flattens a snapshot into display rows, one header per group.
// Parameters that have a Control are left out; the controls draw them.
func SnapshotLines(s core.ParameterSnapshot) []Line {
	controlled := make(map[string]bool, len(Controls))
	for _, c := range Controls {
		controlled[c.Key] = true
	}
	var lines []Line
	for _, g := range s.Groups {
		var rows []Line
		for _, p := range g.Params {
			if controlled[p.Key] {
				continue
			}
			rows = append(rows, Line{Text: fmt.Sprintf("%-12s %s", p.Label, p.Value)})
		}
		if len(rows) == 0 {
			continue
		}
		lines = append(lines, Line{Text: g.Name, Header: true})
		lines = append(lines, rows...)
	}
	return lines
}
