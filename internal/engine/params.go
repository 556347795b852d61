package engine

import (
	"strconv"

	"waterflow/internal/core"
)

// Parameters reports the engine's configuration and live state for the HUD.
func (e *Engine) Parameters() core.ParameterSnapshot {
	e.mu.Lock()
	paused, stopped := e.paused, e.stopped
	e.mu.Unlock()

	state := "running"
	switch {
	case stopped:
		state = "stopped"
	case paused:
		state = "paused"
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Simulation",
			Params: []core.Parameter{
				{Key: "generation", Label: "Generation", Type: core.ParamTypeInt, Value: strconv.FormatUint(e.Generation(), 10)},
				{Key: "state", Label: "State", Type: core.ParamTypeString, Value: state},
				{Key: "water", Label: "Water", Type: core.ParamTypeInt, Value: strconv.Itoa(e.field.Total())},
			},
		},
		{
			Name: "Engine",
			Params: []core.Parameter{
				intParam("workers", "Workers", e.part.Workers()),
				{Key: "lock", Label: "Lock policy", Type: core.ParamTypeString, Value: e.cfg.LockPolicy},
				{Key: "ordered", Label: "Ordered", Type: core.ParamTypeBool, Value: strconv.FormatBool(e.cfg.Ordered)},
			},
		},
		{
			Name: "Drops",
			Params: []core.Parameter{
				intParam("drop_depth", "Drop depth", int(e.dropDepth.Load())),
				intParam("drop_radius", "Drop radius", int(e.dropRadius.Load())),
			},
		},
	}}
}

// SetIntParameter updates the drop shape. It reports false for unknown keys.
func (e *Engine) SetIntParameter(key string, value int) bool {
	if value < 0 {
		value = 0
	}
	switch key {
	case "drop_depth":
		e.dropDepth.Store(int64(value))
	case "drop_radius":
		e.dropRadius.Store(int64(value))
	default:
		return false
	}
	return true
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}
