package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/luminalights/lumina/internal/prompt"
)

// parseScheduleContext extracts the optional scheduleContext object from the
// raw payload. Everything here is advisory prompt text, so parsing is
// lenient: malformed fields are simply dropped.
func parseScheduleContext(payload []byte) prompt.ScheduleContext {
	var raw struct {
		ScheduleContext struct {
			Timezone        string             `json:"timezone"`
			Sunrise         string             `json:"sunrise"`
			Sunset          string             `json:"sunset"`
			CurrentSchedule []string           `json:"currentSchedule"`
			TeamColors      map[string][][]int `json:"teamColors"`
		} `json:"scheduleContext"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return prompt.ScheduleContext{}
	}

	sc := prompt.ScheduleContext{
		Timezone:        raw.ScheduleContext.Timezone,
		Sunrise:         raw.ScheduleContext.Sunrise,
		Sunset:          raw.ScheduleContext.Sunset,
		CurrentSchedule: raw.ScheduleContext.CurrentSchedule,
	}
	if len(raw.ScheduleContext.TeamColors) > 0 {
		sc.TeamColors = make(map[string]string, len(raw.ScheduleContext.TeamColors))
		for name, colors := range raw.ScheduleContext.TeamColors {
			sc.TeamColors[name] = formatPalette(colors)
		}
	}
	return sc
}

func formatPalette(colors [][]int) string {
	out := ""
	for i, c := range colors {
		if len(c) < 3 {
			continue
		}
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("[%d,%d,%d]", c[0], c[1], c[2])
	}
	return out
}
