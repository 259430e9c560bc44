// Package prompt renders the fixed instruction templates plus user and
// device context into a single system-prompt string. The model receives only
// text: every user-specific section is interpolated as plain prose, never as
// structured data. Builders never touch the network and never mutate state.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luminalights/lumina/internal/request"
)

// Context carries the user/device sections shared by both prompt variants.
type Context struct {
	State     map[string]request.ZoneState
	Device    request.DeviceConfig
	Favorites []string
}

// ScheduleContext extends Context with the sections only the multi-day
// scheduler needs.
type ScheduleContext struct {
	Context
	CurrentSchedule []string          // rendered one entry per line
	TeamColors      map[string]string // team name -> palette description
	Timezone        string
	Sunrise         string // HH:MM local
	Sunset          string // HH:MM local
}

// BuildAssistant renders the single-command assistant prompt.
func BuildAssistant(ctx Context) string {
	var sb strings.Builder
	sb.WriteString(assistantTemplate)
	writeKnowledge(&sb)
	writeDeviceSections(&sb, ctx)
	return sb.String()
}

// BuildScheduler renders the multi-day scheduler prompt.
func BuildScheduler(ctx ScheduleContext) string {
	var sb strings.Builder
	sb.WriteString(schedulerTemplate)
	writeKnowledge(&sb)
	writeDeviceSections(&sb, ctx.Context)

	if len(ctx.CurrentSchedule) > 0 {
		sb.WriteString("\n\n[Current Schedule]\n")
		for _, line := range ctx.CurrentSchedule {
			fmt.Fprintf(&sb, "- %s\n", line)
		}
	}

	if len(ctx.TeamColors) > 0 {
		sb.WriteString("\n[Team Colors]\n")
		names := make([]string, 0, len(ctx.TeamColors))
		for name := range ctx.TeamColors {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "- %s: %s\n", name, ctx.TeamColors[name])
		}
	}

	if ctx.Timezone != "" {
		fmt.Fprintf(&sb, "\n[Timezone]\n%s\n", ctx.Timezone)
	}
	if ctx.Sunrise != "" || ctx.Sunset != "" {
		fmt.Fprintf(&sb, "\n[Sun]\nsunrise %s, sunset %s\n", ctx.Sunrise, ctx.Sunset)
	}

	return sb.String()
}

func writeKnowledge(sb *strings.Builder) {
	sb.WriteString("\n\n[Effect Catalog]\n")
	sb.WriteString(effectCatalog())
	sb.WriteString("\n\n[Color Semantics]\n")
	sb.WriteString(colorSemantics)
	sb.WriteString("\n\n[Mood Presets]\n")
	sb.WriteString(moodPresets)
}

func writeDeviceSections(sb *strings.Builder, ctx Context) {
	sb.WriteString("\n\n[Current Zones]\n")
	if len(ctx.State) == 0 {
		sb.WriteString("(no zone state reported)\n")
	} else {
		names := make([]string, 0, len(ctx.State))
		for name := range ctx.State {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			zs := ctx.State[name]
			fmt.Fprintf(sb, "- %s: effect %d, brightness %d, color %s\n", name, zs.Effect, zs.Brightness, formatColor(zs.Color))
		}
	}

	fmt.Fprintf(sb, "\n[Device Layout]\n%d pixels total\n", ctx.Device.TotalPixels)
	for _, z := range ctx.Device.Zones {
		fmt.Fprintf(sb, "- %s: pixels %d-%d\n", z.Name, z.StartPixel, z.EndPixel)
	}

	if len(ctx.Favorites) > 0 {
		sb.WriteString("\n[Favorites]\n")
		for _, f := range ctx.Favorites {
			fmt.Fprintf(sb, "- %s\n", f)
		}
	}
}

func formatColor(c request.Color) string {
	if len(c) == 0 {
		return "(unset)"
	}
	parts := make([]string, len(c))
	for i, ch := range c {
		parts[i] = fmt.Sprintf("%d", ch)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
