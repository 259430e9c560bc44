package prompt

import (
	"fmt"
	"strings"
)

// Effect is one entry of the built-in LED animation catalog. IDs follow the
// WLED effect table.
type Effect struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Mood string `json:"mood"` // calm, medium, or high
}

// Effects is the catalog embedded into every system prompt and exposed as an
// MCP resource.
var Effects = []Effect{
	{0, "Solid", "calm"},
	{2, "Breathe", "calm"},
	{3, "Wipe", "medium"},
	{8, "Colorloop", "medium"},
	{9, "Rainbow", "high"},
	{11, "Rainbow Cycle", "high"},
	{12, "Fade", "calm"},
	{42, "Fireworks", "high"},
	{46, "Gradient", "medium"},
	{66, "Fire", "high"},
	{67, "Plasma", "medium"},
	{74, "Colortwinkles", "high"},
	{87, "Glitter", "high"},
	{90, "Fireworks 1D", "high"},
	{101, "Pacifica", "calm"},
	{110, "Flow", "calm"},
}

// effectCatalog renders the catalog as plain text for prompt embedding.
func effectCatalog() string {
	var sb strings.Builder
	for _, e := range Effects {
		fmt.Fprintf(&sb, "- %d = %s (%s energy)\n", e.ID, e.Name, e.Mood)
	}
	return strings.TrimRight(sb.String(), "\n")
}

const colorSemantics = `Warm colors (reds, oranges, ambers) feel cozy and relaxing.
Cool colors (blues, teals, purples) feel calm and focused.
Saturated multi-color palettes feel festive and energetic.
Pure white [255,255,255] is functional/task lighting; warm white [255,180,100] is ambient.
A 4th color channel, when present, drives dedicated white LEDs on RGBW strips.`

const moodPresets = `- "cozy": effect 2 (Breathe), warm amber tones, brightness 140-180, slow speed
- "party": effect 9 (Rainbow) or 42 (Fireworks), saturated colors, brightness 220-255, fast speed
- "relax": effect 101 (Pacifica) or 110 (Flow), cool blues, brightness 120-160
- "focus": effect 0 (Solid), neutral white, brightness 200-230
- "romantic": effect 2 (Breathe), deep reds and purples, brightness 100-140
- "movie": effect 0 (Solid), dim warm bias light, brightness 60-100`
