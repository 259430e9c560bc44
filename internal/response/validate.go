// Package response normalizes and clamps the model's JSON reply into the
// strict application schema. Only a missing or unrecognized intent is fatal;
// every other field is best-effort repair of a model that is instructed to,
// but may not, emit perfect JSON.
package response

import "math"

const (
	defaultResponseText = "Here you go!"
	defaultBrightness   = 200
	defaultConfidence   = 0.8

	previewColorCount = 9
	maxCommandColors  = 3
	maxClarifications = 3
)

var defaultColors = [][]int{{255, 255, 255}}

// ParseCommand validates a single-command assistant reply. The generic
// object comes from the LLM client's best-effort JSON extraction; nil means
// the model produced no parseable JSON at all.
func ParseCommand(obj map[string]any) (*CommandResponse, error) {
	if obj == nil {
		return nil, ErrNoJSON
	}

	intent, err := parseIntent(obj)
	if err != nil {
		return nil, err
	}

	resp := &CommandResponse{
		Intent:               intent,
		ResponseText:         stringOr(obj, "responseText", defaultResponseText),
		Commands:             parseCommands(obj["commands"]),
		PreviewColors:        parsePreviewColors(obj["previewColors"]),
		ClarificationOptions: parseClarifications(obj["clarificationOptions"]),
		NavigationTarget:     stringOr(obj, "navigationTarget", ""),
		SaveAsFavorite:       stringOr(obj, "saveAsFavorite", ""),
		Confidence:           parseConfidence(obj["confidence"]),
	}
	return resp, nil
}

// parseIntent extracts the discriminator, accepting the legacy
// "responseType" key as an alias.
func parseIntent(obj map[string]any) (Intent, error) {
	raw, ok := obj["intent"].(string)
	if !ok || raw == "" {
		raw, ok = obj["responseType"].(string)
		if !ok || raw == "" {
			return "", ErrInvalidIntent
		}
	}
	switch Intent(raw) {
	case IntentLightingCommand, IntentNavigation, IntentQuestionAnswer, IntentGuidedCreation:
		return Intent(raw), nil
	}
	return "", ErrInvalidIntent
}

// parseCommands repairs each command entry with safe defaults: zone "all",
// effect 0, one white color, brightness 200 clamped to 0-255. Speed and
// intensity stay absent when absent.
func parseCommands(v any) []LightCommand {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return nil
	}

	commands := make([]LightCommand, 0, len(arr))
	for _, e := range arr {
		obj, ok := e.(map[string]any)
		if !ok {
			obj = map[string]any{}
		}
		cmd := LightCommand{
			Zone:       stringOr(obj, "zone", "all"),
			Effect:     intOr(obj["effect"], 0),
			Colors:     parseColors(obj["colors"], maxCommandColors),
			Brightness: clampInt(intOr(obj["brightness"], defaultBrightness), 0, 255),
			Speed:      optionalChannel(obj["speed"]),
			Intensity:  optionalChannel(obj["intensity"]),
		}
		if cmd.Effect < 0 {
			cmd.Effect = 0
		}
		if len(cmd.Colors) == 0 {
			cmd.Colors = defaultColors
		}
		commands = append(commands, cmd)
	}
	return commands
}

// parsePreviewColors keeps valid colors, takes the first nine, and pads by
// repeating the last when at least one survived. Zero valid colors yields
// nil, never an empty array. Swatches are RGB only; a white channel is
// dropped here even though command colors keep it.
func parsePreviewColors(v any) [][]int {
	colors := parseColors(v, previewColorCount)
	if len(colors) == 0 {
		return nil
	}
	for i, c := range colors {
		colors[i] = c[:3]
	}
	for len(colors) < previewColorCount {
		colors = append(colors, colors[len(colors)-1])
	}
	return colors
}

func parseClarifications(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var opts []string
	for _, e := range arr {
		s, ok := e.(string)
		if !ok || s == "" {
			continue
		}
		opts = append(opts, s)
		if len(opts) == maxClarifications {
			break
		}
	}
	return opts
}

func parseConfidence(v any) float64 {
	n, ok := asNumber(v)
	if !ok {
		return defaultConfidence
	}
	return math.Min(1, math.Max(0, n))
}

// parseColors filters to arrays with at least 3 numeric elements, clamping
// each channel into 0-255, and caps the result at max entries. A 4th channel
// (white) is kept when present.
func parseColors(v any, max int) [][]int {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var colors [][]int
	for _, e := range arr {
		c, ok := asColor(e)
		if !ok {
			continue
		}
		colors = append(colors, c)
		if len(colors) == max {
			break
		}
	}
	return colors
}

func asColor(v any) ([]int, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) < 3 {
		return nil, false
	}
	size := len(arr)
	if size > 4 {
		size = 4
	}
	c := make([]int, size)
	for i := 0; i < size; i++ {
		n, ok := asNumber(arr[i])
		if !ok {
			return nil, false
		}
		c[i] = clampInt(int(math.Round(n)), 0, 255)
	}
	return c, true
}

// optionalChannel returns a clamped pointer only when the value is numeric;
// absence is preserved as nil.
func optionalChannel(v any) *int {
	n, ok := asNumber(v)
	if !ok {
		return nil
	}
	c := clampInt(int(math.Round(n)), 0, 255)
	return &c
}

func stringOr(obj map[string]any, key, fallback string) string {
	if s, ok := obj[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func intOr(v any, fallback int) int {
	n, ok := asNumber(v)
	if !ok {
		return fallback
	}
	return int(math.Round(n))
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
