package request

import (
	"encoding/json"
	"fmt"
	"math"
)

// Parse decodes an untrusted payload and returns a fully typed
// CommandRequest, or a ValidationError naming the first offending field.
// Fields are checked in a fixed order: text, history, lighting state,
// favorites, device config. Over-length text is truncated rather than
// rejected; history keeps the most recent turns, favorites and zones keep
// the first entries.
func Parse(payload []byte) (*CommandRequest, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, invalid("body", "payload is not a JSON object: %v", err)
	}
	return ParseMap(raw)
}

// ParseMap validates an already-decoded generic payload. See Parse.
func ParseMap(raw map[string]any) (*CommandRequest, error) {
	req := &CommandRequest{}

	if err := parseText(raw, req); err != nil {
		return nil, err
	}
	if err := parseHistory(raw, req); err != nil {
		return nil, err
	}
	if err := parseLightingState(raw, req); err != nil {
		return nil, err
	}
	if err := parseFavorites(raw, req); err != nil {
		return nil, err
	}
	if err := parseDeviceConfig(raw, req); err != nil {
		return nil, err
	}
	return req, nil
}

func parseText(raw map[string]any, req *CommandRequest) error {
	v, ok := raw["transcribedText"]
	if !ok {
		return invalid("transcribedText", "required")
	}
	s, ok := v.(string)
	if !ok {
		return invalid("transcribedText", "must be a string")
	}
	s = sanitizeAndTruncate(s, MaxTextLen)
	if s == "" {
		return invalid("transcribedText", "empty after sanitization")
	}
	req.TranscribedText = s
	return nil
}

func parseHistory(raw map[string]any, req *CommandRequest) error {
	v, ok := raw["conversationHistory"]
	if !ok || v == nil {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return invalid("conversationHistory", "must be an array")
	}
	// Keep the tail: the most recent turns matter most.
	if len(arr) > MaxHistoryTurns {
		arr = arr[len(arr)-MaxHistoryTurns:]
	}
	turns := make([]Turn, 0, len(arr))
	for i, e := range arr {
		obj, ok := e.(map[string]any)
		if !ok {
			return invalid(fmt.Sprintf("conversationHistory[%d]", i), "must be an object")
		}
		role, _ := obj["role"].(string)
		if role != "user" && role != "assistant" {
			return invalid(fmt.Sprintf("conversationHistory[%d].role", i), "must be user or assistant")
		}
		content, ok := obj["content"].(string)
		if !ok {
			return invalid(fmt.Sprintf("conversationHistory[%d].content", i), "must be a string")
		}
		turns = append(turns, Turn{
			Role:    role,
			Content: sanitizeAndTruncate(content, MaxTurnLen),
		})
	}
	req.ConversationHistory = turns
	return nil
}

func parseLightingState(raw map[string]any, req *CommandRequest) error {
	v, ok := raw["currentLightingState"]
	if !ok || v == nil {
		return nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return invalid("currentLightingState", "must be an object")
	}
	state := make(map[string]ZoneState, len(obj))
	for name, zv := range obj {
		zone, ok := zv.(map[string]any)
		if !ok {
			return invalid("currentLightingState."+name, "must be an object")
		}
		zs := ZoneState{}
		if cv, ok := zone["color"]; ok && cv != nil {
			color, ok := asColor(cv)
			if !ok {
				return invalid("currentLightingState."+name+".color", "must be 3 or 4 integers in 0-255")
			}
			zs.Color = color
		}
		if bv, ok := zone["brightness"]; ok {
			n, ok := asInt(bv)
			if !ok || n < 0 || n > 255 {
				return invalid("currentLightingState."+name+".brightness", "must be an integer in 0-255")
			}
			zs.Brightness = n
		}
		if ev, ok := zone["effect"]; ok {
			n, ok := asInt(ev)
			if !ok || n < 0 {
				return invalid("currentLightingState."+name+".effect", "must be a non-negative integer")
			}
			zs.Effect = n
		}
		state[name] = zs
	}
	req.CurrentLightingState = state
	return nil
}

func parseFavorites(raw map[string]any, req *CommandRequest) error {
	v, ok := raw["userFavorites"]
	if !ok || v == nil {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return invalid("userFavorites", "must be an array")
	}
	if len(arr) > MaxFavorites {
		arr = arr[:MaxFavorites]
	}
	favs := make([]string, 0, len(arr))
	for i, e := range arr {
		s, ok := e.(string)
		if !ok {
			return invalid(fmt.Sprintf("userFavorites[%d]", i), "must be a string")
		}
		s = sanitizeAndTruncate(s, MaxFavoriteLen)
		if s == "" {
			continue
		}
		favs = append(favs, s)
	}
	req.UserFavorites = favs
	return nil
}

func parseDeviceConfig(raw map[string]any, req *CommandRequest) error {
	v, ok := raw["deviceConfig"]
	if !ok || v == nil {
		return invalid("deviceConfig", "required")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return invalid("deviceConfig", "must be an object")
	}

	total, ok := asInt(obj["totalPixels"])
	if !ok || total < 1 || total > MaxTotalPixels {
		return invalid("deviceConfig.totalPixels", "must be an integer in 1-%d", MaxTotalPixels)
	}
	req.DeviceConfig.TotalPixels = total

	zv, ok := obj["zones"]
	if !ok || zv == nil {
		return nil
	}
	arr, ok := zv.([]any)
	if !ok {
		return invalid("deviceConfig.zones", "must be an array")
	}
	if len(arr) > MaxZones {
		arr = arr[:MaxZones]
	}
	zones := make([]Zone, 0, len(arr))
	for i, e := range arr {
		zo, ok := e.(map[string]any)
		if !ok {
			return invalid(fmt.Sprintf("deviceConfig.zones[%d]", i), "must be an object")
		}
		name, _ := zo["name"].(string)
		start, okS := asInt(zo["startPixel"])
		end, okE := asInt(zo["endPixel"])
		if !okS || !okE || start < 0 || end < 0 {
			return invalid(fmt.Sprintf("deviceConfig.zones[%d]", i), "startPixel and endPixel must be non-negative integers")
		}
		if start > end {
			return invalid(fmt.Sprintf("deviceConfig.zones[%d]", i), "startPixel must not exceed endPixel")
		}
		zones = append(zones, Zone{Name: Sanitize(name), StartPixel: start, EndPixel: end})
	}
	req.DeviceConfig.Zones = zones
	return nil
}

// asColor accepts a JSON array of 3 or 4 integers in [0,255]. A 4th channel
// is the white channel on RGBW strips.
func asColor(v any) (Color, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	if len(arr) != 3 && len(arr) != 4 {
		return nil, false
	}
	c := make(Color, len(arr))
	for i, e := range arr {
		n, ok := asInt(e)
		if !ok || n < 0 || n > 255 {
			return nil, false
		}
		c[i] = n
	}
	return c, true
}

// asInt accepts float64 (the JSON number type) and int, rejecting
// non-integral values.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
