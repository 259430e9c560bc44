package request

import "fmt"

// Bounds enforced on every CommandRequest before any model call.
const (
	MaxTextLen      = 1000
	MaxHistoryTurns = 10
	MaxTurnLen      = 2000
	MaxFavorites    = 50
	MaxFavoriteLen  = 100
	MaxZones        = 32
	MaxTotalPixels  = 10000
)

// Color is an RGB (or RGBW, when a 4th white channel is present) value with
// every channel in [0,255].
type Color []int

// Turn is one conversation message exchanged with the assistant.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ZoneState is the current lighting configuration of a single zone.
type ZoneState struct {
	Color      Color `json:"color"`
	Brightness int   `json:"brightness"`
	Effect     int   `json:"effect"`
}

// Zone is an addressable contiguous LED segment on the controller.
type Zone struct {
	Name       string `json:"name"`
	StartPixel int    `json:"startPixel"`
	EndPixel   int    `json:"endPixel"`
}

// DeviceConfig describes the physical LED layout of a controller.
type DeviceConfig struct {
	TotalPixels int    `json:"totalPixels"`
	Zones       []Zone `json:"zones"`
}

// CommandRequest is a fully validated, size-bounded command payload.
// Instances are produced only by Parse; all free text has been sanitized
// and every collection truncated to its maximum count.
type CommandRequest struct {
	TranscribedText      string               `json:"transcribedText"`
	ConversationHistory  []Turn               `json:"conversationHistory"`
	CurrentLightingState map[string]ZoneState `json:"currentLightingState"`
	DeviceConfig         DeviceConfig         `json:"deviceConfig"`
	UserFavorites        []string             `json:"userFavorites"`
}

// ValidationError identifies the first offending field of an invalid payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
