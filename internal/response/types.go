package response

import "errors"

// Intent is the top-level discriminator of a model reply: it selects which
// other response fields are meaningful.
type Intent string

const (
	IntentLightingCommand Intent = "lighting_command"
	IntentNavigation      Intent = "navigation"
	IntentQuestionAnswer  Intent = "question_answer"
	IntentGuidedCreation  Intent = "guided_creation"
)

// The two hard failures of response validation. Every other malformed field
// is repaired with a safe default.
var (
	ErrNoJSON        = errors.New("Claude did not return valid JSON")
	ErrInvalidIntent = errors.New("Invalid intent")
)

// LightCommand is one bounded device instruction. Speed and Intensity are
// pointers because absence is a valid instruction meaning "leave the device
// setting unchanged"; they are never defaulted to a number.
type LightCommand struct {
	Zone       string  `json:"zone"`
	Effect     int     `json:"effect"`
	Colors     [][]int `json:"colors"`
	Brightness int     `json:"brightness"`
	Speed      *int    `json:"speed,omitempty"`
	Intensity  *int    `json:"intensity,omitempty"`
}

// CommandResponse is the normalized, clamped application schema built from
// the model's reply. Every numeric field is inside its valid range; the
// pipeline never forwards out-of-range device parameters.
type CommandResponse struct {
	Intent               Intent         `json:"intent"`
	ResponseText         string         `json:"responseText"`
	Commands             []LightCommand `json:"commands,omitempty"`
	PreviewColors        [][]int        `json:"previewColors,omitempty"`
	ClarificationOptions []string       `json:"clarificationOptions,omitempty"`
	NavigationTarget     string         `json:"navigationTarget,omitempty"`
	SaveAsFavorite       string         `json:"saveAsFavorite,omitempty"`
	Confidence           float64        `json:"confidence"`
}

// Resolution is the suggested handling for a schedule conflict.
type Resolution string

const (
	ResolutionReplace    Resolution = "replace"
	ResolutionAdjustTime Resolution = "adjust_time"
	ResolutionMerge      Resolution = "merge"
	ResolutionKeepBoth   Resolution = "keep_both"
)

// ScheduleEntry is one normalized schedule item. StartTime is an HH:MM local
// time unless TriggerType is set, in which case Offset is minutes relative
// to sunrise/sunset. EndTime is HH:MM or the literal "manual".
type ScheduleEntry struct {
	Name        string   `json:"name"`
	Zone        string   `json:"zone"`
	StartTime   string   `json:"startTime,omitempty"`
	TriggerType string   `json:"triggerType,omitempty"`
	Offset      int      `json:"offset,omitempty"`
	EndTime     string   `json:"endTime"`
	Days        []string `json:"days"`
	EffectID    int      `json:"effectId"`
	Colors      [][]int  `json:"colors"`
	Brightness  int      `json:"brightness"`
	Speed       *int     `json:"speed,omitempty"`
	Intensity   *int     `json:"intensity,omitempty"`
	Recurring   bool     `json:"recurring"`
	Priority    int      `json:"priority"`
}

// Conflict references an existing event the new schedule overlaps with.
type Conflict struct {
	ExistingEventID     string     `json:"existingEventId"`
	SuggestedResolution Resolution `json:"suggestedResolution"`
	Reason              string     `json:"reason,omitempty"`
}

// ScheduleResponse is the normalized multi-day scheduler reply.
type ScheduleResponse struct {
	Intent               Intent          `json:"intent"`
	ResponseText         string          `json:"responseText"`
	Schedule             []ScheduleEntry `json:"schedule,omitempty"`
	Conflicts            []Conflict      `json:"conflicts,omitempty"`
	ClarificationOptions []string        `json:"clarificationOptions,omitempty"`
	Confidence           float64         `json:"confidence"`
}
