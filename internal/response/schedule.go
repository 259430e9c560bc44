package response

const defaultPriority = 50

// ParseSchedule validates a multi-day scheduler reply. Like ParseCommand,
// only the discriminator is fatal; schedule entries and conflicts are
// repaired field by field.
func ParseSchedule(obj map[string]any) (*ScheduleResponse, error) {
	if obj == nil {
		return nil, ErrNoJSON
	}

	intent, err := parseIntent(obj)
	if err != nil {
		return nil, err
	}

	resp := &ScheduleResponse{
		Intent:               intent,
		ResponseText:         stringOr(obj, "responseText", defaultResponseText),
		Schedule:             parseScheduleEntries(obj["schedule"]),
		Conflicts:            parseConflicts(obj["conflicts"]),
		ClarificationOptions: parseClarifications(obj["clarificationOptions"]),
		Confidence:           parseConfidence(obj["confidence"]),
	}
	return resp, nil
}

func parseScheduleEntries(v any) []ScheduleEntry {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return nil
	}

	entries := make([]ScheduleEntry, 0, len(arr))
	for _, e := range arr {
		obj, ok := e.(map[string]any)
		if !ok {
			continue
		}
		entry := ScheduleEntry{
			Name:        stringOr(obj, "name", "Scheduled lighting"),
			Zone:        stringOr(obj, "zone", "all"),
			StartTime:   stringOr(obj, "startTime", ""),
			TriggerType: parseTrigger(obj["triggerType"]),
			Offset:      intOr(obj["offset"], 0),
			EndTime:     stringOr(obj, "endTime", "manual"),
			Days:        parseDays(obj["days"]),
			EffectID:    intOr(obj["effectId"], 0),
			Colors:      parseColors(obj["colors"], maxCommandColors),
			Brightness:  clampInt(intOr(obj["brightness"], defaultBrightness), 0, 255),
			Speed:       optionalChannel(obj["speed"]),
			Intensity:   optionalChannel(obj["intensity"]),
			Recurring:   boolOr(obj["recurring"], false),
			Priority:    clampInt(intOr(obj["priority"], defaultPriority), 0, 100),
		}
		if entry.EffectID < 0 {
			entry.EffectID = 0
		}
		if len(entry.Colors) == 0 {
			entry.Colors = defaultColors
		}
		// An entry needs either a clock time or a sun trigger to be actionable.
		if entry.StartTime == "" && entry.TriggerType == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// parseConflicts keeps only conflicts that reference an existing event;
// an unrecognized resolution degrades to keep_both, the least destructive.
func parseConflicts(v any) []Conflict {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var conflicts []Conflict
	for _, e := range arr {
		obj, ok := e.(map[string]any)
		if !ok {
			continue
		}
		id := stringOr(obj, "existingEventId", "")
		if id == "" {
			continue
		}
		conflicts = append(conflicts, Conflict{
			ExistingEventID:     id,
			SuggestedResolution: parseResolution(obj["suggestedResolution"]),
			Reason:              stringOr(obj, "reason", ""),
		})
	}
	return conflicts
}

func parseResolution(v any) Resolution {
	s, _ := v.(string)
	switch Resolution(s) {
	case ResolutionReplace, ResolutionAdjustTime, ResolutionMerge, ResolutionKeepBoth:
		return Resolution(s)
	}
	return ResolutionKeepBoth
}

func parseTrigger(v any) string {
	s, _ := v.(string)
	if s == "sunrise" || s == "sunset" {
		return s
	}
	return ""
}

func parseDays(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var days []string
	for _, e := range arr {
		if s, ok := e.(string); ok && s != "" {
			days = append(days, s)
		}
	}
	return days
}

func boolOr(v any, fallback bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return fallback
}
