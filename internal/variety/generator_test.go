package variety

import (
	"reflect"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	days := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	cfg := Config{ThemeColors: [][]int{{255, 0, 0}, {0, 0, 255}}}

	first := Generate(days, cfg)
	second := Generate(days, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Error("same inputs produced different plans")
	}
}

func TestGenerateNoConsecutiveEffectRepeat(t *testing.T) {
	days := []string{"monday", "tuesday", "wednesday"}
	cfg := Config{ThemeColors: [][]int{{255, 0, 0}, {0, 0, 255}}}

	entries := Generate(days, cfg)
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].EffectID == entries[i-1].EffectID {
			t.Errorf("day %d repeats effect %d from the previous day", i, entries[i].EffectID)
		}
	}
	if !ValidatePlan(entries) {
		t.Error("generated plan failed validation")
	}
}

// Effects are indexed from the energy pools with the previous day's pick
// removed, so the sequence is fully predictable.
func TestGenerateEffectSelection(t *testing.T) {
	days := []string{"monday", "tuesday", "wednesday"}
	entries := Generate(days, Config{})

	want := []int{2, 101, 46}
	for i, e := range entries {
		if e.EffectID != want[i] {
			t.Errorf("day %d effect = %d, want %d", i, e.EffectID, want[i])
		}
	}
}

func TestGenerateColorRotation(t *testing.T) {
	days := []string{"d0", "d1", "d2", "d3"}
	cfg := Config{ThemeColors: [][]int{{255, 0, 0}, {0, 0, 255}}}

	entries := Generate(days, cfg)

	// Cycle 0: primary, secondary, accent (accent defaults to white).
	want0 := [][]int{{255, 0, 0}, {0, 0, 255}, {255, 255, 255}}
	if !reflect.DeepEqual(entries[0].Colors, want0) {
		t.Errorf("day 0 colors = %v, want %v", entries[0].Colors, want0)
	}

	// Cycle 1 swaps primary and secondary.
	want1 := [][]int{{0, 0, 255}, {255, 0, 0}, {255, 255, 255}}
	if !reflect.DeepEqual(entries[1].Colors, want1) {
		t.Errorf("day 1 colors = %v, want %v", entries[1].Colors, want1)
	}

	// Cycle 2 pairs the primary with a half blend.
	want2 := [][]int{{255, 0, 0}, {128, 0, 128}}
	if !reflect.DeepEqual(entries[2].Colors, want2) {
		t.Errorf("day 2 colors = %v, want %v", entries[2].Colors, want2)
	}

	// Cycle 3 ends in pure white.
	want3 := [][]int{{255, 0, 0}, {0, 0, 255}, {255, 255, 255}}
	if !reflect.DeepEqual(entries[3].Colors, want3) {
		t.Errorf("day 3 colors = %v, want %v", entries[3].Colors, want3)
	}
}

func TestGenerateSpeedIntensityBrightness(t *testing.T) {
	days := []string{"monday", "tuesday", "wednesday"}
	entries := Generate(days, Config{})

	cases := []struct {
		speed, intensity, brightness int
	}{
		{50, 80, 120},   // calm, day 0
		{87, 103, 140},  // calm, day 1
		{111, 113, 201}, // medium, day 2
	}
	for i, want := range cases {
		e := entries[i]
		if e.Speed != want.speed {
			t.Errorf("day %d speed = %d, want %d", i, e.Speed, want.speed)
		}
		if e.Intensity != want.intensity {
			t.Errorf("day %d intensity = %d, want %d", i, e.Intensity, want.intensity)
		}
		if e.Brightness != want.brightness {
			t.Errorf("day %d brightness = %d, want %d", i, e.Brightness, want.brightness)
		}
	}
}

func TestGenerateBrightnessOverride(t *testing.T) {
	fixed := 300 // clamped to 255
	entries := Generate([]string{"monday", "friday"}, Config{BrightnessOverride: &fixed})
	for i, e := range entries {
		if e.Brightness != 255 {
			t.Errorf("day %d brightness = %d, want 255", i, e.Brightness)
		}
	}
}

func TestGeneratePreferredEffectsFallback(t *testing.T) {
	// A single preferred effect cannot satisfy no-repeat on day 1, so the
	// energy pool takes over.
	entries := Generate([]string{"monday", "tuesday"}, Config{PreferredEffects: []int{5}})

	if entries[0].EffectID != 5 {
		t.Errorf("day 0 effect = %d, want 5", entries[0].EffectID)
	}
	if entries[1].EffectID != 12 {
		t.Errorf("day 1 effect = %d, want 12 (second calm pool entry)", entries[1].EffectID)
	}
}

func TestClassifyUnknownLabels(t *testing.T) {
	if got := classify("2026-12-25", false); got != energyMedium {
		t.Errorf("unknown label energy = %d, want medium", got)
	}
	if got := classify("2026-12-25", true); got != energyHigh {
		t.Errorf("festive unknown label energy = %d, want high", got)
	}
	if got := classify(" FRIDAY ", false); got != energyHigh {
		t.Errorf("friday energy = %d, want high", got)
	}
}

func TestGenerateFestiveExtendsCalmPool(t *testing.T) {
	// Calm pool grows to {2,12,101,110,42,74,90}; later days index into the
	// festive extras.
	entries := Generate([]string{"monday", "monday", "monday", "monday", "monday"}, Config{Festive: true})

	want := []int{2, 101, 110, 42, 74}
	for i, e := range entries {
		if e.EffectID != want[i] {
			t.Errorf("day %d effect = %d, want %d", i, e.EffectID, want[i])
		}
	}
}

func TestValidatePlanCatchesRepeats(t *testing.T) {
	ok := []Entry{
		{EffectID: 2, Colors: [][]int{{255, 0, 0}}},
		{EffectID: 2, Colors: [][]int{{0, 0, 255}}},
	}
	if !ValidatePlan(ok) {
		t.Error("same effect with different colors should pass")
	}

	bad := []Entry{
		{EffectID: 2, Colors: [][]int{{255, 0, 0}}},
		{EffectID: 2, Colors: [][]int{{255, 0, 0}}},
	}
	if ValidatePlan(bad) {
		t.Error("identical adjacent effect and color should fail")
	}

	if !ValidatePlan(nil) {
		t.Error("empty plan should pass")
	}
}
