// Package variety deterministically produces multi-day lighting plans that
// never repeat the same effect on consecutive days. Variation is computed
// from the day index alone, so re-running with the same inputs reproduces
// the same plan.
package variety

import "strings"

// Energy levels classify a day's desired mood.
const (
	energyCalm = iota
	energyMedium
	energyHigh
)

// Config controls plan generation.
type Config struct {
	// ThemeColors holds 1-3 RGB triples. A missing second color defaults to
	// the first lightened 30% toward white; a missing third to pure white.
	ThemeColors [][]int `json:"themeColors"`
	// PreferredEffects, when non-empty, replaces the energy-level pools.
	PreferredEffects []int `json:"preferredEffects,omitempty"`
	// Festive raises the energy of unrecognized day labels and extends the
	// calm/medium pools with high-energy effects.
	Festive bool `json:"festive,omitempty"`
	// BrightnessOverride pins brightness instead of the energy-ranged value.
	BrightnessOverride *int `json:"brightnessOverride,omitempty"`
}

// Entry is one day of a variety plan. Entries are immutable once created.
type Entry struct {
	DayIndex   int     `json:"dayIndex"`
	DayLabel   string  `json:"dayLabel"`
	EffectID   int     `json:"effectId"`
	Colors     [][]int `json:"colors"`
	Speed      int     `json:"speed"`
	Intensity  int     `json:"intensity"`
	Brightness int     `json:"brightness"`
}

// Weekday energy classification: friday/saturday are high, wednesday/thursday
// medium, the rest calm.
var dayEnergy = map[string]int{
	"monday":    energyCalm,
	"tuesday":   energyCalm,
	"wednesday": energyMedium,
	"thursday":  energyMedium,
	"friday":    energyHigh,
	"saturday":  energyHigh,
	"sunday":    energyCalm,
}

// Fixed per-energy effect pools (WLED effect IDs).
var energyPools = [3][]int{
	{2, 12, 101, 110},   // calm: Breathe, Fade, Pacifica, Flow
	{3, 8, 46, 67},      // medium: Wipe, Colorloop, Gradient, Plasma
	{9, 11, 42, 74, 87}, // high: Rainbow, Rainbow Cycle, Fireworks, Colortwinkles, Glitter
}

// festiveExtras extend the calm/medium pools when festive mode is on.
var festiveExtras = []int{42, 74, 90}

var (
	speedBase     = [3]int{80, 128, 180}
	intensityBase = [3]int{100, 128, 170}
	brightnessMin = [3]int{120, 160, 200}
	brightnessMax = [3]int{170, 210, 255}
)

var white = []int{255, 255, 255}

// Generate produces one Entry per input day label. The plan is deterministic
// and guarantees no effect repeats on consecutive days.
func Generate(days []string, cfg Config) []Entry {
	a, b, c := normalizeTheme(cfg.ThemeColors)

	entries := make([]Entry, 0, len(days))
	prevEffect := -1
	for i, label := range days {
		energy := classify(label, cfg.Festive)
		effect := pickEffect(i, energy, prevEffect, cfg)
		prevEffect = effect

		entries = append(entries, Entry{
			DayIndex:   i,
			DayLabel:   label,
			EffectID:   effect,
			Colors:     rotate(a, b, c, i),
			Speed:      clamp(speedBase[energy]+(i*37)%61-30, 0, 255),
			Intensity:  clamp(intensityBase[energy]+(i*23)%41-20, 0, 255),
			Brightness: brightness(i, energy, cfg.BrightnessOverride),
		})
	}
	return entries
}

// classify maps a day label to an energy level. Unrecognized labels (e.g.
// ISO dates) are high energy when festive, medium otherwise.
func classify(label string, festive bool) int {
	if e, ok := dayEnergy[strings.ToLower(strings.TrimSpace(label))]; ok {
		return e
	}
	if festive {
		return energyHigh
	}
	return energyMedium
}

// pickEffect selects the day's effect: preferred pool when supplied, else the
// energy pool (festively extended below high energy). The previous day's
// effect is removed to forbid immediate repetition; pool indexing is by day
// index, not random.
func pickEffect(dayIndex, energy, prevEffect int, cfg Config) int {
	var pool []int
	if len(cfg.PreferredEffects) > 0 {
		pool = cfg.PreferredEffects
	} else {
		pool = energyPools[energy]
		if cfg.Festive && energy < energyHigh {
			extended := make([]int, 0, len(pool)+len(festiveExtras))
			extended = append(extended, pool...)
			extended = append(extended, festiveExtras...)
			pool = extended
		}
	}

	filtered := pool[:0:0]
	for _, e := range pool {
		if e != prevEffect {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		filtered = energyPools[energy]
	}
	return filtered[dayIndex%len(filtered)]
}

// normalizeTheme fills in the optional second and third theme colors.
func normalizeTheme(theme [][]int) (a, b, c []int) {
	if len(theme) > 0 && len(theme[0]) >= 3 {
		a = theme[0][:3]
	} else {
		a = white
	}
	if len(theme) > 1 && len(theme[1]) >= 3 {
		b = theme[1][:3]
	} else {
		b = blend(a, white, 0.3)
	}
	if len(theme) > 2 && len(theme[2]) >= 3 {
		c = theme[2][:3]
	} else {
		c = white
	}
	return a, b, c
}

// rotate applies the fixed 7-cycle color rotation keyed on dayIndex % 7.
func rotate(a, b, c []int, dayIndex int) [][]int {
	switch dayIndex % 7 {
	case 0:
		return [][]int{a, b, c}
	case 1:
		return [][]int{b, a, c}
	case 2:
		return [][]int{a, blend(a, b, 0.5)}
	case 3:
		return [][]int{a, b, white}
	case 4:
		return [][]int{b, c, a}
	case 5:
		return [][]int{blend(a, b, 0.5), b}
	default:
		return [][]int{a, c, b}
	}
}

// blend linearly interpolates per channel, rounding to the nearest integer.
func blend(x, y []int, t float64) []int {
	out := make([]int, 3)
	for i := 0; i < 3; i++ {
		v := float64(x[i]) + (float64(y[i])-float64(x[i]))*t
		out[i] = clamp(int(v+0.5), 0, 255)
	}
	return out
}

func brightness(dayIndex, energy int, override *int) int {
	if override != nil {
		return clamp(*override, 0, 255)
	}
	lo, hi := brightnessMin[energy], brightnessMax[energy]
	return lo + (hi-lo)*((dayIndex*41)%100)/100
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
