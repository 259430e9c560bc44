package variety

// ValidatePlan cross-checks the no-immediate-repeat invariant on a generated
// plan: it returns false iff any adjacent pair of entries shares both the
// same effect and the same first color. Effect selection already forbids
// repeats at generation time; this exists because effect and color are
// independent subsystems.
func ValidatePlan(entries []Entry) bool {
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if prev.EffectID != cur.EffectID {
			continue
		}
		if sameColor(firstColor(prev), firstColor(cur)) {
			return false
		}
	}
	return true
}

func firstColor(e Entry) []int {
	if len(e.Colors) == 0 {
		return nil
	}
	return e.Colors[0]
}

func sameColor(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
