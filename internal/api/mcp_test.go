package api

import "testing"

func TestParseColorArg(t *testing.T) {
	raw := []any{
		[]any{float64(255), float64(0), float64(0)},
		[]any{float64(0), float64(128), float64(255)},
	}
	colors, err := parseColorArg(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(colors) != 2 || colors[0][0] != 255 || colors[1][1] != 128 {
		t.Errorf("colors = %v", colors)
	}
}

func TestParseColorArgRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		raw  any
	}{
		{"not an array", "red"},
		{"entry not a triple", []any{"red"}},
		{"too few channels", []any{[]any{float64(1), float64(2)}}},
		{"channel out of range", []any{[]any{float64(300), float64(0), float64(0)}}},
		{"channel wrong type", []any{[]any{"255", float64(0), float64(0)}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseColorArg(tc.raw); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
