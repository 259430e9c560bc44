package request

import (
	"regexp"
	"strings"
)

var (
	roleTagRe    = regexp.MustCompile(`(?i)</?(system|user|assistant|human)>`)
	whitespaceRe = regexp.MustCompile(`\s{3,}`)
)

// Sanitize strips injection-prone substrings from free text: NUL bytes,
// triple-backtick fences, role tag pairs like <system>...</system>, and
// runs of 3+ whitespace characters (collapsed to two spaces). Sanitizing
// already-sanitized text is a no-op.
func Sanitize(s string) string {
	// Removing a substring can splice its neighbors into a new fence or
	// tag (e.g. "<sys<user>tem>"), so run the removals until the text
	// stops changing.
	for {
		prev := s
		s = strings.ReplaceAll(s, "\x00", "")
		s = strings.ReplaceAll(s, "```", "")
		s = roleTagRe.ReplaceAllString(s, "")
		if s == prev {
			break
		}
	}
	s = whitespaceRe.ReplaceAllString(s, "  ")
	return strings.TrimSpace(s)
}

// sanitizeAndTruncate sanitizes first, then truncates to max runes.
// Truncation after sanitization means an over-length payload is kept,
// not rejected.
func sanitizeAndTruncate(s string, max int) string {
	s = Sanitize(s)
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}
