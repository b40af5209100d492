package detectors

import "unicode/utf8"

// RedactedMarker is shown in place of values too short to partially reveal.
const RedactedMarker = "<redacted>"

// Redact renders a human-safe preview of a secret: the first and last three
// characters around "...", or RedactedMarker for values under 8 characters.
func Redact(s string) string {
	if utf8.RuneCountInString(s) < 8 {
		return RedactedMarker
	}
	r := []rune(s)
	return string(r[:3]) + "..." + string(r[len(r)-3:])
}
