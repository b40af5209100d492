package detectors

import "strings"

// Assignment is a key/value pair recognised by the generic heuristic.
type Assignment struct {
	Key   string
	Value string
	Start int
	End   int
}

// MatchAssignment finds the first `key = "value"` or `key: 'value'` pair in
// text. Start/End are the byte range of the value without its quotes.
func (c *Catalog) MatchAssignment(text string) (Assignment, bool) {
	loc := c.assignment.FindStringSubmatchIndex(text)
	if loc == nil || loc[4] < 0 || loc[8] < 0 {
		return Assignment{}, false
	}
	return Assignment{
		Key:   text[loc[4]:loc[5]],
		Value: text[loc[8]:loc[9]],
		Start: loc[8],
		End:   loc[9],
	}, true
}

// IsSuspectKey reports whether a variable name uses secret vocabulary.
func (c *Catalog) IsSuspectKey(key string) bool { return c.suspectKey.MatchString(key) }

// IsKeyLike reports whether value has a vendor-agnostic API key shape (sk-...).
func (c *Catalog) IsKeyLike(value string) bool { return c.keyLike.MatchString(value) }

// IsDummy reports whether value looks like a placeholder rather than a secret.
func (c *Catalog) IsDummy(value string) bool { return c.dummy.MatchString(value) }

var testPathMarkers = []string{"test", "spec", "mock", "fixture", "example"}

// IsTestPath reports whether path looks like a test, mock or example file.
func IsTestPath(path string) bool {
	p := strings.ToLower(path)
	for _, m := range testPathMarkers {
		if strings.Contains(p, m) {
			return true
		}
	}
	return false
}
