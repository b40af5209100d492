package detectors

import (
	"regexp"
	"sync"
)

// Rule IDs reported on findings.
const (
	RulePrivateKey      = "PRIVATE_KEY_BLOCK"
	RuleAWSAccessKey    = "AWS_ACCESS_KEY"
	RuleBearerToken     = "BEARER_TOKEN"
	RuleSlackToken      = "SLACK_TOKEN"
	RuleStripeKey       = "STRIPE_KEY"
	RuleSuspectVariable = "SUSPECT_VARIABLE"
	RuleUnknown         = "UNKNOWN"
)

// privateKeyValue stands in for the key material so the fingerprint of a key
// block does not depend on which header variant matched.
const privateKeyValue = "PRIVATE KEY CONTENT"

const privateKeyHeader = `-----BEGIN (RSA|EC|OPENSSH|PGP) PRIVATE KEY-----`

var privateKeyExact = regexp.MustCompile(`^` + privateKeyHeader + `$`)

// IsPrivateKeyHeader reports whether s is exactly a private key block header
// as matched by the PRIVATE_KEY_BLOCK rule.
func IsPrivateKeyHeader(s string) bool {
	return privateKeyExact.MatchString(s)
}

// Rule is a high-signal detector. Group selects the submatch that holds the
// secret value (0 for the whole match). When Value is set it replaces the
// matched text as the extracted value; the byte range still points at the match.
type Rule struct {
	ID        string
	Pattern   *regexp.Regexp
	Group     int
	BaseScore int
	Reason    string
	Value     string
}

// Match is the result of a rule firing on a line.
type Match struct {
	Rule  Rule
	Value string
	Start int
	End   int
}

// Find runs the rule against text and reports the extracted value and its
// byte range.
func (r Rule) Find(text string) (Match, bool) {
	loc := r.Pattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return Match{}, false
	}
	i := 2 * r.Group
	if i+1 >= len(loc) || loc[i] < 0 {
		return Match{}, false
	}
	start, end := loc[i], loc[i+1]
	value := text[start:end]
	if r.Value != "" {
		value = r.Value
	}
	return Match{Rule: r, Value: value, Start: start, End: end}, true
}

// Catalog is the immutable pattern registry consumed by the line scanner.
// Build it once with NewCatalog and share the pointer; nothing mutates it
// after construction.
type Catalog struct {
	rules      []Rule
	assignment *regexp.Regexp
	suspectKey *regexp.Regexp
	keyLike    *regexp.Regexp
	dummy      *regexp.Regexp
}

// NewCatalog compiles the detector set. Stage-1 rules are evaluated in
// slice order and the first match wins.
func NewCatalog() *Catalog {
	return &Catalog{
		rules: []Rule{
			{
				ID:        RulePrivateKey,
				Pattern:   regexp.MustCompile(privateKeyHeader),
				BaseScore: 100,
				Reason:    "Found Private Key block",
				Value:     privateKeyValue,
			},
			{
				ID:        RuleAWSAccessKey,
				Pattern:   regexp.MustCompile(`(?i)(AKIA|ASIA)[0-9A-Z]{16}`),
				BaseScore: 90,
				Reason:    "Found AWS Access Key ID",
			},
			{
				ID:        RuleBearerToken,
				Pattern:   regexp.MustCompile(`(?i)Authorization:\s*Bearer\s+([a-zA-Z0-9_\-\.]+)`),
				Group:     1,
				BaseScore: 80,
				Reason:    "Found Bearer Auth header",
			},
			{
				ID:        RuleSlackToken,
				Pattern:   regexp.MustCompile(`xox[baprs]-[a-zA-Z0-9\-]+`),
				BaseScore: 90,
				Reason:    "Found Slack-like token",
			},
			{
				ID:        RuleStripeKey,
				Pattern:   regexp.MustCompile(`(?i)sk_live_[0-9a-zA-Z]+`),
				BaseScore: 90,
				Reason:    "Found Stripe Live key",
			},
		},
		// key = "value" | key: 'value'; group 2 is the key, group 4 the value
		assignment: regexp.MustCompile(`(?i)(const|let|var)?\s*([a-z0-9_]+)\s*[:=]\s*(["'])([^"']+)(["'])`),
		suspectKey: regexp.MustCompile(`(?i)(secret|token|apikey|api_key|password|passwd|private_key|client_secret|auth_token|access_token)`),
		keyLike:    regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9]{20,})`),
		dummy:      regexp.MustCompile(`(?i)(changeme|xxx|test|placeholder|example|your-token|your_token|undefined|null|true|false)`),
	}
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns a lazily built shared catalog for callers that do not
// manage their own.
func Default() *Catalog {
	defaultOnce.Do(func() { defaultCatalog = NewCatalog() })
	return defaultCatalog
}

// Rules returns a copy of the ordered high-signal rules.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// FirstMatch evaluates the high-signal rules in priority order.
func (c *Catalog) FirstMatch(text string) (Match, bool) {
	for _, r := range c.rules {
		if m, ok := r.Find(text); ok {
			return m, true
		}
	}
	return Match{}, false
}

// IDs lists every rule ID the catalog can report, in evaluation order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.rules)+2)
	for _, r := range c.rules {
		ids = append(ids, r.ID)
	}
	return append(ids, RuleSuspectVariable, RuleUnknown)
}
