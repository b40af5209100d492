package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Fingerprint is the stable identity of a finding: the SHA-256 of
// "rule|value|path|line", hex encoded. Moving the line or changing the value
// yields a new fingerprint.
func Fingerprint(ruleID, value, path string, lineNum int) string {
	var b strings.Builder
	b.WriteString(ruleID)
	b.WriteByte('|')
	b.WriteString(value)
	b.WriteByte('|')
	b.WriteString(path)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(lineNum))
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
