// Package audit keeps an append-only JSONL history of scans. Records carry
// counts and redacted previews only, never raw secret values.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/sieve/sieve/internal/git"
	"github.com/sieve/sieve/internal/logging"
	"github.com/sieve/sieve/internal/types"
)

// FileName is the log name outside a repository. Inside one the log lives
// at .git/sieve_audit.jsonl.
const FileName = ".sieve_audit.jsonl"

// maxPreviewed bounds how many reported findings a record lists.
const maxPreviewed = 10

// Record is one line of the audit log.
type Record struct {
	ID         string         `json:"id"`
	Time       time.Time      `json:"time"`
	Root       string         `json:"root"`
	Mode       string         `json:"mode"`
	Repo       string         `json:"repo,omitempty"`
	Commit     string         `json:"commit,omitempty"`
	Branch     string         `json:"branch,omitempty"`
	Files      int            `json:"files_scanned"`
	Total      int            `json:"total_findings"`
	Reported   int            `json:"reported_findings"`
	Baselined  int            `json:"baselined_findings"`
	BySeverity map[string]int `json:"by_severity"`
	DurationMS int64          `json:"duration_ms"`
	Baseline   string         `json:"baseline,omitempty"`
	Findings   []Entry        `json:"findings,omitempty"`
}

// Duration returns the recorded scan time.
func (r Record) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}

// Entry is the redacted summary of a reported finding.
type Entry struct {
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Preview  string `json:"preview"`
}

// Scan describes a finished scan. All includes findings the baseline
// suppressed; Reported is what the user was shown.
type Scan struct {
	Root     string
	Mode     string
	Repo     git.RepoMeta
	All      []types.Finding
	Reported []types.Finding
	Files    int
	Duration time.Duration
	Baseline string
}

// NewRecord summarizes s.
func NewRecord(s Scan) Record {
	now := time.Now().UTC()
	bySev := map[string]int{}
	for _, f := range s.All {
		bySev[string(f.Severity)]++
	}
	n := min(len(s.Reported), maxPreviewed)
	entries := make([]Entry, 0, n)
	for _, f := range s.Reported[:n] {
		entries = append(entries, Entry{
			Path:     f.Path,
			Line:     f.Line,
			Rule:     f.RuleID,
			Severity: string(f.Severity),
			Preview:  f.Preview,
		})
	}
	return Record{
		ID:         "scan-" + strconv.FormatInt(now.UnixNano(), 36),
		Time:       now,
		Root:       s.Root,
		Mode:       s.Mode,
		Repo:       s.Repo.Repo,
		Commit:     s.Repo.Commit,
		Branch:     s.Repo.Branch,
		Files:      s.Files,
		Total:      len(s.All),
		Reported:   len(s.Reported),
		Baselined:  len(s.All) - len(s.Reported),
		BySeverity: bySev,
		DurationMS: s.Duration.Milliseconds(),
		Baseline:   s.Baseline,
		Findings:   entries,
	}
}

// Log is the audit file of one scan root.
type Log struct {
	path string
}

// Open locates the log for root. Nothing is created until Append.
func Open(root string) *Log {
	if st, err := os.Stat(filepath.Join(root, ".git")); err == nil && st.IsDir() {
		return &Log{path: filepath.Join(root, ".git", "sieve_audit.jsonl")}
	}
	return &Log{path: filepath.Join(root, FileName)}
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Append writes rec as one line. The file is owner-only.
func (l *Log) Append(rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("append audit record: %w", err)
	}
	return f.Close()
}

// History returns up to limit records, newest first; limit <= 0 returns all.
// Lines that do not decode are skipped. A missing log is reported as an
// error wrapping fs.ErrNotExist.
func (l *Log) History(limit int) ([]Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	n := 0
	for sc.Scan() {
		n++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			logging.L().Debugw("skipping unreadable audit line", "path", l.path, "line", n, "error", err)
			continue
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
