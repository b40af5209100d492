package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sieve/sieve/internal/logging"
	"github.com/sieve/sieve/internal/types"
)

// diffArgs are the flags every diff is taken with: no context lines, no
// colour and no external diff drivers, so ParseDiff sees plain hunks.
var diffArgs = []string{"--unified=0", "--no-color", "--no-ext-diff"}

// ErrGitNotInstalled is returned when no git binary is on PATH.
var ErrGitNotInstalled = errors.New("git is not installed or not in PATH")

// validateRoot validates and normalizes a git repository root path.
// Returns the cleaned absolute path or an error if invalid.
func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", fmt.Errorf("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

// validateRef rejects revisions that git would parse as options.
func validateRef(ref string) error {
	switch {
	case strings.TrimSpace(ref) == "":
		return errors.New("empty git reference")
	case strings.HasPrefix(ref, "-"):
		return fmt.Errorf("invalid git reference %q", ref)
	case strings.ContainsAny(ref, "\x00\n"):
		return fmt.Errorf("invalid git reference %q", ref)
	}
	return nil
}

// CheckInstalled verifies that a git binary can be executed.
func CheckInstalled(ctx context.Context) error {
	if err := exec.CommandContext(ctx, "git", "--version").Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrGitNotInstalled, err)
	}
	return nil
}

// StagedDiff returns the lines added in the index relative to HEAD. Outside
// a repository (or when git refuses) it returns no lines and no error.
func StagedDiff(ctx context.Context, root string) ([]types.DiffLine, error) {
	validRoot, err := validateRoot(root)
	if err != nil {
		return nil, err
	}
	args := append([]string{"-C", validRoot, "diff", "--cached"}, diffArgs...)
	out, err := runGit(ctx, args...)
	if err != nil {
		logging.L().Debugw("staged diff unavailable", "root", validRoot, "error", err)
		return nil, nil
	}
	return ParseDiff(out), nil
}

// SinceDiff returns the lines added between ref and HEAD.
func SinceDiff(ctx context.Context, root, ref string) ([]types.DiffLine, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	validRoot, err := validateRoot(root)
	if err != nil {
		return nil, err
	}
	rng := ref + "..HEAD"
	args := append([]string{"-C", validRoot, "diff", rng}, diffArgs...)
	out, err := runGit(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("git diff failed for range %s: %w", rng, err)
	}
	return ParseDiff(out), nil
}

func runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return string(out), nil
}
