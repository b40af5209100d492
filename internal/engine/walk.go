package engine

import (
	"bytes"
	"context"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/sieve/sieve/internal/ignore"
	"github.com/sieve/sieve/internal/logging"
)

// ignoreFileDirective in a file's contents excludes the whole file.
const ignoreFileDirective = "sieve:ignore-file"

// sniffLen is how much of a file is inspected for NUL bytes.
const sniffLen = 800

// magic prefixes of formats that are never worth scanning
var binaryMagic = [][]byte{
	[]byte("\x89PNG\r\n\x1a\n"),
	[]byte("PK\x03\x04"),
	[]byte("\x1f\x8b"),
	[]byte("%PDF-"),
	[]byte("\x7fELF"),
	[]byte("GIF8"),
}

// Walk traverses the working tree in lexical order and invokes handle for
// each eligible file with its slash-separated path relative to cfg.Root.
func Walk(ctx context.Context, cfg Config, ign *ignore.Matcher, handle func(rel string, data []byte)) error {
	return filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			logging.L().Debugw("walk error", "path", p, "error", err)
			return nil
		}
		if p == cfg.Root {
			return nil
		}
		rel, _ := filepath.Rel(cfg.Root, p)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if skipDir(cfg, ign, rel, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || skipFile(cfg, ign, rel, d) {
			return nil
		}
		b, err := os.ReadFile(p)
		if err != nil {
			logging.L().Debugw("unreadable file", "path", rel, "error", err)
			return nil
		}
		if !isText(rel, b) || bytes.Contains(b, []byte(ignoreFileDirective)) {
			return nil
		}
		handle(rel, b)
		return nil
	})
}

func hidden(name string) bool { return strings.HasPrefix(name, ".") }

func skipDir(cfg Config, ign *ignore.Matcher, rel, name string) bool {
	switch {
	case name == ".git":
		return true
	case hidden(name) && !cfg.IncludeHidden:
		return true
	case cfg.DefaultExcludes && isDefaultDirExcluded(name):
		return true
	}
	return ign.MatchDir(rel)
}

// skipFile applies the checks that need no file contents.
func skipFile(cfg Config, ign *ignore.Matcher, rel string, d fs.DirEntry) bool {
	if hidden(d.Name()) && !cfg.IncludeHidden {
		return true
	}
	if !allowedByGlobs(rel, cfg) || ign.Match(rel) {
		return true
	}
	if cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(rel)) {
		return true
	}
	if info, err := d.Info(); err == nil && info.Size() > cfg.MaxBytes {
		logging.L().Debugw("skipping large file", "path", rel, "size", info.Size())
		return true
	}
	return false
}

// isText rejects files with a NUL byte near the start, a known binary
// signature, or an extension whose MIME type is media or an archive.
func isText(rel string, b []byte) bool {
	if bytes.IndexByte(b[:min(len(b), sniffLen)], 0) >= 0 {
		return false
	}
	for _, m := range binaryMagic {
		if bytes.HasPrefix(b, m) {
			return false
		}
	}
	ct := mime.TypeByExtension(filepath.Ext(rel))
	if ct == "" {
		return true
	}
	for _, kind := range []string{"image/", "video/", "audio/"} {
		if strings.HasPrefix(ct, kind) {
			return false
		}
	}
	return !strings.Contains(ct, "zip") && !strings.Contains(ct, "tar") && !strings.Contains(ct, "gzip")
}
