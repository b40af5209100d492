package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=sieve", "GIT_AUTHOR_EMAIL=sieve@example.com",
		"GIT_COMMITTER_NAME=sieve", "GIT_COMMITTER_EMAIL=sieve@example.com",
		"GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func initRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)
	dir := t.TempDir()
	gitCmd(t, dir, "init", "-q", "-b", "main")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestStagedDiff(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, "app.env", "NAME=demo\n")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-q", "-m", "init")

	writeFile(t, dir, "app.env", "NAME=demo\nTOKEN=\"abc\"\n")
	writeFile(t, dir, "sub/new.txt", "hello\n")
	gitCmd(t, dir, "add", ".")

	lines, err := StagedDiff(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "app.env", lines[0].Path)
	assert.Equal(t, 2, lines[0].LineNum)
	assert.Equal(t, `TOKEN="abc"`, lines[0].Content)
	assert.Equal(t, "sub/new.txt", lines[1].Path)
	assert.Equal(t, 1, lines[1].LineNum)
}

func TestStagedDiff_UnstagedChangesIgnored(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, "a.txt", "one\n")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-q", "-m", "init")
	writeFile(t, dir, "a.txt", "one\ntwo\n")

	lines, err := StagedDiff(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestStagedDiff_NotARepository(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	lines, err := StagedDiff(context.Background(), dir)
	assert.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSinceDiff(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, "a.txt", "one\n")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-q", "-m", "first")
	gitCmd(t, dir, "tag", "v1")
	writeFile(t, dir, "a.txt", "one\ntwo\nthree\n")
	gitCmd(t, dir, "commit", "-q", "-am", "second")

	lines, err := SinceDiff(context.Background(), dir, "v1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].LineNum)
	assert.Equal(t, "two", lines[0].Content)
	assert.Equal(t, 3, lines[1].LineNum)
}

func TestSinceDiff_UnknownRef(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, "a.txt", "one\n")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-q", "-m", "first")

	_, err := SinceDiff(context.Background(), dir, "does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist..HEAD")
}

func TestValidateRef(t *testing.T) {
	assert.NoError(t, validateRef("main"))
	assert.NoError(t, validateRef("HEAD~3"))
	assert.Error(t, validateRef(""))
	assert.Error(t, validateRef("  "))
	assert.Error(t, validateRef("--output=/tmp/x"))
	assert.Error(t, validateRef("main\nHEAD"))
}

func TestValidateRoot(t *testing.T) {
	dir := t.TempDir()
	got, err := validateRoot(dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))

	f := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(f, nil, 0o644))
	_, err = validateRoot(f)
	assert.Error(t, err)

	_, err = validateRoot(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	_, err = validateRoot("bad\x00path")
	assert.Error(t, err)
}

func TestRepoMetadata(t *testing.T) {
	dir := initRepo(t)
	gitCmd(t, dir, "remote", "add", "origin", "git@github.com:acme/widgets.git")

	meta, err := RepoMetadata(dir)
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", meta.Repo)
	assert.Empty(t, meta.Commit, "empty repository has no HEAD commit")

	writeFile(t, dir, "a.txt", "x\n")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-q", "-m", "init")

	meta, err = RepoMetadata(filepath.Join(dir))
	require.NoError(t, err)
	assert.Len(t, meta.Commit, 40)
	assert.Equal(t, "main", meta.Branch)
}

func TestRepoMetadata_NotARepository(t *testing.T) {
	_, err := RepoMetadata(t.TempDir())
	assert.Error(t, err)
}

func TestTopLevel(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, "nested/deep/file.txt", "x\n")

	top, err := TopLevel(filepath.Join(dir, "nested", "deep"))
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(top)
	assert.Equal(t, want, got)
}

func TestShortRepoName(t *testing.T) {
	assert.Equal(t, "acme/widgets", shortRepoName("https://github.com/acme/widgets.git"))
	assert.Equal(t, "acme/widgets", shortRepoName("git@github.com:acme/widgets.git"))
	assert.Equal(t, "team/proj", shortRepoName("git@gitlab.example.com:team/proj.git"))
	assert.Equal(t, "https://example.com/x", shortRepoName("https://example.com/x"))
}
