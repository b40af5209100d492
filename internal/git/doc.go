// Package git turns repository changes into scannable lines.
//
// ParseDiff is a pure parser over unified diff text that yields only added
// lines, numbered in the new file. StagedDiff and SinceDiff shell out to git
// for the `--cached` and `<ref>..HEAD` diffs; RepoMetadata and TopLevel read
// repository state through go-git.
package git
