package sieve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sieve/sieve/internal/git"
)

const preCommitMarker = "# installed by sieve"

const preCommitHook = `#!/bin/sh
` + preCommitMarker + `
exec sieve scan --staged --no-tui
`

var ciTemplates = map[string]struct{ path, content string }{
	"github": {
		path: ".github/workflows/sieve.yml",
		content: `name: sieve
on: [push, pull_request]
jobs:
  scan:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
        with:
          fetch-depth: 0
      - uses: actions/setup-go@v5
        with:
          go-version: stable
      - run: go install github.com/sieve/sieve@latest
      - run: sieve scan --path . --sarif > sieve.sarif
`,
	},
	"gitlab": {
		path: ".gitlab-ci.yml",
		content: `stages: [scan]
scan:
  stage: scan
  image: golang:1.25
  script:
    - go install github.com/sieve/sieve@latest
    - sieve scan --path . --json | tee sieve-findings.json
  artifacts:
    when: always
    paths:
      - sieve-findings.json
`,
	},
	"bitbucket": {
		path: "bitbucket-pipelines.yml",
		content: `pipelines:
  default:
    - step:
        name: Sieve Scan
        image: golang:1.25
        script:
          - go install github.com/sieve/sieve@latest
          - sieve scan --path . --json | tee sieve-findings.json
        artifacts:
          - sieve-findings.json
`,
	},
	"azure": {
		path: "azure-pipelines.yml",
		content: `trigger:
  - main
pool:
  vmImage: ubuntu-latest
steps:
  - task: GoTool@0
    inputs:
      version: '1.25'
  - script: go install github.com/sieve/sieve@latest
    displayName: Install sieve
  - script: $(go env GOPATH)/bin/sieve scan --path . --sarif > sieve.sarif
    displayName: Sieve scan
`,
	},
}

func init() {
	hook := &cobra.Command{Use: "hook", Short: "Git hook helpers"}
	rootCmd.AddCommand(hook)

	var force bool
	install := &cobra.Command{
		Use:   "install",
		Short: "Install a pre-commit hook that runs sieve scan --staged",
		RunE: func(cmd *cobra.Command, _ []string) error {
			top, err := git.TopLevel(".")
			if err != nil {
				return err
			}
			path := filepath.Join(top, ".git", "hooks", "pre-commit")
			if b, err := os.ReadFile(path); err == nil && !force && !strings.Contains(string(b), preCommitMarker) {
				return fmt.Errorf("%s already exists (use --force to replace it)", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(preCommitHook), 0o755); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Installed", path)
			return nil
		},
	}
	install.Flags().BoolVar(&force, "force", false, "replace an existing pre-commit hook")
	hook.AddCommand(install)

	ci := &cobra.Command{Use: "ci", Short: "CI template helpers for multiple providers"}
	rootCmd.AddCommand(ci)

	var provider string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a CI pipeline template for your provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tpl, ok := ciTemplates[strings.ToLower(provider)]
			if !ok {
				return fmt.Errorf("unknown --provider %q. Supported: github, gitlab, bitbucket, azure", provider)
			}
			if err := os.MkdirAll(filepath.Dir(tpl.path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(tpl.path, []byte(tpl.content), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", tpl.path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&provider, "provider", "", "CI provider: github | gitlab | bitbucket | azure")
	if err := initCmd.MarkFlagRequired("provider"); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not mark --provider as required:", err)
	}
	ci.AddCommand(initCmd)
}
