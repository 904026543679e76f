package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Checker answers questions about the Git repository containing dir
type Checker struct {
	dir string
}

// NewChecker creates a new Git checker rooted at dir.
// An empty dir means the process working directory.
func NewChecker(dir string) *Checker {
	return &Checker{dir: dir}
}

func (c *Checker) git(args ...string) *exec.Cmd {
	cmd := exec.Command("git", args...)
	cmd.Dir = c.dir
	return cmd
}

// IsGitRepository checks if the checker's directory is within a Git repository
func (c *Checker) IsGitRepository() (bool, error) {
	err := c.git("rev-parse", "--git-dir").Run()
	if err != nil {
		// Check if error is because git command not found
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return false, fmt.Errorf("git not found in PATH\nbehave requires Git to be installed.\nInstall Git: https://git-scm.com/downloads")
		}
		// Not in a Git repository
		return false, nil
	}
	return true, nil
}

// GetGitRoot returns the absolute path to the Git repository root
func (c *Checker) GetGitRoot() (string, error) {
	output, err := c.git("rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get Git root: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// CurrentBranch returns the branch checked out in the working tree.
// A detached HEAD has no branch and is reported as an error.
func (c *Checker) CurrentBranch() (string, error) {
	isRepo, err := c.IsGitRepository()
	if err != nil {
		return "", err
	}
	if !isRepo {
		return "", fmt.Errorf("not a Git repository\n\nbehave reads the current branch from Git; pass --branch to name one explicitly")
	}

	output, err := c.git("branch", "--show-current").Output()
	if err != nil {
		return "", fmt.Errorf("failed to read current branch: %w", err)
	}

	branch := strings.TrimSpace(string(output))
	if branch == "" {
		return "", fmt.Errorf("HEAD is detached\n\nCheck out a branch or pass --branch to name one explicitly")
	}
	return branch, nil
}
