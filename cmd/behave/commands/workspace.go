package commands

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dyluth/behave/internal/artifact"
	"github.com/dyluth/behave/internal/behavior"
	"github.com/dyluth/behave/internal/bind"
	"github.com/dyluth/behave/internal/config"
	"github.com/dyluth/behave/internal/git"
	"github.com/dyluth/behave/internal/printer"
	"github.com/dyluth/behave/internal/store"
	"github.com/dyluth/behave/internal/tmpl"
)

// workspace is everything a command needs, wired for one invocation.
type workspace struct {
	workDir   string
	repoRoot  string
	config    *config.BehaveConfig
	fs        store.FS
	git       *git.Checker
	behaviors *behavior.Resolver
	artifacts *artifact.Resolver
	registry  *bind.Registry
}

// openWorkspace locates the repository from the working directory (or
// --chdir), loads its configuration and wires the registry to Git.
// Outside a Git repository the working directory stands in for the root.
func openWorkspace() (*workspace, error) {
	workDir := chdir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		workDir = wd
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	checker := git.NewChecker(workDir)
	repoRoot := workDir
	if isRepo, err := checker.IsGitRepository(); err != nil {
		logger.Debug("git unavailable, using working directory as root", zap.Error(err))
	} else if isRepo {
		if root, err := checker.GetGitRoot(); err == nil {
			repoRoot = root
		}
	}

	path := configPath
	switch {
	case path == "":
		path = filepath.Join(repoRoot, config.FileName)
	case !filepath.IsAbs(path):
		path = filepath.Join(workDir, path)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("workspace opened",
		zap.String("workDir", workDir),
		zap.String("repoRoot", repoRoot),
		zap.String("config", path))

	fs := store.NewOS()
	behaviors := behavior.NewResolver(fs, filepath.Join(repoRoot, cfg.BehaviorRoot))
	return &workspace{
		workDir:   workDir,
		repoRoot:  repoRoot,
		config:    cfg,
		fs:        fs,
		git:       checker,
		behaviors: behaviors,
		artifacts: artifact.NewResolver(fs),
		registry: bind.NewRegistry(fs, behaviors, checker,
			bind.WithLogger(logger),
			bind.WithActor(cfg.Actor),
			bind.WithProtectedBranches(cfg.ProtectedBranches...)),
	}, nil
}

// rel renders path relative to the invocation directory for display.
func (w *workspace) rel(path string) string {
	return tmpl.RelDir(w.workDir, path)
}

// openFile opens path in $EDITOR, or prints it when no editor is set.
func openFile(path string) error {
	editor := strings.Fields(os.Getenv("EDITOR"))
	if len(editor) == 0 {
		printer.Info("%s\n", path)
		return nil
	}

	cmd := exec.Command(editor[0], append(editor[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open %s with %s: %w", path, editor[0], err)
	}
	return nil
}
