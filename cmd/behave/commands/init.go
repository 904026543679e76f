package commands

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/behave/internal/badreq"
	"github.com/dyluth/behave/internal/behavior"
	"github.com/dyluth/behave/internal/bind"
	"github.com/dyluth/behave/internal/printer"
	"github.com/dyluth/behave/internal/scaffold"
)

// timeNow dates newly created behaviors.
var timeNow = time.Now

var (
	initName   string
	initNoBind bool
	initOpen   bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or refresh a behavior",
	Long: `Create a behavior directory and fill it with the starting template set.

With --name, the behavior v<today>.<name> is created under .behavior/. If a
behavior with that exact name already exists under any date it is reused
instead, and only the missing template files are added; files you have
edited are never overwritten.

Without --name, the behavior bound to the current branch is refreshed.

The current branch is then bound to the behavior, unless it is a protected
branch (main, master and any configured ones) or --no-bind is given.

Examples:
  # Start a new behavior on a feature branch
  behave init --name checkout-retry

  # Restore template files deleted from the bound behavior
  behave init`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Behavior name (lowercase, e.g. checkout-retry)")
	initCmd.Flags().BoolVar(&initNoBind, "no-bind", false, "Do not bind the current branch to the behavior")
	initCmd.Flags().BoolVar(&initOpen, "open", false, "Open the wish in $EDITOR afterwards")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	behaviorDir, err := initTarget(ws)
	if err != nil {
		return err
	}

	result, err := scaffold.NewInitializer(ws.fs, logger).Init(behaviorDir, ws.rel(behaviorDir))
	if err != nil {
		return err
	}
	scaffold.RenderTree(printer.Out(), result)

	if !initNoBind {
		bindAfterInit(ws, behaviorDir)
	}

	if initOpen {
		wish, err := ws.artifacts.ResolveLatest(behaviorDir, "wish")
		if err != nil {
			return err
		}
		if wish != nil {
			return openFile(wish.Path)
		}
	}
	return nil
}

func initTarget(ws *workspace) (string, error) {
	if initName == "" {
		res, err := ws.registry.ResolveForOperation(bind.OperationRequest{})
		if err != nil {
			if badreq.Is(err, badreq.KindNotFound) {
				return "", badreq.InvalidInput("no behavior named and none bound to this branch").
					WithHint("Create one with:\n  behave init --name <name>")
			}
			return "", err
		}
		return res.BehaviorDir, nil
	}

	if err := behavior.ValidateSlug(initName); err != nil {
		return "", badreq.InvalidInput("%v", err)
	}

	existing, err := ws.behaviors.FindExact(initName)
	if err != nil {
		return "", err
	}
	if existing != "" {
		printer.Step("reusing %s\n", filepath.Base(existing))
		return existing, nil
	}
	return filepath.Join(ws.behaviors.Root(), behavior.DirName(timeNow(), initName)), nil
}

// bindAfterInit binds the current branch where it can. Failing to bind never
// undoes the scaffold, so every problem here is a warning.
func bindAfterInit(ws *workspace, behaviorDir string) {
	branch, err := ws.git.CurrentBranch()
	if err != nil {
		printer.Warning("not binding: %v\n", err)
		return
	}
	if ws.registry.IsProtected(branch) {
		printer.Warning("not binding protected branch '%s'; check out a feature branch and run 'behave bind set'\n", branch)
		return
	}

	res, err := ws.registry.Bind(branch, behaviorDir)
	if err != nil {
		printer.Warning("not binding: %v\n", err)
		return
	}
	if res.AlreadyBound {
		printer.Success("branch '%s' already bound\n", branch)
		return
	}
	printer.Success("bound branch '%s' to %s\n", branch, filepath.Base(behaviorDir))
}
