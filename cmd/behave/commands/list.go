package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dyluth/behave/internal/bind"
	"github.com/dyluth/behave/internal/decompose"
	"github.com/dyluth/behave/internal/printer"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List behaviors and the branches bound to them",
	Long: `List every behavior under .behavior/ with the branches bound to it.

The behavior bound to the current branch is marked with '*'; behaviors that
were split into sub-behaviors are marked 'decomposed'.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	names, err := ws.behaviors.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		printer.Info("No behaviors found\n")
		printer.Hint("Create one with: behave init --name <name>\n")
		return nil
	}

	bindings, err := ws.registry.List()
	if err != nil {
		return err
	}
	branchesByBehavior := make(map[string][]string)
	for _, b := range bindings {
		name := filepath.Base(b.BehaviorDir)
		branchesByBehavior[name] = append(branchesByBehavior[name], b.Branch)
	}

	// Outside a repository or on a detached HEAD nothing is current.
	current, err := ws.git.CurrentBranch()
	if err != nil {
		logger.Debug("no current branch to mark", zap.Error(err))
		current = ""
	}
	applier := decompose.NewApplier(ws.fs, ws.behaviors, ws.workDir, logger)

	w := printer.Out()
	fmt.Fprintf(w, "  %-45s %-12s %s\n", "BEHAVIOR", "STATE", "BRANCHES")
	for _, name := range names {
		branches := branchesByBehavior[name]

		mark := " "
		for _, b := range branches {
			if current != "" && bind.Flatten(b) == bind.Flatten(current) {
				mark = "*"
			}
		}

		state := "-"
		decomposed, err := applier.IsDecomposed(filepath.Join(ws.behaviors.Root(), name))
		if err != nil {
			return err
		}
		if decomposed {
			state = "decomposed"
		}

		fmt.Fprintf(w, "%s %-45s %-12s %s\n", mark, name, state, orDash(strings.Join(branches, ", ")))
	}
	return nil
}
