package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dyluth/behave/internal/badreq"
	"github.com/dyluth/behave/internal/printer"
)

var (
	bindBranch   string
	bindBehavior string
)

var bindCmd = &cobra.Command{
	Use:   "bind",
	Short: "Manage which behavior a branch works on",
	Long: `A branch is bound to at most one behavior. Commands that act on "the
current behavior" use the bind of the checked-out branch.

Binds are flag files at .behavior/<behavior>/.bind/<branch>.flag, so they
travel with the repository. Protected branches (main, master) cannot be bound.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var bindSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Bind a branch to a behavior",
	Long: `Bind a branch (default: the current branch) to the behavior matching --behavior.

Binding a branch to the behavior it is already bound to is a no-op. Binding it
to a different behavior fails; remove the old bind with 'behave bind del' first.

Examples:
  behave bind set --behavior checkout-retry
  behave bind set --behavior checkout-retry --branch feature/retry`,
	Args: cobra.NoArgs,
	RunE: runBindSet,
}

var bindGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the behavior a branch is bound to",
	Args:  cobra.NoArgs,
	RunE:  runBindGet,
}

var bindDelCmd = &cobra.Command{
	Use:   "del",
	Short: "Remove a branch's bind",
	Args:  cobra.NoArgs,
	RunE:  runBindDel,
}

var bindListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every bind in the repository",
	Args:  cobra.NoArgs,
	RunE:  runBindList,
}

func init() {
	for _, c := range []*cobra.Command{bindSetCmd, bindGetCmd, bindDelCmd} {
		c.Flags().StringVar(&bindBranch, "branch", "", "Branch name (default: current branch)")
	}
	bindSetCmd.Flags().StringVar(&bindBehavior, "behavior", "", "Behavior name or unique fragment of it")

	bindCmd.AddCommand(bindSetCmd, bindGetCmd, bindDelCmd, bindListCmd)
	rootCmd.AddCommand(bindCmd)
}

func runBindSet(cmd *cobra.Command, args []string) error {
	if bindBehavior == "" {
		return badreq.InvalidInput("a behavior to bind is required").
			WithHint("Pass --behavior <name>; 'behave list' shows the behaviors.")
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	behaviorDir, err := ws.behaviors.Resolve(bindBehavior)
	if err != nil {
		return err
	}

	res, err := ws.registry.Bind(bindBranch, behaviorDir)
	if err != nil {
		return err
	}
	if res.AlreadyBound {
		printer.Success("branch '%s' already bound to %s\n", res.Branch, filepath.Base(behaviorDir))
		return nil
	}
	printer.Success("bound branch '%s' to %s\n", res.Branch, filepath.Base(behaviorDir))
	return nil
}

func runBindGet(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	q, err := ws.registry.Query(bindBranch)
	if err != nil {
		return err
	}

	switch len(q.Binds) {
	case 0:
		return badreq.NotFound("no behavior is bound to branch '%s'", q.Branch).
			WithHint("Bind one with:\n  behave bind set --behavior <name>")
	case 1:
		printer.Println(ws.rel(q.BehaviorDir))
		return nil
	default:
		return badreq.Ambiguous("branch '%s' is bound to %d behaviors", q.Branch, len(q.Binds)).
			WithMatches(q.Binds).
			WithHint("Remove the stray binds with 'behave bind del', then bind again.")
	}
}

func runBindDel(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	res, err := ws.registry.Unbind(bindBranch)
	if err != nil {
		return err
	}
	if res.WasUnbound {
		printer.Success("branch '%s' was not bound\n", res.Branch)
		return nil
	}
	for _, flag := range res.Removed {
		printer.Success("removed %s\n", ws.rel(flag))
	}
	return nil
}

func runBindList(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	bindings, err := ws.registry.List()
	if err != nil {
		return err
	}
	if len(bindings) == 0 {
		printer.Info("No binds found\n")
		return nil
	}

	w := printer.Out()
	fmt.Fprintf(w, "%-30s %-40s %-25s %s\n", "BRANCH", "BEHAVIOR", "BOUND AT", "BY")
	for _, b := range bindings {
		fmt.Fprintf(w, "%-30s %-40s %-25s %s\n", b.Branch, filepath.Base(b.BehaviorDir), orDash(b.BoundAt), orDash(b.BoundBy))
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
