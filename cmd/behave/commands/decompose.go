package commands

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/behave/internal/badreq"
	"github.com/dyluth/behave/internal/decompose"
	"github.com/dyluth/behave/internal/printer"
	"github.com/dyluth/behave/internal/scaffold"
)

// defaultPlanName is where plan mode looks for a plan inside the source behavior.
const defaultPlanName = "decomposition.plan.json"

const (
	modePlan  = "plan"
	modeApply = "apply"
)

var (
	decomposeTarget behaviorFlags
	decomposeMode   string
	decomposePlan   string
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose",
	Short: "Split a behavior into dependency-linked sub-behaviors",
	Long: `Split a behavior that grew too large into smaller sub-behaviors.

The split is described by a plan document (JSON or YAML) produced outside
behave:

  behaviorSource:    { name, path } of the behavior being split
  behaviorsProposed: [{ name, dependsOn: [...], decomposed: { wish, vision } }]

Modes:
  plan  - check the plan and show the behaviors it would create. Without
          --plan, reads decomposition.plan.json from the behavior, or says
          where to write one. Never writes anything.
  apply - create every proposed behavior, seed its wish (and vision, when
          given) and mark the source with 0.decomposed.md. A behavior is
          decomposed at most once.

Examples:
  behave decompose --mode plan
  behave decompose --mode apply --plan .behavior/v2026_01_01.big/decomposition.plan.json`,
	Args: cobra.NoArgs,
	RunE: runDecompose,
}

func init() {
	decomposeTarget.register(decomposeCmd)
	decomposeCmd.Flags().StringVar(&decomposeMode, "mode", modePlan, "plan or apply")
	decomposeCmd.Flags().StringVar(&decomposePlan, "plan", "", "Path to the plan document")
	rootCmd.AddCommand(decomposeCmd)
}

func runDecompose(cmd *cobra.Command, args []string) error {
	if decomposeMode != modePlan && decomposeMode != modeApply {
		return badreq.InvalidInput("unknown mode: %s", decomposeMode).
			WithHint("Valid modes: plan, apply")
	}
	if decomposeMode == modeApply && decomposePlan == "" {
		return badreq.InvalidInput("apply mode needs a plan").
			WithHint("Pass --plan <path>; check it first with 'behave decompose --mode plan --plan <path>'.")
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	sourceDir, err := decomposeTarget.resolve(ws)
	if err != nil {
		return err
	}
	applier := decompose.NewApplier(ws.fs, ws.behaviors, ws.workDir, logger)

	planPath := decomposePlan
	switch {
	case planPath == "":
		planPath = filepath.Join(sourceDir, defaultPlanName)
		exists, err := ws.fs.Exists(planPath)
		if err != nil {
			return err
		}
		if !exists {
			return describeSource(ws, applier, sourceDir, planPath)
		}
	case !filepath.IsAbs(planPath):
		planPath = filepath.Join(ws.workDir, planPath)
	}

	plan, err := decompose.Load(ws.fs, planPath)
	if err != nil {
		return err
	}

	if decomposeMode == modePlan {
		return previewPlan(ws, applier, sourceDir, plan)
	}
	return applyPlan(ws, applier, sourceDir, plan)
}

// describeSource is plan mode with no plan yet: report where one belongs.
func describeSource(ws *workspace, applier *decompose.Applier, sourceDir, planPath string) error {
	decomposed, err := applier.IsDecomposed(sourceDir)
	if err != nil {
		return err
	}
	if decomposed {
		printer.Warning("%s is already decomposed; a new plan cannot be applied\n", filepath.Base(sourceDir))
	}

	printer.Info("behavior: %s\n", ws.rel(sourceDir))
	printer.Info("no plan found; write one to:\n  %s\n", ws.rel(planPath))
	printer.Hint("then check it with: behave decompose --mode plan\n")
	return nil
}

func previewPlan(ws *workspace, applier *decompose.Applier, sourceDir string, plan *decompose.Plan) error {
	preview, err := applier.Preview(sourceDir, plan)
	if err != nil {
		return err
	}
	for _, w := range preview.Warnings {
		printer.Warning("%s\n", w)
	}

	printer.Info("plan for %s would create:\n", filepath.Base(sourceDir))
	for _, t := range preview.Targets {
		printer.Info("  + %s%s\n", ws.rel(t.Dir), dependsOnSuffix(t.DependsOn))
	}
	if !preview.AlreadyDecomposed {
		printer.Hint("apply with: behave decompose --mode apply --plan <path>\n")
	}
	return nil
}

func applyPlan(ws *workspace, applier *decompose.Applier, sourceDir string, plan *decompose.Plan) error {
	outcome, err := applier.Apply(sourceDir, plan)
	if err != nil {
		return err
	}
	for _, w := range outcome.Warnings {
		printer.Warning("%s\n", w)
	}

	for _, b := range outcome.Behaviors {
		scaffold.RenderTree(printer.Out(), b.Scaffold)
	}
	printer.Success("decomposed %s into %d behaviors\n", filepath.Base(sourceDir), len(outcome.Behaviors))
	printer.Info("marker: %s\n", ws.rel(outcome.MarkerPath))
	return nil
}

func dependsOnSuffix(deps []string) string {
	if len(deps) == 0 {
		return ""
	}
	return " (after " + strings.Join(deps, ", ") + ")"
}
