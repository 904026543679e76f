package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dyluth/behave/internal/badreq"
	"github.com/dyluth/behave/internal/bind"
	"github.com/dyluth/behave/internal/catalog"
	"github.com/dyluth/behave/internal/printer"
	"github.com/dyluth/behave/internal/timespec"
)

// behaviorFlags select the behavior a read command looks at.
type behaviorFlags struct {
	behavior string
	branch   string
	force    bool
}

func (f *behaviorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.behavior, "behavior", "", "Behavior name, overriding the branch bind")
	cmd.Flags().StringVar(&f.branch, "branch", "", "Branch whose bind to use (default: current branch)")
	cmd.Flags().BoolVar(&f.force, "force", false, "Let --behavior win over a different bind")
}

func (f *behaviorFlags) resolve(ws *workspace) (string, error) {
	res, err := ws.registry.ResolveForOperation(bind.OperationRequest{
		Branch:   f.branch,
		Behavior: f.behavior,
		Force:    f.force,
	})
	if err != nil {
		return "", err
	}
	return res.BehaviorDir, nil
}

var (
	artifactTarget  behaviorFlags
	artifactAgainst string

	artifactsTarget behaviorFlags
	artifactsMatch  string
	artifactsKind   string
	artifactsSince  string
	artifactsUntil  string
	artifactsOutput string
)

var artifactCmd = &cobra.Command{
	Use:   "artifact",
	Short: "Resolve artifacts of a behavior",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var artifactLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the path of the latest version of an artifact",
	Long: `Print the path of the latest version of an artifact.

Latest means the highest version, then the highest attempt within it; a file
without a version ranks below any versioned one. Feedback files and .src
working files are never returned.

Examples:
  behave artifact latest --against execution
  cat "$(behave artifact latest --against blueprint)"`,
	Args: cobra.NoArgs,
	RunE: runArtifactLatest,
}

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "List the files of a behavior with filtering",
	Long: `List the artifacts, feedback and templates of a behavior.

Output Formats:
  default - Human-readable table
  jsonl   - Line-delimited JSON, one file per line

Filters (ANDed together):
  --match  - Glob on the filename ("5.*", "*blueprint*")
  --kind   - artifact, feedback, template, source or all
  --since  - Modified after this time (duration, YYYY_MM_DD or RFC3339)
  --until  - Modified before this time

Examples:
  behave artifacts --kind feedback
  behave artifacts --since 2h --output jsonl | jq -r .path`,
	Args: cobra.NoArgs,
	RunE: runArtifacts,
}

func init() {
	artifactTarget.register(artifactLatestCmd)
	artifactLatestCmd.Flags().StringVar(&artifactAgainst, "against", "", "Artifact name (wish, vision, criteria.blackbox, blueprint, ...)")
	artifactCmd.AddCommand(artifactLatestCmd)

	artifactsTarget.register(artifactsCmd)
	artifactsCmd.Flags().StringVar(&artifactsMatch, "match", "", "Filter by filename (glob pattern)")
	artifactsCmd.Flags().StringVar(&artifactsKind, "kind", "all", "Filter by kind: artifact, feedback, template, source or all")
	artifactsCmd.Flags().StringVar(&artifactsSince, "since", "", "Show files modified after time")
	artifactsCmd.Flags().StringVar(&artifactsUntil, "until", "", "Show files modified before time")
	artifactsCmd.Flags().StringVarP(&artifactsOutput, "output", "o", "default", "Output format: default or jsonl")

	rootCmd.AddCommand(artifactCmd, artifactsCmd)
}

func runArtifactLatest(cmd *cobra.Command, args []string) error {
	if artifactAgainst == "" {
		return badreq.InvalidInput("an artifact name is required").
			WithHint("Pass --against <name>, e.g. --against wish")
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	behaviorDir, err := artifactTarget.resolve(ws)
	if err != nil {
		return err
	}

	latest, err := ws.artifacts.ResolveLatest(behaviorDir, artifactAgainst)
	if err != nil {
		return err
	}
	if latest == nil {
		return badreq.NotFound("no '%s' artifact in %s", artifactAgainst, filepath.Base(behaviorDir))
	}

	printer.Println(ws.rel(latest.Path))
	return nil
}

func runArtifacts(cmd *cobra.Command, args []string) error {
	if artifactsOutput != "default" && artifactsOutput != "jsonl" {
		return badreq.InvalidInput("unknown output format: %s", artifactsOutput).
			WithHint("Valid formats: default, jsonl")
	}

	kind, err := catalog.ParseKind(artifactsKind)
	if err != nil {
		return badreq.InvalidInput("%v", err)
	}
	since, until, err := timespec.ParseRange(artifactsSince, artifactsUntil)
	if err != nil {
		return badreq.InvalidInput("%v", err)
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	behaviorDir, err := artifactsTarget.resolve(ws)
	if err != nil {
		return err
	}

	entries, err := catalog.New(ws.fs).List(behaviorDir, &catalog.Criteria{
		NameGlob: artifactsMatch,
		Kind:     kind,
		Since:    since,
		Until:    until,
	})
	if err != nil {
		return err
	}

	if artifactsOutput == "jsonl" {
		for i := range entries {
			entries[i].Path = ws.rel(entries[i].Path)
		}
		if err := catalog.FormatJSONL(printer.Out(), entries); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	catalog.FormatTable(printer.Out(), entries, filepath.Base(behaviorDir))
	return nil
}
