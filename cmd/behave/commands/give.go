package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dyluth/behave/internal/feedback"
	"github.com/dyluth/behave/internal/printer"
)

var (
	giveAgainst  string
	giveBehavior string
	giveBranch   string
	giveVersion  int
	giveNext     bool
	giveFresh    bool
	giveTemplate string
	giveForce    bool
	giveOpen     bool
)

var giveCmd = &cobra.Command{
	Use:   "give",
	Short: "Find or create the feedback file for an artifact",
	Long: `Find or create a feedback file against the latest version of an artifact.

The file is named <artifact>.[feedback].v<N>.[given].by_human.md and is
rendered from the behavior's feedback template. Running the command again
returns the same file untouched.

Feedback versions count rounds of feedback on one artifact file:
  (default)    version 1
  --version N  version N
  --next       one past the highest existing version
  --fresh      fail instead of returning an existing file

Examples:
  # Feedback on the bound behavior's wish
  behave give --against wish

  # A second round on the blueprint of another behavior
  behave give --against blueprint --behavior checkout --next --force`,
	Args: cobra.NoArgs,
	RunE: runGive,
}

func init() {
	giveCmd.Flags().StringVar(&giveAgainst, "against", "", "Artifact name (wish, vision, criteria.blackbox, blueprint, ...)")
	giveCmd.Flags().StringVar(&giveBehavior, "behavior", "", "Behavior name, overriding the branch bind")
	giveCmd.Flags().StringVar(&giveBranch, "branch", "", "Branch whose bind to use (default: current branch)")
	giveCmd.Flags().IntVar(&giveVersion, "version", 0, "Feedback version (default 1)")
	giveCmd.Flags().BoolVar(&giveNext, "next", false, "Use the version after the highest existing one")
	giveCmd.Flags().BoolVar(&giveFresh, "fresh", false, "Fail if the feedback file already exists")
	giveCmd.Flags().StringVar(&giveTemplate, "template", "", "Feedback template (default: the behavior's own)")
	giveCmd.Flags().BoolVar(&giveForce, "force", false, "Let --behavior win over a different bind")
	giveCmd.Flags().BoolVar(&giveOpen, "open", false, "Open the feedback file in $EDITOR")
	rootCmd.AddCommand(giveCmd)
}

func runGive(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	template := giveTemplate
	if template == "" && ws.config.Feedback.Template != "" {
		template = ws.config.Feedback.Template
		if !filepath.IsAbs(template) {
			template = filepath.Join(ws.repoRoot, template)
		}
	}

	ledger := feedback.NewLedger(ws.fs, ws.artifacts, ws.registry, ws.workDir, logger)
	res, err := ledger.Give(feedback.GiveRequest{
		Against:      giveAgainst,
		Behavior:     giveBehavior,
		Branch:       giveBranch,
		Force:        giveForce,
		Version:      giveVersion,
		Next:         giveNext,
		Fresh:        giveFresh,
		TemplatePath: template,
	})
	if err != nil {
		return err
	}

	if res.Found {
		printer.Success("found feedback v%d against %s\n", res.Version, filepath.Base(res.ArtifactFile))
	} else {
		printer.Success("created feedback v%d against %s\n", res.Version, filepath.Base(res.ArtifactFile))
	}

	if giveOpen {
		return openFile(res.FeedbackFile)
	}
	printer.Println(ws.rel(res.FeedbackFile))
	return nil
}
