package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/behave/internal/badreq"
	"github.com/dyluth/behave/internal/feedback"
	"github.com/dyluth/behave/internal/printer"
	"github.com/dyluth/behave/internal/watch"
)

var (
	watchTarget  behaviorFlags
	watchAgainst string
	watchVersion int
	watchTimeout time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Wait for feedback on an artifact",
	Long: `Block until the feedback file for an artifact exists, then print its path.

Returns at once if the file is already there. The artifact is resolved to its
latest version first, so the wait is for feedback on that exact file.

Examples:
  # Wait for the first round of feedback on the blueprint
  behave watch --against blueprint

  # Wait at most ten minutes for round two
  behave watch --against blueprint --version 2 --timeout 10m`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchTarget.register(watchCmd)
	watchCmd.Flags().StringVar(&watchAgainst, "against", "", "Artifact name (wish, vision, blueprint, ...)")
	watchCmd.Flags().IntVar(&watchVersion, "version", 1, "Feedback version to wait for")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0, "Give up after this long (0 waits until interrupted)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchAgainst == "" {
		return badreq.InvalidInput("an artifact name is required").
			WithHint("Pass --against <name>, e.g. --against wish")
	}
	if watchVersion < 1 {
		return badreq.InvalidInput("feedback version must be positive, got %d", watchVersion)
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	behaviorDir, err := watchTarget.resolve(ws)
	if err != nil {
		return err
	}

	target, err := ws.artifacts.ResolveLatest(behaviorDir, watchAgainst)
	if err != nil {
		return err
	}
	if target == nil {
		return badreq.NotFound("no '%s' artifact in %s", watchAgainst, filepath.Base(behaviorDir))
	}

	path := filepath.Join(behaviorDir, feedback.ComputeName(target.Filename, watchVersion))
	printer.Step("waiting for %s\n", ws.rel(path))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := watch.ForFile(ctx, path, watchTimeout, logger); err != nil {
		if errors.Is(err, watch.ErrTimeout) {
			return badreq.NotFound("no feedback v%d on %s after %v", watchVersion, target.Filename, watchTimeout).
				WithHint("Create it with: behave give --against %s --version %d", watchAgainst, watchVersion)
		}
		return err
	}

	printer.Println(ws.rel(path))
	return nil
}
