package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dyluth/behave/internal/badreq"
	"github.com/dyluth/behave/internal/printer"
)

var (
	version string
	commit  string
	date    string

	verbose    bool
	configPath string
	chdir      string

	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "behave",
	Short: "behave - track behaviors, their artifacts and feedback",
	Long: `behave keeps each unit of work as a behavior directory under .behavior/,
holding versioned artifacts (wish, vision, criteria, blueprint, roadmap,
execution) and the feedback given against them.

The current Git branch is bound to one behavior, so most commands need no
arguments: they act on the behavior the branch is working on.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Encoding = "console"
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		built, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = built
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	// Prevent silent success when unknown flags are passed to root command
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	// Enable strict flag parsing - unknown flags will cause an error
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the root command and is the single place errors are reported.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Silence Cobra's default error and usage printing
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	err := rootCmd.Execute()
	if err != nil {
		report(err)
	}
	return err
}

// report renders err to stderr. Bad requests carry their candidates and a
// hint; anything else is an unexpected failure shown verbatim.
func report(err error) {
	if e, ok := badreq.As(err); ok {
		var suggestions []string
		if e.Hint != "" {
			suggestions = []string{e.Hint}
		}
		_ = printer.ErrorWithMatches(e.Message, explain(e), e.Matches, suggestions)
		return
	}
	_ = printer.Error("error", err.Error(), nil)
}

func explain(e *badreq.Error) string {
	if len(e.Matches) == 0 {
		return ""
	}
	switch e.Kind {
	case badreq.KindNotFound:
		return "Available:"
	case badreq.KindAmbiguous:
		return "Candidates:"
	default:
		return "Involved:"
	}
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to .behave.yml (default: <repo root>/.behave.yml)")
	rootCmd.PersistentFlags().StringVarP(&chdir, "chdir", "C", "", "Run as if behave was started in this directory")
}
