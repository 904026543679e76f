// Command behave tracks behavior artifacts, branch binds and feedback under
// a repository's .behavior/ directory.
package main

import (
	"os"

	"github.com/dyluth/behave/cmd/behave/commands"
)

// Stamped by the release build with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// Execute reports the error itself: bad requests with their matches and
	// hint, anything else as a plain error line. Only the exit code is left.
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
