// Command reelcheck-build packages the media analyzer into a macOS
// application bundle and publishes it as a build artifact.
package main

import (
	"github.com/wanlu-media/reelcheck/internal/cli"
)

// Build metadata, injected via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
