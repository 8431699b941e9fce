package cli

import (
	"context"
	"io"
)

// Execute runs the collage CLI with the given arguments and returns an error
// if any command fails. Logs go to w.
//
// Logging:
//   - Default: the level from the config file (info unless set)
//   - With --verbose (-v): debug level
//
// Example:
//
//	func main() {
//	    if err := cli.Execute(ctx, os.Stderr, os.Args[1:]); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context, w io.Writer, args []string) error {
	root := New(w, LogInfo).RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
