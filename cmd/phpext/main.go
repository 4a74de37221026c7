package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ben-ranford/phpext/internal/app"
	"github.com/ben-ranford/phpext/internal/cli"
)

var exitFunc = os.Exit

// run executes one command line. program prefixes diagnostics; empty falls
// back to "phpext".
func run(ctx context.Context, program string, args []string, out io.Writer, errOut io.Writer) int {
	runner := app.New(errOut)
	commandLine := cli.New(runner, out, errOut)
	if program != "" {
		commandLine.Program = program
	}
	return commandLine.Run(ctx, args)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, filepath.Base(os.Args[0]), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	exitFunc(code)
}
