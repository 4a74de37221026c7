package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ben-ranford/phpext/internal/app"
)

const defaultProgram = "phpext"

type Runner interface {
	Execute(ctx context.Context, req app.Request) (string, error)
}

type CLI struct {
	Runner Runner
	Out    io.Writer
	Err    io.Writer
	// Program prefixes every diagnostic.
	Program string
}

func New(runner Runner, out io.Writer, errOut io.Writer) *CLI {
	return &CLI{
		Runner:  runner,
		Out:     out,
		Err:     errOut,
		Program: defaultProgram,
	}
}

func (c *CLI) Run(ctx context.Context, args []string) int {
	req, err := ParseArgs(args)
	if err != nil {
		if errors.Is(err, ErrHelpRequested) {
			if _, writeErr := fmt.Fprint(c.Out, Usage()); writeErr != nil {
				return 1
			}
			return 0
		}
		fmt.Fprintf(c.Err, "%s: %s: %v\n\n", c.program(), app.KindUsage, err)
		fmt.Fprint(c.Err, Usage())
		return 1
	}

	output, runErr := c.Runner.Execute(ctx, req)
	if output != "" {
		if _, err := fmt.Fprint(c.Out, output); err != nil {
			fmt.Fprintf(c.Err, "%s: %s: write output: %v\n", c.program(), app.KindGeneric, err)
			return 1
		}
		if !strings.HasSuffix(output, "\n") {
			fmt.Fprintln(c.Out)
		}
	}

	switch {
	case runErr == nil:
		return 0
	case app.IsNoResults(runErr):
		fmt.Fprintf(c.Err, "%s: %v\n", c.program(), runErr)
		return 0
	default:
		fmt.Fprintf(c.Err, "%s: %s: %v\n", c.program(), errorKind(runErr), runErr)
		if errors.Is(runErr, app.ErrNoPaths) {
			fmt.Fprint(c.Err, Usage())
		}
		return 1
	}
}

func (c *CLI) program() string {
	if strings.TrimSpace(c.Program) == "" {
		return defaultProgram
	}
	return c.Program
}

func errorKind(err error) string {
	var kinded interface{ Kind() string }
	if errors.As(err, &kinded) && kinded.Kind() != "" {
		return kinded.Kind()
	}
	return app.KindGeneric
}
