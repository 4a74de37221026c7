package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ben-ranford/phpext/internal/app"
	"github.com/ben-ranford/phpext/internal/catalog"
	"github.com/ben-ranford/phpext/internal/report"
)

var ErrHelpRequested = errors.New("help requested")

func ParseArgs(args []string) (app.Request, error) {
	req := app.DefaultRequest()
	args = normalizeArgs(args)

	fs := flag.NewFlagSet("phpext", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	suffixes := fs.String("suffix", "", "comma-separated suffixes for discovered files")
	exclude := fs.String("exclude", "", "comma-separated glob patterns for discovered files")
	gitignore := fs.Bool("gitignore", false, "honour .gitignore of walked directories")
	phpVersion := fs.String("php-version", "", "runtime version for the builtin table")
	var catalogs listFlag
	fs.Var(&catalogs, "catalog", "extra catalog files")
	formatFlag := fs.String("format", "", "output format")
	jobs := fs.Int("jobs", 1, "parallel file workers")
	cacheDir := fs.String("cache-dir", "", "per-file result cache directory")
	configPath := fs.String("config", "", "config file path")
	var verbose bool
	fs.BoolVar(&verbose, "v", false, "debug logging")
	fs.BoolVar(&verbose, "verbose", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return req, ErrHelpRequested
		}
		return req, err
	}
	visited := visitedFlags(fs)

	if visited["suffix"] {
		req.Overrides.Suffixes = splitList(*suffixes)
	}
	if visited["exclude"] {
		req.Overrides.Exclude = splitList(*exclude)
	}
	if visited["gitignore"] {
		req.Overrides.Gitignore = gitignore
	}
	if visited["php-version"] {
		if _, err := catalog.ParseVersion(*phpVersion); err != nil {
			return req, fmt.Errorf("--php-version: %w", err)
		}
		req.Overrides.PHPVersion = strings.TrimSpace(*phpVersion)
	}
	if visited["catalog"] {
		req.Overrides.Catalogs = catalogs.values()
	}
	if visited["format"] {
		format, err := report.ParseFormat(*formatFlag)
		if err != nil {
			return req, err
		}
		req.Overrides.Format = string(format)
	}
	if visited["jobs"] {
		if *jobs < 1 {
			return req, fmt.Errorf("--jobs must be >= 1")
		}
		req.Overrides.Jobs = jobs
	}
	if visited["cache-dir"] {
		req.Overrides.CacheDir = strings.TrimSpace(*cacheDir)
	}
	req.ConfigPath = strings.TrimSpace(*configPath)
	req.Verbose = verbose

	req.Paths = fs.Args()
	if len(req.Paths) == 0 {
		return req, app.ErrNoPaths
	}
	return req, nil
}

// listFlag collects comma-separated values across repeated uses.
type listFlag struct {
	items []string
}

func (l *listFlag) String() string {
	return strings.Join(l.items, ",")
}

func (l *listFlag) Set(value string) error {
	l.items = append(l.items, splitList(value)...)
	return nil
}

func (l *listFlag) values() []string {
	return append([]string{}, l.items...)
}

// splitList returns the non-empty comma-separated entries of value. The
// result is never nil so an explicitly empty flag still counts as set.
func splitList(value string) []string {
	items := make([]string, 0, 4)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// normalizeArgs moves flags ahead of paths so options may follow them.
// Everything after "--" is a path.
func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	flags := make([]string, 0, len(args))
	positionals := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if strings.HasPrefix(arg, "-") && arg != "-" {
			flags = append(flags, arg)
			if flagNeedsValue(arg) && i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
			continue
		}
		positionals = append(positionals, arg)
	}

	if len(positionals) == 0 {
		return flags
	}
	flags = append(flags, "--")
	return append(flags, positionals...)
}

func flagNeedsValue(arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	switch strings.TrimLeft(arg, "-") {
	case "suffix", "exclude", "php-version", "catalog", "format", "jobs", "cache-dir", "config":
		return true
	default:
		return false
	}
}

func visitedFlags(fs *flag.FlagSet) map[string]bool {
	visited := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})
	return visited
}
