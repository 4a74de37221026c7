package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/ben-ranford/phpext/internal/catalog"
	"github.com/ben-ranford/phpext/internal/config"
	"github.com/ben-ranford/phpext/internal/report"
	"github.com/ben-ranford/phpext/internal/scan"
)

type App struct {
	Formatter report.Formatter
	// LogOutput receives diagnostics. Nil discards them.
	LogOutput io.Writer
}

func New(logOutput io.Writer) *App {
	return &App{
		Formatter: report.NewFormatter(),
		LogOutput: logOutput,
	}
}

// settings is a request after the config file and defaults are applied.
type settings struct {
	paths      []string
	suffixes   []string
	exclude    []string
	gitignore  bool
	phpVersion catalog.Version
	catalogs   []string
	format     report.Format
	jobs       int
	cacheDir   string
}

// Execute scans req.Paths and returns the formatted report. When nothing is
// found the report is still returned, together with ErrNoResults.
func (a *App) Execute(ctx context.Context, req Request) (string, error) {
	if len(req.Paths) == 0 {
		return "", newError(KindUsage, ErrNoPaths)
	}
	logger := a.logger(req.Verbose)

	s, err := resolveSettings(req)
	if err != nil {
		return "", err
	}

	cat, err := catalog.Load(s.catalogs...)
	if err != nil {
		return "", newError(KindCatalog, err)
	}
	functions, classes := cat.Size()
	logger.Debug("catalog loaded", "sources", strings.Join(cat.Sources(), ","), "functions", functions, "classes", classes)

	scanner, err := scan.New(cat, scan.Options{
		Suffixes:         s.suffixes,
		Exclude:          s.exclude,
		RespectGitignore: s.gitignore,
		Workers:          s.jobs,
		Cache:            openCache(s.cacheDir, cat.Digest(), logger),
		Logger:           logger,
	})
	if err != nil {
		return "", newError(sourceKind(req.Overrides.Exclude != nil), err)
	}
	result, err := scanner.Scan(ctx, s.paths)
	if err != nil {
		return "", err
	}

	modules := result.Modules.Sorted()
	reportData := report.Build(modules, cat.Builtins(s.phpVersion), symbolUses(result.Evidence))
	reportData.PHPVersion = s.phpVersion.String()
	reportData.Paths = append([]string{}, s.paths...)
	reportData.FilesScanned = len(result.Files)
	reportData.Catalogs = cat.Sources()
	if result.Cache != nil {
		reportData.Cache = &report.CacheMetadata{
			Path:   result.Cache.Path,
			Hits:   result.Cache.Hits,
			Misses: result.Cache.Misses,
			Writes: result.Cache.Writes,
		}
	}
	logger.Info("scan complete", "files", len(result.Files), "extensions", len(modules))

	output, err := a.Formatter.Format(reportData, s.format)
	if err != nil {
		return "", err
	}
	if reportData.Empty() {
		return output, ErrNoResults
	}
	return output, nil
}

func (a *App) logger(verbose bool) *slog.Logger {
	if a.LogOutput == nil {
		return slog.New(slog.DiscardHandler)
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.LogOutput, &slog.HandlerOptions{Level: level}))
}

func resolveSettings(req Request) (settings, error) {
	workDir := req.WorkDir
	if strings.TrimSpace(workDir) == "" {
		workDir = "."
	}
	fileCfg, _, err := config.Load(workDir, req.ConfigPath)
	if err != nil {
		return settings{}, newError(KindConfig, err)
	}
	merged := fileCfg.Override(req.Overrides)

	s := settings{
		paths:      req.Paths,
		suffixes:   merged.Suffixes,
		exclude:    merged.Exclude,
		gitignore:  merged.Gitignore != nil && *merged.Gitignore,
		phpVersion: catalog.DefaultPHPVersion,
		catalogs:   merged.Catalogs,
		jobs:       1,
		cacheDir:   merged.CacheDir,
	}
	if merged.Jobs != nil {
		s.jobs = *merged.Jobs
	}
	if merged.PHPVersion != "" {
		s.phpVersion, err = catalog.ParseVersion(merged.PHPVersion)
		if err != nil {
			return settings{}, newError(sourceKind(req.Overrides.PHPVersion != ""), err)
		}
	}
	s.format, err = report.ParseFormat(merged.Format)
	if err != nil {
		return settings{}, newError(sourceKind(req.Overrides.Format != ""), err)
	}
	return s, nil
}

// sourceKind blames the command line when it set the offending value and the
// config file otherwise.
func sourceKind(fromFlags bool) string {
	if fromFlags {
		return KindUsage
	}
	return KindConfig
}

func openCache(dir, digest string, logger *slog.Logger) *scan.Cache {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	cache, err := scan.OpenCache(dir, digest)
	if err != nil {
		logger.Warn("result cache unavailable", "path", dir, "error", err)
		return nil
	}
	return cache
}

func symbolUses(evidence []scan.Evidence) []report.SymbolUse {
	uses := make([]report.SymbolUse, 0, len(evidence))
	for _, ev := range evidence {
		uses = append(uses, report.SymbolUse{
			Name:   ev.Name,
			Kind:   string(ev.Kind),
			File:   ev.File,
			Line:   ev.Line,
			Module: ev.Module,
		})
	}
	return uses
}

// IsNoResults reports whether err only signals an empty result.
func IsNoResults(err error) bool {
	return errors.Is(err, ErrNoResults)
}
