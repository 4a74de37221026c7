// Package scan expands command-line paths into PHP files and classifies each
// one, merging the extensions they depend on.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/ben-ranford/phpext/internal/classify"
	"github.com/ben-ranford/phpext/internal/deps"
	"github.com/ben-ranford/phpext/internal/safeio"
	"github.com/ben-ranford/phpext/internal/token"
)

type Options struct {
	// Suffixes restricts directory-discovered files by name suffix. Empty
	// accepts every file.
	Suffixes []string
	// Exclude holds glob patterns matched against directory-discovered paths.
	Exclude          []string
	RespectGitignore bool
	Workers          int
	Cache            *Cache
	Logger           *slog.Logger
}

// Evidence ties a resolved symbol to the file it was found in.
type Evidence struct {
	File string `json:"file"`
	classify.Symbol
}

type Result struct {
	Modules  deps.Set
	Files    []string
	Evidence []Evidence
	Cache    *CacheStats
}

type Scanner struct {
	tokenizer  *token.Tokenizer
	classifier *classify.Classifier
	filter     filter
	workers    int
	cache      *Cache
	logger     *slog.Logger
}

func New(resolver classify.Resolver, opts Options) (*Scanner, error) {
	f, err := newFilter(opts)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		tokenizer:  token.NewTokenizer(),
		classifier: classify.New(resolver, logger),
		filter:     f,
		workers:    workers,
		cache:      opts.Cache,
		logger:     logger,
	}, nil
}

// Scan classifies every file reachable from paths. A path that does not exist
// fails the whole scan with a *PathError.
func (s *Scanner) Scan(ctx context.Context, paths []string) (Result, error) {
	files, err := s.collect(ctx, paths)
	if err != nil {
		return Result{}, err
	}
	perFile := make([]classify.Result, len(files))
	var sets []deps.Set
	if s.workers > 1 && len(files) > 1 {
		sets, err = s.scanParallel(ctx, files, perFile)
	} else {
		sets, err = s.scanSequential(ctx, files, perFile)
	}
	if err != nil {
		return Result{}, err
	}

	result := Result{Modules: deps.NewSet(), Files: files}
	for _, set := range sets {
		result.Modules.Merge(set)
	}
	for i, file := range files {
		for _, sym := range perFile[i].Symbols {
			result.Evidence = append(result.Evidence, Evidence{File: file, Symbol: sym})
		}
	}
	if s.cache != nil {
		stats := s.cache.Stats()
		result.Cache = &stats
	}
	return result, nil
}

func (s *Scanner) scanSequential(ctx context.Context, files []string, perFile []classify.Result) ([]deps.Set, error) {
	set := deps.NewSet()
	for i, file := range files {
		res, err := s.scanFile(ctx, file)
		if err != nil {
			return nil, err
		}
		perFile[i] = res
		set.Merge(res.Modules)
	}
	return []deps.Set{set}, nil
}

// scanParallel gives each worker its own set; the caller merges them.
func (s *Scanner) scanParallel(ctx context.Context, files []string, perFile []classify.Result) ([]deps.Set, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := min(s.workers, len(files))
	work := make(chan int)
	sets := make([]deps.Set, workers)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for w := range workers {
		sets[w] = deps.NewSet()
		wg.Add(1)
		go func(set deps.Set) {
			defer wg.Done()
			for i := range work {
				res, err := s.scanFile(ctx, files[i])
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				perFile[i] = res
				set.Merge(res.Modules)
			}
		}(sets[w])
	}

feed:
	for i := range files {
		select {
		case work <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}

func (s *Scanner) scanFile(ctx context.Context, path string) (classify.Result, error) {
	if err := ctx.Err(); err != nil {
		return classify.Result{}, err
	}
	data, err := readSource(path)
	if err != nil {
		return classify.Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	if s.cache != nil {
		if cached, ok := s.cache.Lookup(data); ok {
			s.logger.Debug("cache hit", "path", path, "modules", cached.Modules.Len())
			return cached, nil
		}
	}
	tokens, err := s.tokenizer.Tokenize(ctx, data)
	if err != nil {
		return classify.Result{}, fmt.Errorf("tokenize %s: %w", path, err)
	}
	res := s.classifier.Classify(tokens)
	s.logger.Debug("scanned file", "path", path, "tokens", len(tokens), "modules", res.Modules.Len())
	if s.cache != nil {
		if err := s.cache.Store(data, res); err != nil {
			s.logger.Warn("failed to write cache entry", "path", path, "error", err)
		}
	}
	return res, nil
}

// readSource reads the file path names, following symlinks that point outside
// its directory.
func readSource(path string) ([]byte, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, err
	}
	return safeio.ReadFile(resolved)
}
