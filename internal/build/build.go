package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gerunddev/postbridge/internal/config"
	"github.com/gerunddev/postbridge/internal/diff"
	"github.com/gerunddev/postbridge/internal/logger"
	"github.com/gerunddev/postbridge/internal/pipeline"
	"github.com/gerunddev/postbridge/internal/state"
)

// Builder turns a directory of Markdown posts into per-post JSON and an index
type Builder struct {
	config    *config.Config
	state     *state.State
	extractor *pipeline.Transformer
	indexer   *pipeline.Transformer
	logger    *logger.Logger

	// fingerprint of the output-shaping settings, stored with each output
	fingerprint string
}

// NewBuilder creates a builder from the configuration and build state
func NewBuilder(cfg *config.Config, st *state.State) (*Builder, error) {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return &Builder{
		config:    cfg,
		state:     st,
		extractor: &pipeline.Transformer{Options: opts},
		indexer:   &pipeline.Transformer{Options: opts, Concat: true},
		logger:    logger.Discard(),

		fingerprint: cfg.OutputFingerprint(),
	}, nil
}

// SetLogger sets the logger for build events
func (b *Builder) SetLogger(l *logger.Logger) {
	b.logger = l
}

// Options controls a single build
type Options struct {
	// DryRun computes every output and reports diffs without writing
	DryRun bool

	// Force ignores the build state and re-extracts every post
	Force bool
}

// Change is an output that differs from the file on disk
type Change struct {
	Path string
	Diff string
}

// Result represents the result of a build
type Result struct {
	RunID          string
	PostsExtracted int
	PostsSkipped   int
	IndexEntries   int
	Removed        []string
	Changes        []Change
	Errors         []error
	StartTime      time.Time
	EndTime        time.Time
}

// Build extracts every post under the posts directory and writes the index.
// Per-post failures are collected in the result; the returned error is
// reserved for failures that stop the whole build.
func (b *Builder) Build(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}
	b.logger.BuildStarted(result.RunID, b.config.PostsDir, b.config.OutDir)

	sources, err := ScanDirectory(b.config.PostsDir, ".md")
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", b.config.PostsDir, err)
	}

	outputs := make([]*pipeline.File, len(sources))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.config.Concurrency, 1))

	for i, src := range sources {
		if gctx.Err() != nil {
			break
		}

		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out, skipped, change, err := b.buildPost(src, opts)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err != nil:
				b.logger.FileError(src, err)
				result.Errors = append(result.Errors, err)
			case skipped:
				result.PostsSkipped++
			default:
				result.PostsExtracted++
			}
			if change != nil {
				result.Changes = append(result.Changes, *change)
			}
			outputs[i] = out

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Drop outputs whose source has gone away
	if !opts.DryRun {
		for _, stale := range b.state.Prune(sources) {
			if stale == "" {
				continue
			}
			if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
				b.logger.FileError(stale, err)
				result.Errors = append(result.Errors, err)
				continue
			}
			result.Removed = append(result.Removed, stale)
		}
	}

	if b.config.IndexFile != "" {
		entries, change, err := b.writeIndex(outputs, opts)
		if err != nil {
			return nil, err
		}
		result.IndexEntries = entries
		if change != nil {
			result.Changes = append(result.Changes, *change)
		}
	}

	sort.Slice(result.Changes, func(i, j int) bool {
		return result.Changes[i].Path < result.Changes[j].Path
	})

	result.EndTime = time.Now()

	if !opts.DryRun {
		b.state.RecordRun(state.RunInfo{
			ID:       result.RunID,
			Finished: result.EndTime,
			Posts:    len(sources),
			Errors:   len(result.Errors),
		})
		if b.config.StateFile != "" {
			if err := b.state.Save(b.config.StateFile); err != nil {
				b.logger.StateError("save", err)
				return result, fmt.Errorf("failed to save state: %w", err)
			}
		}
	}

	b.logger.BuildCompleted(result.RunID, result.PostsExtracted, result.PostsSkipped,
		len(result.Errors), result.EndTime.Sub(result.StartTime))

	return result, nil
}

// buildPost produces the JSON output for one source, reusing the previous
// output when the source is unchanged
func (b *Builder) buildPost(src string, opts Options) (*pipeline.File, bool, *Change, error) {
	dest, err := b.OutputPath(src)
	if err != nil {
		return nil, false, nil, err
	}

	if !opts.Force {
		if out, ok := b.reuse(src, dest); ok {
			b.logger.PostSkipped(src, "unchanged")
			return out, true, nil, nil
		}
	}

	f, err := pipeline.ReadFile(src)
	if err != nil {
		return nil, false, nil, err
	}

	out, err := b.extractor.Transform(f)
	if err != nil {
		return nil, false, nil, err
	}
	out.Path = dest

	if opts.DryRun {
		return out, false, b.compare(dest, out.Contents), nil
	}

	if err := writeFile(dest, out.Contents); err != nil {
		return nil, false, nil, err
	}
	if err := b.state.Update(src, dest, b.fingerprint); err != nil {
		b.logger.StateError("update", err)
	}
	b.logger.PostExtracted(src, dest)

	return out, false, nil, nil
}

// reuse loads the existing output for a source that is unchanged and was
// extracted with the current settings
func (b *Builder) reuse(src, dest string) (*pipeline.File, bool) {
	recorded, ok := b.state.Entry(src)
	if !ok || recorded.Output != dest || recorded.Options != b.fingerprint {
		return nil, false
	}

	changed, err := b.state.HasChanged(src)
	if err != nil || changed {
		return nil, false
	}

	contents, err := os.ReadFile(dest)
	if err != nil {
		return nil, false
	}

	return &pipeline.File{Path: dest, Contents: contents}, true
}

// writeIndex concatenates the per-post outputs and reduces them into the index
func (b *Builder) writeIndex(outputs []*pipeline.File, opts Options) (int, *Change, error) {
	var files []*pipeline.File
	for _, out := range outputs {
		if out != nil {
			files = append(files, out)
		}
	}

	index, err := b.indexer.Transform(pipeline.Concat(b.config.IndexFile, files))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build index: %w", err)
	}

	if opts.DryRun {
		return len(files), b.compare(b.config.IndexFile, index.Contents), nil
	}

	if err := writeFile(b.config.IndexFile, index.Contents); err != nil {
		return 0, nil, err
	}
	b.logger.IndexWritten(b.config.IndexFile, len(files))

	return len(files), nil, nil
}

// compare diffs generated contents against the file on disk
func (b *Builder) compare(path string, contents []byte) *Change {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		b.logger.FileError(path, err)
	}
	if bytes.Equal(existing, contents) {
		return nil
	}

	name, err := filepath.Rel(b.config.OutDir, path)
	if err != nil || strings.HasPrefix(name, "..") {
		name = filepath.Base(path)
	}

	return &Change{
		Path: path,
		Diff: diff.Unified(filepath.ToSlash(name), string(existing), string(contents)),
	}
}

// OutputPath maps a source under the posts directory to its JSON output,
// mirroring the relative layout under the output directory
func (b *Builder) OutputPath(src string) (string, error) {
	rel, err := filepath.Rel(b.config.PostsDir, src)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", src, err)
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside %s", src, b.config.PostsDir)
	}

	return filepath.Join(b.config.OutDir, pipeline.ReplaceExtension(rel, ".json")), nil
}

func writeFile(path string, contents []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, contents, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ScanDirectory scans a directory for files with the given extension,
// skipping hidden directories. Results are sorted.
func ScanDirectory(dir string, ext string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) == ext {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// String returns a human-readable summary of the build result
func (r *Result) String() string {
	duration := r.EndTime.Sub(r.StartTime)
	return fmt.Sprintf(
		"Build complete: %d posts extracted, %d unchanged, %d errors (took %v)",
		r.PostsExtracted,
		r.PostsSkipped,
		len(r.Errors),
		duration.Round(time.Millisecond),
	)
}
