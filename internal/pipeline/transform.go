package pipeline

import (
	"errors"
	"fmt"

	"github.com/gerunddev/postbridge/internal/post"
)

// PluginName identifies errors raised by this transform
const PluginName = "postbridge"

// ErrStreamingNotSupported matches the error returned for streaming-mode files
var ErrStreamingNotSupported = errors.New("Streaming not supported")

// PluginError is a per-file failure; the pipeline reports it and moves on
type PluginError struct {
	Plugin string
	Path   string
	Err    error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Plugin, e.Path, e.Err)
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

// Transformer routes each file to the extractor, or to the reducer in concat mode
type Transformer struct {
	Options post.Options

	// Concat selects reducer mode
	Concat bool
}

// Transform processes a single file. Null files pass through unchanged.
// Streaming files yield no result and a *PluginError.
func (t *Transformer) Transform(f *File) (*File, error) {
	if f.IsNull() {
		return f, nil
	}

	if f.IsStream() {
		return nil, &PluginError{Plugin: PluginName, Path: f.Path, Err: ErrStreamingNotSupported}
	}

	if t.Concat {
		contents, err := post.Reduce(f.Contents, t.Options)
		if err != nil {
			return nil, &PluginError{Plugin: PluginName, Path: f.Path, Err: err}
		}
		return &File{Path: f.Path, Contents: contents, Stat: f.Stat}, nil
	}

	contents, err := post.ExtractJSON(post.Source{
		Path:     f.Path,
		Contents: f.Contents,
		Ctime:    f.Stat.Ctime,
		Mtime:    f.Stat.Mtime,
	}, t.Options)
	if err != nil {
		return nil, &PluginError{Plugin: PluginName, Path: f.Path, Err: err}
	}

	return &File{
		Path:     ReplaceExtension(f.Path, ".json"),
		Contents: contents,
		Stat:     f.Stat,
	}, nil
}
