package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Stat holds the filesystem timestamps of a source file
type Stat struct {
	Ctime time.Time
	Mtime time.Time
}

// File is one unit of work flowing through the pipeline
type File struct {
	Path string

	// Contents holds buffered file contents; nil with a nil Stream means a null file
	Contents []byte

	// Stream is set for streaming-mode files, which the transform rejects
	Stream io.Reader

	Stat Stat
}

// IsNull reports whether the file carries no contents at all
func (f *File) IsNull() bool {
	return f.Contents == nil && f.Stream == nil
}

// IsStream reports whether the file is in streaming mode
func (f *File) IsStream() bool {
	return f.Stream != nil
}

// ReadFile loads a file from disk with its ctime and mtime
func ReadFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return &File{Path: path, Stat: Stat{Ctime: changeTime(path, info), Mtime: info.ModTime()}}, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if contents == nil {
		contents = []byte{}
	}

	return &File{
		Path:     path,
		Contents: contents,
		Stat: Stat{
			Ctime: changeTime(path, info),
			Mtime: info.ModTime(),
		},
	}, nil
}

// ReplaceExtension swaps the extension of path, appending ext when there is none
func ReplaceExtension(path, ext string) string {
	old := filepath.Ext(path)
	if old == "" {
		return path + ext
	}
	return strings.TrimSuffix(path, old) + ext
}

// Concat joins buffered file contents with commas into a single file at path,
// the shape the reducer expects. Null files are skipped.
func Concat(path string, files []*File) *File {
	var buf bytes.Buffer
	first := true
	for _, f := range files {
		if f.IsNull() || f.IsStream() {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(f.Contents)
	}

	// An empty concatenation is still a buffered file, not a null one
	contents := buf.Bytes()
	if contents == nil {
		contents = []byte{}
	}

	return &File{Path: path, Contents: contents}
}
