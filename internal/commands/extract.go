package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gerunddev/postbridge/internal/build"
	"github.com/gerunddev/postbridge/internal/config"
	"github.com/gerunddev/postbridge/internal/pipeline"
	"github.com/gerunddev/postbridge/internal/styles"
)

// extractFlags are the per-run overrides of the configured extraction options
type extractFlags struct {
	out        string
	separator  string
	titleCase  string
	dateLayout string
	highlight  bool
}

func (f *extractFlags) apply(cfg *config.Config) {
	if f.separator != "" {
		cfg.TitleSeparator = f.separator
	}
	if f.titleCase != "" {
		cfg.TitleCase = f.titleCase
	}
	if f.dateLayout != "" {
		cfg.DateLayout = f.dateLayout
	}
	if f.highlight {
		cfg.HighlightSyntax = true
	}
}

// Extract converts individual Markdown files to post JSON
func Extract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	var f extractFlags
	fs.StringVar(&f.out, "out", "", "directory for .json files (default: next to each source, - for stdout)")
	fs.StringVar(&f.separator, "separator", "", "separator between words in file names")
	fs.StringVar(&f.titleCase, "title-case", "", "title case style: words, ap or chicago")
	fs.StringVar(&f.dateLayout, "date-layout", "", "Go time layout for created and updated")
	fs.BoolVar(&f.highlight, "highlight", false, "highlight <pre><code> blocks")
	_ = fs.Parse(args) //nolint:errcheck // ExitOnError

	if fs.NArg() == 0 {
		fail("Usage: postbridge extract [options] <file.md>...", nil)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fail("Error loading config", err)
	}

	if err := runExtract(cfg, f, fs.Args(), os.Stdout); err != nil {
		fail("Extract failed", err)
	}
}

// runExtract extracts each path and writes the JSON next to it, into f.out,
// or to w when f.out is "-". Every path is attempted; the errors are joined.
func runExtract(cfg *config.Config, f extractFlags, paths []string, w io.Writer) error {
	f.apply(cfg)
	opts, err := build.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	tr := &pipeline.Transformer{Options: opts}

	var errs []error
	for _, path := range paths {
		in, err := pipeline.ReadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		out, err := tr.Transform(in)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if out.IsNull() {
			continue
		}

		if f.out == "-" {
			fmt.Fprintf(w, "%s\n", out.Contents)
			continue
		}

		dest := out.Path
		if f.out != "" {
			dest = filepath.Join(f.out, filepath.Base(out.Path))
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.WriteFile(dest, out.Contents, 0644); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintln(w, styles.SuccessStyle.Render("✓ "+dest))
	}

	return errors.Join(errs...)
}

// Index reduces per-post JSON files into a sorted index
func Index(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	out := fs.String("out", "-", "index file to write (- for stdout)")
	_ = fs.Parse(args) //nolint:errcheck // ExitOnError

	if fs.NArg() == 0 {
		fail("Usage: postbridge index [--out file] <post.json>...", nil)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fail("Error loading config", err)
	}

	if err := runIndex(cfg, *out, fs.Args(), os.Stdout); err != nil {
		fail("Index failed", err)
	}
}

// runIndex concatenates the JSON files at paths and reduces them
func runIndex(cfg *config.Config, out string, paths []string, w io.Writer) error {
	opts, err := build.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	files := make([]*pipeline.File, 0, len(paths))
	for _, path := range paths {
		f, err := pipeline.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	dest := out
	if dest == "-" {
		dest = "index.json"
	}

	tr := &pipeline.Transformer{Options: opts, Concat: true}
	index, err := tr.Transform(pipeline.Concat(dest, files))
	if err != nil {
		return err
	}

	if out == "-" {
		_, err := fmt.Fprintf(w, "%s\n", index.Contents)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(out, index.Contents, 0644); err != nil {
		return err
	}
	fmt.Fprintln(w, styles.SuccessStyle.Render(fmt.Sprintf("✓ %s (%d entries)", out, len(files))))

	return nil
}
