package build

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gerunddev/postbridge/internal/config"
	"github.com/gerunddev/postbridge/internal/state"
)

const helloPost = `---
title: Hello
category: news
created: 2024-01-02
tags: [intro]
---
First paragraph.

Second paragraph.
`

const notesPost = "Some *notes* without front matter.\n"

// testConfig returns a config rooted in a temporary directory
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.PostsDir = filepath.Join(root, "posts")
	cfg.OutDir = filepath.Join(root, "dist", "posts")
	cfg.IndexFile = filepath.Join(root, "dist", "posts.json")
	cfg.StateFile = filepath.Join(root, "state", "state.json")
	cfg.LogFile = ""

	if err := os.MkdirAll(cfg.PostsDir, 0755); err != nil {
		t.Fatalf("Failed to create posts dir: %v", err)
	}
	return cfg
}

func writePost(t *testing.T, cfg *config.Config, rel, content string) string {
	t.Helper()
	path := filepath.Join(cfg.PostsDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write post: %v", err)
	}
	return path
}

func newBuilder(t *testing.T, cfg *config.Config, st *state.State) *Builder {
	t.Helper()
	b, err := NewBuilder(cfg, st)
	if err != nil {
		t.Fatalf("NewBuilder failed: %v", err)
	}
	return b
}

func readIndex(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read index: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("index is not a JSON array: %v\n%s", err, data)
	}
	return entries
}

func TestBuild(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg, "news/hello.md", helloPost)
	writePost(t, cfg, "notes.md", notesPost)

	st := state.NewState()
	result, err := newBuilder(t, cfg, st).Build(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if result.PostsExtracted != 2 {
		t.Errorf("PostsExtracted = %d, want 2", result.PostsExtracted)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if result.RunID == "" {
		t.Error("RunID should be set")
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutDir, "news", "hello.json"))
	if err != nil {
		t.Fatalf("per-post output missing: %v", err)
	}
	var hello map[string]any
	if err := json.Unmarshal(data, &hello); err != nil {
		t.Fatalf("per-post output is not JSON: %v", err)
	}
	if hello["title"] != "Hello" || hello["excerpt"] != "<p>First paragraph.</p>" {
		t.Errorf("unexpected post: %v", hello)
	}
	if !strings.Contains(hello["content"].(string), "Second paragraph.") {
		t.Errorf("content missing body: %v", hello["content"])
	}

	entries := readIndex(t, cfg.IndexFile)
	if len(entries) != 2 {
		t.Fatalf("index has %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if _, ok := e["content"]; ok {
			t.Errorf("index entry should not carry content: %v", e)
		}
	}
	if result.IndexEntries != 2 {
		t.Errorf("IndexEntries = %d, want 2", result.IndexEntries)
	}

	if _, err := os.Stat(cfg.StateFile); err != nil {
		t.Errorf("state file not written: %v", err)
	}
	if st.LastRun == nil || st.LastRun.ID != result.RunID {
		t.Errorf("LastRun = %+v, want run %s", st.LastRun, result.RunID)
	}
}

func TestBuildSkipsUnchanged(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg, "news/hello.md", helloPost)
	writePost(t, cfg, "notes.md", notesPost)

	st := state.NewState()
	b := newBuilder(t, cfg, st)
	if _, err := b.Build(context.Background(), Options{}); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}

	result, err := b.Build(context.Background(), Options{})
	if err != nil {
		t.Fatalf("second Build failed: %v", err)
	}
	if result.PostsSkipped != 2 || result.PostsExtracted != 0 {
		t.Errorf("second build extracted %d, skipped %d; want 0, 2", result.PostsExtracted, result.PostsSkipped)
	}
	if entries := readIndex(t, cfg.IndexFile); len(entries) != 2 {
		t.Errorf("index has %d entries, want 2", len(entries))
	}

	forced, err := b.Build(context.Background(), Options{Force: true})
	if err != nil {
		t.Fatalf("forced Build failed: %v", err)
	}
	if forced.PostsExtracted != 2 {
		t.Errorf("forced build extracted %d, want 2", forced.PostsExtracted)
	}
}

func TestBuildReextractsAfterOptionsChange(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg, "hello_world.md", "Hello.\n")

	st := state.NewState()
	if _, err := newBuilder(t, cfg, st).Build(context.Background(), Options{}); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}

	out := filepath.Join(cfg.OutDir, "hello_world.json")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(string(data), `"title":"Hello_world"`) {
		t.Fatalf("unexpected first output: %s", data)
	}

	cfg.TitleSeparator = "_"
	result, err := newBuilder(t, cfg, st).Build(context.Background(), Options{})
	if err != nil {
		t.Fatalf("second Build failed: %v", err)
	}
	if result.PostsExtracted != 1 || result.PostsSkipped != 0 {
		t.Errorf("second build extracted %d, skipped %d; want 1, 0", result.PostsExtracted, result.PostsSkipped)
	}

	data, err = os.ReadFile(out)
	if err != nil {
		t.Fatalf("output missing after rebuild: %v", err)
	}
	if !strings.Contains(string(data), `"title":"Hello World"`) {
		t.Errorf("output not refreshed for new separator: %s", data)
	}

	again, err := newBuilder(t, cfg, st).Build(context.Background(), Options{})
	if err != nil {
		t.Fatalf("third Build failed: %v", err)
	}
	if again.PostsSkipped != 1 {
		t.Errorf("third build skipped %d, want 1", again.PostsSkipped)
	}
}

func TestBuildDryRun(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg, "news/hello.md", helloPost)

	result, err := newBuilder(t, cfg, state.NewState()).Build(context.Background(), Options{DryRun: true})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, err := os.Stat(cfg.OutDir); !os.IsNotExist(err) {
		t.Error("dry run should not create the output directory")
	}
	if _, err := os.Stat(cfg.IndexFile); !os.IsNotExist(err) {
		t.Error("dry run should not write the index")
	}
	if _, err := os.Stat(cfg.StateFile); !os.IsNotExist(err) {
		t.Error("dry run should not save state")
	}

	if len(result.Changes) != 2 {
		t.Fatalf("Changes = %d, want post and index", len(result.Changes))
	}
	for _, c := range result.Changes {
		if !strings.Contains(c.Diff, "+") {
			t.Errorf("change for %s has no additions:\n%s", c.Path, c.Diff)
		}
	}
}

func TestBuildDryRunAfterBuildHasNoChanges(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg, "news/hello.md", helloPost)

	b := newBuilder(t, cfg, state.NewState())
	if _, err := b.Build(context.Background(), Options{}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	result, err := b.Build(context.Background(), Options{DryRun: true, Force: true})
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if len(result.Changes) != 0 {
		t.Errorf("expected no changes, got %+v", result.Changes)
	}
}

func TestBuildRemovesStaleOutputs(t *testing.T) {
	cfg := testConfig(t)
	hello := writePost(t, cfg, "news/hello.md", helloPost)
	writePost(t, cfg, "notes.md", notesPost)

	b := newBuilder(t, cfg, state.NewState())
	if _, err := b.Build(context.Background(), Options{}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if err := os.Remove(hello); err != nil {
		t.Fatalf("Failed to remove post: %v", err)
	}

	result, err := b.Build(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	stale := filepath.Join(cfg.OutDir, "news", "hello.json")
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("output for removed post should be deleted")
	}
	if len(result.Removed) != 1 || result.Removed[0] != stale {
		t.Errorf("Removed = %v, want [%s]", result.Removed, stale)
	}
	if entries := readIndex(t, cfg.IndexFile); len(entries) != 1 {
		t.Errorf("index has %d entries, want 1", len(entries))
	}
}

func TestBuildContinuesAfterPostError(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg, "broken.md", "---\ntitle: [unclosed\n---\nbody\n")
	writePost(t, cfg, "notes.md", notesPost)

	result, err := newBuilder(t, cfg, state.NewState()).Build(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want one", result.Errors)
	}
	if result.PostsExtracted != 1 {
		t.Errorf("PostsExtracted = %d, want 1", result.PostsExtracted)
	}
	if entries := readIndex(t, cfg.IndexFile); len(entries) != 1 {
		t.Errorf("index has %d entries, want 1", len(entries))
	}
}

func TestBuildEmptyDirectory(t *testing.T) {
	cfg := testConfig(t)

	result, err := newBuilder(t, cfg, state.NewState()).Build(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if result.IndexEntries != 0 {
		t.Errorf("IndexEntries = %d, want 0", result.IndexEntries)
	}

	data, err := os.ReadFile(cfg.IndexFile)
	if err != nil {
		t.Fatalf("index not written: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("index = %q, want []", data)
	}
}

func TestBuildWithoutIndex(t *testing.T) {
	cfg := testConfig(t)
	cfg.IndexFile = ""
	writePost(t, cfg, "notes.md", notesPost)

	if _, err := newBuilder(t, cfg, state.NewState()).Build(context.Background(), Options{}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutDir, "notes.json")); err != nil {
		t.Errorf("per-post output missing: %v", err)
	}
}

func TestBuildCancelled(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg, "notes.md", notesPost)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newBuilder(t, cfg, state.NewState()).Build(ctx, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}

func TestBuildMissingPostsDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.PostsDir = filepath.Join(t.TempDir(), "absent")

	if _, err := newBuilder(t, cfg, state.NewState()).Build(context.Background(), Options{}); err == nil {
		t.Error("Expected error for missing posts directory")
	}
}

func TestOutputPath(t *testing.T) {
	cfg := testConfig(t)
	b := newBuilder(t, cfg, state.NewState())

	tests := []struct {
		name    string
		src     string
		want    string
		wantErr bool
	}{
		{"top level", filepath.Join(cfg.PostsDir, "hello.md"), filepath.Join(cfg.OutDir, "hello.json"), false},
		{"nested", filepath.Join(cfg.PostsDir, "travel", "rome.md"), filepath.Join(cfg.OutDir, "travel", "rome.json"), false},
		{"outside posts", filepath.Join(filepath.Dir(cfg.PostsDir), "other.md"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.OutputPath(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OutputPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("OutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScanDirectory(t *testing.T) {
	cfg := testConfig(t)
	writePost(t, cfg, "b.md", notesPost)
	writePost(t, cfg, "a/c.md", notesPost)
	writePost(t, cfg, "a/readme.txt", "not a post")
	writePost(t, cfg, ".drafts/d.md", notesPost)

	files, err := ScanDirectory(cfg.PostsDir, ".md")
	if err != nil {
		t.Fatalf("ScanDirectory failed: %v", err)
	}

	want := []string{
		filepath.Join(cfg.PostsDir, "a", "c.md"),
		filepath.Join(cfg.PostsDir, "b.md"),
	}
	if len(files) != len(want) {
		t.Fatalf("ScanDirectory() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{
			name:   "defaults",
			mutate: func(c *config.Config) {},
		},
		{
			name:   "highlight enabled",
			mutate: func(c *config.Config) { c.HighlightSyntax = true },
		},
		{
			name:    "bad locale",
			mutate:  func(c *config.Config) { c.Locale = "not a locale!" },
			wantErr: true,
		},
		{
			name:    "bad title case",
			mutate:  func(c *config.Config) { c.TitleCase = "shouting" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)

			opts, err := OptionsFromConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OptionsFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if opts.Markdown == nil || opts.FormatDate == nil || opts.TitleCase == nil {
				t.Error("renderer, date formatter and title case should be set")
			}
			if (opts.Highlighter != nil) != cfg.HighlightSyntax {
				t.Errorf("Highlighter set = %v, want %v", opts.Highlighter != nil, cfg.HighlightSyntax)
			}
		})
	}
}

func TestResultString(t *testing.T) {
	r := &Result{PostsExtracted: 3, PostsSkipped: 2, Errors: []error{errors.New("boom")}}
	got := r.String()
	if !strings.Contains(got, "3 posts extracted") || !strings.Contains(got, "2 unchanged") || !strings.Contains(got, "1 errors") {
		t.Errorf("String() = %q", got)
	}
}
