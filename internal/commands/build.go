package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/postbridge/internal/build"
	"github.com/gerunddev/postbridge/internal/diff"
	"github.com/gerunddev/postbridge/internal/styles"
	"github.com/gerunddev/postbridge/internal/tui"
)

// Build performs a one-shot build of every post and the index
func Build(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	dryRun := fs.Bool("dry-run", false, "show diffs without writing files")
	force := fs.Bool("force", false, "re-extract posts even when unchanged")
	verbose := fs.Bool("verbose", false, "log build events to stderr")
	_ = fs.Parse(args) //nolint:errcheck // ExitOnError

	if *dryRun {
		fmt.Println(styles.TitleStyle.Render("postbridge build (DRY RUN)"))
	} else {
		fmt.Println(styles.TitleStyle.Render("postbridge build"))
	}

	cfg, st, err := loadConfigAndState(*configPath)
	if err != nil {
		fail("Build failed", err)
	}

	builder, err := build.NewBuilder(cfg, st)
	if err != nil {
		fail("Invalid configuration", err)
	}

	log, cleanup := setupLogger(cfg, *verbose)
	defer cleanup()
	builder.SetLogger(log)
	log.ConfigLoaded(cfg.PostsDir, cfg.OutDir, cfg.HighlightSyntax)

	fmt.Printf("%s → %s\n", styles.PathStyle.Render(cfg.PostsDir), styles.PathStyle.Render(cfg.OutDir))
	if *dryRun {
		fmt.Println(styles.DimStyle.Render("(dry run - no files will be modified)"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := build.Options{DryRun: *dryRun, Force: *force}

	var result *build.Result
	if *verbose {
		// Log lines and the spinner would interleave
		result, err = builder.Build(ctx, opts)
		if err != nil {
			fail("Build failed", err)
		}
		fmt.Print(tui.Summary(result))
	} else {
		result, err = runWithSpinner(ctx, stop, func(ctx context.Context) (*build.Result, error) {
			return builder.Build(ctx, opts)
		})
		if err != nil {
			fail("Build failed", err)
		}
	}

	for _, c := range result.Changes {
		fmt.Println(styles.HighlightStyle.Render(c.Path))
		fmt.Print(diff.Render(c.Diff))
	}

	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

// runWithSpinner runs fn while the build progress model is on screen.
// Quitting the model cancels the build.
func runWithSpinner(ctx context.Context, cancel context.CancelFunc, fn func(context.Context) (*build.Result, error)) (*build.Result, error) {
	m := tui.InitBuildModel("Building posts...")
	p := tea.NewProgram(m, tea.WithInput(os.Stdin))

	var (
		result *build.Result
		err    error
	)
	done := make(chan struct{})

	go func() {
		defer close(done)
		result, err = fn(ctx)
		p.Send(tui.BuildMsg{Result: result, Err: err})
	}()

	if _, runErr := p.Run(); runErr != nil {
		cancel()
		<-done
		return nil, runErr
	}

	// The user may have quit before the build finished
	cancel()
	<-done

	return result, err
}

// Watch rebuilds whenever posts change, until interrupted
func Watch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	debounce := fs.Duration("debounce", 0, "delay between a change and the rebuild (default from config)")
	verbose := fs.Bool("verbose", false, "log build events to stderr")
	_ = fs.Parse(args) //nolint:errcheck // ExitOnError

	cfg, st, err := loadConfigAndState(*configPath)
	if err != nil {
		fail("Watch failed", err)
	}
	if *debounce > 0 {
		cfg.WatchDebounce = *debounce
	}

	builder, err := build.NewBuilder(cfg, st)
	if err != nil {
		fail("Invalid configuration", err)
	}

	log, cleanup := setupLogger(cfg, *verbose)
	defer cleanup()
	builder.SetLogger(log)

	watcher, err := build.NewWatcher(builder, func(r *build.Result, err error) {
		stamp := styles.DimStyle.Render(time.Now().Format(time.TimeOnly))
		if err != nil {
			fmt.Println(stamp, styles.ErrorStyle.Render("✗ Build failed: "+err.Error()))
			return
		}
		fmt.Print(stamp, " ", tui.Summary(r))
	})
	if err != nil {
		fail("Failed to watch "+cfg.PostsDir, err)
	}

	fmt.Println(styles.TitleStyle.Render("postbridge watch"))
	fmt.Printf("%s → %s\n", styles.PathStyle.Render(cfg.PostsDir), styles.PathStyle.Render(cfg.OutDir))
	fmt.Println(styles.HelpStyle.Render("Press Ctrl+C to stop"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("watch started", "posts_dir", cfg.PostsDir, "debounce", cfg.WatchDebounce)
	if err := watcher.Run(ctx, build.Options{}); err != nil {
		fail("Watch failed", err)
	}
	log.Info("watch stopped")
}
