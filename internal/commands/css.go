package commands

import (
	"flag"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/styles"

	"github.com/gerunddev/postbridge/internal/highlight"
)

// CSS prints the stylesheet for highlighted code blocks
func CSS(args []string) {
	fs := flag.NewFlagSet("css", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	style := fs.String("style", "", "chroma style name (default from config)")
	list := fs.Bool("list", false, "list available style names")
	_ = fs.Parse(args) //nolint:errcheck // ExitOnError

	if *list {
		listStyles(os.Stdout)
		return
	}

	name := *style
	if name == "" {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			fail("Error loading config", err)
		}
		name = cfg.HighlightStyle
	}

	if err := highlight.New(name).WriteCSS(os.Stdout); err != nil {
		fail("Failed to write stylesheet", err)
	}
}

func listStyles(w io.Writer) {
	for _, name := range styles.Names() {
		io.WriteString(w, name+"\n") //nolint:errcheck // stdout
	}
}
