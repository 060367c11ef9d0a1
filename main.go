package main

import (
	"fmt"
	"os"

	"github.com/gerunddev/postbridge/internal/commands"
	"github.com/gerunddev/postbridge/internal/config"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "build":
		commands.Build(os.Args[2:])
	case "watch":
		commands.Watch(os.Args[2:])
	case "extract":
		commands.Extract(os.Args[2:])
	case "index":
		commands.Index(os.Args[2:])
	case "css":
		commands.CSS(os.Args[2:])
	case "config":
		commands.Config(os.Args[2:])
	case "status":
		commands.Status(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Printf("postbridge v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := fmt.Sprintf(`postbridge - Turn Markdown blog posts into JSON for static sites

Usage:
  postbridge <command> [options]

Commands:
  build       Extract every post and write the index (use --dry-run to preview)
  watch       Rebuild whenever a post changes
  extract     Convert individual Markdown files to post JSON
  index       Reduce post JSON files into a sorted index
  css         Print the stylesheet for highlighted code blocks
  config      Show the configuration (config init writes the default file)
  status      Show tracked posts, pending changes and the last build
  version     Show version information
  help        Show this help message

Examples:
  postbridge build
  postbridge build --dry-run
  postbridge build --force --verbose
  postbridge watch --debounce 500ms
  postbridge extract --out dist/posts --highlight posts/hello-world.md
  postbridge index --out dist/posts.json dist/posts/*.json
  postbridge css --style dracula > static/chroma.css
  postbridge config init

Configuration:
  Config file: %s
  State file:  %s
  Environment: POSTBRIDGE_* variables and a .env file override the config file
`, config.ConfigPath(), config.StateFilePath())
	fmt.Print(usage)
}
