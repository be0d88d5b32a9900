package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:])
	case "search":
		err = runSearch(os.Args[2:])
	case "version":
		fmt.Printf("tutorials %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tutorials - A tutorial site built with Go, Echo, and templ

Usage:
  tutorials <command> [flags] [arguments]

Commands:
  serve [-watch]     Import content and start the web server
  import             Import Markdown/MDX tutorials into the database
  search [query]     Filter tutorials; without a query, read queries from stdin
  version            Print the version
  help               Show this help message

Every command accepts -config <file> (default $TUTORIALS_CONFIG, then
"config.toml"). Environment
variables such as SITE_URL or DATABASE_PATH override the file.

Examples:
  tutorials serve -watch
  tutorials import -config site.toml
  tutorials search widget`)
}
