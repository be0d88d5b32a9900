package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/tutorials"
	"github.com/eringen/tutorials/content"
	"github.com/eringen/tutorials/search"
	"github.com/eringen/tutorials/views"
)

const shutdownTimeout = 10 * time.Second

func loadConfig(fs *flag.FlagSet, args []string) (tutorials.SiteConfig, error) {
	path := fs.String("config", tutorials.EnvOr("TUTORIALS_CONFIG", "config.toml"), "path to the TOML config file")
	if err := fs.Parse(args); err != nil {
		return tutorials.SiteConfig{}, err
	}
	cfg, err := tutorials.LoadConfig(*path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func newImporter(store *tutorials.Store, cfg tutorials.SiteConfig, logger content.Logger) *content.Importer {
	return content.NewImporter(store, cfg.ContentDir,
		content.WithStaticDir(cfg.StaticDir),
		content.WithLogger(logger),
	)
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	watch := fs.Bool("watch", false, "re-import when content changes")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}

	store, err := tutorials.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	app := tutorials.New(cfg, views.Default(), tutorials.WithStore(store))
	if err := app.Init(); err != nil {
		return err
	}
	defer app.Close()
	logger := app.Echo.Logger
	logger.SetLevel(log.INFO)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	im := newImporter(store, app.Config, logger)
	if _, err := os.Stat(im.Dir()); err == nil {
		if _, err := im.Import(ctx); err != nil {
			return err
		}
	} else {
		logger.Warnf("content directory %s: %v", im.Dir(), err)
	}

	if *watch {
		go func() {
			err := content.WatchAndImport(ctx, im, func(r content.Report) {
				if r.Changed() {
					app.Cache.Invalidate()
				}
			})
			if err != nil {
				logger.Errorf("watch: %v", err)
			}
		}()
	}

	errc := make(chan error, 1)
	go func() {
		errc <- app.Echo.Start(app.Config.Addr)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.Echo.Shutdown(shutdownCtx)
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}

	store, err := tutorials.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := newImporter(store, cfg, log.New("import")).Import(context.Background())
	if err != nil {
		return err
	}
	fmt.Println(report)
	for _, f := range report.Failed {
		fmt.Fprintf(os.Stderr, "  %v\n", f)
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d file(s) failed", len(report.Failed))
	}
	return nil
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}

	store, err := tutorials.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.ListTutorials("")
	if err != nil {
		return err
	}
	session := newSession(cfg, list)

	if fs.NArg() > 0 {
		printState(os.Stdout, session.Update(strings.Join(fs.Args(), " ")))
		return nil
	}
	return searchLoop(os.Stdin, os.Stdout, session)
}

// newSession filters the same collection the listing page does.
func newSession(cfg tutorials.SiteConfig, list []tutorials.Tutorial) *search.Session[tutorials.Tutorial] {
	return search.NewSession(tutorials.LimitListing(list, cfg.ListingLimit),
		search.WithTagMode(search.ParseTagMode(cfg.SearchTagMode)))
}

// searchLoop treats every input line as the full current query, the way the
// listing page treats each keystroke.
func searchLoop(in io.Reader, out io.Writer, session *search.Session[tutorials.Tutorial]) error {
	printState(out, session.State())
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		printState(out, session.Update(scanner.Text()))
	}
}

func printState(out io.Writer, state tutorials.Listing) {
	fmt.Fprintf(out, "[%s] %d tutorial(s)\n", state.Phase(), state.Count())
	for _, t := range state.Results {
		fmt.Fprintf(out, "  %-40s %s\n", t.Title, tutorials.JoinTags(t.Tags))
	}
}
