// Package content imports Markdown and MDX tutorials from a directory into
// the tutorial store.
//
// Each source file carries YAML ("---") or TOML ("+++") front matter. Bodies
// are rendered to HTML once, at import time; files whose content hash has not
// changed since the last import are skipped, and tutorials whose source file
// disappeared are removed from the store.
package content

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/tutorials"
	"github.com/eringen/tutorials/markdown"
)

// idNamespace scopes the UUIDv5 tutorial ids so the same slug always maps to
// the same id across imports.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tutorials:tutorial"))

// Logger is the logging surface the importer needs. gommon's *log.Logger
// (and therefore echo.Logger) satisfies it.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Importer loads tutorial sources into a Store.
type Importer struct {
	store     *tutorials.Store
	dir       string
	staticDir string
	workers   int
	log       Logger
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithLogger sets the importer's logger (default: gommon logger "content").
func WithLogger(l Logger) ImporterOption {
	return func(im *Importer) {
		im.log = l
	}
}

// WithWorkers bounds how many files are parsed concurrently.
func WithWorkers(n int) ImporterOption {
	return func(im *Importer) {
		if n > 0 {
			im.workers = n
		}
	}
}

// WithStaticDir sets where processed icons are written. Without it, relative
// icon references are reported as errors.
func WithStaticDir(dir string) ImporterOption {
	return func(im *Importer) {
		im.staticDir = dir
	}
}

// NewImporter creates an Importer reading from dir.
func NewImporter(store *tutorials.Store, dir string, opts ...ImporterOption) *Importer {
	im := &Importer{
		store:   store,
		dir:     dir,
		workers: runtime.NumCPU(),
		log:     log.New("content"),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Dir returns the source directory.
func (im *Importer) Dir() string {
	return im.dir
}

// FileError is a per-file import failure.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Report summarises one import run.
type Report struct {
	Imported  []string // slugs written to the store
	Unchanged []string // slugs skipped because their source hash matched
	Removed   []string // slugs deleted because their source is gone
	Failed    []FileError
	Duration  time.Duration
}

// Changed reports whether the run modified the store.
func (r Report) Changed() bool {
	return len(r.Imported) > 0 || len(r.Removed) > 0
}

func (r Report) String() string {
	return fmt.Sprintf("%d imported, %d unchanged, %d removed, %d failed in %s",
		len(r.Imported), len(r.Unchanged), len(r.Removed), len(r.Failed), r.Duration.Round(time.Millisecond))
}

// source is one parsed tutorial file.
type source struct {
	path      string
	tutorial  tutorials.Tutorial
	unchanged bool
	err       error
}

// Import walks the content directory and synchronises the store with it.
// Files that fail to parse are reported in Report.Failed and leave their
// stored tutorial untouched; the returned error is reserved for failures
// that stop the whole run.
func (im *Importer) Import(ctx context.Context) (Report, error) {
	start := time.Now()
	var report Report

	files, err := im.sourceFiles()
	if err != nil {
		return report, err
	}
	known, err := im.store.SourceHashes()
	if err != nil {
		return report, fmt.Errorf("load source hashes: %w", err)
	}

	sources := make([]source, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sources[i] = im.parse(path, known)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	seen := make(map[string]string, len(sources))
	var keep []string
	for _, src := range sources {
		if src.err != nil {
			report.Failed = append(report.Failed, FileError{Path: src.path, Err: src.err})
			im.log.Warnf("skip %s: %v", src.path, src.err)
			continue
		}
		slug := src.tutorial.Slug
		if other, dup := seen[slug]; dup {
			err := fmt.Errorf("duplicate slug %q (also used by %s)", slug, other)
			report.Failed = append(report.Failed, FileError{Path: src.path, Err: err})
			im.log.Warnf("skip %s: %v", src.path, err)
			continue
		}
		seen[slug] = src.path
		keep = append(keep, slug)
		if src.unchanged {
			report.Unchanged = append(report.Unchanged, slug)
			continue
		}
		if err := im.store.SaveTutorial(src.tutorial); err != nil {
			return report, fmt.Errorf("save %s: %w", src.path, err)
		}
		report.Imported = append(report.Imported, slug)
	}

	// A file that failed to parse may still own a stored tutorial, so
	// nothing is pruned unless every file was read.
	if len(report.Failed) == 0 {
		removed, err := im.store.DeleteMissing(keep)
		if err != nil {
			return report, fmt.Errorf("remove stale tutorials: %w", err)
		}
		report.Removed = removed
	}
	report.Duration = time.Since(start)

	im.log.Infof("import %s: %s", im.dir, report)
	return report, nil
}

// sourceFiles lists .md and .mdx files below the content directory in a
// stable order. Hidden files and directories are ignored.
func (im *Importer) sourceFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(im.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != im.dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".md", ".mdx":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read content dir %s: %w", im.dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func (im *Importer) parse(path string, known map[string]string) source {
	src := source{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		src.err = err
		return src
	}
	hash := strconv.FormatUint(xxh3.Hash(raw), 16)

	fm, body, err := splitFrontMatter(raw)
	if err != nil {
		src.err = err
		return src
	}
	if fm.Title == "" {
		src.err = fmt.Errorf("front matter has no title")
		return src
	}
	date, err := validDate(fm.Date)
	if err != nil {
		src.err = err
		return src
	}

	slug := fm.Slug
	if slug == "" {
		slug = tutorials.Slugify(fm.Title)
	}
	if slug == "" {
		slug = slugFromFilename(path)
	}
	if slug == "" {
		src.err = fmt.Errorf("cannot derive a slug")
		return src
	}
	if err := checkSlug(slug); err != nil {
		src.err = err
		return src
	}

	src.tutorial = tutorials.Tutorial{
		ID:         stableID(slug),
		TutorialID: fm.TutorialID,
		Title:      fm.Title,
		Slug:       slug,
		Date:       date,
		Tags:       fm.Tags,
		Lead:       fm.Lead,
		Rotate:     fm.Rotate,
		SourceHash: hash,
		Published:  !fm.Draft,
	}
	if known[slug] == hash {
		src.unchanged = true
		return src
	}

	if strings.EqualFold(filepath.Ext(path), ".mdx") {
		body = stripMDX(body)
	}
	html, err := markdown.Render(body)
	if err != nil {
		src.err = fmt.Errorf("render: %w", err)
		return src
	}
	src.tutorial.HTML = html

	icon, err := im.installIcon(path, fm.Icon, slug)
	if err != nil {
		src.err = err
		return src
	}
	src.tutorial.Icon = icon
	return src
}

// checkSlug rejects slugs that are not a single path segment. The slug names
// the tutorial's URL and its icon file.
func checkSlug(slug string) error {
	if strings.ContainsAny(slug, `/\`) || strings.Contains(slug, "..") {
		return fmt.Errorf("invalid slug %q: must be a single path segment", slug)
	}
	return nil
}

func stableID(slug string) string {
	return uuid.NewSHA1(idNamespace, []byte(slug)).String()
}

// slugFromFilename derives a slug from a file name, ignoring "index" files
// whose slug is their directory name.
func slugFromFilename(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if strings.EqualFold(base, "index") {
		base = filepath.Base(filepath.Dir(path))
	}
	return tutorials.Slugify(base)
}
