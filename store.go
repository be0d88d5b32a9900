package tutorials

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding the imported tutorials.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the server read while an import writes; busy_timeout makes
	// the writer wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	if path == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS tutorials (
    slug TEXT PRIMARY KEY,
    id TEXT NOT NULL,
    tutorial_id INTEGER NOT NULL DEFAULT 0,
    title TEXT NOT NULL,
    date TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL,
    lead TEXT NOT NULL,
    icon TEXT NOT NULL DEFAULT '',
    html TEXT NOT NULL,
    source_hash TEXT NOT NULL DEFAULT '',
    published INTEGER NOT NULL DEFAULT 1,
    rotate INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS tutorials_order ON tutorials (tutorial_id DESC, slug);
`)
	if err != nil {
		return err
	}
	// databases created before the rotate flag existed
	if _, err := s.db.Exec(`ALTER TABLE tutorials ADD COLUMN rotate INTEGER NOT NULL DEFAULT 0;`); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			return nil
		}
		return err
	}
	return nil
}

const tutorialColumns = `slug, id, tutorial_id, title, date, tags, lead, icon, html, source_hash, published, rotate`

// orderBy lists the newest tutorial number first, with slug as a tie
// breaker so the order is total.
const orderBy = ` ORDER BY tutorial_id DESC, slug ASC`

type scanner interface {
	Scan(dest ...any) error
}

func scanTutorial(row scanner) (Tutorial, error) {
	var t Tutorial
	var tags string
	var published, rotate int
	if err := row.Scan(&t.Slug, &t.ID, &t.TutorialID, &t.Title, &t.Date, &tags, &t.Lead, &t.Icon, &t.HTML, &t.SourceHash, &published, &rotate); err != nil {
		return Tutorial{}, err
	}
	t.Tags = ParseTags(tags)
	t.Link = TutorialPath(t.Slug)
	t.Published = published == 1
	t.Rotate = rotate == 1
	return t, nil
}

func (s *Store) queryTutorials(query string, args ...any) ([]Tutorial, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tutorial
	for rows.Next() {
		t, err := scanTutorial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTutorials returns all published tutorials in listing order.
// If tag is non-empty, results are filtered to tutorials carrying that tag
// (case-insensitive). The tag comparison runs in Go: SQLite's lower() only
// folds ASCII.
func (s *Store) ListTutorials(tag string) ([]Tutorial, error) {
	all, err := s.queryTutorials(`SELECT ` + tutorialColumns + ` FROM tutorials WHERE published = 1` + orderBy)
	if err != nil || tag == "" {
		return all, err
	}
	return filterByTag(all, tag), nil
}

// ListAll returns every tutorial, drafts included.
func (s *Store) ListAll() ([]Tutorial, error) {
	return s.queryTutorials(`SELECT ` + tutorialColumns + ` FROM tutorials` + orderBy)
}

// ListTags returns a sorted, deduplicated slice of lowercased tags from
// published tutorials.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM tutorials WHERE published = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[normalizeTag(t)] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// GetTutorial returns a single published tutorial by slug.
func (s *Store) GetTutorial(slug string) (Tutorial, error) {
	return scanTutorial(s.db.QueryRow(`SELECT `+tutorialColumns+` FROM tutorials WHERE slug = ? AND published = 1`, slug))
}

// SourceHashes returns the stored source hash of every tutorial keyed by slug.
func (s *Store) SourceHashes() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT slug, source_hash FROM tutorials`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var slug, hash string
		if err := rows.Scan(&slug, &hash); err != nil {
			return nil, err
		}
		out[slug] = hash
	}
	return out, rows.Err()
}

// SaveTutorial upserts a tutorial. Tags keep their authored case.
func (s *Store) SaveTutorial(t Tutorial) error {
	if t.Slug == "" {
		return fmt.Errorf("save tutorial %q: empty slug", t.Title)
	}
	tags := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		// commas delimit the stored list
		tag = strings.TrimSpace(strings.ReplaceAll(tag, ",", " "))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO tutorials (`+tutorialColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Slug, t.ID, t.TutorialID, t.Title, t.Date, ","+strings.Join(tags, ",")+",", t.Lead, t.Icon, t.HTML, t.SourceHash, boolInt(t.Published), boolInt(t.Rotate))
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// DeleteTutorial removes a tutorial by slug.
func (s *Store) DeleteTutorial(slug string) error {
	_, err := s.db.Exec(`DELETE FROM tutorials WHERE slug = ?`, slug)
	return err
}

// DeleteMissing removes every tutorial whose slug is not in keep and returns
// the removed slugs.
func (s *Store) DeleteMissing(keep []string) ([]string, error) {
	hashes, err := s.SourceHashes()
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(keep))
	for _, slug := range keep {
		wanted[slug] = struct{}{}
	}
	var removed []string
	for slug := range hashes {
		if _, ok := wanted[slug]; ok {
			continue
		}
		if err := s.DeleteTutorial(slug); err != nil {
			return removed, err
		}
		removed = append(removed, slug)
	}
	sort.Strings(removed)
	return removed, nil
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
