// ABOUTME: SQLite catalogue of candidate songs and their cached analysis
// ABOUTME: Entries are keyed by path and invalidated when size or mtime change
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/automashup-go/pkg/audio"
	"github.com/harperreed/automashup-go/pkg/audio/decode"
	"github.com/harperreed/automashup-go/pkg/features"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tracks (
	path        TEXT PRIMARY KEY,
	size        INTEGER NOT NULL,
	mod_time    INTEGER NOT NULL,
	tempo       REAL NOT NULL,
	duration    REAL NOT NULL,
	features    BLOB NOT NULL,
	run_id      TEXT NOT NULL,
	analyzed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tracks_tempo ON tracks(tempo);
`

// Entry is one analysed song
type Entry struct {
	Path       string
	Size       int64
	ModTime    time.Time
	Duration   time.Duration
	Features   features.Features
	RunID      string
	AnalyzedAt time.Time
}

// Analyzer turns a decoded song into features
type Analyzer func(w audio.Waveform) (features.Features, error)

// Progress is called once per file as a batch completes. It may be called
// from several goroutines at once.
type Progress func(path string, cached bool, err error)

// Library is a directory of songs plus its analysis cache
type Library struct {
	db  *sql.DB
	dir string
}

// Open opens or creates the catalogue at dbPath for the songs under dir
func Open(dbPath, dir string) (*Library, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serialises writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Library{db: db, dir: dir}, nil
}

// Close closes the database
func (l *Library) Close() error {
	return l.db.Close()
}

// Scan lists every decodable file under the library directory in path order
func (l *Library) Scan() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != l.dir && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if decode.Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", l.dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Get returns the cached entry for path if it is still current
func (l *Library) Get(path string) (Entry, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var (
		e          Entry
		modTime    int64
		duration   float64
		blob       []byte
		analyzedAt int64
		tempo      float64
	)
	err = l.db.QueryRow(
		`SELECT path, size, mod_time, tempo, duration, features, run_id, analyzed_at FROM tracks WHERE path = ?`,
		path,
	).Scan(&e.Path, &e.Size, &modTime, &tempo, &duration, &blob, &e.RunID, &analyzedAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read cache for %s: %w", path, err)
	}
	if e.Size != info.Size() || modTime != info.ModTime().UnixNano() {
		return Entry{}, false, nil
	}

	if err := json.Unmarshal(blob, &e.Features); err != nil {
		return Entry{}, false, fmt.Errorf("failed to decode cached features for %s: %w", path, err)
	}
	e.ModTime = time.Unix(0, modTime)
	e.Duration = time.Duration(duration * float64(time.Second))
	e.AnalyzedAt = time.Unix(0, analyzedAt)
	return e, true, nil
}

// Put stores or replaces an entry
func (l *Library) Put(e Entry) error {
	blob, err := json.Marshal(e.Features)
	if err != nil {
		return fmt.Errorf("failed to encode features for %s: %w", e.Path, err)
	}
	_, err = l.db.Exec(
		`INSERT OR REPLACE INTO tracks (path, size, mod_time, tempo, duration, features, run_id, analyzed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Path, e.Size, e.ModTime.UnixNano(), e.Features.Tempo, e.Duration.Seconds(), blob, e.RunID, e.AnalyzedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", e.Path, err)
	}
	return nil
}

// Count returns the number of cached entries
func (l *Library) Count() (int, error) {
	var n int
	if err := l.db.QueryRow(`SELECT COUNT(*) FROM tracks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return n, nil
}

// Prune removes entries whose files no longer exist
func (l *Library) Prune() (int, error) {
	rows, err := l.db.Query(`SELECT path FROM tracks`)
	if err != nil {
		return 0, fmt.Errorf("failed to list tracks: %w", err)
	}
	var gone []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("failed to read track: %w", err)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			gone = append(gone, path)
		}
	}
	_ = rows.Close()

	for _, path := range gone {
		if _, err := l.db.Exec(`DELETE FROM tracks WHERE path = ?`, path); err != nil {
			return 0, fmt.Errorf("failed to delete %s: %w", path, err)
		}
	}
	return len(gone), nil
}

// Analyze returns an entry for every path, analysing only files whose cache
// is missing or stale. Files that fail to decode or analyse are reported to
// progress and left out of the result; the batch carries on.
func (l *Library) Analyze(ctx context.Context, paths []string, workers int, analyze Analyzer, progress Progress) ([]Entry, error) {
	if workers < 1 {
		workers = 1
	}
	runID := uuid.NewString()
	results := make([]*Entry, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, cached, err := l.entry(path, runID, analyze)
			if progress != nil {
				progress(path, cached, err)
			}
			if err != nil {
				log.Printf("Skipping %s: %v", path, err)
				return nil
			}
			results[i] = &e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(paths))
	for _, e := range results {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

func (l *Library) entry(path, runID string, analyze Analyzer) (Entry, bool, error) {
	if e, ok, err := l.Get(path); err != nil {
		return Entry{}, false, err
	} else if ok {
		return e, true, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	w, err := decode.File(path)
	if err != nil {
		return Entry{}, false, err
	}
	f, err := analyze(w)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to analyse %s: %w", path, err)
	}
	f.ID = path

	e := Entry{
		Path:       path,
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		Duration:   w.Duration(),
		Features:   f,
		RunID:      runID,
		AnalyzedAt: time.Now(),
	}
	if err := l.Put(e); err != nil {
		return Entry{}, false, err
	}
	return e, false, nil
}
