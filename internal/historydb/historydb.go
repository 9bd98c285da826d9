// Package historydb persists Synchronizer decisions in a small SQLite
// database keyed by video stem and candidate hash. It serves as the
// fallback caption source described in spec §4.5 step 4: "an
// already-committed prior sync."
package historydb

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lsilvatti/bakasync/internal/caption"
)

// DB is a thread-safe decision-history store.
type DB struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
}

// Record is one committed synchronization decision.
type Record struct {
	VideoStem     string
	CandidateHash string
	RunID         string
	Variant       string
	DecisionText  string
	CaptionSRT    []byte
	CreatedAt     time.Time
}

// Open creates or opens the history database at path.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("historydb: open %s: %w", path, err)
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("historydb: enable WAL: %w", err)
	}

	d := &DB{db: sqlDB, path: path}
	if err := d.initSchema(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sync_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_stem TEXT NOT NULL,
		candidate_hash TEXT NOT NULL,
		run_id TEXT NOT NULL,
		variant TEXT NOT NULL,
		decision_text TEXT NOT NULL,
		caption_srt BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(video_stem, candidate_hash)
	);
	CREATE INDEX IF NOT EXISTS idx_video_stem ON sync_history(video_stem);
	`
	_, err := d.db.Exec(schema)
	return err
}

// HashCandidate fingerprints a candidate caption list so repeated runs
// against an unchanged candidate hit the same history row.
func HashCandidate(l *caption.List) string {
	h := sha256.Sum256(l.Serialize())
	return fmt.Sprintf("%x", h)
}

// Put upserts a sync decision.
func (d *DB) Put(r Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.Exec(`
		INSERT INTO sync_history (video_stem, candidate_hash, run_id, variant, decision_text, caption_srt)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_stem, candidate_hash) DO UPDATE SET
			run_id=excluded.run_id,
			variant=excluded.variant,
			decision_text=excluded.decision_text,
			caption_srt=excluded.caption_srt,
			created_at=CURRENT_TIMESTAMP`,
		r.VideoStem, r.CandidateHash, r.RunID, r.Variant, r.DecisionText, r.CaptionSRT)
	if err != nil {
		return fmt.Errorf("historydb: put %s: %w", r.VideoStem, err)
	}
	return nil
}

// Fallback returns the most recent committed sync for a video stem, if
// any, as a caption list ready to feed back into Analyze's fallback
// parameter.
func (d *DB) Fallback(videoStem string) (*caption.List, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	row := d.db.QueryRow(`
		SELECT caption_srt FROM sync_history
		WHERE video_stem = ?
		ORDER BY created_at DESC LIMIT 1`, videoStem)

	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("historydb: fallback lookup %s: %w", videoStem, err)
	}
	return caption.Parse(blob), nil
}

// Close releases the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}
