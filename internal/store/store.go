// Package store handles score and ghost persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/saurabhk79/TypeRush/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout sorts lexicographically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for scores and ghost recordings.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	store := &Store{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) newID(at time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), s.entropy).String()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			id TEXT PRIMARY KEY,
			profile TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			net_speed INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			keystrokes INTEGER NOT NULL,
			duration INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS score_errors (
			score_id TEXT NOT NULL,
			char TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (score_id, char)
		);`,
		`CREATE TABLE IF NOT EXISTS ghosts (
			profile TEXT PRIMARY KEY,
			progression TEXT NOT NULL,
			reference_text TEXT NOT NULL,
			final_speed INTEGER NOT NULL,
			final_accuracy INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_profile_recorded ON scores(profile, recorded_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SubmitResult stores the score of a finished attempt.
func (s *Store) SubmitResult(ctx context.Context, profile string, res model.Result) error {
	_, err := s.InsertScore(ctx, res.Score(profile))
	return err
}

// InsertScore stores a score and its error histogram, returning the new id.
func (s *Store) InsertScore(ctx context.Context, rec model.ScoreRecord) (id string, err error) {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}
	id = s.newID(rec.RecordedAt)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO scores (id, profile, recorded_at, net_speed, accuracy, keystrokes, duration)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		rec.Profile,
		rec.RecordedAt.UTC().Format(timeLayout),
		rec.NetSpeed,
		rec.Accuracy,
		rec.Keystrokes,
		rec.Duration,
	); err != nil {
		return "", err
	}

	if len(rec.Errors) > 0 {
		stmt, perr := tx.PrepareContext(ctx, `INSERT INTO score_errors (score_id, char, count) VALUES (?, ?, ?)`)
		if perr != nil {
			err = perr
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for ch, count := range rec.Errors {
			if _, err = stmt.ExecContext(ctx, id, ch, count); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListScores returns scores oldest first. An empty profile lists every profile.
func (s *Store) ListScores(ctx context.Context, profile string) ([]model.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile, recorded_at, net_speed, accuracy, keystrokes, duration
		 FROM scores
		 WHERE (? = '' OR profile = ?)
		 ORDER BY recorded_at ASC, id ASC`, profile, profile)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var scores []model.ScoreRecord
	index := map[string]int{}
	for rows.Next() {
		var rec model.ScoreRecord
		var recordedAt string
		if err := rows.Scan(&rec.ID, &rec.Profile, &recordedAt, &rec.NetSpeed, &rec.Accuracy, &rec.Keystrokes, &rec.Duration); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, recordedAt)
		if err != nil {
			return nil, err
		}
		rec.RecordedAt = parsed
		rec.Errors = map[string]int{}
		index[rec.ID] = len(scores)
		scores = append(scores, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return scores, nil
	}
	if err := s.attachErrors(ctx, profile, scores, index); err != nil {
		return nil, err
	}
	return scores, nil
}

func (s *Store) attachErrors(ctx context.Context, profile string, scores []model.ScoreRecord, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.score_id, e.char, e.count
		 FROM score_errors e
		 JOIN scores sc ON sc.id = e.score_id
		 WHERE (? = '' OR sc.profile = ?)`, profile, profile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var scoreID, ch string
		var count int
		if err := rows.Scan(&scoreID, &ch, &count); err != nil {
			return err
		}
		if i, ok := index[scoreID]; ok {
			scores[i].Errors[ch] = count
		}
	}
	return rows.Err()
}

// SaveGhost replaces the ghost recording for a profile.
func (s *Store) SaveGhost(ctx context.Context, profile string, rec model.GhostRecording) error {
	progression, err := json.Marshal(nonNil(rec.Progression))
	if err != nil {
		return fmt.Errorf("failed to encode progression: %w", err)
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ghosts (profile, progression, reference_text, final_speed, final_accuracy, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(profile) DO UPDATE SET
			progression = excluded.progression,
			reference_text = excluded.reference_text,
			final_speed = excluded.final_speed,
			final_accuracy = excluded.final_accuracy,
			recorded_at = excluded.recorded_at`,
		profile,
		string(progression),
		rec.ReferenceText,
		rec.FinalSpeed,
		rec.FinalAccuracy,
		rec.RecordedAt.UTC().Format(timeLayout),
	)
	return err
}

// FetchGhost loads the ghost recording for a profile.
// It returns model.ErrGhostNotFound when the profile has no finished attempt yet.
func (s *Store) FetchGhost(ctx context.Context, profile string) (model.GhostRecording, error) {
	var rec model.GhostRecording
	var progression, recordedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT progression, reference_text, final_speed, final_accuracy, recorded_at
		 FROM ghosts WHERE profile = ?`, profile,
	).Scan(&progression, &rec.ReferenceText, &rec.FinalSpeed, &rec.FinalAccuracy, &recordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.GhostRecording{}, model.ErrGhostNotFound
	}
	if err != nil {
		return model.GhostRecording{}, err
	}
	if err := json.Unmarshal([]byte(progression), &rec.Progression); err != nil {
		return model.GhostRecording{}, fmt.Errorf("failed to decode progression: %w", err)
	}
	if rec.RecordedAt, err = time.Parse(timeLayout, recordedAt); err != nil {
		return model.GhostRecording{}, err
	}
	return rec, nil
}

func nonNil(values []int) []int {
	if values == nil {
		return []int{}
	}
	return values
}
