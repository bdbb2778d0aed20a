package optimizer

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"skillforge/internal/logging"
)

// TrialStore persists candidate evaluations to SQLite for post-run
// analysis. Instructions are stored by hash plus a deduplicated text
// table so repeated candidates do not bloat the database.
type TrialStore struct {
	mu sync.Mutex

	db        *sql.DB
	storePath string

	totalRecorded int
}

// NewTrialStore opens (or creates) the trial database under forgeDir.
func NewTrialStore(forgeDir string) (*TrialStore, error) {
	storePath := filepath.Join(forgeDir, "trials.db")

	if err := os.MkdirAll(filepath.Dir(storePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create trial store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", storePath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open trial database: %w", err)
	}

	ts := &TrialStore{
		db:        db,
		storePath: storePath,
	}

	if err := ts.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	row := ts.db.QueryRow("SELECT COUNT(*) FROM trials")
	row.Scan(&ts.totalRecorded)

	logging.Optimizer("TrialStore initialized: path=%s, recorded=%d", storePath, ts.totalRecorded)
	return ts, nil
}

func (ts *TrialStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trials (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rollout_id TEXT,
		skill TEXT,
		round INTEGER,
		instruction_hash TEXT,
		score REAL,
		feedback TEXT,
		duration_ms INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trials_skill ON trials(skill);
	CREATE INDEX IF NOT EXISTS idx_trials_created ON trials(created_at);

	CREATE TABLE IF NOT EXISTS instructions (
		hash TEXT PRIMARY KEY,
		text TEXT
	);
	`

	_, err := ts.db.Exec(schema)
	return err
}

// RecordTrial stores one candidate evaluation.
func (ts *TrialStore) RecordTrial(t Trial) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	hash := instructionHash(t.Instruction)

	_, err := ts.db.Exec(
		`INSERT OR IGNORE INTO instructions (hash, text) VALUES (?, ?)`,
		hash, t.Instruction,
	)
	if err != nil {
		return fmt.Errorf("failed to store instruction text: %w", err)
	}

	_, err = ts.db.Exec(
		`INSERT INTO trials (rollout_id, skill, round, instruction_hash, score, feedback, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.RolloutID, t.Skill, t.Round, hash, t.Score, t.Feedback, t.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record trial: %w", err)
	}

	ts.totalRecorded++
	logging.OptimizerDebug("trial recorded: rollout=%s score=%.3f total=%d", t.RolloutID, t.Score, ts.totalRecorded)
	return nil
}

// BestScore returns the highest recorded score for a skill, or 0 when
// no trials exist.
func (ts *TrialStore) BestScore(skillName string) (float64, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	var best sql.NullFloat64
	row := ts.db.QueryRow("SELECT MAX(score) FROM trials WHERE skill = ?", skillName)
	if err := row.Scan(&best); err != nil {
		return 0, fmt.Errorf("failed to query best score: %w", err)
	}
	if !best.Valid {
		return 0, nil
	}
	return best.Float64, nil
}

// TotalRecorded returns the number of trials recorded since the store
// was created.
func (ts *TrialStore) TotalRecorded() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.totalRecorded
}

// Close releases the database handle.
func (ts *TrialStore) Close() error {
	return ts.db.Close()
}

func instructionHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:8])
}
