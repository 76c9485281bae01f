package results

// #region imports
import (
	"database/sql"
	"fmt"
	"time"

	"github.com/danielpatrickdp/oqa-study/go-oracle/internal/oracle"
	_ "modernc.org/sqlite"
)

// #endregion

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS oracle_runs (
	run_id             TEXT PRIMARY KEY,
	dataset_name       TEXT NOT NULL,
	object_count       INTEGER NOT NULL,
	attribute_count    INTEGER NOT NULL,
	max_steps          INTEGER NOT NULL,
	expected_questions REAL NOT NULL,
	created_at         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trajectory_points (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	target_id    TEXT NOT NULL,
	step         INTEGER NOT NULL,
	entropy_bits REAL NOT NULL,
	attribute    TEXT,
	candidates   INTEGER NOT NULL,
	FOREIGN KEY (run_id) REFERENCES oracle_runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_trajectory_points_lookup
ON trajectory_points(run_id, target_id, step);
`

// #endregion schema

// #region store-struct
// Store persists oracle runs and raw per-step trajectory rows in SQLite for
// the downstream aggregation and plotting collaborators.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region record-run
// RecordRun persists a single oracle run row.
func (s *Store) RecordRun(rec RunRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO oracle_runs
		 (run_id, dataset_name, object_count, attribute_count, max_steps, expected_questions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.DatasetName,
		rec.ObjectCount,
		rec.AttributeCount,
		rec.MaxSteps,
		rec.ExpectedQuestions,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// #endregion record-run

// #region record-trajectory
// RecordTrajectory writes one target's trajectory as step rows, starting with
// the step-0 prior row, atomically.
func (s *Store) RecordTrajectory(runID string, traj oracle.Trajectory) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO trajectory_points (run_id, target_id, step, entropy_bits, attribute, candidates)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(runID, traj.TargetID, 0, traj.PriorBits, nil, traj.Objects); err != nil {
		return fmt.Errorf("insert prior: %w", err)
	}
	for i, step := range traj.Steps {
		if _, err := stmt.Exec(runID, traj.TargetID, i+1, step.EntropyBits, step.Attribute, step.Candidates); err != nil {
			return fmt.Errorf("insert step %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// #endregion record-trajectory

// #region get-run
// Run retrieves a single run row by ID.
func (s *Store) Run(runID string) (RunRecord, error) {
	var rec RunRecord
	var createdStr string

	err := s.db.QueryRow(
		`SELECT run_id, dataset_name, object_count, attribute_count, max_steps, expected_questions, created_at
		 FROM oracle_runs WHERE run_id = ?`, runID,
	).Scan(&rec.RunID, &rec.DatasetName, &rec.ObjectCount, &rec.AttributeCount,
		&rec.MaxSteps, &rec.ExpectedQuestions, &createdStr)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, dataset_name, object_count, attribute_count, max_steps, expected_questions, created_at
		 FROM oracle_runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var createdStr string
		if err := rows.Scan(&rec.RunID, &rec.DatasetName, &rec.ObjectCount, &rec.AttributeCount,
			&rec.MaxSteps, &rec.ExpectedQuestions, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-runs

// #region trajectory-points
// TrajectoryPoints returns one target's step rows for a run, ordered by step.
func (s *Store) TrajectoryPoints(runID, targetID string) ([]TrajectoryPoint, error) {
	rows, err := s.db.Query(
		`SELECT run_id, target_id, step, entropy_bits, attribute, candidates
		 FROM trajectory_points WHERE run_id = ? AND target_id = ? ORDER BY step ASC`,
		runID, targetID,
	)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	var points []TrajectoryPoint
	for rows.Next() {
		var p TrajectoryPoint
		var attr sql.NullString
		if err := rows.Scan(&p.RunID, &p.TargetID, &p.Step, &p.EntropyBits, &attr, &p.Candidates); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		if attr.Valid {
			p.Attribute = attr.String
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// #endregion trajectory-points

// #region run-targets
// RunTargets lists the distinct target IDs recorded for a run.
func (s *Store) RunTargets(runID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT target_id FROM trajectory_points WHERE run_id = ? ORDER BY target_id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// #endregion run-targets
