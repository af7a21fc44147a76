package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/api"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrAmbiguousID is returned when an id prefix matches more than one
// interview.
var ErrAmbiguousID = errors.New("id prefix matches more than one interview")

// Store provides access to the interview history database.
type Store struct {
	db *sql.DB
}

// DataDir returns the directory holding the database and log file.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "interview-agent")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "interview-agent")
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "history.sqlite")
}

// Open opens or creates the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; the pragmas above apply per connection.
	db.SetMaxOpenConns(1)

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	// m.Close would close db as well; only the source is ours to release.
	defer src.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveInterview inserts iv and its answers in one transaction. An empty ID
// is filled with a new UUID.
func (s *Store) SaveInterview(iv *Interview) error {
	if iv.ID == "" {
		iv.ID = uuid.NewString()
	}
	if iv.CompletedAt.IsZero() {
		iv.CompletedAt = time.Now()
	}
	if iv.StartedAt.IsZero() {
		iv.StartedAt = iv.CompletedAt
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	r := iv.Report
	if _, err := tx.Exec(`
		INSERT INTO interviews (id, sessionId, resumeName, startedAt, completedAt,
			overallScore, recommendation, summary, strongAreas, weakAreas, improvementRoadmap)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, iv.ID, iv.SessionID, iv.ResumeName, unixFromTime(iv.StartedAt), unixFromTime(iv.CompletedAt),
		r.OverallScore, string(r.HireRecommendation), r.Summary, r.StrongAreas, r.WeakAreas,
		r.ImprovementRoadmap); err != nil {
		return fmt.Errorf("insert interview: %w", err)
	}

	for i := range iv.Answers {
		a := &iv.Answers[i]
		if a.SequenceNumber == 0 {
			a.SequenceNumber = i + 1
		}
		e := a.Evaluation
		if _, err := tx.Exec(`
			INSERT INTO answers (interviewId, sequenceNumber, question, answer,
				technicalScore, clarityScore, structureScore, relevanceScore,
				strengths, weaknesses, improvementTip)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, iv.ID, a.SequenceNumber, a.Question, a.Answer,
			e.TechnicalScore, e.ClarityScore, e.StructureScore, e.RelevanceScore,
			e.Strengths, e.Weaknesses, e.ImprovementTip); err != nil {
			return fmt.Errorf("insert answer %d: %w", a.SequenceNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const interviewColumns = `id, sessionId, resumeName, startedAt, completedAt,
	overallScore, recommendation, summary, strongAreas, weakAreas, improvementRoadmap`

// Interviews returns the most recent interviews first, without answers. A
// non-positive limit returns all of them.
func (s *Store) Interviews(limit int) ([]Interview, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT `+interviewColumns+`
		FROM interviews
		ORDER BY completedAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query interviews: %w", err)
	}
	defer rows.Close()

	var out []Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *iv)
	}
	return out, rows.Err()
}

// Interview returns the interview whose id equals or starts with id, with
// its answers in order. It returns nil when nothing matches.
func (s *Store) Interview(id string) (*Interview, error) {
	if id == "" {
		return nil, nil
	}
	rows, err := s.db.Query(`
		SELECT `+interviewColumns+`
		FROM interviews
		WHERE id = ? OR id LIKE ? || '%'
		ORDER BY id = ? DESC
		LIMIT 2
	`, id, id, id)
	if err != nil {
		return nil, fmt.Errorf("query interview: %w", err)
	}
	defer rows.Close()

	var found []*Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(found) == 0:
		return nil, nil
	case len(found) > 1 && found[0].ID != id:
		return nil, ErrAmbiguousID
	}

	iv := found[0]
	iv.Answers, err = s.answers(iv.ID)
	if err != nil {
		return nil, err
	}
	return iv, nil
}

func (s *Store) answers(interviewID string) ([]Answer, error) {
	rows, err := s.db.Query(`
		SELECT sequenceNumber, question, answer, technicalScore, clarityScore,
			structureScore, relevanceScore, strengths, weaknesses, improvementTip
		FROM answers
		WHERE interviewId = ?
		ORDER BY sequenceNumber ASC
	`, interviewID)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var out []Answer
	for rows.Next() {
		var a Answer
		e := &a.Evaluation
		if err := rows.Scan(&a.SequenceNumber, &a.Question, &a.Answer,
			&e.TechnicalScore, &e.ClarityScore, &e.StructureScore, &e.RelevanceScore,
			&e.Strengths, &e.Weaknesses, &e.ImprovementTip); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInterview(row scanner) (*Interview, error) {
	var iv Interview
	var startedAt, completedAt float64
	var rec string
	r := &iv.Report

	if err := row.Scan(&iv.ID, &iv.SessionID, &iv.ResumeName, &startedAt, &completedAt,
		&r.OverallScore, &rec, &r.Summary, &r.StrongAreas, &r.WeakAreas,
		&r.ImprovementRoadmap); err != nil {
		return nil, fmt.Errorf("scan interview: %w", err)
	}
	r.HireRecommendation = api.Recommendation(rec)
	iv.StartedAt = timeFromUnix(startedAt)
	iv.CompletedAt = timeFromUnix(completedAt)
	return &iv, nil
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
