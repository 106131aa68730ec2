// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index mirrors archived evidence rows into a local SQLite database
// so accepted studies can be queried offline. The Airtable archive remains
// the source of truth; a mirror write failure never fails a run.
package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/doctox25/longevity-evidence-scout/internal/archive"
)

// Store manages the local evidence mirror.
type Store struct {
	db *sql.DB
}

// Open opens or creates the mirror database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS evidence (
			evidence_id TEXT PRIMARY KEY,
			study_title TEXT NOT NULL,
			category TEXT NOT NULL,
			journal TEXT,
			year TEXT,
			evidence_type TEXT,
			sample_size TEXT,
			score INTEGER NOT NULL,
			key_findings TEXT,
			effect_size TEXT,
			source_url TEXT,
			added_date TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evidence_category ON evidence(category)`,
		`CREATE INDEX IF NOT EXISTS idx_evidence_score ON evidence(score)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Insert mirrors one archived row.
func (s *Store) Insert(ctx context.Context, f archive.EvidenceFields) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO evidence
		 (evidence_id, study_title, category, journal, year, evidence_type,
		  sample_size, score, key_findings, effect_size, source_url, added_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.EvidenceID, f.StudyTitle, f.LongevityDomain, f.Journal, f.Year,
		f.EvidenceType, f.SampleSize, f.Score, f.KeyFindings, f.EffectSize,
		f.SourceURL, f.AddedDate,
	)
	if err != nil {
		return fmt.Errorf("inserting evidence %s: %w", f.EvidenceID, err)
	}
	return nil
}

// Entry is one mirrored evidence row as returned by List.
type Entry struct {
	EvidenceID   string `json:"evidence_id"`
	StudyTitle   string `json:"study_title"`
	Category     string `json:"category"`
	Journal      string `json:"journal"`
	Year         string `json:"year"`
	EvidenceType string `json:"evidence_type"`
	Score        int    `json:"score"`
	SourceURL    string `json:"source_url"`
	AddedDate    string `json:"added_date"`
}

// Filter selects mirrored rows for List.
type Filter struct {
	// Category restricts results to one taxonomy category when non-empty.
	Category string

	// MinScore restricts results to rows at or above the score.
	MinScore int

	// Limit caps the result count; zero means no cap.
	Limit int
}

// List returns mirrored rows matching the filter, strongest evidence first,
// most recent first within a score.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := `SELECT evidence_id, study_title, category, journal, year,
	                 evidence_type, score, source_url, added_date
	          FROM evidence WHERE score >= ?`
	args := []any{f.MinScore}

	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	query += ` ORDER BY score DESC, added_date DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying evidence: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.EvidenceID, &e.StudyTitle, &e.Category, &e.Journal,
			&e.Year, &e.EvidenceType, &e.Score, &e.SourceURL, &e.AddedDate); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return entries, nil
}

// Count returns the number of mirrored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM evidence`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting evidence: %w", err)
	}
	return n, nil
}
