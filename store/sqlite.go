// PTRA: Patient Trajectory Analysis Library
// Copyright (c) 2022 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/ptra/blob/master/LICENSE.txt>.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"lotra/therapy"
)

// Run identifies one execution of the line derivation whose results are stored.
type Run struct {
	ID         uuid.UUID
	Indication string
	Params     therapy.Parameters
	CreatedAt  time.Time
}

// NewRun creates a run with a fresh ID.
func NewRun(indication string, params therapy.Parameters) Run {
	return Run{ID: uuid.New(), Indication: indication, Params: params, CreatedAt: time.Now().UTC()}
}

// SQLiteStore stores lines of therapy and the doses assigned to them in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens the SQLite database at dbPath, creating the file and the schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		indication TEXT NOT NULL,
		r_window INTEGER NOT NULL,
		l_disgap INTEGER NOT NULL,
		drug_switch_ignore INTEGER NOT NULL,
		combo_dropped_line_advance INTEGER NOT NULL,
		continuity TEXT NOT NULL,
		switch_maintenance TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lines (
		run_id TEXT NOT NULL REFERENCES runs(id),
		patient_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		line_number INTEGER NOT NULL,
		line_name TEXT NOT NULL,
		line_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		next_start_date TEXT,
		end_reason TEXT NOT NULL,
		is_maintenance INTEGER NOT NULL,
		is_next_maintenance INTEGER NOT NULL,
		add_exemption INTEGER NOT NULL,
		sub_exemption INTEGER NOT NULL,
		gap_exemption INTEGER NOT NULL,
		name_exemption INTEGER NOT NULL,
		indication TEXT NOT NULL,
		index_date TEXT NOT NULL,
		PRIMARY KEY (run_id, patient_id, seq)
	);

	CREATE TABLE IF NOT EXISTS doses (
		run_id TEXT NOT NULL REFERENCES runs(id),
		patient_id TEXT NOT NULL,
		med_name TEXT NOT NULL,
		med_start TEXT NOT NULL,
		med_end TEXT NOT NULL,
		line_number INTEGER NOT NULL,
		line_name TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lines_patient ON lines(run_id, patient_id);
	CREATE INDEX IF NOT EXISTS idx_doses_patient ON doses(run_id, patient_id);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveRun stores a run with all lines and doses of its results in a single transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run, results []*therapy.PatientResult) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, indication, r_window, l_disgap, drug_switch_ignore, combo_dropped_line_advance, continuity, switch_maintenance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Indication, run.Params.RegimenWindow, run.Params.DiscontinuationGap,
		run.Params.DrugSwitchIgnore, run.Params.ComboDroppedLineAdvance, string(run.Params.Continuity),
		string(run.Params.SwitchMaintenance), run.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	lineStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO lines (run_id, patient_id, seq, line_number, line_name, line_type, start_date, end_date,
			next_start_date, end_reason, is_maintenance, is_next_maintenance, add_exemption, sub_exemption,
			gap_exemption, name_exemption, indication, index_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare line insert: %w", err)
	}
	defer lineStmt.Close()

	doseStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO doses (run_id, patient_id, med_name, med_start, med_end, line_number, line_name)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare dose insert: %w", err)
	}
	defer doseStmt.Close()

	runID := run.ID.String()
	for _, r := range results {
		for seq, line := range r.Lines {
			var next sql.NullString
			if line.NextStart != nil {
				next = sql.NullString{String: line.NextStart.String(), Valid: true}
			}
			if _, err = lineStmt.ExecContext(ctx,
				runID, line.PID, seq, line.Number, line.Name, string(line.Type), line.Start.String(), line.End.String(),
				next, string(line.EndReason), line.IsMaintenance, line.IsNextMaintenance, line.AddExemption,
				line.SubExemption, line.GapExemption, line.NameExemption, line.Indication, line.IndexDate.String(),
			); err != nil {
				return fmt.Errorf("failed to insert line for patient %s: %w", line.PID, err)
			}
		}
		for _, dose := range r.Doses {
			if _, err = doseStmt.ExecContext(ctx,
				runID, dose.PID, dose.Drug, dose.Start.String(), dose.End.String(), dose.LineNumber, dose.LineName,
			); err != nil {
				return fmt.Errorf("failed to insert dose for patient %s: %w", dose.PID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanLine scans a row of the lines table into a Line.
func scanLine(s scanner) (*therapy.Line, error) {
	line := &therapy.Line{}
	var lineType, reason, start, end, indexDate string
	var next sql.NullString
	err := s.Scan(
		&line.PID, &line.Number, &line.Name, &lineType, &start, &end, &next, &reason,
		&line.IsMaintenance, &line.IsNextMaintenance, &line.AddExemption, &line.SubExemption,
		&line.GapExemption, &line.NameExemption, &line.Indication, &indexDate,
	)
	if err != nil {
		return nil, err
	}
	line.Type = therapy.LineType(lineType)
	line.EndReason = therapy.EndReason(reason)
	if line.Start, err = therapy.ParseDate(start); err != nil {
		return nil, err
	}
	if line.End, err = therapy.ParseDate(end); err != nil {
		return nil, err
	}
	if line.IndexDate, err = therapy.ParseDate(indexDate); err != nil {
		return nil, err
	}
	if next.Valid {
		d, err := therapy.ParseDate(next.String)
		if err != nil {
			return nil, err
		}
		line.NextStart = &d
	}
	return line, nil
}

// Lines returns the lines of a patient stored for a run, in the order in which they were derived.
func (s *SQLiteStore) Lines(ctx context.Context, runID uuid.UUID, pid string) ([]*therapy.Line, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT patient_id, line_number, line_name, line_type, start_date, end_date, next_start_date, end_reason,
			is_maintenance, is_next_maintenance, add_exemption, sub_exemption, gap_exemption, name_exemption,
			indication, index_date
		FROM lines WHERE run_id = ? AND patient_id = ? ORDER BY seq`, runID.String(), pid)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()
	var lines []*therapy.Line
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Runs returns the IDs of the stored runs of an indication, oldest first.
func (s *SQLiteStore) Runs(ctx context.Context, indication string) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM runs WHERE indication = ? ORDER BY created_at, id", indication)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", id, err)
		}
		ids = append(ids, runID)
	}
	return ids, rows.Err()
}

// DoseCount returns the nr of doses stored for a run.
func (s *SQLiteStore) DoseCount(ctx context.Context, runID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM doses WHERE run_id = ?", runID.String()).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
