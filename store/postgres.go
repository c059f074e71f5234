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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lotra/therapy"
)

// NewPool connects to a PostgreSQL database.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PostgresSource reads medication events from a table with the columns patient_id, med_name, med_start, and med_end.
type PostgresSource struct {
	pool  *pgxpool.Pool
	table pgx.Identifier
}

// NewPostgresSource creates an event source for the given table, which may be qualified with a schema name.
func NewPostgresSource(pool *pgxpool.Pool, table string) *PostgresSource {
	return &PostgresSource{pool: pool, table: pgx.Identifier(strings.Split(table, "."))}
}

// LoadEvents reads all medication events. Rows are reported the way the CSV parser reports them: every malformed row
// is returned as a therapy.EventError. When ignoreEndDates is set, the end date of every event is its start date.
func (s *PostgresSource) LoadEvents(ctx context.Context, ignoreEndDates bool) (*therapy.PatientMap, error) {
	query := fmt.Sprintf(`SELECT patient_id::text, med_name, med_start, med_end FROM %s ORDER BY patient_id, med_start`,
		s.table.Sanitize())
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query medication events: %w", err)
	}
	defer rows.Close()

	patients := therapy.NewPatientMap()
	var errs []error
	row := 0
	for rows.Next() {
		row++
		var pid, drug string
		var start, end *time.Time
		if err := rows.Scan(&pid, &drug, &start, &end); err != nil {
			return nil, fmt.Errorf("scan medication event %d: %w", row, err)
		}
		var startDate, endDate therapy.Date
		if start != nil {
			startDate = therapy.NewDate(*start)
		}
		if ignoreEndDates {
			endDate = startDate
		} else if end != nil {
			endDate = therapy.NewDate(*end)
		}
		event := therapy.NewEvent(pid, drug, startDate, endDate, row)
		if err := therapy.ValidateEvents(&therapy.Patient{PID: pid, Events: []*therapy.Event{event}}); err != nil {
			errs = append(errs, err)
			continue
		}
		therapy.AddPatientEvent(patients, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read medication events: %w", err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	for _, p := range patients.PIDMap {
		therapy.SortEvents(p)
	}
	return patients, nil
}
