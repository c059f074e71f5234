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

package app

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/rs/zerolog/log"

	"lotra/store"
	"lotra/therapy"
	"lotra/utils"
)

const (
	ProgramVersion = 0.1
	ProgramName    = "lotra"
)

// ProgramMessage returns the name and version of the program.
func ProgramMessage() string {
	return fmt.Sprint(ProgramName, " version ", ProgramVersion, " compiled with ", runtime.Version())
}

// maxPrintedLines is the nr of derived lines printed to standard output.
const maxPrintedLines = 100

// loadEvents reads the medication events from PostgreSQL when a database URL is configured, and from the event
// table file otherwise.
func loadEvents(ctx context.Context, opts *Options) (*therapy.PatientMap, error) {
	if opts.DatabaseURL == "" {
		return ParseMedicationEvents(opts.InputFile(), opts.IgnoreEndDates)
	}
	pool, err := store.NewPool(ctx, opts.DatabaseURL, int32(utils.MaxInt(runtime.GOMAXPROCS(0), 2)), 1)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	patients, err := store.NewPostgresSource(pool, opts.EventsTable).LoadEvents(ctx, opts.IgnoreEndDates)
	if err != nil {
		return nil, err
	}
	log.Info().Str("table", opts.EventsTable).Int("patients", len(patients.PIDMap)).Int("events", patients.Ctr).
		Msg("loaded medication events")
	return patients, nil
}

// Execute performs a run: it loads the reference tables and the medication events, derives the lines of therapy of
// all patients, and writes the results. The summary of the run is printed to stdout.
func Execute(ctx context.Context, opts *Options, params therapy.Parameters, stdout io.Writer) (therapy.Summary, error) {
	//1. Parse inputs
	cases, err := LoadCases(opts.ReferenceDir, opts.Indication)
	if err != nil {
		return therapy.Summary{}, err
	}
	patients, err := loadEvents(ctx, opts)
	if err != nil {
		return therapy.Summary{}, err
	}
	filters, err := GetPatientFilters(opts)
	if err != nil {
		return therapy.Summary{}, err
	}
	if len(filters) > 0 {
		patients = therapy.ApplyPatientFilters(filters, patients)
		log.Info().Int("patients", len(patients.PIDMap)).Int("events", patients.Ctr).Msg("applied patient filters")
	}
	cfg := &therapy.Config{Indication: opts.Indication, Params: params, Cases: cases}
	log.Info().Str("indication", opts.Indication).
		Int(RegimenWindowKey, params.RegimenWindow).
		Int(DiscontinuationGapKey, params.DiscontinuationGap).
		Bool(DrugSwitchIgnoreKey, params.DrugSwitchIgnore).
		Bool(ComboDroppedLineAdvanceKey, params.ComboDroppedLineAdvance).
		Str("continuity", string(params.Continuity)).
		Str("switchMaintenance", string(params.SwitchMaintenance)).
		Msg("deriving lines of therapy")

	//2. Derive the lines of therapy
	results, runErr := therapy.Run(patients.Patients(), cfg)
	if runErr != nil {
		failed := therapy.FailedPatients(runErr)
		log.Error().Err(runErr).Int("failedPatients", len(failed)).Msg("patients could not be processed")
		if !opts.KeepGoing {
			return therapy.Summary{}, runErr
		}
	}

	//3. Write the results
	path := opts.OutputPath()
	if err := PrintResultsToFile(results, path); err != nil {
		return therapy.Summary{}, err
	}
	log.Info().Str("path", path).Msg("wrote lines of therapy")
	if opts.SQLitePath != "" {
		if err := saveToSQLite(ctx, opts.SQLitePath, store.NewRun(opts.Indication, params), results); err != nil {
			return therapy.Summary{}, err
		}
	}
	summary := therapy.MetricsFromResults(results)
	fmt.Fprintln(stdout, "Derived lines: ")
	printed := 0
	for _, r := range results {
		for _, line := range r.Lines[:utils.MinInt(len(r.Lines), maxPrintedLines-printed)] {
			PrintLine(stdout, line)
			printed++
		}
		if printed >= maxPrintedLines {
			break
		}
	}
	PrintSummary(stdout, summary)
	return summary, runErr
}

func saveToSQLite(ctx context.Context, path string, run store.Run, results []*therapy.PatientResult) error {
	db, err := store.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.SaveRun(ctx, run, results); err != nil {
		return err
	}
	log.Info().Str("sqlite", path).Str("run", run.ID.String()).Msg("stored lines of therapy")
	return nil
}
