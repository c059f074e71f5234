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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"lotra/therapy"
)

//The lotra program has 2 data inputs:
//A table of medication events, with one row per PATIENT_ID, MED_NAME, MED_START, MED_END.
//A directory of reference tables per indication, that define the parameters of the line derivation and the drugs that
//receive special treatment: par_general.csv, line_name.csv, line_substitutions.csv, line_additions.csv,
//line_maintenance.csv, episode_gap.csv.

// Reference table file names, relative to the directory of an indication.
const (
	GeneralParametersFile = "par_general.csv"
	LineNameFile          = "line_name.csv"
	SubstitutionsFile     = "line_substitutions.csv"
	AdditionsFile         = "line_additions.csv"
	MaintenanceFile       = "line_maintenance.csv"
	EpisodeGapFile        = "episode_gap.csv"
)

// csvRow gives access to the fields of a record by column name.
type csvRow struct {
	line    int
	record  []string
	columns map[string]int
}

// get returns the field of the given column, or the empty string when the column is missing.
func (r csvRow) get(column string) string {
	if i, ok := r.columns[strings.ToUpper(column)]; ok && i < len(r.record) {
		return strings.TrimSpace(r.record[i])
	}
	return ""
}

// readCSV reads a table with a header row and calls parse for each record. Column names are case insensitive. The
// required columns must occur in the header.
func readCSV(reader io.Reader, name string, required []string, parse func(row csvRow) error) error {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true
	header, err := csvReader.Read()
	if err == io.EOF {
		return fmt.Errorf("%s: empty table", name)
	}
	if err != nil {
		return fmt.Errorf("%s: reading header: %w", name, err)
	}
	columns := map[string]int{}
	for i, column := range header {
		columns[strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(column, "\ufeff")))] = i
	}
	for _, column := range required {
		if _, ok := columns[strings.ToUpper(column)]; !ok {
			return fmt.Errorf("%s: missing column %s", name, column)
		}
	}
	line := 1
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return fmt.Errorf("%s: line %d: %w", name, line, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if err := parse(csvRow{line: line, record: record, columns: columns}); err != nil {
			return err
		}
	}
	return nil
}

// readCSVFile opens a file and reads it with readCSV.
func readCSVFile(file string, required []string, parse func(row csvRow) error) (err error) {
	csvFile, err := os.Open(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := csvFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return readCSV(csvFile, file, required, parse)
}

// parseMedicationEvents parses a table of medication events. Every row that cannot be turned into an event is
// reported, naming the patient and the row. When ignoreEndDates is set, the end date of every event is set to its
// start date.
func parseMedicationEvents(reader io.Reader, name string, ignoreEndDates bool) (*therapy.PatientMap, error) {
	patients := therapy.NewPatientMap()
	var errs []error
	err := readCSV(reader, name, []string{"PATIENT_ID", "MED_NAME", "MED_START"}, func(row csvRow) error {
		pid := row.get("PATIENT_ID")
		drug := row.get("MED_NAME")
		start, err := therapy.ParseDate(row.get("MED_START"))
		if err != nil {
			errs = append(errs, &therapy.EventError{PID: pid, Row: row.line, Drug: drug, Reason: err.Error()})
			return nil
		}
		end := start
		if !ignoreEndDates {
			if end, err = therapy.ParseDate(row.get("MED_END")); err != nil {
				errs = append(errs, &therapy.EventError{PID: pid, Row: row.line, Drug: drug, Reason: err.Error()})
				return nil
			}
		}
		if pid == "" || drug == "" {
			errs = append(errs, &therapy.EventError{PID: pid, Row: row.line, Drug: drug, Reason: "missing patient ID or drug name"})
			return nil
		}
		event := therapy.NewEvent(pid, drug, start, end, row.line)
		if err := therapy.ValidateEvents(&therapy.Patient{PID: pid, Events: []*therapy.Event{event}}); err != nil {
			errs = append(errs, err)
			return nil
		}
		therapy.AddPatientEvent(patients, event)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	for _, p := range patients.PIDMap {
		therapy.SortEvents(p)
	}
	return patients, nil
}

// ParseMedicationEvents parses the medication event table in the given file.
func ParseMedicationEvents(file string, ignoreEndDates bool) (patients *therapy.PatientMap, err error) {
	csvFile, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := csvFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	patients, err = parseMedicationEvents(csvFile, file, ignoreEndDates)
	if err != nil {
		return nil, err
	}
	log.Info().Str("file", file).Int("patients", len(patients.PIDMap)).Int("events", patients.Ctr).Msg("parsed medication events")
	return patients, nil
}

// referenceFile returns the path of a reference table, or an error wrapping therapy.ErrMissingTable if it does not
// exist.
func referenceFile(dir, name string) (string, error) {
	file := filepath.Join(dir, name)
	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", therapy.ErrMissingTable, file)
		}
		return "", err
	}
	return file, nil
}

// parseDrugList parses a table with a single column of drug names.
func parseDrugList(file, column string) (map[string]bool, error) {
	drugs := map[string]bool{}
	err := readCSVFile(file, []string{column}, func(row csvRow) error {
		if drug := therapy.CanonicalDrugName(row.get(column)); drug != "" {
			drugs[drug] = true
		}
		return nil
	})
	return drugs, err
}

// parseSubstitutions parses the table of original drugs and their substitutes.
func parseSubstitutions(file string, cases *therapy.Cases) error {
	return readCSVFile(file, []string{"original", "substitute"}, func(row csvRow) error {
		original, substitute := row.get("original"), row.get("substitute")
		if original == "" || substitute == "" {
			return nil
		}
		cases.AddSubstitution(original, substitute)
		return nil
	})
}

// parseMaintenance parses the table of maintenance drugs and their maintenance type.
func parseMaintenance(file string, cases *therapy.Cases) error {
	return readCSVFile(file, []string{"drug_name", "maintenance_type"}, func(row csvRow) error {
		drug := row.get("drug_name")
		if drug == "" {
			return nil
		}
		mType := therapy.MaintenanceType(strings.ToUpper(row.get("maintenance_type")))
		switch mType {
		case therapy.SwitchMaintenance, therapy.ContinuationMaintenance:
			cases.AddMaintenance(drug, mType)
			return nil
		default:
			return fmt.Errorf("%s: line %d: unknown maintenance type %q", file, row.line, mType)
		}
	})
}

// LoadCases loads the reference tables of an indication from the directory dir/indication. All tables must exist.
func LoadCases(dir, indication string) (*therapy.Cases, error) {
	indicationDir := filepath.Join(dir, strings.ToUpper(indication))
	files := map[string]string{}
	for _, name := range []string{GeneralParametersFile, LineNameFile, SubstitutionsFile, AdditionsFile, MaintenanceFile, EpisodeGapFile} {
		file, err := referenceFile(indicationDir, name)
		if err != nil {
			return nil, err
		}
		files[name] = file
	}
	cases := therapy.NewCases()
	var err error
	if cases.LineName, err = parseDrugList(files[LineNameFile], "treatment"); err != nil {
		return nil, err
	}
	if cases.Additions, err = parseDrugList(files[AdditionsFile], "drug_name"); err != nil {
		return nil, err
	}
	if cases.EpisodeGap, err = parseDrugList(files[EpisodeGapFile], "drug_name"); err != nil {
		return nil, err
	}
	if err = parseSubstitutions(files[SubstitutionsFile], cases); err != nil {
		return nil, err
	}
	if err = parseMaintenance(files[MaintenanceFile], cases); err != nil {
		return nil, err
	}
	log.Info().Str("indication", strings.ToUpper(indication)).
		Int("lineName", len(cases.LineName)).
		Int("substitutions", len(cases.Substitutions)).
		Int("additions", len(cases.Additions)).
		Int("switchMaintenance", len(cases.Maintenance[therapy.SwitchMaintenance])).
		Int("continuationMaintenance", len(cases.Maintenance[therapy.ContinuationMaintenance])).
		Int("episodeGap", len(cases.EpisodeGap)).
		Msg("loaded reference tables")
	return cases, nil
}

// General parameter names, as they occur in par_general.csv and in the configuration.
const (
	RegimenWindowKey           = "r_window"
	DiscontinuationGapKey      = "l_disgap"
	DrugSwitchIgnoreKey        = "drug_switch_ignore"
	ComboDroppedLineAdvanceKey = "combo_dropped_line_advance"
)

// parseGeneralParameters parses the first row of par_general.csv. Only the columns that are present and non-empty are
// returned.
func parseGeneralParameters(file string) (map[string]interface{}, error) {
	values := map[string]interface{}{}
	first := true
	err := readCSVFile(file, nil, func(row csvRow) error {
		if !first {
			return nil
		}
		first = false
		for _, key := range []string{RegimenWindowKey, DiscontinuationGapKey} {
			if s := row.get(key); s != "" {
				n, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("%s: %s: %w", file, key, err)
				}
				values[key] = int(n)
			}
		}
		for _, key := range []string{DrugSwitchIgnoreKey, ComboDroppedLineAdvanceKey} {
			if s := row.get(key); s != "" {
				b, err := strconv.ParseBool(s)
				if err != nil {
					return fmt.Errorf("%s: %s: %w", file, key, err)
				}
				values[key] = b
			}
		}
		return nil
	})
	return values, err
}
