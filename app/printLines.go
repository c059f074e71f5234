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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"lotra/therapy"
)

// Output of lines of therapy

// Output file names, relative to the output path of a run.
const (
	LinesFile = "output_lot.csv"
	DosesFile = "output_doses.csv"
)

var linesHeader = []string{"PATIENT_ID", "LINE_NUMBER", "LINE_NAME", "START_DATE", "END_DATE", "NEXT_START_DATE",
	"LINE_TYPE", "IS_MAINTENANCE", "IS_NEXT_MAINTENANCE", "ADD_EXEMPTION", "SUB_EXEMPTION", "GAP_EXEMPTION",
	"NAME_EXEMPTION", "LINE_END_REASON", "ENHANCED_COHORT", "INDEX_DATE"}

var dosesHeader = []string{"PATIENT_ID", "MED_START", "MED_END", "MED_NAME", "LINE_NUMBER", "LINE_NAME"}

// PrintLine prints a line of therapy in a human-readable format.
func PrintLine(w io.Writer, line *therapy.Line) {
	next := "-"
	if line.NextStart != nil {
		next = line.NextStart.String()
	}
	fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n", line.PID, line.Number, line.Name, line.Type, line.Start, line.End,
		next, line.EndReason)
}

// lineRecord converts a line to a record of the lines table.
func lineRecord(line *therapy.Line) []string {
	next := ""
	if line.NextStart != nil {
		next = line.NextStart.String()
	}
	return []string{
		line.PID,
		strconv.Itoa(line.Number),
		line.Name,
		line.Start.String(),
		line.End.String(),
		next,
		string(line.Type),
		strconv.FormatBool(line.IsMaintenance),
		strconv.FormatBool(line.IsNextMaintenance),
		strconv.FormatBool(line.AddExemption),
		strconv.FormatBool(line.SubExemption),
		strconv.FormatBool(line.GapExemption),
		strconv.FormatBool(line.NameExemption),
		string(line.EndReason),
		line.Indication,
		line.IndexDate.String(),
	}
}

// doseRecord converts a dose to a record of the doses table.
func doseRecord(dose *therapy.Dose) []string {
	return []string{
		dose.PID,
		dose.Start.String(),
		dose.End.String(),
		dose.Drug,
		strconv.Itoa(dose.LineNumber),
		dose.LineName,
	}
}

// writeLines writes the lines of all results as a CSV table.
func writeLines(w io.Writer, results []*therapy.PatientResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(linesHeader); err != nil {
		return err
	}
	for _, r := range results {
		for _, line := range r.Lines {
			if err := writer.Write(lineRecord(line)); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// writeDoses writes the doses of all results as a CSV table.
func writeDoses(w io.Writer, results []*therapy.PatientResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(dosesHeader); err != nil {
		return err
	}
	for _, r := range results {
		for _, dose := range r.Doses {
			if err := writer.Write(doseRecord(dose)); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// writeFile creates a file and fills it with write.
func writeFile(name string, write func(w io.Writer) error) (err error) {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(file)
}

// PrintResultsToFile writes the lines table and the doses table to the given directory, creating it if necessary.
func PrintResultsToFile(results []*therapy.PatientResult, path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(path, LinesFile), func(w io.Writer) error { return writeLines(w, results) }); err != nil {
		return fmt.Errorf("writing lines: %w", err)
	}
	if err := writeFile(filepath.Join(path, DosesFile), func(w io.Writer) error { return writeDoses(w, results) }); err != nil {
		return fmt.Errorf("writing doses: %w", err)
	}
	return nil
}

// PrintSummary prints the statistics of a run to w.
func PrintSummary(w io.Writer, s therapy.Summary) {
	fmt.Fprintf(w, "Patients: %d\n", s.Patients)
	fmt.Fprintf(w, "Lines: %d (%.2f per patient, highest line number %d)\n", s.Lines, s.MeanLinesPerPatient, s.MaxLineNumber)
	fmt.Fprintf(w, "Doses: %d\n", s.Doses)
	fmt.Fprintf(w, "Line duration: mean %.1f days, sd %.1f days\n", s.MeanLineDays, s.StdDevLineDays)
	fmt.Fprintf(w, "Maintenance lines: %d\n", s.MaintenanceLines)
	fmt.Fprintf(w, "Mono lines: %d, combo lines: %d\n", s.ByType[therapy.Mono], s.ByType[therapy.Combo])
	reasons := make([]string, 0, len(s.ByEndReason))
	for reason := range s.ByEndReason {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "Ended by %s: %d\n", reason, s.ByEndReason[therapy.EndReason(reason)])
	}
}
