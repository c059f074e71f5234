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

package therapy

import "math"

// Collecting metrics for the derived lines of therapy

// Summary contains descriptive statistics of a run.
type Summary struct {
	Patients            int
	Lines               int
	Doses               int
	MeanLinesPerPatient float64
	MeanLineDays        float64 //mean nr of days from line start to line end
	StdDevLineDays      float64
	MaintenanceLines    int
	ByType              map[LineType]int
	ByEndReason         map[EndReason]int
	MaxLineNumber       int
}

// LineDays computes the nr of days a line lasts, counting both the start and end day.
func LineDays(line *Line) int {
	return DaysBetween(line.Start, line.End) + 1
}

// MetricsFromResults computes:
// * the nr of patients, lines, and doses, and the mean nr of lines per patient
// * mean and standard deviation of the line durations
// * the nr of lines per line type and per end reason, and the nr of maintenance lines
func MetricsFromResults(results []*PatientResult) Summary {
	s := Summary{ByType: map[LineType]int{}, ByEndReason: map[EndReason]int{}}
	totalDays := 0
	for _, r := range results {
		s.Patients++
		s.Doses += len(r.Doses)
		for _, line := range r.Lines {
			s.Lines++
			totalDays += LineDays(line)
			s.ByType[line.Type]++
			s.ByEndReason[line.EndReason]++
			if line.IsMaintenance {
				s.MaintenanceLines++
			}
			if line.Number > s.MaxLineNumber {
				s.MaxLineNumber = line.Number
			}
		}
	}
	if s.Patients == 0 || s.Lines == 0 {
		return s
	}
	s.MeanLinesPerPatient = float64(s.Lines) / float64(s.Patients)
	s.MeanLineDays = float64(totalDays) / float64(s.Lines)
	stdDev := 0.0
	for _, r := range results {
		for _, line := range r.Lines {
			days := float64(LineDays(line))
			stdDev = stdDev + ((s.MeanLineDays - days) * (s.MeanLineDays - days))
		}
	}
	s.StdDevLineDays = math.Sqrt(stdDev / float64(s.Lines))
	return s
}
