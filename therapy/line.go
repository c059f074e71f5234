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

import "strings"

// LineType distinguishes single drug lines from combination lines.
type LineType string

const (
	Mono  LineType = "mono"
	Combo LineType = "combo"
)

// LineTypeOf derives the line type from a canonical line name.
func LineTypeOf(name string) LineType {
	if len(strings.Split(name, ",")) > 1 {
		return Combo
	}
	return Mono
}

// EndReason explains why a line ended.
type EndReason string

const (
	EndOfData                       EndReason = "end of data"
	DiscontinuationGapExceeded      EndReason = "discontinuation gap exceeded"
	NewRegimenIntroduced            EndReason = "new regimen introduced"
	ComboDrugDropped                EndReason = "combo drug dropped"
	EnteringContinuationMaintenance EndReason = "entering continuation maintenance"
)

// Line represents a line of therapy: a contiguous period during which a patient receives one regimen.
type Line struct {
	PID               string
	Number            int //1-based, maintenance lines keep the number of the line they follow
	Name              string
	Type              LineType
	Start, End        Date
	NextStart         *Date //start of the next line, nil when the data is exhausted
	EndReason         EndReason
	IsMaintenance     bool
	IsNextMaintenance bool //the next line enters continuation maintenance
	AddExemption      bool //an added drug did not end the line
	SubExemption      bool //a substituted drug did not end the line
	GapExemption      bool //a gap was ignored because of an episode gap drug
	NameExemption     bool //the line was renamed after a switch within the regimen window
	Indication        string
	IndexDate         Date //start of the patient's first event
}

// Dose represents a medication event assigned to a line.
type Dose struct {
	PID        string
	Drug       string
	Start, End Date //dates as they occur in the input
	LineNumber int
	LineName   string
}

// PatientResult contains the lines of a patient and the events assigned to each of them.
type PatientResult struct {
	PID   string
	Lines []*Line
	Doses []*Dose
}
