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

import "sort"

// DrugExposure summarizes the use of one drug within a line.
type DrugExposure struct {
	PID       string
	Drug      string
	FirstSeen Date //earliest start of the drug
	LastSeen  Date //latest end of the drug
	Dropped   bool //last seen before the final regimen window of the line
}

// DrugSummary contains one exposure per distinct drug of a line, sorted by first seen date.
type DrugSummary []*DrugExposure

// GetDrugSummary summarizes the events that start on or before the line end. A drug is dropped when it was last seen
// more than window days before the line end.
func GetDrugSummary(events []*Event, window int, lineEnd Date) DrugSummary {
	exposures := map[string]*DrugExposure{}
	var summary DrugSummary
	for _, e := range events {
		if e.Start.After(lineEnd) {
			continue
		}
		exposure, ok := exposures[e.Drug]
		if !ok {
			exposure = &DrugExposure{PID: e.PID, Drug: e.Drug, FirstSeen: e.Start, LastSeen: e.End}
			exposures[e.Drug] = exposure
			summary = append(summary, exposure)
			continue
		}
		exposure.FirstSeen = MinDate(exposure.FirstSeen, e.Start)
		exposure.LastSeen = MaxDate(exposure.LastSeen, e.End)
	}
	dropLimit := lineEnd.AddDays(-window)
	for _, exposure := range summary {
		exposure.Dropped = exposure.LastSeen.Before(dropLimit)
	}
	sort.SliceStable(summary, func(i, j int) bool {
		return DateSmallerThan(summary[i].FirstSeen, summary[j].FirstSeen)
	})
	return summary
}

// Filter returns the exposures for which keep returns true.
func (s DrugSummary) Filter(keep func(*DrugExposure) bool) DrugSummary {
	var result DrugSummary
	for _, exposure := range s {
		if keep(exposure) {
			result = append(result, exposure)
		}
	}
	return result
}

// Dropped returns the dropped exposures.
func (s DrugSummary) Dropped() DrugSummary {
	return s.Filter(func(exposure *DrugExposure) bool { return exposure.Dropped })
}

// LatestLastSeen returns the latest last seen date of the exposures, and false if there are none.
func (s DrugSummary) LatestLastSeen() (Date, bool) {
	if len(s) == 0 {
		return Date{}, false
	}
	latest := s[0].LastSeen
	for _, exposure := range s[1:] {
		latest = MaxDate(latest, exposure.LastSeen)
	}
	return latest, true
}

// EarliestFirstSeen returns the earliest first seen date of the exposures, and false if there are none.
func (s DrugSummary) EarliestFirstSeen() (Date, bool) {
	if len(s) == 0 {
		return Date{}, false
	}
	earliest := s[0].FirstSeen
	for _, exposure := range s[1:] {
		earliest = MinDate(earliest, exposure.FirstSeen)
	}
	return earliest, true
}

// Drugs returns the drug names of the exposures.
func (s DrugSummary) Drugs() []string {
	drugs := make([]string, len(s))
	for i, exposure := range s {
		drugs[i] = exposure.Drug
	}
	return drugs
}
