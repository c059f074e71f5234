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

import (
	"sort"
	"strings"

	"lotra/utils"
)

// cycleProximity is the max nr of days between the start dates of consecutive events of the same cycle.
const cycleProximity = 4

// Cycle represents a cluster of events that start close together in time.
type Cycle struct {
	ID             int      //1-based, in chronological order
	Start, End     Date     //earliest start and latest end of the cycle's events
	Regimen        []string //distinct drugs of the cycle, sorted
	PriorRegimen   []string //drugs of the preceding cycle, nil for the first cycle
	ContinuesPrior bool     //same drugs as the preceding cycle
}

// BuildCycles groups sorted events into cycles. A new cycle starts when an event starts more than four days after the
// previous event. Every event is annotated with its cycle and re-dated to the cycle's start and end.
func BuildCycles(events []*Event, continuity ContinuityCheck) []*Cycle {
	var cycles []*Cycle
	var current *Cycle
	for i, e := range events {
		if i == 0 || DaysBetween(events[i-1].OriginalStart, e.OriginalStart) > cycleProximity {
			current = &Cycle{ID: len(cycles) + 1, Start: e.OriginalStart, End: e.OriginalEnd}
			cycles = append(cycles, current)
		}
		e.Cycle = current.ID
		current.Start = MinDate(current.Start, e.OriginalStart)
		current.End = MaxDate(current.End, e.OriginalEnd)
		current.Regimen = appendDrug(current.Regimen, e.Drug)
	}
	for i, c := range cycles {
		sort.Strings(c.Regimen)
		if i > 0 {
			c.PriorRegimen = cycles[i-1].Regimen
			c.ContinuesPrior = sameCycleRegimen(c.Regimen, c.PriorRegimen, continuity)
		}
	}
	for _, e := range events {
		c := cycles[e.Cycle-1]
		e.Start, e.End = c.Start, c.End
		e.ContinuesPrior = c.ContinuesPrior
	}
	return cycles
}

// appendDrug appends a drug to a list of drugs, unless the drug is already a member of that list.
func appendDrug(drugs []string, drug string) []string {
	if utils.MemberString(drug, drugs) {
		return drugs
	}
	return append(drugs, drug)
}

// sameCycleRegimen compares the sorted drug lists of two cycles.
func sameCycleRegimen(current, prior []string, continuity ContinuityCheck) bool {
	if continuity == ContinuityLegacy {
		cur, pr := strings.Join(current, ", "), strings.Join(prior, ", ")
		return containsAllRunes(pr, cur) && containsAllRunes(cur, pr)
	}
	if len(current) != len(prior) {
		return false
	}
	for i := range current {
		if current[i] != prior[i] {
			return false
		}
	}
	return true
}

// containsAllRunes checks that every character of sub occurs somewhere in s.
func containsAllRunes(s, sub string) bool {
	for _, r := range sub {
		if !strings.ContainsRune(s, r) {
			return false
		}
	}
	return true
}
