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

// The scan looks for the end of the line that starts with the first remaining event. It walks over consecutive pairs
// of events and stops at the first pair that ends the line. The outcome is a boundary, which is then refined into a
// Line by GetLineData.

type boundaryKind int

const (
	endOfDataBoundary boundaryKind = iota
	gapBoundary
	cycleSwitchBoundary //new drugs in a cycle that does not continue the previous one
	newRegimenBoundary
)

func (k boundaryKind) reason() EndReason {
	switch k {
	case gapBoundary:
		return DiscontinuationGapExceeded
	case cycleSwitchBoundary, newRegimenBoundary:
		return NewRegimenIntroduced
	default:
		return EndOfData
	}
}

// boundary is the outcome of the first pass over the events of a line.
type boundary struct {
	kind          boundaryKind
	end           Date
	next          *Date   //start of the next line, nil at the end of the data
	regimen       Regimen //replaced when a cycle switch introduces new drugs
	adjustedStart *Date   //set by a cycle switch
	// exemptions of the last pair that was evaluated
	addExemption, subExemption, gapExemption bool
}

func datePtr(d Date) *Date {
	return &d
}

// scanLine performs the first pass over the remaining events of a patient.
func scanLine(events []*Event, regimen Regimen, cfg *Config) boundary {
	b := boundary{kind: endOfDataBoundary, regimen: regimen}
	if len(events) == 0 {
		return b
	}
	if len(events) == 1 {
		b.end = events[0].End
		return b
	}
	cases, params := cfg.Cases, cfg.Params
	decided := false
	for i := 1; i < len(events); i++ {
		current, next := events[i-1], events[i]
		b.addExemption = cases.IsEligibleAddition(next.Drug)
		b.subExemption = cases.IsEligibleSubstitution(next.Drug, b.regimen)
		b.gapExemption = cases.IsExcludedFromGap(b.regimen, events[i:])
		member := b.regimen.Has(next.Drug) || b.addExemption || b.subExemption
		gap := DaysBetween(current.End, next.Start) > params.DiscontinuationGap
		switch {
		case i == len(events)-1 && member:
			if gap && !b.gapExemption {
				b.kind, b.end, b.next = gapBoundary, current.End, datePtr(next.Start)
			} else {
				b.kind, b.end, b.next = endOfDataBoundary, next.End, nil
			}
			return b
		case gap:
			if b.gapExemption {
				continue
			}
			b.kind, b.end, b.next = gapBoundary, current.End, datePtr(next.Start)
			return b
		case !member && !current.ContinuesPrior:
			b.regimen = cycleRegimen(events, next.Cycle)
			first, last := next.Start, next.Start
			for _, e := range events {
				if b.regimen.Has(e.Drug) {
					first, last = MinDate(first, e.Start), MaxDate(last, e.Start)
				}
			}
			b.kind, b.end, b.next, b.adjustedStart = cycleSwitchBoundary, last, datePtr(next.Start), datePtr(first)
			decided = true
			if params.StopOnCycleSwitch {
				return b
			}
		case !member:
			b.kind, b.end, b.next = newRegimenBoundary, regimenCutoff(events, b.regimen, current.End), datePtr(next.Start)
			return b
		}
	}
	if !decided {
		b.kind, b.end, b.next = endOfDataBoundary, events[len(events)-1].End, nil
	}
	return b
}

// regimenCutoff determines where a line ends when a new drug is introduced. If some event starting on the current end
// date is outside the regimen, the line ends at the latest start strictly before that date, otherwise at the latest
// start on or before it.
func regimenCutoff(events []*Event, regimen Regimen, currentEnd Date) Date {
	strict := false
	for _, e := range events {
		if e.Start == currentEnd && !regimen.Has(e.Drug) {
			strict = true
			break
		}
	}
	cutoff, found := Date{}, false
	for _, e := range events {
		if e.Start.After(currentEnd) || (strict && e.Start == currentEnd) {
			continue
		}
		if !found || e.Start.After(cutoff) {
			cutoff, found = e.Start, true
		}
	}
	if !found {
		return events[0].Start
	}
	return cutoff
}
