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
	"github.com/rs/zerolog/log"
)

// LineState is the state carried from one line of a patient to the next.
type LineState struct {
	Number            int  //number of the previous line, 0 before the first line
	IsNextMaintenance bool //the previous line announced continuation maintenance
}

// GetLineData derives the line that starts with the first of the remaining events, and returns it together with the
// state for the next line.
func GetLineData(events []*Event, regimen Regimen, state LineState, cfg *Config) (*Line, LineState) {
	params, cases := cfg.Params, cfg.Cases
	b := scanLine(events, regimen, cfg)

	summary := GetDrugSummary(events, params.RegimenWindow, b.end)
	name := CheckLineName(b.regimen, summary, cases, params.RegimenWindow, params.DrugSwitchIgnore)
	line := &Line{
		Name:              name.Name,
		Type:              LineTypeOf(name.Name),
		Start:             name.Start,
		End:               b.end,
		NextStart:         b.next,
		EndReason:         b.kind.reason(),
		IsNextMaintenance: state.IsNextMaintenance,
		AddExemption:      b.addExemption,
		SubExemption:      b.subExemption,
		GapExemption:      b.gapExemption,
		NameExemption:     name.Switched,
	}
	if len(events) > 0 {
		line.PID = events[0].PID
	}
	if b.adjustedStart != nil {
		line.Start = *b.adjustedStart
	}

	// only drugs used during the line can be dropped from it, so that the line never ends before it starts
	during := summary.Filter(func(exposure *DrugExposure) bool { return !exposure.LastSeen.Before(line.Start) })
	if line.Type == Combo && params.ComboDroppedLineAdvance {
		line.End, line.NextStart, line.EndReason = checkComboDroppedDrugs(during, line.End, line.NextStart, line.EndReason)
	}

	number := state.Number
	switch {
	case number == 1:
		line.IsMaintenance = state.IsNextMaintenance || cases.IsEligibleSwitchMaintenance(b.regimen, number, params.SwitchMaintenance)
		line.IsNextMaintenance = false
	case line.Type == Combo && number == 0:
		line.IsNextMaintenance = cases.IsEligibleContinuationMaintenance(b.regimen, during, number)
		if line.IsNextMaintenance {
			group := during.Filter(func(exposure *DrugExposure) bool { return b.regimen.Has(exposure.Drug) })
			lastDropped, _ := group.Dropped().LatestLastSeen()
			line.End = lastDropped
			line.NextStart = datePtr(lastDropped.AddDays(params.RegimenWindow))
			line.EndReason = EnteringContinuationMaintenance
		}
	}
	if !line.IsMaintenance || number == 0 {
		number++
	}
	line.Number = number
	return line, LineState{Number: number, IsNextMaintenance: line.IsNextMaintenance}
}

// SnipEvents splits sorted events into the events that start before the cut date, and those that start on or after it.
func SnipEvents(events []*Event, cut Date) (before, after []*Event) {
	for _, e := range events {
		if e.Start.Before(cut) {
			before = append(before, e)
		} else {
			after = append(after, e)
		}
	}
	return before, after
}

// checkLine verifies the invariants of a derived line.
func checkLine(line *Line) error {
	if line.End.Before(line.Start) {
		return &InvariantError{PID: line.PID, LineNumber: line.Number, Reason: "line " + line.Name + " ends " + line.End.String() + " before it starts " + line.Start.String()}
	}
	if line.NextStart != nil && line.NextStart.Before(line.End) {
		return &InvariantError{PID: line.PID, LineNumber: line.Number, Reason: "next line starts " + line.NextStart.String() + " before line " + line.Name + " ends " + line.End.String()}
	}
	return nil
}

// ProcessPatient derives the lines of therapy of a patient. Lines are cut from the patient's events one at a time:
// the events that start before the next line's start are assigned to the current line, the others are processed
// again until no events remain or the data is exhausted.
func ProcessPatient(p *Patient, cfg *Config) (*PatientResult, error) {
	if err := ValidateEvents(p); err != nil {
		return nil, err
	}
	events := copyEvents(p.Events)
	sorted := &Patient{PID: p.PID, Events: events}
	SortEvents(sorted)
	BuildCycles(events, cfg.Params.Continuity)
	indexDate := sorted.IndexDate()

	result := &PatientResult{PID: p.PID}
	state := LineState{}
	for len(events) > 0 {
		regimen := GetRegimen(events, cfg.Params.RegimenWindow)
		var line *Line
		line, state = GetLineData(events, regimen, state, cfg)
		line.PID = p.PID
		line.Indication = cfg.Indication
		line.IndexDate = indexDate
		if err := checkLine(line); err != nil {
			return nil, err
		}
		doses, remaining := events, []*Event(nil)
		if line.NextStart != nil {
			if !line.NextStart.After(events[0].Start) {
				return nil, &InvariantError{PID: p.PID, LineNumber: line.Number, Reason: "next line start " + line.NextStart.String() + " does not advance past " + events[0].Start.String()}
			}
			doses, remaining = SnipEvents(events, *line.NextStart)
		}
		result.Lines = append(result.Lines, line)
		for _, e := range doses {
			result.Doses = append(result.Doses, &Dose{
				PID:        p.PID,
				Drug:       e.Drug,
				Start:      e.OriginalStart,
				End:        e.OriginalEnd,
				LineNumber: line.Number,
				LineName:   line.Name,
			})
		}
		log.Debug().Str("patient", p.PID).Int("line", line.Number).Str("name", line.Name).
			Str("reason", string(line.EndReason)).Int("doses", len(doses)).Msg("derived line")
		events = remaining
	}
	return result, nil
}
