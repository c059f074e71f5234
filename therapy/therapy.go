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
)

// Event represents a single medication administration or dispensing record for a patient.
type Event struct {
	PID            string //patient ID from the input
	Drug           string //drug name, upper case
	Start, End     Date   //effective dates, replaced by the cycle's start and end once cycles are built
	OriginalStart  Date   //start date as it occurs in the input
	OriginalEnd    Date   //end date as it occurs in the input
	Cycle          int    //cycle ID, 1-based, 0 before cycles are built
	ContinuesPrior bool   //the event's cycle has the same drug set as the preceding cycle
	Row            int    //row of the event in its source table, for error reporting
}

// NewEvent creates an event with case folded drug name. The effective dates start out as the original dates.
func NewEvent(pid, drug string, start, end Date, row int) *Event {
	return &Event{
		PID:           pid,
		Drug:          CanonicalDrugName(drug),
		Start:         start,
		End:           end,
		OriginalStart: start,
		OriginalEnd:   end,
		Row:           row,
	}
}

// CanonicalDrugName case folds a drug name so that names from the events and the reference tables compare equal.
func CanonicalDrugName(drug string) string {
	return strings.ToUpper(strings.TrimSpace(drug))
}

// Patient represents the medication history of a single patient.
type Patient struct {
	PID    string   //ID from the input
	Events []*Event //medication events, sorted by start date once SortEvents is called
}

// IndexDate returns the start date of the patient's earliest event.
func (p *Patient) IndexDate() Date {
	if len(p.Events) == 0 {
		return Date{}
	}
	index := p.Events[0].OriginalStart
	for _, e := range p.Events[1:] {
		index = MinDate(index, e.OriginalStart)
	}
	return index
}

// AddEvent appends an event to a patient's list of events.
func AddEvent(p *Patient, e *Event) {
	p.Events = append(p.Events, e)
}

// SortEvents orders a patient's events by original start date. Events with equal start dates keep their input order.
func SortEvents(p *Patient) {
	events := p.Events
	sort.SliceStable(events, func(i, j int) bool {
		return DateSmallerThan(events[i].OriginalStart, events[j].OriginalStart)
	})
}

// ValidateEvents checks that every event of a patient has a start and an end date, and does not end before it starts.
func ValidateEvents(p *Patient) error {
	for _, e := range p.Events {
		switch {
		case e.OriginalStart.IsZero():
			return &EventError{PID: p.PID, Row: e.Row, Drug: e.Drug, Reason: "missing start date"}
		case e.OriginalEnd.IsZero():
			return &EventError{PID: p.PID, Row: e.Row, Drug: e.Drug, Reason: "missing end date"}
		case e.OriginalEnd.Before(e.OriginalStart):
			return &EventError{PID: p.PID, Row: e.Row, Drug: e.Drug, Reason: "end date " + e.OriginalEnd.String() + " before start date " + e.OriginalStart.String()}
		}
	}
	return nil
}

// copyEvents makes copies of events so that building cycles does not modify the loaded events.
func copyEvents(events []*Event) []*Event {
	result := make([]*Event, len(events))
	for i, e := range events {
		c := *e
		c.Start, c.End = c.OriginalStart, c.OriginalEnd
		result[i] = &c
	}
	return result
}

// PatientMap contains all patient information parsed from the input.
type PatientMap struct {
	PIDMap map[string]*Patient //maps the patient ID from the input onto the patient object
	Ctr    int                 //total nr of events parsed
}

// NewPatientMap creates an empty patient map.
func NewPatientMap() *PatientMap {
	return &PatientMap{PIDMap: map[string]*Patient{}}
}

// GetPatient retrieves from a patient map the patient object associated with a given patient ID.
func GetPatient(pid string, patients *PatientMap) (*Patient, bool) {
	patient, ok := patients.PIDMap[pid]
	return patient, ok
}

// AddPatientEvent adds an event to the patient it belongs to, creating the patient when it is not yet in the map.
func AddPatientEvent(patients *PatientMap, e *Event) {
	patient, ok := patients.PIDMap[e.PID]
	if !ok {
		patient = &Patient{PID: e.PID}
		patients.PIDMap[e.PID] = patient
	}
	AddEvent(patient, e)
	patients.Ctr++
}

// Patients returns the patients of a patient map sorted by patient ID.
func (patients *PatientMap) Patients() []*Patient {
	result := make([]*Patient, 0, len(patients.PIDMap))
	for _, p := range patients.PIDMap {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PID < result[j].PID
	})
	return result
}
