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

package therapy_test

import (
	"testing"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"lotra/therapy"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	goleak.VerifyTestMain(m)
}

var day0 = therapy.MakeDate(2020, 1, 1)

// day returns the date n days after day0.
func day(n int) therapy.Date {
	return day0.AddDays(n)
}

func dayPtr(n int) *therapy.Date {
	d := day(n)
	return &d
}

// ev creates an event for patient P1 from day offsets.
func ev(drug string, start, end int) *therapy.Event {
	return therapy.NewEvent("P1", drug, day(start), day(end), 0)
}

func newPatient(events ...*therapy.Event) *therapy.Patient {
	p := &therapy.Patient{PID: "P1"}
	for i, e := range events {
		e.Row = i + 2
		therapy.AddEvent(p, e)
	}
	return p
}

// newConfig creates a configuration with default parameters and empty reference tables.
func newConfig() *therapy.Config {
	return &therapy.Config{Indication: "TEST", Params: therapy.DefaultParameters(), Cases: therapy.NewCases()}
}

// annotate copies events and builds their cycles, the way the driver prepares them.
func annotate(continuity therapy.ContinuityCheck, events ...*therapy.Event) []*therapy.Event {
	p := newPatient(events...)
	therapy.SortEvents(p)
	therapy.BuildCycles(p.Events, continuity)
	return p.Events
}

func process(t *testing.T, cfg *therapy.Config, events ...*therapy.Event) *therapy.PatientResult {
	t.Helper()
	result, err := therapy.ProcessPatient(newPatient(events...), cfg)
	if err != nil {
		t.Fatalf("ProcessPatient: %v", err)
	}
	return result
}
