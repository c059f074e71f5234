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

	"github.com/stretchr/testify/assert"

	"lotra/therapy"
)

func TestMetricsFromResults(t *testing.T) {
	results := []*therapy.PatientResult{
		{PID: "P1", Lines: []*therapy.Line{
			{Number: 1, Type: therapy.Combo, Start: day(0), End: day(9), EndReason: therapy.NewRegimenIntroduced},
			{Number: 1, Type: therapy.Mono, Start: day(20), End: day(49), EndReason: therapy.EndOfData, IsMaintenance: true},
		}, Doses: make([]*therapy.Dose, 5)},
		{PID: "P2", Lines: []*therapy.Line{
			{Number: 1, Type: therapy.Mono, Start: day(0), End: day(19), EndReason: therapy.EndOfData},
		}, Doses: make([]*therapy.Dose, 2)},
	}
	s := therapy.MetricsFromResults(results)
	assert.Equal(t, 2, s.Patients)
	assert.Equal(t, 3, s.Lines)
	assert.Equal(t, 7, s.Doses)
	assert.Equal(t, 1.5, s.MeanLinesPerPatient)
	assert.InDelta(t, 20.0, s.MeanLineDays, 1e-9)
	assert.InDelta(t, 8.16497, s.StdDevLineDays, 1e-4)
	assert.Equal(t, 1, s.MaintenanceLines)
	assert.Equal(t, map[therapy.LineType]int{therapy.Combo: 1, therapy.Mono: 2}, s.ByType)
	assert.Equal(t, 2, s.ByEndReason[therapy.EndOfData])
	assert.Equal(t, 1, s.MaxLineNumber)

	empty := therapy.MetricsFromResults(nil)
	assert.Zero(t, empty.Lines)
	assert.Zero(t, empty.MeanLineDays)
}
