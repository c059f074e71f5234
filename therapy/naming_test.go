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
	"github.com/stretchr/testify/require"

	"lotra/therapy"
)

func TestCheckLineName(t *testing.T) {
	regimen := therapy.Regimen{"A", "B"}
	triggers := therapy.NewCases()
	triggers.LineName["B"] = true

	tests := []struct {
		name             string
		events           []*therapy.Event
		cases            *therapy.Cases
		drugSwitchIgnore bool
		want             therapy.LineName
	}{
		{
			name:   "trigger list switch",
			events: []*therapy.Event{ev("A", 0, 10), ev("B", 14, 60)},
			cases:  triggers,
			want:   therapy.LineName{Name: "B", Start: day(14), Switched: true},
		},
		{
			name:             "time window switch",
			events:           []*therapy.Event{ev("A", 0, 10), ev("B", 14, 60)},
			cases:            therapy.NewCases(),
			drugSwitchIgnore: true,
			want:             therapy.LineName{Name: "B", Start: day(14), Switched: true},
		},
		{
			name:   "overlapping drugs",
			events: []*therapy.Event{ev("A", 0, 20), ev("B", 14, 60)},
			cases:  triggers,
			want:   therapy.LineName{Name: "A,B", Start: day(0)},
		},
		{
			name:   "no eligible drugs",
			events: []*therapy.Event{ev("A", 0, 10), ev("B", 14, 60)},
			cases:  therapy.NewCases(),
			want:   therapy.LineName{Name: "A,B", Start: day(0)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := therapy.GetDrugSummary(tt.events, 28, day(60))
			got := therapy.CheckLineName(regimen, summary, tt.cases, 28, tt.drugSwitchIgnore)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckComboDroppedDrugs(t *testing.T) {
	summary := therapy.GetDrugSummary([]*therapy.Event{ev("A", 0, 21), ev("B", 0, 84)}, 28, day(84))
	end, next, reason := therapy.CheckComboDroppedDrugs(summary, day(84), nil, therapy.EndOfData)
	assert.Equal(t, day(21), end)
	require.NotNil(t, next)
	assert.Equal(t, day(22), *next)
	assert.Equal(t, therapy.ComboDrugDropped, reason)

	// with several dropped drugs, the line ends when the last of them was seen
	summary = therapy.GetDrugSummary([]*therapy.Event{ev("A", 0, 10), ev("B", 0, 30), ev("C", 0, 90)}, 28, day(90))
	end, next, reason = therapy.CheckComboDroppedDrugs(summary, day(90), nil, therapy.EndOfData)
	assert.Equal(t, day(30), end)
	require.NotNil(t, next)
	assert.Equal(t, day(31), *next)
	assert.Equal(t, therapy.ComboDrugDropped, reason)

	summary = therapy.GetDrugSummary([]*therapy.Event{ev("A", 60, 84), ev("B", 0, 84)}, 28, day(84))
	end, next, reason = therapy.CheckComboDroppedDrugs(summary, day(84), nil, therapy.EndOfData)
	assert.Equal(t, day(84), end)
	assert.Nil(t, next)
	assert.Equal(t, therapy.EndOfData, reason)
}

func TestLineTypeOf(t *testing.T) {
	assert.Equal(t, therapy.Mono, therapy.LineTypeOf("A"))
	assert.Equal(t, therapy.Combo, therapy.LineTypeOf("A,B"))
}
