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

package app_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotra/app"
	"lotra/therapy"
)

func TestParseMedicationEvents(t *testing.T) {
	input := "\ufeffpatient_id, med_name ,med_start,med_end\n" +
		"P2,carboplatin,2020-02-01,2020-02-01\n" +
		"P1,Pemetrexed,2020-01-22,2020-01-23\n" +
		"P1,pemetrexed,2020/01/01,2020/01/01\n"
	patients, err := app.ParseMedicationEventsFrom(strings.NewReader(input), "events.csv", false)
	require.NoError(t, err)
	assert.Equal(t, 3, patients.Ctr)
	require.Len(t, patients.PIDMap, 2)

	p1 := patients.PIDMap["P1"]
	require.Len(t, p1.Events, 2)
	assert.Equal(t, "PEMETREXED", p1.Events[0].Drug)
	assert.Equal(t, therapy.MakeDate(2020, 1, 1), p1.Events[0].OriginalStart)
	assert.Equal(t, 4, p1.Events[0].Row)
	assert.Equal(t, therapy.MakeDate(2020, 1, 23), p1.Events[1].OriginalEnd)

	patients, err = app.ParseMedicationEventsFrom(strings.NewReader(input), "events.csv", true)
	require.NoError(t, err)
	e := patients.PIDMap["P1"].Events[1]
	assert.Equal(t, e.OriginalStart, e.OriginalEnd)
}

func TestParseMedicationEventsWithoutEndColumn(t *testing.T) {
	input := "PATIENT_ID,MED_NAME,MED_START\nP1,A,2020-01-01\n"
	patients, err := app.ParseMedicationEventsFrom(strings.NewReader(input), "events.csv", true)
	require.NoError(t, err)
	assert.Equal(t, 1, patients.Ctr)

	_, err = app.ParseMedicationEventsFrom(strings.NewReader(input), "events.csv", false)
	var eventErr *therapy.EventError
	require.True(t, errors.As(err, &eventErr))
	assert.Equal(t, "missing end date", eventErr.Reason)
}

func TestParseMedicationEventsReportsAllRows(t *testing.T) {
	input := "PATIENT_ID,MED_NAME,MED_START,MED_END\n" +
		"P1,A,2020-01-05,2020-01-01\n" +
		"P1,A,notadate,2020-01-01\n" +
		",A,2020-01-01,2020-01-01\n" +
		"P2,B,2020-01-01,2020-01-02\n"
	_, err := app.ParseMedicationEventsFrom(strings.NewReader(input), "events.csv", false)
	require.Error(t, err)
	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok, "got %T", err)
	errs := joined.Unwrap()
	require.Len(t, errs, 3)
	for i, row := range []int{2, 3, 4} {
		var eventErr *therapy.EventError
		require.True(t, errors.As(errs[i], &eventErr))
		assert.Equal(t, row, eventErr.Row)
	}
	assert.Contains(t, err.Error(), "missing patient ID or drug name")
}

func TestParseMedicationEventsHeader(t *testing.T) {
	_, err := app.ParseMedicationEventsFrom(strings.NewReader("PATIENT_ID,MED_NAME\nP1,A\n"), "events.csv", false)
	assert.ErrorContains(t, err, "missing column MED_START")

	_, err = app.ParseMedicationEventsFrom(strings.NewReader(""), "events.csv", false)
	assert.ErrorContains(t, err, "empty table")

	_, err = app.ParseMedicationEvents(filepath.Join(t.TempDir(), "missing.csv"), false)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadCases(t *testing.T) {
	dir := t.TempDir()
	writeReferenceTables(t, dir, "NSCLC", nil)
	cases, err := app.LoadCases(dir, "nsclc")
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"PEMBROLIZUMAB": true}, cases.LineName)
	assert.Equal(t, map[string][]string{"CISPLATIN": {"CARBOPLATIN"}}, cases.Substitutions)
	assert.True(t, cases.IsEligibleAddition("denosumab"))
	assert.True(t, cases.EpisodeGap["ZOLEDRONIC ACID"])
	assert.Equal(t, map[string]bool{"PEMETREXED": true}, cases.Maintenance[therapy.ContinuationMaintenance])
	assert.Equal(t, map[string]bool{"BEVACIZUMAB": true}, cases.Maintenance[therapy.SwitchMaintenance])
}

func TestLoadCasesErrors(t *testing.T) {
	dir := t.TempDir()
	writeReferenceTables(t, dir, "NSCLC", map[string]string{"episode_gap.csv": ""})
	_, err := app.LoadCases(dir, "NSCLC")
	assert.True(t, errors.Is(err, therapy.ErrMissingTable), "got %v", err)

	_, err = app.LoadCases(dir, "SCLC")
	assert.True(t, errors.Is(err, therapy.ErrMissingTable), "got %v", err)

	writeReferenceTables(t, dir, "MM", map[string]string{"line_maintenance.csv": "drug_name,maintenance_type\nlenalidomide,forever\n"})
	_, err = app.LoadCases(dir, "MM")
	assert.ErrorContains(t, err, "unknown maintenance type")
}

func TestParseGeneralParameters(t *testing.T) {
	file := filepath.Join(t.TempDir(), "par_general.csv")
	require.NoError(t, os.WriteFile(file, []byte("R_WINDOW,l_disgap,drug_switch_ignore\n21.0,,true\n30,90,false\n"), 0o644))
	values, err := app.ParseGeneralParameters(file)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"r_window": 21, "drug_switch_ignore": true}, values)

	require.NoError(t, os.WriteFile(file, []byte("l_disgap\nsoon\n"), 0o644))
	_, err = app.ParseGeneralParameters(file)
	assert.ErrorContains(t, err, "l_disgap")
}
