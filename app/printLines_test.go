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
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotra/app"
	"lotra/therapy"
)

func testResults() []*therapy.PatientResult {
	next := therapy.MakeDate(2020, 3, 1)
	return []*therapy.PatientResult{{
		PID: "P1",
		Lines: []*therapy.Line{{
			PID:               "P1",
			Number:            1,
			Name:              "CARBOPLATIN,PEMETREXED",
			Type:              therapy.Combo,
			Start:             therapy.MakeDate(2020, 1, 1),
			End:               therapy.MakeDate(2020, 1, 22),
			NextStart:         &next,
			EndReason:         therapy.EnteringContinuationMaintenance,
			IsNextMaintenance: true,
			Indication:        "NSCLC",
			IndexDate:         therapy.MakeDate(2020, 1, 1),
		}, {
			PID:           "P1",
			Number:        1,
			Name:          "PEMETREXED",
			Type:          therapy.Mono,
			Start:         therapy.MakeDate(2020, 3, 1),
			End:           therapy.MakeDate(2020, 5, 1),
			EndReason:     therapy.EndOfData,
			IsMaintenance: true,
			Indication:    "NSCLC",
			IndexDate:     therapy.MakeDate(2020, 1, 1),
		}},
		Doses: []*therapy.Dose{{
			PID:        "P1",
			Drug:       "PEMETREXED",
			Start:      therapy.MakeDate(2020, 1, 1),
			End:        therapy.MakeDate(2020, 1, 1),
			LineNumber: 1,
			LineName:   "CARBOPLATIN,PEMETREXED",
		}},
	}}
}

func readTable(t *testing.T, file string) [][]string {
	t.Helper()
	f, err := os.Open(file)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteLines(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, app.WriteLines(&out, testResults()))
	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "PATIENT_ID", records[0][0])
	assert.Equal(t, []string{"P1", "1", "CARBOPLATIN,PEMETREXED", "2020-01-01", "2020-01-22", "2020-03-01", "combo",
		"false", "true", "false", "false", "false", "false", "entering continuation maintenance", "NSCLC", "2020-01-01"},
		records[1])
	assert.Equal(t, "", records[2][5], "no next line")
	assert.Equal(t, "true", records[2][7])
}

func TestWriteDoses(t *testing.T) {
	results := append(testResults(), &therapy.PatientResult{
		PID: "P2",
		Doses: []*therapy.Dose{{
			PID:        "P2",
			Drug:       "DOCETAXEL",
			Start:      therapy.MakeDate(2020, 2, 3),
			End:        therapy.MakeDate(2020, 2, 4),
			LineNumber: 2,
			LineName:   "DOCETAXEL",
		}},
	})
	var out bytes.Buffer
	require.NoError(t, app.WriteDoses(&out, results))
	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"PATIENT_ID", "MED_START", "MED_END", "MED_NAME", "LINE_NUMBER", "LINE_NAME"},
		{"P1", "2020-01-01", "2020-01-01", "PEMETREXED", "1", "CARBOPLATIN,PEMETREXED"},
		{"P2", "2020-02-03", "2020-02-04", "DOCETAXEL", "2", "DOCETAXEL"},
	}, records)

	out.Reset()
	require.NoError(t, app.WriteDoses(&out, nil))
	assert.Equal(t, "PATIENT_ID,MED_START,MED_END,MED_NAME,LINE_NUMBER,LINE_NAME\n", out.String())
}

func TestPrintResultsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "NSCLC", "Test")
	require.NoError(t, app.PrintResultsToFile(testResults(), path))

	lines := readTable(t, filepath.Join(path, app.LinesFile))
	assert.Len(t, lines, 3)
	doses := readTable(t, filepath.Join(path, app.DosesFile))
	require.Len(t, doses, 2)
	assert.Equal(t, []string{"PATIENT_ID", "MED_START", "MED_END", "MED_NAME", "LINE_NUMBER", "LINE_NAME"}, doses[0])
	assert.Equal(t, []string{"P1", "2020-01-01", "2020-01-01", "PEMETREXED", "1", "CARBOPLATIN,PEMETREXED"}, doses[1])
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	app.PrintLine(&out, testResults()[0].Lines[1])
	assert.Equal(t, "P1\t1\tPEMETREXED\tmono\t2020-03-01\t2020-05-01\t-\tend of data\n", out.String())

	out.Reset()
	app.PrintSummary(&out, therapy.MetricsFromResults(testResults()))
	assert.Contains(t, out.String(), "Patients: 1\n")
	assert.Contains(t, out.String(), "Lines: 2 (2.00 per patient, highest line number 1)\n")
	assert.Contains(t, out.String(), "Maintenance lines: 1\n")
	assert.Contains(t, out.String(), "Ended by end of data: 1\n")
}
