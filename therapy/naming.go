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

// LineName is the outcome of naming a line.
type LineName struct {
	Name     string
	Start    Date
	Switched bool //the early drugs were replaced by the eligible drugs
}

// CheckLineName names a line from its regimen and drug summary. Drugs are split into eligible and ineligible drugs,
// either by how long they were used (drugSwitchIgnore) or by the line_name table. If every ineligible drug was last
// seen no later than the first eligible drug, the line switched: it is named after the eligible drugs and starts when
// the first of them was seen.
func CheckLineName(regimen Regimen, summary DrugSummary, cases *Cases, window int, drugSwitchIgnore bool) LineName {
	start, _ := summary.EarliestFirstSeen()
	var eligible, ineligible DrugSummary
	if drugSwitchIgnore {
		limit := start.AddDays(window)
		for _, exposure := range summary {
			if exposure.LastSeen.After(limit) {
				eligible = append(eligible, exposure)
			} else {
				ineligible = append(ineligible, exposure)
			}
		}
	} else {
		for _, exposure := range summary {
			if cases.LineName[exposure.Drug] {
				eligible = append(eligible, exposure)
			} else {
				ineligible = append(ineligible, exposure)
			}
		}
	}
	result := LineName{Name: regimen.Name(), Start: start}
	if len(eligible) == 0 || len(ineligible) == 0 {
		return result
	}
	lastIneligible, _ := ineligible.LatestLastSeen()
	firstEligible, _ := eligible.EarliestFirstSeen()
	if lastIneligible.After(firstEligible) {
		return result
	}
	result.Name = RegimenName(eligible.Drugs())
	result.Start = firstEligible
	result.Switched = true
	return result
}

// checkComboDroppedDrugs ends a line when any of its drugs is dropped. The line ends when the last dropped drug was
// last seen, and the next line starts the day after.
func checkComboDroppedDrugs(summary DrugSummary, end Date, next *Date, reason EndReason) (Date, *Date, EndReason) {
	last, ok := summary.Dropped().LatestLastSeen()
	if !ok {
		return end, next, reason
	}
	nextStart := last.AddDays(1)
	return last, &nextStart, ComboDrugDropped
}
