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

// Regimen is a set of drugs, kept in order of first occurrence.
type Regimen []string

// Has checks if a drug is part of the regimen.
func (r Regimen) Has(drug string) bool {
	return utils.MemberString(drug, r)
}

// Name returns the canonical name of the regimen: the distinct drugs, sorted and joined by commas.
func (r Regimen) Name() string {
	return RegimenName(r)
}

// RegimenName returns the canonical name for a list of drugs.
func RegimenName(drugs []string) string {
	var unique []string
	for _, d := range drugs {
		unique = appendDrug(unique, CanonicalDrugName(d))
	}
	sort.Strings(unique)
	return strings.Join(unique, ",")
}

// GetRegimen returns the drugs of all events that start within the regimen window of the first event.
func GetRegimen(events []*Event, window int) Regimen {
	if len(events) == 0 {
		return nil
	}
	until := events[0].Start.AddDays(window)
	var regimen Regimen
	for _, e := range events {
		if e.Start.After(until) {
			continue
		}
		regimen = appendDrug(regimen, e.Drug)
	}
	return regimen
}

// cycleRegimen returns the drugs of the given cycle among the events, in order of first occurrence.
func cycleRegimen(events []*Event, cycle int) Regimen {
	var regimen Regimen
	for _, e := range events {
		if e.Cycle == cycle {
			regimen = appendDrug(regimen, e.Drug)
		}
	}
	return regimen
}
