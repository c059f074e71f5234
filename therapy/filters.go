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

// PatientFilter prescribes a function type for implementing filters on patients, to be able to derive lines of
// therapy for specific cohorts. A filter may trim a patient's events and returns false to drop the patient.
type PatientFilter func(patient *Patient) bool

func ApplyPatientFilter(filter PatientFilter, pMap *PatientMap) *PatientMap {
	return ApplyPatientFilters([]PatientFilter{filter}, pMap)
}

func ApplyPatientFilters(filters []PatientFilter, pMap *PatientMap) *PatientMap {
	newPMap := NewPatientMap()
	for pid, p := range pMap.PIDMap {
		res := true
		for _, filter := range filters {
			res = filter(p) && res
			if !res {
				break
			}
		}
		if res {
			newPMap.PIDMap[pid] = p
			newPMap.Ctr += len(p.Events)
		}
	}
	return newPMap
}

// StudyWindowFilter removes all events that start outside [from, to]. A zero date leaves that side of the window
// open. Patients without events in the window are removed.
func StudyWindowFilter(from, to Date) PatientFilter {
	return func(p *Patient) bool {
		newE := []*Event{}
		for _, e := range p.Events {
			if !from.IsZero() && e.OriginalStart.Before(from) {
				continue
			}
			if !to.IsZero() && e.OriginalStart.After(to) {
				continue
			}
			newE = append(newE, e)
		}
		p.Events = newE
		return len(newE) > 0
	}
}

// MinEventsFilter removes patients with fewer than n events.
func MinEventsFilter(n int) PatientFilter {
	return func(p *Patient) bool {
		return len(p.Events) >= n
	}
}

// DrugExposureFilter keeps patients that received at least one of the given drugs.
func DrugExposureFilter(drugs []string) PatientFilter {
	wanted := map[string]bool{}
	for _, d := range drugs {
		wanted[CanonicalDrugName(d)] = true
	}
	return func(p *Patient) bool {
		for _, e := range p.Events {
			if wanted[e.Drug] {
				return true
			}
		}
		return false
	}
}
