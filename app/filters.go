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

package app

import (
	"fmt"

	"lotra/therapy"
)

// GetPatientFilters creates the patient filters selected by the options.
func GetPatientFilters(opts *Options) ([]therapy.PatientFilter, error) {
	result := []therapy.PatientFilter{}
	if opts.From != "" || opts.To != "" {
		from, err := therapy.ParseDate(opts.From)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		to, err := therapy.ParseDate(opts.To)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		if !from.IsZero() && !to.IsZero() && to.Before(from) {
			return nil, fmt.Errorf("study window ends %s before it starts %s", to, from)
		}
		result = append(result, therapy.StudyWindowFilter(from, to))
	}
	if opts.MinEvents > 0 {
		result = append(result, therapy.MinEventsFilter(opts.MinEvents))
	}
	if len(opts.RequireDrugs) > 0 {
		result = append(result, therapy.DrugExposureFilter(opts.RequireDrugs))
	}
	return result, nil
}
