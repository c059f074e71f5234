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
	"errors"
	"sort"

	"github.com/exascience/pargo/parallel"
)

// runResult collects the outcome of processing a range of patients.
type runResult struct {
	results []*PatientResult
	errs    []*PatientError
}

// Run derives the lines of therapy of all patients in parallel. Patients that fail are reported in the returned
// error, one PatientError per patient, while the results of the other patients are still returned. Results are
// sorted by patient ID.
func Run(patients []*Patient, cfg *Config) ([]*PatientResult, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	if cfg.Cases == nil {
		cfg.Cases = NewCases()
	}
	if len(patients) == 0 {
		return nil, nil
	}
	result := parallel.RangeReduce(0, len(patients), 0, func(low, high int) interface{} {
		local := runResult{}
		for _, p := range patients[low:high] {
			r, err := ProcessPatient(p, cfg)
			if err != nil {
				local.errs = append(local.errs, &PatientError{PID: p.PID, Err: err})
				continue
			}
			local.results = append(local.results, r)
		}
		return local
	}, func(r1, r2 interface{}) interface{} {
		left, right := r1.(runResult), r2.(runResult)
		return runResult{
			results: append(left.results, right.results...),
			errs:    append(left.errs, right.errs...),
		}
	}).(runResult)

	sort.Slice(result.results, func(i, j int) bool {
		return result.results[i].PID < result.results[j].PID
	})
	sort.Slice(result.errs, func(i, j int) bool {
		return result.errs[i].PID < result.errs[j].PID
	})
	errs := make([]error, len(result.errs))
	for i, err := range result.errs {
		errs[i] = err
	}
	return result.results, errors.Join(errs...)
}

// FailedPatients returns the patient IDs of the patient errors contained in an error returned by Run.
func FailedPatients(err error) []string {
	var pids []string
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			var perr *PatientError
			if errors.As(e, &perr) {
				pids = append(pids, perr.PID)
			}
		}
		return pids
	}
	var perr *PatientError
	if errors.As(err, &perr) {
		pids = append(pids, perr.PID)
	}
	return pids
}
