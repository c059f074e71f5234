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
	"fmt"
)

// ErrMissingTable is returned when a reference table for an indication cannot be found.
var ErrMissingTable = errors.New("missing reference table")

// EventError reports a malformed medication event.
type EventError struct {
	PID    string
	Row    int
	Drug   string
	Reason string
}

func (e *EventError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("patient %s: event %s at row %d: %s", e.PID, e.Drug, e.Row, e.Reason)
	}
	return fmt.Sprintf("patient %s: event %s: %s", e.PID, e.Drug, e.Reason)
}

// InvariantError reports a derived line that violates the line invariants, or a cut that does not advance.
type InvariantError struct {
	PID        string
	LineNumber int
	Reason     string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("patient %s: line %d: %s", e.PID, e.LineNumber, e.Reason)
}

// PatientError wraps any error raised while processing a patient.
type PatientError struct {
	PID string
	Err error
}

func (e *PatientError) Error() string {
	return fmt.Sprintf("processing patient %s: %v", e.PID, e.Err)
}

func (e *PatientError) Unwrap() error {
	return e.Err
}
