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
	"fmt"
	"strings"
	"time"
)

// Date represents a calendar day, with fields for representing the year, month, and day.
// The zero Date represents a missing date.
type Date struct {
	Year, Month, Day int
}

// dateLayouts lists the layouts accepted for dates in the input tables, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"20060102",
}

// ParseDate parses a date in one of the supported layouts. An empty string yields the zero Date and no error.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("cannot parse date %q", s)
}

// NewDate truncates a time to its calendar day.
func NewDate(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// MakeDate creates a date from year, month and day, normalizing out of range values the way time.Date does.
func MakeDate(year, month, day int) Date {
	return NewDate(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}

// Time returns midnight UTC of the given day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns the date n days after d (before d if n is negative).
func (d Date) AddDays(n int) Date {
	return NewDate(d.Time().AddDate(0, 0, n))
}

// DaysBetween returns the number of days from d1 to d2, negative when d2 lies before d1.
func DaysBetween(d1, d2 Date) int {
	return int(d2.Time().Sub(d1.Time()) / (24 * time.Hour))
}

// DateSmallerThan returns true if d1 lies strictly before d2.
func DateSmallerThan(d1, d2 Date) bool {
	if d1.Year != d2.Year {
		return d1.Year < d2.Year
	}
	if d1.Month != d2.Month {
		return d1.Month < d2.Month
	}
	return d1.Day < d2.Day
}

func (d Date) Before(o Date) bool {
	return DateSmallerThan(d, o)
}

func (d Date) After(o Date) bool {
	return DateSmallerThan(o, d)
}

// String formats the date as YYYY-MM-DD, or the empty string for a missing date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MinDate returns the earliest of the given dates.
func MinDate(d Date, ds ...Date) Date {
	for _, o := range ds {
		if o.Before(d) {
			d = o
		}
	}
	return d
}

// MaxDate returns the latest of the given dates.
func MaxDate(d Date, ds ...Date) Date {
	for _, o := range ds {
		if o.After(d) {
			d = o
		}
	}
	return d
}
