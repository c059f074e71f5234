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

func TestParseDate(t *testing.T) {
	want := therapy.Date{Year: 2021, Month: 3, Day: 4}
	for _, s := range []string{"2021-03-04", "2021-03-04 10:11:12", "2021-03-04T10:11:12Z", "2021/03/04", "03/04/2021", "20210304", " 2021-03-04 "} {
		d, err := therapy.ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, d, s)
	}
	d, err := therapy.ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = therapy.ParseDate("yesterday")
	assert.Error(t, err)
}

func TestDateArithmetic(t *testing.T) {
	leap := therapy.MakeDate(2020, 2, 28)
	assert.Equal(t, therapy.Date{Year: 2020, Month: 2, Day: 29}, leap.AddDays(1))
	assert.Equal(t, therapy.Date{Year: 2020, Month: 3, Day: 1}, leap.AddDays(2))
	assert.Equal(t, therapy.Date{Year: 2019, Month: 12, Day: 31}, day(-1))
	assert.Equal(t, therapy.Date{Year: 2020, Month: 2, Day: 1}, therapy.MakeDate(2020, 1, 32))

	assert.Equal(t, 220, therapy.DaysBetween(day(30), day(250)))
	assert.Equal(t, -5, therapy.DaysBetween(day(5), day(0)))
	assert.Equal(t, 366, therapy.DaysBetween(therapy.MakeDate(2020, 1, 1), therapy.MakeDate(2021, 1, 1)))
}

func TestDateOrder(t *testing.T) {
	assert.True(t, day(1).After(day(0)))
	assert.True(t, day(0).Before(day(1)))
	assert.False(t, day(0).Before(day(0)))
	assert.True(t, therapy.DateSmallerThan(therapy.MakeDate(2019, 12, 31), therapy.MakeDate(2020, 1, 1)))
	assert.Equal(t, day(0), therapy.MinDate(day(3), day(0), day(7)))
	assert.Equal(t, day(7), therapy.MaxDate(day(3), day(0), day(7)))
}

func TestDateString(t *testing.T) {
	assert.Equal(t, "2020-01-01", day0.String())
	assert.Equal(t, "0998-11-05", therapy.Date{Year: 998, Month: 11, Day: 5}.String())
	assert.Equal(t, "", therapy.Date{}.String())
}
