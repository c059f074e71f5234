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
)

// MaintenanceType is the category of a drug in the maintenance table.
type MaintenanceType string

const (
	SwitchMaintenance       MaintenanceType = "SWITCH"
	ContinuationMaintenance MaintenanceType = "CONTINUATION"
)

// ContinuityCheck selects how the drug sets of consecutive cycles are compared.
type ContinuityCheck string

const (
	// ContinuitySet compares the drug sets of consecutive cycles for equality.
	ContinuitySet ContinuityCheck = "set"
	// ContinuityLegacy compares the characters of the joined drug names of consecutive cycles.
	ContinuityLegacy ContinuityCheck = "legacy"
)

// SwitchMaintenanceCheck selects how the switch maintenance table is matched against a regimen.
type SwitchMaintenanceCheck string

const (
	// SwitchCheckAll requires every drug of the table in the regimen. An empty table matches every regimen.
	SwitchCheckAll SwitchMaintenanceCheck = "all"
	// SwitchCheckNonEmpty also requires every drug of the table, but an empty table matches no regimen.
	SwitchCheckNonEmpty SwitchMaintenanceCheck = "non-empty"
)

// Cases contains the per indication tables with the drugs that receive special treatment. All drug names are upper case.
type Cases struct {
	LineName      map[string]bool                     //drugs eligible to trigger a line switch
	Substitutions map[string][]string                 //original drug -> drugs that may substitute for it
	Additions     map[string]bool                     //drugs that may be added without starting a new line
	Maintenance   map[MaintenanceType]map[string]bool //drugs per maintenance category
	EpisodeGap    map[string]bool                     //drugs excluded from gap based line advancement
}

// NewCases creates empty reference tables.
func NewCases() *Cases {
	return &Cases{
		LineName:      map[string]bool{},
		Substitutions: map[string][]string{},
		Additions:     map[string]bool{},
		Maintenance: map[MaintenanceType]map[string]bool{
			SwitchMaintenance:       {},
			ContinuationMaintenance: {},
		},
		EpisodeGap: map[string]bool{},
	}
}

// AddSubstitution records that substitute may replace original in a regimen.
func (c *Cases) AddSubstitution(original, substitute string) {
	original = CanonicalDrugName(original)
	c.Substitutions[original] = append(c.Substitutions[original], CanonicalDrugName(substitute))
}

// AddMaintenance records a drug in a maintenance category.
func (c *Cases) AddMaintenance(drug string, mType MaintenanceType) {
	if c.Maintenance[mType] == nil {
		c.Maintenance[mType] = map[string]bool{}
	}
	c.Maintenance[mType][CanonicalDrugName(drug)] = true
}

// Parameters contains the numeric and boolean parameters of the line derivation.
type Parameters struct {
	RegimenWindow           int                    //days after a line start during which drugs join the regimen
	DiscontinuationGap      int                    //max days between consecutive events of the same line
	DrugSwitchIgnore        bool                   //use the time window instead of the line_name table for switch detection
	ComboDroppedLineAdvance bool                   //end a combination line when one of its drugs is dropped
	Continuity              ContinuityCheck        //how consecutive cycles are compared
	StopOnCycleSwitch       bool                   //stop scanning at the first cycle switch instead of continuing
	SwitchMaintenance       SwitchMaintenanceCheck //how the switch maintenance table is matched
}

// DefaultParameters returns the parameters used when an indication does not override them.
func DefaultParameters() Parameters {
	return Parameters{
		RegimenWindow:      28,
		DiscontinuationGap: 180,
		Continuity:         ContinuitySet,
		SwitchMaintenance:  SwitchCheckAll,
	}
}

// Validate checks that the parameters allow the line derivation to make progress.
func (p Parameters) Validate() error {
	if p.RegimenWindow < 1 {
		return fmt.Errorf("regimen window must be at least 1 day, got %d", p.RegimenWindow)
	}
	if p.DiscontinuationGap < 0 {
		return fmt.Errorf("discontinuation gap must not be negative, got %d", p.DiscontinuationGap)
	}
	switch p.Continuity {
	case ContinuitySet, ContinuityLegacy:
	default:
		return fmt.Errorf("unknown continuity check %q", p.Continuity)
	}
	switch p.SwitchMaintenance {
	case SwitchCheckAll, SwitchCheckNonEmpty:
	default:
		return fmt.Errorf("unknown switch maintenance check %q", p.SwitchMaintenance)
	}
	return nil
}

// Config combines everything the line derivation needs for one indication.
type Config struct {
	Indication string
	Params     Parameters
	Cases      *Cases
}
