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

// Predicates that decide when a drug outside the current regimen does not end the line, and when a line is
// maintenance therapy.

// IsEligibleSubstitution checks if drug may replace one of the drugs of the regimen.
func (c *Cases) IsEligibleSubstitution(drug string, regimen Regimen) bool {
	drug = CanonicalDrugName(drug)
	for _, original := range regimen {
		for _, substitute := range c.Substitutions[original] {
			if substitute == drug {
				return true
			}
		}
	}
	return false
}

// IsEligibleAddition checks if drug may be added to any regimen.
func (c *Cases) IsEligibleAddition(drug string) bool {
	return c.Additions[CanonicalDrugName(drug)]
}

// IsExcludedFromGap walks the remaining events in order until it meets a drug outside the regimen, and reports
// whether it met a drug from the episode gap table before that.
func (c *Cases) IsExcludedFromGap(regimen Regimen, remaining []*Event) bool {
	exclude := false
	for _, e := range remaining {
		if !regimen.Has(e.Drug) {
			break
		}
		if c.EpisodeGap[e.Drug] {
			exclude = true
		}
	}
	return exclude
}

// IsEligibleSwitchMaintenance checks if the line following the first line is switch maintenance therapy: every drug
// of the switch maintenance table occurs in the regimen. With SwitchCheckAll an empty table matches every regimen,
// with SwitchCheckNonEmpty it matches none.
func (c *Cases) IsEligibleSwitchMaintenance(regimen Regimen, lineNumber int, check SwitchMaintenanceCheck) bool {
	switchDrugs := c.Maintenance[SwitchMaintenance]
	if lineNumber != 1 {
		return false
	}
	if len(switchDrugs) == 0 {
		return check != SwitchCheckNonEmpty
	}
	for drug := range switchDrugs {
		if !regimen.Has(drug) {
			return false
		}
	}
	return true
}

// IsEligibleContinuationMaintenance checks if a first combination line continues as maintenance therapy: the drugs
// that are kept all belong to the continuation maintenance table, and at least one but not all drugs are dropped.
func (c *Cases) IsEligibleContinuationMaintenance(regimen Regimen, summary DrugSummary, lineNumber int) bool {
	if lineNumber != 0 {
		return false
	}
	continuation := c.Maintenance[ContinuationMaintenance]
	intersect := map[string]bool{}
	for _, drug := range regimen {
		if continuation[drug] {
			intersect[drug] = true
		}
	}
	if len(intersect) == 0 {
		return false
	}
	group := summary.Filter(func(exposure *DrugExposure) bool { return regimen.Has(exposure.Drug) })
	dropped := 0
	for _, exposure := range group {
		if exposure.Dropped {
			dropped++
		} else if !intersect[exposure.Drug] {
			return false
		}
	}
	return dropped >= 1 && dropped < len(group)
}
