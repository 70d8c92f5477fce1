/*
 * results.go, part of qetraj.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package qe

import (
	"fmt"
	"strings"

	chem "github.com/rmera/qetraj"
	v3 "github.com/rmera/qetraj/v3"
)

//results attaches energy, and forces and stress if printed, to S.
//The energy is the total energy minus half the smearing contribution, that is,
//the energy extrapolated to zero smearing.
//It returns false if the run ended before the total energy was printed, or
//in the middle of the forces or stress blocks.
func (m *machine) results(S *chem.Snapshot) (bool, error) {
	var line string
	for {
		l, ok := m.lines.next()
		if !ok || strings.Contains(l, JobDone) {
			return false, nil
		}
		if strings.Contains(l, TotalEnergy) {
			line = l
			break
		}
	}
	energy, err := m.fieldFromEnd(line, 2, TotalEnergy)
	if err != nil {
		return false, err
	}
	var ts float64
	for i := 0; i < forcesWindow; i++ {
		l, ok := m.lines.next()
		if !ok {
			break
		}
		if structural(l) {
			m.lines.back()
			break
		}
		if strings.Contains(l, Smearing) {
			if ts, err = m.fieldFromEnd(l, 2, Smearing); err != nil {
				return false, err
			}
			continue
		}
		if !strings.Contains(l, ForcesHeader) {
			continue
		}
		complete, err := m.forcesAndStress(S)
		if err != nil || !complete {
			return false, err
		}
		break
	}
	S.SetEnergy((energy - float64(0.5*ts)) * chem.Rydberg) //the conversion prevents a fused multiply-add
	return true, nil
}

//forcesAndStress reads the forces block that starts after the current line, and the
//stress block, if there is one close enough after the forces.
func (m *machine) forcesAndStress(S *chem.Snapshot) (bool, error) {
	var line string
	for i := 0; i < forcesHeaderLines; i++ {
		l, ok := m.lines.next()
		if !ok {
			return false, nil
		}
		if strings.Contains(l, "atom") {
			line = l
			break
		}
	}
	if line == "" {
		return false, m.malformed(ForcesHeader, fmt.Sprintf("no forces in the %d lines after the header", forcesHeaderLines))
	}
	rows := make([][]float64, S.Len())
	for i := range rows {
		if i > 0 {
			l, ok := m.lines.next()
			if !ok {
				return false, nil
			}
			line = l
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return false, m.malformed(ForcesHeader, fmt.Sprintf("only %d of %d forces", i, len(rows)))
		}
		var err error
		if rows[i], err = m.vector(fields[len(fields)-3:], ForcesHeader, chem.RyBohr2eVA); err != nil {
			return false, err
		}
	}
	S.Forces, _ = v3.FromRows(rows)
	for i := 0; i < stressWindow; i++ {
		l, ok := m.lines.next()
		if !ok {
			break
		}
		if structural(l) {
			m.lines.back()
			break
		}
		if !strings.Contains(l, StressHeader) {
			continue
		}
		//Columns 0-2 are in Ry/bohr^3, 3-5 in kbar.
		rows := make([][]float64, 3)
		for j := range rows {
			l, ok := m.lines.next()
			if !ok {
				return false, nil
			}
			fields := strings.Fields(l)
			if len(fields) < 3 {
				return false, m.malformed(StressHeader, fmt.Sprintf("only %d of 3 rows", j))
			}
			var err error
			if rows[j], err = m.vector(fields[:3], StressHeader, chem.RyBohr32eVA); err != nil {
				return false, err
			}
		}
		S.Stress, _ = v3.FromRows(rows)
		break
	}
	return true, nil
}
