/*
 * calc.go, part of qetraj.
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
	"context"

	chem "github.com/rmera/qetraj"
)

// Relax runs calc on a copy of initial, which must carry the calculation parameters,
// and parses the log it returns. The trajectory keeps the species and cell of initial,
// and its first snapshot also the constraints and parameters. The log stream is always closed. opts are applied before
// the initial structure is attached, so a WithInitial among them has no effect.
func Relax(ctx context.Context, calc chem.Calculator, initial *chem.Snapshot, opts ...Option) ([]*chem.Snapshot, error) {
	if initial == nil {
		return nil, Error{message: "Relax needs an initial structure", deco: []string{"Relax"}}
	}
	if err := initial.Check(); err != nil {
		return nil, errDecorate(err, "Relax")
	}
	S := initial.Copy()
	S.ClearResults()
	S.PBC = [3]bool{true, true, true} //plane waves
	log, err := calc.Calculate(ctx, S)
	if err != nil {
		return nil, errDecorate(err, "Relax: Calculate")
	}
	defer log.Close()
	opts = append(opts[:len(opts):len(opts)], WithInitial(S))
	traj, err := Parse(log, opts...)
	if err != nil {
		return nil, errDecorate(err, "Relax")
	}
	return traj, nil
}
