/*
 * doc.go, part of qetraj.
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

//Package qe reads relaxation trajectories from the output of the pw.x program of the
//Quantum ESPRESSO suite.
//
//The log is scanned by a small state machine. Each snapshot of the trajectory is a
//copy of the previous one, with the positions (and, for variable-cell relaxations, the
//cell) of the new step and the energy, forces and stress printed for it.
//
//	traj, err := qe.ParseFile("relax/log", qe.WithRun(-1))
//
//Only relaxations done by pw.x itself (i.e. BFGS) give more than one snapshot.
package qe
