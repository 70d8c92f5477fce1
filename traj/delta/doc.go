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

//Package delta stores relaxation trajectories as compact documents.
//
//Relaxations often keep the cell fixed, and the last steps barely move
//the atoms, so a step only stores the positions and cell if they changed with
//respect to the previous step that stored them. Decoding fills the gaps
//with the last values seen. Energies, forces and stresses are always stored.
//
//A document has the keys numbers (atomic numbers), pbc, constraints,
//calculator_parameters and trajectory, the latter being a map from the
//step index, as a string, to the data of each step. Documents can be written
//as JSON, YAML or MessagePack, optionally compressed with zstd or gzip.
package delta
