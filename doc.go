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

/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*Package chem is the main package of the qetraj library. It provides the snapshot
structure used along the library, the parameter values attached to it, and reading and
writing of extended XYZ files.


	**qetraj Capabilities**


    Reads the relaxation trajectory (energies, forces, stress, positions and cell at each
	step) from Quantum ESPRESSO pw.x logs, including variable-cell runs and logs with
	several runs (package qe).

    Takes species, cell, constraints and calculation parameters from the initial
	structure, when given as extended XYZ.

    Encodes trajectories as sparse, delta-encoded JSON, YAML or MessagePack documents, optionally
	compressed with zstd or gzip, and decodes them back (package traj/delta).

    Keeps documents in an SQLite archive (package store).

    Plots energy and force profiles along a relaxation (package chemplot).

    Reads and writes extended XYZ trajectories.

Units are Angstrom and eV along the library. The conversion factors from the atomic units
pw.x uses are in this package.

*/
package chem
