/*
 * conversion.go, part of qetraj.
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

package chem

//This provides useful conversion factors and other constants

//Conversions. Values from CODATA 2014, so they match the ones used by
//most atomistic simulation tools.
const (
	Hartree = 27.211386024367243 //eV
	Rydberg = Hartree / 2        //eV
	Bohr    = 0.5291772105638411 //Angstrom
	A2Bohr  = 1 / Bohr
	Bohr2A  = Bohr
)

//AUL is the number of bohr per Angstrom that pw.x uses when printing celldm(1)
//and forces. It is rounded, so it is not exactly A2Bohr.
const AUL = 1.889726

//Derived units
const (
	RyBohr2eVA  = Rydberg / Bohr                 //Ry/bohr to eV/A
	RyBohr32eVA = Rydberg / (Bohr * Bohr * Bohr) //Ry/bohr^3 to eV/A^3
)
