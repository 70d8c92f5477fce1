/*
 * atomicdata.go, part of qetraj.
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

import "fmt"

//Element symbols ordered by atomic number. The first element is empty so
//the index of each symbol is its atomic number.
var elementSymbols = []string{"",
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y", "Zr",
	"Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn",
	"Sb", "Te", "I", "Xe", "Cs", "Ba", "La", "Ce", "Pr", "Nd",
	"Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb",
	"Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn", "Fr", "Ra", "Ac", "Th",
	"Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm",
	"Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

//A map for assigning atomic numbers to elements.
var symbolNumber = func() map[string]int {
	m := make(map[string]int, len(elementSymbols))
	for i, s := range elementSymbols[1:] {
		m[s] = i + 1
	}
	return m
}()

//AtomicNumber returns the atomic number for the element symbol s.
func AtomicNumber(s string) (int, error) {
	n, ok := symbolNumber[s]
	if !ok {
		return 0, CError{fmt.Sprintf("Unknown element symbol %q", s), []string{"AtomicNumber"}}
	}
	return n, nil
}

//Symbol returns the element symbol for the atomic number n.
func Symbol(n int) (string, error) {
	if n < 1 || n >= len(elementSymbols) {
		return "", CError{fmt.Sprintf("No element with atomic number %d", n), []string{"Symbol"}}
	}
	return elementSymbols[n], nil
}

//Numbers returns the atomic numbers for a slice of element symbols.
func Numbers(species []string) ([]int, error) {
	ret := make([]int, len(species))
	for i, s := range species {
		n, err := AtomicNumber(s)
		if err != nil {
			return nil, errDecorate(err, fmt.Sprintf("Numbers: atom %d", i))
		}
		ret[i] = n
	}
	return ret, nil
}

//Species returns the element symbols for a slice of atomic numbers.
func Species(numbers []int) ([]string, error) {
	ret := make([]string, len(numbers))
	for i, n := range numbers {
		s, err := Symbol(n)
		if err != nil {
			return nil, errDecorate(err, fmt.Sprintf("Species: atom %d", i))
		}
		ret[i] = s
	}
	return ret, nil
}
