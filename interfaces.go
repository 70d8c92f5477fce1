/*
 * interfaces.go, part of qetraj.
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

import (
	"context"
	"fmt"
	"io"
)

// StructureReader reads the initial state of a calculation (species, positions, cell,
// constraints and calculation parameters) from a structure file.
type StructureReader interface {
	ReadStructure(name string) (*Snapshot, error)
}

// StructureWriter persists a trajectory in a structure file format.
type StructureWriter interface {
	WriteStructure(name string, traj []*Snapshot) error
}

// Calculator runs an electronic-structure calculation for the given structure
// and returns the stream with the program's log. The calculation settings are
// taken from structure.Parameters. The caller closes the stream.
// How, and where, the program is launched is entirely up to the implementation.
type Calculator interface {
	Calculate(ctx context.Context, structure *Snapshot) (io.ReadCloser, error)
}

//Errors

//The Decorate system predates the "wrapping" error system of Go (i.e. the "%w" directive and the errors package).
//The error types in this library implement both.

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //It allows you to add information when you pass it up. Each call also returns the "decoration" slice of strins resulting from the current call. If passed an empty string, it should just return the current value, not add the empty string to the slice.
	//The decorate slice should contain a list of functions in the calling stack, plus, for each function any relevant information, or nothing. If information is to be added to an element of the slice, it should be in this format: "FunctionName: Extra info"
}

// LogError is the interface for errors coming from parsing a program's log.
type LogError interface {
	Error
	Critical() bool
	FileName() string
}

// CError is the general error type for the chem package.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err CError) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

// Critical always returns true, chem errors are never harmless.
func (err CError) Critical() bool { return true }

// errDecorate is a helper function that asserts that the error
// implements chem.Error and decorates the error with the caller's name before returning it.
// Errors from other packages are wrapped in a CError.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	err2, ok := err.(Error)
	if !ok {
		return CError{fmt.Sprintf("%s: %s", caller, err.Error()), []string{caller}}
	}
	err2.Decorate(caller)
	return err2
}
