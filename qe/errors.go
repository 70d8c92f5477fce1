/*
 * errors.go, part of qetraj.
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
)

//All the errors in this package satisfy chem.LogError. They are returned as values,
//so errors.As works with the plain types.

// RunNotFoundError is returned when the run selector does not address
// one of the runs in the log.
type RunNotFoundError struct {
	Requested int
	Available int
	filename  string
	deco      []string
}

func (err RunNotFoundError) Error() string {
	return fmt.Sprintf("run %d requested, but the log %s contains %d runs", err.Requested, err.filename, err.Available)
}

// Decorate adds dec to the decoration trail of the error, and returns the trail.
func (err RunNotFoundError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err RunNotFoundError) FileName() string { return err.filename }

func (err RunNotFoundError) Critical() bool { return true }

// MalformedLogError is returned when the lines that must follow a marker are
// missing or can't be understood. Line is the 1-based number of the offending line
// in the log, or the last line read if the log ended too early.
type MalformedLogError struct {
	Marker   string
	Line     int
	Message  string
	filename string
	deco     []string
}

func (err MalformedLogError) Error() string {
	return fmt.Sprintf("malformed log %s, line %d, block %q: %s", err.filename, err.Line, err.Marker, err.Message)
}

// Decorate adds dec to the decoration trail of the error, and returns the trail.
func (err MalformedLogError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err MalformedLogError) FileName() string { return err.filename }

func (err MalformedLogError) Critical() bool { return true }

// UnitConversionError is returned when a field that should hold a number doesn't.
// It wraps the error from the strconv package.
type UnitConversionError struct {
	Field    string
	Line     int
	Err      error
	filename string
	deco     []string
}

func (err UnitConversionError) Error() string {
	return fmt.Sprintf("log %s, line %d: can't read %s: %s", err.filename, err.Line, err.Field, err.Err)
}

func (err UnitConversionError) Unwrap() error { return err.Err }

// Decorate adds dec to the decoration trail of the error, and returns the trail.
func (err UnitConversionError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err UnitConversionError) FileName() string { return err.filename }

func (err UnitConversionError) Critical() bool { return true }

// Error is returned for problems that are not about the log's contents,
// like a failing calculator or a stream that can't be read.
type Error struct {
	message  string
	filename string
	deco     []string
}

func (err Error) Error() string { return err.message }

// Decorate adds dec to the decoration trail of the error, and returns the trail.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err Error) FileName() string { return err.filename }

func (err Error) Critical() bool { return true }

type decorator interface {
	error
	Decorate(string) []string
}

// errDecorate adds caller to the trail of errors that have one.
// Other errors are wrapped in an Error.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if d, ok := err.(decorator); ok {
		d.Decorate(caller)
		return d
	}
	return Error{message: fmt.Sprintf("%s: %s", caller, err.Error()), deco: []string{caller}}
}
