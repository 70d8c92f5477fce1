/*
 * lines.go, part of qetraj.
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
	"bufio"
	"io"
	"strings"
)

//lines is a cursor over a buffered log. It reads from pos up to, but not including, end.
type lines struct {
	text []string
	pos  int
	end  int
}

func newLines(text []string) *lines {
	return &lines{text: text, end: len(text)}
}

//next returns the next line, or false at the end of the window.
func (l *lines) next() (string, bool) {
	if l.pos >= l.end {
		return "", false
	}
	l.pos++
	return l.text[l.pos-1], true
}

//back un-reads the last line.
func (l *lines) back() {
	if l.pos > 0 {
		l.pos--
	}
}

//num is the 1-based number of the last line read.
func (l *lines) num() int {
	return l.pos
}

func readLines(r io.Reader) ([]string, error) {
	var ret []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		ret = append(ret, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, Error{message: err.Error(), deco: []string{"bufio.Scanner", "readLines"}}
	}
	return ret, nil
}

//runStarts returns the indexes of the lines where each run begins.
//Newer versions of pw.x cite Giannozzi more than once in the
//header, so a run-start line only begins a new run if an atom count
//was declared since the previous one.
func runStarts(text []string) []int {
	var starts []int
	declared := true
	for i, line := range text {
		switch {
		case strings.Contains(line, RunStart):
			if declared {
				starts = append(starts, i)
				declared = false
			}
		case strings.Contains(line, AtomCount):
			declared = true
		}
	}
	return starts
}
