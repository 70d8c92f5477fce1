/*
 * decode.go, part of qetraj.
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

package main

import (
	"strings"

	chem "github.com/rmera/qetraj"
	"github.com/rmera/qetraj/traj/delta"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var decodeCmd = &cobra.Command{
	Use:   "decode DOCUMENT [OUTPUT]",
	Short: "Write the full trajectory of a document as extended XYZ",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

// readTrajectory reads and decodes the document in the file name.
func readTrajectory(name string) ([]*chem.Snapshot, error) {
	doc, err := delta.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return delta.Decode(doc)
}

// documentBase removes the format and compression suffixes from name.
func documentBase(name string) string {
	for _, suffix := range []string{".zst", ".gz", ".json", ".yaml", ".yml", ".msgpack"} {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			name = name[:len(name)-len(suffix)]
		}
	}
	return name
}

func runDecode(cmd *cobra.Command, args []string) error {
	traj, err := readTrajectory(args[0])
	if err != nil {
		return err
	}
	out := documentBase(args[0]) + ".xyz"
	if len(args) > 1 {
		out = args[1]
	}
	if err := chem.WriteStructure(out, traj); err != nil {
		return err
	}
	logger.Info("trajectory decoded", zap.String("document", args[0]), zap.String("output", out), zap.Int("steps", len(traj)))
	return nil
}
