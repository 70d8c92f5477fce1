/*
 * parse.go, part of qetraj.
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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rmera/qetraj/qe"
	"github.com/rmera/qetraj/traj/delta"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var parseCmd = &cobra.Command{
	Use:   "parse LOG [OUTPUT]",
	Short: "Extract the relaxation trajectory of a pw.x log",
	Long: `Parses the pw.x log and writes the trajectory as a delta-encoded document.
The format and compression are taken from the name of OUTPUT (.json, .yaml,
.msgpack, optionally followed by .zst or .gz). Without OUTPUT, the document is written
next to the log, with the format and compression of the configuration.

If a file called input.xyz is found in the directory of the log, species, cell,
constraints and calculator parameters are taken from it (disable with --initial=false).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().Int("run", -1, "Run to parse, negative values count from the last one")
	parseCmd.Flags().Bool("strict", false, "Fail when a header is declared twice with different values")
	parseCmd.Flags().Bool("initial", true, "Use "+qe.InitialStructureFile+" from the log directory, if present")
	rootCmd.AddCommand(parseCmd)
}

// parseOptions builds the parser options from the configuration, overridden by
// the flags the user did set.
func parseOptions(cmd *cobra.Command, logname string) ([]qe.Option, error) {
	flags := cmd.Flags()
	run, strict, initial := cfg.Run, cfg.StrictHeaders, cfg.Initial
	if flags.Changed("run") {
		run, _ = flags.GetInt("run")
	}
	if flags.Changed("strict") {
		strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("initial") {
		initial, _ = flags.GetBool("initial")
	}
	opts := []qe.Option{qe.WithRun(run), qe.WithLogger(logger)}
	if strict {
		opts = append(opts, qe.WithStrictHeaders())
	}
	if !initial {
		return opts, nil
	}
	S, err := qe.ReadInitial(logname)
	if err != nil {
		return nil, err
	}
	if S != nil {
		logger.Info("using initial structure", zap.String("file", filepath.Join(filepath.Dir(logname), qe.InitialStructureFile)))
		opts = append(opts, qe.WithInitial(S))
	}
	return opts, nil
}

// outputName replaces the extension of name with suffix.
func outputName(name, suffix string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + suffix
}

func runParse(cmd *cobra.Command, args []string) error {
	logname := args[0]
	out := outputName(logname, cfg.Suffix())
	if len(args) > 1 {
		out = args[1]
	}
	if _, _, err := delta.FormatOf(out); err != nil {
		return err
	}
	opts, err := parseOptions(cmd, logname)
	if err != nil {
		return err
	}
	traj, err := qe.ParseFile(logname, opts...)
	if err != nil {
		return err
	}
	if len(traj) == 0 {
		logger.Warn("no results in the log, nothing written", zap.String("log", logname))
		return nil
	}
	doc, err := delta.Encode(traj)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", logname, err)
	}
	if err := delta.WriteFile(out, doc); err != nil {
		return err
	}
	logger.Info("trajectory written", zap.String("log", logname), zap.String("output", out), zap.Int("steps", doc.Len()))
	return nil
}
