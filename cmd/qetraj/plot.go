/*
 * plot.go, part of qetraj.
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
	"path/filepath"
	"strings"

	"github.com/rmera/qetraj/chemplot"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var plotCmd = &cobra.Command{
	Use:   "plot DOCUMENT [OUTPUT]",
	Short: "Plot the energy and forces along a trajectory",
	Long: `Plots the energy, relative to the first step, and the largest force along
the trajectory in DOCUMENT. The format of the plot is given by the extension of
OUTPUT. The force plot, if any, is written next to it with "_forces" added to the name.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPlot,
}

func init() {
	plotCmd.Flags().String("title", "", "Plot title (default: the document name)")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, args []string) error {
	traj, err := readTrajectory(args[0])
	if err != nil {
		return err
	}
	out := documentBase(args[0]) + "." + strings.ToLower(cfg.Plot.Extension)
	if len(args) > 1 {
		out = args[1]
	}
	title := cfg.Plot.Title
	if cmd.Flags().Changed("title") {
		title, _ = cmd.Flags().GetString("title")
	}
	if title == "" {
		title = filepath.Base(documentBase(args[0]))
	}
	written, err := chemplot.SaveRelaxationPlot(traj, title, out)
	if err != nil {
		return err
	}
	logger.Info("plots written", zap.Strings("files", written))
	return nil
}
