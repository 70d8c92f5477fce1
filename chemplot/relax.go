/*
 * relax.go, part of qetraj.
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

package chemplot

import (
	"fmt"
	"path/filepath"
	"strings"

	chem "github.com/rmera/qetraj"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Size of the saved plots.
const (
	Width  = 12 * vg.Centimeter
	Height = 9 * vg.Centimeter
)

// Energies returns, for each step with an energy, the step index and the energy
// relative to the first such step.
func Energies(traj []*chem.Snapshot) plotter.XYs {
	var ret plotter.XYs
	var ref float64
	for i, S := range traj {
		if S.Energy == nil {
			continue
		}
		if len(ret) == 0 {
			ref = *S.Energy
		}
		ret = append(ret, plotter.XY{X: float64(i), Y: *S.Energy - ref})
	}
	return ret
}

// MaxForces returns, for each step with forces, the step index and the largest
// force on any atom.
func MaxForces(traj []*chem.Snapshot) plotter.XYs {
	var ret plotter.XYs
	for i, S := range traj {
		if S.Forces == nil {
			continue
		}
		ret = append(ret, plotter.XY{X: float64(i), Y: S.Forces.MaxNorm()})
	}
	return ret
}

func basicPlot(title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = vg.Millimeter * 3
	p.Title.Text = title
	p.X.Label.Text = "Step"
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

// RelaxationPlot plots the energy, relative to the first step, along the trajectory.
// Steps without energy are skipped. It returns an error if no step has an energy.
func RelaxationPlot(traj []*chem.Snapshot, title string) (*plot.Plot, error) {
	data := Energies(traj)
	if len(data) == 0 {
		return nil, fmt.Errorf("RelaxationPlot: no energies in the trajectory")
	}
	p := basicPlot(title, "E - E0 (eV)")
	if err := plotutil.AddLinePoints(p, "Energy", data); err != nil {
		return nil, fmt.Errorf("RelaxationPlot: %w", err)
	}
	return p, nil
}

// ForcePlot plots the largest force on any atom along the trajectory.
// It returns an error if no step has forces.
func ForcePlot(traj []*chem.Snapshot, title string) (*plot.Plot, error) {
	data := MaxForces(traj)
	if len(data) == 0 {
		return nil, fmt.Errorf("ForcePlot: no forces in the trajectory")
	}
	p := basicPlot(title, "Max. force (eV/A)")
	if err := plotutil.AddLinePoints(p, "Max. force", data); err != nil {
		return nil, fmt.Errorf("ForcePlot: %w", err)
	}
	return p, nil
}

// SaveRelaxationPlot saves the energy plot in filename, whose extension gives the format
// (png, svg, pdf...). If the trajectory has forces, their plot is saved in
// the same directory, with "_forces" added to the base name. It returns the names of the written files.
func SaveRelaxationPlot(traj []*chem.Snapshot, title, filename string) ([]string, error) {
	p, err := RelaxationPlot(traj, title)
	if err != nil {
		return nil, err
	}
	if err := p.Save(Width, Height, filename); err != nil {
		return nil, fmt.Errorf("SaveRelaxationPlot: %w", err)
	}
	written := []string{filename}
	if len(MaxForces(traj)) == 0 {
		return written, nil
	}
	fp, err := ForcePlot(traj, title)
	if err != nil {
		return written, err
	}
	ext := filepath.Ext(filename)
	forcename := strings.TrimSuffix(filename, ext) + "_forces" + ext
	if err := fp.Save(Width, Height, forcename); err != nil {
		return written, fmt.Errorf("SaveRelaxationPlot: %w", err)
	}
	return append(written, forcename), nil
}
