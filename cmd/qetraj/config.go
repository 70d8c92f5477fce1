/*
 * config.go, part of qetraj.
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
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the qetraj configuration.
type Config struct {
	Format        string     `yaml:"format"`      // json | yaml | msgpack
	Compression   string     `yaml:"compression"` // none | zst | gz
	Run           int        `yaml:"run"`
	StrictHeaders bool       `yaml:"strict_headers"`
	Initial       bool       `yaml:"initial"` // use input.xyz next to the log, if present
	Archive       string     `yaml:"archive"`
	Development   bool       `yaml:"development"` // human-friendly logs
	Plot          PlotConfig `yaml:"plot"`
}

// PlotConfig configures the relaxation plots.
type PlotConfig struct {
	Extension string `yaml:"extension"`
	Title     string `yaml:"title"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Format:      "json",
		Compression: "none",
		Run:         -1,
		Initial:     true,
		Archive:     "qetraj.db",
		Plot: PlotConfig{
			Extension: "png",
		},
	}
}

// LoadConfig reads a YAML config file. Values missing in the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that the values are usable.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Format) {
	case "json", "yaml", "yml", "msgpack":
	default:
		return fmt.Errorf("unsupported format %q (use json, yaml or msgpack)", c.Format)
	}
	switch strings.ToLower(c.Compression) {
	case "", "none", "zst", "zstd", "gz", "gzip":
	default:
		return fmt.Errorf("unsupported compression %q (use none, zst or gz)", c.Compression)
	}
	if c.Archive == "" {
		return fmt.Errorf("archive is required")
	}
	switch strings.ToLower(c.Plot.Extension) {
	case "png", "svg", "pdf", "eps", "jpg", "jpeg", "tif", "tiff":
	default:
		return fmt.Errorf("plot: unsupported extension %q", c.Plot.Extension)
	}
	return nil
}

// Suffix returns the file name suffix, with the leading dot, for documents
// written with this configuration.
func (c *Config) Suffix() string {
	s := "." + strings.ToLower(c.Format)
	switch strings.ToLower(c.Compression) {
	case "zst", "zstd":
		s += ".zst"
	case "gz", "gzip":
		s += ".gz"
	}
	return s
}
