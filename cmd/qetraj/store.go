/*
 * store.go, part of qetraj.
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
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rmera/qetraj/store"
	"github.com/rmera/qetraj/traj/delta"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Keep documents in an SQLite archive",
}

var storePutCmd = &cobra.Command{
	Use:   "put DOCUMENT [NAME]",
	Short: "Add a document to the archive, replacing any with the same name",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := delta.ReadFile(args[0])
		if err != nil {
			return err
		}
		name := filepath.Base(documentBase(args[0]))
		if len(args) > 1 {
			name = args[1]
		}
		return withArchive(cmd, func(ctx context.Context, S *store.Store) error {
			if err := S.Put(ctx, name, doc); err != nil {
				return err
			}
			logger.Info("document archived", zap.String("name", name), zap.Int("steps", doc.Len()))
			return nil
		})
	},
}

var storeGetCmd = &cobra.Command{
	Use:   "get NAME OUTPUT",
	Short: "Write an archived document to OUTPUT",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(cmd, func(ctx context.Context, S *store.Store) error {
			doc, err := S.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return delta.WriteFile(args[1], doc)
		})
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the archived documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(cmd, func(ctx context.Context, S *store.Store) error {
			entries, err := S.List(ctx)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %5d steps  %s\n", e.Name, e.Steps, e.Created.Format(time.RFC3339))
			}
			return nil
		})
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Remove a document from the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(cmd, func(ctx context.Context, S *store.Store) error {
			return S.Delete(ctx, args[0])
		})
	},
}

func init() {
	storeCmd.PersistentFlags().String("archive", "", "Archive file (default from the configuration)")
	storeCmd.AddCommand(storePutCmd, storeGetCmd, storeListCmd, storeDeleteCmd)
	rootCmd.AddCommand(storeCmd)
}

// withArchive opens the archive, runs f on it, and closes it.
func withArchive(cmd *cobra.Command, f func(context.Context, *store.Store) error) error {
	path := cfg.Archive
	if cmd.Flags().Changed("archive") {
		path, _ = cmd.Flags().GetString("archive")
	}
	S, err := store.Open(path)
	if err != nil {
		return err
	}
	defer S.Close()
	logger.Debug("archive opened", zap.String("path", path))
	return f(cmd.Context(), S)
}
