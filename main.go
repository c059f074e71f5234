// PTRA: Patient Trajectory Analysis Library
// Copyright (c) 2022 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/ptra/blob/master/LICENSE.txt>.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"lotra/app"
)

/*
Lotra is a tool for deriving lines of therapy from medication events.

Usage:
	lotra run INDICATION [flags]

Example:
	lotra run NSCLC --reference ./reference --data-dir ./data --database Test --input example_input.csv
	--output-dir ./output --outfile Test --threads 8 --sqlite ./output/lot.db

The medication events are read from DATA-DIR/INDICATION/DATABASE/INPUT, a CSV file with the columns PATIENT_ID,
MED_NAME, MED_START, and MED_END. The reference tables are read from REFERENCE/INDICATION. The lines of therapy are
written to OUTPUT-DIR/INDICATION/OUTFILE/output_lot.csv, and the medication events with the line they were assigned
to are written to OUTPUT-DIR/INDICATION/OUTFILE/output_doses.csv.

The flags are:

--config file
	A yaml, toml, or json file with values for any of the flags below. Every flag can also be set with an environment
	variable, e.g. LOTRA_DATA_DIR for --data-dir.
--reference dir
	The directory that contains a directory of reference tables per indication: par_general.csv, line_name.csv,
	line_substitutions.csv, line_additions.csv, line_maintenance.csv, and episode_gap.csv.
--db-url url
	Read the medication events from a PostgreSQL database instead of a file. The table is set with --events-table and
	must have the columns patient_id, med_name, med_start, and med_end.
--sqlite file
	Also store the lines of therapy and the doses in a SQLite database. Every run is stored with a unique run ID.
--threads nr
	Sets the number of threads used for processing patients in parallel.
--from date, --to date
	Ignore medication events that start outside the study window.
--min-events nr
	Ignore patients with fewer medication events.
--require-drugs drug,drug,...
	Only keep patients that received at least one of the given drugs.
--r-window days, --l-disgap days, --drug-switch-ignore, --combo-dropped-line-advance
	Override the parameters of par_general.csv.
--continuity set | legacy
	Sets how the drugs of consecutive cycles are compared. set compares the drug sets. legacy compares the characters
	of the joined drug names, and is only meant for comparison with earlier results.
--switch-maintenance all | non-empty
	Sets how the SWITCH rows of line_maintenance.csv are matched against the regimen of the line after the first
	line. all requires every listed drug, so that an empty list matches every regimen and all later lines are
	maintenance. non-empty never matches an empty list.
--stop-on-cycle-switch
	End a line at the first cycle with new drugs instead of scanning on for a later boundary.
--ignore-end-dates
	Set the end date of every medication event to its start date.
--keep-going
	Write the lines of the patients that could be processed when other patients fail. The run still fails.
*/

// commandLine rebuilds the command line from the flags that were set, for logging.
func commandLine(args []string, flags *pflag.FlagSet) string {
	var command bytes.Buffer
	fmt.Fprint(&command, app.ProgramName, " run ", strings.Join(args, " "))
	flags.Visit(func(flag *pflag.Flag) {
		fmt.Fprint(&command, " --", flag.Name, " ", flag.Value.String())
	})
	return command.String()
}

func runCmd() *cobra.Command {
	v := app.NewViper()
	cmd := &cobra.Command{
		Use:   "run INDICATION",
		Short: "Derive lines of therapy for the patients of an indication",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return app.BindFlags(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := app.LoadOptions(v, args[0])
			if err != nil {
				return err
			}
			if err := app.InitLogger(opts.LogLevel, opts.LogConsole); err != nil {
				return err
			}
			if opts.Threads > 0 {
				runtime.GOMAXPROCS(opts.Threads)
			}
			log.Info().Msg(app.ProgramMessage())
			log.Info().Str("command", commandLine(args, cmd.Flags())).Msg("executing command")
			params, err := app.LoadParameters(v, opts)
			if err != nil {
				return err
			}
			_, err = app.Execute(cmd.Context(), opts, params, cmd.OutOrStdout())
			return err
		},
	}
	app.AddFlags(cmd.Flags())
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.ProgramMessage())
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:           app.ProgramName,
		Short:         "Lines of therapy derivation from medication events",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}
