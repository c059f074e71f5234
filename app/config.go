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

package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"lotra/therapy"
)

// Options contains the settings of a run that are not parameters of the line derivation itself.
type Options struct {
	Indication        string
	ReferenceDir      string   `mapstructure:"reference"`
	DataDir           string   `mapstructure:"data-dir"`
	Database          string   `mapstructure:"database"`
	Input             string   `mapstructure:"input"`
	OutputDir         string   `mapstructure:"output-dir"`
	OutFile           string   `mapstructure:"outfile"`
	DatabaseURL       string   `mapstructure:"db-url"`
	EventsTable       string   `mapstructure:"events-table"`
	SQLitePath        string   `mapstructure:"sqlite"`
	Threads           int      `mapstructure:"threads"`
	LogLevel          string   `mapstructure:"log-level"`
	LogConsole        bool     `mapstructure:"log-console"`
	From              string   `mapstructure:"from"`
	To                string   `mapstructure:"to"`
	MinEvents         int      `mapstructure:"min-events"`
	RequireDrugs      []string `mapstructure:"require-drugs"`
	Continuity        string   `mapstructure:"continuity"`
	SwitchMaintenance string   `mapstructure:"switch-maintenance"`
	StopOnCycleSwitch bool     `mapstructure:"stop-on-cycle-switch"`
	IgnoreEndDates    bool     `mapstructure:"ignore-end-dates"`
	KeepGoing         bool     `mapstructure:"keep-going"`
}

// InputFile returns the path of the medication event table: dataDir/INDICATION/database/input.
func (o *Options) InputFile() string {
	return filepath.Join(o.DataDir, o.Indication, o.Database, o.Input)
}

// OutputPath returns the directory for the output tables: outputDir/INDICATION/outfile.
func (o *Options) OutputPath() string {
	return filepath.Join(o.OutputDir, o.Indication, o.OutFile)
}

// IndicationDir returns the directory with the reference tables of the indication.
func (o *Options) IndicationDir() string {
	return filepath.Join(o.ReferenceDir, o.Indication)
}

// NewViper creates the configuration registry with defaults and environment variables prefixed with LOTRA_.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("LOTRA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("reference", "reference")
	v.SetDefault("data-dir", "data")
	v.SetDefault("database", "Test")
	v.SetDefault("input", "example_input.csv")
	v.SetDefault("output-dir", "output")
	v.SetDefault("outfile", "Test")
	v.SetDefault("events-table", "medication_events")
	v.SetDefault("threads", 0)
	v.SetDefault("log-level", "info")
	v.SetDefault("continuity", string(therapy.ContinuitySet))
	v.SetDefault("switch-maintenance", string(therapy.SwitchCheckAll))

	defaults := therapy.DefaultParameters()
	v.SetDefault(RegimenWindowKey, defaults.RegimenWindow)
	v.SetDefault(DiscontinuationGapKey, defaults.DiscontinuationGap)
	v.SetDefault(DrugSwitchIgnoreKey, defaults.DrugSwitchIgnore)
	v.SetDefault(ComboDroppedLineAdvanceKey, defaults.ComboDroppedLineAdvance)
	return v
}

// AddFlags declares the command line flags of a run.
func AddFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "configuration file (yaml, toml, or json)")
	flags.String("reference", "reference", "directory with a directory of reference tables per indication")
	flags.String("data-dir", "data", "directory with the medication event tables")
	flags.String("database", "Test", "name of the database the event table was extracted from")
	flags.String("input", "example_input.csv", "file name of the medication event table")
	flags.String("output-dir", "output", "directory for the output tables")
	flags.String("outfile", "Test", "name of the output directory within output-dir/INDICATION")
	flags.String("db-url", "", "read medication events from this PostgreSQL database instead of a file")
	flags.String("events-table", "medication_events", "table with the medication events in the PostgreSQL database")
	flags.String("sqlite", "", "also store the lines and doses in this SQLite database")
	flags.Int("threads", 0, "number of threads, 0 uses all available cores")
	flags.String("log-level", "info", "log level: debug, info, warn, or error")
	flags.Bool("log-console", false, "human readable log output")
	flags.String("from", "", "ignore events that start before this date")
	flags.String("to", "", "ignore events that start after this date")
	flags.Int("min-events", 0, "ignore patients with fewer events")
	flags.StringSlice("require-drugs", nil, "only keep patients that received one of these drugs")
	flags.String("continuity", string(therapy.ContinuitySet), "comparison of consecutive cycles: set or legacy")
	flags.String("switch-maintenance", string(therapy.SwitchCheckAll), "matching of the switch maintenance table: all, or non-empty to never match an empty table")
	flags.Bool("stop-on-cycle-switch", false, "end a line at the first cycle with new drugs")
	flags.Bool("ignore-end-dates", false, "set the end date of every event to its start date")
	flags.Bool("keep-going", false, "write the lines of the patients that could be processed when other patients fail")
	flags.Int("r-window", 0, "override the regimen window in days")
	flags.Int("l-disgap", 0, "override the discontinuation gap in days")
	flags.Bool("drug-switch-ignore", false, "override drug_switch_ignore")
	flags.Bool("combo-dropped-line-advance", false, "override combo_dropped_line_advance")
}

// BindFlags binds the flags declared by AddFlags to the configuration. The parameter overrides are bound to the keys
// used in par_general.csv.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	overrides := map[string]string{
		"r-window":                   RegimenWindowKey,
		"l-disgap":                   DiscontinuationGapKey,
		"drug-switch-ignore":         DrugSwitchIgnoreKey,
		"combo-dropped-line-advance": ComboDroppedLineAdvanceKey,
	}
	var err error
	flags.VisitAll(func(flag *pflag.Flag) {
		key := flag.Name
		if k, ok := overrides[key]; ok {
			key = k
		}
		if bindErr := v.BindPFlag(key, flag); bindErr != nil && err == nil {
			err = bindErr
		}
	})
	return err
}

// LoadOptions reads the optional configuration file and returns the run options for an indication.
func LoadOptions(v *viper.Viper, indication string) (*Options, error) {
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	opts := &Options{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	opts.Indication = strings.ToUpper(indication)
	if opts.Indication == "" {
		return nil, fmt.Errorf("indication is required")
	}
	return opts, nil
}

// LoadParameters determines the parameters of the line derivation for the indication of the options. Values from
// par_general.csv replace the built-in defaults, and are in turn overridden by the configuration file, the
// environment, and the command line.
func LoadParameters(v *viper.Viper, opts *Options) (therapy.Parameters, error) {
	file, err := referenceFile(opts.IndicationDir(), GeneralParametersFile)
	if err != nil {
		return therapy.Parameters{}, err
	}
	values, err := parseGeneralParameters(file)
	if err != nil {
		return therapy.Parameters{}, err
	}
	for key, value := range values {
		v.SetDefault(key, value)
	}
	params := therapy.Parameters{
		RegimenWindow:           v.GetInt(RegimenWindowKey),
		DiscontinuationGap:      v.GetInt(DiscontinuationGapKey),
		DrugSwitchIgnore:        v.GetBool(DrugSwitchIgnoreKey),
		ComboDroppedLineAdvance: v.GetBool(ComboDroppedLineAdvanceKey),
		Continuity:              therapy.ContinuityCheck(strings.ToLower(opts.Continuity)),
		SwitchMaintenance:       therapy.SwitchMaintenanceCheck(strings.ToLower(opts.SwitchMaintenance)),
		StopOnCycleSwitch:       opts.StopOnCycleSwitch,
	}
	if err := params.Validate(); err != nil {
		return therapy.Parameters{}, fmt.Errorf("%s: %w", opts.Indication, err)
	}
	return params, nil
}
