// SPDX-License-Identifier: MPL-2.0

// Package config loads cargoshim settings with Viper, using CUE as the file
// format.
//
// Settings come from built-in defaults, then an optional CUE file validated
// against the embedded #Config schema (config_schema.cue), then the
// environment. The file is the --config path when given, otherwise
// config.cue in the user config directory, otherwise ./cargoshim.cue.
package config
