// SPDX-License-Identifier: MPL-2.0

// Package config loads packforge settings with Viper.
//
// Values come from, in increasing precedence: built-in defaults, an
// optional CUE file (config.cue in the user config directory, in the
// working directory, or named explicitly), and PACKFORGE_* environment
// variables such as PACKFORGE_READER_ERROR_POLICY. The file is validated
// against the embedded #Config schema before it is merged.
package config
