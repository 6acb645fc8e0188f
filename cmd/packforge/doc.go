// SPDX-License-Identifier: MPL-2.0

// Package cmd implements the packforge command line: building packs from a
// manifest once or on every change, merging and converting packs, inspecting
// them, and managing the configuration file.
package cmd
