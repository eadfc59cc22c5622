// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from $XDG_CONFIG_HOME/hostprobe/config.cue on Linux,
// ~/Library/Application Support/hostprobe/config.cue on macOS and
// %APPDATA%\hostprobe\config.cue on Windows, falling back to ./config.cue.
// It covers detection probes (timeout, kernel information file, version
// command), the installation identity directory, the report server and UI settings.
//
// Files are validated against an embedded CUE schema (config_schema.cue).
// Environment variables prefixed with HOSTPROBE_ override file values,
// for example HOSTPROBE_SERVER_PORT=2200.
package config
