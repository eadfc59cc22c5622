// SPDX-License-Identifier: MPL-2.0

// Package platform classifies the operating system and runtime the process is
// executing under.
//
// A Detector answers five questions: the platform Type, whether the OS family
// is Microsoft-like, whether the Android or Mono runtimes are present, and a
// free-text system version string. Every answer is computed lazily on first
// access and memoized in the detector's Cache for the lifetime of the
// detector; none of the queries fail. Filesystem and process-launch errors
// encountered while probing are logged at debug level and treated as negative
// signals.
//
// Classification of Unix-family hosts is layered: an Android runtime marker
// short-circuits, then a macOS-only library path is probed, and finally the
// lower-cased version string is matched against known prefixes. Obtaining the
// version string may read the kernel information file or run "uname -a" under
// a short timeout.
//
// Default returns a process-wide Detector for callers that do not need to
// inject probes.
package platform
