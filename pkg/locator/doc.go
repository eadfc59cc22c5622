// SPDX-License-Identifier: MPL-2.0

// Package locator answers whether a named runtime component is present in the
// current process.
//
// A marker is a name whose mere presence signals a specific host runtime, for
// example the Android or Mono runtimes. Lookups are best-effort and never fail:
// any error while scanning is treated as "not present".
package locator
