// SPDX-License-Identifier: MPL-2.0

// Package reportserver serves the platform report over SSH using wish.
//
// Every session receives the rendered report and is closed. The first word
// of the session command selects the format ("ssh -p 2222 host json"); an
// empty command uses the default. Clients are not authenticated: the server
// binds to loopback by default and only discloses what "hostprobe show" prints.
package reportserver
