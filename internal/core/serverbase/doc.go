// SPDX-License-Identifier: MPL-2.0

// Package serverbase provides the lifecycle state machine shared by
// long-running servers such as the SSH report server.
//
// A Base moves Created -> Starting -> Running -> Stopping -> Stopped, or to
// Failed from Starting or Running. Instances are single-use.
package serverbase
