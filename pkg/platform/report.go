// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"runtime"

	"github.com/hostprobe/hostprobe/pkg/endian"
)

// Report is a snapshot of every detector query plus build facts.
type Report struct {
	Type                Type        `json:"type" toml:"type"`
	Signal              Signal      `json:"signal" toml:"signal"`
	IsMicrosoft         bool        `json:"is_microsoft" toml:"is_microsoft"`
	IsAndroid           bool        `json:"is_android" toml:"is_android"`
	IsMono              bool        `json:"is_mono" toml:"is_mono"`
	SystemVersionString string      `json:"system_version_string" toml:"system_version_string"`
	Sandbox             SandboxType `json:"sandbox" toml:"sandbox"`
	Endian              string      `json:"endian" toml:"endian"`
	GOOS                string      `json:"goos" toml:"goos"`
	GOARCH              string      `json:"goarch" toml:"goarch"`
	GoVersion           string      `json:"go_version" toml:"go_version"`
}

// Report gathers every query. Values come from the cache when already computed.
func (d *Detector) Report() Report {
	return Report{
		Type:                d.Type(),
		Signal:              d.Signal(),
		IsMicrosoft:         d.IsMicrosoft(),
		IsAndroid:           d.IsAndroid(),
		IsMono:              d.IsMono(),
		SystemVersionString: d.SystemVersionString(),
		Sandbox:             d.Sandbox(),
		Endian:              endian.Machine().String(),
		GOOS:                runtime.GOOS,
		GOARCH:              runtime.GOARCH,
		GoVersion:           runtime.Version(),
	}
}
