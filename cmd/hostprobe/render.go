// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hostprobe/hostprobe/internal/config"
	"github.com/hostprobe/hostprobe/pkg/platform"

	"github.com/charmbracelet/glamour"
	"github.com/pelletier/go-toml/v2"
)

const reportKeyWidth = 24

// reportField is one labelled row of a rendered report.
type reportField struct {
	key   string
	value string
}

// reportFields lists the report in display order.
func reportFields(r platform.Report) []reportField {
	return []reportField{
		{"type", r.Type.String()},
		{"signal", r.Signal.String()},
		{"is_microsoft", strconv.FormatBool(r.IsMicrosoft)},
		{"is_android", strconv.FormatBool(r.IsAndroid)},
		{"is_mono", strconv.FormatBool(r.IsMono)},
		{"system_version_string", r.SystemVersionString},
		{"sandbox", r.Sandbox.String()},
		{"endian", r.Endian},
		{"goos", r.GOOS},
		{"goarch", r.GOARCH},
		{"go_version", r.GoVersion},
	}
}

// renderReport renders r in format. When styled is true, markdown goes
// through glamour and text keys are colored.
func renderReport(r platform.Report, format config.OutputFormat, styled bool) ([]byte, error) {
	switch format {
	case config.FormatText:
		return renderText(r, styled), nil
	case config.FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode report as JSON: %w", err)
		}
		return append(data, '\n'), nil
	case config.FormatTOML:
		data, err := toml.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encode report as TOML: %w", err)
		}
		return data, nil
	case config.FormatMarkdown:
		md := renderMarkdown(r)
		if !styled {
			return []byte(md), nil
		}
		out, err := glamour.Render(md, "dark")
		if err != nil {
			return nil, fmt.Errorf("render markdown: %w", err)
		}
		return []byte(out), nil
	default:
		return nil, format.Validate()
	}
}

func renderText(r platform.Report, styled bool) []byte {
	var sb strings.Builder
	for _, f := range reportFields(r) {
		if styled {
			sb.WriteString(reportKeyStyle.Render(f.key))
		} else {
			fmt.Fprintf(&sb, "%-*s", reportKeyWidth, f.key)
		}
		sb.WriteString(f.value)
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

func renderMarkdown(r platform.Report) string {
	var sb strings.Builder
	sb.WriteString("# Platform report\n\n")
	sb.WriteString("| Property | Value |\n")
	sb.WriteString("|---|---|\n")
	for _, f := range reportFields(r) {
		fmt.Fprintf(&sb, "| %s | %s |\n", f.key, escapeMarkdownCell(f.value))
	}
	return sb.String()
}

// escapeMarkdownCell keeps a value inside one table cell.
func escapeMarkdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
