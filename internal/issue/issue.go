// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	ConfigLoadFailedId Id = iota + 1
	ConfigInvalidId
	InstallationIdFailedId
	ReportServerStartFailedId
	InvalidSwapInputId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a markdown troubleshooting guide shown after a CLI failure.
	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the guide with the named glamour style ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the configuration

hostprobe reads ` + "`config.cue`" + ` from its configuration directory, then from the current directory.

## Things you can try
- Print the location hostprobe looks at:
~~~
$ hostprobe config path
~~~
- Move the broken file aside and write the defaults:
~~~
$ hostprobe config init
~~~`,
	}

	configInvalidIssue = &Issue{
		id: ConfigInvalidId,
		mdMsg: `
# The configuration has invalid values

Values set through ` + "`HOSTPROBE_*`" + ` environment variables are not checked by the schema
and are validated after loading.

## Things you can try
- Inspect the effective configuration:
~~~
$ hostprobe config show
~~~
- Unset overrides such as ` + "`HOSTPROBE_UI_FORMAT`" + ` and retry.`,
	}

	installationIdFailedIssue = &Issue{
		id: InstallationIdFailedId,
		mdMsg: `
# Failed to read or create the installation ID

The installation GUID lives in a file inside the installation directory.

## Things you can try
- Check that the directory is writable.
- Point ` + "`installation.dir`" + ` at another directory in your config file.`,
	}

	reportServerStartFailedIssue = &Issue{
		id: ReportServerStartFailedId,
		mdMsg: `
# The report server could not start

## Things you can try
- Pick another port:
~~~
$ hostprobe serve --port 0
~~~
- Check that no other process is bound to the configured address.`,
	}

	invalidSwapInputIssue = &Issue{
		id: InvalidSwapInputId,
		mdMsg: `
# Invalid swap input

` + "`hostprobe swap`" + ` takes hexadecimal bytes and a positive group width.

## Example
~~~
$ hostprobe swap --width 4 0102030405
04030201 05
~~~`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		configInvalidIssue.Id():           configInvalidIssue,
		installationIdFailedIssue.Id():    installationIdFailedIssue,
		reportServerStartFailedIssue.Id(): reportServerStartFailedIssue,
		invalidSwapInputIssue.Id():        invalidSwapInputIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	values := maps.Values(issues)
	slices.SortFunc(values, func(a, b *Issue) int {
		return int(a.id) - int(b.id)
	})
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
