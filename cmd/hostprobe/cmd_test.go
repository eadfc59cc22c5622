// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hostprobe/hostprobe/internal/config"
	"github.com/hostprobe/hostprobe/internal/installid"
	"github.com/hostprobe/hostprobe/internal/issue"
	"github.com/hostprobe/hostprobe/internal/reportserver"
	"github.com/hostprobe/hostprobe/internal/testutil"
	"github.com/hostprobe/hostprobe/pkg/endian"
	"github.com/hostprobe/hostprobe/pkg/locator"
	"github.com/hostprobe/hostprobe/pkg/platform"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const testNativeVersion = "Linux 6.1.0-test"

type (
	staticProvider struct {
		cfg  *config.Config
		path string
		err  error
	}

	// silentProber finds nothing and runs nothing.
	silentProber struct{}
)

func (p staticProvider) Load(context.Context, config.LoadOptions) (*config.Config, string, error) {
	if p.err != nil {
		return nil, "", p.err
	}
	return p.cfg, p.path, nil
}

func (silentProber) PathExists(string) bool { return false }
func (silentProber) ReadAllText(string) (string, bool) { return "", false }
func (silentProber) Run(context.Context, time.Duration, string, ...string) (string, bool) {
	return "", false
}

// newTestApp returns an App with a deterministic Linux detector and the
// installation directory inside a temp dir.
func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if cfg.Installation.Dir == "" {
		cfg.Installation.Dir = t.TempDir()
	}
	return &App{
		Config: staticProvider{cfg: cfg},
		DetectorOptions: []platform.Option{
			platform.WithSignal(platform.SignalUnix),
			platform.WithProber(silentProber{}),
			platform.WithLocator(locator.Static{}),
			platform.WithNativeVersion(func() string { return testNativeVersion }),
			platform.WithLookupEnv(func(string) string { return "" }),
		},
	}
}

func execute(t *testing.T, app *App, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	root := NewRootCommand(app)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err = root.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}

func TestShow_JSON(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, newTestApp(t, nil), "show", "--format", "json")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}

	want := map[string]any{
		"type":                  "Linux",
		"signal":                "Unix",
		"is_microsoft":          false,
		"is_android":            false,
		"is_mono":               false,
		"system_version_string": testNativeVersion,
		"sandbox":               "none",
		"endian":                endian.Machine().String(),
	}
	for key, value := range want {
		if got[key] != value {
			t.Errorf("%s = %v, want %v", key, got[key], value)
		}
	}
}

func TestShow_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   []string
	}{
		{"text", []string{"type", "Linux", "system_version_string", testNativeVersion}},
		{"toml", []string{"type = ", "Linux", "system_version_string = "}},
		{"markdown", []string{"# Platform report", "| type | Linux |", "| sandbox | none |"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			stdout, _, err := execute(t, newTestApp(t, nil), "show", "--format", tt.format)
			if err != nil {
				t.Fatalf("show failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(stdout, want) {
					t.Errorf("output missing %q:\n%s", want, stdout)
				}
			}
		})
	}
}

func TestShow_DefaultFormatFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.UI.Format = config.FormatJSON

	stdout, _, err := execute(t, newTestApp(t, cfg), "show")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !json.Valid([]byte(stdout)) {
		t.Errorf("ui.format json should make show print JSON, got:\n%s", stdout)
	}
}

func TestShow_InvalidFormat(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, newTestApp(t, nil), "show", "--format", "xml")
	if !errors.Is(err, config.ErrInvalidOutputFormat) {
		t.Errorf("error = %v, want ErrInvalidOutputFormat", err)
	}
}

func TestConfigLoadFailure(t *testing.T) {
	t.Parallel()

	loadErr := issue.NewErrorContext().
		WithOperation("load configuration").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(errors.New("broken")).
		BuildError()
	app := newTestApp(t, nil)
	app.Config = staticProvider{err: loadErr}

	if _, _, err := execute(t, app, "show"); !errors.Is(err, loadErr) {
		t.Errorf("show error = %v, want the load error", err)
	}

	// config path does not need a readable config file.
	app.configFile = filepath.Join(t.TempDir(), "custom.cue")
	stdout, _, err := execute(t, app, "--config", app.configFile, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if strings.TrimSpace(stdout) != app.configFile {
		t.Errorf("config path = %q, want %q", stdout, app.configFile)
	}
}

func TestSwapHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"single group", "0a0b0c0d", 4, "0d0c0b0a"},
		{"partial trailing group", "0102030405", 4, "04030201 05"},
		{"pairs with separators", "de:ad be:ef", 2, "adde efbe"},
		{"prefix", "0x0102", 2, "0201"},
		{"short trailing group reversed", "01020304050607", 4, "04030201 070605"},
		{"empty", "", 2, ""},
		{"width beyond input", "0a0b", math.MaxInt, "0b0a"},
		{"width beyond input with separators", "01 02 03", math.MaxInt - 1, "030201"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := swapHex(tt.input, tt.width)
			if err != nil {
				t.Fatalf("swapHex(%q, %d) error = %v", tt.input, tt.width, err)
			}
			if got != tt.want {
				t.Errorf("swapHex(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}
}

func TestSwap_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{"width too small", []string{"swap", "--width", "1", "0102"}, endian.ErrInvalidArgument},
		{"not hex", []string{"swap", "zz"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := execute(t, newTestApp(t, nil), tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}

			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error should be an ActionableError, got %T", err)
			}
			if ae.IssueId != issue.InvalidSwapInputId {
				t.Errorf("IssueId = %v, want InvalidSwapInputId", ae.IssueId)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.target)
			}
		})
	}
}

func TestEndian(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, newTestApp(t, nil), "endian")
	if err != nil {
		t.Fatalf("endian failed: %v", err)
	}
	if got, want := strings.TrimSpace(stdout), endian.Machine().String(); got != want {
		t.Errorf("endian = %q, want %q", got, want)
	}
}

func TestID(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	dir := app.Config.(staticProvider).cfg.Installation.Dir

	stdout, _, err := execute(t, app, "id")
	if err != nil {
		t.Fatalf("id failed: %v", err)
	}
	guid, err := uuid.Parse(strings.TrimSpace(stdout))
	if err != nil {
		t.Fatalf("id printed %q, not a UUID: %v", stdout, err)
	}

	data, err := os.ReadFile(filepath.Join(dir, installid.FileName))
	if err != nil {
		t.Fatalf("GUID file not created: %v", err)
	}
	if !strings.HasPrefix(string(data), guid.String()) {
		t.Errorf("GUID file %q does not start with %s", data, guid)
	}

	baseDir := filepath.Join(t.TempDir(), "bin")
	stdout, _, err = execute(t, app, "id", "--program", "--base-dir", baseDir)
	if err != nil {
		t.Fatalf("id --program failed: %v", err)
	}
	want, err := installid.NewStore(dir).ProgramID(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(stdout); got != strconv.FormatUint(uint64(want), 10) {
		t.Errorf("program id = %s, want %d", got, want)
	}
}

func TestID_InvalidGUIDFile(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	dir := app.Config.(staticProvider).cfg.Installation.Dir
	testutil.MustWriteFile(t, filepath.Join(dir, installid.FileName), []byte("garbage\n"))

	_, _, err := execute(t, app, "id")
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.IssueId != issue.InstallationIdFailedId {
		t.Fatalf("error = %v, want an ActionableError for InstallationIdFailedId", err)
	}
	if !errors.Is(err, installid.ErrInvalidGUID) {
		t.Errorf("error should wrap ErrInvalidGUID: %v", err)
	}
}

func TestConfigShowAndDump(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Server.Port = 2200
	app := newTestApp(t, cfg)

	stdout, _, err := execute(t, app, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"Current Configuration", "(using defaults)", "2200", "uname -a"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config show missing %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = execute(t, app, "config", "dump")
	if err != nil {
		t.Fatalf("config dump failed: %v", err)
	}
	if stdout != config.GenerateCUE(cfg) {
		t.Errorf("config dump = %q, want GenerateCUE output", stdout)
	}
}

func TestRenderIssueGuide(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderIssueGuide(&buf, errors.New("plain"))
	if buf.Len() != 0 {
		t.Errorf("plain errors should not render a guide, got %q", buf.String())
	}

	err := swapInputError(errors.New("bad"))
	renderIssueGuide(&buf, err)
	if !strings.Contains(buf.String(), "swap") {
		t.Errorf("guide should mention swap, got %q", buf.String())
	}
}

func TestReportRenderer(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	render := reportRenderer(app.detector(), config.FormatText)

	out, err := render("")
	if err != nil {
		t.Fatalf("default render failed: %v", err)
	}
	if !strings.Contains(string(out), testNativeVersion) {
		t.Errorf("text report missing version string:\n%s", out)
	}

	out, err = render("json")
	if err != nil || !json.Valid(out) {
		t.Errorf("json render = %q, %v", out, err)
	}

	if _, err := render("xml"); !errors.Is(err, config.ErrInvalidOutputFormat) {
		t.Errorf("render(xml) error = %v, want ErrInvalidOutputFormat", err)
	}
}

func TestRunReportServer(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	cfg := reportserver.DefaultConfig()
	srv := reportserver.New(cfg, reportRenderer(app.detector(), config.FormatText))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	// The banner is printed once Start has returned; stop the server then.
	out := &notifyWriter{written: make(chan struct{})}
	go func() {
		<-out.written
		cancel()
	}()

	c := &cobra.Command{}
	c.SetOut(out)

	if err := runReportServer(ctx, c, srv); err != nil {
		t.Fatalf("runReportServer() error = %v", err)
	}
	if !strings.Contains(out.buf.String(), srv.Address()) {
		t.Errorf("output should name the address %q, got %q", srv.Address(), out.buf.String())
	}
}

// notifyWriter closes written on the first Write.
type notifyWriter struct {
	buf     bytes.Buffer
	once    sync.Once
	written chan struct{}
}

func (w *notifyWriter) Write(p []byte) (int, error) {
	n, err := w.buf.Write(p)
	w.once.Do(func() { close(w.written) })
	return n, err
}

func TestRunReportServer_PortInUse(t *testing.T) {
	t.Parallel()

	var lc net.ListenConfig
	occupied, err := lc.Listen(t.Context(), "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer occupied.Close()

	cfg := reportserver.DefaultConfig()
	cfg.Port = occupied.Addr().(*net.TCPAddr).Port
	srv := reportserver.New(cfg, func(string) ([]byte, error) { return nil, nil })

	c := &cobra.Command{}
	c.SetOut(&bytes.Buffer{})

	err = runReportServer(t.Context(), c, srv)
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.IssueId != issue.ReportServerStartFailedId {
		t.Errorf("error = %v, want an ActionableError for ReportServerStartFailedId", err)
	}
}

func TestInitConfig_Force(t *testing.T) {
	dir := t.TempDir()
	config.SetConfigDirOverride(dir)
	t.Cleanup(config.Reset)

	path := filepath.Join(dir, "config.cue")
	testutil.MustWriteFile(t, path, []byte("server: port: 70000\n"))

	if _, err := initConfig(false); err != nil {
		t.Fatalf("initConfig(false) error = %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "server: port: 70000\n" {
		t.Errorf("initConfig(false) replaced an existing file: %q", data)
	}

	got, err := initConfig(true)
	if err != nil {
		t.Fatalf("initConfig(true) error = %v", err)
	}
	if got != path {
		t.Errorf("initConfig(true) = %q, want %q", got, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != config.GenerateCUE(config.DefaultConfig()) {
		t.Errorf("initConfig(true) wrote %q, want the default configuration", data)
	}
}
