// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	t.Parallel()

	if ConfigLoadFailedId != 1 {
		t.Errorf("ConfigLoadFailedId = %d, want 1", ConfigLoadFailedId)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	tests := []Id{
		ConfigLoadFailedId,
		ConfigInvalidId,
		InstallationIdFailedId,
		ReportServerStartFailedId,
		InvalidSwapInputId,
	}

	for _, id := range tests {
		got := Get(id)
		if got == nil {
			t.Errorf("Get(%d) returned nil", id)
			continue
		}
		if got.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, got.Id())
		}
	}

	if Get(0) != nil {
		t.Error("Get(0) should return nil")
	}
}

func TestValues(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != len(issues) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), len(issues))
	}
	for i := 1; i < len(values); i++ {
		if values[i-1].Id() >= values[i].Id() {
			t.Errorf("Values() not ordered by Id at %d", i)
		}
	}
}

func TestAllIssuesHaveContent(t *testing.T) {
	t.Parallel()

	for _, iss := range Values() {
		if strings.TrimSpace(string(iss.MarkdownMsg())) == "" {
			t.Errorf("issue %d has empty markdown", iss.Id())
		}
	}
}

func TestAllIssuesAreRenderable(t *testing.T) {
	t.Parallel()

	for _, iss := range Values() {
		out, err := iss.Render("notty")
		if err != nil {
			t.Errorf("Render() for issue %d failed: %v", iss.Id(), err)
			continue
		}
		if strings.TrimSpace(out) == "" {
			t.Errorf("Render() for issue %d produced no output", iss.Id())
		}
	}
}

func TestIssue_Render_WithLinks(t *testing.T) {
	t.Parallel()

	iss := &Issue{
		id:       99,
		mdMsg:    "# Title",
		docLinks: []HttpLink{"https://example.com/docs"},
	}

	out, err := iss.Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "See also") || !strings.Contains(out, "https://example.com/docs") {
		t.Errorf("Render() should list doc links, got %q", out)
	}

	links := iss.DocLinks()
	links[0] = "mutated"
	if iss.DocLinks()[0] != "https://example.com/docs" {
		t.Error("DocLinks() should return a copy")
	}
}
