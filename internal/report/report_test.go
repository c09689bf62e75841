package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/speclint/internal/diag"
	"github.com/ShayCichocki/speclint/pkg/models"
)

func TestPrinter_Line(t *testing.T) {
	p := New(&bytes.Buffer{}, WithoutColor())

	tests := []struct {
		name string
		d    diag.Diagnostic
		want string
	}{
		{
			name: "single platform",
			d: diag.Diagnostic{Severity: diag.SevError, Attribute: "xcodebuild", Message: " Foo.swift:1:1: error: x",
				Platforms: []models.PlatformName{models.PlatformIOS}},
			want: "    - ERROR | [iOS] xcodebuild:  Foo.swift:1:1: error: x",
		},
		{
			name: "several platforms and subspecs",
			d: diag.Diagnostic{Severity: diag.SevWarning, Attribute: "url", Message: "m",
				Platforms: []models.PlatformName{models.PlatformIOS, models.PlatformMacOS},
				Subspecs:  []string{"Core/A", "Core/B"}},
			want: "    - WARN  | [Core/A,Core/B] url: m",
		},
		{
			name: "many subspecs",
			d: diag.Diagnostic{Severity: diag.SevNote, Attribute: "xcodebuild", Message: "n",
				Platforms: []models.PlatformName{models.PlatformTvOS},
				Subspecs:  []string{"A/1", "A/2", "A/3", "A/4"}},
			want: "    - NOTE  | [tvOS] [A/1, A/2, A/3, and more...] xcodebuild: n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Line(tt.d))
		})
	}
}

func TestLabel_CoversEverySeverity(t *testing.T) {
	for sev := diag.Severity(0); sev < diag.NumSeverities; sev++ {
		assert.Len(t, Label(sev), 5)
	}
}

func TestPrinter_ResultsErrorsFirst(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, WithoutColor())
	p.Results([]diag.Diagnostic{
		{Severity: diag.SevNote, Attribute: "a", Message: "note"},
		{Severity: diag.SevError, Attribute: "a", Message: "first error"},
		{Severity: diag.SevWarning, Attribute: "a", Message: "warning"},
		{Severity: diag.SevError, Attribute: "a", Message: "second error"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "first error")
	assert.Contains(t, lines[1], "second error")
	assert.Contains(t, lines[2], "warning")
	assert.Contains(t, lines[3], "note")
}

func TestPrinter_Verdict(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, WithoutColor())

	p.Verdict("Core (1.0.0)", true, "")
	p.Verdict("Core (1.0.0)", false, "2 errors")
	p.Workspace("/tmp/speclint-abc")

	assert.Equal(t, " -> Core (1.0.0) passed validation.\n"+
		"[!] Core (1.0.0) did not pass validation, due to 2 errors.\n"+
		"Pods workspace available at `/tmp/speclint-abc/App.xcworkspace` for inspection.\n", buf.String())
}

func TestPrinter_Banner(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, WithoutColor()).Banner("Core (1.0.0)")
	assert.Equal(t, "speclint Core (1.0.0)\n\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Report{
		Spec:          "Core (1.0.0)",
		FailureReason: "1 error",
		Results: []diag.Diagnostic{{
			Severity:  diag.SevError,
			Attribute: "spec",
			Message:   "Building a test spec (Core/Extra) is not supported.",
			Subspecs:  []string{"Core/Extra"},
		}},
	}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, false, decoded["success"])
	results := decoded["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "error", results[0].(map[string]any)["severity"])

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, Report{Spec: "Core (1.0.0)", Success: true}))
	assert.Contains(t, buf.String(), `"results": []`)
	assert.NotContains(t, buf.String(), "failure_reason")
}
