package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/speclint/internal/diag"
)

const ws = "/tmp/speclint-1234"

func TestClassify_Suppression(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"error summary", "1 error generated."},
		{"errors summary", "error: 3 errors generated."},
		{"warning summary", "warning: 2 warnings generated."},
		{"null error", "clang: error: (null)"},
		{"ios 8 framework warning", "ld: warning: embedded dylibs/frameworks only run on iOS 8 or later"},
		{"macro expansion note", "Foo.h:3:9: note: expanded from macro 'FOO'"},
		{"input file quirk", "error: 'InputFile' should have a type"},
		{"plain progress line", "CompileSwift normal x86_64 Foo.swift"},
		{"blank", ""},
	}

	c := New(ws)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, c.Classify(tt.line))
		})
	}
}

func TestClassify_Severity(t *testing.T) {
	tests := []struct {
		name string
		line string
		sev  diag.Severity
		msg  string
	}{
		{
			name: "located error",
			line: ws + "/Pods/Core/Foo.swift:10:5: error: bar",
			sev:  diag.SevError,
			msg:  " Core/Foo.swift:10:5: error: bar",
		},
		{
			name: "located warning",
			line: ws + "/App/main.m:1:2: warning: unused variable",
			sev:  diag.SevWarning,
			msg:  " App/main.m:1:2: warning: unused variable",
		},
		{
			name: "note",
			line: "    Foo.swift:3:1: note: declared here",
			sev:  diag.SevNote,
			msg:  " Foo.swift:3:1: note: declared here",
		},
		{
			name: "unlocated error defaults to note",
			line: "ld: error: linker command failed",
			sev:  diag.SevNote,
			msg:  " ld: error: linker command failed",
		},
	}

	c := New(ws)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.line)
			require.Len(t, got, 1)
			assert.Equal(t, tt.sev, got[0].Severity)
			assert.Equal(t, tt.msg, got[0].Message)
		})
	}
}

func TestClassify_MultilineOrder(t *testing.T) {
	raw := "=== BUILD TARGET Core ===\r\n" +
		ws + "/Pods/Core/A.swift:1:1: warning: w\n" +
		"1 warning generated.\n" +
		ws + "/Pods/Core/B.swift:2:2: error: e\n" +
		"** BUILD FAILED **\n"

	got := New(ws).Classify(raw)
	require.Len(t, got, 2)
	assert.Equal(t, Candidate{Severity: diag.SevWarning, Message: " Core/A.swift:1:1: warning: w"}, got[0])
	assert.Equal(t, Candidate{Severity: diag.SevError, Message: " Core/B.swift:2:2: error: e"}, got[1])
}

func TestClassify_WorkspaceIndependent(t *testing.T) {
	a := New("/tmp/speclint-aaaa").Classify("/tmp/speclint-aaaa/Pods/Core/Foo.swift:10:5: error: bar")
	b := New("/tmp/speclint-bbbb/").Classify("/tmp/speclint-bbbb/Pods/Core/Foo.swift:10:5: error: bar")
	assert.Equal(t, a, b)
}

func TestClassify_Idempotent(t *testing.T) {
	c := New(ws)
	first := c.Classify(ws + "/Pods/Core/Foo.swift:10:5: error: bar\n  Foo.swift:9:1: note: here")
	require.Len(t, first, 2)

	for _, cand := range first {
		again := c.Classify(cand.Message)
		require.Len(t, again, 1)
		assert.Equal(t, cand, again[0])
	}
}

func TestClassify_InvalidUTF8(t *testing.T) {
	got := New("").Classify("Foo.swift:1:1: warning: bad \xff byte")
	require.Len(t, got, 1)
	assert.Equal(t, " Foo.swift:1:1: warning: bad � byte", got[0].Message)
}
