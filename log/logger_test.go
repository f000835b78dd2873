package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	type spec struct {
		in     string
		expLvl Level
		expErr bool
	}
	specs := []spec{
		{"debug", Debug, false},
		{" Info ", Info, false},
		{"WARNING", Warning, false},
		{"error", Error, false},
		{"loud", Notice, true},
	}

	for index, s := range specs {
		lvl, err := ParseLevel(s.in)
		if s.expErr != (err != nil) {
			t.Fatalf("[spec %d] expected error to be %t; got %v", index, s.expErr, err)
		}
		if lvl != s.expLvl {
			t.Fatalf("[spec %d] expected level %s; got %s", index, s.expLvl, lvl)
		}
	}
}

func TestSinkRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)

	prev := GetLevel()
	defer SetLevel(prev)
	SetLevel(Warning)

	logger := New("test")
	logger.Info("hidden message")
	logger.Warning("visible message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Fatalf("expected info message to be filtered; got %q", out)
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "[test]") {
		t.Fatalf("expected warning message tagged with module name; got %q", out)
	}
}
