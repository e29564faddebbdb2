package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Fatalf("levelFromString(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestComponentTagsRecords(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := Component(NewWithWriter(&buf, "info", "json"), "fetcher")
	log.Info("fetched", "url", "https://example.com")

	out := buf.String()
	if !strings.Contains(out, `"component":"fetcher"`) {
		t.Fatalf("expected component attribute, got %s", out)
	}
	if !strings.Contains(out, `"url":"https://example.com"`) {
		t.Fatalf("expected url attribute, got %s", out)
	}
}
