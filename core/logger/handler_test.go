package logger

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"log/slog"
)

func newTestLogger(t *testing.T, format logFormat) (*slog.Logger, *asyncWriter, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf})
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	return slog.New(handler), aw, buf
}

func closeAndRead(t *testing.T, aw *asyncWriter, buf *bytes.Buffer) string {
	t.Helper()
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, aw, buf := newTestLogger(t, formatKV)
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	LogEvent(ctx, log.With("component", "registration"), slog.LevelInfo, "step.advance",
		slog.String("status", "OK"),
		slog.String("from_step", "choosing_course"),
	)

	line := closeAndRead(t, aw, buf)
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=registration", "event=step.advance", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "from_step=choosing_course"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	log, aw, buf := newTestLogger(t, formatJSON)
	ctx := WithRID(context.Background(), "11:22:33")

	LogEvent(ctx, log.With("component", "store"), slog.LevelError, "save.failed",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.Duration("duration", 1500*time.Microsecond),
	)

	line := closeAndRead(t, aw, buf)
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"store"`, `"event":"save.failed"`, `"status":"fail"`, `"rid":"` + CompactRID("11:22:33") + `"`, `"rid_full":"11:22:33"`, `"duration_ms":2`, `"err":"boom"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerDropsEmptyAndBelowLevel(t *testing.T) {
	log, aw, buf := newTestLogger(t, formatKV)
	LogEvent(context.Background(), log, slog.LevelDebug, "hidden")
	LogEvent(context.Background(), log, slog.LevelWarn, "shown", slog.String("cause", ""))

	line := closeAndRead(t, aw, buf)
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug record should be filtered: %s", line)
	}
	if strings.Contains(line, "cause=") {
		t.Fatalf("empty attribute should be pruned: %s", line)
	}
	if !strings.Contains(line, "component=app") {
		t.Fatalf("default component missing: %s", line)
	}
}

func TestCompactRID(t *testing.T) {
	if got := CompactRID("36:72:1"); got != "10.20.1" {
		t.Fatalf("CompactRID = %q", got)
	}
	if got := CompactRID("not-a-rid"); got != "not-a-rid" {
		t.Fatalf("CompactRID passthrough = %q", got)
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("ab\x00c\u200bd", 3); got != "abc" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
}

func TestDebugSampler(t *testing.T) {
	s := &debugSampler{}
	s.configure("1/3")
	var got []bool
	for i := 0; i < 6; i++ {
		got = append(got, s.allow())
	}
	want := []bool{true, false, false, true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("allow sequence = %v, want %v", got, want)
		}
	}
}

func TestSummaryHelpers(t *testing.T) {
	if Status(nil) != "ok" || Status(io.EOF) != "fail" {
		t.Fatal("Status mapping")
	}
	if got := RoundMS(1500 * time.Microsecond); got != 2*time.Millisecond {
		t.Fatalf("RoundMS = %v", got)
	}
	if got := RoundMS(-time.Second); got != 0 {
		t.Fatalf("RoundMS(negative) = %v", got)
	}
	files := []string{"0001_init.up.sql", "0002_index.up.sql", "0003_stats.up.sql"}
	if got, cut := SummarizeStrings(files, 2); got != "0001_init.up.sql, 0002_index.up.sql" || !cut {
		t.Fatalf("SummarizeStrings(2) = %q, %v", got, cut)
	}
	if got, cut := SummarizeStrings(files, 5); cut || strings.Count(got, ",") != 2 {
		t.Fatalf("SummarizeStrings(5) = %q, %v", got, cut)
	}
	if got, cut := SummarizeStrings(nil, 0); got != "" || cut {
		t.Fatalf("SummarizeStrings(nil) = %q, %v", got, cut)
	}
}
