package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func newTestLogger(buf *bytes.Buffer, level Level, format Format) *Logger {
	l := New(Config{Level: level, Format: format, Output: buf})
	l.now = fixedClock
	return l
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("text")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, LevelDebug, FormatJSON).
		With(Fields{"bucket": "b"}).
		WithCorrelationID("abc-123")

	l.Warnf("upload failed", Fields{"path": "a.txt", "size": 3})

	var entry Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry.Level)
	assert.Equal(t, "upload failed", entry.Message)
	assert.Equal(t, "abc-123", entry.CorrelationID)
	assert.Equal(t, "b", entry.Fields["bucket"])
	assert.Equal(t, "a.txt", entry.Fields["path"])
	assert.Equal(t, float64(3), entry.Fields["size"])
	assert.True(t, entry.Timestamp.Equal(fixedClock()))
}

func TestLogger_TextSortedFields(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, LevelInfo, FormatText)

	l.Infof("listed", Fields{"z": "last", "a": "first", "n": 2})

	assert.Equal(t,
		"2024-05-01T12:00:00Z [info] listed a=\"first\" n=2 z=\"last\"\n",
		buf.String())
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, LevelWarn, FormatText)

	l.Debugf("hidden", nil)
	l.Infof("hidden", nil)
	assert.Empty(t, buf.String())

	l.Errorf("shown", nil)
	assert.Contains(t, buf.String(), "[error] shown")
	assert.True(t, l.Enabled(LevelWarn))
	assert.False(t, l.Enabled(LevelInfo))
}

func TestLogger_WithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := newTestLogger(&buf, LevelInfo, FormatText)
	child := parent.With(Fields{"op": "copy"})

	parent.Infof("parent", nil)
	child.Infof("child", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[0], "op=")
	assert.Contains(t, lines[1], `op="copy"`)
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.False(t, l.Enabled(LevelError))
	l.Errorf("nothing", nil)
}

func TestErr(t *testing.T) {
	f := Err(errors.New("boom"), Fields{"path": "x"})
	assert.Equal(t, "boom", f["error"])
	assert.Equal(t, "x", f["path"])

	f = Err(nil, nil)
	assert.NotContains(t, f, "error")
}

func TestConfigure(t *testing.T) {
	prev := Global()
	t.Cleanup(func() { SetGlobal(prev) })

	var buf bytes.Buffer
	l, err := Configure("debug", "text", &buf)
	require.NoError(t, err)
	assert.Same(t, l, Global())

	Global().Debugf("configured", nil)
	assert.Contains(t, buf.String(), "[debug] configured")
	assert.Contains(t, buf.String(), "file=")

	_, err = Configure("nope", "text", &buf)
	assert.Error(t, err)
	assert.Same(t, l, Global())
}

func TestFromCtx(t *testing.T) {
	var buf bytes.Buffer
	base := newTestLogger(&buf, LevelInfo, FormatJSON)

	ctx := context.Background()
	assert.Same(t, base, FromCtx(ctx, base))

	ctx = WithCorrelationIDCtx(ctx, "req-1")
	assert.Equal(t, "req-1", CorrelationIDFromCtx(ctx))
	assert.Equal(t, "req-1", FromCtx(ctx, base).CorrelationID())

	attached := base.With(Fields{"cmd": "ls"})
	ctx = WithLoggerCtx(ctx, attached)
	got := FromCtx(ctx, base)
	assert.Equal(t, "req-1", got.CorrelationID())
	got.Infof("hello", nil)
	assert.Contains(t, buf.String(), `"cmd":"ls"`)

	assert.NotNil(t, FromCtx(context.Background(), nil))
}
