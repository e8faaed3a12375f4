package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ac "github.com/gofhir/anthrocheck"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(
		WithOutput(&buf),
		WithFormat(FormatJSON),
		WithLevel(slog.LevelDebug),
		WithAttr(slog.String("service", "anthrocheck")),
	)

	log.Debug("checked", RecordID("r1"), Rule(ac.RuleBMI), Error(errors.New("boom")))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "checked", entry["msg"])
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "anthrocheck", entry["service"])
	assert.Equal(t, "r1", entry["record_id"])
	assert.Equal(t, "bmi", entry["rule"])
	assert.Equal(t, "boom", entry["error"])
}

func TestNew_TextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithOutput(&buf), WithLevel(slog.LevelWarn))

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
}

func TestNew_IgnoresBadOptions(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithOutput(&buf), WithOutput(nil), WithFormat("xml"))
	log.Info("still text")
	assert.True(t, strings.HasPrefix(buf.String(), "time="))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("nothing") })
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"Warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestAttrs(t *testing.T) {
	assert.True(t, Error(nil).Equal(slog.Attr{}))
	assert.True(t, Result(nil).Equal(slog.Attr{}))

	res := ac.NewResult()
	res.AddFinding(ac.Warning(ac.RuleChildWeight).Message("deviates").Build())
	attr := Result(res)
	assert.Equal(t, "result", attr.Key)
	assert.Equal(t, slog.KindGroup, attr.Value.Kind())
	assert.Len(t, attr.Value.Group(), 4)
}
