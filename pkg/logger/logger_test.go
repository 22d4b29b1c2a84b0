package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bedownloader/pkg/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger(buf *bytes.Buffer) Logger {
	return NewFromZerolog(zerolog.New(buf).With().Timestamp().Logger())
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug level", &config.LoggingConfig{Level: "debug"}, false},
		{"empty level defaults to info", &config.LoggingConfig{}, false},
		{"invalid level", &config.LoggingConfig{Level: "loud"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(os.TempDir(), "bedownloader-test.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
			if tt.cfg.File != "" {
				os.Remove(tt.cfg.File)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.level)
		require.NoError(t, err, tt.level)
		assert.Equal(t, tt.expected, got, tt.level)
	}
}

func TestWithFieldsChaining(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	l := bufferLogger(&buf)

	l.WithField("project_id", "123").
		WithFields(map[string]interface{}{"images": 4, "gallery": true}).
		Info("project finished")

	out := buf.String()
	assert.Contains(t, out, "project finished")
	assert.Contains(t, out, `"project_id":"123"`)
	assert.Contains(t, out, `"images":4`)
	assert.Contains(t, out, `"gallery":true`)
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	base := bufferLogger(&buf)

	_ = base.WithField("child", "yes")
	base.Info("parent line")

	assert.NotContains(t, buf.String(), "child")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger(&buf)

	assert.Same(t, l, l.WithError(nil))

	l.WithError(errors.New("disk full")).Error("write failed")
	assert.Contains(t, buf.String(), "disk full")
}

func TestStructuredFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger(&buf)

	l.WarnWithFields("mixed", map[string]interface{}{
		"dur":   2 * time.Second,
		"when":  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"urls":  []string{"a", "b"},
		"cause": errors.New("boom"),
		"other": struct{ N int }{N: 1},
	})

	out := buf.String()
	assert.Contains(t, out, `"urls":["a","b"]`)
	assert.Contains(t, out, `"cause":"boom"`)
}

func TestTestLoggerCapturesFields(t *testing.T) {
	tl := NewTestLogger()
	tl.WithField("url", "https://www.behance.net/gallery/1/x").
		WithError(errors.New("timeout")).
		Warn("navigation failed")

	msgs := tl.GetMessagesByLevel("WARN")
	require.Len(t, msgs, 1)
	assert.Equal(t, "https://www.behance.net/gallery/1/x", msgs[0].Fields["url"])
	assert.EqualError(t, msgs[0].Error, "timeout")
	assert.True(t, tl.HasMessage("navigation"))

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestHelpers(t *testing.T) {
	tl := NewTestLogger()

	LogImageDownload(tl, "42", "https://img/a.jpg", "/out/a.jpg", nil)
	LogImageDownload(tl, "42", "https://img/b.jpg", "", errors.New("404"))
	LogProjectResult(tl, "https://www.behance.net/gallery/42/x", "completed", 2)

	assert.Len(t, tl.GetMessagesByLevel("DEBUG"), 1)
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 1)
	assert.Len(t, tl.GetMessagesByLevel("INFO"), 1)
}

func TestGlobalLogger(t *testing.T) {
	require.NoError(t, Initialize(&config.LoggingConfig{Level: "debug"}))
	assert.NotNil(t, GetLogger())

	Debug("debug message")
	Info("info message")
	WithField("key", "value").Info("with field")
	WithError(errors.New("x")).Error("with error")
}
