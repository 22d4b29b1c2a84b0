package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogImageDownload logs the outcome of a single image download
func LogImageDownload(l Logger, projectID, imageURL, path string, err error) {
	fields := map[string]interface{}{
		"project_id": projectID,
		"image_url":  imageURL,
	}
	if path != "" {
		fields["path"] = path
	}

	if err != nil {
		l.WithError(err).WarnWithFields("image download failed", fields)
		return
	}
	l.DebugWithFields("image saved", fields)
}

// LogProjectResult logs how a project ended
func LogProjectResult(l Logger, projectURL, outcome string, images int) {
	l.InfoWithFields("project finished", map[string]interface{}{
		"project_url": projectURL,
		"outcome":     outcome,
		"images":      images,
	})
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	l = l.WithField("component", component)
	if len(config) > 0 {
		l = l.WithFields(config)
	}
	l.Debug("component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(l Logger, component, reason string) {
	l.DebugWithFields("component stopped", map[string]interface{}{
		"component": component,
		"reason":    reason,
	})
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { nop := zerolog.Nop(); return &nop }
