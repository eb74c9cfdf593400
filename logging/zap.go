// Package logging provides a zap-backed LogSink for the engine's
// Engine.Logger slot. It has no compile-time dependency on the gosnmp
// package; LogSink is matched structurally.
package logging

import "go.uber.org/zap"

// Sink adapts a *zap.SugaredLogger to the Debugf/Infof/Warnf/Errorf
// shape the engine expects.
type Sink struct {
	l *zap.SugaredLogger
}

// New wraps an existing zap logger.
func New(l *zap.Logger) *Sink {
	return &Sink{l: l.Sugar()}
}

// NewProduction builds a Sink around zap's production configuration,
// the default most callers want.
func NewProduction() (*Sink, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return New(l), nil
}

// NewDevelopment builds a Sink around zap's development configuration
// (human-readable console output, debug level enabled).
func NewDevelopment() (*Sink, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return New(l), nil
}

func (s *Sink) Debugf(format string, args ...interface{}) { s.l.Debugf(format, args...) }
func (s *Sink) Infof(format string, args ...interface{})  { s.l.Infof(format, args...) }
func (s *Sink) Warnf(format string, args ...interface{})  { s.l.Warnf(format, args...) }
func (s *Sink) Errorf(format string, args ...interface{}) { s.l.Errorf(format, args...) }

// Sync flushes any buffered log entries; call before process exit.
func (s *Sink) Sync() error { return s.l.Sync() }
