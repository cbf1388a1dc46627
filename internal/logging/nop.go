package logging

import "context"

// NopLogger discards everything. Useful in tests.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (l *NopLogger) Info(context.Context, string, ...any)  {}
func (l *NopLogger) Warn(context.Context, string, ...any)  {}
func (l *NopLogger) Error(context.Context, string, ...any) {}
func (l *NopLogger) With(...any) Logger                    { return l }
