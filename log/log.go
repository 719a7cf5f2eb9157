// MIT License
//
// Copyright (c) 2026 distributed-process-platform Contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogger writes to stderr at info level and above.
var DefaultLogger = NewLogger(os.Stderr)

// DiscardLogger drops every line; useful in tests and for processes that
// opt out of logging entirely.
var DiscardLogger = NewLogger(io.Discard)

// Info logs to INFO level on DefaultLogger.
func Info(v ...any) { DefaultLogger.Info(v...) }

// Infof logs to INFO level on DefaultLogger.
func Infof(format string, v ...any) { DefaultLogger.Infof(format, v...) }

// Warning logs to WARN level on DefaultLogger.
func Warning(v ...any) { DefaultLogger.Warn(v...) }

// Warningf logs to WARN level on DefaultLogger.
func Warningf(format string, v ...any) { DefaultLogger.Warnf(format, v...) }

// Error logs to ERROR level on DefaultLogger.
func Error(v ...any) { DefaultLogger.Error(v...) }

// Errorf logs to ERROR level on DefaultLogger.
func Errorf(format string, v ...any) { DefaultLogger.Errorf(format, v...) }

type logger struct {
	underlying *zap.SugaredLogger
}

var _ Logger = (*logger)(nil)

// NewLogger creates a Logger writing JSON lines to w at info level.
func NewLogger(w io.Writer) Logger {
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zapcore.InfoLevel)
	return &logger{underlying: zap.New(core).Sugar()}
}

func (l *logger) Debug(v ...any)                  { l.underlying.Debug(v...) }
func (l *logger) Debugf(format string, v ...any)   { l.underlying.Debugf(format, v...) }
func (l *logger) Info(v ...any)                    { l.underlying.Info(v...) }
func (l *logger) Infof(format string, v ...any)    { l.underlying.Infof(format, v...) }
func (l *logger) Warn(v ...any)                    { l.underlying.Warn(v...) }
func (l *logger) Warnf(format string, v ...any)    { l.underlying.Warnf(format, v...) }
func (l *logger) Error(v ...any)                   { l.underlying.Error(v...) }
func (l *logger) Errorf(format string, v ...any)   { l.underlying.Errorf(format, v...) }
func (l *logger) Fatal(v ...any)                   { l.underlying.Fatal(v...) }
func (l *logger) Fatalf(format string, v ...any)   { l.underlying.Fatalf(format, v...) }
func (l *logger) Panic(v ...any)                   { l.underlying.Panic(v...) }
func (l *logger) Panicf(format string, v ...any)   { l.underlying.Panicf(format, v...) }

func (l *logger) With(fields ...Field) Logger {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return &logger{underlying: l.underlying.With(args...)}
}
