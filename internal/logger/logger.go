// Package logger — вывод rtcwake: строки состояния для оператора (stdout)
// и диагностика (stderr, charmbracelet/log) с префиксом "rtcwake".
package logger

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Logger разделяет два потока: out — то, что оператор ждёт увидеть
// (время будильника, "alarm: off"), diag — ошибки и отладка.
type Logger struct {
	out     io.Writer
	verbose bool
	diag    *log.Logger
}

// New создаёт Logger. verbose включает Verbosef и уровень debug в diag.
func New(out, errOut io.Writer, verbose bool) *Logger {
	diag := log.NewWithOptions(errOut, log.Options{
		Prefix:          "rtcwake",
		ReportTimestamp: false,
	})
	if verbose {
		diag.SetLevel(log.DebugLevel)
	} else {
		diag.SetLevel(log.InfoLevel)
	}
	return &Logger{out: out, verbose: verbose, diag: diag}
}

// Printf пишет строку состояния в stdout всегда.
func (l *Logger) Printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(l.out, format, args...)
}

// Verbosef пишет строку состояния только при -v.
func (l *Logger) Verbosef(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	_, _ = fmt.Fprintf(l.out, format, args...)
}

// Debugf — диагностика для -v (stderr).
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.diag.Debugf(format, args...)
}

// Errorf выводит ошибку всегда (stderr).
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.diag.Errorf(format, args...)
}
