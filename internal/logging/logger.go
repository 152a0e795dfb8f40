// Package logging provides the leveled, structured logger used across the tool.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Logger defines the interface for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field (convenience function)
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// NoOpLogger is a logger that does nothing (useful for tests)
type NoOpLogger struct{}

// Debug does nothing.
func (l *NoOpLogger) Debug(_ string, _ ...Field) {}

// Info does nothing.
func (l *NoOpLogger) Info(_ string, _ ...Field) {}

// Warn does nothing.
func (l *NoOpLogger) Warn(_ string, _ ...Field) {}

// Error does nothing.
func (l *NoOpLogger) Error(_ string, _ ...Field) {}

// ConsoleLogger writes human-oriented log lines, normally to stderr so that
// stdout stays free for the SBOM. Debug lines are only written when verbose.
type ConsoleLogger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool

	debugTag lipgloss.Style
	warnTag  lipgloss.Style
	errorTag lipgloss.Style
	key      lipgloss.Style
}

// NewConsole creates a ConsoleLogger on out. Level tags are coloured only
// when out is a terminal.
func NewConsole(out *os.File, verbose bool) *ConsoleLogger {
	styled := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	return newConsole(out, verbose, styled)
}

// NewWriter creates an unstyled ConsoleLogger on an arbitrary writer.
func NewWriter(out io.Writer, verbose bool) *ConsoleLogger {
	return newConsole(out, verbose, false)
}

func newConsole(out io.Writer, verbose, styled bool) *ConsoleLogger {
	l := &ConsoleLogger{
		out:      out,
		verbose:  verbose,
		debugTag: lipgloss.NewStyle(),
		warnTag:  lipgloss.NewStyle(),
		errorTag: lipgloss.NewStyle(),
		key:      lipgloss.NewStyle(),
	}
	if styled {
		l.debugTag = l.debugTag.Foreground(lipgloss.Color("8"))
		l.warnTag = l.warnTag.Foreground(lipgloss.Color("11")).Bold(true)
		l.errorTag = l.errorTag.Foreground(lipgloss.Color("9")).Bold(true)
		l.key = l.key.Foreground(lipgloss.Color("6"))
	}
	return l
}

// Verbose reports whether debug lines are written.
func (l *ConsoleLogger) Verbose() bool {
	return l.verbose
}

func (l *ConsoleLogger) Debug(msg string, fields ...Field) {
	if !l.verbose {
		return
	}
	l.log(l.debugTag.Render("debug:")+" ", msg, fields)
}

func (l *ConsoleLogger) Info(msg string, fields ...Field) {
	l.log("", msg, fields)
}

func (l *ConsoleLogger) Warn(msg string, fields ...Field) {
	l.log(l.warnTag.Render("warning:")+" ", msg, fields)
}

func (l *ConsoleLogger) Error(msg string, fields ...Field) {
	l.log(l.errorTag.Render("error:")+" ", msg, fields)
}

func (l *ConsoleLogger) log(prefix, msg string, fields []Field) {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(msg)
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", l.key.Render(f.Key), f.Value)
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, b.String())
}
