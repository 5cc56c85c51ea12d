// Package glossy is the seat's structured-logging handler: colorized
// key=value lines via lipgloss to a terminal, or systemd journal
// entries when UseJournal is set. Adapted from the original glossy
// package; the buffer-and-flush plumbing that used to be duplicated
// between the Handle method and writer.go now lives only in
// writer.go's output types.
package glossy

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/exp/slices"
	"log/slog"
)

var bufPool sync.Pool

var (
	styleTime  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#22222", Dark: "#AAAAAA"})
	styleKey   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#22222", Dark: "#AAAAAA"})
	styleValue = lipgloss.NewStyle()

	styleError = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AA0000", Dark: "#EE0000"})
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AAAA00", Dark: "#EEEE00"})
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#3333AA", Dark: "#5555EE"})
	styleDebug = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00AA00", Dark: "#00EE00"})
)

func styleLevel(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return styleError
	case level >= slog.LevelWarn:
		return styleWarn
	case level >= slog.LevelInfo:
		return styleInfo
	case level >= slog.LevelDebug:
		return styleDebug
	default:
		return lipgloss.NewStyle()
	}
}

// Handler is a slog.Handler that renders to a terminal with lipgloss
// styling, or to the systemd journal, per spec.md §10's ambient
// logging stack.
type Handler struct {
	UseJournal bool
	Level      slog.Level

	attrs []slog.Attr
	group string
}

func quoteIfNecessary(str string) string {
	for _, c := range str {
		if unicode.IsSpace(c) {
			return strconv.Quote(str)
		}
	}
	return str
}

func (h Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.Level
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	attrs := slices.Grow(h.attrs, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	if h.group != "" {
		attrs = []slog.Attr{{Key: h.group, Value: slog.GroupValue(attrs...)}}
	}

	buf, _ := bufPool.Get().(*bytes.Buffer)
	if buf == nil {
		buf = new(bytes.Buffer)
	}

	if h.UseJournal {
		fmt.Fprint(buf, r.Message)
		for _, attr := range attrs {
			fmt.Fprintf(buf, " %v=%v", attr.Key, quoteIfNecessary(attr.Value.String()))
		}
		return (&journalOutput{Buffer: buf, r: r}).Close()
	}

	fmt.Fprintf(
		buf,
		"%v %v %v\n",
		styleTime.Render(r.Time.Format(time.StampMilli)),
		styleLevel(r.Level).Render(r.Level.String()),
		r.Message,
	)
	for _, attr := range attrs {
		fmt.Fprintf(
			buf,
			"\t%v=%v\n",
			styleKey.Render(quoteIfNecessary(attr.Key)),
			styleValue.Render(quoteIfNecessary(attr.Value.String())),
		)
	}

	return (&stderrOutput{Buffer: buf}).Close()
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.attrs = slices.Clip(append(h.attrs, attrs...))
	return h
}

func (h Handler) WithGroup(name string) slog.Handler {
	h.group = name
	return h
}
