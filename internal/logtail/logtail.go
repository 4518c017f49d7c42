package logtail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file is not an error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one record of the mutation log: a header line such as
// "mutation cart/pushProductToCart @ 10:04:05.120 ..." and the indented
// detail lines that follow it in expanded mode.
type Entry struct {
	Kind  string // "mutation" or "action"
	Type  string
	At    string
	Lines []string
}

// Parse groups raw log lines into entries. Lines before the first header
// are dropped.
func Parse(lines []string) []Entry {
	var entries []Entry
	for _, line := range lines {
		if kind, typ, at, ok := parseHeader(line); ok {
			entries = append(entries, Entry{Kind: kind, Type: typ, At: at, Lines: []string{line}})
			continue
		}
		if len(entries) == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		last := &entries[len(entries)-1]
		last.Lines = append(last.Lines, line)
	}
	return entries
}

func parseHeader(line string) (kind, typ, at string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 || fields[2] != "@" {
		return "", "", "", false
	}
	if fields[0] != "mutation" && fields[0] != "action" {
		return "", "", "", false
	}
	return fields[0], fields[1], fields[3], true
}

// Filter selects entries. Empty fields match everything.
type Filter struct {
	Kind string
	// Type matches a type exactly, or as a namespace when it ends in "/".
	Type string
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Entry) bool {
	if f.Kind != "" && f.Kind != e.Kind {
		return false
	}
	switch {
	case f.Type == "":
		return true
	case strings.HasSuffix(f.Type, "/"):
		return strings.HasPrefix(e.Type, f.Type)
	default:
		return e.Type == f.Type
	}
}

// Apply returns the entries that pass the filter.
func (f Filter) Apply(entries []Entry) []Entry {
	out := entries[:0:0]
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Follow polls the file at path every interval and passes each complete
// line appended after offset to emit. A file that shrinks is read again
// from the start. It returns when ctx is done.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, emit func(string)) error {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var partial string
	for {
		next, rest, err := readFrom(path, offset, partial, emit)
		if err != nil {
			return err
		}
		offset, partial = next, rest

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Size returns the current size of the file at path, or 0 if it is missing.
func Size(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func readFrom(path string, offset int64, partial string, emit func(string)) (int64, string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, "", nil
		}
		return offset, partial, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, partial, fmt.Errorf("stat log: %w", err)
	}
	if info.Size() < offset {
		offset, partial = 0, ""
	}
	if info.Size() == offset {
		return offset, partial, nil
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, partial, fmt.Errorf("seek log: %w", err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return offset, partial, fmt.Errorf("read log: %w", err)
	}
	offset += int64(len(data))

	text := partial + string(data)
	lines := strings.Split(text, "\n")
	for _, line := range lines[:len(lines)-1] {
		emit(line)
	}
	return offset, lines[len(lines)-1], nil
}

var (
	mutationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true)
	actionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#87AFFF")).Bold(true)
	typeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#D7AFFF"))
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
)

// Colorize highlights a header line's kind, type and time. Detail lines
// are dimmed; anything else is returned unchanged.
func Colorize(line string) string {
	kind, typ, at, ok := parseHeader(line)
	if !ok {
		if strings.HasPrefix(line, "  ") {
			return detailStyle.Render(line)
		}
		return line
	}
	style := mutationStyle
	if kind == "action" {
		style = actionStyle
	}
	head := kind + " " + typ + " @ " + at
	rest := strings.TrimPrefix(line, head)
	return style.Render(kind) + " " + typeStyle.Render(typ) + " @ " + timeStyle.Render(at) + rest
}
