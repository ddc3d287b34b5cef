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
// non-positive maxLines returns the whole file. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	return scan(file, maxLines)
}

func scan(r io.Reader, maxLines int) ([]string, error) {
	scanner := bufio.NewScanner(r)
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

// Follow prints the last backlog lines of path through emit and then keeps
// emitting appended lines, checking every interval, until ctx ends. A file
// that shrinks is read again from the start.
func Follow(ctx context.Context, path string, backlog int, interval time.Duration, emit func(string)) error {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	var offset int64
	if file, err := os.Open(path); err == nil {
		lines, err := scan(file, backlog)
		if err == nil {
			offset, err = file.Seek(0, io.SeekCurrent)
		}
		_ = file.Close()
		if err != nil {
			return err
		}
		for _, line := range lines {
			emit(line)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("open log: %w", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var partial string
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.Size() < offset {
			offset, partial = 0, ""
		}
		if info.Size() == offset {
			continue
		}

		file, err := os.Open(path)
		if err != nil {
			continue
		}
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			_ = file.Close()
			continue
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			continue
		}
		offset += int64(len(data))

		chunk := partial + string(data)
		parts := strings.Split(chunk, "\n")
		partial = parts[len(parts)-1]
		for _, line := range parts[:len(parts)-1] {
			emit(line)
		}
	}
}

// Level extracts the level=XXX field of a slog text record, or "".
func Level(line string) string {
	for _, field := range strings.Fields(line) {
		if value, ok := strings.CutPrefix(field, "level="); ok {
			return strings.ToUpper(value)
		}
	}
	return ""
}

var levelRank = map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3}

// AtLeast reports whether line's level is min or higher. Lines without a
// level are kept.
func AtLeast(line, min string) bool {
	want, ok := levelRank[strings.ToUpper(strings.TrimSpace(min))]
	if !ok {
		return true
	}
	got, ok := levelRank[Level(line)]
	if !ok {
		return true
	}
	return got >= want
}

var levelStyles = map[string]lipgloss.Style{
	"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
	"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")),
	"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
	"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
}

// ColorizeLine styles a log record by its level.
func ColorizeLine(line string) string {
	if strings.TrimSpace(line) == "" {
		return line
	}
	style, ok := levelStyles[Level(line)]
	if !ok {
		return line
	}
	return style.Render(line)
}

// ColorizeLines applies ColorizeLine to every line.
func ColorizeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = ColorizeLine(line)
	}
	return out
}
