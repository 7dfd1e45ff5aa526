// Package baseline reads and writes the line-oriented inventory files
// used to seed the ledger and export snapshots. The plain format is one
// ingredient per line:
//
//	Paneer - 300
//
// The dated snapshot variant starts with a yyyy-MM-dd header line and a
// blank line before the entries. Day rollover itself is decided from
// the snapshot date stored with the ledger, not from these files.
package baseline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"tandoor/internal/apperrors"
)

// DateLayout is the snapshot header date format.
const DateLayout = "2006-01-02"

const separator = " - "

// Entry is one parsed ingredient line.
type Entry struct {
	Name     string
	Quantity float64
}

// Parse reads plain baseline entries from r.
func Parse(r io.Reader) ([]Entry, error) {
	return parseEntries(bufio.NewScanner(r), 0)
}

// ParseFile reads plain baseline entries from the file at path.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open baseline file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// ParseSnapshot reads the dated snapshot variant: a date header, a
// blank line, then entries.
func ParseSnapshot(r io.Reader) (time.Time, []Entry, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return time.Time{}, nil, fmt.Errorf("failed to read snapshot header: %w", err)
		}
		return time.Time{}, nil, apperrors.NewValidation("snapshot is empty, expected date header")
	}
	header := strings.TrimSpace(scanner.Text())
	date, err := time.Parse(DateLayout, header)
	if err != nil {
		return time.Time{}, nil, apperrors.NewValidation("invalid snapshot date header %q: %v", header, err)
	}

	if scanner.Scan() {
		if blank := strings.TrimSpace(scanner.Text()); blank != "" {
			return time.Time{}, nil, apperrors.NewValidation("expected blank line after snapshot header, got %q", blank)
		}
	}

	entries, err := parseEntries(scanner, 2)
	if err != nil {
		return time.Time{}, nil, err
	}
	return date, entries, nil
}

// parseEntries consumes the remaining lines of scanner. lineOffset is
// the number of lines already consumed, used for error positions.
func parseEntries(scanner *bufio.Scanner, lineOffset int) ([]Entry, error) {
	var entries []Entry
	seen := make(map[string]bool)
	lineNo := lineOffset

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Names may contain the separator themselves, the quantity never does.
		idx := strings.LastIndex(line, separator)
		if idx <= 0 {
			return nil, apperrors.NewValidation("line %d: expected \"<name> - <quantity>\", got %q", lineNo, line)
		}
		name := strings.TrimSpace(line[:idx])
		qtyStr := strings.TrimSpace(line[idx+len(separator):])

		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			return nil, apperrors.NewValidation("line %d: invalid quantity %q", lineNo, qtyStr)
		}
		if qty < 0 {
			return nil, apperrors.NewValidation("line %d: quantity must not be negative, got %d", lineNo, qty)
		}
		if seen[name] {
			return nil, apperrors.NewConflict("ingredient", name, fmt.Sprintf("duplicated on line %d", lineNo))
		}
		seen[name] = true

		entries = append(entries, Entry{Name: name, Quantity: float64(qty)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read baseline entries: %w", err)
	}
	return entries, nil
}

// Write emits plain baseline entries to w.
func Write(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s%s%d\n", e.Name, separator, int(e.Quantity)); err != nil {
			return fmt.Errorf("failed to write baseline entry: %w", err)
		}
	}
	return nil
}

// WriteSnapshot emits the dated snapshot variant to w.
func WriteSnapshot(w io.Writer, date time.Time, entries []Entry) error {
	if _, err := fmt.Fprintf(w, "%s\n\n", date.UTC().Format(DateLayout)); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	return Write(w, entries)
}
