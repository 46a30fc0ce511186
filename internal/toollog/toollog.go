// Package toollog keeps an append-only CSV audit trail of tool calls.
package toollog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one row in the tool log.
type Entry struct {
	Timestamp time.Time
	CallID    string
	Transport string // "cli", "jsonrpc" or "http"
	Tool      string
	Args      string // JSON-encoded arguments
	Status    string // StatusOK or StatusError
	Duration  time.Duration
	Detail    string // error text or chart path
}

// Call statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Header is the CSV header of the tool log.
const Header = "timestamp,call_id,transport,tool,args,status,duration_ms,detail"

const (
	numFields    = 8
	colTimestamp = 0
	colCallID    = 1
	colTransport = 2
	colTool      = 3
	colArgs      = 4
	colStatus    = 5
	colDuration  = 6
	colDetail    = 7
)

// NewCallID returns a fresh call identifier.
func NewCallID() string {
	return uuid.NewString()
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339Nano)
	row[colCallID] = e.CallID
	row[colTransport] = e.Transport
	row[colTool] = e.Tool
	row[colArgs] = e.Args
	row[colStatus] = e.Status
	row[colDuration] = strconv.FormatInt(e.Duration.Milliseconds(), 10)
	row[colDetail] = e.Detail
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339Nano, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	ms, err := strconv.ParseInt(record[colDuration], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing duration %q: %w", record[colDuration], err)
	}
	if _, err := uuid.Parse(record[colCallID]); err != nil {
		return Entry{}, fmt.Errorf("parsing call id %q: %w", record[colCallID], err)
	}

	return Entry{
		Timestamp: ts,
		CallID:    record[colCallID],
		Transport: record[colTransport],
		Tool:      record[colTool],
		Args:      record[colArgs],
		Status:    record[colStatus],
		Duration:  time.Duration(ms) * time.Millisecond,
		Detail:    record[colDetail],
	}, nil
}

// Log appends entries to a CSV file. It is safe for concurrent use.
type Log struct {
	mu   sync.Mutex
	path string
}

// Open returns a Log writing to path. The file is created on first Append.
func Open(path string) *Log {
	return &Log{path: path}
}

// Path returns the file the log writes to.
func (l *Log) Path() string {
	return l.path
}

// Append writes entries, creating the file and header if needed. A nil Log
// discards entries.
func (l *Log) Append(entries ...Entry) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening tool log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if e.CallID == "" {
			e.CallID = NewCallID()
		}
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries in the file at path.
// Returns an empty slice if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening tool log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading tool log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
