package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingTable means a required table (sheet or file) is absent.
	ErrMissingTable = errors.New("missing table")
	// ErrMissingColumn means a required column is absent from a table header.
	ErrMissingColumn = errors.New("missing column")
)

// DataLoadError reports a structural problem in the ledger source. Every
// downstream computation depends on a complete, normalized ledger, so these
// errors are fatal.
type DataLoadError struct {
	Table  string
	Row    int // 1-based, header is row 1; 0 when not row-specific
	Column string
	Err    error
}

func (e *DataLoadError) Error() string {
	var b strings.Builder
	b.WriteString("loading ledger")
	if e.Table != "" {
		fmt.Fprintf(&b, ": table %s", e.Table)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %s", e.Column)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}
