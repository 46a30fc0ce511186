package period

import (
	"fmt"
	"strings"
	"time"
)

// Period is a calendar month. The zero value is "no period".
type Period struct {
	Year  int
	Month time.Month
}

// New returns the Period for year and month.
func New(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// Of returns the Period containing t.
func Of(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// IsZero reports whether p is the zero Period.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// String returns the canonical form, e.g. "2025-06".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Compare returns -1, 0 or +1 depending on whether p is before, equal to or after q.
func (p Period) Compare(q Period) int {
	switch {
	case p.index() < q.index():
		return -1
	case p.index() > q.index():
		return 1
	}
	return 0
}

// Before reports whether p is strictly earlier than q.
func (p Period) Before(q Period) bool { return p.index() < q.index() }

// After reports whether p is strictly later than q.
func (p Period) After(q Period) bool { return p.index() > q.index() }

// Within reports whether p lies in the inclusive range [start, end].
// An inverted range contains nothing.
func (p Period) Within(start, end Period) bool {
	return !p.Before(start) && !p.After(end)
}

// AddMonths returns p shifted by n months.
func (p Period) AddMonths(n int) Period {
	i := p.index() + n
	return Period{Year: i / 12, Month: time.Month(i%12 + 1)}
}

func (p Period) index() int {
	return p.Year*12 + int(p.Month) - 1
}

// layouts lists the accepted date representations, tried in order.
// Month names match case-insensitively (time.Parse behaviour).
var layouts = []string{
	"2006-01",
	"2006-1",
	"2006/01",
	"2006/1",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"January 2006",
	"Jan 2006",
	"Jan'06",
	"Jan 06",
	"Jan-06",
	"Jan-2006",
	"January'06",
	"01/2006",
	"1/2006",
	"1/2/2006",
	"01-02-06",
	"1/2/06",
}

// Parse converts a human date string into a Period.
// "2025-06", "June 2025" and "Jun'25" all yield the same Period.
func Parse(s string) (Period, error) {
	v := strings.TrimSpace(s)
	v = strings.NewReplacer("’", "'", "‘", "'", "`", "'").Replace(v)
	v = strings.Join(strings.Fields(v), " ")
	if v == "" {
		return Period{}, fmt.Errorf("empty period")
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return Of(t), nil
		}
	}
	return Period{}, fmt.Errorf("unrecognized period %q", s)
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Period {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}
