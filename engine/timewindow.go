package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// TIME WINDOW RESOLVER
// ============================================================================
// Converts an intent's relative/absolute time spec into [Start, End] plus a
// symmetric, immediately-preceding [PrevStart, PrevEnd) window of equal
// duration. An absolute spec is open-ended, so no previous window exists
// and every trend field downstream reports "not applicable".
// ============================================================================

// maxTime is the open-end sentinel for absolute ("since date") windows.
var maxTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// Window is a resolved query window. When Bounded, the previous window has
// exactly the same duration and ends where the current one starts.
type Window struct {
	Start     time.Time
	End       time.Time
	PrevStart time.Time
	PrevEnd   time.Time
	Bounded   bool
}

// ResolveWindow resolves a TimeRange against "now".
// Relative "Nd" → [now-N days, now], previous window computed.
// Absolute ISO date → [date, +∞), previous window skipped.
// Anything unparseable → all time.
func ResolveWindow(tr TimeRange, now time.Time) Window {
	if rel := strings.TrimSpace(tr.Relative); rel != "" {
		if days, ok := parseRelativeDays(rel); ok {
			start := now.AddDate(0, 0, -days)
			w := Window{Start: start, End: now, Bounded: true}
			dur := w.End.Sub(w.Start)
			w.PrevEnd = w.Start
			w.PrevStart = w.Start.Add(-dur)
			return w
		}
	}
	if abs := strings.TrimSpace(tr.Absolute); abs != "" {
		if start, err := time.Parse("2006-01-02", abs); err == nil {
			return Window{Start: start, End: maxTime}
		}
	}
	return Window{End: maxTime}
}

// parseRelativeDays parses "30d" → 30.
func parseRelativeDays(s string) (int, bool) {
	s = strings.ToLower(s)
	if !strings.HasSuffix(s, "d") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Contains reports whether t falls in [Start, End]. Zero times (invalid or
// missing record dates) are always out of range.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

// ContainsPrev reports whether t falls in the previous window
// [PrevStart, PrevEnd). Always false for unbounded windows.
func (w Window) ContainsPrev(t time.Time) bool {
	if !w.Bounded || t.IsZero() {
		return false
	}
	return !t.Before(w.PrevStart) && t.Before(w.PrevEnd)
}

// Label renders the human-readable description of the resolved window.
func (w Window) Label() string {
	if w.Bounded {
		days := int(w.End.Sub(w.Start).Hours() / 24)
		if days == 1 {
			return "last 24 hours"
		}
		return fmt.Sprintf("last %d days", days)
	}
	if !w.Start.IsZero() {
		return fmt.Sprintf("since %s", w.Start.Format("2 Jan 2006"))
	}
	return "all time"
}
