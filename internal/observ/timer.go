package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Timer accumulates wall time per named phase. Repeated phases, such as one
// "compose" per target, are summed into a single row. A nil *Timer records
// nothing.
type Timer struct {
	mu    sync.Mutex
	order []string
	rows  map[string]*PhaseReport
}

// NewTimer returns an empty Timer.
func NewTimer() *Timer { return &Timer{rows: make(map[string]*PhaseReport)} }

// Start begins timing name. Calling the returned function stops it and
// records note; later notes for the same phase replace earlier ones.
func (t *Timer) Start(name string) (stop func(note string)) {
	if t == nil {
		return func(string) {}
	}
	began := time.Now()
	var once sync.Once
	return func(note string) {
		once.Do(func() { t.record(name, time.Since(began), note) })
	}
}

func (t *Timer) record(name string, d time.Duration, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[name]
	if !ok {
		row = &PhaseReport{Name: name}
		t.rows[name] = row
		t.order = append(t.order, name)
	}
	row.Count++
	row.DurationMS += millis(d)
	if note != "" {
		row.Note = note
	}
}

// PhaseReport is one row of a Report.
type PhaseReport struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report lists phases in the order they first finished. TotalMS sums every
// phase; with parallel compositions that is work time rather than wall time.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var r Report
	for _, name := range t.order {
		row := *t.rows[name]
		r.Phases = append(r.Phases, row)
		r.TotalMS += row.DurationMS
	}
	return r
}

// Summary renders the report as an aligned text table.
func (t *Timer) Summary() string {
	r := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		name := p.Name
		if p.Count > 1 {
			name = fmt.Sprintf("%s x%d", p.Name, p.Count)
		}
		fmt.Fprintf(&sb, "  %-28s %8.2f ms", name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  (" + p.Note + ")")
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-28s %8.2f ms\n", "total", r.TotalMS)
	return sb.String()
}

func millis(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
