package engine

import (
	"log/slog"
	"sync"

	"github.com/talgya/hexbarter/internal/economy"
)

// Event categories.
const (
	CategoryProduction = "production"
	CategoryTrade      = "trade"
	CategoryBuild      = "build"
	CategoryTurn       = "turn"
)

// Event is a notable occurrence at the table, emitted as data for reporters.
type Event struct {
	Seq      uint64          `json:"seq"`
	Round    int             `json:"round"`
	Category string          `json:"category"`
	Kind     string          `json:"kind"`
	Player   string          `json:"player,omitempty"`
	Partner  string          `json:"partner,omitempty"`
	Session  string          `json:"session,omitempty"` // Trade session ID
	Roll     int             `json:"roll,omitempty"`
	Hex      *int            `json:"hex,omitempty"`
	Resource string          `json:"resource,omitempty"`
	Amount   int             `json:"amount,omitempty"`
	Offer    *economy.Bundle `json:"offer,omitempty"`
	Request  *economy.Bundle `json:"request,omitempty"`
	Reason   string          `json:"reason,omitempty"`
}

// Reporter receives every event the game emits.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

type multiReporter []Reporter

func (m multiReporter) Report(e Event) {
	for _, r := range m {
		r.Report(e)
	}
}

// Reporters fans events out to every non-nil reporter, in order.
func Reporters(rs ...Reporter) Reporter {
	out := make(multiReporter, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// LogReporter writes each event to slog at debug level.
type LogReporter struct {
	Logger *slog.Logger
}

func (l LogReporter) Report(e Event) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("event",
		"seq", e.Seq,
		"round", e.Round,
		"category", e.Category,
		"kind", e.Kind,
		"player", e.Player,
		"partner", e.Partner,
		"amount", e.Amount,
	)
}

// maxRecorded bounds the in-memory event history.
const maxRecorded = 1000

// Recorder keeps recent events in memory. Safe for concurrent readers.
type Recorder struct {
	mu      sync.Mutex
	events  []Event
	pending []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if len(r.events) > maxRecorded {
		r.events = r.events[len(r.events)-maxRecorded:]
	}
	r.pending = append(r.pending, e)
	if len(r.pending) > maxRecorded {
		r.pending = r.pending[len(r.pending)-maxRecorded:]
	}
}

// Events returns a copy of the retained history.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Recent returns up to n of the most recent events, oldest first.
func (r *Recorder) Recent(n int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := 0
	if n >= 0 && len(r.events) > n {
		start = len(r.events) - n
	}
	return append([]Event(nil), r.events[start:]...)
}

// Drain returns events reported since the previous Drain, at most the
// retained history.
func (r *Recorder) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.pending
	r.pending = nil
	return out
}

// Filter returns retained events of one category.
func (r *Recorder) Filter(category string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}
