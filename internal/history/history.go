package history

import (
	"github.com/garyjia/ar-reminder/internal/report"
)

const (
	// DefaultMaxEntries bounds the sliding window of stored runs
	DefaultMaxEntries = 20
	SchemaVersion     = "1.0"
	Description       = "AR run history using sliding window"
)

// Meta describes a history document
type Meta struct {
	MaxEntries    int    `json:"max_entries"`
	SchemaVersion string `json:"schema_version"`
	Description   string `json:"description"`
}

// History is a bounded, oldest-first list of AR runs
type History struct {
	Meta Meta         `json:"meta"`
	Runs []report.Run `json:"runs"`
}

// New returns an empty history with the default window size
func New() *History {
	return &History{
		Meta: Meta{
			MaxEntries:    DefaultMaxEntries,
			SchemaVersion: SchemaVersion,
			Description:   Description,
		},
		Runs: []report.Run{},
	}
}

// NewWithMaxEntries returns an empty history keeping at most n runs. A
// non-positive n keeps the default window.
func NewWithMaxEntries(n int) *History {
	h := New()
	if n > 0 {
		h.Meta.MaxEntries = n
	}
	return h
}

// Initialize is an alias of New
func Initialize() *History {
	return New()
}

// maxEntries returns the effective window size
func (h *History) maxEntries() int {
	if h.Meta.MaxEntries <= 0 {
		return DefaultMaxEntries
	}
	return h.Meta.MaxEntries
}

// Len returns the number of stored runs
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Runs)
}

// AddRun returns a new history with run appended, evicting the oldest runs
// while the window is exceeded. h is left untouched and may be nil.
func AddRun(h *History, run report.Run) *History {
	if h == nil {
		h = New()
	}

	runs := make([]report.Run, 0, len(h.Runs)+1)
	for _, r := range h.Runs {
		runs = append(runs, cloneRun(r))
	}
	runs = append(runs, cloneRun(run))

	next := &History{Meta: h.Meta}
	if excess := len(runs) - next.maxEntries(); excess > 0 {
		runs = runs[excess:]
	}
	next.Runs = runs
	return next
}

// cloneRun copies the slices a run owns so histories never share them
func cloneRun(r report.Run) report.Run {
	if r.TopCustomers != nil {
		r.TopCustomers = append(make([]report.CustomerRisk, 0, len(r.TopCustomers)), r.TopCustomers...)
	}
	return r
}

// CurrentRun returns the latest run, or nil when there is none
func CurrentRun(h *History) *report.Run {
	if h.Len() == 0 {
		return nil
	}
	run := cloneRun(h.Runs[len(h.Runs)-1])
	return &run
}

// PreviousRun returns the run before the latest, or nil with fewer than two runs
func PreviousRun(h *History) *report.Run {
	if h.Len() < 2 {
		return nil
	}
	run := cloneRun(h.Runs[len(h.Runs)-2])
	return &run
}
