package state

import (
	"fmt"
	"maps"
	"slices"
)

// Progress is a {done, total} completion pair.
type Progress struct {
	Done  uint32
	Total uint32
}

// Complete is true once a non-empty amount of work is all done.
func (p Progress) Complete() bool {
	return p.Total > 0 && p.Done >= p.Total
}

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d", p.Done, p.Total)
}

// Add sums two pairs.
func (p Progress) Add(o Progress) Progress {
	return Progress{Done: p.Done + o.Done, Total: p.Total + o.Total}
}

type reporter struct {
	progress Progress
	err      error
}

// Tracker collects the progress of named reporters for one loading state.
type Tracker struct {
	reporters map[string]*reporter
}

func NewTracker(names ...string) *Tracker {
	t := &Tracker{reporters: make(map[string]*reporter)}
	for _, n := range names {
		t.Register(n)
	}
	return t
}

// Register adds a reporter at 0/1. Registering twice keeps the existing
// progress.
func (t *Tracker) Register(name string) {
	if _, ok := t.reporters[name]; ok {
		return
	}
	t.reporters[name] = &reporter{progress: Progress{Total: 1}}
}

// Report records the latest progress of name, registering it if needed.
func (t *Tracker) Report(name string, p Progress) {
	t.Register(name)
	t.reporters[name].progress = p
}

// Fail marks name as failed. The first failure sticks.
func (t *Tracker) Fail(name string, err error) {
	t.Register(name)
	if r := t.reporters[name]; r.err == nil {
		r.err = err
	}
}

func (t *Tracker) Progress(name string) (Progress, bool) {
	r, ok := t.reporters[name]
	if !ok {
		return Progress{}, false
	}
	return r.progress, true
}

// Total sums every reporter.
func (t *Tracker) Total() Progress {
	var sum Progress
	for _, r := range t.reporters {
		sum = sum.Add(r.progress)
	}
	return sum
}

// Complete is true when at least one reporter is registered and all of them
// are complete.
func (t *Tracker) Complete() bool {
	if len(t.reporters) == 0 {
		return false
	}
	for _, r := range t.reporters {
		if r.err != nil || !r.progress.Complete() {
			return false
		}
	}
	return true
}

// Err returns the failure of the alphabetically first failed reporter.
func (t *Tracker) Err() (string, error) {
	for _, n := range t.Names() {
		if err := t.reporters[n].err; err != nil {
			return n, err
		}
	}
	return "", nil
}

func (t *Tracker) Names() []string {
	return slices.Sorted(maps.Keys(t.reporters))
}

// Reset drops every reporter.
func (t *Tracker) Reset() {
	clear(t.reporters)
}
