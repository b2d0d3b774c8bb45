// Package typeahead drives the group name suggestion inputs: debounced
// lookups, a minimum term length and last-request-wins delivery so a
// slow response can never overwrite a newer one.
package typeahead

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/console/gateway"
)

const (
	// MinChars is the minimum term length before any lookup fires.
	MinChars = 4
	// Debounce is the default quiet period after the last keystroke.
	Debounce = 300 * time.Millisecond
	// MaxResults caps the suggestion list; when more matches exist on
	// the server the user is asked to keep typing.
	MaxResults = 10
)

// Source resolves a term into suggestions plus the total server-side
// match count, usually a gateway call.
type Source func(ctx context.Context, term string) ([]gateway.GroupSuggestion, int64, error)

// Result is one delivered suggestion set.
type Result struct {
	// Term the suggestions belong to.
	Term string
	// Suggestions, at most MaxResults entries.
	Suggestions []gateway.GroupSuggestion
	// TypeMore is set when more matches exist than the list shows and
	// the user should narrow the term.
	TypeMore bool
}

// Options tune a Control. Zero values fall back to the package
// defaults.
type Options struct {
	MinChars int
	Debounce time.Duration
}

// Control is the state machine behind one suggestion input. OnResult
// and OnError are invoked from the lookup goroutine; wiring them back
// onto a UI loop is the caller's concern.
type Control struct {
	source   Source
	minChars int
	debounce time.Duration

	// OnResult receives every delivered suggestion set, including the
	// empty set emitted when the term drops below the minimum length.
	OnResult func(Result)
	// OnError receives lookup failures. Stale failures are dropped like
	// stale results.
	OnError func(term string, err error)

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// New creates a typeahead control over the given source.
func New(source Source, opts Options) *Control {
	if source == nil {
		panic("source cannot be nil")
	}

	minChars := opts.MinChars
	if minChars <= 0 {
		minChars = MinChars
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = Debounce
	}

	return &Control{
		source:   source,
		minChars: minChars,
		debounce: debounce,
	}
}

// Input feeds one keystroke's worth of term into the control. Terms
// below the minimum length clear the suggestions immediately and cancel
// any pending lookup.
func (c *Control) Input(term string) {
	term = strings.TrimSpace(term)

	c.mu.Lock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	// invalidate any in-flight lookup
	c.seq++
	seq := c.seq

	if len([]rune(term)) < c.minChars {
		c.mu.Unlock()
		c.emit(seq, Result{Term: term})

		return
	}

	c.timer = time.AfterFunc(c.debounce, func() {
		c.lookup(seq, term)
	})
	c.mu.Unlock()
}

func (c *Control) lookup(seq uint64, term string) {
	suggestions, total, err := c.source(context.Background(), term)
	if err != nil {
		c.mu.Lock()
		stale := seq != c.seq
		c.mu.Unlock()

		if !stale && c.OnError != nil {
			c.OnError(term, err)
		}

		return
	}

	result := Result{Term: term, Suggestions: suggestions}
	if len(result.Suggestions) > MaxResults {
		result.Suggestions = result.Suggestions[:MaxResults]
	}

	// a full list with no further matches needs no hint
	result.TypeMore = total > MaxResults

	c.emit(seq, result)
}

// emit delivers a result unless a newer Input superseded it.
func (c *Control) emit(seq uint64, result Result) {
	c.mu.Lock()
	stale := seq != c.seq
	c.mu.Unlock()

	if stale || c.OnResult == nil {
		return
	}

	c.OnResult(result)
}
