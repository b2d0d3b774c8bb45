package typeahead

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/console/gateway"
)

// recordingSource counts lookups and answers with one suggestion per
// term, optionally blocking until released. Totals default to the list
// length unless overridden per term.
type recordingSource struct {
	mu      sync.Mutex
	terms   []string
	block   map[string]chan struct{}
	results map[string][]gateway.GroupSuggestion
	totals  map[string]int64
	err     error
}

func (s *recordingSource) lookup(_ context.Context, term string) ([]gateway.GroupSuggestion, int64, error) {
	s.mu.Lock()
	s.terms = append(s.terms, term)
	gate := s.block[term]
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}

	if s.err != nil {
		return nil, 0, s.err
	}

	list := []gateway.GroupSuggestion{{GroupID: 1, GroupName: term + " Group"}}
	if r, ok := s.results[term]; ok {
		list = r
	}

	total := int64(len(list))
	if t, ok := s.totals[term]; ok {
		total = t
	}

	return list, total, nil
}

func (s *recordingSource) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.terms))
	copy(out, s.terms)

	return out
}

// collector gathers delivered results.
type collector struct {
	mu      sync.Mutex
	results []Result
}

func (c *collector) add(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *collector) snapshot() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Result, len(c.results))
	copy(out, c.results)

	return out
}

func (c *collector) waitFor(t *testing.T, n int) []Result {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := c.snapshot(); len(got) >= n {
			return got
		}

		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("timed out waiting for %d results, got %v", n, c.snapshot())

	return nil
}

func TestShortTermsClearWithoutLookup(t *testing.T) {
	src := &recordingSource{}
	got := &collector{}

	ctl := New(src.lookup, Options{Debounce: 5 * time.Millisecond})
	ctl.OnResult = got.add

	ctl.Input("abc")

	results := got.waitFor(t, 1)
	assert.Empty(t, results[0].Suggestions)
	assert.Empty(t, src.calls(), "terms below the minimum never reach the source")
}

func TestDebounce_OnlyLastTermQueried(t *testing.T) {
	src := &recordingSource{}
	got := &collector{}

	ctl := New(src.lookup, Options{Debounce: 40 * time.Millisecond})
	ctl.OnResult = got.add

	// rapid typing: every keystroke lands inside the debounce window
	ctl.Input("hosp")
	ctl.Input("hospi")
	ctl.Input("hospit")

	results := got.waitFor(t, 1)
	require.Len(t, results, 1)
	assert.Equal(t, "hospit", results[0].Term)
	assert.Equal(t, []string{"hospit"}, src.calls(), "intermediate terms are debounced away")
}

func TestLastRequestWins(t *testing.T) {
	src := &recordingSource{block: map[string]chan struct{}{
		"slow term": make(chan struct{}),
	}}
	got := &collector{}

	ctl := New(src.lookup, Options{Debounce: time.Millisecond})
	ctl.OnResult = got.add

	ctl.Input("slow term")

	// wait until the slow lookup is actually in flight
	deadline := time.Now().Add(2 * time.Second)
	for len(src.calls()) == 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}

	require.NotEmpty(t, src.calls())

	ctl.Input("fast term")

	results := got.waitFor(t, 1)
	assert.Equal(t, "fast term", results[0].Term)

	// release the stale lookup; its result must be dropped
	close(src.block["slow term"])
	time.Sleep(50 * time.Millisecond)

	for _, r := range got.snapshot() {
		assert.NotEqual(t, "slow term", r.Term, "superseded responses are discarded")
	}
}

func TestCappedResultsSetTypeMore(t *testing.T) {
	full := make([]gateway.GroupSuggestion, MaxResults)
	for i := range full {
		full[i] = gateway.GroupSuggestion{GroupID: uint64(i + 1), GroupName: fmt.Sprintf("Group %02d", i)}
	}

	src := &recordingSource{
		results: map[string][]gateway.GroupSuggestion{"hospital": full},
		totals:  map[string]int64{"hospital": MaxResults + 13},
	}
	got := &collector{}

	ctl := New(src.lookup, Options{Debounce: time.Millisecond})
	ctl.OnResult = got.add

	ctl.Input("hospital")

	results := got.waitFor(t, 1)
	assert.Len(t, results[0].Suggestions, MaxResults)
	assert.True(t, results[0].TypeMore, "matches beyond the list ask the user to keep typing")
}

func TestExactlyFullListShowsNoTypeMore(t *testing.T) {
	full := make([]gateway.GroupSuggestion, MaxResults)
	for i := range full {
		full[i] = gateway.GroupSuggestion{GroupID: uint64(i + 1), GroupName: fmt.Sprintf("Group %02d", i)}
	}

	// total equals the cap: nothing was hidden, so no hint
	src := &recordingSource{results: map[string][]gateway.GroupSuggestion{"hospital": full}}
	got := &collector{}

	ctl := New(src.lookup, Options{Debounce: time.Millisecond})
	ctl.OnResult = got.add

	ctl.Input("hospital")

	results := got.waitFor(t, 1)
	assert.Len(t, results[0].Suggestions, MaxResults)
	assert.False(t, results[0].TypeMore, "a full list with no further matches needs no hint")
}

func TestLookupErrorSurfaces(t *testing.T) {
	src := &recordingSource{err: assert.AnError}
	got := &collector{}

	var (
		mu      sync.Mutex
		errTerm string
	)

	ctl := New(src.lookup, Options{Debounce: time.Millisecond})
	ctl.OnResult = got.add
	ctl.OnError = func(term string, err error) {
		mu.Lock()
		defer mu.Unlock()
		errTerm = term
	}

	ctl.Input("hospital")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := errTerm != ""
		mu.Unlock()

		if done {
			break
		}

		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	assert.Equal(t, "hospital", errTerm)
	mu.Unlock()
	assert.Empty(t, got.snapshot(), "errors do not deliver results")
}
