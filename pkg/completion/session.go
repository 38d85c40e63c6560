// Package completion serves library id completions to interactive
// consumers that cannot block on a catalog.
//
// A consumer asks [Session.TryGetCached] first. On a miss it renders
// [Placeholder] right away, calls [Session.Begin] to get a ticket, and
// resolves the ticket in the background. The resolved set is only shown if
// [Session.Current] still holds for the ticket; a newer Begin or a Dismiss
// makes older tickets stale and cancels their in-flight lookups.
//
//	if set, ok := s.TryGetCached(req); ok {
//		render(set)
//		return
//	}
//	render(completion.Placeholder(req))
//	t := s.Begin(req)
//	go func() {
//		set, err := s.Resolve(ctx, t)
//		if err == nil && s.Current(t) {
//			render(set)
//		}
//	}()
package completion

import (
	"context"
	"errors"
	"sync"

	liberrors "github.com/matzehuels/libman/pkg/errors"
	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/providers"
)

// ErrSuperseded is returned by Resolve when a newer request or a dismissal
// made the ticket stale.
var ErrSuperseded = errors.New("completion request superseded")

// PlaceholderText is the display text of the loading entry.
const PlaceholderText = "Loading..."

// Request identifies one completion lookup.
type Request struct {
	ProviderID string
	Text       string
	Caret      int
}

// Ticket is a request stamped with the generation it was issued in.
type Ticket struct {
	Request
	gen uint64
}

// Session caches completion results for one editing session and tracks
// which request is current.
type Session struct {
	deps *providers.Dependencies

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	cache  map[Request]library.CompletionSet
}

// NewSession returns a session resolving against deps.
func NewSession(deps *providers.Dependencies) *Session {
	return &Session{deps: deps, cache: map[Request]library.CompletionSet{}}
}

// TryGetCached returns a previously resolved set for req without blocking.
func (s *Session) TryGetCached(req Request) (library.CompletionSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.cache[req]
	return set, ok
}

// Begin makes req the current request and cancels any lookup still
// running for an older one.
func (s *Session) Begin(req Request) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersede()
	return Ticket{Request: req, gen: s.gen}
}

// Dismiss invalidates every outstanding ticket.
func (s *Session) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersede()
}

// supersede must be called with mu held.
func (s *Session) supersede() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Current reports whether t is still the newest request.
func (s *Session) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.gen == s.gen
}

// Resolve runs the catalog lookup for t and caches the result. Stale
// tickets fail with ErrSuperseded, before or after the lookup.
func (s *Session) Resolve(ctx context.Context, t Ticket) (library.CompletionSet, error) {
	p, ok := s.deps.Provider(t.ProviderID)
	if !ok {
		return library.CompletionSet{}, liberrors.ProviderUnknown(t.ProviderID)
	}

	s.mu.Lock()
	if t.gen != s.gen {
		s.mu.Unlock()
		return library.CompletionSet{}, ErrSuperseded
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	set, err := p.Catalog().CompletionSet(ctx, t.Text, t.Caret)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if t.gen != s.gen {
			return library.CompletionSet{}, ErrSuperseded
		}
		return library.CompletionSet{}, err
	}
	s.cache[t.Request] = set
	if t.gen != s.gen {
		return set, ErrSuperseded
	}
	return set, nil
}

// Placeholder is the loading entry shown while a lookup is pending. It
// spans the whole input and inserts nothing new.
func Placeholder(req Request) library.CompletionSet {
	return library.CompletionSet{
		Start:  0,
		Length: len(req.Text),
		Type:   library.CompletionUnknown,
		Completions: []library.CompletionItem{{
			DisplayText:   PlaceholderText,
			InsertionText: req.Text,
		}},
	}
}
