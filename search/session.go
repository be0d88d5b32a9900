package search

// Phase is the observable state of a Session.
type Phase int

const (
	// Idle means the query is empty and the full collection is shown.
	Idle Phase = iota
	// Filtering means a non-empty query narrowed the collection.
	Filtering
)

func (p Phase) String() string {
	if p == Filtering {
		return "filtering"
	}
	return "idle"
}

// State is the result of filtering a collection with one query. A State is
// never modified after it is built; a new query produces a new State.
type State[T Record] struct {
	Query   string
	Results []T
}

// Count returns the number of results.
func (s State[T]) Count() int {
	return len(s.Results)
}

// Phase reports whether the state represents an active search.
func (s State[T]) Phase() Phase {
	if s.Query == "" {
		return Idle
	}
	return Filtering
}

// Active is shorthand for Phase() == Filtering.
func (s State[T]) Active() bool {
	return s.Phase() == Filtering
}

// NewState filters collection with query and wraps the result.
func NewState[T Record](collection []T, query string, opts ...Option) State[T] {
	return State[T]{
		Query:   query,
		Results: Filter(collection, query, opts...),
	}
}

// Session owns a fixed collection and the state derived from the latest query.
// Each Update recomputes from the full collection, never from the previous
// results. A Session is meant to be driven by a single input source.
type Session[T Record] struct {
	all   []T
	opts  []Option
	state State[T]
}

// NewSession starts an Idle session over collection.
func NewSession[T Record](collection []T, opts ...Option) *Session[T] {
	return &Session[T]{
		all:   collection,
		opts:  opts,
		state: State[T]{Results: collection},
	}
}

// Update replaces the current state with the result of query and returns it.
// query is the full current input value, not a delta.
func (s *Session[T]) Update(query string) State[T] {
	s.state = NewState(s.all, query, s.opts...)
	return s.state
}

// State returns the current state.
func (s *Session[T]) State() State[T] {
	return s.state
}

// Phase returns the current phase.
func (s *Session[T]) Phase() Phase {
	return s.state.Phase()
}

// Len returns the size of the full collection.
func (s *Session[T]) Len() int {
	return len(s.all)
}
