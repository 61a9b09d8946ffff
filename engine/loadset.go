package engine

import "sync"

type LoadState int

const (
	LoadPending LoadState = iota
	LoadReady
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadPending:
		return "pending"
	case LoadReady:
		return "ready"
	case LoadFailed:
		return "failed"
	}
	return "unknown"
}

// LoadSet tracks the outcome of named loads. It is safe for concurrent use.
type LoadSet struct {
	lock  sync.Mutex
	state map[string]LoadState
	errs  map[string]error
}

func NewLoadSet() *LoadSet {
	return &LoadSet{
		state: map[string]LoadState{},
		errs:  map[string]error{},
	}
}

// Add registers name as pending. It reports false if name is already known.
func (s *LoadSet) Add(name string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, found := s.state[name]; found {
		return false
	}
	s.state[name] = LoadPending
	return true
}

// Reset puts name back into pending, registering it if needed.
func (s *LoadSet) Reset(name string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.state[name] = LoadPending
	delete(s.errs, name)
}

// Done resolves name as ready, or as failed when err is not nil.
func (s *LoadSet) Done(name string, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err != nil {
		s.state[name] = LoadFailed
		s.errs[name] = err
		return
	}
	s.state[name] = LoadReady
	delete(s.errs, name)
}

func (s *LoadSet) Remove(name string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.state, name)
	delete(s.errs, name)
}

func (s *LoadSet) State(name string) (LoadState, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	st, found := s.state[name]
	return st, found
}

// Err returns the failure recorded for name.
func (s *LoadSet) Err(name string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.errs[name]
}

// Loaded reports whether nothing is pending.
func (s *LoadSet) Loaded() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, st := range s.state {
		if st == LoadPending {
			return false
		}
	}
	return true
}

// Failed reports whether any load failed.
func (s *LoadSet) Failed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.errs) > 0
}

// PercentLoaded is the share of finished loads, failed ones included,
// from 0 to 100. An empty set is fully loaded.
func (s *LoadSet) PercentLoaded() float64 {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(s.state) == 0 {
		return 100
	}
	var done int
	for _, st := range s.state {
		if st != LoadPending {
			done++
		}
	}
	return 100 * float64(done) / float64(len(s.state))
}

func (s *LoadSet) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.state)
}
