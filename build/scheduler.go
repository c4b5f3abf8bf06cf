package build

import (
	"runtime"
	"sync"

	"github.com/redgush/flycatcher/depm"
	"github.com/redgush/flycatcher/report"
)

// WorkFunc processes a single module.  It must call resolved once the module
// has finished resolution, passing whether resolution succeeded.  Dependents
// of the module are dispatched as soon as resolved(true) is called so the
// rest of the module's pipeline overlaps with theirs.  If the function
// returns without calling resolved, resolution is considered to have failed.
type WorkFunc func(mod *depm.Module, resolved func(ok bool))

// Scheduler dispatches modules to a bounded pool of workers.  A module is
// dispatched only once every module it imports has been resolved.
type Scheduler struct {
	workers int

	// m guards all of the dispatch state below.
	m *sync.Mutex

	// pending counts the unresolved dependencies of each scheduled module.
	pending map[*depm.Module]int

	// skipped marks modules that will never be dispatched because one of
	// their dependencies failed to resolve.
	skipped map[*depm.Module]bool

	// ice is the first internal error raised by a worker.  Once it is set,
	// nothing else is dispatched.
	ice *report.InternalError

	wg    *sync.WaitGroup
	slots chan struct{}
	work  WorkFunc
}

// NewScheduler creates a new scheduler running at most workers modules at
// once.  A worker count less than 1 selects GOMAXPROCS.
func NewScheduler(workers int) *Scheduler {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Scheduler{workers: workers, m: &sync.Mutex{}}
}

// Run processes the given modules and waits for all dispatched work to
// finish.  Dependencies outside of mods are treated as already resolved.  If
// any worker raises an internal compiler error, it is returned.
func (s *Scheduler) Run(mods []*depm.Module, work WorkFunc) error {
	s.pending = make(map[*depm.Module]int, len(mods))
	s.skipped = make(map[*depm.Module]bool)
	s.ice = nil
	s.wg = &sync.WaitGroup{}
	s.slots = make(chan struct{}, s.workers)
	s.work = work

	for _, mod := range mods {
		s.pending[mod] = 0
	}

	for _, mod := range mods {
		for _, dep := range mod.Deps {
			if _, ok := s.pending[dep]; ok {
				s.pending[mod]++
			}
		}
	}

	s.m.Lock()
	for _, mod := range mods {
		if s.pending[mod] == 0 {
			s.dispatch(mod)
		}
	}
	s.m.Unlock()

	s.wg.Wait()

	if s.ice != nil {
		return s.ice
	}

	return nil
}

// Skipped returns whether a module was never dispatched in the last run
// because one of its dependencies failed.
func (s *Scheduler) Skipped(mod *depm.Module) bool {
	s.m.Lock()
	defer s.m.Unlock()

	return s.skipped[mod]
}

// dispatch starts a worker for mod.  It must be called with the lock held.
func (s *Scheduler) dispatch(mod *depm.Module) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		s.slots <- struct{}{}
		defer func() { <-s.slots }()

		if s.stopped() {
			return
		}

		once := &sync.Once{}
		resolved := func(ok bool) {
			once.Do(func() { s.resolved(mod, ok) })
		}

		defer func() {
			if x := recover(); x != nil {
				s.fail(report.AsICE(x))
				return
			}

			resolved(false)
		}()

		s.work(mod, resolved)
	}()
}

// resolved releases the dependents of mod.
func (s *Scheduler) resolved(mod *depm.Module, ok bool) {
	s.m.Lock()
	defer s.m.Unlock()

	if s.ice != nil {
		return
	}

	for _, dependent := range mod.Dependents {
		if _, scheduled := s.pending[dependent]; !scheduled || s.skipped[dependent] {
			continue
		}

		if !ok {
			s.skip(dependent)
			continue
		}

		s.pending[dependent]--
		if s.pending[dependent] == 0 {
			s.dispatch(dependent)
		}
	}
}

// skip marks a module and everything depending on it as skipped.
func (s *Scheduler) skip(mod *depm.Module) {
	if s.skipped[mod] {
		return
	}

	s.skipped[mod] = true
	for _, dependent := range mod.Dependents {
		if _, scheduled := s.pending[dependent]; scheduled {
			s.skip(dependent)
		}
	}
}

func (s *Scheduler) fail(ice *report.InternalError) {
	s.m.Lock()
	defer s.m.Unlock()

	if s.ice == nil {
		s.ice = ice
	}
}

func (s *Scheduler) stopped() bool {
	s.m.Lock()
	defer s.m.Unlock()

	return s.ice != nil
}
