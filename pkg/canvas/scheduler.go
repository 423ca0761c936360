package canvas

import (
	"bytes"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"time"
)

// DefaultPollInterval bounds how long an idle wait sleeps between checks
// when no state change wakes it earlier.
const DefaultPollInterval = 100 * time.Millisecond

// scheduler is the coalescing update queue. A binding is enqueued at most
// once between drains; posted tasks run at the start of the next drain.
//
// Everything here is guarded by mu so that workers may mark components
// dirty, post tasks, and register pending changes from any goroutine.
type scheduler struct {
	mu       sync.Mutex
	queue    []*binding
	tasks    []func()
	draining bool
	drainer  uint64 // goroutine running the current drain
	pending  map[string]struct{}
	locks    int

	// changed is closed and replaced on every state change.
	changed chan struct{}
	// wake nudges the executor loop.
	wake chan struct{}
	poll time.Duration
}

func newScheduler(poll time.Duration) *scheduler {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &scheduler{
		pending: make(map[string]struct{}),
		changed: make(chan struct{}),
		wake:    make(chan struct{}, 1),
		poll:    poll,
	}
}

// notifyLocked wakes idle waiters and the executor.
func (s *scheduler) notifyLocked() {
	s.broadcastLocked()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// markDirty moves a clean binding to dirty and enqueues it, which makes
// it pending. Both steps happen under one lock, so callers only ever see
// Clean or Pending. Further calls before the next drain are no-ops.
func (s *scheduler) markDirty(b *binding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.state != Clean || b.dropped {
		return
	}
	b.state = Dirty
	s.queue = append(s.queue, b)
	b.state = Pending
	s.notifyLocked()
}

// broadcastLocked wakes idle waiters only.
func (s *scheduler) broadcastLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *scheduler) forget(b *binding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.queue, b); i >= 0 {
		s.queue = slices.Delete(s.queue, i, i+1)
	}
	b.state = Clean
	b.dropped = true
	s.notifyLocked()
}

func (s *scheduler) state(b *binding) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return b.state
}

func (s *scheduler) post(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, fn)
	s.notifyLocked()
}

// drain runs queued tasks, then lays out each distinct queued binding
// exactly once. A failing or panicking binding does not stop the pass.
// It returns false without doing anything if a drain is already running.
func (s *scheduler) drain(run func(*binding) error) (n int, errs []error, ok bool) {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return 0, nil, false
	}
	s.draining = true
	s.drainer = goid()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.draining = false
		s.drainer = 0
		s.broadcastLocked()
		s.mu.Unlock()
	}()

	for _, t := range tasks {
		if err := protect(func() error { t(); return nil }); err != nil {
			errs = append(errs, err)
		}
	}

	s.mu.Lock()
	batch := s.queue
	s.queue = nil
	for _, b := range batch {
		b.state = Clean
	}
	s.mu.Unlock()

	for _, b := range batch {
		// Tasks and earlier components may have unbound it.
		s.mu.Lock()
		dropped := b.dropped
		s.mu.Unlock()
		if dropped {
			continue
		}
		if err := protect(func() error { return run(b) }); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errs, true
}

// protect runs fn, turning a panic into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during update: %v", r)
		}
	}()
	return fn()
}

// idleLocked reports whether nothing is queued, running, pending or locked.
func (s *scheduler) idleLocked() bool {
	return len(s.queue) == 0 && len(s.tasks) == 0 && !s.draining &&
		len(s.pending) == 0 && s.locks == 0
}

// snapshot returns the idle flag and the channel to wait on for the next
// state change.
func (s *scheduler) snapshot() (idle bool, changed <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idleLocked(), s.changed
}

// inDrain reports whether the calling goroutine is the one running the
// current drain.
func (s *scheduler) inDrain() bool {
	s.mu.Lock()
	draining, drainer := s.draining, s.drainer
	s.mu.Unlock()
	return draining && drainer == goid()
}

// goid returns the current goroutine's id, parsed from the header of its
// stack trace ("goroutine 42 [running]:").
func goid() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

func (s *scheduler) queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) + len(s.tasks)
}

func (s *scheduler) registerPending(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[owner] = struct{}{}
	s.notifyLocked()
}

func (s *scheduler) clearPending(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, owner)
	s.notifyLocked()
}

func (s *scheduler) pendingOwners() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.pending))
	for k := range s.pending {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (s *scheduler) lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks++
	s.notifyLocked()
}

func (s *scheduler) unlock() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == 0 {
		return false
	}
	s.locks--
	s.notifyLocked()
	return true
}
